package nightaudit

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/hotelpms/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ProvideRedisClient connects the client backing the audit lock.
func ProvideRedisClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*redis.Client, error) {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("night audit redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			log.Info("closing redis connection", zap.String("addr", addr))
			return client.Close()
		},
	})
	return client, nil
}
