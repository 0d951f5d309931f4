package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hotelpms/internal/aging"
	"github.com/smallbiznis/hotelpms/internal/clock"
	"github.com/smallbiznis/hotelpms/internal/config"
	"github.com/smallbiznis/hotelpms/internal/folio"
	"github.com/smallbiznis/hotelpms/internal/inventory"
	"github.com/smallbiznis/hotelpms/internal/invoice"
	"github.com/smallbiznis/hotelpms/internal/logger"
	"github.com/smallbiznis/hotelpms/internal/migration"
	"github.com/smallbiznis/hotelpms/internal/nightaudit"
	"github.com/smallbiznis/hotelpms/internal/observability"
	"github.com/smallbiznis/hotelpms/pkg/db"
	"github.com/smallbiznis/hotelpms/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		telemetry.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),

		// Functional Domains
		folio.Module,
		invoice.Module,
		aging.Module,
		inventory.Module,
		migration.Module,
		nightaudit.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
