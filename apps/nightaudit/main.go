// Command nightaudit runs a single night audit and exits. The business date
// defaults to the one the scheduler would audit now.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hotelpms/internal/clock"
	"github.com/smallbiznis/hotelpms/internal/config"
	"github.com/smallbiznis/hotelpms/internal/folio"
	"github.com/smallbiznis/hotelpms/internal/invoice"
	"github.com/smallbiznis/hotelpms/internal/logger"
	"github.com/smallbiznis/hotelpms/internal/migration"
	"github.com/smallbiznis/hotelpms/internal/nightaudit"
	"github.com/smallbiznis/hotelpms/internal/observability"
	"github.com/smallbiznis/hotelpms/pkg/db"
	"github.com/smallbiznis/hotelpms/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var dateFlag = flag.String("date", "", "business date to audit (YYYY-MM-DD)")

func main() {
	flag.Parse()

	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		telemetry.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		folio.Module,
		invoice.Module,
		migration.Module,
		nightaudit.Module,

		// No scheduler loop!
		fx.Decorate(func(cfg nightaudit.Config) nightaudit.Config {
			cfg.Enabled = false
			return cfg
		}),
		fx.Invoke(RunAudit),
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}

func RunAudit(lc fx.Lifecycle, shutdowner fx.Shutdowner, svc *nightaudit.Service, cfg nightaudit.Config, clk clock.Clock, log *zap.Logger) error {
	day := nightaudit.ClosedBusinessDate(clk.Now(), cfg.DayRollover)
	if *dateFlag != "" {
		parsed, err := time.Parse(time.DateOnly, *dateFlag)
		if err != nil {
			return err
		}
		day = parsed
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
				defer cancel()

				code := 0
				report, err := svc.Run(ctx, day)
				switch {
				case err != nil:
					log.Error("night audit failed", zap.String("business_date", day.Format(time.DateOnly)), zap.Error(err))
					code = 1
				case len(report.Failures) > 0:
					log.Warn("night audit finished with failures", zap.Any("report", report))
					code = 2
				default:
					log.Info("night audit finished", zap.Any("report", report))
				}
				_ = shutdowner.Shutdown(fx.ExitCode(code))
			}()
			return nil
		},
	})
	return nil
}
