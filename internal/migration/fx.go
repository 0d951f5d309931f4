package migration

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hotelpms/internal/clock"
	"github.com/smallbiznis/hotelpms/internal/config"
	"github.com/smallbiznis/hotelpms/internal/seed"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type params struct {
	fx.In

	DB      *gorm.DB
	Config  config.Config
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	TaxRepo taxdomain.Repository
}

var Module = fx.Module("migrations",
	fx.Invoke(func(p params) error {
		if err := Migrate(p.DB); err != nil {
			return err
		}
		p.Log.Info("schema migrated", zap.String("dialect", p.DB.Dialector.Name()))

		if !p.Config.Invoice.SeedDefaultTaxes {
			return nil
		}
		return seed.EnsureDefaultTaxes(context.Background(), p.TaxRepo, p.GenID, p.Clock.Now(), p.Log.Named("seed"))
	}),
)
