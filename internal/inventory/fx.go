package inventory

import (
	"github.com/smallbiznis/hotelpms/internal/inventory/repository"
	"github.com/smallbiznis/hotelpms/internal/inventory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("inventory.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
