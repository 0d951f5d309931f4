package invoice

import (
	"github.com/smallbiznis/hotelpms/internal/invoice/repository"
	"github.com/smallbiznis/hotelpms/internal/invoice/service"
	"github.com/smallbiznis/hotelpms/internal/tax"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	tax.Module,
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
