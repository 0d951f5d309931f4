package aging

import (
	"github.com/smallbiznis/hotelpms/internal/aging/service"
	"go.uber.org/fx"
)

var Module = fx.Module("aging.service",
	fx.Provide(service.NewService),
)
