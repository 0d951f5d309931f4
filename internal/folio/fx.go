package folio

import (
	"github.com/smallbiznis/hotelpms/internal/folio/repository"
	"github.com/smallbiznis/hotelpms/internal/folio/service"
	"go.uber.org/fx"
)

var Module = fx.Module("folio.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
