package nightaudit

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("night.audit",
	fx.Provide(ProvideConfig),
	fx.Provide(ProvideRedisClient),
	fx.Provide(NewLocker),
	fx.Provide(New),
	fx.Provide(NewScheduler),
	fx.Invoke(startScheduler),
)

func startScheduler(lc fx.Lifecycle, cfg Config, sched *Scheduler) {
	if !cfg.Enabled {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go sched.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
