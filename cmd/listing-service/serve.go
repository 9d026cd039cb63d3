package main

import (
	"context"

	"go-marketplace/internal/biz"
	"go-marketplace/internal/infra/eventbus"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/spf13/cobra"
)

func newApp(
	logger log.Logger,
	hs *http.Server,
	eventBus *eventbus.EventBus,
	router *eventbus.Router,
	forwarder *eventbus.Forwarder,
	sink eventbus.Sink,
) *kratos.App {
	biz.RegisterEventHandlers(router, sink, logger)

	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(hs),
		kratos.BeforeStart(func(ctx context.Context) error {
			forwarder.Start(ctx)
			go func() {
				if err := router.Run(ctx); err != nil {
					log.NewHelper(logger).Errorf("event router error: %v", err)
				}
			}()
			return nil
		}),
		kratos.BeforeStop(func(ctx context.Context) error {
			forwarder.Stop()
			if err := router.Close(); err != nil {
				log.NewHelper(logger).Errorf("failed to close router: %v", err)
			}
			if err := eventBus.Close(); err != nil {
				log.NewHelper(logger).Errorf("failed to close event bus: %v", err)
			}
			return nil
		}),
	)
}

// serveCommand runs the HTTP API with the outbox forwarder and event router.
func serveCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serves the listing HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := wireApp(
				rt.bc.GetServer(),
				rt.bc.GetData(),
				rt.bc.GetEvents(),
				rt.bc.GetRateLimit(),
				rt.logger,
				rt.zap,
			)
			if err != nil {
				return err
			}
			defer cleanup()

			// start and wait for stop signal
			return app.Run()
		},
	}
}
