//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"go-marketplace/internal/biz"
	"go-marketplace/internal/conf"
	"go-marketplace/internal/data"
	"go-marketplace/internal/infra/eventbus"
	"go-marketplace/internal/server"
	"go-marketplace/internal/service"
	"go-marketplace/pkg/metrics"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"go.uber.org/zap"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Data, *conf.Events, *conf.RateLimit, log.Logger, *zap.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		server.ProviderSet,
		data.ProviderSet,
		biz.ProviderSet,
		service.ProviderSet,
		eventbus.ProviderSet,
		metrics.New,
		wire.Bind(new(service.Pinger), new(*data.Data)),
		newApp,
	))
}

// wireListingUsecase builds the listing usecase alone for one-shot commands.
func wireListingUsecase(*conf.Data, log.Logger) (*biz.ListingUsecase, func(), error) {
	panic(wire.Build(
		data.ProviderSet,
		eventbus.NewOutboxPublisher,
		metrics.New,
		biz.NewListingUsecase,
	))
}
