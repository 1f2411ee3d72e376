//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"modqueue/internal/biz"
	"modqueue/internal/conf"
	"modqueue/internal/data"
	"modqueue/internal/server"
	"modqueue/internal/service"
	"modqueue/internal/worker"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Data, *conf.Moderation, *conf.Worker, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(data.ProviderSet, biz.ProviderSet, worker.ProviderSet, service.ProviderSet, server.ProviderSet, newApp))
}
