//go:build wireinject
// +build wireinject

package main

//go:generate go run -mod=mod github.com/google/wire/cmd/wire

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/lifeops/scheduler/internal/adapter"
	"github.com/lifeops/scheduler/internal/agent"
	"github.com/lifeops/scheduler/internal/api"
	"github.com/lifeops/scheduler/internal/adapter/cronbeat"
	"github.com/lifeops/scheduler/internal/bridge"
	"github.com/lifeops/scheduler/internal/command"
	"github.com/lifeops/scheduler/internal/dispatch"
	"github.com/lifeops/scheduler/internal/infra/persistence/auditrepo"
	"github.com/lifeops/scheduler/internal/infra/persistence/executionrepo"
	"github.com/lifeops/scheduler/internal/infra/persistence/intentrepo"
	"github.com/lifeops/scheduler/internal/infra/persistence/reviewrepo"
	"github.com/lifeops/scheduler/internal/infra/persistence/schedulerepo"
	"github.com/lifeops/scheduler/internal/orm"
	"github.com/lifeops/scheduler/internal/predicate"
	"github.com/lifeops/scheduler/internal/reviewjob"
	"github.com/lifeops/scheduler/pkg/config"
)

func InitializeApp(logger *zap.Logger, cfg config.Config) (*App, error) {
	wire.Build(
		NewApp,

		ProvideRedisClient,
		ProvideStorageConfig,
		ProvideDB,
		ProvideCallbackSink,
		ProvideCronBeat,
		ProvidePolicy,

		wire.FieldsOf(new(config.Config), "Dispatcher", "Review", "Agent"),

		wire.Bind(new(adapter.Adapter), new(*cronbeat.Provider)),
		wire.Bind(new(bridge.Dispatcher), new(*dispatch.Dispatcher)),
		wire.Bind(new(dispatch.Invoker), new(*agent.HTTPInvoker)),
		wire.Bind(new(dispatch.FailureNotifier), new(*agent.SignalNotifier)),
		wire.Bind(new(dispatch.Throttle), new(*dispatch.WindowThrottle)),
		wire.Bind(new(predicate.Resolver), new(*agent.StateResolver)),

		// core services
		command.Provider,
		bridge.Provider,
		dispatch.Provider,
		predicate.Provider,
		reviewjob.Provider,
		agent.Provider,

		// http api
		api.Provider,

		// storage
		orm.Provider,
		intentrepo.Provider,
		schedulerepo.Provider,
		executionrepo.Provider,
		auditrepo.Provider,
		reviewrepo.Provider,
	)
	return nil, nil
}
