package main

import (
	"context"
	"fmt"
	"time"

	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/lifeops/scheduler/internal/adapter/cronbeat"
	"github.com/lifeops/scheduler/internal/agent"
	"github.com/lifeops/scheduler/internal/biz/execution"
	"github.com/lifeops/scheduler/internal/bridge"
	"github.com/lifeops/scheduler/internal/infra/persistence/commonrepo"
	"github.com/lifeops/scheduler/internal/orm"
	"github.com/lifeops/scheduler/internal/predicate"
	"github.com/lifeops/scheduler/pkg/config"
)

// ProvideRedisClient builds a redis client from typed config.
// Returns nil when redis is disabled; the throttle then falls back to its
// in-process window.
func ProvideRedisClient(cfg config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func ProvideStorageConfig(cfg config.Config) orm.Config {
	return orm.Config{
		Host:                  cfg.Database.Host,
		Port:                  cfg.Database.Port,
		Database:              cfg.Database.Database,
		User:                  cfg.Database.User,
		Password:              cfg.Database.Password,
		MaxConnections:        cfg.Database.MaxConnections,
		MaxIdleConnections:    cfg.Database.MaxIdleConnections,
		ConnectionMaxLifetime: cfg.Database.ConnectionMaxLifetime,
	}
}

func ProvideDB(storage *orm.Storage) commonrepo.DB {
	return storage.DB()
}

// ProvideCallbackSink routes fired triggers from the cron beat into the
// callback bridge.
func ProvideCallbackSink(b *bridge.Bridge, logger *zap.Logger) cronbeat.CallbackFunc {
	return func(ctx context.Context, scheduleID uint64, scheduledFor time.Time, traceID string, source string) {
		_, err := b.Handle(ctx, bridge.Callback{
			ScheduleID:   scheduleID,
			ScheduledFor: scheduledFor,
			TraceID:      traceID,
			EmittedAt:    time.Now(),
			Source:       execution.TriggerSource(source),
		})
		if err != nil {
			logger.Error("callback handling failed",
				zap.Uint64("schedule_id", scheduleID),
				zap.String("trace_id", traceID),
				zap.Error(err))
		}
	}
}

func ProvideCronBeat(cfg config.Config, sink cronbeat.CallbackFunc, logger *zap.Logger) *cronbeat.Provider {
	return cronbeat.New(cfg.Provider.InstanceID, sink, logger)
}

func ProvidePolicy() predicate.Policy {
	return agent.AllowAllPolicy{}
}
