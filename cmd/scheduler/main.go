package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yitter/idgenerator-go/idgen"
	"go.uber.org/zap"

	"github.com/lifeops/scheduler/internal/agent"
	"github.com/lifeops/scheduler/internal/api"
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
	"github.com/lifeops/scheduler/pkg/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// Trace id generation for beat-fired callbacks.
	options := idgen.NewIdGeneratorOptions(1)
	options.WorkerIdBitLength = 6
	idgen.SetIdGenerator(options)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting lifeops scheduler",
		zap.String("instance_id", cfg.Provider.InstanceID))

	storage, err := orm.New(ProvideStorageConfig(*cfg))
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer storage.Close()

	db := ProvideDB(storage)
	intentRepo := intentrepo.NewMysqlRepositoryImpl(db)
	scheduleRepo := schedulerepo.NewMysqlRepositoryImpl(db)
	executionRepo := executionrepo.NewMysqlRepositoryImpl(db)
	auditRepo := auditrepo.NewMysqlRepositoryImpl(db)
	reviewRepo := reviewrepo.NewMysqlRepositoryImpl(db)

	invoker := agent.NewHTTPInvoker(cfg.Agent, zapLogger)
	notifier := agent.NewSignalNotifier(cfg.Agent, zapLogger)
	throttle := dispatch.NewWindowThrottle(ProvideRedisClient(*cfg))

	dispatcher := dispatch.New(scheduleRepo, executionRepo, intentRepo, auditRepo,
		invoker, notifier, throttle, cfg.Dispatcher, zapLogger)
	callbackBridge := bridge.New(scheduleRepo, executionRepo, dispatcher, cfg.Dispatcher, zapLogger)

	beat := ProvideCronBeat(*cfg, ProvideCallbackSink(callbackBridge, zapLogger), zapLogger)

	commands := command.NewService(intentRepo, scheduleRepo, auditRepo, beat, zapLogger)
	evaluator := predicate.NewService(scheduleRepo, auditRepo,
		agent.NewStateResolver(cfg.Agent, zapLogger), ProvidePolicy(), zapLogger)
	reviewJob := reviewjob.New(scheduleRepo, executionRepo, reviewRepo, cfg.Review, zapLogger)

	apiServer := api.NewServer(storage, beat,
		api.NewScheduleHandler(commands, evaluator, scheduleRepo, auditRepo),
		api.NewIntentHandler(commands, intentRepo),
		api.NewExecutionHandler(executionRepo, auditRepo),
		api.NewCallbackHandler(callbackBridge),
		api.NewReviewHandler(reviewJob, reviewRepo),
		zapLogger)

	app := NewApp(apiServer, beat, scheduleRepo, reviewJob, zapLogger)
	if err := app.Start(context.Background()); err != nil {
		zapLogger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        apiServer.Router(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		zapLogger.Info("Starting API server", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	zapLogger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown API server", zap.Error(err))
	}

	app.Stop()

	zapLogger.Info("Shutdown complete")
}
