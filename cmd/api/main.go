package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bookstore/internal/config"
	"bookstore/internal/domain/model"
	"bookstore/internal/infra/db"
	infraRepo "bookstore/internal/infra/repository"
	"bookstore/internal/infra/telemetry"
	"bookstore/internal/notification"
	"bookstore/internal/propagation"
	"bookstore/internal/relay"
	"bookstore/internal/server"
	"bookstore/internal/usecase"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load(".env", "../.env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := telemetry.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("bookstore stopped")
	}
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	//tracing（endpoint無しならno-op）
	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}

	//DB接続
	gormDB, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	//Repository（GORM実装）生成
	bookRepo := infraRepo.NewBookGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	adjustmentRepo := infraRepo.NewStockAdjustmentGormRepository(gormDB)
	failureRepo := infraRepo.NewPropagationFailureGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	metrics := telemetry.NewMetrics()
	hub := notification.NewHub(
		notification.WithBuffer(cfg.SubscriberBuffer),
		notification.WithLogger(logger),
	)
	metrics.RegisterSubscribers(hub.Len)

	//Usecase生成
	bookUC := usecase.NewBookUsecase(bookRepo, adjustmentRepo, failureRepo, hub)
	if err := seedBooks(ctx, bookUC, cfg.BooksSeedFile); err != nil {
		return err
	}

	mode, err := propagation.ParseMode(cfg.StockWriteMode)
	if err != nil {
		return err
	}
	prop := propagation.New(bookUC, hub, propagation.Options{
		Workers:        cfg.PropagationWorkers,
		QueueSize:      cfg.PropagationQueueSize,
		EnqueueTimeout: cfg.PropagationEnqueueTimeout,
		WriteTimeout:   cfg.PropagationWriteTimeout,
		Mode:           mode,
		Logger:         logger,
		Metrics:        metrics,
		Tracer:         otel.Tracer("bookstore/propagation"),
		Failures: []propagation.FailureHandler{
			propagation.LogFailures(logger),
			propagation.StoreFailures(failureRepo, logger),
		},
	})
	prop.Start()

	orderUC := usecase.NewOrderUsecase(txm, orderRepo, prop, hub, metrics, logger)

	sink, err := newSink(cfg)
	if err != nil {
		return err
	}

	e := server.New(server.Deps{
		Config:  cfg,
		Logger:  logger,
		Books:   bookUC,
		Orders:  orderUC,
		Hub:     hub,
		Metrics: metrics,
	})

	g, gctx := errgroup.WithContext(ctx)
	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()

	g.Go(func() error {
		<-gctx.Done()
		//SSEを先に閉じないとShutdownが待たされる
		hub.Close()
		return nil
	})
	g.Go(func() error {
		logger.Info().Str("addr", cfg.Addr()).Str("stock_write_mode", string(mode)).Msg("server starting")
		return server.Run(gctx, e, cfg.Addr(), cfg.ShutdownTimeout)
	})
	g.Go(func() error {
		hub.RunHeartbeat(gctx, cfg.HeartbeatInterval)
		return nil
	})

	relayDone := make(chan error, 1)
	if sink != nil {
		go func() { relayDone <- relay.Run(relayCtx, hub, sink, logger) }()
	} else {
		close(relayDone)
	}

	runErr := g.Wait()

	//後片付け（受付停止 → 在庫反映 → relay → tracing）
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		errs = append(errs, runErr)
	}
	if err := prop.Shutdown(sctx); err != nil {
		errs = append(errs, fmt.Errorf("propagator shutdown: %w", err))
	}
	stopRelay()
	if err := <-relayDone; err != nil && !errors.Is(err, context.Canceled) {
		errs = append(errs, fmt.Errorf("relay: %w", err))
	}
	if sink != nil {
		if err := sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sink: %w", err))
		}
	}
	if err := shutdownTracing(sctx); err != nil {
		errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info().Msg("bye")
	return errors.Join(errs...)
}

func seedBooks(ctx context.Context, uc *usecase.BookUsecase, path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var books []model.Book
	if err := json.Unmarshal(raw, &books); err != nil {
		return fmt.Errorf("decode seed file: %w", err)
	}
	return uc.SeedBooks(ctx, books)
}

// 設定されているbrokerだけ使う
func newSink(cfg config.Config) (relay.Sink, error) {
	var sinks relay.MultiSink
	if cfg.RabbitMQURL != "" {
		s, err := relay.NewRabbitSink(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		sinks = append(sinks, s)
	}
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		sinks = append(sinks, relay.NewKafkaSink(brokers, cfg.KafkaTopic))
	}
	if len(sinks) == 0 {
		return nil, nil
	}
	return sinks, nil
}
