package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"TradeSage/internal/usecase"
	pkgch "TradeSage/pkg/clickhouse"
	"TradeSage/pkg/config"
	xhttp "TradeSage/pkg/http"
	pkgkafka "TradeSage/pkg/kafka"
	applogger "TradeSage/pkg/logger"
	"TradeSage/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	collector   *usecase.TickCollector
	trader      *usecase.Trader
	evalQueue   *queue.RedisQueue
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	proc        *usecase.DecisionProcessor
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.TickCollector,
	trader *usecase.Trader,
	evalQueue *queue.RedisQueue,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	proc *usecase.DecisionProcessor,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		collector: collector,
		trader:    trader,
		evalQueue: evalQueue,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
		proc:      proc,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.log

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Stream collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.Strings("watchlist", a.cfg.Stream.Watchlist))

	// Evaluation queue workers
	if a.evalQueue != nil {
		if err := a.evalQueue.Start(); err != nil {
			l.Error("evaluation queue start error", applogger.Error(err))
		}
	}

	// Watchlist sweep loop
	if a.trader != nil && a.cfg.Trader.Enabled {
		go a.trader.Run(ctx)
	}

	// Decisions consumer (kafka backend sink)
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	cancel()
	return a.shutdown(context.Background())
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.log
	l.Info("shutting down...")

	// Stop collector (pipeline + stream)
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop evaluation queue workers
	if a.evalQueue != nil {
		if err := a.evalQueue.Stop(shutdownCtx); err != nil {
			l.Warn("evaluation queue stop error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close publisher/storage resources
	if a.proc != nil {
		a.proc.Close()
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
