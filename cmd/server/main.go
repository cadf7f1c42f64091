package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/sv1nxmmvt/fincontrol/internal/clients/cache"
	"github.com/sv1nxmmvt/fincontrol/internal/clients/kafka"
	"github.com/sv1nxmmvt/fincontrol/internal/config"
	"github.com/sv1nxmmvt/fincontrol/internal/logger"
	"github.com/sv1nxmmvt/fincontrol/internal/model/accounts"
	"github.com/sv1nxmmvt/fincontrol/internal/model/ledger"
	"github.com/sv1nxmmvt/fincontrol/internal/model/reports"
	"github.com/sv1nxmmvt/fincontrol/internal/model/storage"
	"github.com/sv1nxmmvt/fincontrol/internal/server"
	"github.com/sv1nxmmvt/fincontrol/internal/tracing"
)

const serviceName = "fincontrol"

const shutdownTimeout = 10 * time.Second

func main() {
	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config", zap.Error(err))
	}

	closer, err := tracing.Init(serviceName)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer closer.Close()

	db, err := storage.NewPostgresStorage(conf.Postgres())
	if err != nil {
		logger.Fatal("failed to init postgres", zap.Error(err))
	}

	mc, err := cache.NewMemcache(conf.Memcached())
	if err != nil {
		logger.Fatal("failed to init memcached", zap.Error(err))
	}

	producer, err := kafka.NewProducer(conf.Kafka())
	if err != nil {
		logger.Fatal("failed to init kafka producer", zap.Error(err))
	}
	defer producer.Close()

	accountsSvc := accounts.NewService(db, accounts.NewSHA256Hasher())
	categories := ledger.NewCategories(db)
	expenses := ledger.NewExpenses(db, mc)
	generator := reports.NewGenerator(db, mc)

	srv := server.New(accountsSvc, categories, expenses, generator, producer, conf.Auth())

	httpServer := &http.Server{
		Addr:    conf.HTTP().Addr(),
		Handler: srv.Engine(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	go func() {
		logger.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}
	logger.Info("http server stopped")
}
