// Package main runs the eventgraph HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/suparena/eventgraph"
	"github.com/suparena/eventgraph/config"
	"github.com/suparena/eventgraph/datastore/ddb"
	"github.com/suparena/eventgraph/datastore/mongostore"
	"github.com/suparena/eventgraph/i18n"
	"github.com/suparena/eventgraph/registry"
	"github.com/suparena/eventgraph/resolvers"
	"github.com/suparena/eventgraph/server"
	"github.com/suparena/eventgraph/txlog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}
	logger := newLogger(cfg.Log.Level)
	defer logger.Sync()

	ctx := context.Background()
	stores, closeStores := openStores(ctx, cfg, logger)
	defer closeStores()

	m, err := eventgraph.BindModels(registry.Default(), stores, logger)
	if err != nil {
		logger.Fatal("bind models", zap.Error(err))
	}

	var recorder txlog.Recorder = txlog.NewMemory(cfg.Redis.Capacity)
	if cfg.Redis.Addr != "" {
		rdb, err := txlog.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		recorder = txlog.NewRedis(rdb, cfg.Redis.Key, cfg.Redis.Capacity)
	}

	catalog, err := i18n.New(cfg.I18n.DefaultLanguage)
	if err != nil {
		logger.Fatal("load messages", zap.Error(err))
	}

	r := resolvers.New(m, catalog, txlog.NewLog(recorder, logger), logger)
	jwtService := server.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	router := server.NewRouter(r, jwtService, catalog, logger, server.Options{
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening",
			zap.String("port", cfg.Server.Port), zap.String("backend", cfg.Store.Backend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// openStores connects the configured backend and returns a function releasing it.
func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (eventgraph.Stores, func()) {
	switch cfg.Store.Backend {
	case config.BackendMongo:
		client, err := mongostore.Connect(ctx, cfg.Mongo.URI, logger)
		if err != nil {
			logger.Fatal("mongo", zap.Error(err))
		}
		stores := eventgraph.MongoStores(client.Database(cfg.Mongo.Database), logger)
		return stores, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("mongo disconnect", zap.Error(err))
			}
		}
	case config.BackendDynamoDB:
		client, err := ddb.NewDynamoDBClient(ctx, cfg.DynamoDB.ClientConfig(), logger)
		if err != nil {
			logger.Fatal("dynamodb", zap.Error(err))
		}
		stores, err := eventgraph.DynamoDBStores(client, cfg.DynamoDB.Table, logger)
		if err != nil {
			logger.Fatal("dynamodb stores", zap.Error(err))
		}
		return stores, func() {}
	}
	logger.Warn("using in-memory store; data is lost on exit")
	return eventgraph.MemoryStores(), func() {}
}

func newLogger(level zapcore.Level) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := zcfg.Build()
	return logger
}
