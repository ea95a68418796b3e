package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/snnyvrz/bookcatalog/internal/apiclient"
	"github.com/snnyvrz/bookcatalog/internal/catalog"
	"github.com/snnyvrz/bookcatalog/internal/config"
	"github.com/snnyvrz/bookcatalog/internal/db"
	"github.com/snnyvrz/bookcatalog/internal/logging"
	"github.com/snnyvrz/bookcatalog/internal/middleware"
	"github.com/snnyvrz/bookcatalog/internal/repository"
	"github.com/snnyvrz/bookcatalog/internal/web"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var svc catalog.Service
	if cfg.WebUseAPI {
		logger.Info("form ui proxies through the json api", zap.String("api_url", cfg.APIURL))
		svc = apiclient.New(cfg.APIURL, cfg.APITimeout)
	} else {
		database, err := db.Open(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("storage initialization failed", zap.Error(err))
		}
		defer func() { _ = db.Close(database) }()

		svc = catalog.NewBookService(repository.NewGormBookRepository(database), logger)
	}

	gin.SetMode(cfg.GinMode)

	e := gin.New()
	e.Use(middleware.RequestID(), middleware.AccessLog(logger), gin.Recovery())

	e.SetTrustedProxies([]string{
		"127.0.0.1",
		"::1",
	})

	web.NewHandler(svc, logger).RegisterRoutes(e)

	srv := &http.Server{
		Addr:         cfg.WebAddr,
		Handler:      e,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("form ui listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
