package main

// @title           Library Catalog API
// @version         0.1.0
// @description     CRUD API for the library book catalog.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8000
// @BasePath  /

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/snnyvrz/bookcatalog/internal/catalog"
	"github.com/snnyvrz/bookcatalog/internal/config"
	"github.com/snnyvrz/bookcatalog/internal/db"
	docs "github.com/snnyvrz/bookcatalog/internal/docs"
	"github.com/snnyvrz/bookcatalog/internal/handler"
	"github.com/snnyvrz/bookcatalog/internal/logging"
	"github.com/snnyvrz/bookcatalog/internal/middleware"
	"github.com/snnyvrz/bookcatalog/internal/repository"
)

const appVersion = "0.1.0"

func main() {
	startTime := time.Now()

	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("storage initialization failed", zap.Error(err))
	}
	defer func() { _ = db.Close(database) }()

	gin.SetMode(cfg.GinMode)

	e := gin.New()
	e.Use(middleware.RequestID(), middleware.AccessLog(logger), gin.Recovery())
	if cfg.APIRateLimit > 0 {
		e.Use(middleware.RateLimit(cfg.APIRateLimit, cfg.APIRateBurst))
	}

	e.SetTrustedProxies([]string{
		"127.0.0.1",
		"::1",
	})

	docs.SwaggerInfo.BasePath = "/"

	healthHandler := handler.NewHealthHandler(database, startTime, appVersion, logger)
	healthHandler.RegisterRoutes(e)

	books := catalog.NewBookService(repository.NewGormBookRepository(database), logger)
	bookHandler := handler.NewBookHandler(books, logger)
	bookHandler.RegisterRoutes(&e.RouterGroup)

	e.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	serve(ctx, logger, &http.Server{
		Addr:         cfg.APIAddr,
		Handler:      e,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	})
}

func serve(ctx context.Context, logger *zap.Logger, srv *http.Server) {
	go func() {
		logger.Info("json api listening", zap.String("addr", srv.Addr))
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
	logger.Info("json api stopped")
}
