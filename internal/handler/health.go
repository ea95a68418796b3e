package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const readyTimeout = time.Second

type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version" example:"0.1.0"`
	Uptime  int64  `json:"uptime" example:"42"`
	DB      string `json:"db,omitempty" example:"up"`
	Error   string `json:"error,omitempty"`
}

type HealthHandler struct {
	db        *gorm.DB
	startTime time.Time
	version   string
	logger    *zap.Logger
}

func NewHealthHandler(db *gorm.DB, startTime time.Time, version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startTime: startTime,
		version:   version,
		logger:    logger,
	}
}

func (h *HealthHandler) RegisterRoutes(e *gin.Engine) {
	e.GET("/health", h.Health)
	e.GET("/ready", h.Ready)
}

// Health godoc
// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  HealthResponse
// @Router   /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.response("ok", ""))
}

// Ready godoc
// @Summary  Readiness probe, pings the database
// @Tags     health
// @Produce  json
// @Success  200  {object}  HealthResponse
// @Failure  503  {object}  HealthResponse
// @Router   /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))

		resp := h.response("unhealthy", "down")
		resp.Error = err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, h.response("ready", "up"))
}

func (h *HealthHandler) ping(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (h *HealthHandler) response(status, db string) HealthResponse {
	return HealthResponse{
		Status:  status,
		Version: h.version,
		Uptime:  int64(time.Since(h.startTime).Seconds()),
		DB:      db,
	}
}
