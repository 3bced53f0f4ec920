package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/openaccounting/backend/internal/interfaces/http/dto"
)

// HealthChecker reports the liveness of the backing database
type HealthChecker interface {
	Ping() error
}

// SystemHandler answers health probes
type SystemHandler struct {
	BaseHandler
	db      HealthChecker
	appName string
	started time.Time
}

func NewSystemHandler(db HealthChecker, appName string, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler(logger),
		db:          db,
		appName:     appName,
		started:     time.Now(),
	}
}

func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

type healthStatus struct {
	Status   string `json:"status"`
	App      string `json:"app"`
	Uptime   string `json:"uptime"`
	Database string `json:"database"`
}

func (h *SystemHandler) Health(c *gin.Context) {
	status := healthStatus{
		Status:   "ok",
		App:      h.appName,
		Uptime:   time.Since(h.started).Round(time.Second).String(),
		Database: "up",
	}

	if err := h.db.Ping(); err != nil {
		h.logger.Warn("Health check database ping failed", zap.Error(err))
		status.Status = "degraded"
		status.Database = "down"
		c.JSON(http.StatusServiceUnavailable, dto.NewSuccessResponse(status))
		return
	}
	h.Success(c, status)
}
