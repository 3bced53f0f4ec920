package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar is implemented by every handler that mounts routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts all registered handlers under a versioned API group
type Router struct {
	engine     *gin.Engine
	logger     *zap.Logger
	registrars []RouteRegistrar
}

func New(engine *gin.Engine, logger *zap.Logger) *Router {
	return &Router{
		engine: engine,
		logger: logger,
	}
}

func (r *Router) Register(registrars ...RouteRegistrar) {
	r.registrars = append(r.registrars, registrars...)
}

func (r *Router) Setup(version string) {
	api := r.engine.Group("/api/" + version)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
	r.logger.Info("Routes registered",
		zap.String("version", version),
		zap.Int("handlers", len(r.registrars)),
	)
}
