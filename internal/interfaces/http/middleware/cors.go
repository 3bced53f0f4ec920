package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	infraconfig "github.com/openaccounting/backend/internal/infrastructure/config"
)

// CORS builds the cross origin policy from configuration. A wildcard
// origin must use AllowAllOrigins, cors rejects it in the origin list.
func CORS(cfg *infraconfig.HTTPConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     cfg.CORSAllowMethods,
		AllowHeaders:     cfg.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(corsConfig.AllowHeaders) == 0 {
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	}

	allowAll := len(cfg.CORSAllowOrigins) == 0
	for _, origin := range cfg.CORSAllowOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
	}
	if allowAll {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowOrigins
	}

	return cors.New(corsConfig)
}
