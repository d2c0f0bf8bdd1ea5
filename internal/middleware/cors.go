package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/playmatatu/pinball/internal/config"
)

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Authorization",
			"Accept", "Cache-Control", "X-Requested-With",
		},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	corsConfig.AllowOrigins = allowedOrigins(cfg)
	corsConfig.AllowCredentials = true
	return cors.New(corsConfig)
}

func allowedOrigins(cfg *config.Config) []string {
	if cfg.Environment == "development" {
		origins := []string{"http://localhost:5173", "http://127.0.0.1:5173"}
		if cfg.FrontendURL != "" && cfg.FrontendURL != origins[0] {
			origins = append(origins, cfg.FrontendURL)
		}
		return origins
	}
	if cfg.FrontendURL != "" {
		return []string{cfg.FrontendURL}
	}
	return []string{"https://pinball.playmatatu.com"}
}

// WebSocketOriginCheck rejects websocket upgrades from origins the CORS
// policy would not allow.
func WebSocketOriginCheck(cfg *config.Config) gin.HandlerFunc {
	origins := allowedOrigins(cfg)
	return func(c *gin.Context) {
		if !strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			c.Next()
			return
		}
		origin := c.GetHeader("Origin")
		if origin == "" {
			// Non-browser clients (render nodes, the simulate tool) send none.
			c.Next()
			return
		}
		allowed := cfg.Environment == "development" &&
			(strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:"))
		for _, o := range origins {
			if origin == o {
				allowed = true
			}
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "websocket origin not allowed"})
			return
		}
		c.Next()
	}
}
