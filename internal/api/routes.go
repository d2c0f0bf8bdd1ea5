package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/playmatatu/pinball/internal/api/handlers"
	"github.com/playmatatu/pinball/internal/config"
	"github.com/playmatatu/pinball/internal/game"
	"github.com/playmatatu/pinball/internal/metrics"
	"github.com/playmatatu/pinball/internal/middleware"
	"github.com/playmatatu/pinball/internal/ws"
)

// Store is the persistence the HTTP layer needs.
type Store interface {
	handlers.TableStore
	handlers.Authenticator
}

// Deps are the services the routes are wired to.
type Deps struct {
	Config  *config.Config
	Store   Store
	Manager *game.Manager
	Hub     *ws.Hub
	Frames  handlers.FrameCache // nil without redis
	Log     *zap.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, d Deps) {
	log := d.Log.Named("api")
	router.Use(middleware.RequestLogger(d.Log))
	router.Use(middleware.CORSMiddleware(d.Config))

	if d.Config.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Next()
		})
	}

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	operator := middleware.RequireOperator(d.Config.JWTSecret)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(d.Manager))
		v1.GET("/config", handlers.GetConfig(d.Config))
		v1.POST("/auth/token", handlers.IssueToken(d.Store, d.Config))

		tables := v1.Group("/tables")
		{
			tables.GET("", handlers.ListTables(d.Store))
			tables.GET("/:id", handlers.GetTable(d.Store))
			tables.POST("", operator, handlers.SaveTable(d.Store))
		}

		sessions := v1.Group("/sessions")
		{
			sessions.GET("", handlers.ListSessions(d.Manager))
			sessions.POST("", handlers.CreateSession(d.Manager, d.Store, d.Config.DefaultTable, log))
			sessions.GET("/:id", handlers.GetSession(d.Manager, d.Frames))
			sessions.DELETE("/:id", handlers.CloseSession(d.Manager))
			sessions.POST("/:id/balls", handlers.SpawnBall(d.Manager))
			sessions.DELETE("/:id/balls/:ball", handlers.RemoveBall(d.Manager))
			sessions.POST("/:id/actuate", operator, handlers.Actuate(d.Manager, log))
			sessions.GET("/:id/ws", middleware.WebSocketOriginCheck(d.Config), handlers.SessionWebSocket(d.Manager, d.Hub, d.Frames))
		}
	}
}
