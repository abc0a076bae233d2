package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/showtrail/agjournal-backend/internal/handlers"
	"github.com/showtrail/agjournal-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName       string
	AuthHandler       *handlers.AuthHandler
	AuthMiddleware    *middleware.AuthMiddleware
	UserHandler       *handlers.UserHandler
	SuggestionHandler *handlers.SuggestionHandler
	FeedbackHandler   *handlers.FeedbackHandler
	AnimalHandler     *handlers.AnimalHandler
	JournalHandler    *handlers.JournalHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Session-ID"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)

	api := protected.Group("/api")
	// Suggestions
	api.GET("/suggestions", cfg.SuggestionHandler.GetSuggestions)
	api.POST("/suggestions/generate", cfg.SuggestionHandler.GenerateEntry)
	api.POST("/suggestions/feedback", cfg.FeedbackHandler.Record)
	api.GET("/suggestions/insights/engagement", cfg.FeedbackHandler.Engagement)
	// Template analytics
	api.GET("/templates/:id/performance", cfg.FeedbackHandler.TemplatePerformance)
	api.GET("/templates/:id/improvements", cfg.FeedbackHandler.TemplateImprovements)
	// Projections
	api.GET("/animals", cfg.AnimalHandler.List)
	api.GET("/journal/entries", cfg.JournalHandler.ListEntries)

	return router
}
