// internal/handler/router.go
package handler

import (
	"net/http"

	"finance-tracker/internal/apierr"
	"finance-tracker/internal/auth"
	"finance-tracker/internal/middleware"
	"finance-tracker/internal/storage"

	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Store      storage.Storage
	Tokens     *auth.TokenService
	Limiter    *middleware.RateLimiter
	// Middleware runs before everything else, e.g. gin.Logger and gin.Recovery.
	Middleware []gin.HandlerFunc
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(cfg.Middleware...)
	if cfg.Limiter != nil {
		router.Use(cfg.Limiter.Middleware())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, apierr.CodeNotFound, "Route not found", nil)
	})

	authH := NewAuthHandler(cfg.Store, cfg.Tokens)
	categories := NewCategoryHandler(cfg.Store)
	transactions := NewTransactionHandler(cfg.Store)
	investments := NewInvestmentHandler(cfg.Store)
	exports := NewExportHandler(cfg.Store)
	syncH := NewSyncHandler(cfg.Store)

	requireAuth := middleware.NewAuthMiddleware(cfg.Tokens).RequireAuth()

	api := router.Group("/api")
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)

	protected := api.Group("")
	protected.Use(requireAuth)
	{
		protected.GET("/auth/me", authH.Me)

		protected.GET("/categories", categories.List)
		protected.POST("/categories", categories.Create)
		protected.PUT("/categories/:id", categories.Update)
		protected.DELETE("/categories/:id", categories.Delete)

		protected.GET("/transactions", transactions.List)
		protected.POST("/transactions", transactions.Create)
		protected.PUT("/transactions/:id", transactions.Update)
		protected.DELETE("/transactions/:id", transactions.Delete)

		protected.GET("/summary", transactions.Summary)

		protected.GET("/investments/assets", investments.List)
		protected.POST("/investments/assets", investments.Create)
		protected.PUT("/investments/assets/:id", investments.Update)
		protected.DELETE("/investments/assets/:id", investments.Delete)
		protected.GET("/investments/summary", investments.Summary)

		protected.POST("/sync", syncH.Sync)

		protected.GET("/export/transactions.csv", exports.CSV)
		protected.GET("/export/transactions.xlsx", exports.XLSX)
	}

	return router
}
