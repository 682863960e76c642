// Package server assembles the HTTP routes of the folio API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "folio/internal/docs" // Import swagger docs
	"folio/internal/handlers"
	"folio/internal/middleware"
	"folio/internal/services"
	"folio/internal/validator"
)

// Deps holds everything the router needs.
type Deps struct {
	Portfolio services.PortfolioServicer
	History   services.HistoryServicer
	Quotes    services.QuoteServicer
	Auth      services.AuthServicer
	Audit     services.AuditServicer
	// Edit gates every mutating editor route.
	Edit           middleware.EditPermission
	PipelineAPIKey string
	ArenaMaxRows   int
}

// NewRouter builds the gin engine with all middleware and routes.
func NewRouter(d Deps) *gin.Engine {
	validator.Register()

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "can_edit": d.Edit.CanEdit(), "dirty": d.Portfolio.Dirty()})
	})

	authHandler := handlers.NewAuthHandler(d.Auth, d.Audit)
	portfolioHandler := handlers.NewPortfolioHandler(d.Portfolio, d.Audit)
	historyHandler := handlers.NewHistoryHandler(d.History, d.Audit)
	quoteHandler := handlers.NewQuoteHandler(d.Quotes)
	arenaHandler := handlers.NewArenaHandler(d.ArenaMaxRows)

	v1 := router.Group("/api/v1")

	// Public routes
	v1.POST("/auth/login", authHandler.Login)
	v1.GET("/portfolio", portfolioHandler.GetPortfolio)
	v1.GET("/portfolio/transactions", portfolioHandler.ListTransactions)
	v1.GET("/portfolio/history", historyHandler.GetHistory)
	v1.GET("/quotes", quoteHandler.GetQuotes)
	v1.POST("/arena/run", arenaHandler.Run)

	// Editor routes
	editor := v1.Group("/portfolio")
	editor.Use(middleware.AuthMiddleware(), middleware.RequireEditing(d.Edit))
	editor.POST("/transactions", portfolioHandler.AddTransaction)
	editor.DELETE("/transactions", portfolioHandler.ResetDay)
	editor.POST("/reset", portfolioHandler.ResetAll)
	editor.POST("/sync", portfolioHandler.Sync)
	editor.POST("/history", historyHandler.RecordHistory)

	// Pipeline routes
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(d.PipelineAPIKey))
	pipeline.POST("/history/record", historyHandler.RecordHistory)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
