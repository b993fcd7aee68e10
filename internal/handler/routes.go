package handler

import (
	"github.com/dafibh/giderler/giderler-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, rateLimiter *middleware.RateLimiter, expenseHandler *ExpenseHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Mutating expense routes are rate limited per client
	limited := middleware.RateLimitMiddleware(rateLimiter)

	expenses := api.Group("/expenses")
	expenses.GET("", expenseHandler.ListExpenses)
	expenses.GET("/summary", expenseHandler.GetSummary)
	expenses.GET("/export", expenseHandler.ExportExpenses)
	expenses.POST("", expenseHandler.CreateExpense, limited)
	expenses.POST("/seed", expenseHandler.SeedExpenses, limited)
	expenses.PUT("/:id", expenseHandler.UpdateExpense, limited)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense, limited)

	// WebSocket route
	api.GET("/ws", wsHandler.HandleWS)
}
