package routes

import (
	"github.com/gin-gonic/gin"

	"launchcontrol/internal/handlers"
	"launchcontrol/internal/middleware"
)

// SetupLaunchRoutes sets up all routes related to launch curves and trading
func SetupLaunchRoutes(r *gin.Engine) {
	throttle := middleware.TradeThrottle(middleware.ThrottleConfig{
		RequestsPerSecond: 10,
		Burst:             20,
	})

	launch := r.Group("/launch")
	{
		launch.POST("", handlers.CreateLaunch)
		launch.GET("/:id", handlers.GetLaunch)
		launch.POST("/:id/start-trading", handlers.StartTrading)
		launch.POST("/:id/buy", throttle, handlers.Buy)
		launch.POST("/:id/sell", throttle, handlers.Sell)
		launch.GET("/:id/quote", handlers.Quote)
		launch.GET("/:id/quote-inverse", handlers.QuoteInverse)
		launch.GET("/:id/price", handlers.GetPrice)
		launch.GET("/:id/price/stream", handlers.StreamPrice)
		launch.POST("/:id/migrate", handlers.Migrate)
	}
}
