package routes

import (
	"github.com/gin-gonic/gin"

	"launchcontrol/internal/handlers"
)

// SetupVestingRoutes sets up all routes related to release schedules
func SetupVestingRoutes(r *gin.Engine) {
	vesting := r.Group("/vesting")
	{
		vesting.POST("/schedule", handlers.CreateVestingSchedule)
		vesting.POST("/schedule/batch", handlers.CreateVestingBatch)
		vesting.GET("/schedule", handlers.GetVestingSchedule)
		vesting.POST("/claim", handlers.ClaimVested)
	}
}
