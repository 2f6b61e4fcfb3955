package routes

import (
	"github.com/gin-gonic/gin"

	"launchcontrol/internal/handlers"
)

// SetupStakingRoutes sets up all routes related to staking
func SetupStakingRoutes(r *gin.Engine) {
	staking := r.Group("/staking")
	{
		staking.POST("/init", handlers.InitializeStaking)
		staking.POST("/stake", handlers.Stake)
		staking.POST("/withdraw", handlers.WithdrawStake)
		staking.POST("/claim", handlers.ClaimStakeRewards)
		staking.GET("/pending", handlers.GetPendingReward)
		staking.GET("/staked", handlers.GetStakedAmount)
	}
}
