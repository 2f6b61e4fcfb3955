package routes

import (
	"github.com/gin-gonic/gin"

	"launchcontrol/internal/handlers"
)

// SetupBaseAssetPolicyRoutes sets up the admin routes for base-asset policies
// and the platform fee config.
func SetupBaseAssetPolicyRoutes(r *gin.Engine) {
	policy := r.Group("/base-asset-policy")
	{
		policy.GET("", handlers.ListBaseAssetPolicies)
		policy.GET("/:mint", handlers.GetBaseAssetPolicy)
		policy.POST("", handlers.UpsertBaseAssetPolicy)
	}

	fee := r.Group("/fee-config")
	{
		fee.GET("", handlers.GetFeeConfig)
		fee.PUT("", handlers.UpdateFeeConfig)
	}
}
