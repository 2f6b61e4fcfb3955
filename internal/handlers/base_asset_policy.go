package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"
)

// BaseAssetPolicyRequest represents the request body for creating/updating a policy
type BaseAssetPolicyRequest struct {
	Mint               string  `json:"mint" binding:"required"`
	FinalBaseTarget    uint64  `json:"final_base_target"`
	MaxBuyPerUser      uint64  `json:"max_buy_per_user"`
	MaxBuyPerTx        uint64  `json:"max_buy_per_tx"`
	RequiredStakeToBuy uint64  `json:"required_stake_to_buy"`
	Enabled            *bool   `json:"enabled"`
}

// FeeConfigRequest represents the request body for updating the fee config
type FeeConfigRequest struct {
	FeeBps          uint64 `json:"fee_bps"`
	BurnBps         uint64 `json:"burn_bps"`
	FeeAssetMint    string `json:"fee_asset_mint"`
	FeeShareEnabled *bool  `json:"fee_share_enabled"`
	CreationFee     uint64 `json:"creation_fee"`
	FeeRecipient    string `json:"fee_recipient"`
}

// ListBaseAssetPolicies returns all base-asset policies
func ListBaseAssetPolicies(c *gin.Context) {
	var policies []models.BaseAssetPolicy
	if err := dbconfig.DB.Find(&policies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, policies)
}

// GetBaseAssetPolicy returns the policy for one base asset
func GetBaseAssetPolicy(c *gin.Context) {
	mint := c.Param("mint")

	var policy models.BaseAssetPolicy
	if err := dbconfig.DB.Where("mint = ?", mint).First(&policy).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	c.JSON(http.StatusOK, policy)
}

// UpsertBaseAssetPolicy creates or updates the policy for a base asset
func UpsertBaseAssetPolicy(c *gin.Context) {
	var request BaseAssetPolicyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var policy models.BaseAssetPolicy
	err := dbconfig.DB.Where("mint = ?", request.Mint).First(&policy).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	policy.Mint = request.Mint
	policy.FinalBaseTarget = request.FinalBaseTarget
	policy.MaxBuyPerUser = request.MaxBuyPerUser
	policy.MaxBuyPerTx = request.MaxBuyPerTx
	policy.RequiredStakeToBuy = request.RequiredStakeToBuy
	if request.Enabled != nil {
		policy.Enabled = *request.Enabled
	} else if err == gorm.ErrRecordNotFound {
		policy.Enabled = true
	}

	if err := dbconfig.DB.Save(&policy).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, policy)
}

// GetFeeConfig returns the platform fee configuration
func GetFeeConfig(c *gin.Context) {
	var cfg models.FeeConfig
	if err := dbconfig.DB.First(&cfg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusOK, models.FeeConfig{})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateFeeConfig creates or replaces the platform fee configuration
func UpdateFeeConfig(c *gin.Context) {
	var request FeeConfigRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.FeeBps > 10000 || request.BurnBps > 10000 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bps values must not exceed 10000"})
		return
	}

	var cfg models.FeeConfig
	err := dbconfig.DB.First(&cfg).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	cfg.FeeBps = request.FeeBps
	cfg.BurnBps = request.BurnBps
	cfg.FeeAssetMint = request.FeeAssetMint
	cfg.CreationFee = request.CreationFee
	cfg.FeeRecipient = request.FeeRecipient
	if request.FeeShareEnabled != nil {
		cfg.FeeShareEnabled = *request.FeeShareEnabled
	}

	if err := dbconfig.DB.Save(&cfg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}
