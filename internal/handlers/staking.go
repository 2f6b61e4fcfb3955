package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// StakeInitRequest represents the request body for opening staking on an asset
type StakeInitRequest struct {
	Mint              string `json:"mint" binding:"required"`
	Funder            string `json:"funder" binding:"required"`
	InitialRewardPool uint64 `json:"initial_reward_pool"`
	ApyBps            uint64 `json:"apy_bps"`
	LockPeriodSeconds int64  `json:"lock_period_seconds"`
}

// StakeRequest represents the request body for stake and withdraw
type StakeRequest struct {
	Mint   string `json:"mint" binding:"required"`
	Staker string `json:"staker" binding:"required"`
	Amount uint64 `json:"amount" binding:"required"`
}

// StakeClaimRequest represents the request body for a reward claim
type StakeClaimRequest struct {
	Mint   string `json:"mint" binding:"required"`
	Staker string `json:"staker" binding:"required"`
}

// InitializeStaking opens staking for an asset
func InitializeStaking(c *gin.Context) {
	var request StakeInitRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := Engine.InitializeStakeAsset(request.Mint, request.Funder,
		request.InitialRewardPool, request.ApyBps, request.LockPeriodSeconds)
	if err != nil {
		abortWithError(c, err)
		return
	}
	apy := decimal.New(int64(request.ApyBps), -2)
	c.JSON(http.StatusCreated, gin.H{"mint": request.Mint, "apy_percent": apy.String()})
}

// Stake settles pending rewards and adds to the caller's staked balance
func Stake(c *gin.Context) {
	var request StakeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rewards, err := Engine.Stake(request.Mint, request.Staker, request.Amount)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"staked": request.Amount, "rewards": rewards})
}

// WithdrawStake settles pending rewards and returns staked tokens after the
// lock period.
func WithdrawStake(c *gin.Context) {
	var request StakeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rewards, err := Engine.WithdrawStake(request.Mint, request.Staker, request.Amount)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawn": request.Amount, "rewards": rewards})
}

// ClaimStakeRewards pays out pending rewards without touching the stake
func ClaimStakeRewards(c *gin.Context) {
	var request StakeClaimRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rewards, err := Engine.ClaimStakeRewards(request.Mint, request.Staker)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rewards)
}

// GetPendingReward projects accruals to now without mutating state
func GetPendingReward(c *gin.Context) {
	mint := c.Query("mint")
	staker := c.Query("staker")
	if mint == "" || staker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mint and staker are required"})
		return
	}

	rewards, err := Engine.GetPendingReward(mint, staker)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rewards)
}

// GetStakedAmount returns the caller's current staked balance
func GetStakedAmount(c *gin.Context) {
	mint := c.Query("mint")
	staker := c.Query("staker")
	if mint == "" || staker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mint and staker are required"})
		return
	}

	staked, err := Engine.GetStakedAmount(mint, staker)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mint": mint, "staker": staker, "staked_amount": staked})
}
