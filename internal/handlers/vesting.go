package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"launchcontrol/internal/engine"
)

// VestingScheduleRequest represents the request body for creating a schedule
type VestingScheduleRequest struct {
	AssetMint        string `json:"asset_mint" binding:"required"`
	Funder           string `json:"funder" binding:"required"`
	Beneficiary      string `json:"beneficiary" binding:"required"`
	Amount           uint64 `json:"amount" binding:"required"`
	CliffSeconds     int64  `json:"cliff_seconds"`
	VestSeconds      int64  `json:"vest_seconds" binding:"required"`
	UpfrontUnlockBps uint64 `json:"upfront_unlock_bps"`
	LaunchCurveID    uint   `json:"launch_curve_id"`
}

// VestingBatchRequest represents the request body for a batch schedule
type VestingBatchRequest struct {
	AssetMint        string                      `json:"asset_mint" binding:"required"`
	Funder           string                      `json:"funder" binding:"required"`
	TotalAmount      uint64                      `json:"total_amount" binding:"required"`
	CliffSeconds     int64                       `json:"cliff_seconds"`
	VestSeconds      int64                       `json:"vest_seconds" binding:"required"`
	UpfrontUnlockBps uint64                      `json:"upfront_unlock_bps"`
	LaunchCurveID    uint                        `json:"launch_curve_id"`
	Entries          []engine.BatchScheduleEntry `json:"entries" binding:"required"`
}

// VestingClaimRequest represents the request body for a vesting claim
type VestingClaimRequest struct {
	AssetMint   string `json:"asset_mint" binding:"required"`
	Beneficiary string `json:"beneficiary" binding:"required"`
}

// CreateVestingSchedule creates one release schedule
func CreateVestingSchedule(c *gin.Context) {
	var request VestingScheduleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := Engine.CreateSchedule(engine.CreateScheduleParams{
		AssetMint:        request.AssetMint,
		Funder:           request.Funder,
		Beneficiary:      request.Beneficiary,
		Amount:           request.Amount,
		CliffSeconds:     request.CliffSeconds,
		VestSeconds:      request.VestSeconds,
		UpfrontUnlockBps: request.UpfrontUnlockBps,
		LaunchCurveID:    request.LaunchCurveID,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"asset_mint": request.AssetMint, "beneficiary": request.Beneficiary})
}

// CreateVestingBatch funds one deposit and splits it into per-beneficiary
// schedules by bps share.
func CreateVestingBatch(c *gin.Context) {
	var request VestingBatchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := Engine.CreateBatchSchedule(request.AssetMint, request.Funder, request.TotalAmount,
		request.CliffSeconds, request.VestSeconds, request.UpfrontUnlockBps,
		request.LaunchCurveID, request.Entries)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"asset_mint": request.AssetMint, "schedules": len(request.Entries)})
}

// ClaimVested releases everything currently claimable for the caller
func ClaimVested(c *gin.Context) {
	var request VestingClaimRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := Engine.ClaimVested(request.AssetMint, request.Beneficiary)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetVestingSchedule returns the live schedule for an (asset, beneficiary) pair
func GetVestingSchedule(c *gin.Context) {
	assetMint := c.Query("asset_mint")
	beneficiary := c.Query("beneficiary")
	if assetMint == "" || beneficiary == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "asset_mint and beneficiary are required"})
		return
	}

	schedule, err := Engine.GetSchedule(assetMint, beneficiary)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}
