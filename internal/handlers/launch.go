package handlers

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"launchcontrol/internal/engine"
	"launchcontrol/pkg/utils"
)

// CreateLaunchRequest represents the request body for creating a full launch
type CreateLaunchRequest struct {
	TokenMint     string `json:"token_mint" binding:"required"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Decimals      int    `json:"decimals"`
	TotalSupply   uint64 `json:"total_supply" binding:"required"`
	Creator       string `json:"creator" binding:"required"`
	BaseAssetMint string `json:"base_asset_mint" binding:"required"`
	VerifierKey   string `json:"verifier_key"`
	AutoMigrate   bool   `json:"auto_migrate"`
	PoolFeeTier   uint32 `json:"pool_fee_tier"`

	BondingBps   uint64 `json:"bonding_bps" binding:"required"`
	LiquidityBps uint64 `json:"liquidity_bps" binding:"required"`
	DevTeamBps   uint64 `json:"dev_team_bps"`
	StakingBps   uint64 `json:"staking_bps"`

	DevCliffSeconds int64                       `json:"dev_cliff_seconds"`
	DevVestSeconds  int64                       `json:"dev_vest_seconds"`
	DevUpfrontBps   uint64                      `json:"dev_upfront_bps"`
	DevTeam         []engine.BatchScheduleEntry `json:"dev_team"`
	FinalBaseTarget uint64                      `json:"final_base_target"`
}

// BuyRequest represents the request body for a curve buy
type BuyRequest struct {
	Buyer            string `json:"buyer" binding:"required"`
	BaseAmount       uint64 `json:"base_amount" binding:"required"`
	BonusCapIncrease uint64 `json:"bonus_cap_increase"`
	Expiry           int64  `json:"expiry"`
	Signature        string `json:"signature"`
}

// SellRequest represents the request body for a curve sell
type SellRequest struct {
	Seller      string `json:"seller" binding:"required"`
	TokenAmount uint64 `json:"token_amount" binding:"required"`
}

// CreateLaunch creates a token, its trading curve, the dev-team vesting
// schedules and the staking reserve in one request.
func CreateLaunch(c *gin.Context) {
	var request CreateLaunchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	launchID, err := Engine.CreateLaunch(engine.CreateLaunchParams{
		TokenMint:       request.TokenMint,
		Symbol:          request.Symbol,
		Name:            request.Name,
		Decimals:        request.Decimals,
		TotalSupply:     request.TotalSupply,
		Creator:         request.Creator,
		BaseAssetMint:   request.BaseAssetMint,
		VerifierKey:     request.VerifierKey,
		AutoMigrate:     request.AutoMigrate,
		PoolFeeTier:     request.PoolFeeTier,
		BondingBps:      request.BondingBps,
		LiquidityBps:    request.LiquidityBps,
		DevTeamBps:      request.DevTeamBps,
		StakingBps:      request.StakingBps,
		DevCliffSeconds: request.DevCliffSeconds,
		DevVestSeconds:  request.DevVestSeconds,
		DevUpfrontBps:   request.DevUpfrontBps,
		DevTeam:         request.DevTeam,
		FinalBaseTarget: request.FinalBaseTarget,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"launch_id": launchID})
}

// GetLaunch returns a specific launch curve by ID
func GetLaunch(c *gin.Context) {
	id, err := parseLaunchID(c)
	if err != nil {
		return
	}

	curve, err := Engine.GetCurve(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, curve)
}

// StartTrading opens the curve for buys and sells
func StartTrading(c *gin.Context) {
	id, err := parseLaunchID(c)
	if err != nil {
		return
	}

	if err := Engine.StartTrading(id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"launch_id": id, "trading_started": true})
}

// Buy executes a curve buy for the caller
func Buy(c *gin.Context) {
	id, err := parseLaunchID(c)
	if err != nil {
		return
	}

	var request BuyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := Engine.Buy(id, request.Buyer, request.BaseAmount, request.BonusCapIncrease, request.Expiry, request.Signature)
	if err != nil {
		abortWithError(c, err)
		return
	}
	broadcastTrade(result)
	c.JSON(http.StatusOK, result)
}

// Sell executes a curve sell for the caller
func Sell(c *gin.Context) {
	id, err := parseLaunchID(c)
	if err != nil {
		return
	}

	var request SellRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := Engine.Sell(id, request.Seller, request.TokenAmount)
	if err != nil {
		abortWithError(c, err)
		return
	}
	broadcastTrade(result)
	c.JSON(http.StatusOK, result)
}

// Quote returns the token amount a base deposit would buy right now
func Quote(c *gin.Context) {
	id, err := parseLaunchID(c)
	if err != nil {
		return
	}
	baseAmount, err := strconv.ParseUint(c.Query("base_amount"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid base_amount"})
		return
	}

	tokens, err := Engine.Quote(id, baseAmount)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"base_amount": baseAmount, "token_amount": tokens})
}

// QuoteInverse returns the base proceeds a token sale would yield right now
func QuoteInverse(c *gin.Context) {
	id, err := parseLaunchID(c)
	if err != nil {
		return
	}
	tokenAmount, err := strconv.ParseUint(c.Query("token_amount"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token_amount"})
		return
	}

	base, err := Engine.QuoteInverse(id, tokenAmount)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token_amount": tokenAmount, "base_amount": base})
}

// GetPrice returns the current spot price, both raw (scaled by 1e12) and as a
// display decimal.
func GetPrice(c *gin.Context) {
	id, err := parseLaunchID(c)
	if err != nil {
		return
	}

	price, err := Engine.CurrentPrice(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	display := decimal.NewFromBigInt(new(big.Int).SetUint64(price), -12)
	c.JSON(http.StatusOK, gin.H{
		"launch_id":      id,
		"price_raw":      price,
		"price_scale":    utils.AccumulatorScale,
		"price_readable": display.String(),
	})
}

// Migrate moves a completed curve's liquidity into the external pool
func Migrate(c *gin.Context) {
	id, err := parseLaunchID(c)
	if err != nil {
		return
	}

	if err := Engine.Migrate(id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"launch_id": id, "liquidity_migrated": true})
}

func parseLaunchID(c *gin.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return 0, strconv.ErrSyntax
	}
	return uint(id), nil
}
