package models

import (
	"time"
)

// LaunchCurve holds the per-launch bonding curve state. Configuration fields
// (supplies, target, virtual reserves) are written once at initialization and
// never mutated afterwards; trading mutates only the sold/raised counters and
// the lifecycle flags.
type LaunchCurve struct {
	ID                     uint   `gorm:"primarykey" json:"id"`
	TokenMint              string `gorm:"size:100;uniqueIndex;not null" json:"token_mint"`
	BaseAssetMint          string `gorm:"size:100;not null;index" json:"base_asset_mint"`
	CustodyAccount         string `gorm:"size:100;not null" json:"custody_account"`
	OwnerAddress           string `gorm:"size:100;not null" json:"owner_address"`
	VerifierKey            string `gorm:"size:100;default:''" json:"verifier_key"`
	SaleSupply             uint64 `gorm:"not null" json:"sale_supply"`
	LiquidityReserveSupply uint64 `gorm:"not null" json:"liquidity_reserve_supply"`
	FinalBaseTarget        uint64 `gorm:"not null" json:"final_base_target"`
	VirtualTokenReserve    uint64 `gorm:"not null" json:"virtual_token_reserve"`
	VirtualBaseReserve     uint64 `gorm:"not null" json:"virtual_base_reserve"`
	TokensSold             uint64 `gorm:"default:0" json:"tokens_sold"`
	BaseRaised             uint64 `gorm:"default:0" json:"base_raised"`
	TradingStarted         bool   `gorm:"default:false" json:"trading_started"`
	Complete               bool   `gorm:"default:false" json:"complete"`
	CompletedAt            int64  `gorm:"default:0" json:"completed_at"` // unix seconds, 0 = unset
	LiquidityMigrated      bool   `gorm:"default:false" json:"liquidity_migrated"`
	AutoMigrate            bool   `gorm:"default:false" json:"auto_migrate"`
	PoolAddress            string `gorm:"size:100;default:''" json:"pool_address"`
	PositionID             string `gorm:"size:100;default:''" json:"position_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LaunchCurve) TableName() string {
	return "launch_curve"
}

// LaunchUserBuy records cumulative net base asset spent per buyer per launch,
// the counter the per-user purchase cap is enforced against.
type LaunchUserBuy struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	LaunchCurveID uint   `gorm:"uniqueIndex:idx_launch_user;not null" json:"launch_curve_id"`
	Address       string `gorm:"size:100;uniqueIndex:idx_launch_user;not null" json:"address"`
	BaseBought    uint64 `gorm:"default:0" json:"base_bought"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LaunchUserBuy) TableName() string {
	return "launch_user_buy"
}

// LaunchStat is a periodic snapshot of curve progress written by the
// schedule jobs.
type LaunchStat struct {
	ID            uint    `gorm:"primarykey" json:"id"`
	LaunchCurveID uint    `gorm:"index;not null" json:"launch_curve_id"`
	TokensSold    uint64  `json:"tokens_sold"`
	BaseRaised    uint64  `json:"base_raised"`
	Price         uint64  `json:"price"` // scaled by AccumulatorScale
	ProgressPct   float64 `json:"progress_pct"`
	Complete      bool    `json:"complete"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (LaunchStat) TableName() string {
	return "launch_stat"
}
