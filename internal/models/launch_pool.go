package models

import (
	"time"
)

// LaunchPool is the external pool shell created at launch initialization and
// funded at migration.
type LaunchPool struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	PoolAddress  string `gorm:"size:100;uniqueIndex;not null" json:"pool_address"`
	BaseMint     string `gorm:"size:100;not null;index" json:"base_mint"`
	QuoteMint    string `gorm:"size:100;not null;index" json:"quote_mint"`
	FeeTier      uint32 `gorm:"default:0" json:"fee_tier"`
	SqrtPriceX64 string `gorm:"size:64;default:''" json:"sqrt_price_x64"`
	Initialized  bool   `gorm:"default:false" json:"initialized"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LaunchPool) TableName() string {
	return "launch_pool"
}

// LaunchPoolPosition is one minted liquidity position in a launch pool.
type LaunchPoolPosition struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	PositionID  string `gorm:"size:100;uniqueIndex;not null" json:"position_id"`
	PoolAddress string `gorm:"size:100;not null;index" json:"pool_address"`
	BaseAmount  uint64 `gorm:"default:0" json:"base_amount"`
	QuoteAmount uint64 `gorm:"default:0" json:"quote_amount"`
	Deadline    int64  `gorm:"default:0" json:"deadline"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LaunchPoolPosition) TableName() string {
	return "launch_pool_position"
}
