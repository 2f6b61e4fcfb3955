package models

import (
	"time"
)

// BaseAssetPolicy is the shared per-base-asset configuration read by every
// curve trading against that asset. Admin-updatable at any time; engines
// re-read it on every operation instead of caching.
type BaseAssetPolicy struct {
	ID                 uint   `gorm:"primarykey" json:"id"`
	Mint               string `gorm:"size:100;uniqueIndex;not null" json:"mint"`
	FinalBaseTarget    uint64 `gorm:"not null" json:"final_base_target"`
	MaxBuyPerUser      uint64 `gorm:"default:0" json:"max_buy_per_user"`
	MaxBuyPerTx        uint64 `gorm:"default:0" json:"max_buy_per_tx"`
	RequiredStakeToBuy uint64 `gorm:"default:0" json:"required_stake_to_buy"`
	Enabled            bool   `gorm:"default:true" json:"enabled"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BaseAssetPolicy) TableName() string {
	return "base_asset_policy"
}

// FeeConfig is the single global fee/burn configuration row. FeeAssetMint is
// the designated fee-bearing asset: trading fees collected in it are routed to
// the staking fee-reward stream, fees in any other asset are burned.
type FeeConfig struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	FeeBps          uint64 `gorm:"default:0" json:"fee_bps"`
	BurnBps         uint64 `gorm:"default:0" json:"burn_bps"`
	FeeAssetMint    string `gorm:"size:100;default:''" json:"fee_asset_mint"`
	FeeShareEnabled bool   `gorm:"default:true" json:"fee_share_enabled"`
	CreationFee     uint64 `gorm:"default:0" json:"creation_fee"`
	FeeRecipient    string `gorm:"size:100;default:''" json:"fee_recipient"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (FeeConfig) TableName() string {
	return "fee_config"
}
