package models

import (
	"time"
)

// AssetBalance is one holder's custody balance in one base asset.
type AssetBalance struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	AssetMint string `gorm:"size:100;uniqueIndex:idx_asset_holder;not null" json:"asset_mint"`
	Holder    string `gorm:"size:100;uniqueIndex:idx_asset_holder;not null" json:"holder"`
	Amount    uint64 `gorm:"default:0" json:"amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AssetBalance) TableName() string {
	return "asset_balance"
}

// AssetAllowance authorizes a spender to pull up to Amount of an owner's
// balance. Only non-native assets go through the allowance path.
type AssetAllowance struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	AssetMint string `gorm:"size:100;uniqueIndex:idx_asset_allowance;not null" json:"asset_mint"`
	Owner     string `gorm:"size:100;uniqueIndex:idx_asset_allowance;not null" json:"owner"`
	Spender   string `gorm:"size:100;uniqueIndex:idx_asset_allowance;not null" json:"spender"`
	Amount    uint64 `gorm:"default:0" json:"amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AssetAllowance) TableName() string {
	return "asset_allowance"
}

// AssetTransferRecord is the audit trail of every custody movement.
type AssetTransferRecord struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	AssetMint  string `gorm:"size:100;index;not null" json:"asset_mint"`
	FromHolder string `gorm:"size:100;not null" json:"from_holder"`
	ToHolder   string `gorm:"size:100;not null" json:"to_holder"`
	Amount     uint64 `gorm:"not null" json:"amount"`
	Memo       string `gorm:"size:64;default:''" json:"memo"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AssetTransferRecord) TableName() string {
	return "asset_transfer_record"
}
