package models

import (
	"time"
)

// LaunchToken is the fungible-token ledger state for one launched mint.
// Before Launched flips, transfers are only permitted when one side is the
// RestrictedTo account (the curve's custody).
type LaunchToken struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Mint         string `gorm:"size:100;uniqueIndex;not null" json:"mint"`
	Symbol       string `gorm:"size:16;not null" json:"symbol"`
	Name         string `gorm:"size:64;not null" json:"name"`
	Decimals     int    `gorm:"not null" json:"decimals"`
	TotalSupply  uint64 `gorm:"not null" json:"total_supply"`
	BurnedSupply uint64 `gorm:"default:0" json:"burned_supply"`
	Creator      string `gorm:"size:128;default:''" json:"creator"`
	Launched     bool   `gorm:"default:false" json:"launched"`
	RestrictedTo string `gorm:"size:100;default:''" json:"restricted_to"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LaunchToken) TableName() string {
	return "launch_token"
}

// TokenBalance is one holder's balance of one launched mint.
type TokenBalance struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Mint   string `gorm:"size:100;uniqueIndex:idx_token_holder;not null" json:"mint"`
	Holder string `gorm:"size:100;uniqueIndex:idx_token_holder;not null" json:"holder"`
	Amount uint64 `gorm:"default:0" json:"amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TokenBalance) TableName() string {
	return "token_balance"
}

// TokenAllowance mirrors the ERC20-style approve/transferFrom surface.
type TokenAllowance struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	Mint    string `gorm:"size:100;uniqueIndex:idx_token_allowance;not null" json:"mint"`
	Owner   string `gorm:"size:100;uniqueIndex:idx_token_allowance;not null" json:"owner"`
	Spender string `gorm:"size:100;uniqueIndex:idx_token_allowance;not null" json:"spender"`
	Amount  uint64 `gorm:"default:0" json:"amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TokenAllowance) TableName() string {
	return "token_allowance"
}
