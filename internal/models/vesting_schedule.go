package models

import (
	"time"
)

// DeferredStartTime marks a schedule whose start is bound to the launch
// curve's completion timestamp on the beneficiary's first claim.
const DeferredStartTime int64 = -1

// VestingSchedule is one live release schedule per (asset, beneficiary) pair.
// The row is deleted once the full vested amount has been released.
type VestingSchedule struct {
	ID                  uint   `gorm:"primarykey" json:"id"`
	AssetMint           string `gorm:"size:100;uniqueIndex:idx_vesting_pair;not null" json:"asset_mint"`
	Beneficiary         string `gorm:"size:100;uniqueIndex:idx_vesting_pair;not null" json:"beneficiary"`
	TotalVestedAmount   uint64 `gorm:"not null" json:"total_vested_amount"`
	UpfrontUnlockAmount uint64 `gorm:"default:0" json:"upfront_unlock_amount"`
	UnlockClaimed       bool   `gorm:"default:false" json:"unlock_claimed"`
	StartTime           int64  `gorm:"not null" json:"start_time"` // unix seconds, -1 = deferred
	CliffSeconds        int64  `gorm:"default:0" json:"cliff_seconds"`
	VestSeconds         int64  `gorm:"not null" json:"vest_seconds"`
	ReleasedAmount      uint64 `gorm:"default:0" json:"released_amount"`
	LastClaimTime       int64  `gorm:"default:0" json:"last_claim_time"`
	LaunchCurveID       uint   `gorm:"default:0" json:"launch_curve_id"` // 0 = not curve-anchored

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (VestingSchedule) TableName() string {
	return "vesting_schedule"
}
