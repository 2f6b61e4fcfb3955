package models

import (
	"time"
)

// StakeTokenInfo is the per-asset staking pool. RewardPerUnitStored is the
// APY accumulator scaled by AccumulatorScale; it only ever increases.
type StakeTokenInfo struct {
	ID                  uint   `gorm:"primarykey" json:"id"`
	Mint                string `gorm:"size:100;uniqueIndex;not null" json:"mint"`
	TotalStaked         uint64 `gorm:"default:0" json:"total_staked"`
	RewardPool          uint64 `gorm:"default:0" json:"reward_pool"`
	ApyBps              uint64 `gorm:"not null" json:"apy_bps"`
	RewardPerUnitStored uint64 `gorm:"default:0" json:"reward_per_unit_stored"`
	LastUpdateTime      int64  `gorm:"not null" json:"last_update_time"`
	LockPeriodSeconds   int64  `gorm:"default:0" json:"lock_period_seconds"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (StakeTokenInfo) TableName() string {
	return "stake_token_info"
}

// StakeUserInfo is one staker's position in one asset pool. The row is never
// deleted; a balance can drop to zero and be reused.
type StakeUserInfo struct {
	ID                   uint   `gorm:"primarykey" json:"id"`
	Mint                 string `gorm:"size:100;uniqueIndex:idx_stake_user;not null" json:"mint"`
	Address              string `gorm:"size:100;uniqueIndex:idx_stake_user;not null" json:"address"`
	StakedAmount         uint64 `gorm:"default:0" json:"staked_amount"`
	RewardPerUnitPaid    uint64 `gorm:"default:0" json:"reward_per_unit_paid"`
	FeeRewardPerUnitPaid uint64 `gorm:"default:0" json:"fee_reward_per_unit_paid"`
	StakeTimestamp       int64  `gorm:"default:0" json:"stake_timestamp"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (StakeUserInfo) TableName() string {
	return "stake_user_info"
}

// FeeRewardState is the single global fee-redistribution accumulator for the
// designated fee-bearing asset. AdminFund collects fee amounts that could not
// be distributed (redistribution disabled, or nothing staked).
type FeeRewardState struct {
	ID               uint   `gorm:"primarykey" json:"id"`
	FeeRewardPool    uint64 `gorm:"default:0" json:"fee_reward_pool"`
	FeeRewardPerUnit uint64 `gorm:"default:0" json:"fee_reward_per_unit"`
	AdminFund        uint64 `gorm:"default:0" json:"admin_fund"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (FeeRewardState) TableName() string {
	return "fee_reward_state"
}

// StakingStat is a periodic pool snapshot written by the schedule jobs.
type StakingStat struct {
	ID                  uint   `gorm:"primarykey" json:"id"`
	Mint                string `gorm:"size:100;index;not null" json:"mint"`
	TotalStaked         uint64 `json:"total_staked"`
	RewardPool          uint64 `json:"reward_pool"`
	RewardPerUnitStored uint64 `json:"reward_per_unit_stored"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (StakingStat) TableName() string {
	return "staking_stat"
}
