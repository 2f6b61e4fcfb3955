package engine

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/utils"
)

// StakeRewards reports what a settlement paid out.
type StakeRewards struct {
	ApyReward uint64 `json:"apy_reward"`
	FeeReward uint64 `json:"fee_reward"`
}

// InitializeStakeAsset opens staking for an asset: seeds the reward pool from
// the funder's balance, fixes the APY and lock period, and starts the
// accumulator clock. One-time per asset.
func (s *Service) InitializeStakeAsset(mint, funder string, initialRewardPool, apyBps uint64, lockPeriodSeconds int64) error {
	if mint == "" {
		return fmt.Errorf("%w: mint required", ErrConfiguration)
	}
	if apyBps == 0 {
		return fmt.Errorf("%w: apy must be positive", ErrConfiguration)
	}

	unlock := s.locks.lock(stakeKey(mint))
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.StakeTokenInfo
		err := tx.Where("mint = ?", mint).First(&existing).Error
		if err == nil {
			return fmt.Errorf("%w: staking for %s already initialized", ErrState, mint)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if initialRewardPool > 0 {
			if err := s.assets.Deposit(tx, mint, funder, StakingCustody, initialRewardPool); err != nil {
				return fmt.Errorf("%w: seed reward pool: %v", ErrTransfer, err)
			}
		}
		info := models.StakeTokenInfo{
			Mint:              mint,
			RewardPool:        initialRewardPool,
			ApyBps:            apyBps,
			LastUpdateTime:    s.nowUnix(),
			LockPeriodSeconds: lockPeriodSeconds,
		}
		return tx.Create(&info).Error
	})
}

// Stake settles the caller's pending rewards, pulls the stake into custody
// and restarts the lock window for the whole balance.
func (s *Service) Stake(mint, staker string, amount uint64) (*StakeRewards, error) {
	if staker == "" || amount == 0 {
		return nil, fmt.Errorf("%w: staker and amount required", ErrConfiguration)
	}

	unlock := s.locks.lock(stakeKey(mint))
	defer unlock()

	var rewards StakeRewards
	err := s.db.Transaction(func(tx *gorm.DB) error {
		info, err := s.loadStakeInfo(tx, mint)
		if err != nil {
			return err
		}
		if err := s.accrue(tx, info); err != nil {
			return err
		}
		user, err := s.loadStakeUser(tx, mint, staker)
		if err != nil {
			return err
		}
		rewards, err = s.settleRewards(tx, info, user)
		if err != nil {
			return err
		}

		if err := s.assets.Deposit(tx, mint, staker, StakingCustody, amount); err != nil {
			return fmt.Errorf("%w: %v", ErrTransfer, err)
		}
		staked, err := utils.AddU64(user.StakedAmount, amount)
		if err != nil {
			return err
		}
		total, err := utils.AddU64(info.TotalStaked, amount)
		if err != nil {
			return err
		}
		// re-staking restarts the lock window for the whole balance
		if err := tx.Model(user).Updates(map[string]interface{}{
			"staked_amount":   staked,
			"stake_timestamp": s.nowUnix(),
		}).Error; err != nil {
			return err
		}
		return tx.Model(info).Update("total_staked", total).Error
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"mint": mint, "staker": staker, "amount": amount}).Info("stake added")
	return &rewards, nil
}

// WithdrawStake settles pending rewards and returns amount of the stake to
// the caller. Rejects before the lock period has elapsed.
func (s *Service) WithdrawStake(mint, staker string, amount uint64) (*StakeRewards, error) {
	if staker == "" || amount == 0 {
		return nil, fmt.Errorf("%w: staker and amount required", ErrConfiguration)
	}

	unlock := s.locks.lock(stakeKey(mint))
	defer unlock()

	var rewards StakeRewards
	err := s.db.Transaction(func(tx *gorm.DB) error {
		info, err := s.loadStakeInfo(tx, mint)
		if err != nil {
			return err
		}
		user, err := s.loadStakeUser(tx, mint, staker)
		if err != nil {
			return err
		}
		if s.nowUnix() < user.StakeTimestamp+info.LockPeriodSeconds {
			return fmt.Errorf("%w: stake locked until %d", ErrState, user.StakeTimestamp+info.LockPeriodSeconds)
		}
		if user.StakedAmount < amount {
			return fmt.Errorf("%w: staked %d, withdraw %d", ErrLimit, user.StakedAmount, amount)
		}
		if err := s.accrue(tx, info); err != nil {
			return err
		}
		rewards, err = s.settleRewards(tx, info, user)
		if err != nil {
			return err
		}

		if err := s.assets.Withdraw(tx, mint, StakingCustody, staker, amount); err != nil {
			return fmt.Errorf("%w: %v", ErrTransfer, err)
		}
		if err := tx.Model(user).Update("staked_amount", user.StakedAmount-amount).Error; err != nil {
			return err
		}
		return tx.Model(info).Update("total_staked", utils.SatSub(info.TotalStaked, amount)).Error
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"mint": mint, "staker": staker, "amount": amount}).Info("stake withdrawn")
	return &rewards, nil
}

// ClaimStakeRewards pays the caller's accrued APY reward and, for the
// designated fee-bearing asset, their fee-redistribution share. A zero payout
// is a valid no-op.
func (s *Service) ClaimStakeRewards(mint, staker string) (*StakeRewards, error) {
	if staker == "" {
		return nil, fmt.Errorf("%w: staker required", ErrConfiguration)
	}

	unlock := s.locks.lock(stakeKey(mint))
	defer unlock()

	var rewards StakeRewards
	err := s.db.Transaction(func(tx *gorm.DB) error {
		info, err := s.loadStakeInfo(tx, mint)
		if err != nil {
			return err
		}
		if err := s.accrue(tx, info); err != nil {
			return err
		}
		user, err := s.loadStakeUser(tx, mint, staker)
		if err != nil {
			return err
		}
		rewards, err = s.settleRewards(tx, info, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &rewards, nil
}

// ReceiveFeeShare pushes a trading-fee cut into the fee-redistribution
// stream. When redistribution is disabled or nothing is staked, the amount is
// diverted to the admin fund instead of being silently lost.
func (s *Service) ReceiveFeeShare(amount uint64) error {
	if amount == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		feeCfg, err := s.feeConfig(tx)
		if err != nil {
			return err
		}
		return s.receiveFeeShareTx(tx, feeCfg, amount)
	})
}

func (s *Service) receiveFeeShareTx(tx *gorm.DB, feeCfg *models.FeeConfig, amount uint64) error {
	state, err := s.loadFeeRewardState(tx)
	if err != nil {
		return err
	}

	var totalStaked uint64
	if feeCfg.FeeShareEnabled && feeCfg.FeeAssetMint != "" {
		var info models.StakeTokenInfo
		err := tx.Where("mint = ?", feeCfg.FeeAssetMint).First(&info).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		totalStaked = info.TotalStaked
	}

	if !feeCfg.FeeShareEnabled || totalStaked == 0 {
		fund, err := utils.AddU64(state.AdminFund, amount)
		if err != nil {
			return err
		}
		return tx.Model(state).Update("admin_fund", fund).Error
	}

	perUnit, err := utils.MulDiv(amount, utils.AccumulatorScale, totalStaked)
	if err != nil {
		return err
	}
	pool, err := utils.AddU64(state.FeeRewardPool, amount)
	if err != nil {
		return err
	}
	return tx.Model(state).Updates(map[string]interface{}{
		"fee_reward_per_unit": state.FeeRewardPerUnit + perUnit,
		"fee_reward_pool":     pool,
	}).Error
}

// GetPendingReward computes the caller's accrued-but-unpaid rewards without
// mutating state.
func (s *Service) GetPendingReward(mint, staker string) (*StakeRewards, error) {
	var rewards StakeRewards
	err := s.db.Transaction(func(tx *gorm.DB) error {
		info, err := s.loadStakeInfo(tx, mint)
		if err != nil {
			return err
		}
		user, err := s.loadStakeUser(tx, mint, staker)
		if err != nil {
			return err
		}
		stored, err := projectedAccumulator(info, s.nowUnix())
		if err != nil {
			return err
		}
		apy, err := utils.MulDiv(user.StakedAmount, utils.SatSub(stored, user.RewardPerUnitPaid), utils.AccumulatorScale)
		if err != nil {
			return err
		}
		rewards.ApyReward = utils.MinU64(apy, info.RewardPool)

		feeCfg, err := s.feeConfig(tx)
		if err != nil {
			return err
		}
		if mint == feeCfg.FeeAssetMint && feeCfg.FeeAssetMint != "" {
			state, err := s.loadFeeRewardState(tx)
			if err != nil {
				return err
			}
			feeReward, err := utils.MulDiv(user.StakedAmount, utils.SatSub(state.FeeRewardPerUnit, user.FeeRewardPerUnitPaid), utils.AccumulatorScale)
			if err != nil {
				return err
			}
			rewards.FeeReward = utils.MinU64(feeReward, state.FeeRewardPool)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rewards, nil
}

// GetStakedAmount returns staker's current stake in mint.
func (s *Service) GetStakedAmount(mint, staker string) (uint64, error) {
	return s.stakedAmountTx(s.db, mint, staker)
}

// AccrueStakeAsset advances the stored APY accumulator to now. Stake changes
// and claims accrue lazily on their own; this keeps long-idle pools fresh for
// snapshots.
func (s *Service) AccrueStakeAsset(mint string) error {
	unlock := s.locks.lock(stakeKey(mint))
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		info, err := s.loadStakeInfo(tx, mint)
		if err != nil {
			return err
		}
		return s.accrue(tx, info)
	})
}

func (s *Service) stakedAmountTx(tx *gorm.DB, mint, staker string) (uint64, error) {
	if mint == "" {
		return 0, nil
	}
	var user models.StakeUserInfo
	err := tx.Where("mint = ? AND address = ?", mint, staker).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return user.StakedAmount, nil
}

// accrue advances the APY accumulator to now. With nothing staked only the
// clock moves; no reward accrues to nobody.
func (s *Service) accrue(tx *gorm.DB, info *models.StakeTokenInfo) error {
	now := s.nowUnix()
	stored, err := projectedAccumulator(info, now)
	if err != nil {
		return err
	}
	info.RewardPerUnitStored = stored
	info.LastUpdateTime = now
	return tx.Model(info).Updates(map[string]interface{}{
		"reward_per_unit_stored": stored,
		"last_update_time":       now,
	}).Error
}

// projectedAccumulator returns the APY accumulator as of `now` without
// writing it: stored + apy * elapsed * scale / (secondsPerYear * 10000).
func projectedAccumulator(info *models.StakeTokenInfo, now int64) (uint64, error) {
	if info.TotalStaked == 0 || now <= info.LastUpdateTime {
		return info.RewardPerUnitStored, nil
	}
	elapsed := uint64(now - info.LastUpdateTime)
	delta, err := utils.MulDiv3(info.ApyBps, elapsed, utils.AccumulatorScale, utils.SecondsPerYear*utils.BpsDenominator)
	if err != nil {
		return 0, fmt.Errorf("accumulator for %s: %w", info.Mint, err)
	}
	return info.RewardPerUnitStored + delta, nil
}

// settleRewards pays the user's pending APY and fee rewards, clipped to the
// respective pools, and advances both paid checkpoints fully. Any excess
// above pool capacity is forfeited, not carried forward.
func (s *Service) settleRewards(tx *gorm.DB, info *models.StakeTokenInfo, user *models.StakeUserInfo) (StakeRewards, error) {
	var rewards StakeRewards

	apy, err := utils.MulDiv(user.StakedAmount, utils.SatSub(info.RewardPerUnitStored, user.RewardPerUnitPaid), utils.AccumulatorScale)
	if err != nil {
		return rewards, err
	}
	rewards.ApyReward = utils.MinU64(apy, info.RewardPool)
	if rewards.ApyReward > 0 {
		if err := s.assets.Withdraw(tx, info.Mint, StakingCustody, user.Address, rewards.ApyReward); err != nil {
			return rewards, fmt.Errorf("%w: %v", ErrTransfer, err)
		}
		info.RewardPool -= rewards.ApyReward
		if err := tx.Model(info).Update("reward_pool", info.RewardPool).Error; err != nil {
			return rewards, err
		}
	}

	updates := map[string]interface{}{
		"reward_per_unit_paid": info.RewardPerUnitStored,
	}

	feeCfg, err := s.feeConfig(tx)
	if err != nil {
		return rewards, err
	}
	if info.Mint == feeCfg.FeeAssetMint && feeCfg.FeeAssetMint != "" {
		state, err := s.loadFeeRewardState(tx)
		if err != nil {
			return rewards, err
		}
		feeReward, err := utils.MulDiv(user.StakedAmount, utils.SatSub(state.FeeRewardPerUnit, user.FeeRewardPerUnitPaid), utils.AccumulatorScale)
		if err != nil {
			return rewards, err
		}
		rewards.FeeReward = utils.MinU64(feeReward, state.FeeRewardPool)
		if rewards.FeeReward > 0 {
			if err := s.assets.Withdraw(tx, info.Mint, StakingCustody, user.Address, rewards.FeeReward); err != nil {
				return rewards, fmt.Errorf("%w: %v", ErrTransfer, err)
			}
			if err := tx.Model(state).Update("fee_reward_pool", state.FeeRewardPool-rewards.FeeReward).Error; err != nil {
				return rewards, err
			}
		}
		updates["fee_reward_per_unit_paid"] = state.FeeRewardPerUnit
		user.FeeRewardPerUnitPaid = state.FeeRewardPerUnit
	}

	user.RewardPerUnitPaid = info.RewardPerUnitStored
	return rewards, tx.Model(user).Updates(updates).Error
}

func (s *Service) loadStakeInfo(tx *gorm.DB, mint string) (*models.StakeTokenInfo, error) {
	var info models.StakeTokenInfo
	err := tx.Where("mint = ?", mint).First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: staking not initialized for %s", ErrNotFound, mint)
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *Service) loadStakeUser(tx *gorm.DB, mint, address string) (*models.StakeUserInfo, error) {
	var user models.StakeUserInfo
	err := tx.Where("mint = ? AND address = ?", mint, address).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.StakeUserInfo{Mint: mint, Address: address}
		if err := tx.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) loadFeeRewardState(tx *gorm.DB) (*models.FeeRewardState, error) {
	var state models.FeeRewardState
	err := tx.First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		state = models.FeeRewardState{}
		if err := tx.Create(&state).Error; err != nil {
			return nil, err
		}
		return &state, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func stakeKey(mint string) string {
	return "stake:" + mint
}
