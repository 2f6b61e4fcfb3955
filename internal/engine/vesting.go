package engine

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/utils"
)

// CreateScheduleParams configures one release schedule. A zero LaunchCurveID
// starts the schedule immediately; otherwise the start is deferred until the
// referenced curve reports completion.
type CreateScheduleParams struct {
	AssetMint        string
	Funder           string
	Beneficiary      string
	Amount           uint64
	CliffSeconds     int64
	VestSeconds      int64
	UpfrontUnlockBps uint64
	LaunchCurveID    uint
}

// BatchScheduleEntry is one beneficiary's share of a batch deposit, in bps.
type BatchScheduleEntry struct {
	Beneficiary string `json:"beneficiary"`
	ShareBps    uint64 `json:"share_bps"`
}

// ClaimResult reports what a vesting claim released.
type ClaimResult struct {
	UnlockReleased uint64 `json:"unlock_released"`
	VestedReleased uint64 `json:"vested_released"`
	TotalReleased  uint64 `json:"total_released"`
	ScheduleClosed bool   `json:"schedule_closed"`
}

// CreateSchedule creates the single live schedule for an (asset, beneficiary)
// pair, splitting the deposit into an immediate unlock portion and a
// cliff-plus-linear vested remainder.
func (s *Service) CreateSchedule(p CreateScheduleParams) error {
	if p.AssetMint == "" || p.Beneficiary == "" || p.Funder == "" {
		return fmt.Errorf("%w: missing address", ErrConfiguration)
	}
	if p.Amount == 0 {
		return fmt.Errorf("%w: amount must be positive", ErrConfiguration)
	}
	if p.VestSeconds <= 0 {
		return fmt.Errorf("%w: vest duration must be positive", ErrConfiguration)
	}
	if p.UpfrontUnlockBps > utils.BpsDenominator {
		return fmt.Errorf("%w: upfront unlock exceeds 100%%", ErrConfiguration)
	}

	unlock := s.locks.lock(vestingKey(p.AssetMint, p.Beneficiary))
	defer unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.createScheduleTx(tx, p)
	})
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"asset":       p.AssetMint,
		"beneficiary": p.Beneficiary,
		"amount":      p.Amount,
		"deferred":    p.LaunchCurveID != 0,
	}).Info("vesting schedule created")
	return nil
}

// CreateBatchSchedule creates several schedules against one shared deposit.
// The beneficiary shares must sum to exactly 100%.
func (s *Service) CreateBatchSchedule(assetMint, funder string, totalAmount uint64, cliffSeconds, vestSeconds int64, upfrontUnlockBps uint64, launchCurveID uint, entries []BatchScheduleEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: no beneficiaries", ErrConfiguration)
	}
	var sum uint64
	for _, e := range entries {
		sum += e.ShareBps
	}
	if sum != utils.BpsDenominator {
		return fmt.Errorf("%w: shares sum to %d bps, want %d", ErrConfiguration, sum, utils.BpsDenominator)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			amount := utils.BpsOf(totalAmount, e.ShareBps)
			if err := s.createScheduleTx(tx, CreateScheduleParams{
				AssetMint:        assetMint,
				Funder:           funder,
				Beneficiary:      e.Beneficiary,
				Amount:           amount,
				CliffSeconds:     cliffSeconds,
				VestSeconds:      vestSeconds,
				UpfrontUnlockBps: upfrontUnlockBps,
				LaunchCurveID:    launchCurveID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) createScheduleTx(tx *gorm.DB, p CreateScheduleParams) error {
	if p.Amount == 0 || p.Beneficiary == "" {
		return fmt.Errorf("%w: empty beneficiary or amount", ErrConfiguration)
	}
	if p.VestSeconds <= 0 {
		return fmt.Errorf("%w: vest duration must be positive", ErrConfiguration)
	}

	var existing models.VestingSchedule
	err := tx.Where("asset_mint = ? AND beneficiary = ?", p.AssetMint, p.Beneficiary).First(&existing).Error
	if err == nil {
		return fmt.Errorf("%w: schedule already exists for %s/%s", ErrState, p.AssetMint, p.Beneficiary)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := s.tokens.Transfer(tx, p.AssetMint, p.Funder, VestingCustody, p.Amount); err != nil {
		return fmt.Errorf("%w: fund vesting custody: %v", ErrTransfer, err)
	}

	upfront := utils.BpsOf(p.Amount, p.UpfrontUnlockBps)
	startTime := s.nowUnix()
	if p.LaunchCurveID != 0 {
		startTime = models.DeferredStartTime
	}
	schedule := models.VestingSchedule{
		AssetMint:           p.AssetMint,
		Beneficiary:         p.Beneficiary,
		TotalVestedAmount:   p.Amount - upfront,
		UpfrontUnlockAmount: upfront,
		StartTime:           startTime,
		CliffSeconds:        p.CliffSeconds,
		VestSeconds:         p.VestSeconds,
		LaunchCurveID:       p.LaunchCurveID,
	}
	return tx.Create(&schedule).Error
}

// ClaimVested releases whatever the schedule owes the beneficiary right now:
// the one-time upfront unlock (independent of cliff and curve state) plus the
// linearly vested amount. A deferred schedule binds its start time to the
// curve's completion timestamp on the first claim after completion. The row
// is removed once the full vested amount has been released.
func (s *Service) ClaimVested(assetMint, beneficiary string) (*ClaimResult, error) {
	if assetMint == "" || beneficiary == "" {
		return nil, fmt.Errorf("%w: asset and beneficiary required", ErrConfiguration)
	}

	unlock := s.locks.lock(vestingKey(assetMint, beneficiary))
	defer unlock()

	var res ClaimResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var schedule models.VestingSchedule
		err := tx.Where("asset_mint = ? AND beneficiary = ?", assetMint, beneficiary).First(&schedule).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no schedule for %s/%s", ErrNotFound, assetMint, beneficiary)
		}
		if err != nil {
			return err
		}

		now := s.nowUnix()
		vestingActive := true
		if schedule.StartTime == models.DeferredStartTime {
			complete, completedAt, err := s.status.CurveStatus(schedule.LaunchCurveID)
			if err != nil {
				return err
			}
			if complete {
				// one-time, sticky binding to the completion timestamp
				schedule.StartTime = completedAt
				if err := tx.Model(&schedule).Update("start_time", completedAt).Error; err != nil {
					return err
				}
			} else {
				vestingActive = false
			}
		}

		var claimable uint64
		if vestingActive {
			claimable = vestedClaimable(&schedule, now)
		}

		var unlockAmount uint64
		if !schedule.UnlockClaimed && schedule.UpfrontUnlockAmount > 0 {
			unlockAmount = schedule.UpfrontUnlockAmount
		}

		if claimable == 0 && unlockAmount == 0 {
			return fmt.Errorf("%w: nothing claimable", ErrState)
		}

		released, err := utils.AddU64(schedule.ReleasedAmount, claimable)
		if err != nil {
			return err
		}
		payout, err := utils.AddU64(claimable, unlockAmount)
		if err != nil {
			return err
		}
		if err := s.tokens.Transfer(tx, assetMint, VestingCustody, beneficiary, payout); err != nil {
			return fmt.Errorf("%w: %v", ErrTransfer, err)
		}

		res = ClaimResult{
			UnlockReleased: unlockAmount,
			VestedReleased: claimable,
			TotalReleased:  payout,
		}

		if released == schedule.TotalVestedAmount {
			// terminal: remove the record so the pair can be reused
			res.ScheduleClosed = true
			return tx.Delete(&schedule).Error
		}
		return tx.Model(&schedule).Updates(map[string]interface{}{
			"released_amount": released,
			"unlock_claimed":  schedule.UnlockClaimed || unlockAmount > 0,
			"last_claim_time": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"asset":       assetMint,
		"beneficiary": beneficiary,
		"released":    res.TotalReleased,
		"closed":      res.ScheduleClosed,
	}).Info("vesting claim executed")
	return &res, nil
}

// GetSchedule returns the live schedule for views, if any.
func (s *Service) GetSchedule(assetMint, beneficiary string) (*models.VestingSchedule, error) {
	var schedule models.VestingSchedule
	err := s.db.Where("asset_mint = ? AND beneficiary = ?", assetMint, beneficiary).First(&schedule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no schedule for %s/%s", ErrNotFound, assetMint, beneficiary)
	}
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// vestedClaimable computes the linearly vested amount owed at `now`, net of
// what was already released. Zero before the cliff, everything at or past
// start+cliff+vest.
func vestedClaimable(schedule *models.VestingSchedule, now int64) uint64 {
	cliffEnd := schedule.StartTime + schedule.CliffSeconds
	if now < cliffEnd {
		return 0
	}
	if now >= cliffEnd+schedule.VestSeconds {
		return utils.SatSub(schedule.TotalVestedAmount, schedule.ReleasedAmount)
	}
	elapsed := uint64(now - cliffEnd)
	vested, err := utils.MulDiv(schedule.TotalVestedAmount, elapsed, uint64(schedule.VestSeconds))
	if err != nil {
		return 0
	}
	return utils.SatSub(vested, schedule.ReleasedAmount)
}

func vestingKey(assetMint, beneficiary string) string {
	return "vesting:" + assetMint + ":" + beneficiary
}
