package engine

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"launchcontrol/pkg/ledger"
	"launchcontrol/pkg/utils"
)

// CreateLaunchParams is the coordinator's launch request: the token to mint,
// the allocation split in bps (must sum to 100%) and the dev-team vesting
// terms. DevTeam entries share the dev allocation and vest against the curve.
type CreateLaunchParams struct {
	TokenMint     string
	Symbol        string
	Name          string
	Decimals      int
	TotalSupply   uint64
	Creator       string
	BaseAssetMint string
	VerifierKey   string
	AutoMigrate   bool
	PoolFeeTier   uint32

	BondingBps   uint64
	LiquidityBps uint64
	DevTeamBps   uint64
	StakingBps   uint64

	DevCliffSeconds  int64
	DevVestSeconds   int64
	DevUpfrontBps    uint64
	DevTeam          []BatchScheduleEntry
	FinalBaseTarget  uint64 // 0 = use the base-asset policy default
}

// CreateLaunch orchestrates a new launch: charges the creation fee, mints the
// token ledger, initializes the trading curve, creates the curve-anchored
// dev-team schedules, reserves the staking allocation and finally restricts
// transfers to the curve until migration.
func (s *Service) CreateLaunch(p CreateLaunchParams) (uint, error) {
	if p.TokenMint == "" || p.Creator == "" || p.BaseAssetMint == "" {
		return 0, fmt.Errorf("%w: missing address", ErrConfiguration)
	}
	if p.TotalSupply == 0 {
		return 0, fmt.Errorf("%w: total supply must be positive", ErrConfiguration)
	}
	if p.BondingBps+p.LiquidityBps+p.DevTeamBps+p.StakingBps != utils.BpsDenominator {
		return 0, fmt.Errorf("%w: allocation shares must sum to 100%%", ErrConfiguration)
	}
	if p.BondingBps == 0 || p.LiquidityBps == 0 {
		return 0, fmt.Errorf("%w: bonding and liquidity allocations required", ErrConfiguration)
	}

	feeCfg, err := s.feeConfig(s.db)
	if err != nil {
		return 0, err
	}
	policy, err := s.baseAssetPolicy(s.db, p.BaseAssetMint)
	if err != nil {
		return 0, err
	}
	target := p.FinalBaseTarget
	if target == 0 {
		target = policy.FinalBaseTarget
	}

	saleSupply := utils.BpsOf(p.TotalSupply, p.BondingBps)
	liquidityReserve := utils.BpsOf(p.TotalSupply, p.LiquidityBps)
	devAllocation := utils.BpsOf(p.TotalSupply, p.DevTeamBps)
	stakingReserve := p.TotalSupply - saleSupply - liquidityReserve - devAllocation

	custody := CurveCustodyAccount(p.TokenMint)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if feeCfg.CreationFee > 0 && feeCfg.FeeRecipient != "" {
			if err := s.assets.Withdraw(tx, ledger.NativeAssetMint, p.Creator, feeCfg.FeeRecipient, feeCfg.CreationFee); err != nil {
				return fmt.Errorf("%w: creation fee: %v", ErrTransfer, err)
			}
		}
		if err := s.tokens.CreateMint(tx, p.TokenMint, p.Symbol, p.Name, p.Decimals, p.TotalSupply, p.Creator); err != nil {
			return fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		return s.tokens.Approve(tx, p.TokenMint, p.Creator, custody, saleSupply+liquidityReserve)
	})
	if err != nil {
		return 0, err
	}

	launchID, err := s.InitializeCurve(InitializeCurveParams{
		TokenMint:              p.TokenMint,
		BaseAssetMint:          p.BaseAssetMint,
		OwnerAddress:           p.Creator,
		VerifierKey:            p.VerifierKey,
		SaleSupply:             saleSupply,
		LiquidityReserveSupply: liquidityReserve,
		FinalBaseTarget:        target,
		PoolFeeTier:            p.PoolFeeTier,
		AutoMigrate:            p.AutoMigrate,
	})
	if err != nil {
		return 0, err
	}

	if devAllocation > 0 && len(p.DevTeam) > 0 {
		if err := s.CreateBatchSchedule(p.TokenMint, p.Creator, devAllocation, p.DevCliffSeconds, p.DevVestSeconds, p.DevUpfrontBps, launchID, p.DevTeam); err != nil {
			return 0, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if stakingReserve > 0 {
			// reward reserve for staking programs opened after migration
			if err := s.tokens.Transfer(tx, p.TokenMint, p.Creator, StakingCustody, stakingReserve); err != nil {
				return fmt.Errorf("%w: %v", ErrTransfer, err)
			}
		}
		// pre-launch mode: only transfers touching curve custody pass
		return s.tokens.RestrictTo(tx, p.TokenMint, custody)
	})
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"launch_id": launchID,
		"mint":      p.TokenMint,
		"sale":      saleSupply,
		"liquidity": liquidityReserve,
		"dev":       devAllocation,
		"staking":   stakingReserve,
	}).Info("launch created")
	return launchID, nil
}
