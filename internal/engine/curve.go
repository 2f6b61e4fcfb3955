package engine

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/utils"
)

// InitializeCurveParams is the one-time launch configuration. All supplies
// and the raise target are in base units.
type InitializeCurveParams struct {
	TokenMint              string
	BaseAssetMint          string
	OwnerAddress           string
	VerifierKey            string
	SaleSupply             uint64
	LiquidityReserveSupply uint64
	FinalBaseTarget        uint64
	PoolFeeTier            uint32
	AutoMigrate            bool
}

// TradeResult reports the outcome of a buy or sell.
type TradeResult struct {
	LaunchID     uint   `json:"launch_id"`
	Side         string `json:"side"`
	Address      string `json:"address"`
	BaseAccepted uint64 `json:"base_accepted"`
	BaseRefunded uint64 `json:"base_refunded"`
	FeePaid      uint64 `json:"fee_paid"`
	TokensBurned uint64 `json:"tokens_burned"`
	TokenAmount  uint64 `json:"token_amount"`
	BaseAmount   uint64 `json:"base_amount"`
	Price        uint64 `json:"price"`
	Complete     bool   `json:"complete"`
}

// InitializeCurve derives the virtual reserves, pulls the sale and liquidity
// supplies into curve custody, creates the external pool shell at the opening
// price and records the immutable launch configuration.
func (s *Service) InitializeCurve(p InitializeCurveParams) (uint, error) {
	if p.TokenMint == "" || p.BaseAssetMint == "" || p.OwnerAddress == "" {
		return 0, fmt.Errorf("%w: missing address", ErrConfiguration)
	}
	if p.SaleSupply == 0 || p.LiquidityReserveSupply == 0 || p.FinalBaseTarget == 0 {
		return 0, fmt.Errorf("%w: amounts must be positive", ErrConfiguration)
	}
	if p.SaleSupply <= p.LiquidityReserveSupply {
		return 0, fmt.Errorf("%w: sale supply must exceed liquidity reserve", ErrConfiguration)
	}

	unlock := s.locks.lock("launch:" + p.TokenMint)
	defer unlock()

	var launchID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.LaunchCurve
		err := tx.Where("token_mint = ?", p.TokenMint).First(&existing).Error
		if err == nil {
			return fmt.Errorf("%w: launch for %s already initialized", ErrState, p.TokenMint)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if _, err := s.baseAssetPolicy(tx, p.BaseAssetMint); err != nil {
			return err
		}

		virtualToken, virtualBase, err := utils.DeriveVirtualReserves(p.SaleSupply, p.LiquidityReserveSupply, p.FinalBaseTarget)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConfiguration, err)
		}

		custody := CurveCustodyAccount(p.TokenMint)
		total, err := utils.AddU64(p.SaleSupply, p.LiquidityReserveSupply)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		if err := s.tokens.TransferFrom(tx, p.TokenMint, custody, p.OwnerAddress, custody, total); err != nil {
			return fmt.Errorf("%w: fund curve custody: %v", ErrTransfer, err)
		}

		poolAddr, err := s.pool.CreateOrGetPool(tx, p.BaseAssetMint, p.TokenMint, p.PoolFeeTier)
		if err != nil {
			return fmt.Errorf("%w: create pool: %v", ErrTransfer, err)
		}
		sqrtPrice, err := utils.SqrtPriceX64(p.FinalBaseTarget, p.LiquidityReserveSupply)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		if err := s.pool.InitializePrice(tx, poolAddr, sqrtPrice); err != nil {
			return fmt.Errorf("%w: initialize pool price: %v", ErrTransfer, err)
		}

		curve := models.LaunchCurve{
			TokenMint:              p.TokenMint,
			BaseAssetMint:          p.BaseAssetMint,
			CustodyAccount:         custody,
			OwnerAddress:           p.OwnerAddress,
			VerifierKey:            p.VerifierKey,
			SaleSupply:             p.SaleSupply,
			LiquidityReserveSupply: p.LiquidityReserveSupply,
			FinalBaseTarget:        p.FinalBaseTarget,
			VirtualTokenReserve:    virtualToken,
			VirtualBaseReserve:     virtualBase,
			AutoMigrate:            p.AutoMigrate,
			PoolAddress:            poolAddr,
		}
		if err := tx.Create(&curve).Error; err != nil {
			return err
		}
		launchID = curve.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"launch_id": launchID,
		"mint":      p.TokenMint,
		"base":      p.BaseAssetMint,
	}).Info("launch curve initialized")
	return launchID, nil
}

// StartTrading opens public trading on a pre-funded launch. One-time gate.
func (s *Service) StartTrading(launchID uint) error {
	unlock := s.locks.lock(launchKey(launchID))
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		curve, err := s.loadCurve(tx, launchID)
		if err != nil {
			return err
		}
		if curve.TradingStarted {
			return fmt.Errorf("%w: trading already started", ErrState)
		}
		return tx.Model(curve).Update("trading_started", true).Error
	})
}

// Quote converts a base-asset amount into a token payout at the current
// effective reserves. Pure view, no fees applied.
func (s *Service) Quote(launchID uint, baseAmount uint64) (uint64, error) {
	curve, err := s.loadCurve(s.db, launchID)
	if err != nil {
		return 0, err
	}
	rT, rB := effectiveReserves(curve)
	return utils.CurveTokensOut(baseAmount, rT, rB)
}

// QuoteInverse converts a token amount into a base-asset payout at the
// current effective reserves. Pure view, no fees applied.
func (s *Service) QuoteInverse(launchID uint, tokenAmount uint64) (uint64, error) {
	curve, err := s.loadCurve(s.db, launchID)
	if err != nil {
		return 0, err
	}
	rT, rB := effectiveReserves(curve)
	return utils.CurveBaseOut(tokenAmount, rT, rB)
}

// CurrentPrice returns the marginal price scaled by AccumulatorScale.
func (s *Service) CurrentPrice(launchID uint) (uint64, error) {
	curve, err := s.loadCurve(s.db, launchID)
	if err != nil {
		return 0, err
	}
	rT, rB := effectiveReserves(curve)
	return utils.CurvePrice(rT, rB)
}

// GetCurve returns the launch curve row for views.
func (s *Service) GetCurve(launchID uint) (*models.LaunchCurve, error) {
	return s.loadCurve(s.db, launchID)
}

// Buy converts a base-asset deposit into tokens along the curve. The accepted
// amount is clamped, in order, to the per-tx cap (hard reject), the remaining
// raise-target room and the buyer's effective per-user cap; the unconsumed
// remainder stays with the buyer. A positive bonusCapIncrease requires a valid
// unexpired signature from the launch's verifier key.
func (s *Service) Buy(launchID uint, buyer string, baseAmount, bonusCapIncrease uint64, expiry int64, signature string) (*TradeResult, error) {
	if buyer == "" || baseAmount == 0 {
		return nil, fmt.Errorf("%w: buyer and amount required", ErrConfiguration)
	}

	unlock := s.locks.lock(launchKey(launchID))
	defer unlock()

	var res TradeResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		curve, err := s.loadCurve(tx, launchID)
		if err != nil {
			return err
		}
		if !curve.TradingStarted {
			return fmt.Errorf("%w: trading not started", ErrState)
		}
		if curve.Complete {
			return fmt.Errorf("%w: curve already complete", ErrState)
		}

		if bonusCapIncrease > 0 {
			if err := s.verifyBuyAuthorization(curve, buyer, bonusCapIncrease, expiry, signature); err != nil {
				return err
			}
		}

		policy, err := s.baseAssetPolicy(tx, curve.BaseAssetMint)
		if err != nil {
			return err
		}
		feeCfg, err := s.feeConfig(tx)
		if err != nil {
			return err
		}

		if policy.MaxBuyPerTx > 0 && baseAmount > policy.MaxBuyPerTx {
			return fmt.Errorf("%w: amount %d exceeds per-tx cap %d", ErrLimit, baseAmount, policy.MaxBuyPerTx)
		}
		if policy.RequiredStakeToBuy > 0 {
			staked, err := s.stakedAmountTx(tx, feeCfg.FeeAssetMint, buyer)
			if err != nil {
				return err
			}
			if staked < policy.RequiredStakeToBuy {
				return fmt.Errorf("%w: requires %d staked, has %d", ErrLimit, policy.RequiredStakeToBuy, staked)
			}
		}

		// clamp to remaining raise-target room, then to the user's cap room
		accepted := utils.MinU64(baseAmount, curve.FinalBaseTarget-curve.BaseRaised)
		userBuy, err := s.loadUserBuy(tx, curve.ID, buyer)
		if err != nil {
			return err
		}
		if policy.MaxBuyPerUser > 0 {
			effectiveCap, err := utils.AddU64(policy.MaxBuyPerUser, bonusCapIncrease)
			if err != nil {
				return err
			}
			room := utils.SatSub(effectiveCap, userBuy.BaseBought)
			accepted = utils.MinU64(accepted, room)
		}
		if accepted == 0 {
			return fmt.Errorf("%w: purchase cap reached", ErrLimit)
		}
		refunded := baseAmount - accepted

		// only the accepted amount is ever pulled; the refund never leaves
		// the buyer's balance
		if err := s.assets.Deposit(tx, curve.BaseAssetMint, buyer, curve.CustodyAccount, accepted); err != nil {
			return fmt.Errorf("%w: %v", ErrTransfer, err)
		}

		fee := utils.BpsOf(accepted, feeCfg.FeeBps)
		net := accepted - fee
		if err := s.routeTradeFee(tx, curve, feeCfg, fee); err != nil {
			return err
		}

		rT, rB := effectiveReserves(curve)
		grossTokens, err := utils.CurveTokensOut(net, rT, rB)
		if err != nil {
			return err
		}
		grossTokens = utils.MinU64(grossTokens, curve.SaleSupply-curve.TokensSold)
		burnTokens := utils.BpsOf(grossTokens, feeCfg.BurnBps)
		payout := grossTokens - burnTokens

		if err := s.tokens.Transfer(tx, curve.TokenMint, curve.CustodyAccount, buyer, payout); err != nil {
			return fmt.Errorf("%w: %v", ErrTransfer, err)
		}
		if err := s.tokens.Burn(tx, curve.TokenMint, curve.CustodyAccount, burnTokens); err != nil {
			return fmt.Errorf("%w: %v", ErrTransfer, err)
		}

		curve.TokensSold += grossTokens
		curve.BaseRaised += net
		updates := map[string]interface{}{
			"tokens_sold": curve.TokensSold,
			"base_raised": curve.BaseRaised,
		}
		if curve.BaseRaised >= curve.FinalBaseTarget {
			curve.Complete = true
			curve.CompletedAt = s.nowUnix()
			updates["complete"] = true
			updates["completed_at"] = curve.CompletedAt
		}
		if err := tx.Model(curve).Updates(updates).Error; err != nil {
			return err
		}
		bought, err := utils.AddU64(userBuy.BaseBought, net)
		if err != nil {
			return err
		}
		if err := tx.Model(userBuy).Update("base_bought", bought).Error; err != nil {
			return err
		}

		if curve.Complete && curve.AutoMigrate {
			if err := s.migrateLocked(tx, curve); err != nil {
				return err
			}
		}

		price, err := utils.CurvePrice(effectiveReserves(curve))
		if err != nil {
			return err
		}
		res = TradeResult{
			LaunchID:     curve.ID,
			Side:         "buy",
			Address:      buyer,
			BaseAccepted: accepted,
			BaseRefunded: refunded,
			FeePaid:      fee,
			TokensBurned: burnTokens,
			TokenAmount:  payout,
			BaseAmount:   net,
			Price:        price,
			Complete:     curve.Complete,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"launch_id": res.LaunchID,
		"buyer":     buyer,
		"accepted":  res.BaseAccepted,
		"tokens":    res.TokenAmount,
		"complete":  res.Complete,
	}).Info("curve buy executed")
	s.publish(TradeEventQueue, res)
	if res.Complete {
		s.notifyCompletion(res.LaunchID)
	}
	return &res, nil
}

// Sell converts tokens back into base asset along the curve. The burn
// fraction of the input is destroyed before conversion; the full input is
// pulled from the seller so the burn comes out of custody.
func (s *Service) Sell(launchID uint, seller string, tokenAmount uint64) (*TradeResult, error) {
	if seller == "" || tokenAmount == 0 {
		return nil, fmt.Errorf("%w: seller and amount required", ErrConfiguration)
	}

	unlock := s.locks.lock(launchKey(launchID))
	defer unlock()

	var res TradeResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		curve, err := s.loadCurve(tx, launchID)
		if err != nil {
			return err
		}
		if !curve.TradingStarted {
			return fmt.Errorf("%w: trading not started", ErrState)
		}
		if curve.Complete {
			return fmt.Errorf("%w: curve already complete", ErrState)
		}
		feeCfg, err := s.feeConfig(tx)
		if err != nil {
			return err
		}

		burnTokens := utils.BpsOf(tokenAmount, feeCfg.BurnBps)
		effective := tokenAmount - burnTokens
		rT, rB := effectiveReserves(curve)
		baseOut, err := utils.CurveBaseOut(effective, rT, rB)
		if err != nil {
			return err
		}
		fee := utils.BpsOf(baseOut, feeCfg.FeeBps)
		net := baseOut - fee

		custodyBase, err := s.assets.BalanceOf(tx, curve.BaseAssetMint, curve.CustodyAccount)
		if err != nil {
			return err
		}
		if custodyBase < baseOut {
			return fmt.Errorf("%w: custody holds %d, sell needs %d", ErrLimit, custodyBase, baseOut)
		}

		if err := s.tokens.Transfer(tx, curve.TokenMint, seller, curve.CustodyAccount, tokenAmount); err != nil {
			return fmt.Errorf("%w: %v", ErrTransfer, err)
		}
		if err := s.tokens.Burn(tx, curve.TokenMint, curve.CustodyAccount, burnTokens); err != nil {
			return fmt.Errorf("%w: %v", ErrTransfer, err)
		}
		if err := s.assets.Withdraw(tx, curve.BaseAssetMint, curve.CustodyAccount, seller, net); err != nil {
			return fmt.Errorf("%w: %v", ErrTransfer, err)
		}
		if err := s.routeTradeFee(tx, curve, feeCfg, fee); err != nil {
			return err
		}

		curve.TokensSold = utils.SatSub(curve.TokensSold, tokenAmount)
		curve.BaseRaised = utils.SatSub(curve.BaseRaised, baseOut)
		if err := tx.Model(curve).Updates(map[string]interface{}{
			"tokens_sold": curve.TokensSold,
			"base_raised": curve.BaseRaised,
		}).Error; err != nil {
			return err
		}

		price, err := utils.CurvePrice(effectiveReserves(curve))
		if err != nil {
			return err
		}
		res = TradeResult{
			LaunchID:     curve.ID,
			Side:         "sell",
			Address:      seller,
			FeePaid:      fee,
			TokensBurned: burnTokens,
			TokenAmount:  tokenAmount,
			BaseAmount:   net,
			Price:        price,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"launch_id": res.LaunchID,
		"seller":    seller,
		"tokens":    tokenAmount,
		"base_out":  res.BaseAmount,
	}).Info("curve sell executed")
	s.publish(TradeEventQueue, res)
	return &res, nil
}

// Migrate hands the raised base asset and the liquidity token reserve to the
// external pool and flips the token into open transferability. Callable once,
// only after completion.
func (s *Service) Migrate(launchID uint) error {
	unlock := s.locks.lock(launchKey(launchID))
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		curve, err := s.loadCurve(tx, launchID)
		if err != nil {
			return err
		}
		return s.migrateLocked(tx, curve)
	})
}

func (s *Service) migrateLocked(tx *gorm.DB, curve *models.LaunchCurve) error {
	if !curve.Complete {
		return fmt.Errorf("%w: curve not complete", ErrState)
	}
	if curve.LiquidityMigrated {
		return fmt.Errorf("%w: liquidity already migrated", ErrState)
	}

	baseBal, err := s.assets.BalanceOf(tx, curve.BaseAssetMint, curve.CustodyAccount)
	if err != nil {
		return err
	}
	tokenBal, err := s.tokens.BalanceOf(tx, curve.TokenMint, curve.CustodyAccount)
	if err != nil {
		return err
	}
	tokenLiquidity := utils.MinU64(tokenBal, curve.LiquidityReserveSupply)

	positionID, err := s.pool.MintPosition(tx, curve.PoolAddress, baseBal, tokenLiquidity, s.now().Add(DefaultPoolDeadline))
	if err != nil {
		return fmt.Errorf("%w: mint position: %v", ErrTransfer, err)
	}

	poolHolder := "pool:" + curve.PoolAddress
	if err := s.assets.Withdraw(tx, curve.BaseAssetMint, curve.CustodyAccount, poolHolder, baseBal); err != nil {
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	if err := s.tokens.Transfer(tx, curve.TokenMint, curve.CustodyAccount, poolHolder, tokenLiquidity); err != nil {
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	if err := s.tokens.Launch(tx, curve.TokenMint); err != nil {
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}

	curve.LiquidityMigrated = true
	curve.PositionID = positionID
	if err := tx.Model(curve).Updates(map[string]interface{}{
		"liquidity_migrated": true,
		"position_id":        positionID,
	}).Error; err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"launch_id":   curve.ID,
		"position_id": positionID,
		"base":        baseBal,
		"tokens":      tokenLiquidity,
	}).Info("liquidity migrated to external pool")
	return nil
}

// routeTradeFee burns the fee when the base asset is not the designated
// fee-bearing asset, otherwise pushes it into the staking fee-reward stream.
func (s *Service) routeTradeFee(tx *gorm.DB, curve *models.LaunchCurve, feeCfg *models.FeeConfig, fee uint64) error {
	if fee == 0 {
		return nil
	}
	if curve.BaseAssetMint != feeCfg.FeeAssetMint {
		if err := s.assets.Burn(tx, curve.BaseAssetMint, curve.CustodyAccount, fee); err != nil {
			return fmt.Errorf("%w: %v", ErrTransfer, err)
		}
		return nil
	}
	if err := s.assets.Withdraw(tx, curve.BaseAssetMint, curve.CustodyAccount, StakingCustody, fee); err != nil {
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	return s.receiveFeeShareTx(tx, feeCfg, fee)
}

func (s *Service) verifyBuyAuthorization(curve *models.LaunchCurve, buyer string, bonusCapIncrease uint64, expiry int64, signature string) error {
	if curve.VerifierKey == "" {
		return fmt.Errorf("%w: launch has no verifier key", ErrAuthorization)
	}
	if s.nowUnix() >= expiry {
		return fmt.Errorf("%w: authorization expired", ErrAuthorization)
	}
	msg := BuyAuthMessage(buyer, expiry, bonusCapIncrease)
	if s.verifier == nil || !s.verifier.Verify(curve.VerifierKey, msg, signature) {
		return fmt.Errorf("%w: invalid bonus-cap signature", ErrAuthorization)
	}
	return nil
}

// BuyAuthMessage is the byte message the off-chain signer signs to authorize
// a temporary per-user cap increase.
func BuyAuthMessage(buyer string, expiry int64, bonusCapIncrease uint64) []byte {
	return []byte(fmt.Sprintf("buy:%s:%d:%d", buyer, expiry, bonusCapIncrease))
}

// notifyCompletion queues the asynchronous migration job for launches that
// completed without auto-migrate.
func (s *Service) notifyCompletion(launchID uint) {
	curve, err := s.loadCurve(s.db, launchID)
	if err != nil || curve.LiquidityMigrated {
		return
	}
	s.publish(MigrateJobQueue, map[string]interface{}{"launch_id": launchID})
}

func (s *Service) loadCurve(tx *gorm.DB, launchID uint) (*models.LaunchCurve, error) {
	var curve models.LaunchCurve
	err := tx.First(&curve, launchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: launch %d", ErrNotFound, launchID)
	}
	if err != nil {
		return nil, err
	}
	return &curve, nil
}

func (s *Service) loadUserBuy(tx *gorm.DB, launchID uint, address string) (*models.LaunchUserBuy, error) {
	var rec models.LaunchUserBuy
	err := tx.Where("launch_curve_id = ? AND address = ?", launchID, address).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = models.LaunchUserBuy{LaunchCurveID: launchID, Address: address}
		if err := tx.Create(&rec).Error; err != nil {
			return nil, err
		}
		return &rec, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func effectiveReserves(curve *models.LaunchCurve) (rT, rB uint64) {
	rT = curve.VirtualTokenReserve + (curve.SaleSupply - curve.TokensSold)
	rB = curve.VirtualBaseReserve + curve.BaseRaised
	return rT, rB
}

func launchKey(launchID uint) string {
	return fmt.Sprintf("launch:%d", launchID)
}
