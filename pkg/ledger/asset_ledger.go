package ledger

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/utils"
)

// NativeAssetMint is the base-asset identity moved by direct value transfer.
// Every other asset goes through the allowance-based pull path.
const NativeAssetMint = "sol"

// BurnSink is the holder identity burned amounts are moved to.
const BurnSink = "burn"

var ErrInsufficientBalance = errors.New("insufficient balance")
var ErrInsufficientAllowance = errors.New("insufficient allowance")

// AssetLedger implements the value-transfer abstraction over custody balance
// rows. All mutations run inside the caller's transaction; a failed movement
// leaves no partial state.
type AssetLedger struct{}

func NewAssetLedger() *AssetLedger {
	return &AssetLedger{}
}

// BalanceOf returns holder's balance in asset; a missing row reads as zero.
func (l *AssetLedger) BalanceOf(tx *gorm.DB, asset, holder string) (uint64, error) {
	var bal models.AssetBalance
	err := tx.Where("asset_mint = ? AND holder = ?", asset, holder).First(&bal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return bal.Amount, nil
}

// Deposit pulls amount of asset from `from` into `to` custody. Non-native
// assets additionally consume an allowance granted by `from` to `to`.
func (l *AssetLedger) Deposit(tx *gorm.DB, asset, from, to string, amount uint64) error {
	if asset != NativeAssetMint {
		if err := l.consumeAllowance(tx, asset, from, to, amount); err != nil {
			return err
		}
	}
	return l.move(tx, asset, from, to, amount, "deposit")
}

// Withdraw pays amount of asset out of `from` custody to `to`.
func (l *AssetLedger) Withdraw(tx *gorm.DB, asset, from, to string, amount uint64) error {
	return l.move(tx, asset, from, to, amount, "withdraw")
}

// Burn destroys amount of asset held by holder.
func (l *AssetLedger) Burn(tx *gorm.DB, asset, holder string, amount uint64) error {
	return l.move(tx, asset, holder, BurnSink, amount, "burn")
}

// Approve grants spender the right to pull up to amount of owner's asset.
func (l *AssetLedger) Approve(tx *gorm.DB, asset, owner, spender string, amount uint64) error {
	var allow models.AssetAllowance
	err := tx.Where("asset_mint = ? AND owner = ? AND spender = ?", asset, owner, spender).First(&allow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		allow = models.AssetAllowance{AssetMint: asset, Owner: owner, Spender: spender, Amount: amount}
		return tx.Create(&allow).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&allow).Update("amount", amount).Error
}

// Credit mints amount of asset into holder's custody. Used when off-platform
// deposits are confirmed and by the test fixtures.
func (l *AssetLedger) Credit(tx *gorm.DB, asset, holder string, amount uint64) error {
	bal, err := l.getOrCreateBalance(tx, asset, holder)
	if err != nil {
		return err
	}
	next, err := utils.AddU64(bal.Amount, amount)
	if err != nil {
		return err
	}
	if err := tx.Model(bal).Update("amount", next).Error; err != nil {
		return err
	}
	return tx.Create(&models.AssetTransferRecord{
		AssetMint: asset, FromHolder: "external", ToHolder: holder, Amount: amount, Memo: "credit",
	}).Error
}

func (l *AssetLedger) consumeAllowance(tx *gorm.DB, asset, owner, spender string, amount uint64) error {
	var allow models.AssetAllowance
	err := tx.Where("asset_mint = ? AND owner = ? AND spender = ?", asset, owner, spender).First(&allow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && allow.Amount < amount) {
		return fmt.Errorf("%w: %s of %s for %s", ErrInsufficientAllowance, spender, asset, owner)
	}
	if err != nil {
		return err
	}
	return tx.Model(&allow).Update("amount", allow.Amount-amount).Error
}

func (l *AssetLedger) move(tx *gorm.DB, asset, from, to string, amount uint64, memo string) error {
	if amount == 0 {
		return nil
	}
	src, err := l.getOrCreateBalance(tx, asset, from)
	if err != nil {
		return err
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: %s holds %d %s, need %d", ErrInsufficientBalance, from, src.Amount, asset, amount)
	}
	dst, err := l.getOrCreateBalance(tx, asset, to)
	if err != nil {
		return err
	}
	next, err := utils.AddU64(dst.Amount, amount)
	if err != nil {
		return err
	}
	if err := tx.Model(src).Update("amount", src.Amount-amount).Error; err != nil {
		return err
	}
	if err := tx.Model(dst).Update("amount", next).Error; err != nil {
		return err
	}
	return tx.Create(&models.AssetTransferRecord{
		AssetMint: asset, FromHolder: from, ToHolder: to, Amount: amount, Memo: memo,
	}).Error
}

func (l *AssetLedger) getOrCreateBalance(tx *gorm.DB, asset, holder string) (*models.AssetBalance, error) {
	var bal models.AssetBalance
	err := tx.Where("asset_mint = ? AND holder = ?", asset, holder).First(&bal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		bal = models.AssetBalance{AssetMint: asset, Holder: holder, Amount: 0}
		if err := tx.Create(&bal).Error; err != nil {
			return nil, err
		}
		return &bal, nil
	}
	if err != nil {
		return nil, err
	}
	return &bal, nil
}
