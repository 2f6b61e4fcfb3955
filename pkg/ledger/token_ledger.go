package ledger

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/utils"
)

var ErrTransferRestricted = errors.New("token transfers restricted before launch")
var ErrUnknownMint = errors.New("unknown mint")

// Holder identities for the engine-owned custody accounts. Transfers touching
// these pass even while the mint is restricted, so vesting payouts and staking
// reserve moves clear before the curve completes.
const (
	StakingCustody = "staking"
	VestingCustody = "vesting"
)

// TokenLedger is the fungible-token ledger for launched mints. It supports the
// pre-launch restricted mode where only transfers touching the curve custody
// account or an engine custody account are permitted.
type TokenLedger struct{}

func NewTokenLedger() *TokenLedger {
	return &TokenLedger{}
}

// CreateMint registers a new mint and credits the full supply to creator.
func (l *TokenLedger) CreateMint(tx *gorm.DB, mint, symbol, name string, decimals int, totalSupply uint64, creator string) error {
	tok := models.LaunchToken{
		Mint: mint, Symbol: symbol, Name: name, Decimals: decimals,
		TotalSupply: totalSupply, Creator: creator,
	}
	if err := tx.Create(&tok).Error; err != nil {
		return err
	}
	bal := models.TokenBalance{Mint: mint, Holder: creator, Amount: totalSupply}
	return tx.Create(&bal).Error
}

// RestrictTo puts the mint into pre-launch mode: only transfers where one side
// is custody pass.
func (l *TokenLedger) RestrictTo(tx *gorm.DB, mint, custody string) error {
	tok, err := l.getMint(tx, mint)
	if err != nil {
		return err
	}
	return tx.Model(tok).Updates(map[string]interface{}{"restricted_to": custody, "launched": false}).Error
}

// Launch flips the mint into unrestricted transferability. One-way.
func (l *TokenLedger) Launch(tx *gorm.DB, mint string) error {
	tok, err := l.getMint(tx, mint)
	if err != nil {
		return err
	}
	return tx.Model(tok).Updates(map[string]interface{}{"launched": true, "restricted_to": ""}).Error
}

func (l *TokenLedger) BalanceOf(tx *gorm.DB, mint, holder string) (uint64, error) {
	var bal models.TokenBalance
	err := tx.Where("mint = ? AND holder = ?", mint, holder).First(&bal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return bal.Amount, nil
}

// Transfer moves amount between holders, honoring the restricted mode.
func (l *TokenLedger) Transfer(tx *gorm.DB, mint, from, to string, amount uint64) error {
	tok, err := l.getMint(tx, mint)
	if err != nil {
		return err
	}
	if !tok.Launched && tok.RestrictedTo != "" && !restrictionExempt(tok.RestrictedTo, from) && !restrictionExempt(tok.RestrictedTo, to) {
		return ErrTransferRestricted
	}
	return l.move(tx, mint, from, to, amount)
}

func restrictionExempt(custody, holder string) bool {
	return holder == custody || holder == StakingCustody || holder == VestingCustody
}

// Approve grants spender the right to pull up to amount from owner.
func (l *TokenLedger) Approve(tx *gorm.DB, mint, owner, spender string, amount uint64) error {
	var allow models.TokenAllowance
	err := tx.Where("mint = ? AND owner = ? AND spender = ?", mint, owner, spender).First(&allow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		allow = models.TokenAllowance{Mint: mint, Owner: owner, Spender: spender, Amount: amount}
		return tx.Create(&allow).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&allow).Update("amount", amount).Error
}

// TransferFrom pulls amount from owner to `to` against an allowance granted to
// spender.
func (l *TokenLedger) TransferFrom(tx *gorm.DB, mint, spender, owner, to string, amount uint64) error {
	var allow models.TokenAllowance
	err := tx.Where("mint = ? AND owner = ? AND spender = ?", mint, owner, spender).First(&allow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && allow.Amount < amount) {
		return fmt.Errorf("%w: %s of %s for %s", ErrInsufficientAllowance, spender, mint, owner)
	}
	if err != nil {
		return err
	}
	if err := tx.Model(&allow).Update("amount", allow.Amount-amount).Error; err != nil {
		return err
	}
	return l.Transfer(tx, mint, owner, to, amount)
}

// Burn destroys amount held by holder and tracks the burned supply.
func (l *TokenLedger) Burn(tx *gorm.DB, mint, holder string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	tok, err := l.getMint(tx, mint)
	if err != nil {
		return err
	}
	var bal models.TokenBalance
	if err := tx.Where("mint = ? AND holder = ?", mint, holder).First(&bal).Error; err != nil {
		return err
	}
	if bal.Amount < amount {
		return fmt.Errorf("%w: %s holds %d %s, burn %d", ErrInsufficientBalance, holder, bal.Amount, mint, amount)
	}
	if err := tx.Model(&bal).Update("amount", bal.Amount-amount).Error; err != nil {
		return err
	}
	burned, err := utils.AddU64(tok.BurnedSupply, amount)
	if err != nil {
		return err
	}
	return tx.Model(tok).Update("burned_supply", burned).Error
}

func (l *TokenLedger) getMint(tx *gorm.DB, mint string) (*models.LaunchToken, error) {
	var tok models.LaunchToken
	err := tx.Where("mint = ?", mint).First(&tok).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMint, mint)
	}
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

func (l *TokenLedger) move(tx *gorm.DB, mint, from, to string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	var src models.TokenBalance
	err := tx.Where("mint = ? AND holder = ?", mint, from).First(&src).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && src.Amount < amount) {
		return fmt.Errorf("%w: %s holds %d %s, need %d", ErrInsufficientBalance, from, src.Amount, mint, amount)
	}
	if err != nil {
		return err
	}
	var dst models.TokenBalance
	err = tx.Where("mint = ? AND holder = ?", mint, to).First(&dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		dst = models.TokenBalance{Mint: mint, Holder: to, Amount: 0}
		if err := tx.Create(&dst).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	next, err := utils.AddU64(dst.Amount, amount)
	if err != nil {
		return err
	}
	if err := tx.Model(&src).Update("amount", src.Amount-amount).Error; err != nil {
		return err
	}
	return tx.Model(&dst).Update("amount", next).Error
}
