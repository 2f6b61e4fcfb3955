package solana

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	"gorm.io/gorm"

	"launchcontrol/internal/models"
)

// Launch pool program constants.
var (
	LAUNCH_POOL_PROGRAM_ID = solana.MustPublicKeyFromBase58("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C")

	SEED_LAUNCH_POOL = []byte("launch_pool")
	SEED_POSITION    = []byte("position")
)

// PoolClient manages the external concentrated-liquidity pool shells the
// curves migrate into: address derivation plus the pool/position bookkeeping
// rows the schedule jobs and UIs read. Every method runs on the caller's
// *gorm.DB so pool writes commit or roll back with the enclosing operation.
type PoolClient struct{}

func NewPoolClient() *PoolClient {
	return &PoolClient{}
}

// DerivePoolAddress computes the deterministic pool address for a pair.
func DerivePoolAddress(baseMint, quoteMint string) (string, error) {
	base, err := solana.PublicKeyFromBase58(baseMint)
	if err != nil {
		// non-chain identities (e.g. the native "sol" alias) hash as raw seeds
		base = solana.PublicKey(hashSeed(baseMint))
	}
	quote, err := solana.PublicKeyFromBase58(quoteMint)
	if err != nil {
		quote = solana.PublicKey(hashSeed(quoteMint))
	}
	addr, _, err := solana.FindProgramAddress(
		[][]byte{SEED_LAUNCH_POOL, base.Bytes(), quote.Bytes()},
		LAUNCH_POOL_PROGRAM_ID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to derive pool address: %w", err)
	}
	return addr.String(), nil
}

// CreateOrGetPool returns the pool for the pair, creating the shell row on
// first use.
func (c *PoolClient) CreateOrGetPool(tx *gorm.DB, baseMint, quoteMint string, feeTier uint32) (string, error) {
	addr, err := DerivePoolAddress(baseMint, quoteMint)
	if err != nil {
		return "", err
	}
	var pool models.LaunchPool
	err = tx.Where("pool_address = ?", addr).First(&pool).Error
	if err == nil {
		return pool.PoolAddress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	pool = models.LaunchPool{
		PoolAddress: addr,
		BaseMint:    baseMint,
		QuoteMint:   quoteMint,
		FeeTier:     feeTier,
	}
	if err := tx.Create(&pool).Error; err != nil {
		return "", err
	}
	return addr, nil
}

// InitializePrice records the pool's opening sqrt price. One-time.
func (c *PoolClient) InitializePrice(tx *gorm.DB, poolAddress string, sqrtPriceX64 *big.Int) error {
	var pool models.LaunchPool
	if err := tx.Where("pool_address = ?", poolAddress).First(&pool).Error; err != nil {
		return fmt.Errorf("pool %s not found: %w", poolAddress, err)
	}
	if pool.Initialized {
		return fmt.Errorf("pool %s price already initialized", poolAddress)
	}
	return tx.Model(&pool).Updates(map[string]interface{}{
		"sqrt_price_x64": sqrtPriceX64.String(),
		"initialized":    true,
	}).Error
}

// MintPosition mints a liquidity position and returns its identifier.
func (c *PoolClient) MintPosition(tx *gorm.DB, poolAddress string, baseAmount, quoteAmount uint64, deadline time.Time) (string, error) {
	var pool models.LaunchPool
	if err := tx.Where("pool_address = ?", poolAddress).First(&pool).Error; err != nil {
		return "", fmt.Errorf("pool %s not found: %w", poolAddress, err)
	}
	if !pool.Initialized {
		return "", fmt.Errorf("pool %s price not initialized", poolAddress)
	}
	if time.Now().After(deadline) {
		return "", fmt.Errorf("position mint deadline passed")
	}

	var count int64
	if err := tx.Model(&models.LaunchPoolPosition{}).Where("pool_address = ?", poolAddress).Count(&count).Error; err != nil {
		return "", err
	}
	indexSeed := make([]byte, 8)
	binary.LittleEndian.PutUint64(indexSeed, uint64(count))
	poolKey := solana.MustPublicKeyFromBase58(poolAddress)
	posAddr, _, err := solana.FindProgramAddress(
		[][]byte{SEED_POSITION, poolKey.Bytes(), indexSeed},
		LAUNCH_POOL_PROGRAM_ID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to derive position address: %w", err)
	}

	pos := models.LaunchPoolPosition{
		PositionID:  posAddr.String(),
		PoolAddress: poolAddress,
		BaseAmount:  baseAmount,
		QuoteAmount: quoteAmount,
		Deadline:    deadline.Unix(),
	}
	if err := tx.Create(&pos).Error; err != nil {
		return "", err
	}
	return pos.PositionID, nil
}

func hashSeed(s string) [32]byte {
	return sha256.Sum256([]byte(s))
}
