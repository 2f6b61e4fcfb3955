package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"launchcontrol/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.AssetBalance{},
		&models.AssetAllowance{},
		&models.AssetTransferRecord{},
		&models.LaunchToken{},
		&models.TokenBalance{},
		&models.TokenAllowance{},
	)
	require.NoError(t, err)
	return db
}

func TestAssetLedger(t *testing.T) {
	db := newTestDB(t)
	l := NewAssetLedger()

	t.Run("Missing Balance Reads As Zero", func(t *testing.T) {
		bal, err := l.BalanceOf(db, NativeAssetMint, "nobody")
		require.NoError(t, err)
		assert.Equal(t, uint64(0), bal)
	})

	t.Run("Credit And Native Deposit", func(t *testing.T) {
		require.NoError(t, l.Credit(db, NativeAssetMint, "alice", 1000))

		// Native deposits move value directly, no allowance involved.
		require.NoError(t, l.Deposit(db, NativeAssetMint, "alice", "curve:tok", 400))

		aliceBal, err := l.BalanceOf(db, NativeAssetMint, "alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(600), aliceBal)

		curveBal, err := l.BalanceOf(db, NativeAssetMint, "curve:tok")
		require.NoError(t, err)
		assert.Equal(t, uint64(400), curveBal)
	})

	t.Run("Overdraw Rejected", func(t *testing.T) {
		err := l.Withdraw(db, NativeAssetMint, "alice", "bob", 5000)
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("Non Native Deposit Consumes Allowance", func(t *testing.T) {
		require.NoError(t, l.Credit(db, "usdq", "alice", 500))

		// No allowance yet: the pull fails before any balance moves.
		err := l.Deposit(db, "usdq", "alice", "staking", 100)
		assert.ErrorIs(t, err, ErrInsufficientAllowance)

		require.NoError(t, l.Approve(db, "usdq", "alice", "staking", 150))
		require.NoError(t, l.Deposit(db, "usdq", "alice", "staking", 100))

		// Remaining allowance is 50; a second 100 pull fails.
		err = l.Deposit(db, "usdq", "alice", "staking", 100)
		assert.ErrorIs(t, err, ErrInsufficientAllowance)

		bal, err := l.BalanceOf(db, "usdq", "staking")
		require.NoError(t, err)
		assert.Equal(t, uint64(100), bal)
	})

	t.Run("Burn Moves To Sink", func(t *testing.T) {
		require.NoError(t, l.Burn(db, NativeAssetMint, "curve:tok", 100))

		sink, err := l.BalanceOf(db, NativeAssetMint, BurnSink)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), sink)
	})

	t.Run("Every Move Writes A Record", func(t *testing.T) {
		var count int64
		require.NoError(t, db.Model(&models.AssetTransferRecord{}).Count(&count).Error)
		assert.Greater(t, count, int64(0))
	})
}

func TestTokenLedger(t *testing.T) {
	db := newTestDB(t)
	l := NewTokenLedger()

	require.NoError(t, l.CreateMint(db, "meme", "MEME", "Meme Token", 6, 1_000_000, "creator"))

	t.Run("Creator Holds Full Supply", func(t *testing.T) {
		bal, err := l.BalanceOf(db, "meme", "creator")
		require.NoError(t, err)
		assert.Equal(t, uint64(1_000_000), bal)
	})

	t.Run("Unknown Mint Rejected", func(t *testing.T) {
		err := l.Transfer(db, "ghost", "creator", "bob", 1)
		assert.ErrorIs(t, err, ErrUnknownMint)
	})

	t.Run("Restricted Mode Blocks Third Party Transfers", func(t *testing.T) {
		require.NoError(t, l.Transfer(db, "meme", "creator", "bob", 100))
		require.NoError(t, l.RestrictTo(db, "meme", "curve:meme"))

		// bob -> carol touches neither side of custody
		err := l.Transfer(db, "meme", "bob", "carol", 10)
		assert.ErrorIs(t, err, ErrTransferRestricted)

		// but trades against the curve custody still pass
		require.NoError(t, l.Transfer(db, "meme", "bob", "curve:meme", 10))
		require.NoError(t, l.Transfer(db, "meme", "curve:meme", "carol", 5))
	})

	t.Run("Engine Custody Exempt While Restricted", func(t *testing.T) {
		require.NoError(t, l.Transfer(db, "meme", "creator", VestingCustody, 100))
		require.NoError(t, l.Transfer(db, "meme", VestingCustody, "carol", 20))
		require.NoError(t, l.Transfer(db, "meme", "creator", StakingCustody, 50))
	})

	t.Run("Launch Lifts The Restriction", func(t *testing.T) {
		require.NoError(t, l.Launch(db, "meme"))
		require.NoError(t, l.Transfer(db, "meme", "bob", "carol", 10))
	})

	t.Run("TransferFrom Consumes Allowance", func(t *testing.T) {
		require.NoError(t, l.Approve(db, "meme", "creator", "vesting", 300))
		require.NoError(t, l.TransferFrom(db, "meme", "vesting", "creator", "vesting", 200))

		err := l.TransferFrom(db, "meme", "vesting", "creator", "vesting", 200)
		assert.ErrorIs(t, err, ErrInsufficientAllowance)
	})

	t.Run("Burn Tracks Burned Supply", func(t *testing.T) {
		require.NoError(t, l.Burn(db, "meme", "creator", 1000))

		var tok models.LaunchToken
		require.NoError(t, db.Where("mint = ?", "meme").First(&tok).Error)
		assert.Equal(t, uint64(1000), tok.BurnedSupply)
	})
}
