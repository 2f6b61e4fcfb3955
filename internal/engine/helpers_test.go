package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/config"
	solanaUtils "launchcontrol/pkg/solana"
)

// testClock is a controllable engine clock.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(t *testing.T, opts ...Option) (*Service, *testClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.AutoMigrateModels(db))

	clock := &testClock{now: time.Now()}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	svc := NewService(db, solanaUtils.NewPoolClient(), solanaUtils.NewEd25519Verifier(), opts...)
	return svc, clock
}

// seedPolicy whitelists a base asset for launches.
func seedPolicy(t *testing.T, svc *Service, policy models.BaseAssetPolicy) {
	t.Helper()
	require.NoError(t, svc.DB().Create(&policy).Error)
}

func seedFeeConfig(t *testing.T, svc *Service, cfg models.FeeConfig) {
	t.Helper()
	require.NoError(t, svc.DB().Create(&cfg).Error)
}

// newLaunch mints the token, funds curve custody and initializes the curve
// with the 6500/1500/100 reference configuration.
func newLaunch(t *testing.T, svc *Service, mint, creator, verifierKey string, autoMigrate bool) uint {
	t.Helper()

	custody := CurveCustodyAccount(mint)
	require.NoError(t, svc.Tokens().CreateMint(svc.DB(), mint, "TST", "Test Token", 6, 8000, creator))
	require.NoError(t, svc.Tokens().Approve(svc.DB(), mint, creator, custody, 8000))

	launchID, err := svc.InitializeCurve(InitializeCurveParams{
		TokenMint:              mint,
		BaseAssetMint:          "sol",
		OwnerAddress:           creator,
		VerifierKey:            verifierKey,
		SaleSupply:             6500,
		LiquidityReserveSupply: 1500,
		FinalBaseTarget:        100,
		AutoMigrate:            autoMigrate,
	})
	require.NoError(t, err)
	return launchID
}

func creditNative(t *testing.T, svc *Service, holder string, amount uint64) {
	t.Helper()
	require.NoError(t, svc.Assets().Credit(svc.DB(), "sol", holder, amount))
}

func nativeBalance(t *testing.T, svc *Service, holder string) uint64 {
	t.Helper()
	bal, err := svc.Assets().BalanceOf(svc.DB(), "sol", holder)
	require.NoError(t, err)
	return bal
}

func tokenBalance(t *testing.T, svc *Service, mint, holder string) uint64 {
	t.Helper()
	bal, err := svc.Tokens().BalanceOf(svc.DB(), mint, holder)
	require.NoError(t, err)
	return bal
}
