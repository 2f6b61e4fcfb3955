package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/ledger"
)

func baseLaunchParams() CreateLaunchParams {
	return CreateLaunchParams{
		TokenMint:     "newt",
		Symbol:        "NEWT",
		Name:          "Newton",
		Decimals:      6,
		TotalSupply:   10_000,
		Creator:       "creator",
		BaseAssetMint: ledger.NativeAssetMint,

		BondingBps:   6500,
		LiquidityBps: 1500,
		DevTeamBps:   1000,
		StakingBps:   1000,

		DevVestSeconds: 1000,
		DevTeam: []BatchScheduleEntry{
			{Beneficiary: "dev1", ShareBps: 6000},
			{Beneficiary: "dev2", ShareBps: 4000},
		},
	}
}

func TestCreateLaunch(t *testing.T) {
	svc, _ := newTestService(t)
	seedPolicy(t, svc, models.BaseAssetPolicy{Mint: ledger.NativeAssetMint, FinalBaseTarget: 100, Enabled: true})
	seedFeeConfig(t, svc, models.FeeConfig{CreationFee: 5, FeeRecipient: "treasury"})
	creditNative(t, svc, "creator", 5)

	id, err := svc.CreateLaunch(baseLaunchParams())
	require.NoError(t, err)
	require.NotZero(t, id)

	t.Run("Creation Fee Charged", func(t *testing.T) {
		assert.Equal(t, uint64(0), nativeBalance(t, svc, "creator"))
		assert.Equal(t, uint64(5), nativeBalance(t, svc, "treasury"))
	})

	t.Run("Supply Split Across Custodies", func(t *testing.T) {
		// 65% sale + 15% liquidity in curve custody, 10% dev vesting, 10% staking
		assert.Equal(t, uint64(8000), tokenBalance(t, svc, "newt", CurveCustodyAccount("newt")))
		assert.Equal(t, uint64(1000), tokenBalance(t, svc, "newt", VestingCustody))
		assert.Equal(t, uint64(1000), tokenBalance(t, svc, "newt", StakingCustody))
		assert.Equal(t, uint64(0), tokenBalance(t, svc, "newt", "creator"))
	})

	t.Run("Dev Schedules Are Curve Anchored", func(t *testing.T) {
		s1, err := svc.GetSchedule("newt", "dev1")
		require.NoError(t, err)
		assert.Equal(t, uint64(600), s1.TotalVestedAmount)
		assert.Equal(t, models.DeferredStartTime, s1.StartTime)
		assert.Equal(t, id, s1.LaunchCurveID)

		s2, err := svc.GetSchedule("newt", "dev2")
		require.NoError(t, err)
		assert.Equal(t, uint64(400), s2.TotalVestedAmount)
	})

	t.Run("Transfers Restricted Until Launch", func(t *testing.T) {
		err := svc.Tokens().Transfer(svc.DB(), "newt", "dev1", "friend", 10)
		assert.ErrorIs(t, err, ledger.ErrTransferRestricted)
	})

	t.Run("Duplicate Mint Rejected", func(t *testing.T) {
		creditNative(t, svc, "creator", 5)
		_, err := svc.CreateLaunch(baseLaunchParams())
		assert.ErrorIs(t, err, ErrConfiguration)
	})
}

func TestUpfrontClaimWhileRestricted(t *testing.T) {
	svc, _ := newTestService(t)
	seedPolicy(t, svc, models.BaseAssetPolicy{Mint: ledger.NativeAssetMint, FinalBaseTarget: 100, Enabled: true})

	p := baseLaunchParams()
	p.DevUpfrontBps = 1000
	_, err := svc.CreateLaunch(p)
	require.NoError(t, err)

	// the curve has not completed and the mint is restricted to curve
	// custody, yet the upfront unlock still pays out of vesting custody
	claim, err := svc.ClaimVested("newt", "dev1")
	require.NoError(t, err)
	assert.Equal(t, uint64(60), claim.UnlockReleased)
	assert.Equal(t, uint64(0), claim.VestedReleased)
	assert.Equal(t, uint64(60), tokenBalance(t, svc, "newt", "dev1"))

	// the unlocked tokens are still bound by the pre-launch restriction
	err = svc.Tokens().Transfer(svc.DB(), "newt", "dev1", "friend", 10)
	assert.ErrorIs(t, err, ledger.ErrTransferRestricted)
}

func TestCreateLaunchValidation(t *testing.T) {
	svc, _ := newTestService(t)
	seedPolicy(t, svc, models.BaseAssetPolicy{Mint: ledger.NativeAssetMint, FinalBaseTarget: 100, Enabled: true})

	t.Run("Shares Must Sum To Full Bps", func(t *testing.T) {
		p := baseLaunchParams()
		p.StakingBps = 2000
		_, err := svc.CreateLaunch(p)
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("Unlisted Base Asset Rejected", func(t *testing.T) {
		p := baseLaunchParams()
		p.BaseAssetMint = "shadow"
		_, err := svc.CreateLaunch(p)
		assert.ErrorIs(t, err, ErrAuthorization)
	})

	t.Run("Unaffordable Creation Fee Rejected", func(t *testing.T) {
		seedFeeConfig(t, svc, models.FeeConfig{CreationFee: 5, FeeRecipient: "treasury"})
		_, err := svc.CreateLaunch(baseLaunchParams())
		assert.ErrorIs(t, err, ErrTransfer)
	})
}

func TestLaunchLifecycle(t *testing.T) {
	svc, clock := newTestService(t)
	seedPolicy(t, svc, models.BaseAssetPolicy{Mint: ledger.NativeAssetMint, FinalBaseTarget: 100, Enabled: true})

	p := baseLaunchParams()
	p.AutoMigrate = true
	id, err := svc.CreateLaunch(p)
	require.NoError(t, err)
	require.NoError(t, svc.StartTrading(id))

	creditNative(t, svc, "whale", 250)
	res, err := svc.Buy(id, "whale", 250, 0, 0, "")
	require.NoError(t, err)
	require.True(t, res.Complete)

	t.Run("Completion Migrates And Launches The Token", func(t *testing.T) {
		curve, err := svc.GetCurve(id)
		require.NoError(t, err)
		assert.True(t, curve.LiquidityMigrated)

		// restriction lifted: a plain third-party transfer now passes
		require.NoError(t, svc.Tokens().Transfer(svc.DB(), "newt", "whale", "friend", 100))
		assert.Equal(t, uint64(100), tokenBalance(t, svc, "newt", "friend"))
	})

	t.Run("Dev Vesting Runs From Completion", func(t *testing.T) {
		clock.Advance(1000 * time.Second)

		claim, err := svc.ClaimVested("newt", "dev1")
		require.NoError(t, err)
		assert.Equal(t, uint64(600), claim.VestedReleased)
		assert.True(t, claim.ScheduleClosed)
		assert.Equal(t, uint64(600), tokenBalance(t, svc, "newt", "dev1"))
	})
}
