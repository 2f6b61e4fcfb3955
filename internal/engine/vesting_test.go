package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchcontrol/internal/models"
)

func seedVestingFunds(t *testing.T, svc *Service, mint, funder string, amount uint64) {
	t.Helper()
	require.NoError(t, svc.Tokens().CreateMint(svc.DB(), mint, "VST", "Vested", 6, amount, funder))
}

func TestCreateSchedule(t *testing.T) {
	svc, _ := newTestService(t)
	seedVestingFunds(t, svc, "vtok", "funder", 100_000)

	t.Run("Splits Upfront From Vested", func(t *testing.T) {
		err := svc.CreateSchedule(CreateScheduleParams{
			AssetMint: "vtok", Funder: "funder", Beneficiary: "alice",
			Amount: 10_000, CliffSeconds: 1000, VestSeconds: 9000, UpfrontUnlockBps: 1000,
		})
		require.NoError(t, err)

		schedule, err := svc.GetSchedule("vtok", "alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), schedule.UpfrontUnlockAmount)
		assert.Equal(t, uint64(9000), schedule.TotalVestedAmount)
		assert.False(t, schedule.UnlockClaimed)

		// the full deposit moved into vesting custody
		assert.Equal(t, uint64(10_000), tokenBalance(t, svc, "vtok", VestingCustody))
	})

	t.Run("One Live Schedule Per Pair", func(t *testing.T) {
		err := svc.CreateSchedule(CreateScheduleParams{
			AssetMint: "vtok", Funder: "funder", Beneficiary: "alice",
			Amount: 500, VestSeconds: 100,
		})
		assert.ErrorIs(t, err, ErrState)
	})

	t.Run("Zero Vest Duration Rejected", func(t *testing.T) {
		err := svc.CreateSchedule(CreateScheduleParams{
			AssetMint: "vtok", Funder: "funder", Beneficiary: "bob",
			Amount: 500, VestSeconds: 0,
		})
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("Underfunded Schedule Rejected", func(t *testing.T) {
		err := svc.CreateSchedule(CreateScheduleParams{
			AssetMint: "vtok", Funder: "pauper", Beneficiary: "bob",
			Amount: 500, VestSeconds: 100,
		})
		assert.ErrorIs(t, err, ErrTransfer)
	})
}

func TestClaimVested(t *testing.T) {
	svc, clock := newTestService(t)
	seedVestingFunds(t, svc, "vtok", "funder", 100_000)

	// 10000 total, 10% upfront, 1000s cliff then linear over 9000s
	require.NoError(t, svc.CreateSchedule(CreateScheduleParams{
		AssetMint: "vtok", Funder: "funder", Beneficiary: "alice",
		Amount: 10_000, CliffSeconds: 1000, VestSeconds: 9000, UpfrontUnlockBps: 1000,
	}))

	t.Run("Upfront Unlock Pays Before The Cliff", func(t *testing.T) {
		res, err := svc.ClaimVested("vtok", "alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), res.UnlockReleased)
		assert.Equal(t, uint64(0), res.VestedReleased)
		assert.Equal(t, uint64(1000), tokenBalance(t, svc, "vtok", "alice"))
	})

	t.Run("Unlock Pays Only Once", func(t *testing.T) {
		_, err := svc.ClaimVested("vtok", "alice")
		assert.ErrorIs(t, err, ErrState)
	})

	t.Run("Nothing Vests Inside The Cliff", func(t *testing.T) {
		clock.Advance(999 * time.Second)
		_, err := svc.ClaimVested("vtok", "alice")
		assert.ErrorIs(t, err, ErrState)
	})

	t.Run("Halfway Through Vest Pays Half", func(t *testing.T) {
		// at cliff + 4500s: 9000 * 4500/9000 = 4500
		clock.Advance(1 * time.Second)  // cliff boundary
		clock.Advance(4500 * time.Second)
		res, err := svc.ClaimVested("vtok", "alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(4500), res.VestedReleased)
		assert.Equal(t, uint64(5500), tokenBalance(t, svc, "vtok", "alice"))
	})

	t.Run("Final Claim Closes The Schedule", func(t *testing.T) {
		clock.Advance(10_000 * time.Second)
		res, err := svc.ClaimVested("vtok", "alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(4500), res.VestedReleased)
		assert.True(t, res.ScheduleClosed)
		assert.Equal(t, uint64(10_000), tokenBalance(t, svc, "vtok", "alice"))

		_, err = svc.GetSchedule("vtok", "alice")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Pair Reusable After Close", func(t *testing.T) {
		err := svc.CreateSchedule(CreateScheduleParams{
			AssetMint: "vtok", Funder: "funder", Beneficiary: "alice",
			Amount: 500, VestSeconds: 100,
		})
		require.NoError(t, err)
	})
}

// fakeCurveStatus is a controllable completion source for deferred schedules.
type fakeCurveStatus struct {
	complete    bool
	completedAt int64
}

func (f *fakeCurveStatus) CurveStatus(uint) (bool, int64, error) {
	return f.complete, f.completedAt, nil
}

func TestDeferredScheduleAnchorsToCurveCompletion(t *testing.T) {
	status := &fakeCurveStatus{}
	svc, clock := newTestService(t, WithCurveStatusProvider(status))
	seedVestingFunds(t, svc, "vtok", "funder", 100_000)

	require.NoError(t, svc.CreateSchedule(CreateScheduleParams{
		AssetMint: "vtok", Funder: "funder", Beneficiary: "dev",
		Amount: 10_000, CliffSeconds: 1000, VestSeconds: 9000, UpfrontUnlockBps: 1000,
		LaunchCurveID: 42,
	}))

	t.Run("Start Is Deferred", func(t *testing.T) {
		schedule, err := svc.GetSchedule("vtok", "dev")
		require.NoError(t, err)
		assert.Equal(t, models.DeferredStartTime, schedule.StartTime)
	})

	t.Run("Upfront Pays While Vesting Is Dormant", func(t *testing.T) {
		clock.Advance(100_000 * time.Second)
		res, err := svc.ClaimVested("vtok", "dev")
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), res.UnlockReleased)
		assert.Equal(t, uint64(0), res.VestedReleased)
	})

	t.Run("Completion Binds The Start Time", func(t *testing.T) {
		status.complete = true
		status.completedAt = clock.Now().Unix()

		// halfway through the vest window measured from completion
		clock.Advance((1000 + 4500) * time.Second)
		res, err := svc.ClaimVested("vtok", "dev")
		require.NoError(t, err)
		assert.Equal(t, uint64(4500), res.VestedReleased)

		schedule, err := svc.GetSchedule("vtok", "dev")
		require.NoError(t, err)
		assert.Equal(t, status.completedAt, schedule.StartTime)
	})

	t.Run("Binding Is Sticky", func(t *testing.T) {
		// moving the reported completion later must not move the start
		status.completedAt = clock.Now().Unix()

		clock.Advance(4500 * time.Second)
		res, err := svc.ClaimVested("vtok", "dev")
		require.NoError(t, err)
		assert.Equal(t, uint64(4500), res.VestedReleased)
		assert.True(t, res.ScheduleClosed)
	})
}

func TestCreateBatchSchedule(t *testing.T) {
	svc, _ := newTestService(t)
	seedVestingFunds(t, svc, "vtok", "funder", 100_000)

	t.Run("Shares Must Sum To Full Bps", func(t *testing.T) {
		err := svc.CreateBatchSchedule("vtok", "funder", 10_000, 0, 100, 0, 0, []BatchScheduleEntry{
			{Beneficiary: "a", ShareBps: 5000},
			{Beneficiary: "b", ShareBps: 4000},
		})
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("Splits The Deposit By Share", func(t *testing.T) {
		err := svc.CreateBatchSchedule("vtok", "funder", 10_000, 0, 100, 0, 0, []BatchScheduleEntry{
			{Beneficiary: "a", ShareBps: 7500},
			{Beneficiary: "b", ShareBps: 2500},
		})
		require.NoError(t, err)

		sa, err := svc.GetSchedule("vtok", "a")
		require.NoError(t, err)
		assert.Equal(t, uint64(7500), sa.TotalVestedAmount)

		sb, err := svc.GetSchedule("vtok", "b")
		require.NoError(t, err)
		assert.Equal(t, uint64(2500), sb.TotalVestedAmount)
	})

	t.Run("One Bad Entry Rolls The Batch Back", func(t *testing.T) {
		err := svc.CreateBatchSchedule("vtok", "funder", 10_000, 0, 100, 0, 0, []BatchScheduleEntry{
			{Beneficiary: "c", ShareBps: 5000},
			{Beneficiary: "a", ShareBps: 5000}, // already has a live schedule
		})
		assert.ErrorIs(t, err, ErrState)

		_, err = svc.GetSchedule("vtok", "c")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
