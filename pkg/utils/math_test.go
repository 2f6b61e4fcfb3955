package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulDiv(t *testing.T) {
	t.Run("Floors The Quotient", func(t *testing.T) {
		v, err := MulDiv(10, 8450, 40)
		require.NoError(t, err)
		assert.Equal(t, uint64(2112), v)
	})

	t.Run("Intermediate Product Exceeds Uint64", func(t *testing.T) {
		// maxU64 * maxU64 / maxU64 round-trips without overflow.
		v, err := MulDiv(math.MaxUint64, math.MaxUint64, math.MaxUint64)
		require.NoError(t, err)
		assert.Equal(t, uint64(math.MaxUint64), v)
	})

	t.Run("Result Overflow Rejected", func(t *testing.T) {
		_, err := MulDiv(math.MaxUint64, 2, 1)
		assert.ErrorIs(t, err, ErrAmountOverflow)
	})

	t.Run("Zero Denominator Rejected", func(t *testing.T) {
		_, err := MulDiv(1, 1, 0)
		assert.ErrorIs(t, err, ErrDivisionByZero)
	})
}

func TestBpsOf(t *testing.T) {
	assert.Equal(t, uint64(100), BpsOf(10000, 100))
	assert.Equal(t, uint64(0), BpsOf(0, 500))
	assert.Equal(t, uint64(0), BpsOf(10000, 0))
	// 1% of 99: 99*100/10000 floors to 0
	assert.Equal(t, uint64(0), BpsOf(99, 100))
	// full bps returns the amount unchanged
	assert.Equal(t, uint64(math.MaxUint64), BpsOf(math.MaxUint64, BpsDenominator))
}

func TestSatSub(t *testing.T) {
	assert.Equal(t, uint64(3), SatSub(5, 2))
	assert.Equal(t, uint64(0), SatSub(2, 5))
	assert.Equal(t, uint64(0), SatSub(5, 5))
}

func TestAddU64(t *testing.T) {
	v, err := AddU64(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)

	_, err = AddU64(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrAmountOverflow)
}
