package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveVirtualReserves(t *testing.T) {
	t.Run("Derives Reserves From Launch Config", func(t *testing.T) {
		// saleSupply 6500, liquidity reserve 1500, target 100:
		// vT = 6500*1500/5000 = 1950, vB = 100*1500/5000 = 30
		vT, vB, err := DeriveVirtualReserves(6500, 1500, 100)
		require.NoError(t, err)
		assert.Equal(t, uint64(1950), vT)
		assert.Equal(t, uint64(30), vB)
	})

	t.Run("Terminal Price Matches Pool Opening Price", func(t *testing.T) {
		vT, vB, err := DeriveVirtualReserves(6500, 1500, 100)
		require.NoError(t, err)

		// With the sale fully sold: rT = vT, rB = vB + target.
		terminal, err := CurvePrice(vT, vB+100)
		require.NoError(t, err)
		opening, err := CurvePrice(1500, 100)
		require.NoError(t, err)

		// Floor division loses at most one accumulator unit.
		assert.InDelta(t, float64(opening), float64(terminal), 1)
	})

	t.Run("Rejects Degenerate Configs", func(t *testing.T) {
		_, _, err := DeriveVirtualReserves(0, 1500, 100)
		assert.ErrorIs(t, err, ErrInvalidCurveConfig)

		_, _, err = DeriveVirtualReserves(6500, 0, 100)
		assert.ErrorIs(t, err, ErrInvalidCurveConfig)

		_, _, err = DeriveVirtualReserves(6500, 1500, 0)
		assert.ErrorIs(t, err, ErrInvalidCurveConfig)

		// sale supply must strictly exceed the liquidity reserve
		_, _, err = DeriveVirtualReserves(1500, 1500, 100)
		assert.ErrorIs(t, err, ErrInvalidCurveConfig)
	})
}

func TestCurveTokensOut(t *testing.T) {
	t.Run("Opening Buy", func(t *testing.T) {
		// Fresh curve from the 6500/1500/100 config: rT = 1950 + 6500 = 8450,
		// rB = 30. A 10-unit deposit buys floor(10*8450/40) = 2112 tokens.
		out, err := CurveTokensOut(10, 8450, 30)
		require.NoError(t, err)
		assert.Equal(t, uint64(2112), out)
	})

	t.Run("Price Strictly Increases As Supply Sells", func(t *testing.T) {
		vT, vB, err := DeriveVirtualReserves(6500, 1500, 100)
		require.NoError(t, err)

		sale := uint64(6500)
		var sold, raised uint64
		var lastOut uint64
		first := true

		for i := 0; i < 10; i++ {
			rT := vT + (sale - sold)
			rB := vB + raised
			out, err := CurveTokensOut(10, rT, rB)
			require.NoError(t, err)
			if !first {
				assert.Less(t, out, lastOut, "equal deposits must buy fewer tokens as the curve fills")
			}
			first = false
			lastOut = out
			sold += out
			raised += 10
		}
	})

	t.Run("Full Raise Sells At Most The Sale Supply", func(t *testing.T) {
		vT, vB, err := DeriveVirtualReserves(6500, 1500, 100)
		require.NoError(t, err)

		out, err := CurveTokensOut(100, vT+6500, vB)
		require.NoError(t, err)
		assert.LessOrEqual(t, out, uint64(6500))
		// Floor division may strand dust but never more than a few units.
		assert.Greater(t, out, uint64(6490))
	})
}

func TestCurveBaseOut(t *testing.T) {
	t.Run("Round Trip Never Profits", func(t *testing.T) {
		vT, vB, err := DeriveVirtualReserves(6500, 1500, 100)
		require.NoError(t, err)

		sale := uint64(6500)
		baseIn := uint64(10)
		tokens, err := CurveTokensOut(baseIn, vT+sale, vB)
		require.NoError(t, err)

		// Sell the tokens straight back against the post-buy reserves.
		rT := vT + sale - tokens
		rB := vB + baseIn
		baseOut, err := CurveBaseOut(tokens, rT, rB)
		require.NoError(t, err)
		assert.LessOrEqual(t, baseOut, baseIn)
	})
}

func TestSqrtPriceX64(t *testing.T) {
	t.Run("Unit Price", func(t *testing.T) {
		p, err := SqrtPriceX64(1, 1)
		require.NoError(t, err)
		// sqrt(1) in Q64.64 is exactly 2^64.
		assert.Equal(t, "18446744073709551616", p.String())
	})

	t.Run("Quarter Price Halves The Root", func(t *testing.T) {
		p, err := SqrtPriceX64(1, 4)
		require.NoError(t, err)
		assert.Equal(t, "9223372036854775808", p.String())
	})

	t.Run("Zero Quote Rejected", func(t *testing.T) {
		_, err := SqrtPriceX64(1, 0)
		assert.ErrorIs(t, err, ErrDivisionByZero)
	})
}
