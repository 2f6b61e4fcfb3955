package utils

import (
	"errors"
	"math"
	"math/big"
)

// Scale used by price and reward-per-unit accumulators (12 decimals).
const AccumulatorScale = 1_000_000_000_000

// BpsDenominator is the basis-point denominator (100% == 10000 bps).
const BpsDenominator = 10_000

const SecondsPerYear = 31_536_000

var ErrDivisionByZero = errors.New("division by zero")
var ErrAmountOverflow = errors.New("amount overflows uint64")

// MulDiv computes a * b / denominator with floor division, using big.Int
// for the intermediate product so u64 inputs never overflow.
func MulDiv(a, b, denominator uint64) (uint64, error) {
	if denominator == 0 {
		return 0, ErrDivisionByZero
	}
	prod := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	prod.Quo(prod, new(big.Int).SetUint64(denominator))
	if !prod.IsUint64() {
		return 0, ErrAmountOverflow
	}
	return prod.Uint64(), nil
}

// MulDiv3 computes a * b * c / denominator, floor division.
func MulDiv3(a, b, c, denominator uint64) (uint64, error) {
	if denominator == 0 {
		return 0, ErrDivisionByZero
	}
	prod := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	prod.Mul(prod, new(big.Int).SetUint64(c))
	prod.Quo(prod, new(big.Int).SetUint64(denominator))
	if !prod.IsUint64() {
		return 0, ErrAmountOverflow
	}
	return prod.Uint64(), nil
}

// BpsOf returns amount * bps / 10000, floor division.
func BpsOf(amount, bps uint64) uint64 {
	v, err := MulDiv(amount, bps, BpsDenominator)
	if err != nil {
		// prod of u64 * 10000 / 10000 always fits back into u64
		return 0
	}
	return v
}

// SatSub returns a - b, saturating at zero instead of wrapping.
func SatSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}

// MinU64 returns the smaller of a and b.
func MinU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// AddU64 returns a + b, or an error when the sum would wrap.
func AddU64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrAmountOverflow
	}
	return a + b, nil
}
