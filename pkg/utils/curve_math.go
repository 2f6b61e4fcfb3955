package utils

import (
	"errors"
	"math/big"
)

// Virtual-reserve constant-product curve, all amounts in base units (u64).
//
// The virtual reserves are derived so that selling exactly saleSupply tokens
// raises exactly finalBaseTarget base asset, and the terminal marginal price
// equals finalBaseTarget / liquidityReserveSupply (the external pool's opening
// price). Effective reserves during trading are
//
//	R_T = virtualTokenReserve + (saleSupply - tokensSold)
//	R_B = virtualBaseReserve + baseRaised
//
// Every division is floor division, which favors the pool over the trader.

var ErrInvalidCurveConfig = errors.New("invalid curve configuration")

// DeriveVirtualReserves computes the fixed virtual reserves for a launch.
// Requires saleSupply > liquidityReserveSupply and all amounts > 0.
func DeriveVirtualReserves(saleSupply, liquidityReserveSupply, finalBaseTarget uint64) (virtualToken, virtualBase uint64, err error) {
	if saleSupply == 0 || liquidityReserveSupply == 0 || finalBaseTarget == 0 {
		return 0, 0, ErrInvalidCurveConfig
	}
	if saleSupply <= liquidityReserveSupply {
		return 0, 0, ErrInvalidCurveConfig
	}
	denom := saleSupply - liquidityReserveSupply
	virtualToken, err = MulDiv(saleSupply, liquidityReserveSupply, denom)
	if err != nil {
		return 0, 0, err
	}
	virtualBase, err = MulDiv(finalBaseTarget, liquidityReserveSupply, denom)
	if err != nil {
		return 0, 0, err
	}
	if virtualToken == 0 || virtualBase == 0 {
		return 0, 0, ErrInvalidCurveConfig
	}
	return virtualToken, virtualBase, nil
}

// CurveTokensOut converts a base-asset input into a token output against the
// effective reserves: tokensOut = baseIn * rT / (rB + baseIn).
func CurveTokensOut(baseIn, rT, rB uint64) (uint64, error) {
	denom, err := AddU64(rB, baseIn)
	if err != nil {
		return 0, err
	}
	return MulDiv(baseIn, rT, denom)
}

// CurveBaseOut converts a token input into a base-asset output against the
// effective reserves: baseOut = tokenIn * rB / (rT + tokenIn).
func CurveBaseOut(tokenIn, rT, rB uint64) (uint64, error) {
	denom, err := AddU64(rT, tokenIn)
	if err != nil {
		return 0, err
	}
	return MulDiv(tokenIn, rB, denom)
}

// CurvePrice returns the current marginal price scaled by AccumulatorScale:
// price = rB * scale / rT.
func CurvePrice(rT, rB uint64) (uint64, error) {
	return MulDiv(rB, AccumulatorScale, rT)
}

// SqrtPriceX64 returns sqrt(base/quote) in Q64.64 fixed point, the format the
// external pool expects when its price is initialized.
func SqrtPriceX64(baseAmount, quoteAmount uint64) (*big.Int, error) {
	if quoteAmount == 0 {
		return nil, ErrDivisionByZero
	}
	// sqrt(base * 2^128 / quote) == sqrt(base/quote) * 2^64
	n := new(big.Int).SetUint64(baseAmount)
	n.Lsh(n, 128)
	n.Quo(n, new(big.Int).SetUint64(quoteAmount))
	return n.Sqrt(n), nil
}
