// Package fees holds the fixed-point arithmetic splitting a round's pool
// between the platform and the winners. Amounts are int64 smallest units;
// the rate is expressed in basis points so the cut is exact integer math.
package fees

import "errors"

// BasisPointDenominator is the scale of the fee rate (10000 = 100%).
const BasisPointDenominator = 10000

var ErrInvalidRate = errors.New("fee rate out of range")

// Calculator computes the platform cut and per-winner payout for a pool.
type Calculator struct {
	rateBps int64
}

// NewCalculator validates the rate and returns a calculator. A zero rate
// is legal (no platform cut).
func NewCalculator(rateBps int64) (*Calculator, error) {
	if rateBps < 0 || rateBps > BasisPointDenominator {
		return nil, ErrInvalidRate
	}
	return &Calculator{rateBps: rateBps}, nil
}

// RateBps returns the configured rate in basis points.
func (c *Calculator) RateBps() int64 {
	return c.rateBps
}

// PlatformFee returns the platform cut of the pool, truncating.
func (c *Calculator) PlatformFee(pool int64) int64 {
	if pool <= 0 {
		return 0
	}
	return pool * c.rateBps / BasisPointDenominator
}

// Split returns the one-time platform fee and the fixed per-winner payout
// for a pool with the given number of winning tickets. Integer division
// truncates, so winners*payout may undershoot the distributable amount;
// the remainder is dust left in the pool.
func (c *Calculator) Split(pool int64, winners int64) (fee, payoutPerWin int64) {
	fee = c.PlatformFee(pool)
	if winners <= 0 {
		return fee, 0
	}
	payoutPerWin = (pool - fee) / winners
	return fee, payoutPerWin
}
