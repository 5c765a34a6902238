package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCalculatorRejectsBadRates(t *testing.T) {
	_, err := NewCalculator(-1)
	assert.ErrorIs(t, err, ErrInvalidRate)
	_, err = NewCalculator(BasisPointDenominator + 1)
	assert.ErrorIs(t, err, ErrInvalidRate)

	c, err := NewCalculator(0)
	require.NoError(t, err)
	assert.Zero(t, c.PlatformFee(1000))
}

func TestPlatformFeeTruncates(t *testing.T) {
	c, err := NewCalculator(1000) // 10%
	require.NoError(t, err)

	assert.Equal(t, int64(4), c.PlatformFee(40))
	assert.Equal(t, int64(0), c.PlatformFee(9))
	assert.Equal(t, int64(0), c.PlatformFee(0))
	assert.Equal(t, int64(0), c.PlatformFee(-50))
}

func TestHalfPercentRate(t *testing.T) {
	c, err := NewCalculator(50) // 0.5%
	require.NoError(t, err)

	assert.Equal(t, int64(5), c.PlatformFee(1000))
	fee, payout := c.Split(1000, 1)
	assert.Equal(t, int64(5), fee)
	assert.Equal(t, int64(995), payout)
}

func TestSplitSingleWinner(t *testing.T) {
	c, err := NewCalculator(1000)
	require.NoError(t, err)

	fee, payout := c.Split(40, 1)
	assert.Equal(t, int64(4), fee)
	assert.Equal(t, int64(36), payout)
}

func TestSplitTwoWinnersPool100(t *testing.T) {
	c, err := NewCalculator(1000)
	require.NoError(t, err)

	fee, payout := c.Split(100, 2)
	assert.Equal(t, int64(10), fee)
	assert.Equal(t, int64(45), payout)
}

func TestSplitLeavesDustOnUnevenDivision(t *testing.T) {
	c, err := NewCalculator(1000)
	require.NoError(t, err)

	fee, payout := c.Split(100, 3)
	assert.Equal(t, int64(10), fee)
	assert.Equal(t, int64(30), payout)
	// 100 - 10 - 3*30 = 0 dust here; force a remainder
	fee, payout = c.Split(101, 3)
	assert.Equal(t, int64(10), fee)
	assert.Equal(t, int64(30), payout)
	assert.Equal(t, int64(1), 101-fee-3*payout)
}

func TestSplitNoWinners(t *testing.T) {
	c, err := NewCalculator(1000)
	require.NoError(t, err)

	fee, payout := c.Split(500, 0)
	assert.Equal(t, int64(50), fee)
	assert.Zero(t, payout)
}
