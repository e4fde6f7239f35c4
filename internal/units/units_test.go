package units_test

import (
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWhole(t *testing.T) {
	v, err := units.Parse("10")
	require.NoError(t, err)
	assert.Equal(t, "10000000000000000000", v.String())
}

func TestParseFraction(t *testing.T) {
	v, err := units.Parse("0.025")
	require.NoError(t, err)
	assert.Equal(t, "25000000000000000", v.String())
}

func TestParseSmallestUnit(t *testing.T) {
	v, err := units.Parse("0.000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Int64())
}

func TestParseTooPrecise(t *testing.T) {
	_, err := units.Parse("0.0000000000000000001")
	assert.ErrorIs(t, err, units.ErrTooPrecise)
}

func TestParseNegative(t *testing.T) {
	_, err := units.Parse("-1")
	assert.ErrorIs(t, err, units.ErrNegative)
}

func TestParseInvalid(t *testing.T) {
	_, err := units.Parse("abc")
	assert.ErrorIs(t, err, units.ErrInvalidAmount)

	_, err = units.Parse("  ")
	assert.ErrorIs(t, err, units.ErrInvalidAmount)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "10", units.Format(units.MustParse("10")))
	assert.Equal(t, "0.025", units.Format(units.MustParse("0.025")))
	assert.Equal(t, "999990", units.Format(units.MustParse("999990")))
	assert.Equal(t, "0", units.Format(nil))
}

func TestFormatFixed(t *testing.T) {
	assert.Equal(t, "1.2345", units.FormatFixed(units.MustParse("1.23456"), 4))
	assert.Equal(t, "0.0000", units.FormatFixed(nil, 4))
}

func TestMulDivCeil(t *testing.T) {
	// 0.111 tokens at 0.025 each = 0.002775 exactly.
	cost := units.MulDivCeil(units.MustParse("0.111"), units.MustParse("0.025"), units.One)
	assert.Equal(t, units.MustParse("0.002775").String(), cost.String())

	// 1 base unit at half a wei per token rounds up to 1.
	assert.Equal(t, "1", units.MulDivCeil(big.NewInt(1), big.NewInt(5e17), units.One).String())
	assert.Equal(t, 0, units.MulDiv(big.NewInt(1), big.NewInt(5e17), units.One).Sign())
}
