// Package units converts between human-readable decimal amounts and the
// 18-decimal base units used by the token ledger and the native currency.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimals is the number of fractional digits of every amount in w3sale.
const Decimals = 18

// Errors.
var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNegative      = errors.New("amount must not be negative")
	ErrTooPrecise    = errors.New("amount has more than 18 fractional digits")
)

// One is 10^18, one whole token (or one whole unit of currency) in base units.
var One = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)

// Parse converts a decimal string such as "0.025" into base units.
func Parse(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrNegative, s)
	}
	scaled := d.Shift(Decimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %s", ErrTooPrecise, s)
	}
	return scaled.BigInt(), nil
}

// MustParse is Parse for constants and fixtures. It panics on bad input.
func MustParse(s string) *big.Int {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Format renders base units as the shortest exact decimal string ("10", "0.025").
func Format(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -Decimals).String()
}

// FormatFixed renders base units with exactly places fractional digits, rounding down.
func FormatFixed(v *big.Int, places int32) string {
	if v == nil {
		v = new(big.Int)
	}
	return decimal.NewFromBigInt(v, -Decimals).Truncate(places).StringFixed(places)
}

// MulDiv returns floor(a*b/d).
func MulDiv(a, b, d *big.Int) *big.Int {
	n := new(big.Int).Mul(a, b)
	return n.Quo(n, d)
}

// MulDivCeil returns ceil(a*b/d) for non-negative operands.
func MulDivCeil(a, b, d *big.Int) *big.Int {
	n := new(big.Int).Mul(a, b)
	q, r := new(big.Int).QuoRem(n, d, new(big.Int))
	if r.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}
