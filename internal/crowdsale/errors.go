package crowdsale

import (
	"errors"

	"github.com/Mohsinsiddi/w3sale/internal/token"
)

// Rejections. Every one of them leaves the sale untouched.
var (
	ErrNotOwner            = errors.New("caller is not the owner")
	ErrSaleClosed          = errors.New("sale is closed")
	ErrSaleNotStarted      = errors.New("sale has not started")
	ErrNotWhitelisted      = errors.New("buyer is not whitelisted")
	ErrBelowMinimum        = errors.New("amount is below the minimum contribution")
	ErrAboveMaximum        = errors.New("amount is above the maximum contribution")
	ErrInsufficientPayment = errors.New("payment does not cover the cost")
	ErrCapExceeded         = errors.New("purchase exceeds the token cap")
	ErrSaleFinalized       = errors.New("sale is finalized")
	ErrZeroPrice           = errors.New("price is zero")
	ErrInvalidBounds       = errors.New("minimum contribution exceeds maximum")
	ErrInvalidToken        = errors.New("token address is zero")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrNotOwner, "NOT_OWNER"},
	{ErrSaleClosed, "SALE_CLOSED"},
	{ErrSaleNotStarted, "SALE_NOT_STARTED"},
	{ErrNotWhitelisted, "NOT_WHITELISTED"},
	{ErrBelowMinimum, "BELOW_MINIMUM"},
	{ErrAboveMaximum, "ABOVE_MAXIMUM"},
	{ErrInsufficientPayment, "INSUFFICIENT_PAYMENT"},
	{ErrCapExceeded, "CAP_EXCEEDED"},
	{ErrSaleFinalized, "SALE_FINALIZED"},
	{ErrZeroPrice, "ZERO_PRICE"},
	{ErrInvalidBounds, "INVALID_BOUNDS"},
	{ErrInvalidToken, "INVALID_TOKEN"},
	{token.ErrInsufficientBalance, "INSUFFICIENT_BALANCE"},
	{token.ErrInvalidRecipient, "INVALID_RECIPIENT"},
	{token.ErrInvalidAmount, "INVALID_AMOUNT"},
}

// Code returns the stable identifier of a rejection, or "" if err is not one.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// FromCode returns the error identified by code, or nil for an unknown code.
func FromCode(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}
