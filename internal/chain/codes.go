package chain

import (
	"errors"

	"github.com/Mohsinsiddi/w3sale/internal/crowdsale"
)

// Code returns the stable identifier of any rejection the chain or its
// contracts can produce, or "" for other errors.
func Code(err error) string {
	if c := crowdsale.Code(err); c != "" {
		return c
	}
	for _, c := range chainCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// ErrorForCode is the inverse of Code.
func ErrorForCode(code string) error {
	if err := crowdsale.FromCode(code); err != nil {
		return err
	}
	for _, c := range chainCodes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}
