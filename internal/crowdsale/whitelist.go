package crowdsale

import "github.com/ethereum/go-ethereum/common"

// AddToWhitelist admits account. Adding a member again changes nothing.
func (e *Engine) AddToWhitelist(caller, account common.Address) error {
	if err := e.onlyOwner(caller); err != nil {
		return err
	}
	if e.whitelist[account] {
		return nil
	}
	if _, seen := e.whitelist[account]; !seen {
		e.everAdded = append(e.everAdded, account)
	}
	e.whitelist[account] = true
	return nil
}

// RemoveFromWhitelist revokes account's membership. The account keeps its
// place in the enumeration order should it be added back.
func (e *Engine) RemoveFromWhitelist(caller, account common.Address) error {
	if err := e.onlyOwner(caller); err != nil {
		return err
	}
	if _, seen := e.whitelist[account]; seen {
		e.whitelist[account] = false
	}
	return nil
}

// ToggleWhitelist turns the allow-list gate on or off.
func (e *Engine) ToggleWhitelist(caller common.Address, enabled bool) error {
	if err := e.onlyOwner(caller); err != nil {
		return err
	}
	e.whitelistEnabled = enabled
	return nil
}

// IsWhitelisted reports current membership.
func (e *Engine) IsWhitelisted(account common.Address) bool {
	return e.whitelist[account]
}

// WhitelistedAddresses returns current members in the order they were
// first added.
func (e *Engine) WhitelistedAddresses() []common.Address {
	out := make([]common.Address, 0, len(e.everAdded))
	for _, a := range e.everAdded {
		if e.whitelist[a] {
			out = append(out, a)
		}
	}
	return out
}
