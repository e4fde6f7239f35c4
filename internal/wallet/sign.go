package wallet

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrBadSignature is returned for signatures that do not recover to the
// expected account.
var ErrBadSignature = errors.New("bad signature")

// WhitelistRequest is the message a buyer signs to ask a sale operator for
// a whitelist slot.
func WhitelistRequest(sale, buyer common.Address) []byte {
	return []byte(fmt.Sprintf("w3sale whitelist request\nsale: %s\nbuyer: %s", sale.Hex(), buyer.Hex()))
}

// SignMessage signs msg with the personal_sign prefix. The signature is
// R || S || V with V in {27, 28}.
func (s *Signer) SignMessage(msg []byte) ([]byte, error) {
	key, err := loadKey(s.wallet, s.ks)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(accounts.TextHash(msg), key)
	if err != nil {
		return nil, fmt.Errorf("signing message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// VerifyMessage recovers the account that signed msg.
func VerifyMessage(msg, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: %d bytes, want %d", ErrBadSignature, len(sig), crypto.SignatureLength)
	}
	rsv := common.CopyBytes(sig)
	if rsv[crypto.RecoveryIDOffset] >= 27 {
		rsv[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash(msg), rsv)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifyWhitelistRequest checks that sig is buyer's request for sale.
func VerifyWhitelistRequest(sale, buyer common.Address, sig []byte) error {
	got, err := VerifyMessage(WhitelistRequest(sale, buyer), sig)
	if err != nil {
		return err
	}
	if got != buyer {
		return fmt.Errorf("%w: signed by %s, not %s", ErrBadSignature, got.Hex(), buyer.Hex())
	}
	return nil
}
