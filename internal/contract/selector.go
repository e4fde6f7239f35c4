package contract

import (
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

func keccak(s string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(s))
	return h.Sum(nil)
}

// Selector returns the first four bytes of keccak256(sig), e.g.
// Selector("transfer(address,uint256)") = a9059cbb.
func Selector(sig string) [4]byte {
	var out [4]byte
	copy(out[:], keccak(sig))
	return out
}

// EventTopic returns keccak256(sig), the first topic of a non-anonymous event.
func EventTopic(sig string) common.Hash {
	return common.BytesToHash(keccak(sig))
}
