package ecdsaquirks

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// HashMode selects how messages are turned into digests.
type HashMode int

const (
	// HashRaw is Keccak-256 over the message bytes.
	HashRaw HashMode = iota
	// HashEIP191 is Keccak-256 over the EIP-191 personal-message encoding.
	HashEIP191
)

func (m HashMode) String() string {
	switch m {
	case HashRaw:
		return "raw"
	case HashEIP191:
		return "eip191"
	default:
		return fmt.Sprintf("HashMode(%d)", int(m))
	}
}

// HashModeFor maps the EIP-191 flag to a HashMode.
func HashModeFor(eip191 bool) HashMode {
	if eip191 {
		return HashEIP191
	}
	return HashRaw
}

// HashMessage hashes a message with Keccak-256, optionally applying the
// "\x19Ethereum Signed Message:\n<len>" prefix first.
func HashMessage(mode HashMode, message []byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	if mode == HashEIP191 {
		fmt.Fprintf(h, "\x19Ethereum Signed Message:\n%d", len(message))
	}
	h.Write(message)

	var digest common.Hash
	h.Sum(digest[:0])
	return digest
}
