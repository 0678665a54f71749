package ecdsaquirks

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	// ErrMissingMessage is returned when either input message is empty.
	ErrMissingMessage = errors.New("both messages are required")

	// ErrIdenticalDigests is returned when the two digests are equal modulo n.
	// The construction would yield s = 0.
	ErrIdenticalDigests = errors.New("message digests are identical modulo the curve order")

	// ErrDegenerateNonce is returned when no usable nonce was found within the
	// allowed number of draws (r = 0 or R.x >= n).
	ErrDegenerateNonce = errors.New("nonce produced a degenerate commitment")

	// ErrDegenerateKey is returned when z1 + z2 ≡ 0 (mod n), which solves to x = 0.
	ErrDegenerateKey = errors.New("digests solve to a zero private key")

	// ErrSignatureMismatch is returned by verification when a signature does
	// not recover to the expected address.
	ErrSignatureMismatch = errors.New("signature does not recover to the expected address")
)

// InternalFault reports a failed post-construction recovery check. It means the
// arithmetic or encoding is wrong, not that the input was bad.
type InternalFault struct {
	Step   string
	Digest common.Hash
	Want   common.Address
	Got    common.Address
	Err    error
}

func (f *InternalFault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("internal consistency fault at %s: digest %s: %v", f.Step, f.Digest.Hex(), f.Err)
	}
	return fmt.Sprintf("internal consistency fault at %s: digest %s recovers to %s, want %s",
		f.Step, f.Digest.Hex(), f.Got.Hex(), f.Want.Hex())
}

func (f *InternalFault) Unwrap() error {
	return f.Err
}
