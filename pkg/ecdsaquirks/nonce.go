package ecdsaquirks

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

// NonceSource defines the interface for drawing ECDSA nonces.
// Implement this interface to control where k comes from.
type NonceSource interface {
	// Nonce returns a scalar in [1, order-1]. A nonce must never serve two
	// different digest pairs: random sources draw fresh values, deterministic
	// sources implement DigestBinder.
	Nonce(order *big.Int) (*big.Int, error)

	// Name returns a human-readable name for this source.
	Name() string
}

// DigestBinder is implemented by deterministic nonce sources. Solver.Solve
// calls Bind with the digests being signed and draws from the returned
// source, so equal seeds only repeat a nonce for the same digest pair.
type DigestBinder interface {
	Bind(digest1, digest2 common.Hash) NonceSource
}

// RandomNonceSource draws nonces uniformly from a random reader.
type RandomNonceSource struct {
	// Reader supplies the randomness (default: crypto/rand.Reader)
	Reader io.Reader
}

// NewRandomNonceSource creates a nonce source backed by crypto/rand.
func NewRandomNonceSource() *RandomNonceSource {
	return &RandomNonceSource{Reader: rand.Reader}
}

// Nonce implements the NonceSource interface.
func (s *RandomNonceSource) Nonce(order *big.Int) (*big.Int, error) {
	reader := s.Reader
	if reader == nil {
		reader = rand.Reader
	}
	return drawScalar(reader, order)
}

// Name returns the name of this source.
func (s *RandomNonceSource) Name() string {
	return "Random"
}

const (
	seededDomain = "ecdsa-quirks/nonce/v1"
	boundDomain  = "ecdsa-quirks/nonce/v1/digests"
)

// SeededNonceSource derives a deterministic nonce stream from a seed using
// SHAKE-256. Two sources built from the same seed yield the same sequence.
// Solver.Solve binds the stream to the digests (see Bind), so the same seed
// gives a different nonce for every digest pair.
type SeededNonceSource struct {
	seed   []byte
	mu     sync.Mutex
	stream sha3.ShakeHash
}

// NewSeededNonceSource creates a deterministic nonce source.
func NewSeededNonceSource(seed []byte) *SeededNonceSource {
	stream := sha3.NewShake256()
	stream.Write([]byte(seededDomain))
	stream.Write(seed)
	return &SeededNonceSource{seed: append([]byte(nil), seed...), stream: stream}
}

// Bind returns a fresh source whose stream is keyed on the seed and both
// digests, in the manner of RFC 6979.
func (s *SeededNonceSource) Bind(digest1, digest2 common.Hash) NonceSource {
	var seedLen [8]byte
	binary.BigEndian.PutUint64(seedLen[:], uint64(len(s.seed)))

	stream := sha3.NewShake256()
	stream.Write([]byte(boundDomain))
	stream.Write(seedLen[:])
	stream.Write(s.seed)
	stream.Write(digest1[:])
	stream.Write(digest2[:])
	return &SeededNonceSource{seed: s.seed, stream: stream}
}

// Nonce implements the NonceSource interface.
func (s *SeededNonceSource) Nonce(order *big.Int) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return drawScalar(s.stream, order)
}

// Name returns the name of this source.
func (s *SeededNonceSource) Name() string {
	return "Seeded"
}

// drawScalar returns a uniform scalar in [1, order-1].
func drawScalar(reader io.Reader, order *big.Int) (*big.Int, error) {
	if order == nil || order.Cmp(big.NewInt(2)) < 0 {
		return nil, errors.New("invalid group order")
	}
	k, err := rand.Int(reader, new(big.Int).Sub(order, one))
	if err != nil {
		return nil, errors.Wrap(err, "failed to draw nonce")
	}
	return k.Add(k, one), nil
}
