package ecdsaquirks

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

// DefaultMaxNonceAttempts bounds how many nonces are drawn before giving up on
// degenerate commitments.
const DefaultMaxNonceAttempts = 8

// Solver builds a key pair and a signature shared by two digests.
// A Solver holds no state between calls and is safe for concurrent use if its
// NonceSource is.
type Solver struct {
	// Nonces supplies k (default: crypto/rand)
	Nonces NonceSource

	// MaxAttempts limits nonce resampling (0 = DefaultMaxNonceAttempts)
	MaxAttempts int

	// Logger receives debug records (default: discard)
	Logger log15.Logger

	// commit computes R.x for a nonce; recoverer is the address recovery used
	// for ordering and the final check.
	commit    func(*big.Int) (*big.Int, error)
	recoverer func(common.Hash, Signature) (common.Address, error)
}

// NewSolver creates a solver drawing nonces from the given source.
func NewSolver(nonces NonceSource) *Solver {
	return &Solver{Nonces: nonces}
}

// Solve draws a fresh nonce and constructs the colliding signature for the two
// digests. Degenerate nonces are resampled up to MaxAttempts times.
func (s *Solver) Solve(digest1, digest2 common.Hash) (*Quirked, error) {
	if err := checkDigests(digest1, digest2); err != nil {
		return nil, err
	}

	nonces := s.Nonces
	if nonces == nil {
		nonces = NewRandomNonceSource()
	}
	if binder, ok := nonces.(DigestBinder); ok {
		nonces = binder.Bind(digest1, digest2)
	}
	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxNonceAttempts
	}
	log := s.logger()

	for attempt := 1; attempt <= attempts; attempt++ {
		k, err := nonces.Nonce(Secp256k1CurveOrder)
		if err != nil {
			return nil, err
		}

		quirked, err := s.SolveWithNonce(k, digest1, digest2)
		if errors.Is(err, ErrDegenerateNonce) {
			log.Debug("Resampling degenerate nonce", "attempt", attempt, "source", nonces.Name())
			continue
		}
		return quirked, err
	}

	return nil, errors.Wrapf(ErrDegenerateNonce, "no usable nonce after %d attempts", attempts)
}

// SolveWithNonce runs the construction for a fixed nonce k. For fixed inputs the
// output is fully determined.
func (s *Solver) SolveWithNonce(k *big.Int, digest1, digest2 common.Hash) (*Quirked, error) {
	if err := checkDigests(digest1, digest2); err != nil {
		return nil, err
	}
	if k == nil {
		return nil, errors.New("nonce is nil")
	}

	n := Secp256k1CurveOrder
	log := s.logger()

	commit := s.commit
	if commit == nil {
		commit = nonceCommitment
	}
	rx, err := commit(k)
	if err != nil {
		return nil, err
	}
	// r = R.x mod n. An x-coordinate >= n would need recovery id 2 or 3,
	// which a 27/28 byte cannot carry.
	if rx.Sign() == 0 || rx.Cmp(n) >= 0 {
		return nil, ErrDegenerateNonce
	}
	r := rx

	z1 := digestScalar(digest1)
	z2 := digestScalar(digest2)

	// x = -(z1 + z2) / 2r (mod n)
	twoR := new(big.Int).Lsh(r, 1)
	twoR.Mod(twoR, n)
	denom := new(big.Int).ModInverse(twoR, n)
	if denom == nil {
		return nil, errors.New("2r has no inverse modulo n")
	}

	x := new(big.Int).Add(z1, z2)
	x.Mul(x, denom)
	x.Mod(x, n)
	x.Sub(n, x)
	x.Mod(x, n)
	if x.Sign() == 0 {
		return nil, ErrDegenerateKey
	}

	// s = (z1 + x*r) / k (mod n)
	kInv := new(big.Int).ModInverse(k, n)
	if kInv == nil {
		return nil, errors.New("nonce has no inverse modulo n")
	}
	sv := new(big.Int).Mul(x, r)
	sv.Add(sv, z1)
	sv.Mul(sv, kInv)
	sv.Mod(sv, n)

	if sv.Cmp(secp256k1HalfOrder) > 0 {
		sv.Sub(n, sv)
	}

	key, address, err := deriveKey(x)
	if err != nil {
		return nil, err
	}

	sig1 := Signature{R: r, S: sv, V: 27}
	sig2 := Signature{R: new(big.Int).Set(r), S: new(big.Int).Set(sv), V: 28}

	recoverer := s.recoverFunc()
	if got, err := recoverer(digest1, sig1); err != nil || got != address {
		sig1, sig2 = sig2, sig1
		log.Debug("Swapped recovery ids", "address", address)
	}

	if err := checkRecovery(recoverer, "signature1", digest1, sig1, address); err != nil {
		return nil, err
	}
	if err := checkRecovery(recoverer, "signature2", digest2, sig2, address); err != nil {
		return nil, err
	}

	return &Quirked{
		PrivateKey: key,
		Address:    address,
		Signature1: sig1,
		Signature2: sig2,
	}, nil
}

func (s *Solver) logger() log15.Logger {
	if s.Logger == nil {
		return discardLogger()
	}
	return s.Logger
}

func (s *Solver) recoverFunc() func(common.Hash, Signature) (common.Address, error) {
	if s.recoverer == nil {
		return RecoverAddress
	}
	return s.recoverer
}

// checkDigests rejects digest pairs the construction cannot serve.
func checkDigests(digest1, digest2 common.Hash) error {
	if digestScalar(digest1).Cmp(digestScalar(digest2)) == 0 {
		return ErrIdenticalDigests
	}
	return nil
}

func checkRecovery(recoverer func(common.Hash, Signature) (common.Address, error), step string, digest common.Hash, sig Signature, want common.Address) error {
	got, err := recoverer(digest, sig)
	if err != nil {
		return &InternalFault{Step: step, Digest: digest, Want: want, Err: err}
	}
	if got != want {
		return &InternalFault{Step: step, Digest: digest, Want: want, Got: got}
	}
	return nil
}
