package ecdsaquirks

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// ErrKeyNotExposed is returned when no known nonce relation between the two
// signatures yields the bundle's key.
var ErrKeyNotExposed = errors.New("no nonce relation exposes the private key")

// Relation describes nonces related by k2 = A*k1 + B.
type Relation struct {
	A    *big.Int
	B    *big.Int
	Name string
}

// Exposure is a private key recovered from a signature pair.
type Exposure struct {
	PrivateKey *big.Int
	Relation   Relation
}

// exposureRelations lists the relations a colliding pair can carry, most
// likely first. After low-s normalization both signatures share s, so the
// second one was made with the negated nonce. An unnormalized pair (r, s),
// (r, -s) reads as the same nonce.
var exposureRelations = []Relation{
	{A: big.NewInt(-1), B: big.NewInt(0), Name: "negated_nonce"},
	{A: big.NewInt(1), B: big.NewInt(0), Name: "same_nonce"},
}

// RecoverPrivateKey recovers the private key from two signatures whose nonces
// satisfy k2 = a*k1 + b:
//
//	x = (a*s2*z1 - s1*z2 + b*s1*s2) / (r2*s1 - a*r1*s2) mod n
func RecoverPrivateKey(digest1 common.Hash, sig1 Signature, digest2 common.Hash, sig2 Signature, a, b *big.Int) (*big.Int, error) {
	if sig1.R == nil || sig1.S == nil || sig2.R == nil || sig2.S == nil {
		return nil, errors.New("signature is missing r or s")
	}
	n := Secp256k1CurveOrder
	z1 := digestScalar(digest1)
	z2 := digestScalar(digest2)

	as2z1 := new(big.Int).Mul(a, sig2.S)
	as2z1.Mul(as2z1, z1)

	s1z2 := new(big.Int).Mul(sig1.S, z2)

	bs1s2 := new(big.Int).Mul(b, sig1.S)
	bs1s2.Mul(bs1s2, sig2.S)

	numerator := new(big.Int).Sub(as2z1, s1z2)
	numerator.Add(numerator, bs1s2)
	numerator.Mod(numerator, n)

	r2s1 := new(big.Int).Mul(sig2.R, sig1.S)

	ar1s2 := new(big.Int).Mul(a, sig1.R)
	ar1s2.Mul(ar1s2, sig2.S)

	denominator := new(big.Int).Sub(r2s1, ar1s2)
	denominator.Mod(denominator, n)
	if denominator.Sign() == 0 {
		return nil, errors.New("denominator is zero: cannot recover private key")
	}

	denominatorInv := new(big.Int).ModInverse(denominator, n)
	if denominatorInv == nil {
		return nil, errors.New("failed to compute modular inverse")
	}

	priv := new(big.Int).Mul(denominatorInv, numerator)
	return priv.Mod(priv, n), nil
}

// ExposeKey recovers the private key of a colliding pair from the two public
// signatures alone and checks it against the address. Anyone holding both
// signatures can do this.
func ExposeKey(res *Result) (*Exposure, error) {
	for _, rel := range exposureRelations {
		priv, err := RecoverPrivateKey(res.Digest1, res.Signature1, res.Digest2, res.Signature2, rel.A, rel.B)
		if err != nil || priv.Sign() == 0 {
			continue
		}
		ok, err := VerifyPrivateKey(priv, res.Address)
		if err != nil || !ok {
			continue
		}
		return &Exposure{PrivateKey: priv, Relation: rel}, nil
	}
	return nil, errors.Wrapf(ErrKeyNotExposed, "address %s", res.Address.Hex())
}
