package ecdsaquirks

import (
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
)

// Secp256k1CurveOrder is the order of the secp256k1 curve
var Secp256k1CurveOrder = new(big.Int).Set(secp256k1.S256().Params().N)

// secp256k1HalfOrder is floor(n/2), the largest canonical s value.
var secp256k1HalfOrder = new(big.Int).Rsh(Secp256k1CurveOrder, 1)

var one = big.NewInt(1)

// nonceCommitment computes R = k·G and returns R.x as an integer.
// The result is not reduced modulo n.
func nonceCommitment(k *big.Int) (*big.Int, error) {
	if k.Sign() <= 0 || k.Cmp(Secp256k1CurveOrder) >= 0 {
		return nil, errors.New("nonce out of range [1, n-1]")
	}

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(k.Bytes()); overflow || scalar.IsZero() {
		return nil, errors.New("nonce out of range [1, n-1]")
	}

	var point secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&scalar, &point)
	point.ToAffine()
	point.X.Normalize()

	x := point.X.Bytes()
	return new(big.Int).SetBytes(x[:]), nil
}

// digestScalar interprets a 32-byte digest as an integer mod n.
func digestScalar(digest [32]byte) *big.Int {
	z := new(big.Int).SetBytes(digest[:])
	return z.Mod(z, Secp256k1CurveOrder)
}

// isCanonicalS reports whether s lies in the lower half of the order.
func isCanonicalS(s *big.Int) bool {
	return s.Sign() > 0 && s.Cmp(secp256k1HalfOrder) <= 0
}
