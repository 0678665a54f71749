package ecdsaquirks

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secp256k1ecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// RecoverPublicKey recovers the signer's public key from a digest and a
// 27/28-style signature.
func RecoverPublicKey(digest common.Hash, sig Signature) (*ecdsa.PublicKey, error) {
	if sig.V != 27 && sig.V != 28 {
		return nil, errors.Errorf("invalid recovery byte 0x%02x", sig.V)
	}
	if sig.R == nil || sig.S == nil {
		return nil, errors.New("signature is missing r or s")
	}

	raw := sig.Bytes()
	raw[64] -= 27

	pub, err := crypto.SigToPub(digest[:], raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to recover public key")
	}
	return pub, nil
}

// RecoverAddress recovers the signer's address from a digest and signature.
func RecoverAddress(digest common.Hash, sig Signature) (common.Address, error) {
	pub, err := RecoverPublicKey(digest, sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifySignature checks (r, s) against the digest with plain ECDSA
// verification, ignoring the recovery byte.
func VerifySignature(pub *ecdsa.PublicKey, digest common.Hash, sig Signature) bool {
	if pub == nil || sig.R == nil || sig.S == nil {
		return false
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig.R.Bytes()); overflow {
		return false
	}
	if overflow := s.SetByteSlice(sig.S.Bytes()); overflow {
		return false
	}

	key, err := secp256k1.ParsePubKey(crypto.FromECDSAPub(pub))
	if err != nil {
		return false
	}

	return secp256k1ecdsa.NewSignature(&r, &s).Verify(digest[:], key)
}

// DeriveAddress returns the Ethereum address of a public key.
func DeriveAddress(pub ecdsa.PublicKey) common.Address {
	return crypto.PubkeyToAddress(pub)
}

// VerifyPrivateKey reports whether a private key controls the given address.
func VerifyPrivateKey(privateKey *big.Int, address common.Address) (bool, error) {
	if privateKey.Sign() <= 0 || privateKey.Cmp(Secp256k1CurveOrder) >= 0 {
		return false, errors.New("private key out of valid range")
	}

	priv := secp256k1.PrivKeyFromBytes(math.PaddedBigBytes(privateKey, 32))
	pub := priv.PubKey().ToECDSA()

	return crypto.PubkeyToAddress(*pub) == address, nil
}

// deriveKey turns the solved scalar into a key pair and its address.
func deriveKey(x *big.Int) (*ecdsa.PrivateKey, common.Address, error) {
	key, err := crypto.ToECDSA(math.PaddedBigBytes(x, 32))
	if err != nil {
		return nil, common.Address{}, errors.Wrap(err, "failed to derive key pair")
	}
	return key, crypto.PubkeyToAddress(key.PublicKey), nil
}
