package ecdsaquirks

import (
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// SignatureLength is the size of an encoded signature: R || S || V.
const SignatureLength = 65

// Signature represents a recoverable ECDSA signature.
type Signature struct {
	R *big.Int // x-coordinate of the nonce point
	S *big.Int // s component, always in the lower half of the order
	V byte     // 27 or 28
}

// RecoveryID returns V - 27.
func (sig Signature) RecoveryID() byte {
	return sig.V - 27
}

// Bytes encodes the signature as 32-byte R, 32-byte S and the V byte.
func (sig Signature) Bytes() []byte {
	out := make([]byte, SignatureLength)
	copy(out[0:32], math.PaddedBigBytes(sig.R, 32))
	copy(out[32:64], math.PaddedBigBytes(sig.S, 32))
	out[64] = sig.V
	return out
}

// Hex returns the 0x-prefixed encoding.
func (sig Signature) Hex() string {
	return hexutil.Encode(sig.Bytes())
}

// ParseSignature decodes a 65-byte signature. V may be given as 0/1 or 27/28;
// it is normalized to 27/28.
func ParseSignature(raw []byte) (Signature, error) {
	if len(raw) != SignatureLength {
		return Signature{}, errors.Errorf("signature must be %d bytes, got %d", SignatureLength, len(raw))
	}

	v := raw[64]
	switch v {
	case 0, 1:
		v += 27
	case 27, 28:
	default:
		return Signature{}, errors.Errorf("invalid recovery byte 0x%02x", raw[64])
	}

	return Signature{
		R: new(big.Int).SetBytes(raw[0:32]),
		S: new(big.Int).SetBytes(raw[32:64]),
		V: v,
	}, nil
}

// ParseSignatureHex decodes a hex signature, with or without 0x prefix.
func ParseSignatureHex(s string) (Signature, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	raw, err := hexutil.Decode(s)
	if err != nil {
		return Signature{}, errors.Wrap(err, "failed to decode signature")
	}
	return ParseSignature(raw)
}

// Quirked is a key pair and two signatures sharing the same (r, s).
type Quirked struct {
	PrivateKey *ecdsa.PrivateKey
	Address    common.Address
	Signature1 Signature // valid for the first digest
	Signature2 Signature // valid for the second digest
}

// PrivateKeyHex returns the 0x-prefixed 32-byte private key.
func (q *Quirked) PrivateKeyHex() string {
	return hexutil.Encode(crypto.FromECDSA(q.PrivateKey))
}

// Result is a Quirked bundle together with the messages that produced it.
type Result struct {
	Quirked

	Message1 string
	Message2 string
	Mode     HashMode
	Digest1  common.Hash
	Digest2  common.Hash
}
