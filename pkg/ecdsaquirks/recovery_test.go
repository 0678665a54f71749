package ecdsaquirks

import (
	"math/big"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secp256k1ecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverAddress_Vectors(t *testing.T) {
	for _, v := range loadTestVectors(t) {
		t.Run(v.Name, func(t *testing.T) {
			digest1, digest2 := digestsOf(v)

			sig1, err := ParseSignatureHex(v.Signature1)
			require.NoError(t, err)
			sig2, err := ParseSignatureHex(v.Signature2)
			require.NoError(t, err)

			got1, err := RecoverAddress(digest1, sig1)
			require.NoError(t, err)
			got2, err := RecoverAddress(digest2, sig2)
			require.NoError(t, err)

			assert.Equal(t, v.Address, got1.Hex())
			assert.Equal(t, v.Address, got2.Hex())

			// Swapping the recovery bytes breaks both.
			wrong1, err := RecoverAddress(digest1, sig2)
			require.NoError(t, err)
			assert.NotEqual(t, v.Address, wrong1.Hex())
		})
	}
}

// The decred compact format is [27 + recid] || R || S; it must agree with the
// go-ethereum recovery used by the solver.
func TestRecoverAddress_MatchesCompactRecovery(t *testing.T) {
	for _, v := range loadTestVectors(t) {
		digest1, _ := digestsOf(v)
		sig, err := ParseSignatureHex(v.Signature1)
		require.NoError(t, err)

		raw := sig.Bytes()
		compact := append([]byte{sig.V}, raw[:64]...)

		pub, compressed, err := secp256k1ecdsa.RecoverCompact(compact, digest1[:])
		require.NoError(t, err)
		assert.False(t, compressed)
		assert.Equal(t, v.Address, crypto.PubkeyToAddress(*pub.ToECDSA()).Hex())
	}
}

func TestRecoverAddress_InvalidRecoveryByte(t *testing.T) {
	sig := Signature{R: big.NewInt(1), S: big.NewInt(1), V: 29}
	_, err := RecoverAddress(common.Hash{}, sig)
	assert.Error(t, err)

	_, err = RecoverAddress(common.Hash{}, Signature{V: 27})
	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	v := loadTestVectors(t)[0]
	digest1, digest2 := digestsOf(v)

	key, err := crypto.HexToECDSA(v.PrivateKey[2:])
	require.NoError(t, err)
	sig, err := ParseSignatureHex(v.Signature1)
	require.NoError(t, err)

	// The recovery byte is irrelevant for plain verification, so the same
	// (r, s) verifies for both digests.
	assert.True(t, VerifySignature(&key.PublicKey, digest1, sig))
	assert.True(t, VerifySignature(&key.PublicKey, digest2, sig))

	other := HashMessage(HashRaw, []byte("a third message"))
	assert.False(t, VerifySignature(&key.PublicKey, other, sig))

	stranger, err := crypto.GenerateKey()
	require.NoError(t, err)
	assert.False(t, VerifySignature(&stranger.PublicKey, digest1, sig))

	assert.False(t, VerifySignature(nil, digest1, sig))
}

func TestVerifyPrivateKey(t *testing.T) {
	v := loadTestVectors(t)[0]
	priv := mustBigHex(t, v.PrivateKey)
	address := common.HexToAddress(v.Address)

	ok, err := VerifyPrivateKey(priv, address)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPrivateKey(big.NewInt(12345), address)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPrivateKey(big.NewInt(0), address)
	assert.Error(t, err)
	_, err = VerifyPrivateKey(Secp256k1CurveOrder, address)
	assert.Error(t, err)
}

func TestDeriveAddress(t *testing.T) {
	// Private key 1 has a well-known address.
	priv := secp256k1.PrivKeyFromBytes([]byte{1})
	address := DeriveAddress(*priv.PubKey().ToECDSA())
	assert.Equal(t, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf", address.Hex())
}
