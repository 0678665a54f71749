package ecdsaquirks

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONParser_ParseBundles_Single(t *testing.T) {
	parser := &JSONParser{}

	bundles, err := parser.ParseBundles(filepath.Join(fixturesDir(), "bundle_reference.json"))
	require.NoError(t, err)
	require.Len(t, bundles, 1)

	b := bundles[0]
	assert.Equal(t, "Ethereum the world computer", b.Message1)
	assert.Equal(t, "Bitcoin the store of value", b.Message2)
	assert.True(t, b.EIP191)
	assert.Equal(t, HashEIP191, b.Mode())
	assert.NotEmpty(t, b.PrivateKey)
}

func TestJSONParser_ParseBundles_Array(t *testing.T) {
	parser := &JSONParser{}

	bundles, err := parser.ParseBundles(filepath.Join(fixturesDir(), "quirked_vectors.json"))
	require.NoError(t, err)

	vectors := loadTestVectors(t)
	require.Len(t, bundles, len(vectors))
	for i, v := range vectors {
		assert.Equal(t, v.Address, bundles[i].Address)
		assert.Equal(t, v.Signature1, bundles[i].Signature1)
		assert.Equal(t, v.EIP191, bundles[i].EIP191)
	}
}

func TestJSONParser_ParseBundles_CustomFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.json")
	content := `{"m1": "hello", "m2": "world", "prefixed": "false",
		"signer": "0x0Fc82e340b820a730d68A20Bd4D33fafB88E2eF6",
		"sigA": "0x8aea336a7136cd6cf81889f3b02d8315a2cb05bbbdcbbb1317a189ddb27bfb203b92e214374eba2973042e35e5b364c7a36f775d43845ff1af1df147d81d50f01c",
		"sigB": "0x8aea336a7136cd6cf81889f3b02d8315a2cb05bbbdcbbb1317a189ddb27bfb203b92e214374eba2973042e35e5b364c7a36f775d43845ff1af1df147d81d50f01b"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	parser := &JSONParser{
		Message1Field:   "m1",
		Message2Field:   "m2",
		EIP191Field:     "prefixed",
		AddressField:    "signer",
		Signature1Field: "sigA",
		Signature2Field: "sigB",
	}
	bundles, err := parser.ParseBundles(path)
	require.NoError(t, err)
	require.Len(t, bundles, 1)

	b := bundles[0]
	assert.Equal(t, "hello", b.Message1)
	assert.False(t, b.EIP191)
	assert.Empty(t, b.PrivateKey)

	res, err := b.Decode()
	require.NoError(t, err)
	assert.Nil(t, res.PrivateKey)
	assert.Equal(t, HashMessage(HashRaw, []byte("hello")), res.Digest1)
}

func TestJSONParser_ParseBundles_Errors(t *testing.T) {
	dir := t.TempDir()
	parser := &JSONParser{}

	cases := map[string]string{
		"missing_signature.json": `{"message1": "a", "message2": "b", "address": "0x0000000000000000000000000000000000000001", "signature1": "0x00"}`,
		"wrong_type.json":        `{"message1": 1, "message2": "b", "address": "x", "signature1": "x", "signature2": "x"}`,
		"bad_flag.json":          `{"message1": "a", "message2": "b", "address": "x", "signature1": "x", "signature2": "x", "eip191": 2}`,
		"not_json.json":          `message1=a`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
			_, err := parser.ParseBundles(path)
			assert.Error(t, err)
		})
	}

	_, err := parser.ParseBundles(filepath.Join(dir, "does_not_exist.json"))
	assert.Error(t, err)
}

func TestBundle_RoundTrip(t *testing.T) {
	v := loadTestVectors(t)[0]
	digest1, digest2 := digestsOf(v)

	quirked, err := NewSolver(nil).SolveWithNonce(mustBigHex(t, v.Nonce), digest1, digest2)
	require.NoError(t, err)

	res := &Result{
		Quirked:  *quirked,
		Message1: v.Message1,
		Message2: v.Message2,
		Mode:     HashModeFor(v.EIP191),
		Digest1:  digest1,
		Digest2:  digest2,
	}

	var buf bytes.Buffer
	require.NoError(t, NewBundle(res).WriteJSON(&buf))

	var decoded Bundle
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, v.PrivateKey, decoded.PrivateKey)
	assert.Equal(t, v.Address, decoded.Address)
	assert.Equal(t, v.Signature1, decoded.Signature1)
	assert.Equal(t, v.Signature2, decoded.Signature2)

	back, err := decoded.Decode()
	require.NoError(t, err)
	assert.Equal(t, res.Address, back.Address)
	assert.Equal(t, res.Digest1, back.Digest1)
	assert.Equal(t, res.Digest2, back.Digest2)
	assert.Equal(t, res.PrivateKeyHex(), back.PrivateKeyHex())
}

func TestBundle_DecodeErrors(t *testing.T) {
	v := loadTestVectors(t)[0]
	valid := Bundle{
		Message1:   v.Message1,
		Message2:   v.Message2,
		EIP191:     v.EIP191,
		PrivateKey: v.PrivateKey,
		Address:    v.Address,
		Signature1: v.Signature1,
		Signature2: v.Signature2,
	}

	mutations := map[string]func(b *Bundle){
		"empty message": func(b *Bundle) { b.Message2 = "" },
		"bad address":   func(b *Bundle) { b.Address = "0x1234" },
		"bad sig1":      func(b *Bundle) { b.Signature1 = "0x1b" },
		"bad sig2":      func(b *Bundle) { b.Signature2 = v.Signature2[:100] },
		"bad key hex":   func(b *Bundle) { b.PrivateKey = "0xnothex" },
		"zero key":      func(b *Bundle) { b.PrivateKey = "0x" + string(bytes.Repeat([]byte("0"), 64)) },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			b := valid
			mutate(&b)
			_, err := b.Decode()
			assert.Error(t, err)
		})
	}

	_, err := valid.Decode()
	assert.NoError(t, err)
}
