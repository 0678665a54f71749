package ecdsaquirks

import (
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// testVector is one entry of fixtures/quirked_vectors.json.
type testVector struct {
	Name       string `json:"name"`
	Message1   string `json:"message1"`
	Message2   string `json:"message2"`
	EIP191     bool   `json:"eip191"`
	Nonce      string `json:"nonce"`
	Digest1    string `json:"digest1"`
	Digest2    string `json:"digest2"`
	PrivateKey string `json:"private_key"`
	Address    string `json:"address"`
	Signature1 string `json:"signature1"`
	Signature2 string `json:"signature2"`
}

func fixturesDir() string {
	return filepath.Join("..", "..", "fixtures")
}

// loadTestVectors reads the known-answer vectors from the fixtures directory.
func loadTestVectors(t *testing.T) []testVector {
	t.Helper()

	file, err := os.Open(filepath.Join(fixturesDir(), "quirked_vectors.json"))
	if err != nil {
		t.Fatalf("Failed to open vectors: %v", err)
	}
	defer file.Close()

	var vectors []testVector
	if err := json.NewDecoder(file).Decode(&vectors); err != nil {
		t.Fatalf("Failed to decode vectors: %v", err)
	}
	if len(vectors) == 0 {
		t.Fatal("No test vectors found")
	}
	return vectors
}

func mustBigHex(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s[2:], 16)
	if !ok {
		t.Fatalf("Invalid hex integer %q", s)
	}
	return v
}

func digestsOf(v testVector) (common.Hash, common.Hash) {
	return common.HexToHash(v.Digest1), common.HexToHash(v.Digest2)
}

// fixedNonceSource hands out a predetermined list of nonces.
type fixedNonceSource struct {
	nonces []*big.Int
	next   int
}

func newFixedNonceSource(nonces ...*big.Int) *fixedNonceSource {
	return &fixedNonceSource{nonces: nonces}
}

func (s *fixedNonceSource) Nonce(order *big.Int) (*big.Int, error) {
	if s.next >= len(s.nonces) {
		return nil, errors.New("fixed nonce source exhausted")
	}
	k := s.nonces[s.next]
	s.next++
	return new(big.Int).Set(k), nil
}

func (s *fixedNonceSource) Name() string {
	return "Fixed"
}

var errEntropyExhausted = errors.New("entropy source exhausted")

// failingReader simulates a broken entropy source.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errEntropyExhausted
}
