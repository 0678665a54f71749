package ecdsaquirks

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Bundle is the JSON form of a Result.
type Bundle struct {
	Message1   string `json:"message1"`
	Message2   string `json:"message2"`
	EIP191     bool   `json:"eip191"`
	PrivateKey string `json:"private_key,omitempty"`
	Address    string `json:"address"`
	Signature1 string `json:"signature1"`
	Signature2 string `json:"signature2"`
}

// NewBundle converts a Result into its JSON form.
func NewBundle(res *Result) *Bundle {
	b := &Bundle{
		Message1:   res.Message1,
		Message2:   res.Message2,
		EIP191:     res.Mode == HashEIP191,
		Address:    res.Address.Hex(),
		Signature1: res.Signature1.Hex(),
		Signature2: res.Signature2.Hex(),
	}
	if res.PrivateKey != nil {
		b.PrivateKey = res.PrivateKeyHex()
	}
	return b
}

// Mode returns the hash mode recorded in the bundle.
func (b *Bundle) Mode() HashMode {
	return HashModeFor(b.EIP191)
}

// Decode parses the hex fields of the bundle. The private key is optional.
func (b *Bundle) Decode() (*Result, error) {
	if b.Message1 == "" || b.Message2 == "" {
		return nil, ErrMissingMessage
	}
	if !common.IsHexAddress(b.Address) {
		return nil, errors.Errorf("invalid address %q", b.Address)
	}

	sig1, err := ParseSignatureHex(b.Signature1)
	if err != nil {
		return nil, errors.Wrap(err, "signature1")
	}
	sig2, err := ParseSignatureHex(b.Signature2)
	if err != nil {
		return nil, errors.Wrap(err, "signature2")
	}

	res := &Result{
		Quirked: Quirked{
			Address:    common.HexToAddress(b.Address),
			Signature1: sig1,
			Signature2: sig2,
		},
		Message1: b.Message1,
		Message2: b.Message2,
		Mode:     b.Mode(),
		Digest1:  HashMessage(b.Mode(), []byte(b.Message1)),
		Digest2:  HashMessage(b.Mode(), []byte(b.Message2)),
	}

	if b.PrivateKey != "" {
		raw, err := hexutil.Decode(b.PrivateKey)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode private key")
		}
		key, err := crypto.ToECDSA(raw)
		if err != nil {
			return nil, errors.Wrap(err, "invalid private key")
		}
		res.PrivateKey = key
	}

	return res, nil
}

// WriteJSON writes the bundle as indented JSON followed by a newline.
func (b *Bundle) WriteJSON(w io.Writer) error {
	out, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode bundle")
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}

// BundleParser defines the interface for reading bundles from a source.
type BundleParser interface {
	// ParseBundles parses one or more bundles from a source.
	ParseBundles(source string) ([]*Bundle, error)
}

// JSONParser parses bundles from JSON files. The file may hold a single
// object or an array of objects; unknown fields are ignored.
type JSONParser struct {
	Message1Field   string // Field name for message1 (default: "message1")
	Message2Field   string // Field name for message2 (default: "message2")
	EIP191Field     string // Field name for the hash mode flag (default: "eip191")
	AddressField    string // Field name for the address (default: "address")
	Signature1Field string // Field name for signature1 (default: "signature1")
	Signature2Field string // Field name for signature2 (default: "signature2")
}

// ParseBundles parses bundles from a JSON file.
//
// Expected format:
//
//	{"message1": "...", "message2": "...", "eip191": true,
//	 "private_key": "0x...", "address": "0x...",
//	 "signature1": "0x...", "signature2": "0x..."}
//
// or an array of such objects.
func (p *JSONParser) ParseBundles(jsonFile string) ([]*Bundle, error) {
	data, err := os.ReadFile(jsonFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var items []map[string]interface{}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := decoder.Decode(&items); err != nil {
			return nil, errors.Wrap(err, "failed to parse JSON")
		}
	} else {
		var item map[string]interface{}
		if err := decoder.Decode(&item); err != nil {
			return nil, errors.Wrap(err, "failed to parse JSON")
		}
		items = append(items, item)
	}

	bundles := make([]*Bundle, 0, len(items))
	for i, item := range items {
		b, err := p.bundleFromItem(item)
		if err != nil {
			return nil, errors.Wrapf(err, "bundle %d", i)
		}
		bundles = append(bundles, b)
	}
	return bundles, nil
}

func (p *JSONParser) bundleFromItem(item map[string]interface{}) (*Bundle, error) {
	b := &Bundle{}
	var err error

	if b.Message1, err = stringField(item, orDefault(p.Message1Field, "message1"), true); err != nil {
		return nil, err
	}
	if b.Message2, err = stringField(item, orDefault(p.Message2Field, "message2"), true); err != nil {
		return nil, err
	}
	if b.Address, err = stringField(item, orDefault(p.AddressField, "address"), true); err != nil {
		return nil, err
	}
	if b.Signature1, err = stringField(item, orDefault(p.Signature1Field, "signature1"), true); err != nil {
		return nil, err
	}
	if b.Signature2, err = stringField(item, orDefault(p.Signature2Field, "signature2"), true); err != nil {
		return nil, err
	}
	if b.PrivateKey, err = stringField(item, "private_key", false); err != nil {
		return nil, err
	}
	if b.EIP191, err = boolField(item, orDefault(p.EIP191Field, "eip191")); err != nil {
		return nil, err
	}
	return b, nil
}

func orDefault(field, def string) string {
	if field == "" {
		return def
	}
	return field
}

func stringField(item map[string]interface{}, field string, required bool) (string, error) {
	val, ok := item[field]
	if !ok {
		if required {
			return "", errors.Errorf("missing %s field", field)
		}
		return "", nil
	}
	s, ok := val.(string)
	if !ok {
		return "", errors.Errorf("%s field must be a string, got %T", field, val)
	}
	return s, nil
}

// boolField accepts JSON booleans, "true"/"false" strings and 0/1 numbers.
// A missing field means false.
func boolField(item map[string]interface{}, field string) (bool, error) {
	val, ok := item[field]
	if !ok {
		return false, nil
	}
	switch v := val.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, errors.Errorf("invalid %s value %q", field, v)
		}
		return b, nil
	case json.Number:
		switch v.String() {
		case "0":
			return false, nil
		case "1":
			return true, nil
		}
		return false, errors.Errorf("invalid %s value %s", field, v)
	default:
		return false, errors.Errorf("unsupported type for %s: %T", field, val)
	}
}
