package ecdsaquirks

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

// Client provides a high-level API for building and checking colliding
// signatures over text messages.
type Client struct {
	mode        HashMode
	nonces      NonceSource
	maxAttempts int
	parser      BundleParser
	logger      log15.Logger
}

// NewClient creates a new client with default settings: raw Keccak-256
// hashing, crypto/rand nonces, JSON bundles, no logging.
func NewClient() *Client {
	return &Client{
		mode:   HashRaw,
		nonces: NewRandomNonceSource(),
		parser: &JSONParser{},
		logger: discardLogger(),
	}
}

// WithHashMode sets how messages are hashed.
func (c *Client) WithHashMode(mode HashMode) *Client {
	c.mode = mode
	return c
}

// WithNonceSource sets a custom nonce source.
func (c *Client) WithNonceSource(nonces NonceSource) *Client {
	c.nonces = nonces
	return c
}

// WithMaxAttempts bounds nonce resampling (0 = DefaultMaxNonceAttempts).
func (c *Client) WithMaxAttempts(attempts int) *Client {
	c.maxAttempts = attempts
	return c
}

// WithParser sets a custom bundle parser.
func (c *Client) WithParser(parser BundleParser) *Client {
	c.parser = parser
	return c
}

// WithLogger sets the logger.
func (c *Client) WithLogger(logger log15.Logger) *Client {
	c.logger = logger
	return c
}

// Quirk hashes both messages and builds a key pair whose single signature
// verifies for each of them.
//
// Args:
//   - ctx: Context for cancellation.
//   - message1, message2: The two messages; both must be non-empty.
//
// Returns:
//   - Result with the private key, address and one signature per message.
func (c *Client) Quirk(ctx context.Context, message1, message2 string) (*Result, error) {
	if message1 == "" || message2 == "" {
		return nil, ErrMissingMessage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	digest1 := HashMessage(c.mode, []byte(message1))
	digest2 := HashMessage(c.mode, []byte(message2))
	c.logger.Debug("Hashed messages", "mode", c.mode, "digest1", digest1, "digest2", digest2)

	nonces := c.nonces
	if nonces == nil {
		nonces = NewRandomNonceSource()
	}
	solver := &Solver{
		Nonces:      nonces,
		MaxAttempts: c.maxAttempts,
		Logger:      c.logger,
	}
	quirked, err := solver.Solve(digest1, digest2)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Built colliding signature", "address", quirked.Address, "nonces", nonces.Name())

	return &Result{
		Quirked:  *quirked,
		Message1: message1,
		Message2: message2,
		Mode:     c.mode,
		Digest1:  digest1,
		Digest2:  digest2,
	}, nil
}

// Verify checks that both signatures of a bundle recover to its address and
// pass plain ECDSA verification. If the bundle carries a private key, it must
// control the address. The bundle's own hash mode is used, not the client's.
func (c *Client) Verify(ctx context.Context, bundle *Bundle) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := bundle.Decode()
	if err != nil {
		return errors.Wrap(err, "failed to decode bundle")
	}

	if res.PrivateKey != nil {
		if crypto.PubkeyToAddress(res.PrivateKey.PublicKey) != res.Address {
			return errors.Errorf("private key does not control %s", res.Address.Hex())
		}
	}

	checks := []struct {
		name   string
		digest common.Hash
		sig    Signature
	}{
		{"signature1", res.Digest1, res.Signature1},
		{"signature2", res.Digest2, res.Signature2},
	}
	for _, check := range checks {
		pub, err := RecoverPublicKey(check.digest, check.sig)
		if err != nil {
			return errors.Wrap(err, check.name)
		}
		if got := DeriveAddress(*pub); got != res.Address {
			return errors.Wrapf(ErrSignatureMismatch, "%s recovers to %s, want %s", check.name, got.Hex(), res.Address.Hex())
		}
		if !VerifySignature(pub, check.digest, check.sig) {
			return errors.Errorf("%s fails ECDSA verification", check.name)
		}
		c.logger.Debug("Signature verified", "name", check.name, "address", res.Address)
	}
	return nil
}

// Expose recovers a bundle's private key from its two signatures. The bundle's
// private key field, if any, is ignored.
func (c *Client) Expose(ctx context.Context, bundle *Bundle) (*Exposure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := bundle.Decode()
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode bundle")
	}

	exposure, err := ExposeKey(res)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Exposed private key", "address", res.Address, "relation", exposure.Relation.Name)
	return exposure, nil
}

// VerifyFile parses bundles with the configured parser and verifies each.
func (c *Client) VerifyFile(ctx context.Context, source string) error {
	bundles, err := c.parser.ParseBundles(source)
	if err != nil {
		return errors.Wrap(err, "failed to parse bundles")
	}
	if len(bundles) == 0 {
		return errors.Errorf("no bundles found in %s", source)
	}

	for i, bundle := range bundles {
		if err := c.Verify(ctx, bundle); err != nil {
			return errors.Wrapf(err, "bundle %d", i)
		}
	}
	return nil
}

// discardLogger returns a logger that drops every record.
func discardLogger() log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())
	return logger
}
