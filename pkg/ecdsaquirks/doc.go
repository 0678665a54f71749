// Package ecdsaquirks constructs a secp256k1 key pair together with a single
// ECDSA signature (r, s) that verifies for two different messages.
//
// The private key is not chosen up front. Given the two message digests z₁, z₂
// and a random nonce k with R = k·G, r = R.x, the key is solved from the two
// signing equations s·k ≡ zᵢ + x·r (mod n):
//
//	x = −(z₁ + z₂) / 2r  (mod n)
//	s = (z₁ + x·r) / k   (mod n)
//
// With this x the signature for z₂ is (r, −s), so after low-s normalization
// both messages share (r, s) and differ only in the recovery byte (27 / 28).
//
// This is the duplicate-signature construction described by Pointcheval and
// Stern. The derived key is public by construction; never use it to protect
// anything.
//
// # Quick Start
//
//	import "github.com/mahdiidarabi/ecdsa-quirks/pkg/ecdsaquirks"
//
//	client := ecdsaquirks.NewClient().WithHashMode(ecdsaquirks.HashEIP191)
//
//	result, err := client.Quirk(ctx, "Ethereum the world computer", "Bitcoin the store of value")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(result.PrivateKeyHex())
//	fmt.Println(result.Address.Hex())
//	fmt.Println(result.Signature1.Hex())
//	fmt.Println(result.Signature2.Hex())
//
// # Nonce Sources
//
// The nonce is drawn from a NonceSource. The default reads crypto/rand; a
// seeded source gives reproducible output for a given message pair. Its stream
// is keyed on the seed and both digests, so one seed never yields the same
// nonce for two different pairs:
//
//	client := ecdsaquirks.NewClient().
//	    WithNonceSource(ecdsaquirks.NewSeededNonceSource([]byte("demo")))
//
// Implement the NonceSource interface to plug in anything else:
//
//	type MySource struct{}
//
//	func (s *MySource) Nonce(order *big.Int) (*big.Int, error) {
//	    // return k in [1, order-1]
//	}
//
//	func (s *MySource) Name() string {
//	    return "MySource"
//	}
//
// # Verification
//
// Results can be written as JSON bundles and checked later:
//
//	err := ecdsaquirks.NewClient().VerifyFile(ctx, "bundle.json")
//
// # Key Exposure
//
// The two signatures of a result share (r, s), so their nonces are k and −k.
// ExposeKey recovers x from the public signatures alone, using the same
// algebra as any affinely related nonce pair (see RecoverPrivateKey).
package ecdsaquirks
