// Package identitykey binds a MinerResponse to a coldkey using ECDSA
// signatures over the secp256k1 curve, the same key scheme the teacher
// repo used for on-chain accounts.
//
// Grounded on the teacher's pkg/crypto key-handling and the
// sbt-service blockchain client's signature verification, both built
// on go-ethereum's crypto package rather than Go's stdlib
// crypto/ecdsa directly (the teacher never touches crypto/ecdsa: every
// signature it handles is an Ethereum-style recoverable signature).
package identitykey

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Key wraps a coldkey's private key for signing outgoing attestations.
type Key struct {
	private *ecdsa.PrivateKey
}

// GenerateKey creates a fresh coldkey, used by tests and local demos
// that don't need a persisted identity.
func GenerateKey() (*Key, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("identitykey: generate key: %w", err)
	}
	return &Key{private: priv}, nil
}

// KeyFromHex loads a coldkey from a hex-encoded private key, the format
// the teacher's config layer reads wallet keys from.
func KeyFromHex(hexKey string) (*Key, error) {
	priv, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("identitykey: parse private key: %w", err)
	}
	return &Key{private: priv}, nil
}

// Address is the coldkey identifier stored in NetworkView's coldkey
// side-table: the Ethereum-style address derived from the public key.
func (k *Key) Address() common.Address {
	return crypto.PubkeyToAddress(k.private.PublicKey)
}

// Sign produces a recoverable ECDSA signature over the keccak256 hash
// of payload (typically the canonical encoding of one MinerResponse).
func (k *Key) Sign(payload []byte) ([]byte, error) {
	digest := crypto.Keccak256(payload)
	sig, err := crypto.Sign(digest, k.private)
	if err != nil {
		return nil, fmt.Errorf("identitykey: sign: %w", err)
	}
	return sig, nil
}

// Verify recovers the signer's address from sig over payload and
// reports whether it matches want. The ingest layer does not call it:
// submitted responses are accepted without a signature check.
func Verify(payload, sig []byte, want common.Address) (bool, error) {
	digest := crypto.Keccak256(payload)
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return false, fmt.Errorf("identitykey: recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub) == want, nil
}
