// Package crypto provides the ed25519 key generation/signing and SHA-256
// hashing primitives (spec §4.1, §3 C1) used to authenticate transactions
// and to link/seal blocks.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"

	"golang.org/x/crypto/ed25519"

	"github.com/ground-x/gxchain/common"
)

// GenerateKeyPair creates a fresh ed25519 signing key pair, one per process
// per spec §1's "no key management beyond generating one signing key pair".
func GenerateKeyPair() (common.PublicKey, common.SecretKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return common.PublicKey{}, common.SecretKey{}, err
	}
	var pk common.PublicKey
	var sk common.SecretKey
	copy(pk[:], pub)
	copy(sk[:], priv)
	return pk, sk, nil
}

// Sign produces a detached ed25519 signature over msg.
func Sign(sk common.SecretKey, msg []byte) common.Signature {
	sig := ed25519.Sign(ed25519.PrivateKey(sk[:]), msg)
	var out common.Signature
	copy(out[:], sig)
	return out
}

// Verify reports whether sig is a valid ed25519 signature over msg under pk.
func Verify(pk common.PublicKey, msg []byte, sig common.Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(pk[:]), msg, sig[:])
}

// Sum256 is the SHA-256 digest of data, as common.Hash. The gossip adapter
// keys its seen-message cache on it; block and transaction hashes go through
// RLPHash instead, which takes the same SHA-256 over an RLP encoding.
func Sum256(data []byte) common.Hash {
	return common.Hash(sha256.Sum256(data))
}
