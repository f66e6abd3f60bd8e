// Package common holds the fixed-size value types shared by every layer of
// gxchain: the 256-bit Hash used for block linkage and proof-of-work, and
// the ed25519 key/signature byte arrays used for accounts and transaction
// authentication.
package common

import (
	"encoding/hex"
	"math/big"

	"golang.org/x/crypto/ed25519"
)

// HashLength is the length in bytes of a Hash.
const HashLength = 32

// Hash is a 256-bit value, produced by SHA-256 over the deterministic
// serialization of whatever it identifies. The zero Hash denotes "no
// predecessor" for a genesis block's prev_hash.
type Hash [HashLength]byte

// BytesToHash left-pads b with zeroes if it is shorter than HashLength and
// truncates it from the left if longer.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// Big interprets the hash as a big-endian unsigned integer, which is the
// representation the proof-of-work divisibility check operates on.
func (h Hash) Big() *big.Int {
	return new(big.Int).SetBytes(h[:])
}

// Bytes returns a copy of the underlying bytes.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the 0x-prefixed hex encoding of the hash.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

// IsZero reports whether this is the zero hash (the genesis predecessor
// sentinel).
func (h Hash) IsZero() bool { return h == Hash{} }

// PublicKey is an ed25519 public key. It also serves as an account
// identifier in the balance ledger.
type PublicKey [ed25519.PublicKeySize]byte

func (p PublicKey) Bytes() []byte { return p[:] }
func (p PublicKey) Hex() string   { return "0x" + hex.EncodeToString(p[:]) }
func (p PublicKey) String() string { return p.Hex() }

// PublicKeyFromHex decodes a hex-encoded (with or without 0x prefix)
// ed25519 public key, as accepted from the CLI's "submit transaction" menu
// entry.
func PublicKeyFromHex(s string) (PublicKey, error) {
	var pk PublicKey
	b, err := decodeHex(s)
	if err != nil {
		return pk, err
	}
	if len(b) != len(pk) {
		return pk, errBadKeyLength
	}
	copy(pk[:], b)
	return pk, nil
}

// SecretKey is an ed25519 private key (seed + public key, per the Go
// ed25519 convention).
type SecretKey [ed25519.PrivateKeySize]byte

func (s SecretKey) Bytes() []byte { return s[:] }

// Signature is a detached ed25519 signature.
type Signature [ed25519.SignatureSize]byte

func (s Signature) Bytes() []byte  { return s[:] }
func (s Signature) Hex() string    { return "0x" + hex.EncodeToString(s[:]) }
func (s Signature) String() string { return s.Hex() }

func decodeHex(s string) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	return hex.DecodeString(s)
}

var errBadKeyLength = hexLengthError{}

type hexLengthError struct{}

func (hexLengthError) Error() string { return "common: decoded hex has wrong length for a public key" }
