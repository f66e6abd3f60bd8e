package crypto

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/ground-x/gxchain/common"
)

// RLPHash deterministically serializes x with RLP and returns the SHA-256
// digest of the encoding. This is the teacher's rlpHash pattern
// (core/types.rlpHash in go-ethereum/klaytn, hashing a keccak sum of the RLP
// encoding) adapted to the SHA-256 algorithm spec §3 requires for Block and
// Transaction content hashes.
func RLPHash(x interface{}) (common.Hash, error) {
	h := sha256.New()
	if err := rlp.Encode(h, x); err != nil {
		return common.Hash{}, err
	}
	var out common.Hash
	h.Sum(out[:0])
	return out, nil
}
