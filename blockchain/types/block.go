package types

import (
	"github.com/ground-x/gxchain/common"
	"github.com/ground-x/gxchain/crypto"
)

// Block is an ordered batch of transactions sealed by a proof-of-work
// nonce linking it to its predecessor (spec §3, §4.2). Field order matters:
// it is exactly the order Hash serializes, per spec §3's "Block hash is
// SHA-256 over the deterministic serialization of all five fields."
type Block struct {
	Transactions []*Transaction
	Nonce        uint64
	Timestamp    uint64
	MinedBy      common.PublicKey
	PrevHash     common.Hash
}

// Hash returns the SHA-256 digest of the block's deterministic (RLP)
// encoding. Two blocks with identical field values always hash identically,
// which is what both chain linkage (prev_hash) and the proof-of-work target
// check rely on.
func (b *Block) Hash() common.Hash {
	h, err := crypto.RLPHash(b)
	if err != nil {
		// RLP encoding of this struct shape (slices, fixed byte arrays,
		// uint64) cannot fail; a panic here would indicate a Block field
		// was given a type RLP can't represent.
		panic("types: block is not RLP-encodable: " + err.Error())
	}
	return h
}

// Spendings sums the amount of every transaction in this block sent by
// user. The node's inbound-transaction handler uses this as the
// pending-spend ceiling for mempool admission (spec §4.2, §4.5).
func (b *Block) Spendings(user common.PublicKey) uint64 {
	var total uint64
	for _, tx := range b.Transactions {
		if tx.Data.From == user {
			total += tx.Data.Amount
		}
	}
	return total
}

// Clone returns a deep copy of the block, safe to hand to a caller that
// must not observe further mutation of the shared candidate (spec §3
// "Ownership": snapshots are taken by cloning).
func (b *Block) Clone() *Block {
	txs := make([]*Transaction, len(b.Transactions))
	for i, tx := range b.Transactions {
		cp := *tx
		txs[i] = &cp
	}
	return &Block{
		Transactions: txs,
		Nonce:        b.Nonce,
		Timestamp:    b.Timestamp,
		MinedBy:      b.MinedBy,
		PrevHash:     b.PrevHash,
	}
}
