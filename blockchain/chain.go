// Package blockchain owns the consensus rules: block validation, balance
// accounting, difficulty adjustment, and weight-based fork choice (spec
// §4.3). It is the chain state machine — component C4.
package blockchain

import (
	"math/big"
	"time"

	"github.com/ground-x/gxchain/blockchain/types"
	"github.com/ground-x/gxchain/common"
	"github.com/ground-x/gxchain/log"
	"github.com/ground-x/gxchain/params"
)

var logger = log.NewModuleLogger("blockchain")

// Chain is the ordered, validated sequence of blocks held by a node,
// together with the replicated account ledger, the cumulative
// fork-choice weight, and the difficulty the next block must satisfy
// (spec §3). Chain carries no internal locking of its own — exactly one
// mutual-exclusion guard around the whole *Chain is held by the node event
// loop (spec §5); callers clone before handing a Chain across a boundary.
type Chain struct {
	blocks   []*types.Block
	balances map[common.PublicKey]uint64
	curDif   uint32
	weight   uint32
}

// NewChain returns an empty chain: no blocks, no balances, starting
// difficulty per spec §6.
func NewChain() *Chain {
	return &Chain{
		balances: make(map[common.PublicKey]uint64),
		curDif:   params.StartingDifficulty,
	}
}

// Blocks returns a snapshot slice of the chain's blocks. The slice header
// is a copy; the *Block pointers are shared but adopted blocks are never
// mutated after AddBlock returns, so sharing them is safe.
func (c *Chain) Blocks() []*types.Block {
	out := make([]*types.Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// Weight is the cumulative fork-choice weight: the sum of the target
// difficulty of every adopted block.
func (c *Chain) Weight() uint32 { return c.weight }

// CurrentDifficulty is the difficulty stored after the most recently
// adopted block (0 on an empty chain).
func (c *Chain) CurrentDifficulty() uint32 { return c.curDif }

// Balance returns the ledger balance of the given account.
func (c *Chain) Balance(pk common.PublicKey) uint64 { return c.balances[pk] }

// Tip returns the most recently adopted block, or nil on an empty chain.
func (c *Chain) Tip() *types.Block {
	if len(c.blocks) == 0 {
		return nil
	}
	return c.blocks[len(c.blocks)-1]
}

// Clone returns a deep copy of the chain, safe for a caller that must not
// observe further mutation (spec §3 "Ownership").
func (c *Chain) Clone() *Chain {
	blocks := make([]*types.Block, len(c.blocks))
	for i, b := range c.blocks {
		blocks[i] = b.Clone()
	}
	balances := make(map[common.PublicKey]uint64, len(c.balances))
	for k, v := range c.balances {
		balances[k] = v
	}
	return &Chain{blocks: blocks, balances: balances, curDif: c.curDif, weight: c.weight}
}

// GenerateBlock returns a fresh candidate extending the current tip: an
// empty transaction list, nonce 0, the current time, and prev_hash set to
// the tip's hash (or zero on an empty chain), credited to minedBy (spec
// §4.3).
func (c *Chain) GenerateBlock(minedBy common.PublicKey) *types.Block {
	var prevHash common.Hash
	if tip := c.Tip(); tip != nil {
		prevHash = tip.Hash()
	}
	return &types.Block{
		Transactions: nil,
		Nonce:        0,
		Timestamp:    uint64(time.Now().Unix()),
		MinedBy:      minedBy,
		PrevHash:     prevHash,
	}
}

// VerifyTransaction is a cheap pre-admission check: it only confirms the
// sender's ledger balance covers the amount. It does not check the
// signature — callers (mempool admission) must check tx.Valid()
// independently, per spec §4.3.
func (c *Chain) VerifyTransaction(tx *types.Transaction) bool {
	return c.balances[tx.Data.From] >= tx.Data.Amount
}

// mined reports whether b's hash satisfies the target difficulty d: the
// hash, read as a big-endian integer, divides evenly by 2<<d (spec §4.3,
// §4.4's "single source of truth" predicate).
func mined(b *types.Block, d uint32) bool {
	h := b.Hash().Big()
	mod := new(big.Int).Lsh(big.NewInt(2), uint(d))
	rem := new(big.Int).Mod(h, mod)
	return rem.Sign() == 0
}

// Mined reports whether b satisfies the difficulty this chain would
// currently require of it. Exported for the miner and the node event loop,
// which both need to detect "has this candidate been solved".
func (c *Chain) Mined(b *types.Block) bool {
	return mined(b, c.Difficulty(b))
}

// AddBlock validates b against the chain's current tip and, if it passes,
// appends it, crediting the coinbase reward and replaying its
// transactions against the ledger (spec §4.3 steps 1–8).
//
// Validation and ledger mutation are split: every transaction is checked
// and debited against a scratch copy of the balance map first; only once
// every transaction (and the coinbase credit) has succeeded does the
// scratch map replace the live one, along with the new weight/difficulty
// and the appended block, in one atomic swap. A failed validation leaves
// the chain completely unchanged — this is the fix for the partial-mutation
// bug spec §9 flags in the observed source.
func (c *Chain) AddBlock(b *types.Block) error {
	tip := c.Tip()
	if tip != nil {
		if b.PrevHash != tip.Hash() {
			return ErrPrevHashMismatch
		}
		if b.Timestamp < tip.Timestamp {
			return ErrInvalidTimestamp
		}
	}
	now := uint64(time.Now().Unix())
	if b.Timestamp > now {
		return ErrInvalidTimestamp
	}

	d := c.Difficulty(b)
	if !mined(b, d) {
		return ErrBlockNotMinedCorrectly
	}

	scratch := make(map[common.PublicKey]uint64, len(c.balances)+len(b.Transactions)+1)
	for k, v := range c.balances {
		scratch[k] = v
	}

	for _, tx := range b.Transactions {
		if !tx.Valid() {
			return ErrInvalidTransactionSignature
		}
		if scratch[tx.Data.From] < tx.Data.Amount {
			return ErrExcessiveTransactionAmount
		}
		scratch[tx.Data.From] -= tx.Data.Amount
	}
	for _, tx := range b.Transactions {
		scratch[tx.Data.To] += tx.Data.Amount
	}
	scratch[b.MinedBy] += params.MiningReward

	c.balances = scratch
	c.weight += d
	c.curDif = d
	c.blocks = append(c.blocks, b)
	return nil
}

// Construct replays AddBlock over blocks starting from an empty chain,
// returning the resulting Chain. It is used to validate a candidate chain
// received over gossip (spec §4.3) before comparing its weight against the
// local chain's.
func Construct(blocks []*types.Block) (*Chain, error) {
	c := NewChain()
	for i, b := range blocks {
		if err := c.AddBlock(b); err != nil {
			logger.Warn("rejecting candidate chain", "at_block", i, "err", err)
			return nil, err
		}
	}
	return c, nil
}
