package blockchain

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"

	"github.com/ground-x/gxchain/blockchain/types"
	"github.com/ground-x/gxchain/common"
	"github.com/ground-x/gxchain/crypto"
	"github.com/ground-x/gxchain/params"
)

// dumpChain renders c's balance ledger for a test failure message: easier
// to read than testify's default struct diff when a balance mismatch spans
// several accounts.
func dumpChain(c *Chain) string {
	return spew.Sdump(c.balances)
}

// mine brute-forces a nonce satisfying c's current target for b, mutating
// b.Nonce in place and returning the difficulty it was mined against.
func mine(t *testing.T, c *Chain, b *types.Block) uint32 {
	t.Helper()
	d := c.Difficulty(b)
	for i := 0; i < 10_000_000; i++ {
		if mined(b, d) {
			return d
		}
		b.Nonce++
	}
	t.Fatal("failed to mine block within bound")
	return 0
}

func TestGenesisMining(t *testing.T) {
	c := NewChain()
	minerPub, _, err := crypto.GenerateKeyPair()
	assert.NoError(t, err)

	b := c.GenerateBlock(minerPub)
	mine(t, c, b)

	assert.NoError(t, c.AddBlock(b))
	assert.Len(t, c.Blocks(), 1)
	assert.Equal(t, uint32(0), c.Weight())
	assert.Equal(t, params.MiningReward, c.Balance(minerPub))
	assert.True(t, b.PrevHash.IsZero())
}

func TestValidTransfer(t *testing.T) {
	c := NewChain()
	alicePub, aliceSec, err := crypto.GenerateKeyPair()
	assert.NoError(t, err)
	bobPub, _, err := crypto.GenerateKeyPair()
	assert.NoError(t, err)

	genesis := c.GenerateBlock(alicePub)
	mine(t, c, genesis)
	assert.NoError(t, c.AddBlock(genesis))
	assert.Equal(t, params.MiningReward, c.Balance(alicePub))

	tx, err := types.NewTransaction(bobPub, 30, alicePub, aliceSec)
	assert.NoError(t, err)

	next := c.GenerateBlock(alicePub)
	next.Transactions = []*types.Transaction{tx}
	mine(t, c, next)

	assert.NoError(t, c.AddBlock(next))
	assert.Equal(t, params.MiningReward-30+params.MiningReward, c.Balance(alicePub), dumpChain(c))
	assert.Equal(t, uint64(30), c.Balance(bobPub), dumpChain(c))
}

func TestOverspendRejected(t *testing.T) {
	c := NewChain()
	alicePub, _, err := crypto.GenerateKeyPair()
	assert.NoError(t, err)
	bobPub, bobSec, err := crypto.GenerateKeyPair()
	assert.NoError(t, err)
	carolPub, _, err := crypto.GenerateKeyPair()
	assert.NoError(t, err)

	genesis := c.GenerateBlock(alicePub)
	mine(t, c, genesis)
	assert.NoError(t, c.AddBlock(genesis))

	// Bob has no balance recorded at all yet — any spend overspends.
	tx, err := types.NewTransaction(carolPub, 50, bobPub, bobSec)
	assert.NoError(t, err)

	before := c.Clone()
	next := c.GenerateBlock(alicePub)
	next.Transactions = []*types.Transaction{tx}
	mine(t, c, next)

	err = c.AddBlock(next)
	assert.ErrorIs(t, err, ErrExcessiveTransactionAmount)
	assert.Equal(t, before.Weight(), c.Weight())
	assert.Len(t, c.Blocks(), len(before.Blocks()))
}

func TestBadSignatureRejected(t *testing.T) {
	c := NewChain()
	alicePub, _, err := crypto.GenerateKeyPair()
	assert.NoError(t, err)
	bobPub, _, err := crypto.GenerateKeyPair()
	assert.NoError(t, err)
	_, otherSec, err := crypto.GenerateKeyPair()
	assert.NoError(t, err)

	genesis := c.GenerateBlock(alicePub)
	mine(t, c, genesis)
	assert.NoError(t, c.AddBlock(genesis))

	// Signed under a key other than the claimed sender (Alice).
	tx, err := types.NewTransaction(bobPub, 10, alicePub, otherSec)
	assert.NoError(t, err)

	next := c.GenerateBlock(alicePub)
	next.Transactions = []*types.Transaction{tx}
	mine(t, c, next)

	err = c.AddBlock(next)
	assert.ErrorIs(t, err, ErrInvalidTransactionSignature)
}

func TestForkChoicePrefersHeavierChain(t *testing.T) {
	minerPub, _, err := crypto.GenerateKeyPair()
	assert.NoError(t, err)

	buildChain := func(n int) *Chain {
		c := NewChain()
		for i := 0; i < n; i++ {
			b := c.GenerateBlock(minerPub)
			mine(t, c, b)
			assert.NoError(t, c.AddBlock(b))
		}
		return c
	}

	a := buildChain(3)
	b := buildChain(4)

	assert.Greater(t, b.Weight(), a.Weight())

	reconstructedB, err := Construct(b.Blocks())
	assert.NoError(t, err)
	assert.Equal(t, b.Weight(), reconstructedB.Weight())
}

func TestAddBlockRejectsBadPrevHash(t *testing.T) {
	c := NewChain()
	minerPub, _, err := crypto.GenerateKeyPair()
	assert.NoError(t, err)

	genesis := c.GenerateBlock(minerPub)
	mine(t, c, genesis)
	assert.NoError(t, c.AddBlock(genesis))

	bogus := c.GenerateBlock(minerPub)
	bogus.PrevHash = common.Hash{0xff}
	mine(t, c, bogus)

	err = c.AddBlock(bogus)
	assert.ErrorIs(t, err, ErrPrevHashMismatch)
}
