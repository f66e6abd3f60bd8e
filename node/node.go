// Package node is the cooperative event loop that owns the chain and the
// in-progress candidate block, and coordinates the miner, the gossip
// adapter, and local user actions around them (spec §4.5).
package node

import (
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/ground-x/gxchain/blockchain"
	"github.com/ground-x/gxchain/blockchain/types"
	"github.com/ground-x/gxchain/common"
	"github.com/ground-x/gxchain/gossip"
	"github.com/ground-x/gxchain/log"
	"github.com/ground-x/gxchain/params"
)

var logger = log.NewModuleLogger("node")

// Node holds the two guarded shared resources (spec §5: "exactly two ...
// the current chain and the current candidate block") and drives the
// single-threaded event loop that mutates them.
type Node struct {
	pubkey common.PublicKey

	chainMu sync.Mutex
	chain   *blockchain.Chain

	candidateMu sync.Mutex
	candidate   *types.Block

	gsp gossip.Gossip

	minerDone chan *types.Block
	actions   chan UserAction
	quit      chan struct{}
}

// New returns a Node with a fresh empty chain and a generated genesis
// candidate, communicating over gsp.
func New(pubkey common.PublicKey, gsp gossip.Gossip) *Node {
	chain := blockchain.NewChain()
	n := &Node{
		pubkey:    pubkey,
		chain:     chain,
		candidate: chain.GenerateBlock(pubkey),
		gsp:       gsp,
		minerDone: make(chan *types.Block, 1),
		actions:   make(chan UserAction, 16),
		quit:      make(chan struct{}),
	}
	return n
}

// Start subscribes to both gossip topics. Callers must do this before Run.
func (n *Node) Start() error {
	if err := n.gsp.Subscribe(params.BlockchainTopic); err != nil {
		return err
	}
	return n.gsp.Subscribe(params.TransactionTopic)
}

// Stop signals Run to return.
func (n *Node) Stop() { close(n.quit) }

// Actions returns the channel the CLI (or any other local driver) posts
// UserActions on.
func (n *Node) Actions() chan<- UserAction { return n.actions }

// --- work.ChainView -------------------------------------------------

// Balance returns pk's current ledger balance. Exposed so a local driver
// (the CLI) can reject an over-amount transaction before ever constructing
// or submitting it (spec §6: "reject locally if amount > balance").
func (n *Node) Balance(pk common.PublicKey) uint64 {
	n.chainMu.Lock()
	defer n.chainMu.Unlock()
	return n.chain.Balance(pk)
}

// SnapshotChain returns a cloned copy of the current chain, safe to hash
// against without holding any lock (spec §4.4 step 1).
func (n *Node) SnapshotChain() *blockchain.Chain {
	n.chainMu.Lock()
	defer n.chainMu.Unlock()
	return n.chain.Clone()
}

// SnapshotCandidate returns a cloned copy of the current candidate block.
func (n *Node) SnapshotCandidate() *types.Block {
	n.candidateMu.Lock()
	defer n.candidateMu.Unlock()
	if n.candidate == nil {
		return nil
	}
	return n.candidate.Clone()
}

// SubmitSolution applies candidate as the new shared candidate iff it is
// still the block being mined (identity check via PrevHash, spec §4.4
// step 5). It returns whether the solution was accepted; the miner
// discards it locally when this is false. Acceptance pushes the solved
// block onto minerDone for the event loop to pick up (spec §4.5A).
func (n *Node) SubmitSolution(candidate *types.Block) bool {
	n.candidateMu.Lock()
	if n.candidate == nil || n.candidate.PrevHash != candidate.PrevHash {
		n.candidateMu.Unlock()
		return false
	}
	n.candidate = candidate
	n.candidateMu.Unlock()

	select {
	case n.minerDone <- candidate:
	default:
		// a previous solved block is already queued; the event loop will
		// re-derive the current candidate from the chain once it drains.
	}
	return true
}

// --- event loop -------------------------------------------------------

// Run is the single-threaded cooperative scheduler awaiting the first of
// three events per iteration (spec §4.5): miner completion, inbound
// gossip, or a local user action. It returns when Stop is called.
func (n *Node) Run() {
	for {
		select {
		case b := <-n.minerDone:
			n.handleMined(b)
		case msg := <-n.gsp.Events():
			n.handleGossip(msg)
		case a := <-n.actions:
			n.handleAction(a)
		case <-n.quit:
			return
		}
	}
}

// handleMined applies a solved candidate to the chain, broadcasts on
// success, and always regenerates a fresh candidate from the resulting
// tip (spec §4.5 step 1).
func (n *Node) handleMined(b *types.Block) {
	n.chainMu.Lock()
	err := n.chain.AddBlock(b)
	var blocksForBroadcast []*types.Block
	if err == nil {
		blocksForBroadcast = n.chain.Blocks()
	}
	next := n.chain.GenerateBlock(n.pubkey)
	n.chainMu.Unlock()

	if err != nil {
		logger.Error("failed to apply own mined block", "err", err)
	} else {
		logger.Info("adopted own mined block", "weight", n.chain.Weight())
		n.broadcastChain(blocksForBroadcast)
	}

	n.candidateMu.Lock()
	n.candidate = next
	n.candidateMu.Unlock()
}

// handleGossip dispatches an inbound (topic, payload) pair per spec §4.5
// step 2.
func (n *Node) handleGossip(msg gossip.Message) {
	switch msg.Topic {
	case params.BlockchainTopic:
		n.handleInboundChain(msg.Payload)
	case params.TransactionTopic:
		n.handleInboundTransaction(msg.Payload)
	default:
		logger.Warn("dropping message on unknown topic", "topic", msg.Topic)
	}
}

func (n *Node) handleInboundChain(payload []byte) {
	var blocks []*types.Block
	if err := rlp.DecodeBytes(payload, &blocks); err != nil {
		logger.Warn("dropping malformed inbound chain", "err", err)
		return
	}
	candidateChain, err := blockchain.Construct(blocks)
	if err != nil {
		logger.Warn("dropping invalid inbound chain", "err", err)
		return
	}

	n.chainMu.Lock()
	if candidateChain.Weight() <= n.chain.Weight() {
		n.chainMu.Unlock()
		logger.Debug("dropping lighter inbound chain", "weight", candidateChain.Weight(), "ours", n.chain.Weight())
		return
	}
	n.chain = candidateChain
	next := n.chain.GenerateBlock(n.pubkey)
	n.chainMu.Unlock()

	logger.Info("adopted heavier inbound chain", "weight", candidateChain.Weight())

	n.candidateMu.Lock()
	n.candidate = next
	n.candidateMu.Unlock()
}

func (n *Node) handleInboundTransaction(payload []byte) {
	var tx types.Transaction
	if err := rlp.DecodeBytes(payload, &tx); err != nil {
		logger.Warn("dropping malformed inbound transaction", "err", err)
		return
	}
	if !tx.Valid() {
		logger.Warn("dropping transaction with invalid signature")
		return
	}

	// Canonical acquisition order is candidate then chain (spec §5).
	n.candidateMu.Lock()
	defer n.candidateMu.Unlock()

	n.chainMu.Lock()
	alreadyMined := n.chain.Mined(n.candidate)
	balance := n.chain.Balance(tx.Data.From)
	n.chainMu.Unlock()

	if alreadyMined {
		return
	}

	pending := n.candidate.Spendings(tx.Data.From)
	if balance < pending+tx.Data.Amount {
		logger.Warn("dropping transaction exceeding available balance", "from", tx.Data.From.Hex())
		return
	}
	n.candidate.Transactions = append(n.candidate.Transactions, &tx)
}

func (n *Node) broadcastChain(blocks []*types.Block) {
	enc, err := rlp.EncodeToBytes(blocks)
	if err != nil {
		logger.Error("failed to encode chain for broadcast", "err", err)
		return
	}
	if err := n.gsp.Publish(params.BlockchainTopic, enc); err != nil {
		logger.Warn("failed to publish chain", "err", err)
	}
}
