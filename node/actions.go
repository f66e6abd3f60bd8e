package node

import (
	"strconv"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/ground-x/gxchain/blockchain/types"
	"github.com/ground-x/gxchain/common"
	"github.com/ground-x/gxchain/log"
	"github.com/ground-x/gxchain/params"
)

var actionLogger = log.NewModuleLogger("node.action")

// UserAction is a request posted to the event loop's action channel by a
// local driver (the CLI console, spec §4.5 step 3 / §6). Exactly one of
// Tx/the ShowXxx semantics applies, selected by Kind. Node holds no key
// material; SubmitTransaction's Tx must already be signed by the caller.
type UserAction struct {
	Kind ActionKind
	Tx   *types.Transaction

	// Result, if non-nil, receives a human-readable rendering of the
	// action's effect (the CLI reads this to print to the console).
	Result chan string
}

// ActionKind enumerates the menu actions the event loop serves; the menu's
// exit option is handled by the console itself and has no ActionKind.
type ActionKind int

const (
	ShowCandidate ActionKind = iota
	ShowBalance
	ShowChain
	SubmitTransaction
)

// handleAction executes a UserAction against the node's state (spec §4.5
// step 3 / §6).
func (n *Node) handleAction(a UserAction) {
	switch a.Kind {
	case ShowCandidate:
		n.candidateMu.Lock()
		b := n.candidate.Clone()
		n.candidateMu.Unlock()
		reply(a.Result, renderBlock(b))

	case ShowBalance:
		n.chainMu.Lock()
		bal := n.chain.Balance(n.pubkey)
		n.chainMu.Unlock()
		reply(a.Result, renderBalance(n.pubkey, bal))

	case ShowChain:
		n.chainMu.Lock()
		blocks := n.chain.Blocks()
		n.chainMu.Unlock()
		reply(a.Result, renderChain(blocks))

	case SubmitTransaction:
		n.submitTransaction(a)
	}
}

// submitTransaction publishes an already-signed transaction on the
// transactions topic and also feeds it to the local inbound-transaction
// handler, so the sender's own candidate reflects it immediately (spec
// §4.5 step 3: "also delivered to the local inbound-transaction handler to
// mirror self-sent into the mempool").
func (n *Node) submitTransaction(a UserAction) {
	if a.Tx == nil {
		reply(a.Result, "no transaction given")
		return
	}
	enc, err := rlp.EncodeToBytes(a.Tx)
	if err != nil {
		actionLogger.Error("failed to encode outgoing transaction", "err", err)
		reply(a.Result, "internal error encoding transaction")
		return
	}
	if err := n.gsp.Publish(params.TransactionTopic, enc); err != nil {
		actionLogger.Warn("failed to publish transaction", "err", err)
	}
	n.handleInboundTransaction(enc)
	reply(a.Result, "transaction submitted")
}

func reply(ch chan string, msg string) {
	if ch == nil {
		return
	}
	select {
	case ch <- msg:
	default:
	}
}

func renderBlock(b *types.Block) string {
	return "candidate: nonce=" + strconv.FormatUint(b.Nonce, 10) +
		" prev_hash=" + b.PrevHash.Hex() +
		" txs=" + strconv.Itoa(len(b.Transactions))
}

func renderBalance(pk common.PublicKey, bal uint64) string {
	return pk.Hex() + ": " + strconv.FormatUint(bal, 10)
}

func renderChain(blocks []*types.Block) string {
	out := "chain (" + strconv.Itoa(len(blocks)) + " blocks):\n"
	for i, b := range blocks {
		out += "  #" + strconv.Itoa(i) + " " + b.Hash().Hex() + " mined_by=" + b.MinedBy.Hex() + "\n"
	}
	return out
}
