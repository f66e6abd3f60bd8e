// Package work runs the background proof-of-work search: one or more
// miner goroutines repeatedly snapshot the current candidate block and
// chain, hunt for a satisfying nonce over a bounded batch of trials, and
// submit any solution back through the ChainView (spec §4.4).
package work

import (
	"math/rand"
	"time"

	"github.com/rcrowley/go-metrics"

	"github.com/ground-x/gxchain/blockchain"
	"github.com/ground-x/gxchain/blockchain/types"
	"github.com/ground-x/gxchain/common"
	"github.com/ground-x/gxchain/log"
)

var logger = log.NewModuleLogger("work")

var (
	attemptsCounter = metrics.NewRegisteredCounter("miner/attempts", nil)
	solvedCounter   = metrics.NewRegisteredCounter("miner/solved", nil)
	hashrateGauge   = metrics.NewRegisteredGauge("miner/hashrate", nil)
)

// trialsPerRound bounds how many nonces a single round searches before
// re-snapshotting, per spec §4.4 step 4 ("order of 10^5-10^6").
const trialsPerRound = 200000

// idleBackoff is how long a miner sleeps when the current candidate
// already satisfies the target, per spec §4.4 step 3.
const idleBackoff = 100 * time.Millisecond

// ChainView is the narrow surface the miner needs from the node: read
// snapshots of the chain and candidate, and a way to submit a solved
// candidate back for adoption (spec §4.4A). node.Node implements this.
type ChainView interface {
	SnapshotChain() *blockchain.Chain
	SnapshotCandidate() *types.Block
	SubmitSolution(candidate *types.Block) bool
}

// Miner repeatedly searches for a nonce that satisfies the current
// candidate's target difficulty (spec §4.4).
type Miner struct {
	view   ChainView
	pubkey common.PublicKey
	rnd    *rand.Rand

	quit chan struct{}
}

// NewMiner returns a Miner that credits any block it solves to pubkey.
func NewMiner(view ChainView, pubkey common.PublicKey) *Miner {
	return &Miner{
		view:   view,
		pubkey: pubkey,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		quit:   make(chan struct{}),
	}
}

// Run executes the miner's loop until Stop is called. It is meant to be
// started with `go m.Run()`.
func (m *Miner) Run() {
	for {
		select {
		case <-m.quit:
			return
		default:
		}
		m.round()
	}
}

// Stop signals Run to return. A round in progress checks for it before
// every trial and ends early.
func (m *Miner) Stop() { close(m.quit) }

// round performs one iteration of the six-step loop in spec §4.4.
func (m *Miner) round() {
	chain := m.view.SnapshotChain()
	candidate := m.view.SnapshotCandidate()
	if candidate == nil {
		time.Sleep(idleBackoff)
		return
	}

	if chain.Mined(candidate) {
		time.Sleep(idleBackoff)
		return
	}

	work := candidate.Clone()
	work.Nonce = m.rnd.Uint64()
	work.Timestamp = uint64(time.Now().Unix())

	start := time.Now()
	for i := 0; i < trialsPerRound; i++ {
		select {
		case <-m.quit:
			return
		default:
		}
		attemptsCounter.Inc(1)
		if chain.Mined(work) {
			solvedCounter.Inc(1)
			if !m.view.SubmitSolution(work) {
				logger.Debug("discarding stale solution", "prev_hash", work.PrevHash.Hex())
			}
			break
		}
		work.Nonce++
	}
	elapsed := time.Since(start)
	if elapsed > 0 {
		hashrateGauge.Update(int64(float64(trialsPerRound) / elapsed.Seconds()))
	}
}
