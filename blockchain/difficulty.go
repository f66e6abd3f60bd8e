package blockchain

import (
	"github.com/ground-x/gxchain/blockchain/types"
	"github.com/ground-x/gxchain/params"
)

// Offset computes the difficulty-adjustment delta for a gap of deltaT
// seconds since the predecessor block, per spec §4.3: starting from
// answer=1 and slack=TIME_BASE/2 with a fixed step=slack/2, answer is
// decremented (saturating at -256) for every step-sized increment of slack
// needed to reach deltaT. This yields a smooth, monotonically
// non-increasing adjustment: faster-than-target intervals keep answer at
// +1, slower ones ratchet it down.
func Offset(deltaT uint64) int32 {
	var answer int32 = 1
	slack := params.TimeBase / 2
	step := slack / 2

	for slack < deltaT && answer > -256 {
		slack += step
		answer--
	}
	return answer
}

// Difficulty returns the proof-of-work target difficulty that block must
// satisfy, given the current chain tip and stored difficulty (spec §4.3).
// An empty chain always requires difficulty 0 (its first block is
// auto-accepted).
func (c *Chain) Difficulty(block *types.Block) uint32 {
	if len(c.blocks) == 0 {
		return 0
	}
	tip := c.blocks[len(c.blocks)-1]
	var deltaT uint64
	if block.Timestamp > tip.Timestamp {
		deltaT = block.Timestamp - tip.Timestamp
	}
	adjusted := int64(c.curDif) + int64(Offset(deltaT))
	if adjusted < 0 {
		return 0
	}
	return uint32(adjusted)
}
