// Package params collects the protocol constants spec §6 fixes: the
// coinbase reward, the difficulty-adjustment target interval, and the two
// well-known gossip topic names.
package params

const (
	// MiningReward is the fixed coinbase credit to a block's miner upon
	// adoption.
	MiningReward uint64 = 100

	// TimeBase is the difficulty-adjustment target interval, in seconds.
	TimeBase uint64 = 30

	// StartingDifficulty is the target an empty chain's first block must
	// satisfy — 0, i.e. auto-accepted.
	StartingDifficulty uint32 = 0
)

// Gossip topic names (spec §6).
const (
	BlockchainTopic  = "blockchain"
	TransactionTopic = "transactions"
)
