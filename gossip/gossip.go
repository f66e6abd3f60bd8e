// Package gossip is the boundary between the chain/miner core and the
// peer-to-peer overlay (spec §4.6): subscribe to named topics, publish
// opaque byte payloads, and receive an event stream of inbound messages
// and peer-up/peer-down notifications.
package gossip

// Message is an inbound payload observed on a subscribed topic.
type Message struct {
	Topic   string
	Payload []byte
}

// PeerEvent reports a peer joining or leaving the overlay's explicit peer
// set. LibP2PGossip emits these from mDNS discovery only.
type PeerEvent struct {
	PeerID string
	Joined bool
}

// Gossip is the contract the node core requires from the overlay (spec
// §4.6). Implementations: LibP2PGossip (real overlay, gossipsub + mDNS)
// and LoopbackGossip (in-memory fake for tests).
type Gossip interface {
	// Subscribe joins the named topic; inbound messages on it are
	// delivered through Events.
	Subscribe(topic string) error

	// Publish best-effort broadcasts payload on topic. No ordering or
	// deduplication guarantee beyond what the overlay provides.
	Publish(topic string, payload []byte) error

	// Events yields inbound messages on subscribed topics.
	Events() <-chan Message

	// PeerEvents yields peer-up/peer-down notifications.
	PeerEvents() <-chan PeerEvent

	// Close tears down the overlay connection.
	Close() error
}
