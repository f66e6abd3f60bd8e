package gossip

import (
	"context"
	"strconv"
	"sync"

	libp2p "github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/ground-x/gxchain/common"
	"github.com/ground-x/gxchain/crypto"
	"github.com/ground-x/gxchain/log"
)

// seenCacheSize bounds how many recent message digests each subscription's
// dedup cache retains (spec §4.6: "no deduplication guarantee beyond what
// the overlay provides" means the adapter must supply its own).
const seenCacheSize = 4096

var logger = log.NewModuleLogger("gossip")

// LibP2PGossip is the real overlay: a libp2p host running gossipsub, with
// peers discovered on the LAN via mDNS (spec §1's "local-area overlay",
// supplemented per original_source/p2p.rs's Mdns behaviour).
type LibP2PGossip struct {
	host   host.Host
	ps     *pubsub.PubSub
	mdns   mdns.Service
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
	subs   map[string]*pubsub.Subscription
	seen   map[string]*common.SeenCache

	events     chan Message
	peerEvents chan PeerEvent
}

// NewLibP2PGossip starts a libp2p host listening on listenPort (0 picks a
// random free port), joins the gossipsub overlay, and begins mDNS
// discovery tagged with rendezvous.
func NewLibP2PGossip(ctx context.Context, listenPort int, rendezvous string) (*LibP2PGossip, error) {
	ctx, cancel := context.WithCancel(ctx)

	addr, err := ma.NewMultiaddr(listenAddr(listenPort))
	if err != nil {
		cancel()
		return nil, err
	}

	h, err := libp2p.New(libp2p.ListenAddrs(addr))
	if err != nil {
		cancel()
		return nil, err
	}

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		cancel()
		return nil, err
	}

	g := &LibP2PGossip{
		host:       h,
		ps:         ps,
		ctx:        ctx,
		cancel:     cancel,
		topics:     make(map[string]*pubsub.Topic),
		subs:       make(map[string]*pubsub.Subscription),
		seen:       make(map[string]*common.SeenCache),
		events:     make(chan Message, 64),
		peerEvents: make(chan PeerEvent, 64),
	}

	notifee := &mdnsNotifee{host: h, events: g.peerEvents}
	g.mdns = mdns.NewMdnsService(h, rendezvous, notifee)
	if err := g.mdns.Start(); err != nil {
		cancel()
		return nil, err
	}

	logger.Info("libp2p host started", "id", h.ID().String(), "rendezvous", rendezvous)
	return g, nil
}

func listenAddr(port int) string {
	if port <= 0 {
		return "/ip4/0.0.0.0/tcp/0"
	}
	return "/ip4/0.0.0.0/tcp/" + strconv.Itoa(port)
}

// Subscribe joins topic and starts a goroutine forwarding inbound messages
// on it to Events, skipping this host's own messages and payloads already
// seen on the topic.
func (g *LibP2PGossip) Subscribe(topic string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.subs[topic]; ok {
		return nil
	}
	t, err := g.ps.Join(topic)
	if err != nil {
		return err
	}
	sub, err := t.Subscribe()
	if err != nil {
		return err
	}
	g.topics[topic] = t
	g.subs[topic] = sub
	g.seen[topic] = common.NewSeenCache(seenCacheSize)

	go g.readLoop(topic, sub)
	return nil
}

func (g *LibP2PGossip) readLoop(topic string, sub *pubsub.Subscription) {
	selfID := g.host.ID()

	g.mu.Lock()
	seen := g.seen[topic]
	g.mu.Unlock()

	for {
		msg, err := sub.Next(g.ctx)
		if err != nil {
			return
		}
		if msg.ReceivedFrom == selfID {
			continue
		}
		if seen.MarkSeen(crypto.Sum256(msg.Data)) {
			continue
		}
		select {
		case g.events <- Message{Topic: topic, Payload: msg.Data}:
		case <-g.ctx.Done():
			return
		}
	}
}

// Publish broadcasts payload on topic, joining it first if necessary.
func (g *LibP2PGossip) Publish(topic string, payload []byte) error {
	g.mu.Lock()
	t, ok := g.topics[topic]
	g.mu.Unlock()
	if !ok {
		if err := g.Subscribe(topic); err != nil {
			return err
		}
		g.mu.Lock()
		t = g.topics[topic]
		g.mu.Unlock()
	}
	return t.Publish(g.ctx, payload)
}

func (g *LibP2PGossip) Events() <-chan Message       { return g.events }
func (g *LibP2PGossip) PeerEvents() <-chan PeerEvent { return g.peerEvents }

// Close stops mDNS discovery and tears down the libp2p host.
func (g *LibP2PGossip) Close() error {
	g.cancel()
	_ = g.mdns.Close()
	return g.host.Close()
}

// mdnsNotifee turns mdns.Notifee peer-found callbacks into connect attempts
// and Joined PeerEvent notifications. Peer expiry is not handled, so no
// Joined=false event is ever emitted, and found peers are not added to any
// pubsub explicit-peer set.
type mdnsNotifee struct {
	host   host.Host
	events chan PeerEvent
}

func (n *mdnsNotifee) HandlePeerFound(pi peer.AddrInfo) {
	if err := n.host.Connect(context.Background(), pi); err != nil {
		logger.Debug("mdns peer connect failed", "peer", pi.ID.String(), "err", err)
		return
	}
	select {
	case n.events <- PeerEvent{PeerID: pi.ID.String(), Joined: true}:
	default:
	}
}
