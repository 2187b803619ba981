//go:build p2p
// +build p2p

package net

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/libp2p/go-libp2p"
	p2pcrypto "github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	corepeer "github.com/libp2p/go-libp2p/core/peer"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/multiformats/go-multiaddr"
)

const gossipTopic = "prism/gossip/1"

// Config holds the transport's tunable parameters.
type Config struct {
	ListenPort     int
	BootstrapPeers []string
	EnableMDNS     bool
}

// DefaultConfig returns the production transport configuration: a
// random listen port, EnableMDNS set, no bootstrap peers
// preconfigured. This transport does not read EnableMDNS and starts no
// discovery service; it connects only to BootstrapPeers.
func DefaultConfig() *Config {
	return &Config{ListenPort: 0, BootstrapPeers: []string{}, EnableMDNS: true}
}

// p2pTransport is the libp2p-backed Transport: a single pubsub topic
// carries every gossip message, encoded with encoding/gob so peer
// handles round-trip through Go's native interfaces without a second
// wire format alongside the canonical hash encodings used elsewhere.
type p2pTransport struct {
	mu     sync.RWMutex
	host   host.Host
	topic  *pubsub.Topic
	sub    *pubsub.Subscription
	ctx    context.Context
	cancel context.CancelFunc

	inbox chan InboundMessage
}

// New creates a libp2p host, joins the gossip topic, and begins
// relaying subscription messages into the Transport's Inbox.
func New(cfg *Config) (Transport, error) {
	ctx, cancel := context.WithCancel(context.Background())

	priv, _, err := p2pcrypto.GenerateKeyPairWithReader(p2pcrypto.Ed25519, 2048, rand.Reader)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("net: generate host key: %w", err)
	}

	h, err := libp2p.New(
		libp2p.Identity(priv),
		libp2p.ListenAddrStrings(fmt.Sprintf("/ip4/0.0.0.0/tcp/%d", cfg.ListenPort)),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("net: create host: %w", err)
	}

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("net: create gossipsub: %w", err)
	}

	topic, err := ps.Join(gossipTopic)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("net: join topic: %w", err)
	}
	sub, err := topic.Subscribe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("net: subscribe topic: %w", err)
	}

	for _, addr := range cfg.BootstrapPeers {
		ma, err := multiaddr.NewMultiaddr(addr)
		if err != nil {
			continue
		}
		info, err := corepeer.AddrInfoFromP2pAddr(ma)
		if err != nil {
			continue
		}
		dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
		_ = h.Connect(dialCtx, *info)
		dialCancel()
	}

	t := &p2pTransport{
		host:   h,
		topic:  topic,
		sub:    sub,
		ctx:    ctx,
		cancel: cancel,
		inbox:  make(chan InboundMessage, 256),
	}
	go t.readLoop()
	return t, nil
}

func (t *p2pTransport) readLoop() {
	for {
		raw, err := t.sub.Next(t.ctx)
		if err != nil {
			close(t.inbox)
			return
		}
		if raw.ReceivedFrom == t.host.ID() {
			continue
		}
		msg, err := decodeMessage(raw.Data)
		if err != nil {
			continue
		}
		t.inbox <- InboundMessage{Message: msg, Peer: &topicPeer{topic: t.topic, id: raw.ReceivedFrom}}
	}
}

func (t *p2pTransport) Inbox() <-chan InboundMessage { return t.inbox }

func (t *p2pTransport) Broadcast(msg Message) error {
	data, err := encodeMessage(msg)
	if err != nil {
		return fmt.Errorf("net: encode message: %w", err)
	}
	return t.topic.Publish(t.ctx, data)
}

func (t *p2pTransport) PeerCount() int {
	return len(t.topic.ListPeers())
}

func (t *p2pTransport) Close() error {
	t.cancel()
	return t.host.Close()
}

// topicPeer replies by publishing to the same shared topic; in a
// single-topic gossip design there is no private unicast channel, so
// a "reply" is simply another broadcast the sender can filter for.
type topicPeer struct {
	topic *pubsub.Topic
	id    corepeer.ID
}

func (p *topicPeer) Write(msg Message) error {
	data, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	return p.topic.Publish(context.Background(), data)
}

func (p *topicPeer) ID() string { return p.id.String() }
