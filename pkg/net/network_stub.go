//go:build !p2p
// +build !p2p

package net


// Config holds the transport's tunable parameters.
type Config struct {
	ListenPort     int
	BootstrapPeers []string
	EnableMDNS     bool
}

// DefaultConfig returns the transport configuration used when this
// build lacks the p2p tag: a stub with no real connectivity, used in
// unit tests and any environment that doesn't need live gossip.
func DefaultConfig() *Config {
	return &Config{ListenPort: 0, BootstrapPeers: []string{}, EnableMDNS: true}
}

// stubTransport is a no-op Transport: nothing is ever delivered or
// sent, which is enough for components that only need a Transport to
// exist, not to actually gossip (e.g. single-node tests).
type stubTransport struct {
	inbox chan InboundMessage
}

// New creates the no-op stub transport for builds without the p2p tag.
func New(cfg *Config) (Transport, error) {
	return &stubTransport{inbox: make(chan InboundMessage)}, nil
}

func (s *stubTransport) Inbox() <-chan InboundMessage { return s.inbox }
func (s *stubTransport) Broadcast(msg Message) error   { return nil }
func (s *stubTransport) PeerCount() int                { return 0 }
func (s *stubTransport) Close() error {
	close(s.inbox)
	return nil
}

func (s *stubTransport) String() string { return "Transport{stub, peers=0}" }
