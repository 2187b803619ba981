package net

// PeerHandle lets a worker reply to the specific peer a message
// arrived from.
type PeerHandle interface {
	// Write sends msg back to this peer.
	Write(msg Message) error
	// ID returns a stable, loggable identifier for this peer.
	ID() string
}

// Transport is the network layer's contract: deliver inbound messages
// to Inbox, and broadcast outbound ones. Replies to a single sender go
// through the PeerHandle carried by each InboundMessage. The libp2p-backed
// implementation (build tag p2p) and the no-op stub both satisfy it.
type Transport interface {
	// Inbox returns the channel workers read (message, sender) pairs
	// from.
	Inbox() <-chan InboundMessage
	// Broadcast gossips msg to every connected peer.
	Broadcast(msg Message) error
	// PeerCount reports the number of currently connected peers.
	PeerCount() int
	// Close releases the transport's resources.
	Close() error
}

// InboundMessage pairs a received message with a handle back to its sender.
type InboundMessage struct {
	Message Message
	Peer    PeerHandle
}
