// Package net implements the gossip wire protocol and worker pool
// that apply received messages to the local chain, mempool, and peer
// set, plus the libp2p-backed transport (and its no-op stub) that
// carries them between nodes.
package net

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"

	"github.com/prism-labs/prism/pkg/block"
	"github.com/prism-labs/prism/pkg/crypto"
	"github.com/prism-labs/prism/pkg/utxo"
)

// Kind tags a Message's active variant.
type Kind byte

const (
	KindPing Kind = iota
	KindPong
	KindNewBlockHashes
	KindGetBlocks
	KindBlocks
	KindNewTransactionHashes
	KindGetTransactions
	KindTransactions
)

// Message is the tagged union of every gossip wire message, mirroring
// the reference implementation's Message enum one variant at a time.
type Message struct {
	Kind Kind

	PingNonce uint32
	PongNonce string

	BlockHashes []crypto.H256
	Blocks      []*block.Block

	TxHashes     []crypto.H256
	Transactions []*utxo.SignedTransaction
}

// Ping builds a Ping message carrying nonce.
func Ping(nonce uint32) Message { return Message{Kind: KindPing, PingNonce: nonce} }

// Pong builds a Pong reply echoing nonce as a string, matching the
// reference peer's nonce.to_string() reply.
func Pong(nonce string) Message { return Message{Kind: KindPong, PongNonce: nonce} }

// NewBlockHashes announces newly known block hashes to a peer.
func NewBlockHashes(hashes []crypto.H256) Message {
	return Message{Kind: KindNewBlockHashes, BlockHashes: hashes}
}

// GetBlocks requests full blocks for the given hashes.
func GetBlocks(hashes []crypto.H256) Message {
	return Message{Kind: KindGetBlocks, BlockHashes: hashes}
}

// Blocks carries full blocks in response to GetBlocks.
func Blocks(blocks []*block.Block) Message { return Message{Kind: KindBlocks, Blocks: blocks} }

// NewTransactionHashes announces newly known transaction hashes.
func NewTransactionHashes(hashes []crypto.H256) Message {
	return Message{Kind: KindNewTransactionHashes, TxHashes: hashes}
}

// GetTransactions requests full transactions for the given hashes.
func GetTransactions(hashes []crypto.H256) Message {
	return Message{Kind: KindGetTransactions, TxHashes: hashes}
}

// Transactions carries full signed transactions in response to GetTransactions.
func Transactions(txs []*utxo.SignedTransaction) Message {
	return Message{Kind: KindTransactions, Transactions: txs}
}

// encodeMessage and decodeMessage give Message a wire encoding for
// transport over the gossip topic. gob (rather than the manual
// fixed-width encoding used for hash-critical paths elsewhere) is
// sufficient here since message framing never feeds a hash or
// signature — only block and transaction contents, whose own
// canonical Hash() methods are computed independently of how they
// were transmitted.
func encodeMessage(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeMessage(data []byte) (Message, error) {
	var msg Message
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&msg)
	return msg, err
}

// encodeH256Slice encodes a hash list as an 8-byte little-endian
// length prefix followed by each 32-byte hash, the same fixed-width
// style as the module's canonical hashing encodings. No message path
// calls it; Message values travel gob-encoded.
func encodeH256Slice(hashes []crypto.H256) []byte {
	buf := make([]byte, 8, 8+len(hashes)*32)
	binary.LittleEndian.PutUint64(buf, uint64(len(hashes)))
	for _, h := range hashes {
		buf = append(buf, h[:]...)
	}
	return buf
}
