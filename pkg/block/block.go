// Package block defines the Prism block structures: a Header shared
// by every sub-chain, and the two Content variants (ProposerContent,
// VoterContent) that distinguish a proposer block from a voter block.
package block

import (
	"encoding/binary"
	"fmt"

	"github.com/prism-labs/prism/pkg/crypto"
	"github.com/prism-labs/prism/pkg/utxo"
)

// Header is the fixed-size portion of every block, identical in shape
// across the proposer chain and all voter chains.
type Header struct {
	Nonce      uint32
	Difficulty crypto.H256
	// Timestamp is microseconds since the Unix epoch.
	Timestamp  uint64
	MerkleRoot crypto.H256
	MinerID    int32
}

// Hash canonically encodes the header (nonce, difficulty, timestamp,
// merkle root, miner id, each as fixed-width little-endian fields,
// matching bincode's default encoding of the equivalent Rust struct)
// and SHA-256 hashes it.
func (h Header) Hash() crypto.H256 {
	buf := make([]byte, 0, 4+32+16+32+4)

	var nonceBuf [4]byte
	binary.LittleEndian.PutUint32(nonceBuf[:], h.Nonce)
	buf = append(buf, nonceBuf[:]...)

	buf = append(buf, h.Difficulty[:]...)

	var tsBuf [16]byte
	binary.LittleEndian.PutUint64(tsBuf[:8], h.Timestamp)
	buf = append(buf, tsBuf[:]...)

	buf = append(buf, h.MerkleRoot[:]...)

	var minerBuf [4]byte
	binary.LittleEndian.PutUint32(minerBuf[:], uint32(h.MinerID))
	buf = append(buf, minerBuf[:]...)

	return crypto.Sha256(buf)
}

// ContentKind distinguishes a ProposerContent from a VoterContent.
type ContentKind int

const (
	KindProposer ContentKind = iota
	KindVoter
)

// Content is the tagged union carried by a block: exactly one of
// Proposer or Voter is populated, selected by Kind.
type Content struct {
	Kind     ContentKind
	Proposer *ProposerContent
	Voter    *VoterContent
}

// Hash dispatches to the populated variant's hash.
func (c Content) Hash() crypto.H256 {
	switch c.Kind {
	case KindProposer:
		return c.Proposer.Hash()
	case KindVoter:
		return c.Voter.Hash()
	default:
		panic("block: content has unknown kind")
	}
}

// ChainNum returns 0 for proposer content, or the voter chain number
// (1-indexed) for voter content — the sortition id that content is
// expected to match.
func (c Content) ChainNum() uint32 {
	if c.Kind == KindVoter {
		return c.Voter.ChainNum
	}
	return 0
}

// ProposerContent is the payload of a proposer block: an ordered list
// of transactions and references to unreferenced proposer blocks.
type ProposerContent struct {
	ParentHash   crypto.H256
	Transactions []*utxo.SignedTransaction
	ProposerRefs []crypto.H256
}

type hashableH256 crypto.H256

func (h hashableH256) Hash() crypto.H256 { return crypto.Sha256(h[:]) }

func hashRefs(refs []crypto.H256) crypto.H256 {
	wrapped := make([]hashableH256, len(refs))
	for i, r := range refs {
		wrapped[i] = hashableH256(r)
	}
	return crypto.NewTree(wrapped).Root()
}

// Hash is SHA256(parent_hash || merkle_root(proposer_refs) || merkle_root(transactions)).
func (pc *ProposerContent) Hash() crypto.H256 {
	refsRoot := hashRefs(pc.ProposerRefs)
	txRoot := crypto.NewTree(pc.Transactions).Root()

	buf := make([]byte, 0, 96)
	buf = append(buf, pc.ParentHash[:]...)
	buf = append(buf, refsRoot[:]...)
	buf = append(buf, txRoot[:]...)
	return crypto.Sha256(buf)
}

// VoterContent is the payload of a voter block: the set of proposer
// blocks it votes for, linked to its parent on the same voter chain.
type VoterContent struct {
	Votes      []crypto.H256
	ParentHash crypto.H256
	ChainNum   uint32
}

// Hash is SHA256(chain_num_be(4B) || parent_hash || merkle_root(votes)).
func (vc *VoterContent) Hash() crypto.H256 {
	votesRoot := hashRefs(vc.Votes)

	buf := make([]byte, 0, 68)
	var chainNumBuf [4]byte
	binary.BigEndian.PutUint32(chainNumBuf[:], vc.ChainNum)
	buf = append(buf, chainNumBuf[:]...)
	buf = append(buf, vc.ParentHash[:]...)
	buf = append(buf, votesRoot[:]...)
	return crypto.Sha256(buf)
}

// Block is a header, its content, and the Merkle inclusion proof
// tying the header's merkle_root to the single content leaf selected
// by sortition.
type Block struct {
	Header         Header
	Content        Content
	SortitionProof []crypto.H256
}

// Hash is the header's hash — the block's canonical identifier.
func (b *Block) Hash() crypto.H256 { return b.Header.Hash() }

func (b *Block) String() string {
	return fmt.Sprintf("Block{hash=%s kind=%d chain=%d}", b.Hash(), b.Content.Kind, b.Content.ChainNum())
}

// GenesisDifficulty is the all-0xFF genesis difficulty, the weakest
// (easiest) target, matching original_source's genesis constructors.
var GenesisDifficulty = func() crypto.H256 {
	var d crypto.H256
	for i := range d {
		d[i] = 0xFF
	}
	return d
}()

// GenesisProposer builds the fixed proposer-chain genesis block.
func GenesisProposer() *Block {
	content := &ProposerContent{
		ParentHash:   crypto.ZeroH256,
		Transactions: nil,
		ProposerRefs: nil,
	}
	return &Block{
		Header: Header{
			Nonce:      0,
			Difficulty: GenesisDifficulty,
			Timestamp:  0,
			MerkleRoot: crypto.ZeroH256,
			MinerID:    0,
		},
		Content:        Content{Kind: KindProposer, Proposer: content},
		SortitionProof: nil,
	}
}

// GenesisVoter builds the fixed genesis block for voter chain chainNum.
func GenesisVoter(chainNum uint32) *Block {
	content := &VoterContent{
		Votes:      nil,
		ParentHash: crypto.ZeroH256,
		ChainNum:   chainNum,
	}
	return &Block{
		Header: Header{
			Nonce:      0,
			Difficulty: GenesisDifficulty,
			Timestamp:  0,
			MerkleRoot: crypto.ZeroH256,
			MinerID:    0,
		},
		Content:        Content{Kind: KindVoter, Voter: content},
		SortitionProof: nil,
	}
}
