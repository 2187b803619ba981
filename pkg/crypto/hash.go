// Package crypto provides the fixed-size hash types, Merkle tree, and
// hashing helpers shared by every other package in this module.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// H256 is a 256-bit hash, used for block hashes, content hashes, and
// transaction hashes throughout the node.
type H256 [32]byte

// H160 is a 160-bit address, derived from the SHA-256 hash of an
// Ed25519 public key.
type H160 [20]byte

// ZeroH256 is the all-zero hash used by genesis blocks.
var ZeroH256 = H256{}

// ZeroH160 is the all-zero address.
var ZeroH160 = H160{}

func (h H256) Bytes() []byte { return h[:] }
func (h H160) Bytes() []byte { return h[:] }

func (h H256) String() string { return hex.EncodeToString(h[:]) }
func (h H160) String() string { return hex.EncodeToString(h[:]) }

// Less orders two hashes as big-endian unsigned integers, the same
// comparison used when checking a block hash against a difficulty
// target.
func (h H256) Less(other H256) bool {
	for i := 0; i < len(h); i++ {
		if h[i] != other[i] {
			return h[i] < other[i]
		}
	}
	return false
}

// H256FromHex parses a hex-encoded 32-byte hash.
func H256FromHex(s string) (H256, error) {
	var out H256
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("decode hash hex: %w", err)
	}
	if len(b) != 32 {
		return out, fmt.Errorf("hash must be 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

// Sha256 hashes arbitrary bytes into an H256.
func Sha256(data []byte) H256 {
	return H256(sha256.Sum256(data))
}

// Hashable is implemented by anything that has a canonical hash.
type Hashable interface {
	Hash() H256
}
