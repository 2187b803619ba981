// Package sortition implements the unified proof-of-work cryptographic
// sortition that assigns a mined block to the proposer chain or to one
// of the voter chains, all under a single difficulty target.
package sortition

import (
	"math/big"

	"github.com/prism-labs/prism/pkg/crypto"
)

// ProposerIndex is the sortition index reserved for the proposer chain.
const ProposerIndex uint32 = 0

// FirstVoterIndex is the sortition index of voter chain 1; voter chain
// n occupies index FirstVoterIndex+n-1.
const FirstVoterIndex uint32 = 1

// totalSortitionWidth is the full width of the sortition space,
// 2^64-1 (u64::MAX), used as the scaling denominator in place of the
// true 2^256 range of a hash, as the reference implementation does.
var totalSortitionWidth = new(big.Int).SetUint64(^uint64(0))

// baseDifficulty is the single-chain (num_voter_chains == 0) proof-of-work
// target: 0x0000ffff... (the upper two bytes zeroed).
var baseDifficulty = func() *big.Int {
	b, err := crypto.H256FromHex("0000" + "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	if err != nil {
		panic(err)
	}
	return new(big.Int).SetBytes(b[:])
}()

// Difficulty returns the proof-of-work target for a system running
// numVoterChains voter chains alongside the proposer chain: the base
// difficulty scaled by (numVoterChains+1), matching get_difficulty.
func Difficulty(numVoterChains uint32) crypto.H256 {
	scaled := new(big.Int).Mul(baseDifficulty, big.NewInt(int64(numVoterChains)+1))
	return bigToH256(scaled)
}

func bigToH256(v *big.Int) crypto.H256 {
	var out crypto.H256
	b := v.Bytes()
	if len(b) > len(out) {
		b = b[len(b)-len(out):]
	}
	copy(out[len(out)-len(b):], b)
	return out
}

// SortitionID maps a mined block hash to the chain it belongs to:
// ProposerIndex for the proposer chain, or FirstVoterIndex+k for voter
// chain k+1. ok is false when hash does not satisfy the proof-of-work
// target (hash >= difficulty).
//
// The proposer chain is allotted a ceil(1/(numVoterChains+1)) share of
// the sortition width; the remainder is split evenly (via modulo)
// across the voter chains. Unlike the reference implementation's
// floating-point ceiling (1.0/(n+1) as f32, then .ceil()), this uses
// exact integer ceiling division — see DESIGN.md's pkg/sortition
// entry for why: float32 rounding can shift the proposer/voter
// boundary by one unit at large chain counts, breaking determinism
// across platforms, while integer division is exact and portable.
func SortitionID(hash, difficulty crypto.H256, numVoterChains uint32) (uint32, bool) {
	hashInt := new(big.Int).SetBytes(hash[:])
	difficultyInt := new(big.Int).SetBytes(difficulty[:])

	multiplier := new(big.Int).Div(difficultyInt, totalSortitionWidth)

	n := new(big.Int).SetUint64(uint64(numVoterChains) + 1)
	proposerWidthUnits := ceilDiv(totalSortitionWidth, n)
	proposerWidth := new(big.Int).Mul(multiplier, proposerWidthUnits)

	switch {
	case hashInt.Cmp(proposerWidth) < 0:
		return ProposerIndex, true
	case hashInt.Cmp(difficultyInt) < 0:
		if numVoterChains == 0 {
			return 0, false
		}
		remainder := new(big.Int).Sub(hashInt, proposerWidth)
		voterIdx := new(big.Int).Mod(remainder, big.NewInt(int64(numVoterChains)))
		return FirstVoterIndex + uint32(voterIdx.Uint64()), true
	default:
		return 0, false
	}
}

func ceilDiv(a, b *big.Int) *big.Int {
	sum := new(big.Int).Add(a, new(big.Int).Sub(b, big.NewInt(1)))
	return sum.Div(sum, b)
}
