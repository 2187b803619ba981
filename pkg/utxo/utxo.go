// Package utxo implements the UTXO transaction model: inputs/outputs,
// signed transactions, the UTXO set with its ICO seeding, and the
// validity rule applied before a transaction is admitted to the
// ledger.
package utxo

import (
	"crypto/ed25519"
	"encoding/binary"
	"sync"

	"github.com/prism-labs/prism/pkg/crypto"
	"github.com/prism-labs/prism/pkg/keyring"
)

// Input references a prior output by transaction hash and output
// index.
type Input struct {
	TxHash crypto.H256
	Index  uint8
}

// Output is a spendable value assigned to an address.
type Output struct {
	Recipient crypto.H160
	Value     uint32
}

// Transaction is the unsigned spend: a list of inputs being consumed
// and a list of outputs being created.
type Transaction struct {
	Inputs  []Input
	Outputs []Output
}

// SignedTransaction pairs a Transaction with the Ed25519 signature and
// public key of its single signer.
type SignedTransaction struct {
	Tx        Transaction
	Signature []byte
	PublicKey []byte
}

// Encode canonically serializes a Transaction: a length-prefixed list
// of inputs followed by a length-prefixed list of outputs, each field
// fixed-width little-endian. This is the exact byte string that is
// signed and hashed, mirroring bincode's encoding of the equivalent
// Rust struct.
func (t Transaction) Encode() []byte {
	buf := make([]byte, 0, 8+len(t.Inputs)*33+8+len(t.Outputs)*24)

	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(t.Inputs)))
	buf = append(buf, lenBuf[:]...)
	for _, in := range t.Inputs {
		buf = append(buf, in.TxHash[:]...)
		buf = append(buf, in.Index)
	}

	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(t.Outputs)))
	buf = append(buf, lenBuf[:]...)
	for _, out := range t.Outputs {
		buf = append(buf, out.Recipient[:]...)
		var valBuf [4]byte
		binary.LittleEndian.PutUint32(valBuf[:], out.Value)
		buf = append(buf, valBuf[:]...)
	}
	return buf
}

// Hash is SHA256 of the canonical encoding.
func (t Transaction) Hash() crypto.H256 { return crypto.Sha256(t.Encode()) }

// Encode canonically serializes a SignedTransaction: the
// length-prefixed Transaction encoding, followed by the
// length-prefixed signature bytes and length-prefixed public key bytes.
func (s *SignedTransaction) Encode() []byte {
	buf := t8encode(s.Tx.Encode())
	buf = append(buf, t8encode(s.Signature)...)
	buf = append(buf, t8encode(s.PublicKey)...)
	return buf
}

func t8encode(b []byte) []byte {
	out := make([]byte, 8+len(b))
	binary.LittleEndian.PutUint64(out[:8], uint64(len(b)))
	copy(out[8:], b)
	return out
}

// Hash is SHA256 of the canonical SignedTransaction encoding.
func (s *SignedTransaction) Hash() crypto.H256 { return crypto.Sha256(s.Encode()) }

// Sign signs tx's canonical encoding with priv.
func Sign(tx Transaction, priv ed25519.PrivateKey) []byte {
	return keyring.Sign(priv, tx.Encode())
}

// Verify checks sig against tx's canonical encoding.
func Verify(tx Transaction, sig, pub []byte) bool {
	return keyring.Verify(pub, tx.Encode(), sig)
}

// State is the UTXO set: a map from input (the prior output's
// coordinates) to the output it unlocks.
type State struct {
	mu    sync.RWMutex
	utxos map[Input]Output
}

// NewState creates an empty UTXO set (no ICO performed).
func NewState() *State {
	return &State{utxos: make(map[Input]Output)}
}

// icoTemplateRoot is the fixed 32-byte template original_source reuses
// for synthesizing ICO transaction hashes (bytes 0 and 1 are
// overwritten per address/output index below).
var icoTemplateRoot = func() crypto.H256 {
	h, _ := crypto.H256FromHex("6b787718210e0b3b608814e04e61fde06d0df794319a12162f287412df3ec920")
	return h
}()

// PerformICO seeds the UTXO set with 6 addresses x 5 outputs of value
// 100, matching original_source/prism_voting_chains/src/utxo.rs
// exactly: the synthetic transaction hash is the fixed template with
// byte 0 set to the address index and byte 1 set to the output index;
// the UtxoInput's own Index field is always 0 (the output index lives
// only in the synthesized hash, not in Input.Index).
func (s *State) PerformICO(addresses [6]crypto.H160) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, addr := range addresses {
		for j := 0; j < 5; j++ {
			txHash := icoTemplateRoot
			txHash[0] = byte(i)
			txHash[1] = byte(j)
			in := Input{TxHash: txHash, Index: 0}
			s.utxos[in] = Output{Recipient: addr, Value: 100}
		}
	}
}

// Get returns the output for an input, if unspent.
func (s *State) Get(in Input) (Output, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out, ok := s.utxos[in]
	return out, ok
}

// Balance sums every unspent output belonging to addr.
func (s *State) Balance(addr crypto.H160) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total uint64
	for _, out := range s.utxos {
		if out.Recipient == addr {
			total += uint64(out.Value)
		}
	}
	return total
}

// IsTxValid checks the four validity rules from spec.md section 4.8:
//  1. the Ed25519 signature verifies against the transaction encoding,
//  2. every input exists in the UTXO set and is owned by the signer,
//  3. the *reassigned* total_input_value bug is preserved exactly:
//     total_input_value is overwritten by each input's value in turn
//     rather than accumulated, so only the last input's value is
//     compared against the output sum,
//  4. total_input_value (per rule 3) must equal the sum of outputs.
//
// This is a deliberately preserved defect from the reference
// implementation, not an oversight — see DESIGN.md.
func (s *State) IsTxValid(tx *SignedTransaction) bool {
	if !Verify(tx.Tx, tx.Signature, tx.PublicKey) {
		return false
	}
	owner := keyring.AddressFromPublicKey(tx.PublicKey)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var totalInputValue uint64
	for _, in := range tx.Tx.Inputs {
		out, ok := s.utxos[in]
		if !ok {
			return false
		}
		if out.Recipient != owner {
			return false
		}
		totalInputValue = uint64(out.Value)
	}

	var totalOutputValue uint64
	for _, out := range tx.Tx.Outputs {
		totalOutputValue += uint64(out.Value)
	}

	return totalInputValue == totalOutputValue
}

// UpdateState removes every spent input and installs the new outputs.
// Callers must have already validated tx with IsTxValid.
func (s *State) UpdateState(tx *SignedTransaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, in := range tx.Tx.Inputs {
		delete(s.utxos, in)
	}
	txHash := tx.Hash()
	for i, out := range tx.Tx.Outputs {
		s.utxos[Input{TxHash: txHash, Index: uint8(i)}] = out
	}
}

// Entries returns a snapshot copy of the full input->output map, for
// callers (such as the transaction generator) that need to range over
// the UTXO set without holding its lock.
func (s *State) Entries() map[Input]Output {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Input]Output, len(s.utxos))
	for in, o := range s.utxos {
		out[in] = o
	}
	return out
}

// Len returns the number of unspent outputs.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.utxos)
}
