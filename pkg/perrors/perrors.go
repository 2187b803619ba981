// Package perrors defines the sentinel error taxonomy shared by the
// chain, validation, ledger, mempool, network worker, miner, txgen
// and api packages.
// Callers wrap these with fmt.Errorf("...: %w", ...) for context and
// compare with errors.Is.
package perrors

import "errors"

var (
	// ErrProtocolViolation marks a message or block that breaks the
	// wire protocol's structural contract (bad sortition id, failed
	// Merkle proof, malformed header).
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrMissingReference marks a block whose parent or referenced
	// blocks are not yet known locally; the block is buffered as an
	// orphan rather than rejected.
	ErrMissingReference = errors.New("missing reference")

	// ErrInvalidSignatureOrInputs marks a transaction that fails
	// Ed25519 verification or UTXO validity rules.
	ErrInvalidSignatureOrInputs = errors.New("invalid signature or inputs")

	// ErrDuplicateSpendInMempool marks a transaction whose input is
	// already referenced by another mempool entry. This is logged,
	// not rejected — see pkg/mempool.
	ErrDuplicateSpendInMempool = errors.New("duplicate spend in mempool")

	// ErrTransportError marks a failure in the peer transport layer
	// (connection refused, write failure, decode failure).
	ErrTransportError = errors.New("transport error")
)
