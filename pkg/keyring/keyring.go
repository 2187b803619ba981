// Package keyring manages Ed25519 signing keys and the address
// derivation used by the genesis ICO and the transaction generator.
package keyring

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/x509"
	"fmt"
	"sync"

	"github.com/prism-labs/prism/pkg/crypto"
)

// Account pairs an Ed25519 key pair with its derived address.
type Account struct {
	Address    crypto.H160
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// Keyring holds a fixed set of named accounts, guarded for concurrent
// read access from the transaction generator and API layer.
type Keyring struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// New creates an empty keyring.
func New() *Keyring {
	return &Keyring{accounts: make(map[string]*Account)}
}

// AddFromPKCS8 parses a PKCS8 DER-encoded Ed25519 private key (the
// same wire format `ring::Ed25519KeyPair::from_pkcs8` loads) and
// stores it under name.
func (k *Keyring) AddFromPKCS8(name string, der []byte) (*Account, error) {
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("parse pkcs8 key %q: %w", name, err)
	}
	priv, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("pkcs8 key %q is not an Ed25519 key", name)
	}
	pub := priv.Public().(ed25519.PublicKey)
	acct := &Account{
		Address:    AddressFromPublicKey(pub),
		PublicKey:  pub,
		PrivateKey: priv,
	}
	k.mu.Lock()
	k.accounts[name] = acct
	k.mu.Unlock()
	return acct, nil
}

// Get returns the named account.
func (k *Keyring) Get(name string) (*Account, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	a, ok := k.accounts[name]
	return a, ok
}

// All returns the accounts stored under names, in the order of names;
// names with no stored account are skipped.
func (k *Keyring) All(names []string) []*Account {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]*Account, 0, len(names))
	for _, n := range names {
		if a, ok := k.accounts[n]; ok {
			out = append(out, a)
		}
	}
	return out
}

// AddressFromPublicKey derives an H160 address as the last 20 bytes
// of SHA-256(public key), matching
// original_source/bitcoin_client/src/crypto/address.rs exactly.
func AddressFromPublicKey(pub ed25519.PublicKey) crypto.H160 {
	sum := sha256.Sum256(pub)
	var addr crypto.H160
	copy(addr[:], sum[12:32])
	return addr
}

// Sign produces an Ed25519 signature over data.
func Sign(priv ed25519.PrivateKey, data []byte) []byte {
	return ed25519.Sign(priv, data)
}

// Verify checks an Ed25519 signature over data.
func Verify(pub ed25519.PublicKey, data, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(pub, data, sig)
}
