package ethereum

import (
	"sync"

	"github.com/AlexZinkM/evm-wallet/internal/keystore"
	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"github.com/ethereum/go-ethereum/common"
)

// Session holds the wallet the caller is working with. It is owned by the
// caller and passed to every operation that needs the key.
type Session struct {
	mu  sync.Mutex
	key *keystore.Keypair
}

// NewSession creates a session with no wallet loaded
func NewSession() *Session {
	return &Session{}
}

// Set replaces the session wallet, wiping the previous key
func (s *Session) Set(kp *keystore.Keypair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key != nil && s.key != kp {
		s.key.Wipe()
	}
	s.key = kp
}

// Keypair returns the loaded wallet or WalletNotLoaded
func (s *Session) Keypair() (*keystore.Keypair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key == nil {
		return nil, werr.New(werr.WalletNotLoaded, "no wallet loaded: create, generate or load one first")
	}
	return s.key, nil
}

// Loaded reports whether a wallet is loaded
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key != nil
}

// Address returns the account id of the loaded wallet
func (s *Session) Address() (common.Address, error) {
	kp, err := s.Keypair()
	if err != nil {
		return common.Address{}, err
	}
	return kp.Address(), nil
}

// Close wipes the key. The session is empty afterwards.
func (s *Session) Close() {
	s.Set(nil)
}
