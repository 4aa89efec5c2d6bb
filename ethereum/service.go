// Package ethereum implements the wallet operations shared by the CLI and the
// HTTP API on top of the key store, the contract registry and the signer.
package ethereum

import (
	"context"
	"sync"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/registry"
	"github.com/AlexZinkM/evm-wallet/internal/txn"

	"go.uber.org/zap"
)

// PriceSource values ether in a fiat currency
type PriceSource interface {
	GetETHRate(ctx context.Context, currency string) (string, error)
}

// Config wires a Service
type Config struct {
	Client   txn.ChainClient
	Registry *registry.Registry
	// Prices is optional; without it balances carry no fiat value
	Prices   PriceSource
	Currency string
	// PayCooldown is the minimum delay between two transfers, 0 disables it
	PayCooldown time.Duration
	Signer      txn.Options
	Logger      *zap.Logger
}

// Service runs wallet operations. It is safe for concurrent use; operations
// that move value are serialized.
type Service struct {
	cfg Config
	log *zap.Logger

	payMu       sync.Mutex
	lastPayTime time.Time
	now         func() time.Time
}

// NewService creates a Service
func NewService(cfg Config) *Service {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Registry == nil {
		cfg.Registry = &registry.Registry{}
	}
	cfg.Signer.Logger = log
	return &Service{
		cfg: cfg,
		log: log.Named("ethereum"),
		now: time.Now,
	}
}

// Registry returns the contract registry in use
func (s *Service) Registry() *registry.Registry {
	return s.cfg.Registry
}

func (s *Service) signer(session *Session) (*txn.Signer, error) {
	kp, err := session.Keypair()
	if err != nil {
		return nil, err
	}
	return txn.NewSigner(s.cfg.Client, kp, s.cfg.Signer), nil
}
