package txn

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/keystore"
	"github.com/AlexZinkM/evm-wallet/internal/registry"
	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

const (
	DefaultPollInterval = time.Second
	DefaultMaxAttempts  = 120
)

// Recorder receives operation outcomes, e.g. for metrics
type Recorder interface {
	Submitted(kind Kind)
	Confirmed(kind Kind, wait time.Duration)
	Failed(kind Kind, reason werr.Kind)
}

// Options tune the signer. Zero values select defaults.
type Options struct {
	// PollInterval is the delay between receipt checks
	PollInterval time.Duration
	// MaxAttempts bounds the receipt checks before ConfirmationTimeout
	MaxAttempts int
	// GasLimit overrides gas estimation for invocations when non-zero
	GasLimit uint64
	// ChainID skips the eth_chainId lookup when set
	ChainID *big.Int

	Logger   *zap.Logger
	Recorder Recorder
}

// Status of a submitted transaction
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusReverted  Status = "reverted"
)

// Result is the outcome of a submitted operation
type Result struct {
	Hash    common.Hash
	Status  Status
	Receipt *types.Receipt
}

// Signer authorizes transactions with a single key
type Signer struct {
	client ChainClient
	key    *keystore.Keypair
	opts   Options
	log    *zap.Logger
}

// NewSigner creates a Signer using client as transport
func NewSigner(client ChainClient, key *keystore.Keypair, opts Options) *Signer {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Signer{
		client: client,
		key:    key,
		opts:   opts,
		log:    log.Named("txn"),
	}
}

// Sign produces an EIP-155 signed transaction. Signing is deterministic
// (RFC 6979) for a given intent, key and chain id.
func (s *Signer) Sign(intent *Intent) (*types.Transaction, error) {
	to := intent.To
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    intent.Nonce,
		GasPrice: intent.GasPrice,
		Gas:      intent.GasLimit,
		To:       &to,
		Value:    intent.Value,
		Data:     intent.Data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(intent.ChainID), s.key.PrivateKey())
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

// Submit broadcasts a signed transaction. It is never retried: the caller
// must rebuild and re-sign to try again.
func (s *Signer) Submit(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode transaction: %w", err)
	}

	hash, err := s.client.SendRaw(ctx, raw)
	if err != nil {
		return common.Hash{}, classify(err, "failed to send transaction")
	}
	if hash != tx.Hash() {
		s.log.Warn("node returned unexpected transaction hash",
			zap.String("expected", tx.Hash().Hex()), zap.String("got", hash.Hex()))
	}

	s.log.Info("transaction submitted",
		zap.String("hash", hash.Hex()),
		zap.Uint64("nonce", tx.Nonce()),
		zap.Stringer("to", tx.To()))
	return hash, nil
}

// Confirm polls for the receipt of hash. A failed receipt yields
// ExecutionReverted, an exhausted bound ConfirmationTimeout. Cancelling ctx
// only stops waiting; the transaction stays broadcast.
func (s *Signer) Confirm(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	var lastErr error
	for attempt := 1; ; attempt++ {
		receipt, err := s.client.Receipt(ctx, hash)
		switch {
		case err != nil:
			lastErr = err
			s.log.Debug("receipt lookup failed", zap.String("hash", hash.Hex()), zap.Int("attempt", attempt), zap.Error(err))
		case receipt != nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, werr.New(werr.ExecutionReverted,
					"transaction %s reverted in block %s", hash.Hex(), receipt.BlockNumber)
			}
			return receipt, nil
		}

		if attempt >= s.opts.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("stopped waiting for %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}

	return nil, werr.Wrap(werr.ConfirmationTimeout, lastErr,
		"transaction %s not mined after %d checks", hash.Hex(), s.opts.MaxAttempts)
}

// Transfer sends value to a destination. With wait it also confirms.
func (s *Signer) Transfer(ctx context.Context, to, amount string, wait bool) (*Result, error) {
	intent, err := s.BuildTransfer(ctx, to, amount)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, intent, wait)
}

// Invoke calls a state changing contract function and waits for its receipt
func (s *Signer) Invoke(ctx context.Context, desc *registry.Descriptor, fn string, args []string, value string) (*Result, error) {
	intent, err := s.BuildInvocation(ctx, desc, fn, args, value)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, intent, true)
}

// Query runs a read-only call from the signer's account
func (s *Signer) Query(ctx context.Context, desc *registry.Descriptor, fn string, args []string) ([]any, error) {
	return Query(ctx, s.client, s.key.Address(), desc, fn, args)
}

func (s *Signer) execute(ctx context.Context, intent *Intent, wait bool) (*Result, error) {
	tx, err := s.Sign(intent)
	if err != nil {
		return nil, err
	}

	hash, err := s.Submit(ctx, tx)
	if err != nil {
		s.opts.Recorder.Failed(intent.Kind, werr.KindOf(err))
		return nil, err
	}
	s.opts.Recorder.Submitted(intent.Kind)

	result := &Result{Hash: hash, Status: StatusPending}
	if !wait {
		return result, nil
	}

	started := time.Now()
	receipt, err := s.Confirm(ctx, hash)
	result.Receipt = receipt
	if err != nil {
		if werr.Is(err, werr.ExecutionReverted) {
			result.Status = StatusReverted
		}
		s.opts.Recorder.Failed(intent.Kind, werr.KindOf(err))
		return result, err
	}

	result.Status = StatusConfirmed
	s.opts.Recorder.Confirmed(intent.Kind, time.Since(started))
	s.log.Info("transaction confirmed",
		zap.String("hash", hash.Hex()),
		zap.Stringer("block", receipt.BlockNumber),
		zap.Uint64("gasUsed", receipt.GasUsed))
	return result, nil
}

type nopRecorder struct{}

func (nopRecorder) Submitted(Kind)                {}
func (nopRecorder) Confirmed(Kind, time.Duration) {}
func (nopRecorder) Failed(Kind, werr.Kind)        {}
