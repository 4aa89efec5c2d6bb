package txn

import (
	"context"
	"fmt"
	"math/big"

	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainClient is the network side the signer needs. Implementations report
// transport problems as werr.TransportFailure and node rejections of a raw
// transaction as werr.SubmissionRejected.
type ChainClient interface {
	Balance(ctx context.Context, account common.Address) (*big.Int, error)
	Nonce(ctx context.Context, account common.Address) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendRaw(ctx context.Context, raw []byte) (common.Hash, error)
	// Receipt returns nil, nil while the transaction is not mined
	Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
}

// classify makes sure a client error carries a kind
func classify(err error, op string) error {
	if werr.KindOf(err) != "" {
		return fmt.Errorf("%s: %w", op, err)
	}
	return werr.Wrap(werr.TransportFailure, err, "%s", op)
}
