package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// JSON-RPC code used by geth and most nodes for reverted execution
const revertErrorCode = 3

// EthereumClient is a client for working with Ethereum JSON-RPC
type EthereumClient struct {
	eth    *ethclient.Client
	rpcURL string
}

// NewEthereumClient connects to the node at rpcURL (http, ws or ipc)
func NewEthereumClient(ctx context.Context, rpcURL string) (*EthereumClient, error) {
	if rpcURL == "" {
		return nil, werr.New(werr.InvalidArgument, "RPC URL is empty")
	}
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, werr.Wrap(werr.TransportFailure, err, "failed to connect to %s", rpcURL)
	}
	return &EthereumClient{
		eth:    ethclient.NewClient(rpcClient),
		rpcURL: rpcURL,
	}, nil
}

// URL returns the endpoint the client is connected to
func (c *EthereumClient) URL() string {
	return c.rpcURL
}

// Close releases the underlying connection
func (c *EthereumClient) Close() {
	c.eth.Close()
}

// Balance gets the latest balance of account in wei
func (c *EthereumClient) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	balance, err := c.eth.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, transportError(err, "failed to get balance")
	}
	return balance, nil
}

// Nonce gets the next nonce of account, pending transactions included
func (c *EthereumClient) Nonce(ctx context.Context, account common.Address) (uint64, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, account)
	if err != nil {
		return 0, transportError(err, "failed to get nonce")
	}
	return nonce, nil
}

// GasPrice gets the node's suggested legacy gas price
func (c *EthereumClient) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, transportError(err, "failed to get gas price")
	}
	return price, nil
}

// EstimateGas asks the node how much gas msg needs. A node error here means
// the call would fail on chain.
func (c *EthereumClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	gas, err := c.eth.EstimateGas(ctx, msg)
	if err != nil {
		return 0, executionError(err, "failed to estimate gas")
	}
	return gas, nil
}

// ChainID gets the EIP-155 chain id
func (c *EthereumClient) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, transportError(err, "failed to get chain id")
	}
	return id, nil
}

// BlockNumber gets the latest block height
func (c *EthereumClient) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, transportError(err, "failed to get block number")
	}
	return n, nil
}

// SendRaw broadcasts an RLP encoded signed transaction and returns the hash
// reported by the node
func (c *EthereumClient) SendRaw(ctx context.Context, raw []byte) (common.Hash, error) {
	var hash common.Hash
	err := c.eth.Client().CallContext(ctx, &hash, "eth_sendRawTransaction", hexutil.Encode(raw))
	if err != nil {
		var rpcErr rpc.Error
		if errors.As(err, &rpcErr) {
			return common.Hash{}, werr.Wrap(werr.SubmissionRejected, err, "node rejected transaction")
		}
		return common.Hash{}, transportError(err, "failed to send transaction")
	}
	return hash, nil
}

// Receipt gets the receipt of hash, nil while the transaction is not mined
func (c *EthereumClient) Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := c.eth.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, transportError(err, "failed to get receipt")
	}
	return receipt, nil
}

// Call executes a read-only call against the latest block
func (c *EthereumClient) Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	out, err := c.eth.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, executionError(err, "call failed")
	}
	return out, nil
}

func transportError(err error, op string) error {
	return werr.Wrap(werr.TransportFailure, err, "%s", op)
}

// executionError separates node-side execution failures from transport ones
func executionError(err error, op string) error {
	var rpcErr rpc.Error
	if !errors.As(err, &rpcErr) {
		return transportError(err, op)
	}

	msg := op
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if data, ok := dataErr.ErrorData().(string); ok && data != "" {
			msg = fmt.Sprintf("%s (revert data %s)", op, data)
		}
	}
	if rpcErr.ErrorCode() == revertErrorCode || strings.Contains(strings.ToLower(rpcErr.Error()), "revert") {
		return werr.Wrap(werr.ExecutionReverted, err, "%s", msg)
	}
	return werr.Wrap(werr.SubmissionRejected, err, "%s", msg)
}
