package txn

import (
	"context"
	"math/big"

	"github.com/AlexZinkM/evm-wallet/internal/address"
	"github.com/AlexZinkM/evm-wallet/internal/common"
	"github.com/AlexZinkM/evm-wallet/internal/registry"
	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
)

// TransferGas is the gas limit of a plain value transfer
const TransferGas = params.TxGas

// Kind is the operation shape of an intent
type Kind string

const (
	KindTransfer   Kind = "transfer"
	KindInvocation Kind = "invocation"
)

// Intent is an unsigned transaction. It is built fresh for every submission
// and must not be reused: a resubmission needs a new nonce and gas price.
type Intent struct {
	Kind     Kind
	From     ethcommon.Address
	To       ethcommon.Address
	Value    *big.Int
	Data     []byte
	GasLimit uint64
	GasPrice *big.Int
	Nonce    uint64
	ChainID  *big.Int

	// Method is the invoked function signature, empty for transfers
	Method string
}

// BuildTransfer validates the destination and amount, then fills nonce, gas
// price and chain id from the network. Validation happens before any network call.
func (s *Signer) BuildTransfer(ctx context.Context, to, amount string) (*Intent, error) {
	dest, err := address.Parse(to)
	if err != nil {
		return nil, err
	}

	value, err := common.ParseAmount(amount)
	if err != nil {
		return nil, werr.Wrap(werr.InvalidAmount, err, "invalid amount %q", amount)
	}
	if value.Sign() == 0 {
		return nil, werr.New(werr.InvalidAmount, "transfer amount must be greater than zero")
	}

	intent := &Intent{
		Kind:     KindTransfer,
		From:     s.key.Address(),
		To:       dest,
		Value:    value,
		GasLimit: TransferGas,
	}
	if err := s.fillNetworkParams(ctx, intent); err != nil {
		return nil, err
	}
	return intent, nil
}

// BuildInvocation encodes a call of fn on the contract. value may be empty;
// a non-zero value requires a payable function.
func (s *Signer) BuildInvocation(ctx context.Context, desc *registry.Descriptor, fn string, args []string, value string) (*Intent, error) {
	method, data, err := PackCall(desc, fn, args)
	if err != nil {
		return nil, err
	}
	if method.IsConstant() {
		return nil, werr.New(werr.InvalidArgument, "%s.%s is read-only, query it instead", desc.Name, fn)
	}

	amount := new(big.Int)
	if value != "" {
		amount, err = common.ParseAmount(value)
		if err != nil {
			return nil, werr.Wrap(werr.InvalidAmount, err, "invalid value %q", value)
		}
	}
	if amount.Sign() > 0 && !method.IsPayable() {
		return nil, werr.New(werr.InvalidAmount, "%s.%s is not payable", desc.Name, fn)
	}

	intent := &Intent{
		Kind:   KindInvocation,
		From:   s.key.Address(),
		To:     desc.Address,
		Value:  amount,
		Data:   data,
		Method: method.Sig,
	}
	if err := s.fillNetworkParams(ctx, intent); err != nil {
		return nil, err
	}

	intent.GasLimit = s.opts.GasLimit
	if intent.GasLimit == 0 {
		to := intent.To
		intent.GasLimit, err = s.client.EstimateGas(ctx, ethereum.CallMsg{
			From:     intent.From,
			To:       &to,
			GasPrice: intent.GasPrice,
			Value:    intent.Value,
			Data:     intent.Data,
		})
		if err != nil {
			return nil, classify(err, "failed to estimate gas")
		}
	}
	return intent, nil
}

func (s *Signer) fillNetworkParams(ctx context.Context, intent *Intent) error {
	nonce, err := s.client.Nonce(ctx, intent.From)
	if err != nil {
		return classify(err, "failed to get nonce")
	}
	gasPrice, err := s.client.GasPrice(ctx)
	if err != nil {
		return classify(err, "failed to get gas price")
	}
	chainID, err := s.chainID(ctx)
	if err != nil {
		return err
	}

	intent.Nonce = nonce
	intent.GasPrice = gasPrice
	intent.ChainID = chainID
	return nil
}

func (s *Signer) chainID(ctx context.Context) (*big.Int, error) {
	if s.opts.ChainID != nil {
		return s.opts.ChainID, nil
	}
	id, err := s.client.ChainID(ctx)
	if err != nil {
		return nil, classify(err, "failed to get chain id")
	}
	return id, nil
}
