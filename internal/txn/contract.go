package txn

import (
	"context"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/AlexZinkM/evm-wallet/internal/address"
	"github.com/AlexZinkM/evm-wallet/internal/registry"
	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// PackCall resolves fn on the contract and ABI-encodes selector and arguments
func PackCall(desc *registry.Descriptor, fn string, args []string) (abi.Method, []byte, error) {
	method, ok := desc.Method(fn)
	if !ok {
		return abi.Method{}, nil, werr.New(werr.UnknownFunction, "contract %s has no function %q", desc.Name, fn)
	}

	values, err := ParseArgs(method.Inputs, args)
	if err != nil {
		return abi.Method{}, nil, err
	}

	data, err := desc.ABI.Pack(fn, values...)
	if err != nil {
		return abi.Method{}, nil, werr.Wrap(werr.InvalidArgument, err, "failed to encode %s", method.Sig)
	}
	return method, data, nil
}

// Query performs a read-only eth_call and decodes the function outputs
func Query(ctx context.Context, client ChainClient, from common.Address, desc *registry.Descriptor, fn string, args []string) ([]any, error) {
	method, data, err := PackCall(desc, fn, args)
	if err != nil {
		return nil, err
	}

	to := desc.Address
	out, err := client.Call(ctx, ethereum.CallMsg{From: from, To: &to, Data: data})
	if err != nil {
		return nil, classify(err, "failed to call "+desc.Name+"."+fn)
	}
	// calls to an address without code succeed with no data
	if len(out) == 0 && len(method.Outputs) > 0 {
		return nil, werr.New(werr.UnknownContract, "no contract code for %s at %s", desc.Name, desc.Address.Hex())
	}

	values, err := desc.ABI.Unpack(fn, out)
	if err != nil {
		return nil, werr.Wrap(werr.MalformedInterface, err,
			"result of %s.%s does not match its ABI (is the contract deployed at %s?)", desc.Name, fn, desc.Address.Hex())
	}
	return values, nil
}

// ParseArgs converts textual arguments into the Go values the ABI encoder expects.
// Scalars only: integers (decimal or 0x hex), bool, string, address, bytes and bytesN.
func ParseArgs(inputs abi.Arguments, args []string) ([]any, error) {
	if len(args) != len(inputs) {
		return nil, werr.New(werr.InvalidArgument, "expected %d arguments, got %d", len(inputs), len(args))
	}

	values := make([]any, len(args))
	for i, in := range inputs {
		v, err := parseArg(in.Type, strings.TrimSpace(args[i]))
		if err != nil {
			name := in.Name
			if name == "" {
				name = strconv.Itoa(i)
			}
			return nil, werr.Wrap(werr.InvalidArgument, err, "argument %s (%s)", name, in.Type.String())
		}
		values[i] = v
	}
	return values, nil
}

func parseArg(t abi.Type, s string) (any, error) {
	switch t.T {
	case abi.UintTy, abi.IntTy:
		return parseInteger(t, s)

	case abi.BoolTy:
		return strconv.ParseBool(s)

	case abi.StringTy:
		return s, nil

	case abi.AddressTy:
		return address.Parse(s)

	case abi.BytesTy:
		return hexutil.Decode(s)

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, werr.New(werr.InvalidArgument, "need %d bytes, got %d", t.Size, len(b))
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil

	default:
		return nil, werr.New(werr.InvalidArgument, "unsupported argument type %s", t.String())
	}
}

// parseInteger returns the exact Go type the encoder wants: native sized
// ints where the ABI package uses them, *big.Int otherwise.
func parseInteger(t abi.Type, s string) (any, error) {
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, werr.New(werr.InvalidArgument, "invalid integer %q", s)
	}

	unsigned := t.T == abi.UintTy
	if unsigned && n.Sign() < 0 {
		return nil, werr.New(werr.InvalidArgument, "negative value for %s", t.String())
	}
	bits := n.BitLen()
	if !unsigned && n.Sign() < 0 {
		bits = new(big.Int).Add(n, big.NewInt(1)).BitLen()
	}
	if unsigned && bits > t.Size || !unsigned && bits > t.Size-1 {
		return nil, werr.New(werr.InvalidArgument, "%s overflows %s", s, t.String())
	}

	// only 8/16/32/64 bit types map to native kinds
	goType := t.GetType()
	if goType.Kind() == reflect.Ptr {
		return n, nil
	}
	v := reflect.New(goType).Elem()
	if unsigned {
		v.SetUint(n.Uint64())
	} else {
		v.SetInt(n.Int64())
	}
	return v.Interface(), nil
}
