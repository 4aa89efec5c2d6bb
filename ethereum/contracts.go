package ethereum

import (
	"context"
	"fmt"
	"reflect"

	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/AlexZinkM/evm-wallet/internal/registry"
	"github.com/AlexZinkM/evm-wallet/internal/txn"
	"github.com/AlexZinkM/evm-wallet/internal/werr"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// ListContracts returns the registered contracts with their callable functions
func (s *Service) ListContracts() *model.ContractsResponse {
	descs := s.cfg.Registry.Contracts()
	out := make([]model.ContractInfo, 0, len(descs))
	for _, d := range descs {
		out = append(out, model.ContractInfo{
			Name:      d.Name,
			Address:   d.Address.Hex(),
			Functions: registry.ListFunctions(d),
		})
	}
	return &model.ContractsResponse{Contracts: out}
}

// ListFunctions returns the callable functions of the named contract
func (s *Service) ListFunctions(name string) (*model.FunctionsResponse, error) {
	desc, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return &model.FunctionsResponse{
		Contract:  desc.Name,
		Functions: registry.ListFunctions(desc),
	}, nil
}

// Call runs a read-only function. The session is optional: when a wallet is
// loaded the call is made from its account.
func (s *Service) Call(ctx context.Context, session *Session, req model.CallRequest) (*model.CallResponse, error) {
	desc, err := s.resolve(req.Contract)
	if err != nil {
		return nil, err
	}

	var values []any
	if session != nil && session.Loaded() {
		var signer *txn.Signer
		signer, err = s.signer(session)
		if err != nil {
			return nil, err
		}
		values, err = signer.Query(ctx, desc, req.Function, req.Args)
	} else {
		values, err = txn.Query(ctx, s.cfg.Client, ethcommon.Address{}, desc, req.Function, req.Args)
	}
	if err != nil {
		return nil, err
	}

	results := make([]string, len(values))
	for i, v := range values {
		results[i] = FormatValue(v)
	}
	return &model.CallResponse{
		Contract: desc.Name,
		Function: req.Function,
		Results:  results,
	}, nil
}

// Invoke sends a state changing call and waits for its receipt
func (s *Service) Invoke(ctx context.Context, session *Session, req model.CallRequest) (*model.PayResponse, error) {
	desc, err := s.resolve(req.Contract)
	if err != nil {
		return nil, err
	}
	signer, err := s.signer(session)
	if err != nil {
		return nil, err
	}

	// one value-moving operation at a time per service, as for Pay
	s.payMu.Lock()
	defer s.payMu.Unlock()

	res, err := signer.Invoke(ctx, desc, req.Function, req.Args, req.Value)
	if err != nil {
		s.log.Warn("invocation failed",
			zap.String("contract", desc.Name),
			zap.String("function", req.Function),
			zap.String("kind", string(werr.KindOf(err))),
			zap.Error(err))
		return payResponse(res), err
	}
	return payResponse(res), nil
}

func (s *Service) resolve(name string) (*registry.Descriptor, error) {
	desc, ok := s.cfg.Registry.Resolve(name)
	if !ok {
		return nil, werr.New(werr.UnknownContract, "unknown contract %q (known: %v)", name, s.cfg.Registry.Names())
	}
	return desc, nil
}

// FormatValue renders a decoded ABI value for display
func FormatValue(v any) string {
	switch x := v.(type) {
	case ethcommon.Address:
		return x.Hex()
	case []byte:
		return hexutil.Encode(x)
	case fmt.Stringer:
		return x.String()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		return hexutil.Encode(b)
	}
	return fmt.Sprint(v)
}
