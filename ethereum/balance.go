package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/AlexZinkM/evm-wallet/internal/address"
	"github.com/AlexZinkM/evm-wallet/internal/common"
	"github.com/AlexZinkM/evm-wallet/internal/model"

	"go.uber.org/zap"
)

// GetBalance gets the balance of account (hex, checksummed or lowercase).
// The fiat value is best effort: a price source failure is logged, not returned.
func (s *Service) GetBalance(ctx context.Context, account string) (*model.BalanceResponse, error) {
	addr, err := address.Parse(account)
	if err != nil {
		return nil, err
	}

	wei, err := s.cfg.Client.Balance(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	resp := &model.BalanceResponse{
		Address: addr.Hex(),
		Wei:     wei.String(),
		ETH:     common.WeiToEther(wei),
	}

	if s.cfg.Prices == nil || s.cfg.Currency == "" {
		return resp, nil
	}
	rate, err := s.cfg.Prices.GetETHRate(ctx, s.cfg.Currency)
	if err != nil {
		s.log.Warn("failed to get ETH rate", zap.String("currency", s.cfg.Currency), zap.Error(err))
		return resp, nil
	}

	resp.Currency = strings.ToUpper(s.cfg.Currency)
	resp.Rate = rate
	resp.Fiat = fiatValue(wei, rate)
	return resp, nil
}

// fiatValue multiplies a wei amount by a decimal rate, rounded to cents
func fiatValue(wei *big.Int, rate string) string {
	r, ok := new(big.Rat).SetString(rate)
	if !ok {
		return ""
	}
	v := new(big.Rat).SetFrac(wei, new(big.Int).Exp(big.NewInt(10), big.NewInt(common.EtherDecimals), nil))
	return v.Mul(v, r).FloatString(2)
}
