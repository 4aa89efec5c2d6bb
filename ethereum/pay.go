package ethereum

import (
	"context"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/address"
	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/AlexZinkM/evm-wallet/internal/txn"
	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"go.uber.org/zap"
)

// Pay sends amount to toAddress from the session wallet. With wait it
// returns after the receipt is in.
func (s *Service) Pay(ctx context.Context, session *Session, toAddress, amount string, wait bool) (*model.PayResponse, error) {
	// Validate recipient address
	if _, err := address.Parse(toAddress); err != nil {
		return nil, err
	}

	signer, err := s.signer(session)
	if err != nil {
		return nil, err
	}

	// Check cooldown
	s.payMu.Lock()
	defer s.payMu.Unlock()

	if !s.lastPayTime.IsZero() && s.cfg.PayCooldown > 0 {
		elapsed := s.now().Sub(s.lastPayTime)
		if elapsed < s.cfg.PayCooldown {
			remaining := s.cfg.PayCooldown - elapsed
			return nil, werr.New(werr.CooldownActive, "cooldown active, please wait %v", remaining.Round(time.Second))
		}
	}

	res, err := signer.Transfer(ctx, toAddress, amount, wait)
	if res != nil {
		// broadcast happened, the cooldown starts whatever the outcome
		s.lastPayTime = s.now()
	}
	if err != nil {
		s.log.Warn("transfer failed", zap.String("to", toAddress), zap.String("kind", string(werr.KindOf(err))), zap.Error(err))
		return payResponse(res), err
	}
	return payResponse(res), nil
}

func payResponse(res *txn.Result) *model.PayResponse {
	if res == nil {
		return nil
	}
	resp := &model.PayResponse{
		TxHash: res.Hash.Hex(),
		Status: string(res.Status),
	}
	if res.Receipt != nil {
		if res.Receipt.BlockNumber != nil {
			resp.BlockNumber = res.Receipt.BlockNumber.Uint64()
		}
		resp.GasUsed = res.Receipt.GasUsed
	}
	return resp
}
