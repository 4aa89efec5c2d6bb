package ethereum

import (
	"fmt"

	"github.com/AlexZinkM/evm-wallet/internal/address"
	"github.com/AlexZinkM/evm-wallet/internal/common"
	"github.com/AlexZinkM/evm-wallet/internal/keystore"
	"github.com/AlexZinkM/evm-wallet/internal/model"

	"go.uber.org/zap"
)

// CreateWallet generates a fresh keypair into session without persisting it.
// An error here means the entropy source failed; callers must not continue.
func (s *Service) CreateWallet(session *Session) (string, error) {
	kp, err := keystore.Generate()
	if err != nil {
		return "", err
	}
	session.Set(kp)

	addr := kp.Address().Hex()
	s.log.Info("wallet created", zap.String("address", addr))
	return addr, nil
}

// GenerateWallet creates a new wallet, saves it to storage and loads it into session.
// Storage refuses to overwrite an existing wallet.
func (s *Service) GenerateWallet(session *Session, storage keystore.Storage) (*model.GenerateResponse, error) {
	kp, err := keystore.Generate()
	if err != nil {
		return nil, err
	}

	if err := keystore.NewStore(storage).Save(kp); err != nil {
		kp.Wipe()
		return nil, err
	}
	session.Set(kp)

	addr := kp.Address().Hex()
	qr, err := common.QRCodeBase64(addr)
	if err != nil {
		s.log.Warn("failed to render address QR code", zap.Error(err))
	}

	s.log.Info("wallet generated", zap.String("address", addr))
	return &model.GenerateResponse{
		Success: true,
		Message: "Wallet generated successfully",
		Address: addr,
		QR:      qr,
	}, nil
}

// RestoreWallet loads a wallet from a hex private key
func (s *Service) RestoreWallet(session *Session, secretHex string) (string, error) {
	kp, err := keystore.Restore(secretHex)
	if err != nil {
		return "", err
	}
	session.Set(kp)
	return kp.Address().Hex(), nil
}

// LoadWallet reads the wallet in storage into session
func (s *Service) LoadWallet(session *Session, storage keystore.Storage) (string, error) {
	kp, err := keystore.NewStore(storage).Load()
	if err != nil {
		return "", err
	}
	session.Set(kp)

	addr := kp.Address().Hex()
	s.log.Debug("wallet loaded", zap.String("address", addr))
	return addr, nil
}

// SaveWallet writes the session wallet to storage
func (s *Service) SaveWallet(session *Session, storage keystore.Storage) (string, error) {
	kp, err := session.Keypair()
	if err != nil {
		return "", err
	}
	if err := keystore.NewStore(storage).Save(kp); err != nil {
		return "", err
	}

	addr := kp.Address().Hex()
	s.log.Info("wallet saved", zap.String("address", addr))
	return addr, nil
}

// WalletAddress returns the account id kept in storage, without decrypting
// it when the storage allows that
func WalletAddress(storage keystore.Storage) (string, error) {
	if r, ok := storage.(keystore.AddressReader); ok {
		raw, err := r.Address()
		if err != nil {
			return "", err
		}
		addr, err := address.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("stored address: %w", err)
		}
		return addr.Hex(), nil
	}

	kp, err := keystore.NewStore(storage).Load()
	if err != nil {
		return "", err
	}
	defer kp.Wipe()
	return kp.Address().Hex(), nil
}
