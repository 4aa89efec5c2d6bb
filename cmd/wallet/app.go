package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/AlexZinkM/evm-wallet/ethereum"
	"github.com/AlexZinkM/evm-wallet/internal/client"
	"github.com/AlexZinkM/evm-wallet/internal/config"
	"github.com/AlexZinkM/evm-wallet/internal/crypto"
	"github.com/AlexZinkM/evm-wallet/internal/keystore"
	"github.com/AlexZinkM/evm-wallet/internal/logger"
	"github.com/AlexZinkM/evm-wallet/internal/metrics"
	"github.com/AlexZinkM/evm-wallet/internal/registry"
	"github.com/AlexZinkM/evm-wallet/internal/txn"

	"go.uber.org/zap"
)

// app holds the wiring shared by all commands
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	closeLog func() error

	chain   *client.EthereumClient
	metrics *metrics.Metrics
	svc     *ethereum.Service
}

// newApp loads configuration, the logger, the registry and dials the node
func newApp(ctx context.Context, quiet bool) (*app, error) {
	if err := config.Init(); err != nil {
		return nil, err
	}
	cfg := config.Get()
	if flags.walletPath != "" {
		cfg.WalletFilePath = flags.walletPath
	}
	if flags.rpcURL != "" {
		cfg.RPCURL = flags.rpcURL
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	log, closeLog, err := logger.New(logger.Options{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
		Quiet: quiet,
	})
	if err != nil {
		return nil, err
	}

	reg, err := loadRegistry(cfg)
	if err != nil {
		closeLog()
		return nil, err
	}

	chain, err := client.NewEthereumClient(ctx, cfg.RPCURL)
	if err != nil {
		closeLog()
		return nil, err
	}

	m := metrics.New()
	opts := txn.Options{
		PollInterval: cfg.ConfirmInterval,
		MaxAttempts:  cfg.ConfirmMaxAttempts,
		GasLimit:     cfg.GasLimit,
		Recorder:     m,
	}
	if cfg.ChainID > 0 {
		opts.ChainID = big.NewInt(cfg.ChainID)
	}

	svc := ethereum.NewService(ethereum.Config{
		Client:      chain,
		Registry:    reg,
		Prices:      client.NewCoinGeckoClient(cfg.PriceAPIURL),
		Currency:    cfg.PriceCurrency,
		PayCooldown: cfg.CooldownDuration(),
		Signer:      opts,
		Logger:      log,
	})

	log.Debug("wallet configured",
		zap.String("rpc", cfg.RPCURL),
		zap.String("wallet", cfg.WalletFilePath),
		zap.Strings("contracts", reg.Names()))

	return &app{cfg: cfg, log: log, closeLog: closeLog, chain: chain, metrics: m, svc: svc}, nil
}

func (a *app) Close() {
	a.chain.Close()
	config.ClearPassword()
	a.closeLog()
}

func loadRegistry(cfg *config.Config) (*registry.Registry, error) {
	if cfg.ContractsFile == "" {
		return registry.Default()
	}
	return registry.LoadFile(cfg.ContractsFile)
}

// storage opens the wallet file. Encrypted files need the password, which is
// prompted once per process; confirm asks twice, for new wallets.
func (a *app) storage(confirm bool) (keystore.Storage, func(), error) {
	path := a.cfg.WalletFilePath
	if !a.cfg.Encrypted() {
		return keystore.NewFileStorage(path), func() {}, nil
	}

	password, err := a.password(confirm)
	if err != nil {
		return nil, nil, err
	}
	defer clear(password)

	s, err := crypto.NewEncryptedStorage(path, password)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func (a *app) password(confirm bool) ([]byte, error) {
	if pw, err := config.GetPasswordBytes(); err == nil {
		return pw, nil
	}
	if pw := os.Getenv("WALLET_PASSWORD"); pw != "" {
		config.SetPassword([]byte(pw))
		return config.GetPasswordBytes()
	}

	if !confirm {
		if err := config.PromptForPassword(); err != nil {
			return nil, err
		}
		return config.GetPasswordBytes()
	}

	pw, err := promptNewPassword()
	if err != nil {
		return nil, err
	}
	config.SetPassword(pw)
	return pw, nil
}

// promptNewPassword asks for a new password twice
func promptNewPassword() ([]byte, error) {
	first, err := config.ReadPassword("New wallet password: ")
	if err != nil {
		return nil, err
	}
	second, err := config.ReadPassword("Repeat password: ")
	if err != nil {
		clear(first)
		return nil, err
	}
	defer clear(second)
	if !bytes.Equal(first, second) {
		clear(first)
		return nil, errors.New("passwords do not match")
	}
	return first, nil
}

// loadSession decrypts the wallet file into a new session
func (a *app) loadSession() (*ethereum.Session, error) {
	storage, done, err := a.storage(false)
	if err != nil {
		return nil, err
	}
	defer done()

	session := ethereum.NewSession()
	if _, err := a.svc.LoadWallet(session, storage); err != nil {
		session.Close()
		return nil, fmt.Errorf("load %s: %w", a.cfg.WalletFilePath, err)
	}
	return session, nil
}
