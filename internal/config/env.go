package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: Password is prompted at runtime and stored in memory - use GetPasswordBytes()
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	PayCooldown int    `envconfig:"PAY_COOLDOWN_MINUTES" default:"4"`

	// WalletFilePath is the wallet file; a .cwt extension means encrypted
	WalletFilePath string `envconfig:"WALLET_FILE_PATH" default:"wallet.cwt"`
	RPCURL         string `envconfig:"ETH_RPC_URL" default:"https://ethereum-sepolia-rpc.publicnode.com"`
	// ChainID 0 asks the node
	ChainID       int64  `envconfig:"CHAIN_ID" default:"0"`
	ContractsFile string `envconfig:"CONTRACTS_FILE"`

	ConfirmInterval    time.Duration `envconfig:"CONFIRM_INTERVAL" default:"2s"`
	ConfirmMaxAttempts int           `envconfig:"CONFIRM_MAX_ATTEMPTS" default:"60"`
	// GasLimit overrides estimation for contract invocations when non-zero
	GasLimit uint64 `envconfig:"GAS_LIMIT" default:"0"`

	PriceCurrency string `envconfig:"PRICE_CURRENCY" default:"usd"`
	PriceAPIURL   string `envconfig:"PRICE_API_URL"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c, err := Load()
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Load reads and validates the configuration without touching the global instance
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks values envconfig cannot
func (c *Config) Validate() error {
	if c.WalletFilePath == "" {
		return errors.New("WALLET_FILE_PATH must not be empty")
	}
	if c.RPCURL == "" {
		return errors.New("ETH_RPC_URL must not be empty")
	}
	if c.ChainID < 0 {
		return fmt.Errorf("CHAIN_ID must not be negative, got %d", c.ChainID)
	}
	if c.PayCooldown < 0 {
		return fmt.Errorf("PAY_COOLDOWN_MINUTES must not be negative, got %d", c.PayCooldown)
	}
	if c.ConfirmInterval <= 0 {
		return fmt.Errorf("CONFIRM_INTERVAL must be positive, got %s", c.ConfirmInterval)
	}
	if c.ConfirmMaxAttempts < 1 {
		return fmt.Errorf("CONFIRM_MAX_ATTEMPTS must be at least 1, got %d", c.ConfirmMaxAttempts)
	}
	return nil
}

// Encrypted reports whether the wallet file uses the password protected format
func (c *Config) Encrypted() bool {
	return strings.EqualFold(filepath.Ext(c.WalletFilePath), ".cwt")
}

// CooldownDuration returns PayCooldown as a duration
func (c *Config) CooldownDuration() time.Duration {
	return time.Duration(c.PayCooldown) * time.Minute
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetWalletFilePath returns path to the wallet file from configuration
func GetWalletFilePath() string {
	return Get().WalletFilePath
}

var passwordBytes []byte

// PromptForPassword prompts the user for the wallet password in the terminal.
// The password is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPassword() error {
	raw, err := ReadPassword("Enter wallet password: ")
	if err != nil {
		return err
	}
	SetPassword(raw)
	clear(raw)
	return nil
}

// ReadPassword reads one hidden line from the terminal
func ReadPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	return raw, nil
}

// SetPassword stores a copy of password in memory
func SetPassword(password []byte) {
	clear(passwordBytes)
	passwordBytes = make([]byte, len(password))
	copy(passwordBytes, password)
}

// ClearPassword wipes the stored password
func ClearPassword() {
	clear(passwordBytes)
	passwordBytes = nil
}

// GetPasswordBytes returns the password stored in memory (from PromptForPassword).
// Returns an error if the password was not set.
// Caller must zero the returned slice after use for security.
func GetPasswordBytes() ([]byte, error) {
	if len(passwordBytes) == 0 {
		return nil, errors.New("password not set: call PromptForPassword at startup")
	}
	out := make([]byte, len(passwordBytes))
	copy(out, passwordBytes)
	return out, nil
}
