package keystore

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlexZinkM/evm-wallet/internal/address"
	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const privateKeyLen = 32

// ErrEntropy marks a failed read from the randomness source
var ErrEntropy = errors.New("entropy source failed")

// Keypair holds a secp256k1 private key. The public key and account id are
// always derived from it and cannot be set independently.
type Keypair struct {
	key *ecdsa.PrivateKey
}

// Generate creates a keypair from crypto/rand
func Generate() (*Keypair, error) {
	return GenerateFrom(rand.Reader)
}

// GenerateFrom creates a keypair from the given entropy source.
// A failing source is returned as an error; the caller must not continue.
func GenerateFrom(entropy io.Reader) (*Keypair, error) {
	key, err := ecdsa.GenerateKey(crypto.S256(), entropy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEntropy, err)
	}
	return &Keypair{key: key}, nil
}

// Restore rebuilds a keypair from a hex encoded 32-byte secret (0x prefix optional)
func Restore(secretHex string) (*Keypair, error) {
	s := strings.TrimSpace(secretHex)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s) != 2*privateKeyLen {
		return nil, werr.New(werr.InvalidKeyFormat, "private key must be %d hex characters, got %d", 2*privateKeyLen, len(s))
	}

	secret, err := hex.DecodeString(s)
	if err != nil {
		return nil, werr.New(werr.InvalidKeyFormat, "private key contains non-hex characters")
	}
	defer clear(secret)

	// ToECDSA rejects zero and scalars >= curve order
	key, err := crypto.ToECDSA(secret)
	if err != nil {
		return nil, werr.Wrap(werr.InvalidKeyFormat, err, "private key out of range")
	}
	return &Keypair{key: key}, nil
}

// PublicKey returns the public point derived from the private key
func (k *Keypair) PublicKey() *ecdsa.PublicKey {
	return &k.key.PublicKey
}

// PrivateKey returns the signing key. Callers must not log or persist it.
func (k *Keypair) PrivateKey() *ecdsa.PrivateKey {
	return k.key
}

// Address recomputes the account id from the public key
func (k *Keypair) Address() common.Address {
	return address.Derive(&k.key.PublicKey)
}

// Wipe zeroes the private scalar. The keypair is unusable afterwards.
func (k *Keypair) Wipe() {
	if k == nil || k.key == nil || k.key.D == nil {
		return
	}
	clear(k.key.D.Bits())
	k.key.D.SetInt64(0)
}

// String never prints the secret
func (k *Keypair) String() string {
	return "Keypair(" + k.Address().Hex() + ")"
}

func (k *Keypair) GoString() string {
	return k.String()
}

// Export produces the persisted record for a keypair
func Export(k *Keypair) model.SecretRecord {
	return model.SecretRecord{
		PrivateKey: hex.EncodeToString(crypto.FromECDSA(k.key)),
		Address:    address.Hex(k.Address()),
	}
}

// Import validates a persisted record and rebuilds its keypair
func Import(rec model.SecretRecord) (*Keypair, error) {
	kp, err := Restore(rec.PrivateKey)
	if err != nil {
		return nil, err
	}

	stored := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(rec.Address), "0x"))
	if stored != address.Hex(kp.Address()) {
		kp.Wipe()
		return nil, werr.New(werr.CorruptRecord, "stored address %q does not match private key", rec.Address)
	}
	return kp, nil
}
