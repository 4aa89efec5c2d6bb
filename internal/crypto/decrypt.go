package crypto

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/AlexZinkM/evm-wallet/internal/keystore"
	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/AlexZinkM/evm-wallet/internal/werr"
)

// Load reads and decrypts the .cwt file
func (s *EncryptedStorage) Load() (model.SecretRecord, error) {
	cwtFile, err := readCWTFile(s.Path)
	if err != nil {
		return model.SecretRecord{}, err
	}

	// Decode salt and nonce
	salt, err := base64.StdEncoding.DecodeString(cwtFile.Salt)
	if err != nil {
		return model.SecretRecord{}, werr.Wrap(werr.CorruptRecord, err, "failed to decode salt")
	}

	nonce, err := base64.StdEncoding.DecodeString(cwtFile.Nonce)
	if err != nil {
		return model.SecretRecord{}, werr.Wrap(werr.CorruptRecord, err, "failed to decode nonce")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(cwtFile.CipherText)
	if err != nil {
		return model.SecretRecord{}, werr.Wrap(werr.CorruptRecord, err, "failed to decode ciphertext")
	}

	aesGCM, err := s.newGCM(salt)
	if err != nil {
		return model.SecretRecord{}, err
	}
	if len(nonce) != aesGCM.NonceSize() {
		return model.SecretRecord{}, werr.New(werr.CorruptRecord, "nonce has wrong length %d", len(nonce))
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return model.SecretRecord{}, werr.New(werr.InvalidPassword, "invalid password")
	}
	defer clear(plaintext) // wipe decrypted bytes from memory

	var walletData model.WalletData
	if err := json.Unmarshal(plaintext, &walletData); err != nil {
		return model.SecretRecord{}, werr.Wrap(werr.CorruptRecord, err, "failed to unmarshal wallet data")
	}

	// the clear-text address must agree with the sealed one
	if walletData.Record.Address != cwtFile.Address {
		return model.SecretRecord{}, werr.New(werr.CorruptRecord, "file address does not match encrypted record")
	}

	return walletData.Record, nil
}

// Rekey re-encrypts the wallet under a new password.
// The receiver keeps using the new password afterwards.
func (s *EncryptedStorage) Rekey(newPassword []byte) error {
	if len(newPassword) == 0 {
		return fmt.Errorf("password cannot be empty")
	}

	rec, err := s.Load()
	if err != nil {
		return err
	}

	next := &EncryptedStorage{Path: s.Path, Overwrite: true, ScryptN: s.ScryptN, password: newPassword}
	if err := next.Save(rec); err != nil {
		return err
	}

	clear(s.password)
	s.password = make([]byte, len(newPassword))
	copy(s.password, newPassword)
	return nil
}

// Address returns the clear-text account id of the wallet file
func (s *EncryptedStorage) Address() (string, error) {
	return ReadWalletAddress(s.Path)
}

// ReadWalletAddress reads only the address from .cwt file (without decryption)
func ReadWalletAddress(filePath string) (string, error) {
	cwtFile, err := readCWTFile(filePath)
	if err != nil {
		return "", err
	}
	return cwtFile.Address, nil
}

func readCWTFile(filePath string) (*model.CWTFile, error) {
	fileData, err := keystore.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cwtFile model.CWTFile
	if err := json.Unmarshal(fileData, &cwtFile); err != nil {
		return nil, werr.Wrap(werr.CorruptRecord, err, "failed to unmarshal cwt file")
	}
	if cwtFile.Network != network {
		return nil, werr.New(werr.CorruptRecord, "unsupported network %q", cwtFile.Network)
	}
	return &cwtFile, nil
}
