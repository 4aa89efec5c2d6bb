package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/common"
	"github.com/AlexZinkM/evm-wallet/internal/keystore"
	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters for local wallet
	// Security is prioritized over performance
	//
	// N=2^18 (~256MB RAM, 0.5-2s) - optimal balance:
	//   - Maximum security while remaining compatible with mobile devices
	//   - Works on phones (4-16GB RAM) and desktops alike
	//   - Brute-force attacks remain extremely expensive
	DefaultScryptN = 1 << 18
	scryptR        = 8
	scryptP        = 1
	scryptKeyLen   = 32
	saltLen        = 32
	nonceLen       = 12

	// Extension is the required suffix of encrypted wallet files
	Extension = ".cwt"
	network   = "ethereum"
)

// EncryptedStorage keeps the secret record inside a password protected .cwt file.
// The account id and its QR code stay readable without the password.
type EncryptedStorage struct {
	Path string
	// Overwrite allows replacing a non-empty file
	Overwrite bool
	// ScryptN is the scrypt cost parameter, DefaultScryptN when zero
	ScryptN int

	password []byte
}

// NewEncryptedStorage creates storage for a .cwt file.
// password is copied; call Close to zero the copy.
func NewEncryptedStorage(path string, password []byte) (*EncryptedStorage, error) {
	if !strings.HasSuffix(path, Extension) {
		return nil, fmt.Errorf("file must have %s extension", Extension)
	}
	if len(password) == 0 {
		return nil, fmt.Errorf("password cannot be empty")
	}

	pw := make([]byte, len(password))
	copy(pw, password)
	return &EncryptedStorage{Path: path, password: pw}, nil
}

// Close zeroes the stored password
func (s *EncryptedStorage) Close() {
	clear(s.password)
}

// Save encrypts rec and writes it to the .cwt file
func (s *EncryptedStorage) Save(rec model.SecretRecord) error {
	if !s.Overwrite {
		if fileInfo, err := os.Stat(s.Path); err == nil && fileInfo.Size() > 0 {
			return werr.Wrap(werr.StorageFailure, os.ErrExist, "file %s is not empty", s.Path)
		}
	}

	qrCode, err := common.QRCodeBase64("0x" + rec.Address)
	if err != nil {
		return werr.Wrap(werr.StorageFailure, err, "failed to generate QR code")
	}

	// Generate salt and nonce
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := s.newGCM(salt)
	if err != nil {
		return err
	}

	plaintext, err := json.Marshal(&model.WalletData{
		Record:    rec,
		CreatedAt: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal wallet data: %w", err)
	}
	defer clear(plaintext) // wipe plaintext bytes from memory

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	cwtFile := model.CWTFile{
		Network:    network,
		Address:    rec.Address,
		QR:         qrCode,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
	}

	fileData, err := json.MarshalIndent(cwtFile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cwt file: %w", err)
	}

	// Add UTF-8 BOM for proper display in Windows
	utf8BOM := []byte{0xEF, 0xBB, 0xBF}
	if err := keystore.WriteFileAtomic(s.Path, append(utf8BOM, fileData...), 0600); err != nil {
		return werr.Wrap(werr.StorageFailure, err, "failed to write file")
	}

	return nil
}

// newGCM derives the file key from the password and salt
func (s *EncryptedStorage) newGCM(salt []byte) (cipher.AEAD, error) {
	n := s.ScryptN
	if n == 0 {
		n = DefaultScryptN
	}

	key, err := scrypt.Key(s.password, salt, n, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
