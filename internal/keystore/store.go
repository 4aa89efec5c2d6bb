package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/AlexZinkM/evm-wallet/internal/werr"
)

// Storage persists a single secret record
type Storage interface {
	Save(rec model.SecretRecord) error
	Load() (model.SecretRecord, error)
}

// AddressReader is implemented by storages that can report the stored
// account id without exposing the secret
type AddressReader interface {
	Address() (string, error)
}

// Store moves keypairs in and out of a Storage, validating on the way in.
type Store struct {
	storage Storage
}

// NewStore creates a Store on top of storage
func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Save exports kp and writes it
func (s *Store) Save(kp *Keypair) error {
	if err := s.storage.Save(Export(kp)); err != nil {
		return fmt.Errorf("failed to save wallet: %w", err)
	}
	return nil
}

// Load reads the record and rebuilds its keypair
func (s *Store) Load() (*Keypair, error) {
	rec, err := s.storage.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	return Import(rec)
}

// FileStorage keeps the record as a plain JSON document.
// Writes go to a temp file in the same directory and are renamed into place.
type FileStorage struct {
	Path string
	// Overwrite allows replacing a non-empty file
	Overwrite bool
}

// NewFileStorage creates storage for path
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{Path: path}
}

func (f *FileStorage) Save(rec model.SecretRecord) error {
	if !f.Overwrite {
		if info, err := os.Stat(f.Path); err == nil && info.Size() > 0 {
			return werr.Wrap(werr.StorageFailure, os.ErrExist, "file %s is not empty", f.Path)
		}
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return werr.Wrap(werr.StorageFailure, err, "failed to marshal secret record")
	}
	defer clear(data)

	if err := WriteFileAtomic(f.Path, data, 0600); err != nil {
		return werr.Wrap(werr.StorageFailure, err, "failed to write %s", f.Path)
	}
	return nil
}

func (f *FileStorage) Load() (model.SecretRecord, error) {
	var rec model.SecretRecord

	data, err := ReadFile(f.Path)
	if err != nil {
		return rec, err
	}
	defer clear(data)

	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, werr.Wrap(werr.CorruptRecord, err, "failed to unmarshal secret record")
	}
	if rec.PrivateKey == "" || rec.Address == "" {
		return rec, werr.New(werr.CorruptRecord, "secret record is missing privateKey or address")
	}
	return rec, nil
}

// Address returns the stored account id
func (f *FileStorage) Address() (string, error) {
	rec, err := f.Load()
	if err != nil {
		return "", err
	}
	return rec.Address, nil
}

// ReadFile reads a wallet file, rejecting missing or empty files and
// skipping a UTF-8 BOM if present.
func ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, werr.Wrap(werr.StorageFailure, err, "file does not exist")
		}
		return nil, werr.Wrap(werr.StorageFailure, err, "failed to stat file")
	}
	if info.Size() == 0 {
		return nil, werr.New(werr.StorageFailure, "file is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, werr.Wrap(werr.StorageFailure, err, "failed to read file")
	}

	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	return data, nil
}

// WriteFileAtomic writes data to a temp file next to path, syncs it and renames it over path
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
