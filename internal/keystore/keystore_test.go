package keystore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AlexZinkM/evm-wallet/internal/address"
	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPrivHex = "289c2857d4598e37fb9647507e47a309d6133539bf21a8b9cb6df88fd5232032"
	testAddrHex = "970e8128ab834e8eac17ab8e3812f010678cf791"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy unavailable") }

func TestGenerate(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	assert.NotEqual(t, a.Address(), b.Address(), "two generated keypairs must differ")
	assert.Equal(t, address.Derive(a.PublicKey()), a.Address())
}

func TestGenerateFromFailingEntropy(t *testing.T) {
	kp, err := GenerateFrom(failingReader{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEntropy)
	assert.Nil(t, kp)
}

func TestRestoreDeterministic(t *testing.T) {
	a, err := Restore(testPrivHex)
	require.NoError(t, err)
	b, err := Restore("0x" + testPrivHex)
	require.NoError(t, err)
	c, err := Restore(" 0X" + strings.ToUpper(testPrivHex))
	require.NoError(t, err)

	assert.Equal(t, testAddrHex, address.Hex(a.Address()))
	assert.Equal(t, a.Address(), b.Address())
	assert.Equal(t, a.Address(), c.Address())
}

func TestRestoreInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"too short", testPrivHex[:62]},
		{"too long", testPrivHex + "00"},
		{"non hex", "zz" + testPrivHex[2:]},
		{"zero scalar", strings.Repeat("0", 64)},
		{"curve order", "fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"},
		{"above curve order", strings.Repeat("f", 64)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kp, err := Restore(tt.input)
			require.Error(t, err)
			assert.Nil(t, kp)
			assert.True(t, werr.Is(err, werr.InvalidKeyFormat), "unexpected kind: %v", err)
		})
	}
}

func TestRestoreErrorDoesNotLeakSecret(t *testing.T) {
	secret := "zz" + testPrivHex[2:]
	_, err := Restore(secret)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), testPrivHex[2:])
}

func TestExportImportRoundTrip(t *testing.T) {
	generated, err := Generate()
	require.NoError(t, err)
	restored, err := Restore(testPrivHex)
	require.NoError(t, err)

	for _, kp := range []*Keypair{generated, restored} {
		rec := Export(kp)
		assert.Len(t, rec.PrivateKey, 64)
		assert.Len(t, rec.Address, 40)
		assert.False(t, strings.HasPrefix(rec.Address, "0x"))

		imported, err := Import(rec)
		require.NoError(t, err)
		assert.Equal(t, kp.Address(), imported.Address())
	}
}

func TestImportCorruptRecord(t *testing.T) {
	rec := model.SecretRecord{PrivateKey: testPrivHex, Address: strings.Repeat("1", 40)}
	_, err := Import(rec)
	require.Error(t, err)
	assert.True(t, werr.Is(err, werr.CorruptRecord))

	// a checksummed or prefixed copy of the right address is accepted
	rec.Address = "0x970E8128AB834E8EAC17Ab8E3812F010678CF791"
	_, err = Import(rec)
	require.NoError(t, err)

	rec.PrivateKey = "abc"
	_, err = Import(rec)
	assert.True(t, werr.Is(err, werr.InvalidKeyFormat))
}

func TestKeypairStringHidesSecret(t *testing.T) {
	kp, err := Restore(testPrivHex)
	require.NoError(t, err)

	for _, s := range []string{kp.String(), fmt.Sprintf("%v", kp), fmt.Sprintf("%#v", kp)} {
		assert.NotContains(t, s, testPrivHex)
	}
}

func TestWipe(t *testing.T) {
	kp, err := Restore(testPrivHex)
	require.NoError(t, err)
	kp.Wipe()
	assert.Equal(t, 0, kp.PrivateKey().D.Sign())
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")
	store := NewStore(NewFileStorage(path))

	kp, err := Restore(testPrivHex)
	require.NoError(t, err)
	require.NoError(t, store.Save(kp))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"privateKey": "`+testPrivHex+`"`)
	assert.Contains(t, string(data), `"address": "`+testAddrHex+`"`)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), loaded.Address())

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStorageRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))

	kp, err := Generate()
	require.NoError(t, err)

	err = NewStore(NewFileStorage(path)).Save(kp)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrExist)

	fs := NewFileStorage(path)
	fs.Overwrite = true
	require.NoError(t, NewStore(fs).Save(kp))
}

func TestFileStorageLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFileStorage(filepath.Join(dir, "missing.json")).Load()
	assert.True(t, werr.Is(err, werr.StorageFailure))

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0600))
	_, err = NewFileStorage(empty).Load()
	assert.True(t, werr.Is(err, werr.StorageFailure))

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("not json"), 0600))
	_, err = NewFileStorage(garbage).Load()
	assert.True(t, werr.Is(err, werr.CorruptRecord))

	tampered := filepath.Join(dir, "tampered.json")
	require.NoError(t, os.WriteFile(tampered,
		[]byte(`{"privateKey":"`+testPrivHex+`","address":"`+strings.Repeat("2", 40)+`"}`), 0600))
	_, err = NewStore(NewFileStorage(tampered)).Load()
	assert.True(t, werr.Is(err, werr.CorruptRecord))
}

func TestReadFileSkipsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.json")
	body := []byte(`{"privateKey":"` + testPrivHex + `","address":"` + testAddrHex + `"}`)
	require.NoError(t, os.WriteFile(path, append([]byte{0xEF, 0xBB, 0xBF}, body...), 0600))

	data, err := ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(body, data))

	kp, err := NewStore(NewFileStorage(path)).Load()
	require.NoError(t, err)
	assert.Equal(t, testAddrHex, address.Hex(kp.Address()))
}
