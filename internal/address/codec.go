package address

import (
	"crypto/ecdsa"
	"encoding/hex"
	"strings"

	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Length is the size of an account id in bytes
const Length = common.AddressLength

// Derive computes the account id of a public key: Keccak-256 over the
// uncompressed point without its 0x04 prefix, keeping the low 20 bytes.
func Derive(pub *ecdsa.PublicKey) common.Address {
	uncompressed := crypto.FromECDSAPub(pub) // 0x04 || X || Y
	digest := crypto.Keccak256(uncompressed[1:])
	return common.BytesToAddress(digest[len(digest)-Length:])
}

// Parse validates a user-supplied account id. The 0x prefix is optional.
// Mixed-case input must carry a valid EIP-55 checksum.
func Parse(s string) (common.Address, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")

	if len(raw) != 2*Length {
		return common.Address{}, werr.New(werr.InvalidDestination,
			"address must be %d hex characters, got %d", 2*Length, len(raw))
	}
	if _, err := hex.DecodeString(raw); err != nil {
		return common.Address{}, werr.New(werr.InvalidDestination, "address contains non-hex characters")
	}

	addr := common.HexToAddress(raw)
	if isMixedCase(raw) && addr.Hex() != "0x"+raw {
		return common.Address{}, werr.New(werr.InvalidDestination, "address checksum mismatch, expected %s", addr.Hex())
	}
	return addr, nil
}

// Hex returns the persisted form of an account id: lowercase, no prefix
func Hex(addr common.Address) string {
	return hex.EncodeToString(addr.Bytes())
}

func isMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}
