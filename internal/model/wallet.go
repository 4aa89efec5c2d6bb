package model

// SecretRecord is the plain persisted form of a keypair.
// Both fields are lowercase hex without 0x prefix.
type SecretRecord struct {
	PrivateKey string `json:"privateKey"`
	Address    string `json:"address"`
}

// CWTFile represents .cwt file structure
type CWTFile struct {
	Network    string `json:"network"`
	Address    string `json:"address"`
	QR         string `json:"QR"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

// WalletData represents decrypted wallet data
type WalletData struct {
	Record    SecretRecord `json:"record"`
	CreatedAt string       `json:"createdAt"`
}
