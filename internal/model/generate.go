package model

// GenerateResponse represents response for POST .../generate
type GenerateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Address string `json:"address,omitempty"`
	// QR is a base64 PNG of the address
	QR string `json:"qr,omitempty"`
}
