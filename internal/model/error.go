package model

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	// TxHash is set when the failure happened after the transaction was broadcast
	TxHash string `json:"txHash,omitempty"`
}
