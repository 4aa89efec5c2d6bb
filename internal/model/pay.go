package model

// PayRequest represents request for POST /ethereum/pay.
// Amount is wei unless suffixed with gwei or eth, e.g. "0.01 eth".
type PayRequest struct {
	ToAddress string `json:"toAddress" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	// Wait blocks until the transaction is mined; nil means true
	Wait *bool `json:"wait,omitempty"`
}

// PayResponse represents response for POST /ethereum/pay
type PayResponse struct {
	TxHash      string `json:"txHash"`
	Status      string `json:"status"`
	BlockNumber uint64 `json:"blockNumber,omitempty"`
	GasUsed     uint64 `json:"gasUsed,omitempty"`
}
