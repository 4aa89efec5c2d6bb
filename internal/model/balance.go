package model

// BalanceResponse represents response for GET /ethereum/balance
type BalanceResponse struct {
	Address string `json:"address"`
	Wei     string `json:"wei"`
	ETH     string `json:"eth"`
	// Rate and Fiat are empty when the price source is unavailable
	Currency string `json:"currency,omitempty"`
	Rate     string `json:"rate,omitempty"`
	Fiat     string `json:"eth_amount_in_currency,omitempty"`
}
