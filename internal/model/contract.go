package model

// ContractInfo describes a registered contract
type ContractInfo struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Functions []string `json:"functions"`
}

// ContractsResponse represents response for GET /ethereum/contracts
type ContractsResponse struct {
	Contracts []ContractInfo `json:"contracts"`
}

// FunctionsResponse represents response for GET /ethereum/contracts/functions
type FunctionsResponse struct {
	Contract  string   `json:"contract"`
	Functions []string `json:"functions"`
}

// CallRequest represents request for POST /ethereum/contracts/call and /invoke.
// Args are textual: integers in decimal or 0x hex, addresses and bytes in hex.
type CallRequest struct {
	Contract string   `json:"contract" binding:"required"`
	Function string   `json:"function" binding:"required"`
	Args     []string `json:"args"`
	// Value is only used by invoke, for payable functions
	Value string `json:"value,omitempty"`
}

// CallResponse represents response for POST /ethereum/contracts/call
type CallResponse struct {
	Contract string   `json:"contract"`
	Function string   `json:"function"`
	Results  []string `json:"results"`
}
