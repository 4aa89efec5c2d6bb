package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/AlexZinkM/evm-wallet/ethereum"
	"github.com/AlexZinkM/evm-wallet/internal/keystore"
	"github.com/AlexZinkM/evm-wallet/internal/model"
	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"go.uber.org/zap"
)

// EthereumHandler serves wallet operations over HTTP for the wallet in storage
type EthereumHandler struct {
	svc     *ethereum.Service
	storage keystore.Storage
	log     *zap.Logger
}

// NewEthereumHandler creates a new EthereumHandler
func NewEthereumHandler(svc *ethereum.Service, storage keystore.Storage, log *zap.Logger) (*EthereumHandler, error) {
	if svc == nil {
		return nil, errors.New("service is required")
	}
	if storage == nil {
		return nil, errors.New("wallet storage is required (set WALLET_FILE_PATH)")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EthereumHandler{svc: svc, storage: storage, log: log.Named("handler")}, nil
}

// Generate handles POST /ethereum/generate
// @Summary      Generate new wallet
// @Description  Generates a new Ethereum wallet and saves it to the configured file (.cwt is encrypted)
// @Tags         ethereum
// @Produce      json
// @Success      200  {object}  model.GenerateResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /ethereum/generate [post]
func (h *EthereumHandler) Generate(w http.ResponseWriter, r *http.Request) {
	session := ethereum.NewSession()
	defer session.Close()

	resp, err := h.svc.GenerateWallet(session, h.storage)
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetBalance handles GET /ethereum/balance
// @Summary      Get wallet balance
// @Description  Gets the ETH balance of the wallet (or of ?address=) with its fiat value
// @Tags         ethereum
// @Produce      json
// @Param        address  query     string  false  "Account to query instead of the wallet"
// @Success      200      {object}  model.BalanceResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /ethereum/balance [get]
func (h *EthereumHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("address")
	if account == "" {
		var err error
		account, err = ethereum.WalletAddress(h.storage)
		if err != nil {
			h.writeError(w, err, "")
			return
		}
	}

	balance, err := h.svc.GetBalance(r.Context(), account)
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// Pay handles POST /ethereum/pay
// @Summary      Send ETH
// @Description  Sends ETH to the specified address. Amount is wei unless suffixed with gwei or eth.
// @Tags         ethereum
// @Accept       json
// @Produce      json
// @Param        request  body      model.PayRequest  true  "Payment data"
// @Success      200      {object}  model.PayResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      422      {object}  model.ErrorResponse
// @Failure      429      {object}  model.ErrorResponse
// @Failure      504      {object}  model.ErrorResponse
// @Router       /ethereum/pay [post]
func (h *EthereumHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req model.PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, werr.Wrap(werr.InvalidArgument, err, "invalid request body"), "")
		return
	}

	wait := true
	if req.Wait != nil {
		wait = *req.Wait
	}

	session, err := h.load()
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	defer session.Close()

	resp, err := h.svc.Pay(r.Context(), session, req.ToAddress, req.Amount, wait)
	if err != nil {
		h.writeError(w, err, txHash(resp))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListContracts handles GET /ethereum/contracts
// @Summary      List contracts
// @Description  Lists the registered contracts and their callable functions
// @Tags         contracts
// @Produce      json
// @Success      200  {object}  model.ContractsResponse
// @Router       /ethereum/contracts [get]
func (h *EthereumHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListContracts())
}

// ListFunctions handles GET /ethereum/contracts/functions
// @Summary      List contract functions
// @Tags         contracts
// @Produce      json
// @Param        name  query     string  true  "Contract name (case-sensitive)"
// @Success      200   {object}  model.FunctionsResponse
// @Failure      404   {object}  model.ErrorResponse
// @Router       /ethereum/contracts/functions [get]
func (h *EthereumHandler) ListFunctions(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.ListFunctions(r.URL.Query().Get("name"))
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Call handles POST /ethereum/contracts/call
// @Summary      Query a contract
// @Description  Runs a read-only contract function; nothing is signed or sent
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        request  body      model.CallRequest  true  "Contract call"
// @Success      200      {object}  model.CallResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      404      {object}  model.ErrorResponse
// @Router       /ethereum/contracts/call [post]
func (h *EthereumHandler) Call(w http.ResponseWriter, r *http.Request) {
	var req model.CallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, werr.Wrap(werr.InvalidArgument, err, "invalid request body"), "")
		return
	}

	resp, err := h.svc.Call(r.Context(), nil, req)
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Invoke handles POST /ethereum/contracts/invoke
// @Summary      Invoke a contract
// @Description  Signs and sends a state changing contract call and waits for its receipt
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        request  body      model.CallRequest  true  "Contract call"
// @Success      200      {object}  model.PayResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      422      {object}  model.ErrorResponse
// @Failure      504      {object}  model.ErrorResponse
// @Router       /ethereum/contracts/invoke [post]
func (h *EthereumHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	var req model.CallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, werr.Wrap(werr.InvalidArgument, err, "invalid request body"), "")
		return
	}

	session, err := h.load()
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	defer session.Close()

	resp, err := h.svc.Invoke(r.Context(), session, req)
	if err != nil {
		h.writeError(w, err, txHash(resp))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// load decrypts the wallet into a request scoped session
func (h *EthereumHandler) load() (*ethereum.Session, error) {
	session := ethereum.NewSession()
	if _, err := h.svc.LoadWallet(session, h.storage); err != nil {
		return nil, err
	}
	return session, nil
}

func (h *EthereumHandler) writeError(w http.ResponseWriter, err error, hash string) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		h.log.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}

	writeJSON(w, status, model.ErrorResponse{
		Error:  err.Error(),
		Code:   string(werr.KindOf(err)),
		TxHash: hash,
	})
}

// StatusFor maps an error kind to an HTTP status
func StatusFor(err error) int {
	switch werr.KindOf(err) {
	case werr.InvalidKeyFormat, werr.InvalidDestination, werr.InvalidAmount,
		werr.InvalidArgument, werr.UnknownFunction:
		return http.StatusBadRequest
	case werr.UnknownContract:
		return http.StatusNotFound
	case werr.DuplicateName, werr.WalletNotLoaded:
		return http.StatusConflict
	case werr.StorageFailure:
		if errors.Is(err, os.ErrExist) {
			return http.StatusConflict
		}
		if errors.Is(err, os.ErrNotExist) {
			return http.StatusNotFound
		}
		return http.StatusInternalServerError
	case werr.InvalidPassword:
		return http.StatusUnauthorized
	case werr.CooldownActive:
		return http.StatusTooManyRequests
	case werr.SubmissionRejected, werr.ExecutionReverted:
		return http.StatusUnprocessableEntity
	case werr.TransportFailure:
		return http.StatusBadGateway
	case werr.ConfirmationTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func txHash(resp *model.PayResponse) string {
	if resp == nil {
		return ""
	}
	return resp.TxHash
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
