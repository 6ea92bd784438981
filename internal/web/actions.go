package web

import (
	"encoding/json"
	"net/http"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/yvault/internal/types"
	"github.com/elys-network/yvault/internal/utils"
)

// actionRequest is the body of the simulation endpoints. Caller is not authenticated.
type actionRequest struct {
	Caller types.Address `json:"caller"`
	Amount string        `json:"amount,omitempty"` // Deposit amount in base units
	Shares string        `json:"shares,omitempty"` // Shares to withdraw
	Epochs uint32        `json:"epochs,omitempty"`
}

func (ws *WebServer) decodeAction(w http.ResponseWriter, r *http.Request) (actionRequest, bool) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if req.Caller.Empty() {
		ws.writeErrorResponse(w, http.StatusBadRequest, "caller is required")
		return req, false
	}
	return req, true
}

func (ws *WebServer) parseAmount(w http.ResponseWriter, field, value string) (sdkmath.Int, bool) {
	amount, err := utils.ParseAmount(value)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid "+field+": "+err.Error())
		return sdkmath.ZeroInt(), false
	}
	return amount, true
}

// handleApprove sets the vault's allowance over the caller's balance. Deposits pull against it.
func (ws *WebServer) handleApprove(w http.ResponseWriter, r *http.Request) {
	if !ws.requireLedger(w) {
		return
	}
	req, ok := ws.decodeAction(w, r)
	if !ok {
		return
	}
	amount, ok := ws.parseAmount(w, "amount", req.Amount)
	if !ok {
		return
	}

	spender := ws.vault.Address()
	if err := ws.ledger.Approve(r.Context(), req.Caller, spender, amount); err != nil {
		ws.writeVaultError(w, "approve", err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"owner":     req.Caller,
		"spender":   spender,
		"allowance": amount,
	})
}

func (ws *WebServer) handleDeposit(w http.ResponseWriter, r *http.Request) {
	req, ok := ws.decodeAction(w, r)
	if !ok {
		return
	}
	amount, ok := ws.parseAmount(w, "amount", req.Amount)
	if !ok {
		return
	}

	minted, err := ws.vault.Deposit(r.Context(), req.Caller, amount)
	if err != nil {
		ws.writeVaultError(w, "deposit", err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"shares": minted})
}

func (ws *WebServer) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	req, ok := ws.decodeAction(w, r)
	if !ok {
		return
	}
	shares, ok := ws.parseAmount(w, "shares", req.Shares)
	if !ok {
		return
	}

	net, err := ws.vault.Withdraw(r.Context(), req.Caller, shares)
	if err != nil {
		ws.writeVaultError(w, "withdraw", err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"amount": net})
}

func (ws *WebServer) handleEarn(w http.ResponseWriter, r *http.Request) {
	req, ok := ws.decodeAction(w, r)
	if !ok {
		return
	}

	deployed, err := ws.vault.Earn(r.Context(), req.Caller)
	if err != nil {
		ws.writeVaultError(w, "earn", err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"deployed": deployed})
}

func (ws *WebServer) handleHarvest(w http.ResponseWriter, r *http.Request) {
	req, ok := ws.decodeAction(w, r)
	if !ok {
		return
	}

	event, err := ws.vault.Harvest(r.Context(), req.Caller)
	if err != nil {
		ws.writeVaultError(w, "harvest", err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, event)
}

func (ws *WebServer) handleDistribute(w http.ResponseWriter, r *http.Request) {
	req, ok := ws.decodeAction(w, r)
	if !ok {
		return
	}
	if req.Epochs == 0 {
		req.Epochs = 1
	}

	if err := ws.vault.Distribute(r.Context(), req.Caller, req.Epochs); err != nil {
		ws.writeVaultError(w, "distribute", err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"epochs": req.Epochs})
}

func (ws *WebServer) handlePause(w http.ResponseWriter, r *http.Request) {
	req, ok := ws.decodeAction(w, r)
	if !ok {
		return
	}
	if err := ws.vault.Pause(req.Caller); err != nil {
		ws.writeVaultError(w, "pause", err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"status": types.VaultPaused})
}

func (ws *WebServer) handleUnpause(w http.ResponseWriter, r *http.Request) {
	req, ok := ws.decodeAction(w, r)
	if !ok {
		return
	}
	if err := ws.vault.Unpause(req.Caller); err != nil {
		ws.writeVaultError(w, "unpause", err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"status": types.VaultActive})
}

// statusForError maps vault errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errorsmod.IsOf(err, types.ErrUnauthorized):
		return http.StatusForbidden
	case errorsmod.IsOf(err, types.ErrInvalidAmount, types.ErrInvalidAddress, types.ErrInvalidFeeConfig):
		return http.StatusBadRequest
	case errorsmod.IsOf(err, types.ErrVaultPaused, types.ErrReentrantCall, types.ErrStrategyNotSet, types.ErrStrategyNotEmpty):
		return http.StatusConflict
	case errorsmod.IsOf(err, types.ErrInsufficientShares, types.ErrInsufficientLiquidity):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func (ws *WebServer) writeVaultError(w http.ResponseWriter, operation string, err error) {
	status := statusForError(err)
	ws.logger.Warn().Err(err).Str("operation", operation).Int("status", status).Msg("Vault operation rejected")
	ws.writeErrorResponse(w, status, err.Error())
}
