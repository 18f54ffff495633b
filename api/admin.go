package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"diceGameServer/game"

	"github.com/ethereum/go-ethereum/common"
)

/* =========================
   REQUEST/RESPONSE TYPES
========================= */

// SetParamServiceRequest replaces the parameter registry reference
type SetParamServiceRequest struct {
	Caller  string `json:"caller"`
	Address string `json:"address"`
}

// SetParamServiceResponse acknowledges the change
type SetParamServiceResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

/* =========================
   ADMIN ENDPOINTS
========================= */

// HandleSetParameterService handles parameter registry swaps
// POST /api/admin/paramservice
func HandleSetParameterService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SetParamServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !common.IsHexAddress(req.Caller) || !common.IsHexAddress(req.Address) {
		sendError(w, http.StatusBadRequest, "Valid caller and address are required")
		return
	}

	caller := common.HexToAddress(req.Caller)
	target := common.HexToAddress(req.Address)

	if err := engine.SetParameterService(r.Context(), caller, target); err != nil {
		log.Printf("❌ Parameter service change rejected: %v", err)
		sendError(w, adminErrorStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SetParamServiceResponse{
		Success: true,
		Message: "Parameter service updated",
	})
}

func adminErrorStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, game.ErrInvalidEndpoint):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
