package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"diceGameServer/crypto"
	"diceGameServer/game"

	"github.com/ethereum/go-ethereum/common"
)

/* =========================
   REQUEST/RESPONSE TYPES
========================= */

// OracleCallbackRequest is the randomness delivery payload. The
// signature is a 65-byte secp256k1 signature over
// keccak256(requestId || randomness); the caller identity is recovered
// from it, so a delivery that merely names the oracle address cannot
// settle anything.
type OracleCallbackRequest struct {
	RequestID  string `json:"requestId"`
	Randomness string `json:"randomness"`
	Signature  string `json:"signature"` // Hex, 65 bytes [R || S || V]
}

// OracleCallbackResponse acknowledges a delivery
type OracleCallbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

/* =========================
   ORACLE ENDPOINTS
========================= */

// HandleOracleCallback handles randomness deliveries from the remote
// coordinator
// POST /api/oracle/callback
func HandleOracleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req OracleCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.RequestID == "" || req.Randomness == "" || req.Signature == "" {
		sendError(w, http.StatusBadRequest, "requestId, randomness and signature are required")
		return
	}

	requestID := common.HexToHash(req.RequestID)
	randomness := common.HexToHash(req.Randomness)

	caller, err := crypto.RecoverDeliverer(requestID, randomness, common.FromHex(req.Signature))
	if err != nil {
		log.Printf("❌ Oracle callback signature invalid - Request: %s, Error: %v", requestID.Hex(), err)
		sendError(w, http.StatusForbidden, "Invalid delivery signature")
		return
	}

	if err := engine.ResolveWager(r.Context(), caller, requestID, randomness); err != nil {
		log.Printf("❌ Oracle callback rejected - Request: %s, Error: %v", requestID.Hex(), err)
		sendError(w, resolveErrorStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(OracleCallbackResponse{
		Success: true,
		Message: "Wager resolved",
	})
}

func resolveErrorStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, game.ErrUnknownRequest):
		return http.StatusNotFound
	case errors.Is(err, game.ErrAlreadyResolved):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
