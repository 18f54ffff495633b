package api

import (
	"encoding/json"
	"errors"
	"log"
	"math/big"
	"net/http"
	"strconv"

	"diceGameServer/db"
	"diceGameServer/game"

	"github.com/ethereum/go-ethereum/common"
)

var engine *game.Engine

// SetEngine wires the wager engine into the handlers
func SetEngine(e *game.Engine) {
	engine = e
}

/* =========================
   REQUEST/RESPONSE TYPES
========================= */

// DicePlaceRequest represents a wager placement request
type DicePlaceRequest struct {
	Address  string `json:"address"`
	Number   int    `json:"number"`
	Amount   string `json:"amount"` // Wei as string
	RollOver bool   `json:"rollOver"`
}

// DicePlaceResponse represents a wager placement response
type DicePlaceResponse struct {
	Success     bool   `json:"success"`
	RequestID   string `json:"requestId"`
	Multiplier  uint64 `json:"multiplier"`
	ExpectedWin string `json:"expectedWin"` // Wei as string
}

// WagerStatusResponse represents a wager lookup response
type WagerStatusResponse struct {
	Success bool                   `json:"success"`
	Wager   *db.WagerHistoryRecord `json:"wager"`
}

// VerifyResponse represents an outcome verification response
type VerifyResponse struct {
	Success     bool   `json:"success"`
	DrawnNumber int    `json:"drawnNumber"`
	Randomness  string `json:"randomness"`
	Participant string `json:"participant"`
	GameID      uint64 `json:"gameId"`
}

// StatsResponse reports the engine's running volume counters
type StatsResponse struct {
	Success      bool   `json:"success"`
	TotalStaked  string `json:"totalStaked"`  // Wei as string
	TotalPaidOut string `json:"totalPaidOut"` // Wei as string
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

/* =========================
   DICE ENDPOINTS
========================= */

// HandleDicePlace handles wager placement
// POST /api/dice/place
func HandleDicePlace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req DicePlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !common.IsHexAddress(req.Address) {
		sendError(w, http.StatusBadRequest, "Valid address is required")
		return
	}
	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		sendError(w, http.StatusBadRequest, "Amount must be a positive wei value")
		return
	}

	participant := common.HexToAddress(req.Address)

	requestID, err := engine.PlaceWager(r.Context(), participant, req.Number, amount, req.RollOver)
	if err != nil {
		log.Printf("❌ Wager rejected for %s: %v", participant.Hex(), err)
		sendError(w, placeErrorStatus(err), err.Error())
		return
	}

	multiplier := game.Multiplier(req.Number, req.RollOver)
	response := DicePlaceResponse{
		Success:     true,
		RequestID:   requestID.Hex(),
		Multiplier:  multiplier,
		ExpectedWin: game.ExpectedWin(amount, multiplier).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleGetWager handles wager status lookups
// GET /api/dice/wager/:requestId
func HandleGetWager(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	requestID := r.URL.Path[len("/api/dice/wager/"):]
	if requestID == "" {
		sendError(w, http.StatusBadRequest, "Request ID is required")
		return
	}

	// Redis mirror fast path: a hit means the wager is still pending
	// (the mirror entry is dropped at settlement)
	if pending, err := db.GetPendingWager(r.Context(), requestID); err != nil {
		log.Printf("⚠️  Pending mirror lookup failed for %s: %v", requestID, err)
	} else if pending != nil {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(WagerStatusResponse{Success: true, Wager: &db.WagerHistoryRecord{
			RequestID:    pending.RequestID,
			Participant:  pending.Participant,
			ChosenNumber: pending.ChosenNumber,
			Amount:       pending.Amount,
			Multiplier:   pending.Multiplier,
			ExpectedWin:  pending.ExpectedWin,
			RollOver:     pending.RollOver,
			Status:       "pending",
			CreatedAt:    pending.PlacedAt,
		}})
		return
	}

	record, err := db.GetWager(r.Context(), requestID)
	if err != nil {
		log.Printf("❌ Failed to get wager %s: %v", requestID, err)
		sendError(w, http.StatusInternalServerError, "Failed to retrieve wager")
		return
	}
	if record == nil {
		// Not yet flushed to Postgres (or Postgres disabled): fall back
		// to the engine's live table
		live, ok := engine.Wager(common.HexToHash(requestID))
		if !ok {
			sendError(w, http.StatusNotFound, "Wager not found")
			return
		}
		record = &db.WagerHistoryRecord{
			RequestID:    live.RequestID.Hex(),
			Participant:  live.Participant.Hex(),
			ChosenNumber: live.ChosenNumber,
			Amount:       live.Amount.String(),
			Multiplier:   live.Multiplier,
			ExpectedWin:  live.ExpectedWin.String(),
			RollOver:     live.RollOver,
			Status:       live.Status.String(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(WagerStatusResponse{Success: true, Wager: record})
}

// HandleGetHistory handles recent settlement history
// GET /api/dice/history
func HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	records, err := db.GetRecentWagers(r.Context(), limit)
	if err != nil {
		log.Printf("❌ Failed to get history: %v", err)
		sendError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"history": records,
	})
}

// HandleGetRecent serves the capped Redis results feed, the cheap
// poll target for UI tickers (full history stays on /api/dice/history)
// GET /api/dice/recent
func HandleGetRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	results, err := db.GetRecentResults(r.Context(), limit)
	if err != nil {
		log.Printf("❌ Failed to get recent results: %v", err)
		sendError(w, http.StatusInternalServerError, "Failed to retrieve recent results")
		return
	}
	if results == nil {
		results = []*db.RecentResultData{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"results": results,
	})
}

// HandleVerifyOutcome recomputes a drawn number from its inputs so
// players can audit a settlement
// GET /api/dice/verify?randomness=0x..&participant=0x..&gameId=N
func HandleVerifyOutcome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	randomnessHex := r.URL.Query().Get("randomness")
	participantHex := r.URL.Query().Get("participant")
	if randomnessHex == "" || !common.IsHexAddress(participantHex) {
		sendError(w, http.StatusBadRequest, "randomness and participant are required")
		return
	}

	gameID := engine.GameID()
	if gameIDStr := r.URL.Query().Get("gameId"); gameIDStr != "" {
		if parsed, err := strconv.ParseUint(gameIDStr, 10, 64); err == nil {
			gameID = parsed
		}
	}

	randomness := common.HexToHash(randomnessHex)
	participant := common.HexToAddress(participantHex)
	drawn := game.DeriveOutcome(randomness, participant, gameID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(VerifyResponse{
		Success:     true,
		DrawnNumber: drawn,
		Randomness:  randomness.Hex(),
		Participant: participant.Hex(),
		GameID:      gameID,
	})
}

// HandleGetStats reports cumulative staked/paid volume
// GET /api/dice/stats
func HandleGetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	staked, paidOut := engine.Totals()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(StatsResponse{
		Success:      true,
		TotalStaked:  staked.String(),
		TotalPaidOut: paidOut.String(),
	})
}

/* =========================
   HELPERS
========================= */

func placeErrorStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrOutOfRange), errors.Is(err, game.ErrStakeOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrWagerInFlight):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func sendError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Success: false, Error: message})
}
