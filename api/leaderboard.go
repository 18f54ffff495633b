package api

import (
	"encoding/json"
	"log"
	"net/http"

	"diceGameServer/db"

	"github.com/ethereum/go-ethereum/common"
)

/* =========================
   RESPONSE TYPES
========================= */

// StandingResponse is one ranked row: net PnL plus dice activity
type StandingResponse struct {
	Rank    int     `json:"rank"`
	Wallet  string  `json:"wallet"`
	Pnl     float64 `json:"pnl"`
	Wagers  int     `json:"wagers"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"winRate"` // Wins / resolved wagers, 0 when none
}

// LeaderboardResponse is the ranked standings, optionally with the
// requesting player's own row when they sit outside the top
type LeaderboardResponse struct {
	Success   bool               `json:"success"`
	Standings []StandingResponse `json:"standings"`
	You       *StandingResponse  `json:"you,omitempty"`
}

func standingFromEntry(entry *db.LeaderboardEntry) StandingResponse {
	s := StandingResponse{
		Rank:   entry.Rank,
		Wallet: entry.WalletAddress,
		Pnl:    entry.Pnl,
		Wagers: entry.Wagers,
		Wins:   entry.Wins,
	}
	if entry.Wagers > 0 {
		s.WinRate = float64(entry.Wins) / float64(entry.Wagers)
	}
	return s
}

/* =========================
   HTTP ENDPOINTS
========================= */

// HandleGetLeaderboard serves the ranked player standings
// GET /api/leaderboard?wallet=0x..
func HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	entries, err := db.GetLeaderboard(r.Context(), 20)
	if err != nil {
		log.Printf("❌ Failed to get leaderboard: %v", err)
		sendError(w, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	response := LeaderboardResponse{
		Success:   true,
		Standings: make([]StandingResponse, 0, len(entries)),
	}
	inTop := make(map[string]bool, len(entries))
	for _, entry := range entries {
		response.Standings = append(response.Standings, standingFromEntry(entry))
		inTop[entry.WalletAddress] = true
	}

	// Players outside the top still get their own row back
	if walletParam := r.URL.Query().Get("wallet"); common.IsHexAddress(walletParam) {
		wallet := common.HexToAddress(walletParam).Hex()
		if !inTop[wallet] {
			position, err := db.GetLeaderboardPosition(r.Context(), wallet)
			if err != nil {
				log.Printf("⚠️  Failed to get position for %s: %v", wallet, err)
			} else if position != nil {
				you := standingFromEntry(position)
				response.You = &you
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(response)

	log.Printf("📋 Retrieved leaderboard with %d standings", len(entries))
}
