package db

import (
	"context"
	"log"
	"time"

	"diceGameServer/config"
	"diceGameServer/game"

	"github.com/ethereum/go-ethereum/common"
)

// Recorder persists engine lifecycle events into Postgres and Redis.
// It implements game.Notifier; failures are logged and swallowed since
// the audit trail must never block settlement.
type Recorder struct {
	Timeout time.Duration
}

// NewRecorder returns a recorder with a sane write timeout
func NewRecorder() *Recorder {
	return &Recorder{Timeout: 5 * time.Second}
}

func (r *Recorder) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.Timeout)
}

// EngineDeployed logs the one-time construction event
func (r *Recorder) EngineDeployed(gameID uint64) {
	log.Printf("🚀 Dice engine deployed - GameID: %d", gameID)
}

// WagerStarted writes the pending row, the Redis mirror, and debits PnL
func (r *Recorder) WagerStarted(ev game.WagerStartedEvent) {
	ctx, cancel := r.ctx()
	defer cancel()

	record := &WagerHistoryRecord{
		RequestID:    ev.RequestID.Hex(),
		Participant:  ev.Participant.Hex(),
		ChosenNumber: ev.ChosenNumber,
		Amount:       ev.Amount.String(),
		Multiplier:   ev.Multiplier,
		ExpectedWin:  game.ExpectedWin(ev.Amount, ev.Multiplier).String(),
		RollOver:     ev.RollOver,
		Status:       "pending",
	}
	if err := StoreWager(ctx, record); err != nil {
		log.Printf("⚠️  Failed to store wager history: %v", err)
	}

	mirror := &PendingWagerData{
		RequestID:    ev.RequestID.Hex(),
		Participant:  ev.Participant.Hex(),
		ChosenNumber: ev.ChosenNumber,
		Amount:       ev.Amount.String(),
		Multiplier:   ev.Multiplier,
		ExpectedWin:  record.ExpectedWin,
		RollOver:     ev.RollOver,
		PlacedAt:     time.Now(),
	}
	if err := StorePendingWager(ctx, mirror); err != nil {
		log.Printf("⚠️  Failed to mirror pending wager: %v", err)
	}

	if err := SubtractPlayerPnL(ctx, ev.Participant.Hex(), config.WeiToMNT(ev.Amount)); err != nil {
		log.Printf("⚠️  Failed to debit player pnl: %v", err)
	}
}

// WagerFinished finalizes the row, credits PnL on a win, and feeds the
// recent-results list
func (r *Recorder) WagerFinished(ev game.WagerFinishedEvent) {
	ctx, cancel := r.ctx()
	defer cancel()

	if err := MarkWagerResolved(ctx, ev.RequestID.Hex(), ev.DrawnNumber, ev.PaidAmount.String(), ev.Won); err != nil {
		log.Printf("⚠️  Failed to finalize wager history: %v", err)
	}

	if err := DeletePendingWager(ctx, ev.RequestID.Hex()); err != nil {
		log.Printf("⚠️  Failed to drop pending mirror: %v", err)
	}

	if ev.Won {
		if err := AddPlayerPnL(ctx, ev.Participant.Hex(), config.WeiToMNT(ev.PaidAmount)); err != nil {
			log.Printf("⚠️  Failed to credit player pnl: %v", err)
		}
	}

	result := &RecentResultData{
		RequestID:   ev.RequestID.Hex(),
		Participant: ev.Participant.Hex(),
		DrawnNumber: ev.DrawnNumber,
		PaidAmount:  ev.PaidAmount.String(),
		Won:         ev.Won,
		ResolvedAt:  time.Now(),
	}
	if err := PushRecentResult(ctx, result); err != nil {
		log.Printf("⚠️  Failed to push recent result: %v", err)
	}
}

// ParameterServiceChanged logs the reconfiguration
func (r *Recorder) ParameterServiceChanged(newAddress common.Address) {
	log.Printf("⚙️  Parameter service reference now %s", newAddress.Hex())
}
