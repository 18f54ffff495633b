package game

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// WagerStatus is the lifecycle marker for a wager record.
// A record is created Pending, moves to Resolving while a callback is
// being settled, and ends Resolved. A failed payout drops it back to
// Pending so the oracle's redelivery can retry the same settlement.
type WagerStatus int

const (
	StatusPending WagerStatus = iota
	StatusResolving
	StatusResolved
)

func (s WagerStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusResolving:
		return "resolving"
	case StatusResolved:
		return "resolved"
	}
	return "unknown"
}

// WagerRecord is one accepted wager, keyed by the oracle request id.
// Everything except Status is frozen at acceptance time.
type WagerRecord struct {
	Participant  common.Address
	ChosenNumber int
	Amount       *big.Int // Wei
	Multiplier   uint64   // Fixed-point, scale 1000
	ExpectedWin  *big.Int // Wei, exact amount paid on a win
	RollOver     bool     // true: win when drawn <= chosen
	RequestID    common.Hash
	Status       WagerStatus
}

/* =========================
   OBSERVABLE EVENTS
========================= */

// WagerStartedEvent is emitted once per accepted wager
type WagerStartedEvent struct {
	RequestID    common.Hash
	Participant  common.Address
	Multiplier   uint64
	ChosenNumber int
	Amount       *big.Int
	RollOver     bool
}

// WagerFinishedEvent is emitted once per resolved wager
type WagerFinishedEvent struct {
	RequestID   common.Hash
	Participant common.Address
	PaidAmount  *big.Int // zero on a loss
	Won         bool
	DrawnNumber int
}

// Notifier receives engine lifecycle events. Delivery is best-effort
// and for audit/UI only; the engine never depends on it for correctness.
type Notifier interface {
	EngineDeployed(gameID uint64)
	WagerStarted(ev WagerStartedEvent)
	WagerFinished(ev WagerFinishedEvent)
	ParameterServiceChanged(newAddress common.Address)
}

/* =========================
   COLLABORATOR INTERFACES
========================= */

// Reserve is the shared bankroll. Stakes are absorbed into it at
// acceptance time and wins are paid out of it at resolution time.
type Reserve interface {
	Balance(ctx context.Context) (*big.Int, error)
	ReceiveStake(ctx context.Context, from common.Address, amount *big.Int) error
	Pay(ctx context.Context, to common.Address, amount *big.Int) error
}

// Oracle is the external randomness source. It issues a request id
// synchronously and calls back ResolveWager at its own discretion.
type Oracle interface {
	RequestRandomness(ctx context.Context) (common.Hash, error)
	Identity() common.Address
}

// ParameterService supplies the current minimum stake.
type ParameterService interface {
	MinimumStake(ctx context.Context) (*big.Int, error)
	Address() common.Address
}

// EndpointVerifier checks that an address has executable code behind it
// (a live service endpoint, not a plain account).
type EndpointVerifier interface {
	IsContract(ctx context.Context, addr common.Address) (bool, error)
}
