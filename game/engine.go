package game

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"sync"

	"diceGameServer/config"

	"github.com/ethereum/go-ethereum/common"
)

// ParamsDialer builds a ParameterService client for an address that has
// already passed the endpoint check. Injected so tests and the local
// setup can swap the chain-backed client.
type ParamsDialer func(addr common.Address) (ParameterService, error)

// EngineConfig wires the engine's collaborators and identity
type EngineConfig struct {
	Reserve  Reserve
	Oracle   Oracle
	Params   ParameterService
	Verifier EndpointVerifier
	Dialer   ParamsDialer
	Admin    common.Address
	GameID   uint64
	Notifier Notifier
}

// Engine is the wager-settlement core. It is reached by two unordered
// external triggers: participant acceptance calls and oracle resolution
// callbacks. All record state lives behind one mutex; external calls
// (bankroll, oracle) are never made while holding it.
type Engine struct {
	mu sync.Mutex

	reserve Reserve
	oracle  Oracle
	params  ParameterService
	verify  EndpointVerifier
	dial    ParamsDialer
	notify  Notifier

	admin  common.Address
	gameID uint64

	wagers   map[common.Hash]*WagerRecord
	inFlight map[common.Address]bool

	totalStaked  *big.Int
	totalPaidOut *big.Int
}

// NewEngine creates the engine and emits the one-time deployed event
func NewEngine(cfg EngineConfig) *Engine {
	n := cfg.Notifier
	if n == nil {
		n = noopNotifier{}
	}
	e := &Engine{
		reserve:      cfg.Reserve,
		oracle:       cfg.Oracle,
		params:       cfg.Params,
		verify:       cfg.Verifier,
		dial:         cfg.Dialer,
		notify:       n,
		admin:        cfg.Admin,
		gameID:       cfg.GameID,
		wagers:       make(map[common.Hash]*WagerRecord),
		inFlight:     make(map[common.Address]bool),
		totalStaked:  new(big.Int),
		totalPaidOut: new(big.Int),
	}
	e.notify.EngineDeployed(e.gameID)
	return e
}

/* =========================
   WAGER ACCEPTANCE
========================= */

// PlaceWager validates a wager, absorbs the stake into the bankroll,
// requests randomness and records the pending wager under the issued
// request id. The per-participant in-flight flag blocks re-entry while
// the external transfer is still running.
func (e *Engine) PlaceWager(ctx context.Context, participant common.Address, chosenNumber int, amount *big.Int, rollOver bool) (common.Hash, error) {
	if err := e.enterAcceptance(participant); err != nil {
		return common.Hash{}, err
	}
	defer e.leaveAcceptance(participant)

	if !ValidNumber(chosenNumber) {
		return common.Hash{}, ErrOutOfRange
	}
	if amount == nil || amount.Sign() <= 0 {
		return common.Hash{}, ErrStakeOutOfRange
	}

	multiplier := Multiplier(chosenNumber, rollOver)
	expectedWin := ExpectedWin(amount, multiplier)

	e.mu.Lock()
	params := e.params
	e.mu.Unlock()

	minStake, err := params.MinimumStake(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("minimum stake lookup: %w", err)
	}
	if amount.Cmp(minStake) < 0 {
		return common.Hash{}, ErrStakeOutOfRange
	}

	// Headroom check against the pre-transfer balance: one win may not
	// drain more than 1% of the bankroll
	balance, err := e.reserve.Balance(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("bankroll balance lookup: %w", err)
	}
	maxWin := new(big.Int).Div(balance, config.MaxWinBalanceDivisorBig)
	if expectedWin.Cmp(maxWin) > 0 {
		return common.Hash{}, ErrStakeOutOfRange
	}

	if err := e.reserve.ReceiveStake(ctx, participant, amount); err != nil {
		return common.Hash{}, fmt.Errorf("stake transfer: %w", err)
	}

	requestID, err := e.oracle.RequestRandomness(ctx)
	if err != nil {
		// The stake already reached the bankroll; pay it back so the
		// call stays all-or-nothing from the participant's view
		if refundErr := e.reserve.Pay(ctx, participant, amount); refundErr != nil {
			log.Printf("❌ Stake refund failed for %s: %v", participant.Hex(), refundErr)
		}
		return common.Hash{}, fmt.Errorf("randomness request: %w", err)
	}

	record := &WagerRecord{
		Participant:  participant,
		ChosenNumber: chosenNumber,
		Amount:       new(big.Int).Set(amount),
		Multiplier:   multiplier,
		ExpectedWin:  expectedWin,
		RollOver:     rollOver,
		RequestID:    requestID,
		Status:       StatusPending,
	}

	e.mu.Lock()
	e.wagers[requestID] = record
	e.totalStaked.Add(e.totalStaked, amount)
	e.mu.Unlock()

	e.notify.WagerStarted(WagerStartedEvent{
		RequestID:    requestID,
		Participant:  participant,
		Multiplier:   multiplier,
		ChosenNumber: chosenNumber,
		Amount:       new(big.Int).Set(amount),
		RollOver:     rollOver,
	})

	log.Printf("🎲 Wager accepted - Player: %s, Number: %d, RollOver: %t, Mult: %d, Request: %s",
		participant.Hex(), chosenNumber, rollOver, multiplier, requestID.Hex())
	return requestID, nil
}

func (e *Engine) enterAcceptance(participant common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight[participant] {
		return ErrWagerInFlight
	}
	e.inFlight[participant] = true
	return nil
}

func (e *Engine) leaveAcceptance(participant common.Address) {
	e.mu.Lock()
	delete(e.inFlight, participant)
	e.mu.Unlock()
}

/* =========================
   OUTCOME RESOLUTION
========================= */

// ResolveWager is the oracle callback. Exactly one call per request id
// may settle: the record flips Pending → Resolving under the lock before
// any external work, so duplicate deliveries and replays fail with
// ErrAlreadyResolved. A failed payout flips it back so the oracle's
// redelivery retries the identical settlement.
func (e *Engine) ResolveWager(ctx context.Context, caller common.Address, requestID common.Hash, randomness common.Hash) error {
	if caller != e.oracle.Identity() {
		return ErrUnauthorized
	}

	e.mu.Lock()
	record, ok := e.wagers[requestID]
	if !ok {
		e.mu.Unlock()
		return ErrUnknownRequest
	}
	if record.Status != StatusPending {
		e.mu.Unlock()
		return ErrAlreadyResolved
	}
	record.Status = StatusResolving
	e.mu.Unlock()

	drawn := DeriveOutcome(randomness, record.Participant, e.gameID)
	won := IsWin(record.ChosenNumber, drawn, record.RollOver)

	paid := new(big.Int)
	if won {
		if err := e.reserve.Pay(ctx, record.Participant, record.ExpectedWin); err != nil {
			e.mu.Lock()
			record.Status = StatusPending
			e.mu.Unlock()
			return fmt.Errorf("payout: %w", err)
		}
		paid.Set(record.ExpectedWin)
	}

	e.mu.Lock()
	record.Status = StatusResolved
	if won {
		e.totalPaidOut.Add(e.totalPaidOut, paid)
	}
	e.mu.Unlock()

	e.notify.WagerFinished(WagerFinishedEvent{
		RequestID:   requestID,
		Participant: record.Participant,
		PaidAmount:  paid,
		Won:         won,
		DrawnNumber: drawn,
	})

	log.Printf("🏁 Wager resolved - Player: %s, Drawn: %d, Won: %t, Paid: %s wei",
		record.Participant.Hex(), drawn, won, paid.String())
	return nil
}

/* =========================
   ADMINISTRATION
========================= */

// SetParameterService swaps the minimum-stake source. Administrator
// only, and the target must be a live contract endpoint.
func (e *Engine) SetParameterService(ctx context.Context, caller common.Address, addr common.Address) error {
	if caller != e.admin {
		return ErrUnauthorized
	}

	isContract, err := e.verify.IsContract(ctx, addr)
	if err != nil {
		return fmt.Errorf("endpoint check: %w", err)
	}
	if !isContract {
		return ErrInvalidEndpoint
	}

	svc, err := e.dial(addr)
	if err != nil {
		return fmt.Errorf("parameter service dial: %w", err)
	}

	e.mu.Lock()
	e.params = svc
	e.mu.Unlock()

	e.notify.ParameterServiceChanged(addr)
	log.Printf("⚙️  Parameter service changed to %s", addr.Hex())
	return nil
}

/* =========================
   READ ACCESSORS
========================= */

// Wager returns a copy of the record for a request id
func (e *Engine) Wager(requestID common.Hash) (WagerRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	record, ok := e.wagers[requestID]
	if !ok {
		return WagerRecord{}, false
	}
	snapshot := *record
	snapshot.Amount = new(big.Int).Set(record.Amount)
	snapshot.ExpectedWin = new(big.Int).Set(record.ExpectedWin)
	return snapshot, true
}

// Totals returns the cumulative staked and paid-out volume (telemetry)
func (e *Engine) Totals() (staked *big.Int, paidOut *big.Int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return new(big.Int).Set(e.totalStaked), new(big.Int).Set(e.totalPaidOut)
}

// GameID returns the outcome-derivation salt for this engine instance
func (e *Engine) GameID() uint64 {
	return e.gameID
}

// OracleIdentity returns the registered oracle address
func (e *Engine) OracleIdentity() common.Address {
	return e.oracle.Identity()
}

type noopNotifier struct{}

func (noopNotifier) EngineDeployed(uint64) {}
func (noopNotifier) WagerStarted(WagerStartedEvent) {}
func (noopNotifier) WagerFinished(WagerFinishedEvent) {}
func (noopNotifier) ParameterServiceChanged(common.Address) {}
