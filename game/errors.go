package game

import "errors"

var (
	// ErrOutOfRange: chosen number outside 1..99
	ErrOutOfRange = errors.New("chosen number out of range")

	// ErrStakeOutOfRange: stake below minimum or implied payout exceeds
	// the bankroll headroom
	ErrStakeOutOfRange = errors.New("stake out of range")

	// ErrUnauthorized: caller is not the registered oracle / administrator
	ErrUnauthorized = errors.New("unauthorized caller")

	// ErrInvalidEndpoint: administration target is not a live contract
	ErrInvalidEndpoint = errors.New("address is not a contract endpoint")

	// ErrUnknownRequest: no wager recorded for the request id
	ErrUnknownRequest = errors.New("unknown request id")

	// ErrAlreadyResolved: the wager for this request id was already settled
	ErrAlreadyResolved = errors.New("wager already resolved")

	// ErrWagerInFlight: the participant re-entered acceptance before the
	// previous call finished
	ErrWagerInFlight = errors.New("wager placement already in flight")
)
