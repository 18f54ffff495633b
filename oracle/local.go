package oracle

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"diceGameServer/config"
	"diceGameServer/crypto"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// Resolver is the callback half of the oracle boundary. The engine
// implements it; the oracle only ever talks to it through this.
type Resolver interface {
	ResolveWager(ctx context.Context, caller common.Address, requestID common.Hash, randomness common.Hash) error
}

// LocalOracle is the in-process randomness source used in dev mode and
// tests. It issues opaque request ids synchronously and delivers one
// randomness value per request after a short delay, exactly like the
// external coordinator would.
type LocalOracle struct {
	identity common.Address

	mu       sync.Mutex
	resolver Resolver
	minDelay time.Duration
	maxDelay time.Duration
}

// NewLocalOracle creates an oracle with the given callback identity
func NewLocalOracle(identity common.Address) *LocalOracle {
	return &LocalOracle{
		identity: identity,
		minDelay: config.LocalOracleMinDelay,
		maxDelay: config.LocalOracleMaxDelay,
	}
}

// SetResolver wires the engine in after construction. The engine needs
// the oracle to exist first (it checks the callback identity), so the
// cycle is broken here, same as the contract client wiring in main.
func (o *LocalOracle) SetResolver(r Resolver) {
	o.mu.Lock()
	o.resolver = r
	o.mu.Unlock()
}

// SetDelay overrides the delivery window (zero for immediate delivery)
func (o *LocalOracle) SetDelay(min, max time.Duration) {
	o.mu.Lock()
	o.minDelay = min
	o.maxDelay = max
	o.mu.Unlock()
}

// Identity returns the address the oracle calls back with
func (o *LocalOracle) Identity() common.Address {
	return o.identity
}

// RequestRandomness issues a fresh request id and schedules delivery.
// The id is a keccak of a UUID, opaque and collision-free.
func (o *LocalOracle) RequestRandomness(ctx context.Context) (common.Hash, error) {
	requestID := ethcrypto.Keccak256Hash([]byte(uuid.NewString()))

	go o.deliver(requestID)

	return requestID, nil
}

func (o *LocalOracle) deliver(requestID common.Hash) {
	o.mu.Lock()
	minDelay, maxDelay := o.minDelay, o.maxDelay
	o.mu.Unlock()

	delay := minDelay
	if maxDelay > minDelay {
		delay += time.Duration(rand.Int63n(int64(maxDelay - minDelay)))
	}
	if delay > 0 {
		time.Sleep(delay)
	}

	value, commitment := crypto.GenerateRandomness()

	o.mu.Lock()
	resolver := o.resolver
	o.mu.Unlock()
	if resolver == nil {
		log.Printf("⚠️  Oracle has no resolver wired, dropping delivery for %s", requestID.Hex())
		return
	}

	log.Printf("🔮 Oracle delivering randomness - Request: %s, Commitment: %s",
		requestID.Hex(), commitment.Hex())

	if err := resolver.ResolveWager(context.Background(), o.identity, requestID, value); err != nil {
		log.Printf("❌ Oracle callback rejected for %s: %v", requestID.Hex(), err)
	}
}
