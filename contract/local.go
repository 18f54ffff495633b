package contract

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// LocalBankroll is the dev-mode reserve used when no chain is
// configured. Same accounting as the contract: stakes absorbed in,
// wins paid out, rejects payments it cannot cover.
type LocalBankroll struct {
	mu      sync.Mutex
	balance *big.Int
}

// NewLocalBankroll seeds a bankroll with the given wei balance
func NewLocalBankroll(balance *big.Int) *LocalBankroll {
	return &LocalBankroll{balance: new(big.Int).Set(balance)}
}

// Balance returns the current pool balance
func (b *LocalBankroll) Balance(ctx context.Context) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return new(big.Int).Set(b.balance), nil
}

// ReceiveStake absorbs a stake into the pool
func (b *LocalBankroll) ReceiveStake(ctx context.Context, from common.Address, amount *big.Int) error {
	b.mu.Lock()
	b.balance.Add(b.balance, amount)
	b.mu.Unlock()
	log.Printf("📥 Local bankroll received %s wei from %s", amount.String(), from.Hex())
	return nil
}

// Pay sends a win out of the pool
func (b *LocalBankroll) Pay(ctx context.Context, to common.Address, amount *big.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.balance.Cmp(amount) < 0 {
		return fmt.Errorf("bankroll underfunded: have %s, need %s", b.balance.String(), amount.String())
	}
	b.balance.Sub(b.balance, amount)
	log.Printf("📤 Local bankroll paid %s wei to %s", amount.String(), to.Hex())
	return nil
}

// StaticParams serves a fixed minimum stake in dev mode
type StaticParams struct {
	MinStake *big.Int
	Addr     common.Address
}

// MinimumStake returns the fixed minimum
func (p *StaticParams) MinimumStake(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(p.MinStake), nil
}

// Address returns the configured pseudo-address
func (p *StaticParams) Address() common.Address {
	return p.Addr
}

// AcceptAllVerifier treats every address as a live endpoint (dev mode)
type AcceptAllVerifier struct{}

// IsContract always reports true
func (AcceptAllVerifier) IsContract(ctx context.Context, addr common.Address) (bool, error) {
	return true, nil
}
