package oracle

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type delivery struct {
	caller     common.Address
	requestID  common.Hash
	randomness common.Hash
}

type captureResolver struct {
	deliveries chan delivery
}

func (r *captureResolver) ResolveWager(ctx context.Context, caller common.Address, requestID common.Hash, randomness common.Hash) error {
	r.deliveries <- delivery{caller, requestID, randomness}
	return nil
}

func TestLocalOracleDeliversExactlyOnePerRequest(t *testing.T) {
	identity := common.HexToAddress("0x0CAC1E000000000000000000000000000000CAC1")
	o := NewLocalOracle(identity)
	o.SetDelay(0, 0)

	resolver := &captureResolver{deliveries: make(chan delivery, 4)}
	o.SetResolver(resolver)

	requestID, err := o.RequestRandomness(context.Background())
	if err != nil {
		t.Fatalf("RequestRandomness failed: %v", err)
	}
	if requestID == (common.Hash{}) {
		t.Fatal("empty request id")
	}

	select {
	case d := <-resolver.deliveries:
		if d.caller != identity {
			t.Errorf("callback caller = %s, want oracle identity %s", d.caller.Hex(), identity.Hex())
		}
		if d.requestID != requestID {
			t.Errorf("callback request id = %s, want %s", d.requestID.Hex(), requestID.Hex())
		}
		if d.randomness == (common.Hash{}) {
			t.Error("empty randomness delivered")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery within 2s")
	}

	select {
	case d := <-resolver.deliveries:
		t.Fatalf("unexpected second delivery for %s", d.requestID.Hex())
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLocalOracleDelayAdjustableWhileDelivering(t *testing.T) {
	o := NewLocalOracle(common.Address{})
	o.SetDelay(time.Millisecond, 2*time.Millisecond)

	resolver := &captureResolver{deliveries: make(chan delivery, 32)}
	o.SetResolver(resolver)

	// Shrink the window while deliveries are already in flight; every
	// request must still come back exactly once
	for i := 0; i < 10; i++ {
		if _, err := o.RequestRandomness(context.Background()); err != nil {
			t.Fatalf("RequestRandomness failed: %v", err)
		}
		o.SetDelay(0, time.Duration(i)*time.Millisecond)
	}

	for i := 0; i < 10; i++ {
		select {
		case <-resolver.deliveries:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of 10 deliveries arrived", i)
		}
	}
}

func TestLocalOracleIssuesUniqueRequestIDs(t *testing.T) {
	o := NewLocalOracle(common.Address{})
	o.SetDelay(0, 0)
	o.SetResolver(&captureResolver{deliveries: make(chan delivery, 64)})

	seen := make(map[common.Hash]bool)
	for i := 0; i < 50; i++ {
		id, err := o.RequestRandomness(context.Background())
		if err != nil {
			t.Fatalf("RequestRandomness failed: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate request id %s", id.Hex())
		}
		seen[id] = true
	}
}
