package db

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
)

func TestDiceWagerLifecycle(t *testing.T) {
	// Load env
	_ = godotenv.Load("../.env")

	// Check DATABASE_URL
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set")
	}

	// Init postgres
	if err := InitPostgres(); err != nil {
		t.Fatalf("Failed to init postgres: %v", err)
	}
	defer ClosePostgres()

	ctx := context.Background()
	testRequestID := "0xtest000000000000000000000000000000000000000000000000000000000001"
	testPlayer := "0xTestPlayer12345678901234567890123456789"

	// Cleanup before test
	_, _ = PostgresPool.Exec(ctx, "DELETE FROM dice_wagers WHERE request_id = $1", testRequestID)
	_, _ = PostgresPool.Exec(ctx, "DELETE FROM player_pnl WHERE wallet_address = $1", testPlayer)

	// Test 1: StoreWager creates a pending row
	t.Run("StoreWager_Pending", func(t *testing.T) {
		record := &WagerHistoryRecord{
			RequestID:    testRequestID,
			Participant:  testPlayer,
			ChosenNumber: 50,
			Amount:       "100",
			Multiplier:   1960,
			ExpectedWin:  "196",
			RollOver:     true,
		}
		if err := StoreWager(ctx, record); err != nil {
			t.Fatalf("StoreWager failed: %v", err)
		}

		// Verify
		stored, err := GetWager(ctx, testRequestID)
		if err != nil {
			t.Fatalf("GetWager failed: %v", err)
		}
		if stored == nil {
			t.Fatal("Expected record, got nil")
		}
		if stored.Status != "pending" {
			t.Errorf("Expected status pending, got %s", stored.Status)
		}
		if stored.Multiplier != 1960 {
			t.Errorf("Expected multiplier 1960, got %d", stored.Multiplier)
		}
	})

	// Test 2: MarkWagerResolved finalizes the row
	t.Run("MarkWagerResolved", func(t *testing.T) {
		if err := MarkWagerResolved(ctx, testRequestID, 40, "196", true); err != nil {
			t.Fatalf("MarkWagerResolved failed: %v", err)
		}

		stored, err := GetWager(ctx, testRequestID)
		if err != nil {
			t.Fatalf("GetWager failed: %v", err)
		}
		if stored.Status != "resolved" {
			t.Errorf("Expected status resolved, got %s", stored.Status)
		}
		if stored.DrawnNumber == nil || *stored.DrawnNumber != 40 {
			t.Errorf("Expected drawn number 40, got %v", stored.DrawnNumber)
		}
		if stored.Won == nil || !*stored.Won {
			t.Errorf("Expected won=true, got %v", stored.Won)
		}
		if stored.ResolvedAt == nil {
			t.Error("Expected resolved_at to be set")
		}
	})

	// Test 3: Resolved rows show up in recent history
	t.Run("GetRecentWagers", func(t *testing.T) {
		records, err := GetRecentWagers(ctx, 10)
		if err != nil {
			t.Fatalf("GetRecentWagers failed: %v", err)
		}

		found := false
		for _, r := range records {
			if r.RequestID == testRequestID {
				found = true
				break
			}
		}
		if !found {
			t.Error("Resolved wager missing from recent history")
		}
	})

	// Test 4: PnL upserts accumulate and standings join the wager history
	t.Run("PlayerStandings", func(t *testing.T) {
		if err := SubtractPlayerPnL(ctx, testPlayer, 10.0); err != nil {
			t.Fatalf("SubtractPlayerPnL failed: %v", err)
		}
		if err := AddPlayerPnL(ctx, testPlayer, 25.0); err != nil {
			t.Fatalf("AddPlayerPnL failed: %v", err)
		}

		// Verify: -10 + 25 = 15
		entry, err := GetLeaderboardPosition(ctx, testPlayer)
		if err != nil {
			t.Fatalf("GetLeaderboardPosition failed: %v", err)
		}
		if entry == nil {
			t.Fatal("Expected entry, got nil")
		}
		if entry.Pnl != 15.0 {
			t.Errorf("Expected pnl 15.0, got %f", entry.Pnl)
		}
		if entry.Wagers != 1 {
			t.Errorf("Expected 1 wager counted, got %d", entry.Wagers)
		}
		if entry.Wins != 1 {
			t.Errorf("Expected 1 win counted, got %d", entry.Wins)
		}
	})

	// Test 5: Totals include the wager
	t.Run("GetWagerTotals", func(t *testing.T) {
		staked, paid, err := GetWagerTotals(ctx)
		if err != nil {
			t.Fatalf("GetWagerTotals failed: %v", err)
		}
		if staked.Sign() <= 0 {
			t.Errorf("Expected positive staked volume, got %s", staked.String())
		}
		if paid.Sign() <= 0 {
			t.Errorf("Expected positive paid volume, got %s", paid.String())
		}
		t.Logf("Totals: staked=%s paid=%s", staked.String(), paid.String())
	})

	// Cleanup
	_, _ = PostgresPool.Exec(ctx, "DELETE FROM dice_wagers WHERE request_id = $1", testRequestID)
	_, _ = PostgresPool.Exec(ctx, "DELETE FROM player_pnl WHERE wallet_address = $1", testPlayer)
}
