package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

func TestRedisMirrorAndResultsFeed(t *testing.T) {
	// Load env
	_ = godotenv.Load("../.env")

	// Check REDIS_URL
	if os.Getenv("REDIS_URL") == "" {
		t.Skip("REDIS_URL not set")
	}

	// Init redis
	if err := InitRedis(); err != nil {
		t.Fatalf("Failed to init redis: %v", err)
	}
	defer CloseRedis()

	ctx := context.Background()
	testRequestID := "0xtest000000000000000000000000000000000000000000000000000000000002"

	// Test 1: pending mirror round trip
	t.Run("PendingMirror", func(t *testing.T) {
		pending := &PendingWagerData{
			RequestID:    testRequestID,
			Participant:  "0xAAAA00000000000000000000000000000000AAAA",
			ChosenNumber: 50,
			Amount:       "100",
			Multiplier:   1960,
			ExpectedWin:  "196",
			RollOver:     true,
			PlacedAt:     time.Now(),
		}
		if err := StorePendingWager(ctx, pending); err != nil {
			t.Fatalf("StorePendingWager failed: %v", err)
		}

		stored, err := GetPendingWager(ctx, testRequestID)
		if err != nil {
			t.Fatalf("GetPendingWager failed: %v", err)
		}
		if stored == nil {
			t.Fatal("Expected mirrored wager, got nil")
		}
		if stored.Multiplier != 1960 || stored.Amount != "100" {
			t.Errorf("Mirror mismatch: mult=%d amount=%s", stored.Multiplier, stored.Amount)
		}
	})

	// Test 2: the mirror entry disappears at settlement
	t.Run("PendingMirrorDeleted", func(t *testing.T) {
		if err := DeletePendingWager(ctx, testRequestID); err != nil {
			t.Fatalf("DeletePendingWager failed: %v", err)
		}
		stored, err := GetPendingWager(ctx, testRequestID)
		if err != nil {
			t.Fatalf("GetPendingWager failed: %v", err)
		}
		if stored != nil {
			t.Error("Expected nil after delete, got entry")
		}
	})

	// Test 3: results feed is newest-first
	t.Run("ResultsFeed", func(t *testing.T) {
		older := &RecentResultData{RequestID: testRequestID + "a", DrawnNumber: 40, Won: true, PaidAmount: "196", ResolvedAt: time.Now()}
		newer := &RecentResultData{RequestID: testRequestID + "b", DrawnNumber: 90, Won: false, PaidAmount: "0", ResolvedAt: time.Now()}
		if err := PushRecentResult(ctx, older); err != nil {
			t.Fatalf("PushRecentResult failed: %v", err)
		}
		if err := PushRecentResult(ctx, newer); err != nil {
			t.Fatalf("PushRecentResult failed: %v", err)
		}

		results, err := GetRecentResults(ctx, 10)
		if err != nil {
			t.Fatalf("GetRecentResults failed: %v", err)
		}
		if len(results) < 2 {
			t.Fatalf("Expected at least 2 results, got %d", len(results))
		}
		if results[0].RequestID != newer.RequestID {
			t.Errorf("Expected newest first, got %s", results[0].RequestID)
		}
		if results[1].RequestID != older.RequestID {
			t.Errorf("Expected older second, got %s", results[1].RequestID)
		}
	})
}
