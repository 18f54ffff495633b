package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"diceGameServer/config"

	"github.com/redis/go-redis/v9"
)

var (
	// RedisClient is the global Redis client instance
	RedisClient *redis.Client
)

// PendingWagerData mirrors an in-flight wager for fast status lookups.
// The engine's in-memory table is the authority; this is cache only.
type PendingWagerData struct {
	RequestID    string    `json:"requestId"`
	Participant  string    `json:"participant"`
	ChosenNumber int       `json:"chosenNumber"`
	Amount       string    `json:"amount"` // Wei as string
	Multiplier   uint64    `json:"multiplier"`
	ExpectedWin  string    `json:"expectedWin"` // Wei as string
	RollOver     bool      `json:"rollOver"`
	PlacedAt     time.Time `json:"placedAt"`
}

// RecentResultData is one entry of the UI results feed
type RecentResultData struct {
	RequestID   string    `json:"requestId"`
	Participant string    `json:"participant"`
	DrawnNumber int       `json:"drawnNumber"`
	PaidAmount  string    `json:"paidAmount"` // Wei as string
	Won         bool      `json:"won"`
	ResolvedAt  time.Time `json:"resolvedAt"`
}

// InitRedis initializes the Redis client connection
func InitRedis() error {
	log.Println("🔌 Connecting to Redis...")

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "localhost:6379"
	}

	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			redisDB = db
		}
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:         redisURL,
		Password:     redisPassword,
		DB:           redisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := RedisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("✅ Redis connected successfully - URL: %s", redisURL)
	return nil
}

// CloseRedis closes the Redis connection
func CloseRedis() error {
	if RedisClient != nil {
		log.Println("🔌 Closing Redis connection...")
		return RedisClient.Close()
	}
	return nil
}

// HealthCheck pings Redis
func HealthCheck(ctx context.Context) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not initialized")
	}
	return RedisClient.Ping(ctx).Err()
}

/* =========================
   PENDING WAGER MIRROR
   Redis Key: dice:pending:{requestId} -> JSON, TTL 24h
========================= */

// StorePendingWager mirrors an accepted wager
func StorePendingWager(ctx context.Context, wager *PendingWagerData) error {
	if RedisClient == nil {
		return nil
	}

	key := fmt.Sprintf(config.RedisPendingWagerKey, wager.RequestID)

	data, err := json.Marshal(wager)
	if err != nil {
		return fmt.Errorf("failed to marshal pending wager: %w", err)
	}

	if err := RedisClient.Set(ctx, key, data, config.PendingWagerTTL).Err(); err != nil {
		return fmt.Errorf("failed to store pending wager: %w", err)
	}

	return nil
}

// GetPendingWager retrieves a mirrored wager, nil when absent
func GetPendingWager(ctx context.Context, requestID string) (*PendingWagerData, error) {
	if RedisClient == nil {
		return nil, nil
	}

	key := fmt.Sprintf(config.RedisPendingWagerKey, requestID)

	data, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil // Wager doesn't exist (or TTL expired)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending wager: %w", err)
	}

	var wager PendingWagerData
	if err := json.Unmarshal([]byte(data), &wager); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending wager: %w", err)
	}

	return &wager, nil
}

// DeletePendingWager drops the mirror entry once the wager is settled
func DeletePendingWager(ctx context.Context, requestID string) error {
	if RedisClient == nil {
		return nil
	}

	key := fmt.Sprintf(config.RedisPendingWagerKey, requestID)
	if err := RedisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete pending wager: %w", err)
	}
	return nil
}

/* =========================
   RECENT RESULTS FEED
   Redis Key: dice:recent -> LPUSH + LTRIM capped list
========================= */

// PushRecentResult prepends a settlement to the capped results list
func PushRecentResult(ctx context.Context, result *RecentResultData) error {
	if RedisClient == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal recent result: %w", err)
	}

	pipe := RedisClient.Pipeline()
	pipe.LPush(ctx, config.RedisRecentResultsKey, data)
	pipe.LTrim(ctx, config.RedisRecentResultsKey, 0, config.RecentResultsMax-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push recent result: %w", err)
	}

	return nil
}

// GetRecentResults returns the newest settlements, newest first
func GetRecentResults(ctx context.Context, limit int) ([]*RecentResultData, error) {
	if RedisClient == nil {
		return nil, nil
	}

	if limit <= 0 || limit > config.RecentResultsMax {
		limit = config.RecentResultsMax
	}

	items, err := RedisClient.LRange(ctx, config.RedisRecentResultsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recent results: %w", err)
	}

	results := make([]*RecentResultData, 0, len(items))
	for _, item := range items {
		var result RecentResultData
		if err := json.Unmarshal([]byte(item), &result); err != nil {
			log.Printf("⚠️  Failed to unmarshal recent result: %v", err)
			continue
		}
		results = append(results, &result)
	}

	return results, nil
}
