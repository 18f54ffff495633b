package config

import (
	"math/big"
	"time"
)

/* =========================
   NETWORK CONFIGURATION
========================= */

const (
	// Mantle Sepolia Testnet
	MantleSepoliaRPC = "https://rpc.sepolia.mantle.xyz"
	MantleChainID    = 5003
)

/* =========================
   GAME MECHANICS - DICE
========================= */

const (
	// Chosen number bounds (exclusive 0 and 100)
	MinChosenNumber = 1
	MaxChosenNumber = 99

	// Payout numerator: 98% of true odds, pre-multiplied by the
	// fixed-point scale. multiplier = HousePayoutNumerator / winChance.
	HousePayoutNumerator = 98000

	// Fixed-point scale for the payout multiplier (1960 == 1.96x)
	MultiplierScale = 1000

	// A single win may not exceed bankroll balance / MaxWinBalanceDivisor
	// measured at acceptance time
	MaxWinBalanceDivisor = 100

	// Drawn numbers land in [1, DrawModulus]
	DrawModulus = 100
)

var (
	// Scale as big.Int for wei math
	MultiplierScaleBig = big.NewInt(MultiplierScale)

	// Headroom divisor as big.Int
	MaxWinBalanceDivisorBig = big.NewInt(MaxWinBalanceDivisor)
)

/* =========================
   REDIS TTL CONFIGURATION
========================= */

const (
	// Pending wager mirror TTL (24 hours)
	// Key: dice:pending:{requestId}
	PendingWagerTTL = 24 * time.Hour

	// Number of recent results kept for the UI feed
	// Key: dice:recent
	RecentResultsMax = 50
)

/* =========================
   REDIS KEY PATTERNS
========================= */

const (
	// Pending wager keys
	RedisPendingWagerKey = "dice:pending:%s" // dice:pending:{requestId}

	// Recent results list (LPUSH + LTRIM)
	RedisRecentResultsKey = "dice:recent"
)

/* =========================
   POSTGRESQL CONFIGURATION
========================= */

const (
	// Connection pool settings
	MaxOpenConns    = 25
	MinIdleConns    = 5
	ConnMaxLifetime = 5 * time.Minute
)

/* =========================
   ORACLE CONFIGURATION
========================= */

const (
	// Delivery delay window for the in-process oracle (dev mode)
	LocalOracleMinDelay = 1 * time.Second
	LocalOracleMaxDelay = 5 * time.Second
)

/* =========================
   API CONFIGURATION
========================= */

const (
	// Server settings
	ServerPort = "8080"
	ServerHost = "0.0.0.0"

	// CORS settings
	AllowOrigin = "*"
)

/* =========================
   WEBSOCKET CONFIGURATION
========================= */

const (
	// Buffer sizes
	WSReadBufferSize  = 1024
	WSWriteBufferSize = 1024

	// Outbound queue per client before the connection is dropped
	WSSendQueueSize = 64
)

/* =========================
   HELPER FUNCTIONS
========================= */

// WeiToMNT converts wei (uint256) to MNT (float64) for display/telemetry
func WeiToMNT(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	weiFloat := new(big.Float).SetInt(wei)
	divisor := new(big.Float).SetFloat64(1e18)
	result := new(big.Float).Quo(weiFloat, divisor)
	mnt, _ := result.Float64()
	return mnt
}

// MNTToWei converts MNT (float64) to wei (*big.Int)
func MNTToWei(mnt float64) *big.Int {
	weiFloat := new(big.Float).SetFloat64(mnt * 1e18)
	wei, _ := weiFloat.Int(nil)
	return wei
}
