package db

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"diceGameServer/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// PostgresPool is the global PostgreSQL connection pool
	PostgresPool *pgxpool.Pool
)

// WagerHistoryRecord is one row of the dice_wagers audit table
type WagerHistoryRecord struct {
	RequestID    string     `json:"requestId"`
	Participant  string     `json:"participant"`
	ChosenNumber int        `json:"chosenNumber"`
	Amount       string     `json:"amount"` // Wei as string
	Multiplier   uint64     `json:"multiplier"`
	ExpectedWin  string     `json:"expectedWin"` // Wei as string
	RollOver     bool       `json:"rollOver"`
	Status       string     `json:"status"`
	DrawnNumber  *int       `json:"drawnNumber,omitempty"`
	PaidAmount   *string    `json:"paidAmount,omitempty"` // Wei as string
	Won          *bool      `json:"won,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
}

// LeaderboardEntry combines a player's net PnL with their dice
// activity (wager count and wins from the history table)
type LeaderboardEntry struct {
	WalletAddress string  `json:"walletAddress"`
	Pnl           float64 `json:"pnl"` // In MNT
	Rank          int     `json:"rank"`
	Wagers        int     `json:"wagers"`
	Wins          int     `json:"wins"`
}

// InitPostgres initializes the PostgreSQL connection pool
func InitPostgres() error {
	log.Println("🔌 Connecting to PostgreSQL...")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = config.MaxOpenConns
	poolConfig.MinConns = config.MinIdleConns
	poolConfig.MaxConnLifetime = config.ConnMaxLifetime

	PostgresPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := PostgresPool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ PostgreSQL connected successfully")

	if err := InitSchema(context.Background()); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// ClosePostgres closes the PostgreSQL connection pool
func ClosePostgres() {
	if PostgresPool != nil {
		log.Println("🔌 Closing PostgreSQL connection...")
		PostgresPool.Close()
	}
}

// HealthCheckPostgres pings the pool
func HealthCheckPostgres(ctx context.Context) error {
	if PostgresPool == nil {
		return fmt.Errorf("postgres not initialized")
	}
	return PostgresPool.Ping(ctx)
}

// InitSchema creates the database tables if they don't exist
func InitSchema(ctx context.Context) error {
	log.Println("📋 Initializing database schema...")

	diceWagersSchema := `
	CREATE TABLE IF NOT EXISTS dice_wagers (
		request_id TEXT PRIMARY KEY,
		participant TEXT NOT NULL,
		chosen_number INT NOT NULL,
		amount NUMERIC(78,0) NOT NULL,
		multiplier BIGINT NOT NULL,
		expected_win NUMERIC(78,0) NOT NULL,
		roll_over BOOLEAN NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		drawn_number INT,
		paid_amount NUMERIC(78,0),
		won BOOLEAN,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		resolved_at TIMESTAMP
	);

	-- Index on participant for player history
	CREATE INDEX IF NOT EXISTS idx_dice_wagers_participant ON dice_wagers(participant);

	-- Index on status for pending lookups
	CREATE INDEX IF NOT EXISTS idx_dice_wagers_status ON dice_wagers(status);

	-- Index on created_at for recent history
	CREATE INDEX IF NOT EXISTS idx_dice_wagers_created_at ON dice_wagers(created_at DESC);
	`

	if _, err := PostgresPool.Exec(ctx, diceWagersSchema); err != nil {
		return fmt.Errorf("failed to create dice_wagers table: %w", err)
	}

	playerPnLSchema := `
	CREATE TABLE IF NOT EXISTS player_pnl (
		wallet_address TEXT PRIMARY KEY,
		amount DOUBLE PRECISION NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_player_pnl_amount ON player_pnl(amount DESC);
	`

	if _, err := PostgresPool.Exec(ctx, playerPnLSchema); err != nil {
		return fmt.Errorf("failed to create player_pnl table: %w", err)
	}

	log.Println("✅ Database schema initialized")
	return nil
}

/* =========================
   DICE WAGER HISTORY
========================= */

func (r *WagerHistoryRecord) normalize() {
	if r.Status == "" {
		r.Status = "pending"
	}
}

// StoreWager inserts a pending wager row
func StoreWager(ctx context.Context, record *WagerHistoryRecord) error {
	if PostgresPool == nil {
		log.Println("⚠️  PostgreSQL not initialized, skipping wager storage")
		return nil
	}
	record.normalize()

	query := `
		INSERT INTO dice_wagers
		(request_id, participant, chosen_number, amount, multiplier, expected_win, roll_over, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (request_id) DO NOTHING
	`

	_, err := PostgresPool.Exec(
		ctx,
		query,
		record.RequestID,
		record.Participant,
		record.ChosenNumber,
		record.Amount,
		record.Multiplier,
		record.ExpectedWin,
		record.RollOver,
		record.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to store wager: %w", err)
	}

	log.Printf("✅ Stored wager - Request: %s, Player: %s", record.RequestID, record.Participant)
	return nil
}

// MarkWagerResolved finalizes a wager row with the settlement outcome
func MarkWagerResolved(ctx context.Context, requestID string, drawnNumber int, paidAmount string, won bool) error {
	if PostgresPool == nil {
		return nil
	}

	query := `
		UPDATE dice_wagers
		SET status = 'resolved', drawn_number = $2, paid_amount = $3, won = $4, resolved_at = NOW()
		WHERE request_id = $1
	`

	_, err := PostgresPool.Exec(ctx, query, requestID, drawnNumber, paidAmount, won)
	if err != nil {
		return fmt.Errorf("failed to mark wager resolved: %w", err)
	}
	return nil
}

// GetWager retrieves a wager row by request id
func GetWager(ctx context.Context, requestID string) (*WagerHistoryRecord, error) {
	if PostgresPool == nil {
		return nil, nil
	}

	query := `
		SELECT request_id, participant, chosen_number, amount::text, multiplier, expected_win::text,
		       roll_over, status, drawn_number, paid_amount::text, won, created_at, resolved_at
		FROM dice_wagers
		WHERE request_id = $1
	`

	var record WagerHistoryRecord
	err := PostgresPool.QueryRow(ctx, query, requestID).Scan(
		&record.RequestID,
		&record.Participant,
		&record.ChosenNumber,
		&record.Amount,
		&record.Multiplier,
		&record.ExpectedWin,
		&record.RollOver,
		&record.Status,
		&record.DrawnNumber,
		&record.PaidAmount,
		&record.Won,
		&record.CreatedAt,
		&record.ResolvedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}

	return &record, nil
}

// GetRecentWagers returns the most recently resolved wagers
func GetRecentWagers(ctx context.Context, limit int) ([]*WagerHistoryRecord, error) {
	if PostgresPool == nil {
		return nil, nil
	}

	query := `
		SELECT request_id, participant, chosen_number, amount::text, multiplier, expected_win::text,
		       roll_over, status, drawn_number, paid_amount::text, won, created_at, resolved_at
		FROM dice_wagers
		WHERE status = 'resolved'
		ORDER BY resolved_at DESC
		LIMIT $1
	`

	rows, err := PostgresPool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent wagers: %w", err)
	}
	defer rows.Close()

	records := make([]*WagerHistoryRecord, 0, limit)
	for rows.Next() {
		var record WagerHistoryRecord
		if err := rows.Scan(
			&record.RequestID,
			&record.Participant,
			&record.ChosenNumber,
			&record.Amount,
			&record.Multiplier,
			&record.ExpectedWin,
			&record.RollOver,
			&record.Status,
			&record.DrawnNumber,
			&record.PaidAmount,
			&record.Won,
			&record.CreatedAt,
			&record.ResolvedAt,
		); err != nil {
			log.Printf("⚠️  Failed to scan wager row: %v", err)
			continue
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}

// GetWagerTotals sums staked and paid volume across all wagers
func GetWagerTotals(ctx context.Context) (staked *big.Int, paid *big.Int, err error) {
	if PostgresPool == nil {
		return new(big.Int), new(big.Int), nil
	}

	query := `
		SELECT COALESCE(SUM(amount), 0)::text,
		       COALESCE(SUM(paid_amount), 0)::text
		FROM dice_wagers
	`

	var stakedStr, paidStr string
	if err := PostgresPool.QueryRow(ctx, query).Scan(&stakedStr, &paidStr); err != nil {
		return nil, nil, fmt.Errorf("failed to query wager totals: %w", err)
	}

	staked, _ = new(big.Int).SetString(stakedStr, 10)
	paid, _ = new(big.Int).SetString(paidStr, 10)
	if staked == nil {
		staked = new(big.Int)
	}
	if paid == nil {
		paid = new(big.Int)
	}
	return staked, paid, nil
}

/* =========================
   PLAYER PNL
========================= */

// AddPlayerPnL credits a player's PnL (payouts)
func AddPlayerPnL(ctx context.Context, walletAddress string, amount float64) error {
	if PostgresPool == nil {
		return nil
	}

	query := `
		INSERT INTO player_pnl (wallet_address, amount)
		VALUES ($1, $2)
		ON CONFLICT (wallet_address) DO UPDATE SET amount = player_pnl.amount + $2
	`

	_, err := PostgresPool.Exec(ctx, query, walletAddress, amount)
	if err != nil {
		return fmt.Errorf("failed to add player pnl: %w", err)
	}
	return nil
}

// SubtractPlayerPnL debits a player's PnL (stakes)
func SubtractPlayerPnL(ctx context.Context, walletAddress string, amount float64) error {
	return AddPlayerPnL(ctx, walletAddress, -amount)
}

// GetLeaderboardPosition returns one player's ranked entry, nil when
// they have no PnL row yet
func GetLeaderboardPosition(ctx context.Context, walletAddress string) (*LeaderboardEntry, error) {
	if PostgresPool == nil {
		return nil, nil
	}

	query := `
		SELECT wallet_address, pnl, rank, wagers, wins FROM (
			SELECT p.wallet_address, p.amount AS pnl,
			       RANK() OVER (ORDER BY p.amount DESC) AS rank,
			       COUNT(w.request_id) AS wagers,
			       COUNT(w.request_id) FILTER (WHERE w.won) AS wins
			FROM player_pnl p
			LEFT JOIN dice_wagers w ON w.participant = p.wallet_address
			GROUP BY p.wallet_address, p.amount
		) ranked
		WHERE wallet_address = $1
	`

	var entry LeaderboardEntry
	err := PostgresPool.QueryRow(ctx, query, walletAddress).Scan(
		&entry.WalletAddress,
		&entry.Pnl,
		&entry.Rank,
		&entry.Wagers,
		&entry.Wins,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard position: %w", err)
	}

	return &entry, nil
}

// GetLeaderboard returns the top players by PnL with their dice
// activity alongside
func GetLeaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	if PostgresPool == nil {
		return nil, nil
	}

	query := `
		SELECT p.wallet_address, p.amount AS pnl,
		       RANK() OVER (ORDER BY p.amount DESC) AS rank,
		       COUNT(w.request_id) AS wagers,
		       COUNT(w.request_id) FILTER (WHERE w.won) AS wins
		FROM player_pnl p
		LEFT JOIN dice_wagers w ON w.participant = p.wallet_address
		GROUP BY p.wallet_address, p.amount
		ORDER BY p.amount DESC
		LIMIT $1
	`

	rows, err := PostgresPool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]*LeaderboardEntry, 0, limit)
	for rows.Next() {
		var entry LeaderboardEntry
		if err := rows.Scan(&entry.WalletAddress, &entry.Pnl, &entry.Rank, &entry.Wagers, &entry.Wins); err != nil {
			log.Printf("⚠️  Failed to scan leaderboard row: %v", err)
			continue
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
