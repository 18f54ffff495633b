package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"diceGameServer/api"
	"diceGameServer/config"
	"diceGameServer/contract"
	"diceGameServer/db"
	"diceGameServer/game"
	"diceGameServer/oracle"
	"diceGameServer/ws"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
)

// fanoutNotifier delivers engine events to every sink in order
type fanoutNotifier []game.Notifier

func (f fanoutNotifier) EngineDeployed(gameID uint64) {
	for _, n := range f {
		n.EngineDeployed(gameID)
	}
}

func (f fanoutNotifier) WagerStarted(ev game.WagerStartedEvent) {
	for _, n := range f {
		n.WagerStarted(ev)
	}
}

func (f fanoutNotifier) WagerFinished(ev game.WagerFinishedEvent) {
	for _, n := range f {
		n.WagerFinished(ev)
	}
}

func (f fanoutNotifier) ParameterServiceChanged(newAddress common.Address) {
	for _, n := range f {
		n.ParameterServiceChanged(newAddress)
	}
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables")
	} else {
		log.Println("✅ Loaded environment variables from .env")
	}

	// Initialize database connections
	if err := db.InitPostgres(); err != nil {
		log.Printf("⚠️  Warning: PostgreSQL initialization failed: %v", err)
		log.Println("   Wager history and leaderboard features will be disabled")
	}
	defer db.ClosePostgres()

	if err := db.InitRedis(); err != nil {
		log.Printf("⚠️  Warning: Redis initialization failed: %v", err)
		log.Println("   Pending-wager mirror and recent results will be disabled")
	}
	defer db.CloseRedis()

	// Event sinks: websocket feed + audit recorder
	feed := ws.NewFeed()
	notifier := fanoutNotifier{feed, db.NewRecorder()}

	gameID := uint64(1)
	if gameIDStr := os.Getenv("GAME_ID"); gameIDStr != "" {
		if parsed, err := strconv.ParseUint(gameIDStr, 10, 64); err == nil {
			gameID = parsed
		}
	}
	admin := common.HexToAddress(os.Getenv("ADMIN_ADDRESS"))

	// Collaborators: chain-backed when BANKROLL_ADDRESS is set,
	// in-process stand-ins otherwise
	var (
		reserve  game.Reserve
		params   game.ParameterService
		verifier game.EndpointVerifier
		dialer   game.ParamsDialer
	)

	bankrollAddr := os.Getenv("BANKROLL_ADDRESS")
	if bankrollAddr != "" {
		rpcURL := os.Getenv("RPC_URL")
		if rpcURL == "" {
			rpcURL = config.MantleSepoliaRPC
		}
		chainID := int64(config.MantleChainID)
		if chainIDStr := os.Getenv("CHAIN_ID"); chainIDStr != "" {
			if parsed, err := strconv.ParseInt(chainIDStr, 10, 64); err == nil {
				chainID = parsed
			}
		}

		bankroll, err := contract.NewBankrollContract(rpcURL, chainID, common.HexToAddress(bankrollAddr))
		if err != nil {
			log.Fatalf("❌ Bankroll client initialization failed: %v", err)
		}
		defer bankroll.Close()
		reserve = bankroll

		client, err := ethclient.Dial(rpcURL)
		if err != nil {
			log.Fatalf("❌ RPC connection failed: %v", err)
		}
		defer client.Close()

		paramsContract, err := contract.NewParamsContract(client, common.HexToAddress(os.Getenv("PARAMS_ADDRESS")))
		if err != nil {
			log.Fatalf("❌ Parameter registry client initialization failed: %v", err)
		}
		params = paramsContract
		verifier = &contract.CodeVerifier{Client: client}
		dialer = func(addr common.Address) (game.ParameterService, error) {
			return contract.NewParamsContract(client, addr)
		}
	} else {
		log.Println("⚠️  BANKROLL_ADDRESS not set, running with in-process bankroll (dev mode)")
		reserve = contract.NewLocalBankroll(config.MNTToWei(1_000_000))
		staticParams := &contract.StaticParams{MinStake: config.MNTToWei(0.001)}
		params = staticParams
		verifier = contract.AcceptAllVerifier{}
		dialer = func(addr common.Address) (game.ParameterService, error) {
			return &contract.StaticParams{MinStake: staticParams.MinStake, Addr: addr}, nil
		}
	}

	// Randomness oracle: remote coordinator when ORACLE_URL is set,
	// in-process oracle otherwise
	oracleIdentity := common.HexToAddress(os.Getenv("ORACLE_ADDRESS"))
	var engineOracle game.Oracle
	var localOracle *oracle.LocalOracle

	if oracleURL := os.Getenv("ORACLE_URL"); oracleURL != "" {
		engineOracle = oracle.NewHTTPOracle(oracleURL, os.Getenv("ORACLE_CALLBACK_URL"), oracleIdentity)
	} else {
		log.Println("⚠️  ORACLE_URL not set, running with in-process oracle (dev mode)")
		localOracle = oracle.NewLocalOracle(oracleIdentity)
		engineOracle = localOracle
	}

	engine := game.NewEngine(game.EngineConfig{
		Reserve:  reserve,
		Oracle:   engineOracle,
		Params:   params,
		Verifier: verifier,
		Dialer:   dialer,
		Admin:    admin,
		GameID:   gameID,
		Notifier: notifier,
	})
	if localOracle != nil {
		localOracle.SetResolver(engine)
	}
	api.SetEngine(engine)

	// WebSocket endpoint
	http.HandleFunc("/ws", feed.HandleWS)

	// API endpoints
	http.HandleFunc("/api/dice/place", api.HandleDicePlace)
	http.HandleFunc("/api/dice/wager/", api.HandleGetWager) // Trailing slash for :requestId
	http.HandleFunc("/api/dice/history", api.HandleGetHistory)
	http.HandleFunc("/api/dice/recent", api.HandleGetRecent)
	http.HandleFunc("/api/dice/verify", api.HandleVerifyOutcome)
	http.HandleFunc("/api/dice/stats", api.HandleGetStats)
	http.HandleFunc("/api/oracle/callback", api.HandleOracleCallback)
	http.HandleFunc("/api/admin/paramservice", api.HandleSetParameterService)
	http.HandleFunc("/api/leaderboard", api.HandleGetLeaderboard)
	http.HandleFunc("/api/health", api.HandleHealthCheck)

	addr := config.ServerHost + ":" + config.ServerPort
	log.Printf("🚀 Server starting on %s", addr)
	log.Println("")
	log.Println("📡 WebSocket Endpoints:")
	log.Println("   ws://localhost:8080/ws - Wager event feed")
	log.Println("")
	log.Println("🔌 API Endpoints:")
	log.Println("   POST /api/dice/place - Place a wager")
	log.Println("   GET  /api/dice/wager/:requestId - Wager status")
	log.Println("   GET  /api/dice/history - Recent settlements")
	log.Println("   GET  /api/dice/recent - Results ticker feed (Redis)")
	log.Println("   GET  /api/dice/verify - Recompute a drawn number")
	log.Println("   GET  /api/dice/stats - Volume counters")
	log.Println("   POST /api/oracle/callback - Randomness delivery")
	log.Println("   POST /api/admin/paramservice - Swap parameter registry")
	log.Println("   GET  /api/leaderboard - Player PnL leaderboard")
	log.Println("   GET  /api/health - Health check (Redis + PostgreSQL)")
	log.Println("")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal("❌ Server error:", err)
	}
}
