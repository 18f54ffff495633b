package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"diceGameServer/config"
	"diceGameServer/game"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  config.WSReadBufferSize,
	WriteBufferSize: config.WSWriteBufferSize,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Feed broadcasts wager lifecycle events to every connected client.
// It implements game.Notifier; a client that cannot keep up is dropped.
type Feed struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

// NewFeed creates an empty feed hub
func NewFeed() *Feed {
	return &Feed{
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// HandleWS upgrades the connection and registers the client
// GET /ws
func (f *Feed) HandleWS(w http.ResponseWriter, r *http.Request) {
	log.Println("📥 WebSocket connection attempt from:", r.RemoteAddr)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("❌ WebSocket upgrade failed:", err)
		return
	}

	send := make(chan []byte, config.WSSendQueueSize)

	f.mu.Lock()
	f.clients[conn] = send
	count := len(f.clients)
	f.mu.Unlock()
	log.Printf("✅ Feed client connected! Total clients: %d", count)

	// Writer goroutine: one per client
	go func() {
		for msg := range send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				f.drop(conn)
				return
			}
		}
	}()

	// Reader loop: we ignore inbound messages, but the read detects
	// disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			f.drop(conn)
			return
		}
	}
}

func (f *Feed) drop(conn *websocket.Conn) {
	f.mu.Lock()
	send, ok := f.clients[conn]
	if ok {
		delete(f.clients, conn)
		close(send)
	}
	count := len(f.clients)
	f.mu.Unlock()

	if ok {
		conn.Close()
		log.Printf("👋 Feed client disconnected. Total clients: %d", count)
	}
}

func (f *Feed) broadcast(msgType string, data interface{}) {
	msg, err := json.Marshal(map[string]interface{}{
		"type": msgType,
		"data": data,
	})
	if err != nil {
		log.Printf("⚠️  Failed to marshal %s event: %v", msgType, err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for conn, send := range f.clients {
		select {
		case send <- msg:
		default:
			// Slow client: drop it rather than block the engine
			delete(f.clients, conn)
			close(send)
			conn.Close()
		}
	}
}

/* =========================
   game.Notifier
========================= */

// EngineDeployed announces the engine instance
func (f *Feed) EngineDeployed(gameID uint64) {
	f.broadcast("engine_deployed", map[string]interface{}{
		"gameId": gameID,
	})
}

// WagerStarted announces an accepted wager
func (f *Feed) WagerStarted(ev game.WagerStartedEvent) {
	f.broadcast("wager_started", map[string]interface{}{
		"requestId":    ev.RequestID.Hex(),
		"participant":  ev.Participant.Hex(),
		"multiplier":   ev.Multiplier,
		"chosenNumber": ev.ChosenNumber,
		"amount":       ev.Amount.String(), // Wei as string
		"rollOver":     ev.RollOver,
	})
}

// WagerFinished announces a settlement
func (f *Feed) WagerFinished(ev game.WagerFinishedEvent) {
	f.broadcast("wager_finished", map[string]interface{}{
		"requestId":   ev.RequestID.Hex(),
		"participant": ev.Participant.Hex(),
		"paidAmount":  ev.PaidAmount.String(), // Wei as string
		"won":         ev.Won,
		"drawnNumber": ev.DrawnNumber,
	})
}

// ParameterServiceChanged announces the configuration change
func (f *Feed) ParameterServiceChanged(newAddress common.Address) {
	f.broadcast("parameter_service_changed", map[string]interface{}{
		"newAddress": newAddress.Hex(),
	})
}
