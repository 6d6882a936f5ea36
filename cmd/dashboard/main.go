// Command dashboard serves a websocket feed of consensus results and
// miner scores so an operator can watch the aggregator live.
//
// Grounded on the teacher's serve-dashboard.go entry point, which
// serves a websocket endpoint backed by gorilla/websocket.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/veritas-net/validator-core/internal/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// feed fans out the latest aggregation outcomes to every connected
// dashboard client.
type feed struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func newFeed() *feed {
	return &feed{clients: make(map[*websocket.Conn]bool)}
}

func (f *feed) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("dashboard: upgrade failed: %v", err)
		return
	}

	f.mu.Lock()
	f.clients[conn] = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		delete(f.clients, conn)
		f.mu.Unlock()
		conn.Close()
	}()

	// Drain and discard client messages; this feed is broadcast-only.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

type update struct {
	Statement string                 `json:"statement"`
	Result    types.ValidationResult `json:"result"`
	At        time.Time              `json:"at"`
}

func (f *feed) broadcast(statement types.Statement, result types.ValidationResult) {
	payload, err := json.Marshal(update{Statement: string(statement), Result: result, At: time.Now()})
	if err != nil {
		log.Printf("dashboard: marshal update: %v", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("dashboard: write to client failed: %v", err)
		}
	}
}

// publishRequest is the body an aggregation driver posts to /publish to
// push a new ValidationResult to connected clients. cmd/validator does
// not post to this endpoint.
type publishRequest struct {
	Statement string                 `json:"statement"`
	Result    types.ValidationResult `json:"result"`
}

func (f *feed) handlePublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.broadcast(types.Statement(req.Statement), req.Result)
	w.WriteHeader(http.StatusAccepted)
}

func main() {
	addr := os.Getenv("DASHBOARD_LISTEN_ADDR")
	if addr == "" {
		addr = ":8081"
	}

	f := newFeed()
	http.HandleFunc("/ws", f.handle)
	http.HandleFunc("/publish", f.handlePublish)

	log.Printf("dashboard: listening on %s", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("dashboard: serve: %v", err)
	}
}
