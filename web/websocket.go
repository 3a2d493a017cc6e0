package web

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"brawlpit/arena"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// ArenaEvent is the JSON frame pushed to connected players. Type keys
// the payload; unused fields are omitted.
type ArenaEvent struct {
	Type         string              `json:"type"`
	Count        int                 `json:"count,omitempty"`
	Participants int                 `json:"participants,omitempty"`
	Eliminated   string              `json:"eliminated,omitempty"`
	Eliminator   string              `json:"eliminator,omitempty"`
	Remaining    int                 `json:"remaining"`
	Placement    int                 `json:"placement,omitempty"`
	Username     string              `json:"username,omitempty"`
	Kills        int                 `json:"kills,omitempty"`
	Bundle       *arena.RewardBundle `json:"bundle,omitempty"`
}

// Gateway is the Notification Gateway: a websocket hub that fans arena
// events out to connected players. Everything here is fire-and-forget;
// a dead or slow connection gets dropped, never waited on.
type Gateway struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]int // conn -> accountID, 0 for spectators
}

func NewGateway() *Gateway {
	return &Gateway{
		clients: make(map[*websocket.Conn]int),
	}
}

// HandleWebSocket upgrades the connection and parks it in the hub.
// Logged-in players get per-player events (reward grants); anonymous
// connections get only the broadcast lane.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	accountID := 0
	if account := AccountFromContext(r.Context()); account != nil {
		accountID = account.ID
	}

	g.mu.Lock()
	g.clients[conn] = accountID
	total := len(g.clients)
	g.mu.Unlock()

	log.Printf("Arena gateway: client connected (account %d, %d total)", accountID, total)

	// Read loop exists only to notice the close.
	go func() {
		defer g.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (g *Gateway) drop(conn *websocket.Conn) {
	g.mu.Lock()
	delete(g.clients, conn)
	g.mu.Unlock()
	conn.Close()
}

// broadcast writes an event to every connection, pruning the dead ones.
func (g *Gateway) broadcast(ev ArenaEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for conn := range g.clients {
		if err := conn.WriteJSON(ev); err != nil {
			delete(g.clients, conn)
			conn.Close()
		}
	}
}

// sendTo writes an event to every connection a specific account holds.
func (g *Gateway) sendTo(accountID int, ev ArenaEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for conn, id := range g.clients {
		if id != accountID {
			continue
		}
		if err := conn.WriteJSON(ev); err != nil {
			delete(g.clients, conn)
			conn.Close()
		}
	}
}

// arena.Notifier implementation

func (g *Gateway) RegistrationCount(count int) {
	g.broadcast(ArenaEvent{Type: "registration_count", Count: count})
}

func (g *Gateway) MatchStarted(participants int) {
	g.broadcast(ArenaEvent{Type: "match_started", Participants: participants})
}

func (g *Gateway) Elimination(eliminated, eliminator string, remaining, placement int) {
	g.broadcast(ArenaEvent{
		Type:       "elimination",
		Eliminated: eliminated,
		Eliminator: eliminator,
		Remaining:  remaining,
		Placement:  placement,
	})
}

func (g *Gateway) Winner(username string, kills int) {
	g.broadcast(ArenaEvent{Type: "winner", Username: username, Kills: kills})
}

func (g *Gateway) RewardGranted(accountID, placement int, bundle arena.RewardBundle) {
	g.sendTo(accountID, ArenaEvent{Type: "reward_granted", Placement: placement, Bundle: &bundle})
}
