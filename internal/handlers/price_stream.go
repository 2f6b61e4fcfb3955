package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"launchcontrol/internal/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is already filtered by the CORS middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// priceHub fans trade results out to websocket subscribers per launch.
type priceHub struct {
	mu   sync.Mutex
	subs map[uint]map[*websocket.Conn]struct{}
}

var hub = &priceHub{subs: make(map[uint]map[*websocket.Conn]struct{})}

func (h *priceHub) add(launchID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[launchID] == nil {
		h.subs[launchID] = make(map[*websocket.Conn]struct{})
	}
	h.subs[launchID][conn] = struct{}{}
}

func (h *priceHub) remove(launchID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[launchID], conn)
	conn.Close()
}

func (h *priceHub) broadcast(launchID uint, msg interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.subs[launchID] {
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("price stream write failed, dropping subscriber: %v", err)
			delete(h.subs[launchID], conn)
			conn.Close()
		}
	}
}

// broadcastTrade pushes a trade result to the launch's price stream.
func broadcastTrade(result *engine.TradeResult) {
	hub.broadcast(result.LaunchID, result)
}

// StreamPrice upgrades the connection and streams trade results for a launch
// until the client goes away.
func StreamPrice(c *gin.Context) {
	id, err := parseLaunchID(c)
	if err != nil {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warnf("websocket upgrade failed: %v", err)
		return
	}
	hub.add(id, conn)

	// Drain control frames; the read loop ends when the client disconnects.
	go func() {
		defer hub.remove(id, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
