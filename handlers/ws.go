package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

// WSHandler pushes change notifications to every connected dashboard so
// open calendars and lists refresh without polling.
type WSHandler struct {
	M *melody.Melody
}

type updateMessage struct {
	Entity   string `json:"entity"`
	Action   string `json:"action"`
	EntityID string `json:"entity_id"`
	UserID   string `json:"user_id"`
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 4 * 1024

	// Keep-alive tuned for reverse proxies that kill idle connections.
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		log.Printf("✅ Dashboard client connected: %s", s.Request.RemoteAddr)
	})
	m.HandleDisconnect(func(s *melody.Session) {
		log.Printf("🔌 Dashboard client disconnected: %s", s.Request.RemoteAddr)
	})
	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("❌ WebSocket error: %v", err)
	})

	return &WSHandler{M: m}
}

func (h *WSHandler) HandleWS(c *gin.Context) {
	if err := h.M.HandleRequest(c.Writer, c.Request); err != nil {
		log.Printf("❌ Failed to upgrade websocket: %v", err)
	}
}

// BroadcastUpdate tells every connected dashboard that an entity changed.
func (h *WSHandler) BroadcastUpdate(entity, action, entityID, userID string) {
	msg, err := json.Marshal(updateMessage{
		Entity:   entity,
		Action:   action,
		EntityID: entityID,
		UserID:   userID,
	})
	if err != nil {
		return
	}
	if err := h.M.Broadcast(msg); err != nil {
		log.Printf("⚠️ Error broadcasting %s update: %v", entity, err)
	}
}
