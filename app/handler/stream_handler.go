package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"preflight/internal/model"
	"preflight/pkg/interfaces"
	"preflight/pkg/logger"
)

const (
	// eventBufferSize is the per-client event backlog. A client that
	// falls further behind loses events rather than slowing the cycle.
	eventBufferSize = 64

	streamWriteTimeout = 10 * time.Second
	streamPingInterval = 30 * time.Second
)

// StreamHub fans prediction events out to connected WebSocket clients.
type StreamHub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan *model.PredictionEvent
}

// NewStreamHub creates an empty hub.
func NewStreamHub() *StreamHub {
	return &StreamHub{
		clients: make(map[*websocket.Conn]chan *model.PredictionEvent),
	}
}

var _ interfaces.EventSink = (*StreamHub)(nil)

// Publish delivers an event to every connected client. It never blocks:
// a full client buffer drops the event for that client only.
func (h *StreamHub) Publish(event *model.PredictionEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, events := range h.clients {
		select {
		case events <- event:
		default:
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *StreamHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *StreamHub) add(ws *websocket.Conn) chan *model.PredictionEvent {
	events := make(chan *model.PredictionEvent, eventBufferSize)
	h.mu.Lock()
	h.clients[ws] = events
	h.mu.Unlock()
	return events
}

func (h *StreamHub) remove(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins, production should use stricter checks
	},
}

// StreamHandler handles the prediction event stream
type StreamHandler struct {
	hub *StreamHub
}

// NewStreamHandler creates stream handler
func NewStreamHandler(hub *StreamHub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

// Stream streams prediction lifecycle events over WebSocket
// @Summary Stream prediction events
// @Description WebSocket upgrade; every prediction cycle's phase transitions are pushed as JSON
// @Tags predictions
// @Router /api/v1/predictions/stream [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to upgrade to websocket: %v", err)
		return
	}
	defer ws.Close()

	events := h.hub.add(ws)
	defer h.hub.remove(ws)

	// Reader loop: client frames are ignored, but reading detects close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case event := <-events:
			data, err := event.ToJSON()
			if err != nil {
				continue
			}
			ws.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ping.C:
			ws.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
