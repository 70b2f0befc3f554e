package live

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/elementsenergies/metalware-monitor/internal/metrics"
	"github.com/elementsenergies/metalware-monitor/internal/models"
	"github.com/elementsenergies/metalware-monitor/internal/service"
)

// DemandSource supplies the latest minute's facility demand.
type DemandSource interface {
	LatestDemand(ctx context.Context) (models.LiveDemandUpdate, error)
}

// Hub pushes the latest minute demand to connected dashboard clients. The
// front end polls the minute series today; this is the push-based feed for
// the live demand widget.
type Hub struct {
	source   DemandSource
	interval time.Duration
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}

	upgrader websocket.Upgrader
}

// NewHub builds hub polling source every interval.
func NewHub(source DemandSource, interval time.Duration, logger *zap.Logger) *Hub {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Hub{
		source:   source,
		interval: interval,
		logger:   logger,
		clients:  make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP upgrades GET /api/live/demand connections.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(h, ws, h.logger)
	h.register(c)

	// Send the current figure immediately so the widget does not sit empty
	// until the next poll tick.
	if update, err := h.source.LatestDemand(r.Context()); err == nil {
		if data, err := json.Marshal(update); err == nil {
			c.send <- data
		}
	}

	go c.writePump()
	go c.readPump()
}

// Run polls the demand source and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			if h.ClientCount() == 0 {
				continue
			}
			update, err := h.source.LatestDemand(ctx)
			if err != nil {
				if !errors.Is(err, service.ErrNoData) {
					h.logger.Warn("live demand poll failed", zap.Error(err))
				}
				continue
			}
			h.broadcast(update)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(update models.LiveDemandUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		h.logger.Error("live update marshal failed", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow consumer; drop the tick rather than stall the rest.
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.LiveClients.Inc()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		metrics.LiveClients.Dec()
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		metrics.LiveClients.Dec()
	}
}
