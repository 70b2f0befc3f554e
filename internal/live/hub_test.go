package live

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elementsenergies/metalware-monitor/internal/models"
)

type stubSource struct {
	update models.LiveDemandUpdate
}

func (s *stubSource) LatestDemand(context.Context) (models.LiveDemandUpdate, error) {
	return s.update, nil
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHubSendsCurrentFigureOnConnect(t *testing.T) {
	source := &stubSource{update: models.LiveDemandUpdate{Minute: "2025-03-13 14:29:00", TotalKVA: 512.3}}
	hub := NewHub(source, time.Minute, zap.NewNop())

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var update models.LiveDemandUpdate
	require.NoError(t, json.Unmarshal(data, &update))
	assert.Equal(t, "2025-03-13 14:29:00", update.Minute)
	assert.Equal(t, 512.3, update.TotalKVA)
}

func TestHubBroadcastsOnTick(t *testing.T) {
	source := &stubSource{update: models.LiveDemandUpdate{Minute: "2025-03-13 14:30:00", TotalKVA: 498.7}}
	hub := NewHub(source, 20*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	// First frame is the connect-time snapshot, the second comes from the
	// poll loop.
	for i := 0; i < 2; i++ {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var update models.LiveDemandUpdate
		require.NoError(t, json.Unmarshal(data, &update))
		assert.Equal(t, 498.7, update.TotalKVA)
	}
}

func TestHubTracksClientCount(t *testing.T) {
	hub := NewHub(&stubSource{}, time.Minute, zap.NewNop())

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
