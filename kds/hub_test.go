package kds

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-pos/policy"
)

func newHubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn, policy.RoleCashier)
		hub.Listen(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHubBroadcastsToClients(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	conn := dial(t, srv)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish("order_created", map[string]int{"order_number": 7})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Event string         `json:"event"`
		Data  map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "order_created", msg.Event)
	assert.Equal(t, 7, msg.Data["order_number"])
}

func TestHubForgetsClosedClients(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, hub)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish("order_updated", nil)
}

func TestHubDropsClientsThatFallBehind(t *testing.T) {
	hub := NewHub()
	srv := newHubServer(t, NewHub())
	conn := dial(t, srv)
	defer conn.Close()

	// a client with no writer never drains its queue
	stalled := &client{conn: conn, role: policy.RoleCashier, send: make(chan []byte, 1)}
	hub.mutex.Lock()
	hub.clients[conn] = stalled
	hub.mutex.Unlock()

	start := time.Now()
	hub.Publish("order_created", nil)
	assert.Equal(t, 1, hub.Count())
	hub.Publish("order_updated", nil)
	assert.Less(t, time.Since(start), writeWait, "publishing does not wait on sockets")
	assert.Equal(t, 0, hub.Count())

	queued, ok := <-stalled.send
	require.True(t, ok)
	assert.Contains(t, string(queued), "order_created")
	_, ok = <-stalled.send
	assert.False(t, ok, "queue is closed once the client is dropped")
}
