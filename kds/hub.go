package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-pos/policy"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const (
	writeWait = 5 * time.Second
	sendQueue = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	conn *websocket.Conn
	role policy.Role
	send chan []byte
}

// Hub fans order, payment and shift events out to connected staff screens.
// Each connection has its own queue and writer so a slow screen never holds
// up the request that published the event.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// Register adds a connection with the role of the user who opened it and
// starts its writer.
func (h *Hub) Register(conn *websocket.Conn, role policy.Role) {
	cl := &client{conn: conn, role: role, send: make(chan []byte, sendQueue)}
	h.mutex.Lock()
	h.clients[conn] = cl
	h.mutex.Unlock()
	go h.writePump(cl)
}

// Unregister drops and closes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.drop(conn)
}

// drop must be called with the mutex held.
func (h *Hub) drop(conn *websocket.Conn) {
	cl, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(cl.send)
	conn.Close()
}

func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish broadcasts an event. Clients that cannot keep up are dropped;
// the caller never sees an error.
func (h *Hub) Publish(event string, data interface{}) {
	if h == nil {
		return
	}
	h.Broadcast(Message{Event: event, Data: data})
}

// Broadcast queues msg for every client without waiting on any socket.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling %s message: %v", msg.Event, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	utils.InfoLogger.Debugf("Broadcasting %s to %d clients", msg.Event, len(h.clients))
	for conn, cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			utils.ErrorLogger.Warnf("Dropping %s client with a full queue", cl.role)
			h.drop(conn)
		}
	}
}

func (h *Hub) writePump(cl *client) {
	for data := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Warnf("Dropping %s client after failed write: %v", cl.role, err)
			h.Unregister(cl.conn)
			return
		}
	}
}

// Listen keeps a registered connection open until the client goes away.
// Incoming frames are ignored.
func (h *Hub) Listen(conn *websocket.Conn) {
	defer h.Unregister(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
