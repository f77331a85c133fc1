package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/tablesim/internal/game"
	"github.com/playmatatu/tablesim/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin is enforced by the CORS middleware
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

type outbound struct {
	binary bool
	data   []byte
}

// Client is one websocket watching a table. Clients holding a valid control
// token may also drive the table.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	table   string
	runner  *session.Runner
	control bool
	send    chan outbound
	closed  bool // guarded by hub.mu
}

// Hub groups connected clients into one room per table.
type Hub struct {
	rooms      map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run services register and unregister requests until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			log.Println("[WS] hub stopping")
			return

		case client := <-h.register:
			h.mu.Lock()
			room, exists := h.rooms[client.table]
			if !exists {
				room = make(map[*Client]struct{})
				h.rooms[client.table] = room
			}
			room[client] = struct{}{}
			size := len(room)
			h.mu.Unlock()
			log.Printf("[WS] client joined %s (control=%v, room_size=%d)", client.table, client.control, size)

		case client := <-h.unregister:
			h.mu.Lock()
			if room, exists := h.rooms[client.table]; exists {
				if _, ok := room[client]; ok {
					delete(room, client)
					client.close()
					if len(room) == 0 {
						delete(h.rooms, client.table)
					}
					log.Printf("[WS] client left %s (room_size=%d)", client.table, len(room))
				}
			}
			h.mu.Unlock()
		}
	}
}

// RoomSize reports how many clients are watching a table.
func (h *Hub) RoomSize(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[table])
}

func (h *Hub) broadcast(table string, msg outbound, logDrops bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[table] {
		select {
		case client.send <- msg:
		default:
			// Client's buffer is full
			if logDrops {
				log.Printf("[WS] send buffer full for a client of %s, dropping message", table)
			}
		}
	}
}

// close ends the client's send queue; writePump then sends a close frame.
// Callers hold h.mu for writing.
func (c *Client) close() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// closeRoom disconnects every watcher of a table. Messages already queued
// are still written before the close frame.
func (h *Hub) closeRoom(table string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[table]
	for client := range room {
		client.close()
	}
	delete(h.rooms, table)
	return len(room)
}

// BroadcastToTable sends a JSON message to everyone watching a table.
func (h *Hub) BroadcastToTable(table string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] error marshaling message: %v", err)
		return
	}
	h.broadcast(table, outbound{data: data}, true)
}

// PublishFrame sends the frame to the table's room as a binary msgpack
// message. Slow clients miss frames rather than stall the table.
func (h *Hub) PublishFrame(token string, f *game.Frame) {
	if h.RoomSize(token) == 0 {
		return
	}
	data, err := session.EncodeFrame(f)
	if err != nil {
		log.Printf("[WS] encode frame %s@%d: %v", token, f.Tick, err)
		return
	}
	h.broadcast(token, outbound{binary: true, data: data}, false)
}

// PublishEvent relays a table event to its room. A closed table also
// disconnects its watchers once the event is written.
func (h *Hub) PublishEvent(ctx context.Context, event session.TableEvent) {
	h.BroadcastToTable(event.Table, map[string]interface{}{
		"type":  event.Type,
		"table": event.Table,
		"data":  event.Data,
		"at":    event.At,
	})
	if event.Type == session.EventClosed {
		if n := h.closeRoom(event.Table); n > 0 {
			log.Printf("[WS] disconnected %d watchers of closed table %s", n, event.Table)
		}
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "table closed"))
				return
			}

			kind := websocket.TextMessage
			if msg.binary {
				kind = websocket.BinaryMessage
			}
			if err := c.conn.WriteMessage(kind, msg.data); err != nil {
				log.Printf("[WS] write error on %s: %v", c.table, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] ping error on %s: %v", c.table, err)
				return
			}
		}
	}
}

// queue hands msg to writePump unless the buffer is full or the client has
// been disconnected.
func (c *Client) queue(msg outbound) bool {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// sendJSON queues a message for this client only.
func (c *Client) sendJSON(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	if !c.queue(outbound{data: data}) {
		log.Printf("[WS] reply dropped for a client of %s", c.table)
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendJSON(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}
