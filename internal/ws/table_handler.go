package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/tablesim/internal/auth"
	"github.com/playmatatu/tablesim/internal/game"
	"github.com/playmatatu/tablesim/internal/session"
)

// Message types
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type PointData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ResizeData struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// commandTimeout bounds how long a client waits on a busy table.
const commandTimeout = 2 * time.Second

// Handler upgrades table websocket connections.
type Handler struct {
	hub       *Hub
	tables    *session.Manager
	jwtSecret []byte
}

func NewHandler(hub *Hub, tables *session.Manager, jwtSecret string) *Handler {
	return &Handler{hub: hub, tables: tables, jwtSecret: []byte(jwtSecret)}
}

// HandleWebSocket serves GET /tables/:token/ws. Anyone may watch; the ct
// query parameter carries a control token for clients that drive the table.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := c.Param("token")
	controlToken := c.Query("ct")

	runner, err := h.tables.Get(token)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
		return
	}

	control := false
	if controlToken != "" {
		if err := auth.VerifyControlToken(h.jwtSecret, controlToken, token); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid control token"})
			return
		}
		control = true
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:     h.hub,
		conn:    conn,
		table:   token,
		runner:  runner,
		control: control,
		send:    make(chan outbound, sendBuffer),
	}

	// Watchers get the current frame straight away rather than waiting a tick.
	if data, err := session.EncodeFrame(runner.Latest()); err == nil {
		client.send <- outbound{binary: true, data: data}
	}

	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump reads control messages until the connection drops.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] unexpected close on %s: %v", c.table, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage applies one client message to the table.
func (c *Client) handleMessage(msg WSMessage) {
	if msg.Type == "get_frame" {
		if data, err := session.EncodeFrame(c.runner.Latest()); err == nil {
			c.queue(outbound{binary: true, data: data})
		}
		return
	}

	if !c.control {
		c.sendError("Control token required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch msg.Type {
	case "begin_drag":
		var data PointData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid drag data")
			return
		}
		started, err := c.runner.BeginCueDrag(ctx, game.NewVec2(data.X, data.Y))
		if err != nil {
			c.sendCommandError(err)
			return
		}
		c.sendJSON(map[string]interface{}{"type": "drag_begun", "started": started})

	case "drag":
		var data PointData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid drag data")
			return
		}
		if err := c.runner.DragCueTo(ctx, game.NewVec2(data.X, data.Y)); err != nil {
			c.sendCommandError(err)
		}

	case "end_drag":
		if err := c.runner.EndCueDrag(ctx); err != nil {
			c.sendCommandError(err)
		}

	case "rack":
		if err := c.runner.Rack(ctx); err != nil {
			c.sendCommandError(err)
		}

	case "resize":
		var data ResizeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid resize data")
			return
		}
		if err := c.runner.Resize(ctx, data.Width, data.Height); err != nil {
			c.sendCommandError(err)
		}

	default:
		c.sendError("Unknown message type")
	}
}

func (c *Client) sendCommandError(err error) {
	switch {
	case errors.Is(err, session.ErrRunnerStopped):
		c.sendError("Table closed")
	case errors.Is(err, game.ErrInvalidBounds):
		c.sendError("Invalid table size")
	case errors.Is(err, context.DeadlineExceeded):
		c.sendError("Table busy")
	default:
		log.Printf("[WS] command on %s failed: %v", c.table, err)
		c.sendError("Command failed")
	}
}
