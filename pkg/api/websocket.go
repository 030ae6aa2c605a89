package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourusername/azulengine/pkg/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins - configure properly in production
	},
}

// WSMessage is a generic WebSocket message.
type WSMessage struct {
	Type    string          `json:"type"`    // Message type: "evaluate", "move", "analyze", "ping"
	ID      string          `json:"id"`      // Request ID for correlating responses
	Payload json.RawMessage `json:"payload"` // Type-specific payload
}

// WSResponse is a generic WebSocket response.
type WSResponse struct {
	Type    string      `json:"type"`              // Response type: "result", "error", "pong"
	ID      string      `json:"id,omitempty"`      // Request ID
	Payload interface{} `json:"payload,omitempty"` // Response data
	Error   string      `json:"error,omitempty"`   // Error message if any
}

// WSClient represents a connected WebSocket client.
type WSClient struct {
	conn     *websocket.Conn
	handlers *Handlers
	sendChan chan WSResponse
}

// WebSocket handles WebSocket connections for real-time analysis.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &WSClient{conn: conn, handlers: h, sendChan: make(chan WSResponse, 256)}
	go client.writePump()
	client.readPump()
}

func (c *WSClient) writePump() {
	defer c.conn.Close()
	for msg := range c.sendChan {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *WSClient) readPump() {
	defer func() { close(c.sendChan); c.conn.Close() }()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.handleMessage(msg)
	}
}

func (c *WSClient) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "evaluate":
		c.handleEvaluate(msg)
	case "move":
		c.handleMove(msg)
	case "analyze":
		c.handleAnalyze(msg)
	case "ping":
		c.sendChan <- WSResponse{Type: "pong", ID: msg.ID}
	default:
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "unknown message type"}
	}
}

func (c *WSClient) handleEvaluate(msg WSMessage) {
	var req EvaluateRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
		return
	}
	state, err := parsePosition(req.Position, req.Player)
	if err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid position"}
		return
	}
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: EvaluateResponse{
		Score:    c.handlers.engine.EvaluateCached(state, req.Player),
		Endgame:  c.handlers.engine.IsEndgame(state),
		Position: req.Position,
		Player:   req.Player,
	}}
}

func (c *WSClient) handleMove(msg WSMessage) {
	var req MoveRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
		return
	}
	state, err := parsePosition(req.Position, req.Player)
	if err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid position"}
		return
	}
	result, err := c.handlers.engine.Analyze(state, req.Player, engine.Request{
		Mode: engine.ModeAlphaBeta,
		AlphaBeta: engine.AlphaBetaOptions{
			MaxDepth: req.MaxDepth,
			MaxTime:  time.Duration(req.MaxTimeMs) * time.Millisecond,
		},
	})
	if err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "analysis failed"}
		return
	}
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: result}
}

func (c *WSClient) handleAnalyze(msg WSMessage) {
	var req AnalyzeRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
		return
	}
	result, err := c.handlers.analyzeOne(req)
	if err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: err.Error()}
		return
	}
	c.sendChan <- WSResponse{Type: "result", ID: msg.ID, Payload: result}
}
