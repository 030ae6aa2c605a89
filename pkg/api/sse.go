package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/yourusername/azulengine/pkg/engine"
)

// SSEEvent represents a Server-Sent Event.
type SSEEvent struct {
	Event string      `json:"event"` // Event type: "progress", "result", "error", "done"
	Data  interface{} `json:"data"`
}

// MCTSStream handles Server-Sent Events for streaming MCTS progress.
// GET /api/mcts/stream?position=...&player=...&rollouts=...&time_ms=...
func (h *Handlers) MCTSStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeSSEError(w, "streaming not supported")
		return
	}

	query := r.URL.Query()
	position := query.Get("position")
	if position == "" {
		writeSSEError(w, "position is required")
		return
	}
	player := parseIntParam(query.Get("player"), 0)
	rollouts := parseIntParam(query.Get("rollouts"), 0)
	timeMs := parseIntParam(query.Get("time_ms"), 0)
	seed := parseIntParam(query.Get("seed"), 0)

	state, err := parsePosition(position, player)
	if err != nil {
		writeSSEError(w, "invalid position: "+err.Error())
		return
	}

	if h.pool != nil {
		if err := h.pool.AcquireSlow(r.Context()); err != nil {
			writeSSEError(w, "server busy")
			return
		}
		defer h.pool.ReleaseSlow()
	}

	opts := engine.MCTSOptions{
		MaxRollouts: rollouts,
		MaxTime:     time.Duration(timeMs) * time.Millisecond,
		OnProgress: func(p engine.MCTSProgress) {
			writeSSEEvent(w, "progress", p)
			flusher.Flush()
		},
	}
	if seed != 0 {
		opts.Policy = engine.NewRandomPolicy(h.engine.Evaluator(), int64(seed))
	}

	result, err := h.engine.Analyze(state, player, engine.Request{
		Mode: engine.ModeMCTS,
		MCTS: opts,
	})
	if err != nil {
		writeSSEError(w, "search failed: "+err.Error())
		return
	}

	writeSSEEvent(w, "result", result)
	flusher.Flush()

	writeSSEEvent(w, "done", nil)
	flusher.Flush()
}

// writeSSEEvent writes a Server-Sent Event to the response.
func writeSSEEvent(w http.ResponseWriter, event string, data interface{}) {
	fmt.Fprintf(w, "event: %s\n", event)
	if data != nil {
		jsonData, _ := json.Marshal(data)
		fmt.Fprintf(w, "data: %s\n", jsonData)
	}
	fmt.Fprintf(w, "\n")
}

// writeSSEError writes an error event and closes the stream.
func writeSSEError(w http.ResponseWriter, message string) {
	writeSSEEvent(w, "error", map[string]string{"error": message})
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// parseIntParam parses an integer from a string with a default value.
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return val
}
