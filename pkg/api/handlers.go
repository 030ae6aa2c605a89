package api

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/azulengine/internal/tilecode"
	"github.com/yourusername/azulengine/pkg/azul"
	"github.com/yourusername/azulengine/pkg/engine"
)

// maxBatchSize caps how many positions one batch request may carry.
const maxBatchSize = 64

// Handlers holds the HTTP handlers and engine reference.
type Handlers struct {
	engine  *engine.Engine
	version string
	pool    *WorkerPool
}

// NewHandlers creates a new Handlers instance without a worker pool.
func NewHandlers(e *engine.Engine, version string) *Handlers {
	return &Handlers{engine: e, version: version}
}

// NewHandlersWithPool creates a new Handlers instance with a worker pool.
func NewHandlersWithPool(e *engine.Engine, version string, pool *WorkerPool) *Handlers {
	return &Handlers{engine: e, version: version, pool: pool}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

// parsePosition decodes a position ID and validates the seat against it.
func parsePosition(posID string, player int) (*azul.GameState, error) {
	state, err := tilecode.DecodePosition(posID)
	if err != nil {
		return nil, err
	}
	if player < 0 || player >= state.NumPlayers() {
		return nil, engine.ErrInvalidPlayer
	}
	return state, nil
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Ready:   h.engine != nil,
	}
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}
	writeJSON(w, http.StatusOK, resp)
}

// Evaluate handles POST /api/evaluate
func (h *Handlers) Evaluate(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := h.pool.AcquireFast(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
			return
		}
		defer h.pool.ReleaseFast()
	}

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	if req.Position == "" {
		writeError(w, http.StatusBadRequest, "position is required", "MISSING_POSITION")
		return
	}

	state, err := parsePosition(req.Position, req.Player)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_POSITION")
		return
	}

	writeJSON(w, http.StatusOK, EvaluateResponse{
		Score:    h.engine.EvaluateCached(state, req.Player),
		Endgame:  h.engine.IsEndgame(state),
		Position: req.Position,
		Player:   req.Player,
	})
}

// Move handles POST /api/move
func (h *Handlers) Move(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := h.pool.AcquireFast(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
			return
		}
		defer h.pool.ReleaseFast()
	}

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	if req.Position == "" {
		writeError(w, http.StatusBadRequest, "position is required", "MISSING_POSITION")
		return
	}

	state, err := parsePosition(req.Position, req.Player)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_POSITION")
		return
	}

	ranked, err := h.engine.RankMoves(state, req.Player)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "ANALYSIS_ERROR")
		return
	}

	best, err := h.engine.Analyze(state, req.Player, engine.Request{
		Mode: engine.ModeAlphaBeta,
		AlphaBeta: engine.AlphaBetaOptions{
			MaxDepth: req.MaxDepth,
			MaxTime:  time.Duration(req.MaxTimeMs) * time.Millisecond,
		},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "ANALYSIS_ERROR")
		return
	}

	numMoves := req.NumMoves
	if numMoves <= 0 {
		numMoves = 5
	}
	if numMoves > len(ranked) {
		numMoves = len(ranked)
	}
	moves := make([]RankedMove, numMoves)
	for i := 0; i < numMoves; i++ {
		moves[i] = RankedMove{
			Move:  engine.FormatMove(ranked[i].Move),
			Score: ranked[i].Score,
		}
	}

	writeJSON(w, http.StatusOK, MovesResponse{
		Moves:    moves,
		NumLegal: len(ranked),
		Best:     best,
		Position: req.Position,
	})
}

// MCTSSearch handles POST /api/mcts
func (h *Handlers) MCTSSearch(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := h.pool.AcquireSlow(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
			return
		}
		defer h.pool.ReleaseSlow()
	}

	var req MCTSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	if req.Position == "" {
		writeError(w, http.StatusBadRequest, "position is required", "MISSING_POSITION")
		return
	}

	state, err := parsePosition(req.Position, req.Player)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_POSITION")
		return
	}

	opts := engine.MCTSOptions{
		MaxRollouts:         req.MaxRollouts,
		MaxTime:             time.Duration(req.MaxTimeMs) * time.Millisecond,
		ExplorationConstant: req.Exploration,
	}
	if req.Seed != 0 {
		opts.Policy = engine.NewRandomPolicy(h.engine.Evaluator(), req.Seed)
	}

	result, err := h.engine.Analyze(state, req.Player, engine.Request{
		Mode: engine.ModeMCTS,
		MCTS: opts,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "ANALYSIS_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Endgame handles POST /api/endgame
func (h *Handlers) Endgame(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := h.pool.AcquireSlow(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
			return
		}
		defer h.pool.ReleaseSlow()
	}

	var req EndgameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	if req.Position == "" {
		writeError(w, http.StatusBadRequest, "position is required", "MISSING_POSITION")
		return
	}

	state, err := parsePosition(req.Position, req.Player)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_POSITION")
		return
	}

	result, err := h.engine.Analyze(state, req.Player, engine.Request{
		Mode: engine.ModeEndgame,
		Endgame: engine.EndgameOptions{
			MaxDepth: req.MaxDepth,
			MaxTime:  time.Duration(req.MaxTimeMs) * time.Millisecond,
		},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "ANALYSIS_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Analyze handles POST /api/analyze
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := h.pool.AcquireSlow(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
			return
		}
		defer h.pool.ReleaseSlow()
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	if req.Position == "" {
		writeError(w, http.StatusBadRequest, "position is required", "MISSING_POSITION")
		return
	}

	result, err := h.analyzeOne(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "ANALYSIS_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// analyzeOne runs a single front-door analysis from request parameters.
func (h *Handlers) analyzeOne(req AnalyzeRequest) (*engine.Result, error) {
	state, err := parsePosition(req.Position, req.Player)
	if err != nil {
		return nil, err
	}
	return h.engine.Analyze(state, req.Player, engine.Request{
		Mode: engine.AnalysisMode(req.Mode),
		AlphaBeta: engine.AlphaBetaOptions{
			MaxDepth: req.MaxDepth,
			MaxTime:  time.Duration(req.MaxTimeMs) * time.Millisecond,
		},
		MCTS: engine.MCTSOptions{
			MaxRollouts:         req.MaxRollouts,
			MaxTime:             time.Duration(req.MaxTimeMs) * time.Millisecond,
			ExplorationConstant: req.Exploration,
		},
		Endgame: engine.EndgameOptions{
			MaxDepth: req.MaxDepth,
			MaxTime:  time.Duration(req.MaxTimeMs) * time.Millisecond,
		},
	})
}

// Batch handles POST /api/batch. Entries run concurrently; one bad
// position fails only its own slot.
func (h *Handlers) Batch(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := h.pool.AcquireSlow(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
			return
		}
		defer h.pool.ReleaseSlow()
	}

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	if len(req.Requests) == 0 {
		writeError(w, http.StatusBadRequest, "requests is required", "MISSING_REQUESTS")
		return
	}
	if len(req.Requests) > maxBatchSize {
		writeError(w, http.StatusBadRequest, "too many requests", "BATCH_TOO_LARGE")
		return
	}

	entries := make([]BatchEntry, len(req.Requests))
	g, _ := errgroup.WithContext(r.Context())
	g.SetLimit(4)
	for i, item := range req.Requests {
		i, item := i, item
		g.Go(func() error {
			result, err := h.analyzeOne(item)
			if err != nil {
				entries[i] = BatchEntry{Error: err.Error()}
				return nil
			}
			entries[i] = BatchEntry{Result: result}
			return nil
		})
	}
	g.Wait()

	writeJSON(w, http.StatusOK, BatchResponse{Results: entries})
}
