// Package api provides the HTTP/JSON surface for the Azul analysis engine.
package api

import "github.com/yourusername/azulengine/pkg/engine"

// ============================================================================
// Request Types
// ============================================================================

// EvaluateRequest is the request body for static position evaluation.
type EvaluateRequest struct {
	Position string `json:"position"`         // Position ID string
	Player   int    `json:"player,omitempty"` // Seat to evaluate for (default 0)
}

// MoveRequest is the request body for ranked move analysis.
type MoveRequest struct {
	Position  string `json:"position"`            // Position ID string
	Player    int    `json:"player,omitempty"`    // Seat to move (default 0)
	MaxDepth  int    `json:"max_depth,omitempty"` // Search depth (default 4)
	MaxTimeMs int    `json:"max_time,omitempty"`  // Time budget in ms (default 2000)
	NumMoves  int    `json:"num_moves,omitempty"` // Max ranked moves to return (default 5)
}

// MCTSRequest is the request body for Monte Carlo tree search.
type MCTSRequest struct {
	Position    string  `json:"position"`              // Position ID string
	Player      int     `json:"player,omitempty"`      // Seat to move (default 0)
	MaxRollouts int     `json:"max_rollouts,omitempty"`
	MaxTimeMs   int     `json:"max_time,omitempty"`    // Time budget in ms (default 1000)
	Exploration float64 `json:"exploration,omitempty"` // UCT constant (default sqrt 2)
	Seed        int64   `json:"seed,omitempty"`        // Rollout seed (0 = fixed default)
}

// EndgameRequest is the request body for exact endgame analysis.
type EndgameRequest struct {
	Position  string `json:"position"`            // Position ID string
	Player    int    `json:"player,omitempty"`    // Seat to move (default 0)
	MaxDepth  int    `json:"max_depth,omitempty"` // Deepening cap (default 6)
	MaxTimeMs int    `json:"max_time,omitempty"`  // Time budget in ms (default 2000)
}

// AnalyzeRequest is the request body for the mode-routing front door.
type AnalyzeRequest struct {
	Position    string  `json:"position"`         // Position ID string
	Player      int     `json:"player,omitempty"` // Seat to move (default 0)
	Mode        string  `json:"mode,omitempty"`   // auto, alphabeta, mcts, endgame
	MaxDepth    int     `json:"max_depth,omitempty"`
	MaxTimeMs   int     `json:"max_time,omitempty"`
	MaxRollouts int     `json:"max_rollouts,omitempty"`
	Exploration float64 `json:"exploration,omitempty"`
}

// BatchRequest is the request body for analyzing several positions at once.
type BatchRequest struct {
	Requests []AnalyzeRequest `json:"requests"`
}

// ============================================================================
// Response Types
// ============================================================================

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the response for health checks.
type HealthResponse struct {
	Status  string     `json:"status"`
	Version string     `json:"version"`
	Ready   bool       `json:"ready"`
	Pool    *PoolStats `json:"pool,omitempty"`
}

// EvaluateResponse is the response for static evaluation.
type EvaluateResponse struct {
	Score    float64 `json:"score"`   // Heuristic value from the player's seat
	Endgame  bool    `json:"endgame"` // Whether the position qualifies for exact analysis
	Position string  `json:"position"`
	Player   int     `json:"player"`
}

// RankedMove is one entry in a ranked move list.
type RankedMove struct {
	Move  string  `json:"move"`
	Score float64 `json:"score"`
}

// MovesResponse is the response for ranked move analysis.
type MovesResponse struct {
	Moves    []RankedMove   `json:"moves"`
	NumLegal int            `json:"num_legal"`
	Best     *engine.Result `json:"best,omitempty"`
	Position string         `json:"position"`
}

// BatchResponse is the response for batch analysis. Entries align with the
// request slice; a failed entry carries Error and a nil Result.
type BatchResponse struct {
	Results []BatchEntry `json:"results"`
}

// BatchEntry is one outcome in a batch response.
type BatchEntry struct {
	Result *engine.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}
