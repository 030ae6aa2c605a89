package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yourusername/azulengine/internal/tilecode"
	"github.com/yourusername/azulengine/internal/weights"
	"github.com/yourusername/azulengine/pkg/azul"
)

// AnalysisMode selects the search backend for a request.
type AnalysisMode string

const (
	// ModeAuto routes to the endgame solver when the position qualifies
	// and to alpha-beta otherwise.
	ModeAuto      AnalysisMode = "auto"
	ModeAlphaBeta AnalysisMode = "alphabeta"
	ModeMCTS      AnalysisMode = "mcts"
	ModeEndgame   AnalysisMode = "endgame"
)

// EngineOptions configures a new Engine.
type EngineOptions struct {
	Weights          *weights.Profile // nil selects the default profile
	CacheSize        uint32           // evaluation cache size (0 = default)
	EndgameThreshold int              // remaining-tile endgame trigger (0 = default)
	Store            ResultStore      // optional persistent result store
	Logger           zerolog.Logger
}

// Engine bundles the evaluator, both searchers, the endgame database and
// the caches behind one analysis front door.
type Engine struct {
	eval      *Evaluator
	cache     *EvalCache
	alphabeta *AlphaBeta
	mcts      *MCTS
	endgame   *Database
	store     ResultStore
	threshold int
	log       zerolog.Logger
}

// NewEngine creates an engine from the given options.
func NewEngine(opts EngineOptions) (*Engine, error) {
	profile := opts.Weights
	if profile == nil {
		profile = weights.Default()
	}
	eval, err := NewEvaluator(profile)
	if err != nil {
		return nil, fmt.Errorf("creating evaluator: %w", err)
	}
	threshold := opts.EndgameThreshold
	if threshold <= 0 {
		threshold = DefaultEndgameThreshold
	}
	return &Engine{
		eval:      eval,
		cache:     NewEvalCache(opts.CacheSize),
		alphabeta: NewAlphaBeta(eval),
		mcts:      NewMCTS(eval),
		endgame:   NewDatabase(eval, opts.Logger),
		store:     opts.Store,
		threshold: threshold,
		log:       opts.Logger,
	}, nil
}

// Evaluator returns the engine's heuristic evaluator.
func (e *Engine) Evaluator() *Evaluator { return e.eval }

// Cache returns the engine's evaluation cache.
func (e *Engine) Cache() *EvalCache { return e.cache }

// EndgameDB returns the engine's endgame database.
func (e *Engine) EndgameDB() *Database { return e.endgame }

// IsEndgame reports whether the engine would route an auto-mode request
// for this position to the endgame solver.
func (e *Engine) IsEndgame(state *azul.GameState) bool {
	return IsEndgamePosition(state, e.threshold)
}

// EvaluateCached scores the position for the player through the
// evaluation cache.
func (e *Engine) EvaluateCached(state *azul.GameState, player int) float64 {
	differential := state.NumPlayers() == 2
	key := tilecode.MakePositionKey(state)
	ctx := MakeEvalContext(player, differential)

	value, slot := e.cache.Lookup(key, ctx)
	if slot == CacheHit {
		return value
	}
	if differential {
		value = e.eval.Differential(state, player)
	} else {
		value = e.eval.Evaluate(state, player)
	}
	e.cache.Add(key, ctx, value, slot)
	return value
}

// Request selects and configures the search run by Analyze. Zero-valued
// option structs fall back to each searcher's defaults.
type Request struct {
	Mode      AnalysisMode
	AlphaBeta AlphaBetaOptions
	MCTS      MCTSOptions
	Endgame   EndgameOptions
}

// Result is the uniform analysis record returned by every search mode.
type Result struct {
	Mode         AnalysisMode `json:"mode"`
	Position     string       `json:"position"`
	Player       int          `json:"player"`
	BestMove     string       `json:"best_move,omitempty"`
	BestScore    float64      `json:"best_score"`
	PV           []string     `json:"pv,omitempty"`
	DepthReached int          `json:"depth_reached,omitempty"`
	Nodes        int          `json:"nodes"`
	Rollouts     int          `json:"rollouts,omitempty"`
	SearchTime   float64      `json:"search_time"`
	Exact        bool         `json:"exact,omitempty"`
	TimedOut     bool         `json:"timed_out,omitempty"`
	NoMoves      bool         `json:"no_moves,omitempty"`
	FromCache    bool         `json:"from_cache,omitempty"`
}

// Analyze is the engine front door: it resolves the mode, consults the
// result store, dispatches to the selected searcher and records the
// outcome.
func (e *Engine) Analyze(state *azul.GameState, player int, req Request) (*Result, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if player < 0 || player >= state.NumPlayers() {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidPlayer, player, state.NumPlayers())
	}

	mode := req.Mode
	if mode == "" || mode == ModeAuto {
		if e.IsEndgame(state) {
			mode = ModeEndgame
		} else {
			mode = ModeAlphaBeta
		}
	}

	position := tilecode.EncodePosition(state)
	storeKey := resultKey(position, player, mode)
	if e.store != nil {
		if cached, ok := e.store.Get(storeKey); ok {
			out := *cached
			out.FromCache = true
			return &out, nil
		}
	}

	result := &Result{Mode: mode, Position: position, Player: player}
	switch mode {
	case ModeAlphaBeta:
		r, err := e.alphabeta.Search(state, player, req.AlphaBeta)
		if err != nil {
			return nil, err
		}
		if r.BestMove != nil {
			result.BestMove = FormatMove(*r.BestMove)
		}
		result.BestScore = r.BestScore
		result.DepthReached = r.DepthReached
		result.Nodes = r.Nodes
		result.SearchTime = r.SearchTime
		result.TimedOut = r.TimedOut
		result.NoMoves = r.NoMoves

	case ModeMCTS:
		r, err := e.mcts.Search(state, player, req.MCTS)
		if err != nil {
			return nil, err
		}
		if r.BestMove != nil {
			result.BestMove = FormatMove(*r.BestMove)
		}
		result.BestScore = r.BestScore
		for _, m := range r.PV {
			result.PV = append(result.PV, FormatMove(m))
		}
		result.Nodes = r.Nodes
		result.Rollouts = r.Rollouts
		result.SearchTime = r.SearchTime
		result.NoMoves = r.NoMoves

	case ModeEndgame:
		r, err := e.endgame.Analyze(state, player, req.Endgame)
		if err != nil {
			return nil, err
		}
		if r.BestMove != nil {
			result.BestMove = FormatMove(*r.BestMove)
		}
		result.BestScore = r.BestScore
		result.DepthReached = r.Depth
		result.Nodes = r.Nodes
		result.SearchTime = r.SearchTime
		result.Exact = r.Exact
		result.NoMoves = r.NoMoves
		result.FromCache = r.FromCache

	default:
		return nil, fmt.Errorf("unknown analysis mode %q", req.Mode)
	}

	e.log.Debug().
		Str("mode", string(mode)).
		Str("move", result.BestMove).
		Float64("score", result.BestScore).
		Float64("time", result.SearchTime).
		Msg("analysis complete")

	if e.store != nil && !result.NoMoves {
		e.store.Put(storeKey, result)
	}
	return result, nil
}

// MoveScore pairs a legal move with its one-ply heuristic score.
type MoveScore struct {
	Move  azul.Move
	Score float64
}

// RankMoves scores every legal move one ply deep through the evaluation
// cache and returns them best first. Ties fall back to the packed move
// identity, so the ranking is stable across runs.
func (e *Engine) RankMoves(state *azul.GameState, player int) ([]MoveScore, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if player < 0 || player >= state.NumPlayers() {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidPlayer, player, state.NumPlayers())
	}
	moves, err := GenerateMoves(state, player)
	if err != nil {
		return nil, err
	}

	ranked := make([]MoveScore, 0, len(moves))
	for _, m := range moves {
		child := state.Clone()
		if err := child.ApplyMove(player, m); err != nil {
			continue
		}
		ranked = append(ranked, MoveScore{Move: m, Score: e.EvaluateCached(child, player)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Move.ID() < ranked[j].Move.ID()
	})
	return ranked, nil
}

// resultKey builds the store key for a position, seat and mode.
func resultKey(position string, player int, mode AnalysisMode) string {
	return position + "|" + strconv.Itoa(player) + "|" + string(mode)
}

// moveColorLetters is indexed by Tile and matches the position ID notation.
const moveColorLetters = "byrkw"

// FormatMove renders a move in the compact notation "F2:r:3" (factory 2,
// red, pattern line 3) or "C:b:floor" for a centre take placed entirely on
// the floor. Overflow tiles are appended as "+n".
func FormatMove(m azul.Move) string {
	var b strings.Builder
	if m.Kind == azul.CentreTake {
		b.WriteByte('C')
	} else {
		b.WriteByte('F')
		b.WriteString(strconv.Itoa(m.Source))
	}
	b.WriteByte(':')
	if m.Color >= 0 && int(m.Color) < len(moveColorLetters) {
		b.WriteByte(moveColorLetters[m.Color])
	} else {
		b.WriteByte('?')
	}
	b.WriteByte(':')
	if m.Line == azul.NoLine {
		b.WriteString("floor")
	} else {
		b.WriteString(strconv.Itoa(m.Line))
		if m.ToFloor > 0 {
			b.WriteByte('+')
			b.WriteString(strconv.Itoa(int(m.ToFloor)))
		}
	}
	return b.String()
}

// ParseMove parses the notation produced by FormatMove. The placement
// split is recomputed from the position, so the "+n" overflow suffix is
// accepted but not required.
func ParseMove(s string, state *azul.GameState, player int) (azul.Move, error) {
	var m azul.Move
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return m, fmt.Errorf("malformed move %q", s)
	}

	src := parts[0]
	switch {
	case src == "C" || src == "c":
		m.Kind = azul.CentreTake
	case len(src) > 1 && (src[0] == 'F' || src[0] == 'f'):
		idx, err := strconv.Atoi(src[1:])
		if err != nil || idx < 0 || idx >= len(state.Factories) {
			return m, fmt.Errorf("bad factory in move %q", s)
		}
		m.Kind = azul.FactoryTake
		m.Source = idx
	default:
		return m, fmt.Errorf("bad source in move %q", s)
	}

	if len(parts[1]) != 1 {
		return m, fmt.Errorf("bad color in move %q", s)
	}
	color := strings.IndexByte(moveColorLetters, parts[1][0])
	if color < 0 {
		return m, fmt.Errorf("bad color in move %q", s)
	}
	m.Color = azul.Tile(color)

	dest := parts[2]
	if i := strings.IndexByte(dest, '+'); i >= 0 {
		dest = dest[:i]
	}
	if dest == "floor" {
		m.Line = azul.NoLine
	} else {
		line, err := strconv.Atoi(dest)
		if err != nil || line < 0 || line >= azul.WallSize {
			return m, fmt.Errorf("bad line in move %q", s)
		}
		m.Line = line
	}

	// Recompute the line/floor split the generator would emit.
	var count int
	if m.Kind == azul.CentreTake {
		count = int(state.Centre[m.Color])
	} else {
		count = int(state.Factories[m.Source][m.Color])
	}
	if count == 0 {
		return m, fmt.Errorf("no %s tiles at source in move %q", m.Color, s)
	}
	if m.Line == azul.NoLine {
		m.ToFloor = uint8(count)
		return m, nil
	}
	space := azul.LineCapacity(m.Line) - int(state.Agents[player].LineCount[m.Line])
	toLine := count
	if toLine > space {
		toLine = space
	}
	m.ToLine = uint8(toLine)
	m.ToFloor = uint8(count - toLine)
	return m, nil
}
