package engine

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yourusername/azulengine/internal/zobrist"
	"github.com/yourusername/azulengine/pkg/azul"
)

// DefaultEndgameThreshold is the remaining-tile count at or below which a
// position qualifies as an endgame.
const DefaultEndgameThreshold = 10

// endgameWallTrigger is the total wall tile count across all players at
// which a position qualifies as an endgame.
const endgameWallTrigger = 25

// IsEndgamePosition reports whether the position qualifies for exact
// endgame analysis. The four trigger conditions are an unordered OR:
// a completed wall row, a fully terminal position, total wall tiles at or
// above 25, or remaining supply at or below the threshold (default 10).
func IsEndgamePosition(state *azul.GameState, threshold int) bool {
	if threshold <= 0 {
		threshold = DefaultEndgameThreshold
	}

	wallTotal := 0
	pending := 0
	for i := range state.Agents {
		a := &state.Agents[i]
		if a.CompletedRows() > 0 {
			return true
		}
		wallTotal += a.WallTileCount()
		for r := 0; r < azul.WallSize; r++ {
			pending += int(a.LineCount[r])
		}
	}
	if wallTotal >= endgameWallTrigger {
		return true
	}

	remaining := state.TilesRemaining()
	if remaining == 0 && pending == 0 {
		return true
	}
	return remaining <= threshold
}

// CanonicalVector returns the fixed-shape numeric signature of a state:
// remaining tiles per color, then one block per player holding wall fill
// count, the pattern-line signature, floor-tile count, and score.
func CanonicalVector(state *azul.GameState) []int {
	vec := make([]int, 0, azul.NumColors+8*len(state.Agents))

	var remaining azul.Pile
	for _, f := range state.Factories {
		for t := 0; t < azul.NumColors; t++ {
			remaining[t] += f[t]
		}
	}
	for t := 0; t < azul.NumColors; t++ {
		remaining[t] += state.Centre[t]
		vec = append(vec, int(remaining[t]))
	}

	for i := range state.Agents {
		vec = appendAgentBlock(vec, &state.Agents[i])
	}
	return vec
}

func appendAgentBlock(vec []int, a *azul.AgentState) []int {
	vec = append(vec, a.WallTileCount())
	for r := 0; r < azul.WallSize; r++ {
		// Count and color collapse into one slot per line.
		vec = append(vec, int(a.LineCount[r])*7+int(a.LineColor[r]+1))
	}
	vec = append(vec, len(a.Floor))
	vec = append(vec, a.Score)
	return vec
}

// SymmetryHash returns a Zobrist-style hash of the canonical vector. For
// exactly two players the hash of the seat-swapped state is folded in by
// taking the minimum, so mirrored positions share one cache entry.
func SymmetryHash(state *azul.GameState) uint64 {
	h := zobrist.HashVector(CanonicalVector(state))
	if len(state.Agents) != 2 {
		return h
	}

	swapped := make([]int, 0, azul.NumColors+16)
	var remaining azul.Pile
	for _, f := range state.Factories {
		for t := 0; t < azul.NumColors; t++ {
			remaining[t] += f[t]
		}
	}
	for t := 0; t < azul.NumColors; t++ {
		remaining[t] += state.Centre[t]
		swapped = append(swapped, int(remaining[t]))
	}
	swapped = appendAgentBlock(swapped, &state.Agents[1])
	swapped = appendAgentBlock(swapped, &state.Agents[0])

	if h2 := zobrist.HashVector(swapped); h2 < h {
		return h2
	}
	return h
}

// EndgameOptions configures exact endgame analysis.
type EndgameOptions struct {
	MaxDepth    int           // progressive deepening cap (default 6)
	MaxTime     time.Duration // global timeout (default 2s)
	BranchLimit int           // moves explored per node (default 8)
}

// DefaultEndgameOptions returns sensible defaults.
func DefaultEndgameOptions() EndgameOptions {
	return EndgameOptions{
		MaxDepth:    6,
		MaxTime:     2 * time.Second,
		BranchLimit: 8,
	}
}

// EndgameResult is the outcome of an endgame analysis.
type EndgameResult struct {
	BestMove   *azul.Move
	BestScore  float64
	Depth      int
	Exact      bool // recursion bottomed out at real terminal states
	Nodes      int
	SearchTime float64 // seconds
	FromCache  bool
	NoMoves    bool
}

// dbEntry is a solved position. Entries are insert-once, read-many.
type dbEntry struct {
	move    azul.Move
	hasMove bool
	score   float64
	depth   int
	exact   bool
}

// Database memoizes solved endgame positions by symmetry hash. It is safe
// for concurrent use by parallel searches.
type Database struct {
	mu      sync.RWMutex
	entries map[uint64]dbEntry
	eval    *Evaluator
	log     zerolog.Logger
}

// NewDatabase creates an empty endgame database.
func NewDatabase(eval *Evaluator, log zerolog.Logger) *Database {
	return &Database{
		entries: make(map[uint64]dbEntry),
		eval:    eval,
		log:     log,
	}
}

// Len returns the number of solved positions.
func (db *Database) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.entries)
}

// lookup returns a cached entry if one exists.
func (db *Database) lookup(hash uint64) (dbEntry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	e, ok := db.entries[hash]
	return e, ok
}

// store inserts a solved position unless one is already present; cached
// entries are never mutated after insertion.
func (db *Database) store(hash uint64, e dbEntry) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.entries[hash]; !ok {
		db.entries[hash] = e
	}
}

// endgameRun carries per-call solver state.
type endgameRun struct {
	eval     *Evaluator
	root     int
	deadline time.Time
	limit    int
	nodes    int
	aborted  bool
}

// Analyze runs progressively deepened exact search under a global timeout,
// consulting the database before solving and memoizing the result after.
func (db *Database) Analyze(state *azul.GameState, player int, opts EndgameOptions) (*EndgameResult, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if player < 0 || player >= state.NumPlayers() {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidPlayer, player, state.NumPlayers())
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 6
	}
	if opts.MaxTime <= 0 {
		opts.MaxTime = 2 * time.Second
	}
	if opts.BranchLimit <= 0 {
		opts.BranchLimit = 8
	}

	start := time.Now()
	hash := SymmetryHash(state)

	if e, ok := db.lookup(hash); ok {
		db.log.Debug().Uint64("hash", hash).Msg("endgame cache hit")
		result := &EndgameResult{
			BestScore:  e.score,
			Depth:      e.depth,
			Exact:      e.exact,
			FromCache:  true,
			SearchTime: time.Since(start).Seconds(),
		}
		if e.hasMove {
			mv := e.move
			result.BestMove = &mv
		} else {
			result.NoMoves = true
		}
		return result, nil
	}

	moves, err := GenerateMoves(state, player)
	if err != nil {
		return nil, err
	}
	result := &EndgameResult{}
	if len(moves) == 0 {
		// No legal moves: the position is terminal.
		result.NoMoves = true
		result.Exact = true
		scores := state.FinalScores()
		if len(scores) == 2 {
			result.BestScore = float64(scores[player] - scores[1-player])
		} else {
			result.BestScore = float64(scores[player])
		}
		result.SearchTime = time.Since(start).Seconds()
		db.store(hash, dbEntry{score: result.BestScore, exact: true})
		return result, nil
	}
	orderMoves(&state.Agents[player], moves)
	rootCapped := len(moves) > opts.BranchLimit
	if rootCapped {
		moves = moves[:opts.BranchLimit]
	}

	run := &endgameRun{
		eval:     db.eval,
		root:     player,
		deadline: start.Add(opts.MaxTime),
		limit:    opts.BranchLimit,
	}

	for depth := 1; depth <= opts.MaxDepth; depth++ {
		bestScore := math.Inf(-1)
		var bestMove azul.Move
		// An unexplored root move means the value is a bound, not a solve.
		exact := !rootCapped
		completed := true

		for _, m := range moves {
			child := state.Clone()
			if err := child.ApplyMove(player, m); err != nil {
				continue
			}
			score, branchExact := run.solve(child, depth-1)
			if run.aborted {
				completed = false
				break
			}
			if score > bestScore {
				bestScore = score
				bestMove = m
			}
			exact = exact && branchExact
		}

		if !completed {
			break
		}
		mv := bestMove
		result.BestMove = &mv
		result.BestScore = bestScore
		result.Depth = depth
		result.Exact = exact
		if exact {
			// Deeper search cannot change an exact value.
			break
		}
	}

	result.Nodes = run.nodes
	result.SearchTime = time.Since(start).Seconds()
	db.log.Debug().
		Int("depth", result.Depth).
		Bool("exact", result.Exact).
		Int("nodes", result.Nodes).
		Msg("endgame solved")

	if result.BestMove != nil {
		db.store(hash, dbEntry{
			move:    *result.BestMove,
			hasMove: true,
			score:   result.BestScore,
			depth:   result.Depth,
			exact:   result.Exact,
		})
	}
	return result, nil
}

// solve returns the value of state from the root player's perspective and
// whether the value is exact (every explored line reached a true terminal).
func (r *endgameRun) solve(state *azul.GameState, depth int) (float64, bool) {
	r.nodes++
	if r.nodes&31 == 0 && time.Now().After(r.deadline) {
		r.aborted = true
		return 0, false
	}

	if state.RoundOver() {
		return r.terminalValue(state), true
	}
	if depth == 0 {
		return r.leafValue(state), false
	}

	mover := state.Current
	moves, err := GenerateMoves(state, mover)
	if err != nil || len(moves) == 0 {
		return r.terminalValue(state), true
	}
	orderMoves(&state.Agents[mover], moves)
	capped := len(moves) > r.limit
	if capped {
		moves = moves[:r.limit]
	}

	maximizing := mover == r.root
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}
	exact := !capped

	for _, m := range moves {
		child := state.Clone()
		if err := child.ApplyMove(mover, m); err != nil {
			// Corrupted branch: skip it, keep the siblings.
			continue
		}
		score, branchExact := r.solve(child, depth-1)
		if r.aborted {
			return 0, false
		}
		exact = exact && branchExact
		if maximizing && score > best {
			best = score
		} else if !maximizing && score < best {
			best = score
		}
	}
	return best, exact
}

func (r *endgameRun) terminalValue(state *azul.GameState) float64 {
	scores := state.FinalScores()
	if len(scores) == 2 {
		return float64(scores[r.root] - scores[1-r.root])
	}
	return float64(scores[r.root])
}

func (r *endgameRun) leafValue(state *azul.GameState) float64 {
	if state.NumPlayers() == 2 {
		return r.eval.Differential(state, r.root)
	}
	return r.eval.Evaluate(state, r.root)
}
