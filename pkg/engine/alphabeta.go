package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yourusername/azulengine/pkg/azul"
)

// AlphaBetaOptions configures a depth- and time-bounded search.
type AlphaBetaOptions struct {
	MaxDepth int           // plies to search (default 4)
	MaxTime  time.Duration // wall-clock budget (default 2s)
}

// DefaultAlphaBetaOptions returns sensible defaults.
func DefaultAlphaBetaOptions() AlphaBetaOptions {
	return AlphaBetaOptions{
		MaxDepth: 4,
		MaxTime:  2 * time.Second,
	}
}

// SearchResult is the outcome of an alpha-beta search.
type SearchResult struct {
	BestMove     *azul.Move
	BestScore    float64
	DepthReached int
	Nodes        int
	SearchTime   float64 // seconds
	TimedOut     bool
	NoMoves      bool
}

// AlphaBeta is an iterative-deepening minimax searcher with alpha-beta
// pruning. Each Search call owns its own traversal state, so a single
// AlphaBeta value may be shared across goroutines.
type AlphaBeta struct {
	eval *Evaluator
}

// NewAlphaBeta creates a searcher over the given evaluator.
func NewAlphaBeta(eval *Evaluator) *AlphaBeta {
	return &AlphaBeta{eval: eval}
}

// searchRun carries the per-call search state.
type searchRun struct {
	eval     *Evaluator
	root     int
	deadline time.Time
	nodes    int
	aborted  bool
}

// Search finds the best move for the player to a bounded depth and time.
// On timeout it returns the best move of the deepest fully completed ply,
// never a partial result from an interrupted ply. Identical inputs produce
// an identical best move: ties are broken by the stable generation order.
func (ab *AlphaBeta) Search(state *azul.GameState, player int, opts AlphaBetaOptions) (*SearchResult, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if player < 0 || player >= state.NumPlayers() {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidPlayer, player, state.NumPlayers())
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 4
	}
	if opts.MaxTime <= 0 {
		opts.MaxTime = 2 * time.Second
	}

	start := time.Now()
	result := &SearchResult{}

	moves, err := GenerateMoves(state, player)
	if err != nil {
		return nil, err
	}
	if len(moves) == 0 {
		result.NoMoves = true
		result.SearchTime = time.Since(start).Seconds()
		return result, nil
	}
	orderMoves(&state.Agents[player], moves)

	run := &searchRun{
		eval:     ab.eval,
		root:     player,
		deadline: start.Add(opts.MaxTime),
	}

	// Iterative deepening: keep the best move of the deepest ply that
	// ran to completion.
	for depth := 1; depth <= opts.MaxDepth; depth++ {
		bestScore := math.Inf(-1)
		var bestMove azul.Move
		completed := true

		for _, m := range moves {
			child := state.Clone()
			if err := child.ApplyMove(player, m); err != nil {
				// Simulation failure: skip the branch, keep its siblings.
				continue
			}
			score := run.minimax(child, depth-1, math.Inf(-1), math.Inf(1))
			if run.aborted {
				completed = false
				break
			}
			if score > bestScore {
				bestScore = score
				bestMove = m
			}
		}

		if !completed {
			result.TimedOut = true
			break
		}
		mv := bestMove
		result.BestMove = &mv
		result.BestScore = bestScore
		result.DepthReached = depth
	}

	result.Nodes = run.nodes
	result.SearchTime = time.Since(start).Seconds()
	return result, nil
}

// minimax returns the value of state from the root player's perspective.
// Opponents are assumed to minimize the root player's value.
func (r *searchRun) minimax(state *azul.GameState, depth int, alpha, beta float64) float64 {
	r.nodes++
	if r.nodes&63 == 0 && time.Now().After(r.deadline) {
		r.aborted = true
		return 0
	}

	if state.RoundOver() {
		return r.terminalValue(state)
	}
	if depth == 0 {
		return r.leafValue(state)
	}

	mover := state.Current
	moves, err := GenerateMoves(state, mover)
	if err != nil || len(moves) == 0 {
		return r.terminalValue(state)
	}
	orderMoves(&state.Agents[mover], moves)

	maximizing := mover == r.root
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}

	for _, m := range moves {
		child := state.Clone()
		if err := child.ApplyMove(mover, m); err != nil {
			continue
		}
		score := r.minimax(child, depth-1, alpha, beta)
		if r.aborted {
			return 0
		}

		if maximizing {
			if score > best {
				best = score
			}
			if best > alpha {
				alpha = best
			}
		} else {
			if score < best {
				best = score
			}
			if best < beta {
				beta = best
			}
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// terminalValue scores a finished round exactly: score differential for
// two players, the root player's raw score otherwise.
func (r *searchRun) terminalValue(state *azul.GameState) float64 {
	scores := state.FinalScores()
	if len(scores) == 2 {
		return float64(scores[r.root] - scores[1-r.root])
	}
	return float64(scores[r.root])
}

// leafValue scores a depth-limited leaf heuristically.
func (r *searchRun) leafValue(state *azul.GameState) float64 {
	if state.NumPlayers() == 2 {
		return r.eval.Differential(state, r.root)
	}
	return r.eval.Evaluate(state, r.root)
}

// movePriority ranks a move for ordering: line-completing moves first,
// then floor-free moves, then larger takes.
func movePriority(agent *azul.AgentState, m azul.Move) int {
	p := 0
	if m.Line != azul.NoLine &&
		int(agent.LineCount[m.Line])+int(m.ToLine) == azul.LineCapacity(m.Line) {
		p += 16
	}
	if m.ToFloor == 0 {
		p += 8
	}
	p += int(m.ToLine)
	return p
}

// orderMoves sorts moves by descending priority. The sort is stable and
// ties fall back to the packed move identity, keeping the search
// deterministic across runs.
func orderMoves(agent *azul.AgentState, moves []azul.Move) {
	sort.SliceStable(moves, func(i, j int) bool {
		pi, pj := movePriority(agent, moves[i]), movePriority(agent, moves[j])
		if pi != pj {
			return pi > pj
		}
		return moves[i].ID() < moves[j].ID()
	})
}
