package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/yourusername/azulengine/pkg/azul"
)

// MCTSOptions configures a Monte Carlo tree search.
type MCTSOptions struct {
	MaxTime             time.Duration // wall-clock budget (default 1s)
	MaxRollouts         int           // rollout budget (default 1000)
	ExplorationConstant float64       // UCT constant (default sqrt 2)
	Policy              RolloutPolicy // rollout policy (default seeded random)

	// OnProgress, when set, is called periodically with interim results.
	OnProgress func(MCTSProgress)
}

// DefaultMCTSOptions returns sensible defaults.
func DefaultMCTSOptions() MCTSOptions {
	return MCTSOptions{
		MaxTime:             time.Second,
		MaxRollouts:         1000,
		ExplorationConstant: math.Sqrt2,
	}
}

// MCTSProgress carries interim search statistics for streaming consumers.
type MCTSProgress struct {
	Rollouts  int     `json:"rollouts"`
	Elapsed   float64 `json:"elapsed"`
	BestMove  string  `json:"best_move,omitempty"`
	BestScore float64 `json:"best_score"`
}

// MCTSResult is the outcome of a Monte Carlo tree search.
type MCTSResult struct {
	BestMove   *azul.Move
	BestScore  float64 // average rollout score of the chosen child
	PV         []azul.Move
	Nodes      int
	Rollouts   int
	SearchTime float64 // seconds
	NoMoves    bool
}

// mctsNode is one arena entry. Parent and children are arena indices, so
// the tree carries no pointer cycles and is dropped wholesale when the
// search call returns.
type mctsNode struct {
	parent   int
	move     azul.Move
	state    *azul.GameState
	player   int // player to move in this node's state
	untried  []azul.Move
	children []int
	visits   int
	total    float64
	terminal bool
}

// MCTS is a UCT tree searcher with a pluggable rollout policy. Each Search
// call builds its own arena; a single MCTS value may be shared across
// goroutines as long as the configured policy is not shared.
type MCTS struct {
	eval *Evaluator
}

// NewMCTS creates a searcher over the given evaluator. The evaluator is
// used for terminal scoring and by the default rollout policies.
func NewMCTS(eval *Evaluator) *MCTS {
	return &MCTS{eval: eval}
}

// Search runs rollouts until either budget is exhausted, then returns the
// most-visited root child (robust child). Budgets are checked before every
// rollout, so tight latency caps are honored.
func (m *MCTS) Search(state *azul.GameState, player int, opts MCTSOptions) (*MCTSResult, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if player < 0 || player >= state.NumPlayers() {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidPlayer, player, state.NumPlayers())
	}
	if opts.MaxTime <= 0 {
		opts.MaxTime = time.Second
	}
	if opts.MaxRollouts <= 0 {
		opts.MaxRollouts = 1000
	}
	if opts.ExplorationConstant <= 0 {
		opts.ExplorationConstant = math.Sqrt2
	}
	policy := opts.Policy
	if policy == nil {
		policy = NewRandomPolicy(m.eval, 1)
	}

	start := time.Now()
	deadline := start.Add(opts.MaxTime)
	result := &MCTSResult{}

	rootMoves, err := GenerateMoves(state, player)
	if err != nil {
		return nil, err
	}
	if len(rootMoves) == 0 {
		result.NoMoves = true
		result.SearchTime = time.Since(start).Seconds()
		return result, nil
	}
	orderMoves(&state.Agents[player], rootMoves)

	// Cap the initial arena capacity: sizing it by the rollout budget
	// alone would request huge allocations for large MaxRollouts even
	// when the time budget stops the search early; append grows it on
	// demand.
	initialCap := 4 * opts.MaxRollouts
	if initialCap > 4096 {
		initialCap = 4096
	}
	tree := make([]mctsNode, 0, initialCap)
	tree = append(tree, mctsNode{
		parent:  -1,
		state:   state.Clone(),
		player:  player,
		untried: rootMoves,
	})

	progressEvery := opts.MaxRollouts / 20
	if progressEvery < 1 {
		progressEvery = 1
	}

	rollouts := 0
	for rollouts < opts.MaxRollouts && time.Now().Before(deadline) {
		// Selection: descend fully expanded nodes by UCT.
		cur := 0
		for !tree[cur].terminal && len(tree[cur].untried) == 0 && len(tree[cur].children) > 0 {
			cur = m.selectChild(tree, cur, opts.ExplorationConstant)
		}

		// Expansion: instantiate exactly one new child.
		if !tree[cur].terminal && len(tree[cur].untried) > 0 {
			last := len(tree[cur].untried) - 1
			mv := tree[cur].untried[last]
			tree[cur].untried = tree[cur].untried[:last]

			childState := tree[cur].state.Clone()
			if err := childState.ApplyMove(tree[cur].player, mv); err != nil {
				// Simulation failure: drop this move, keep the node.
				continue
			}

			childMoves, _ := GenerateMoves(childState, childState.Current)
			orderMoves(&childState.Agents[childState.Current], childMoves)
			child := mctsNode{
				parent:   cur,
				move:     mv,
				state:    childState,
				player:   childState.Current,
				untried:  childMoves,
				terminal: childState.RoundOver() || len(childMoves) == 0,
			}
			tree = append(tree, child)
			idx := len(tree) - 1
			tree[cur].children = append(tree[cur].children, idx)
			cur = idx
		}

		// Simulation: score the leaf from the root player's perspective.
		var value float64
		if tree[cur].terminal {
			value = m.terminalValue(tree[cur].state, player)
		} else {
			value = policy.Rollout(tree[cur].state.Clone(), player)
		}
		rollouts++

		// Backpropagation: every ancestor up to and including the root.
		for n := cur; n != -1; n = tree[n].parent {
			tree[n].visits++
			tree[n].total += value
		}

		if opts.OnProgress != nil && rollouts%progressEvery == 0 {
			opts.OnProgress(m.progress(tree, rollouts, start))
		}
	}

	best := robustChild(tree, 0)
	if best >= 0 {
		mv := tree[best].move
		result.BestMove = &mv
		result.BestScore = tree[best].total / float64(tree[best].visits)
		result.PV = principalVariation(tree)
	}
	result.Nodes = len(tree)
	result.Rollouts = rollouts
	result.SearchTime = time.Since(start).Seconds()
	return result, nil
}

// selectChild returns the child of n maximizing the UCT score.
func (m *MCTS) selectChild(tree []mctsNode, n int, c float64) int {
	best := -1
	bestScore := math.Inf(-1)
	lnParent := math.Log(float64(tree[n].visits))
	for _, ci := range tree[n].children {
		child := &tree[ci]
		score := child.total/float64(child.visits) +
			c*math.Sqrt(lnParent/float64(child.visits))
		if score > bestScore {
			bestScore = score
			best = ci
		}
	}
	return best
}

// terminalValue scores a terminal node exactly.
func (m *MCTS) terminalValue(state *azul.GameState, player int) float64 {
	scores := state.FinalScores()
	if len(scores) == 2 {
		return float64(scores[player] - scores[1-player])
	}
	return float64(scores[player])
}

// robustChild returns the most-visited child of n, or -1 when n has none.
// Visit count is a steadier confidence proxy than average score under
// noisy rollouts. Ties break toward the lower packed move identity.
func robustChild(tree []mctsNode, n int) int {
	best := -1
	bestVisits := -1
	for _, ci := range tree[n].children {
		child := &tree[ci]
		if child.visits > bestVisits ||
			(child.visits == bestVisits && best >= 0 && child.move.ID() < tree[best].move.ID()) {
			bestVisits = child.visits
			best = ci
		}
	}
	return best
}

// principalVariation follows the most-visited path from the root.
func principalVariation(tree []mctsNode) []azul.Move {
	var pv []azul.Move
	cur := 0
	for {
		next := robustChild(tree, cur)
		if next < 0 {
			return pv
		}
		pv = append(pv, tree[next].move)
		cur = next
	}
}

// progress assembles an interim snapshot for progress callbacks.
func (m *MCTS) progress(tree []mctsNode, rollouts int, start time.Time) MCTSProgress {
	p := MCTSProgress{
		Rollouts: rollouts,
		Elapsed:  time.Since(start).Seconds(),
	}
	if best := robustChild(tree, 0); best >= 0 {
		p.BestMove = FormatMove(tree[best].move)
		p.BestScore = tree[best].total / float64(tree[best].visits)
	}
	return p
}
