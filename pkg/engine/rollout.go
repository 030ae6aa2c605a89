package engine

import (
	"math/rand"

	"github.com/yourusername/azulengine/pkg/azul"
)

// RolloutPolicy estimates the value of a position for a player by playing
// it out. Implementations receive a private clone of the position and may
// mutate it freely. Policies that carry a random source are not safe for
// concurrent use; give each concurrent search its own policy.
type RolloutPolicy interface {
	Rollout(state *azul.GameState, player int) float64
}

// PolicyFunc adapts a plain function to a RolloutPolicy. Externally
// supplied policies (for example a trained model served out of process)
// plug in through this adapter; the engine never owns the model.
type PolicyFunc func(state *azul.GameState, player int) float64

// Rollout implements RolloutPolicy.
func (f PolicyFunc) Rollout(state *azul.GameState, player int) float64 {
	return f(state, player)
}

// defaultRolloutDepth caps how many plies a playout simulates before
// falling back to the heuristic evaluator.
const defaultRolloutDepth = 30

// RandomPolicy plays uniformly random legal moves to a depth cap or the
// end of the round, then scores with the evaluator.
type RandomPolicy struct {
	eval     *Evaluator
	rng      *rand.Rand
	maxDepth int
}

// NewRandomPolicy creates a random playout policy with the given seed.
func NewRandomPolicy(eval *Evaluator, seed int64) *RandomPolicy {
	return &RandomPolicy{
		eval:     eval,
		rng:      rand.New(rand.NewSource(seed)),
		maxDepth: defaultRolloutDepth,
	}
}

// Rollout implements RolloutPolicy.
func (p *RandomPolicy) Rollout(state *azul.GameState, player int) float64 {
	for ply := 0; ply < p.maxDepth && !state.RoundOver(); ply++ {
		moves, err := GenerateMoves(state, state.Current)
		if err != nil || len(moves) == 0 {
			break
		}
		m := moves[p.rng.Intn(len(moves))]
		if err := state.ApplyMove(state.Current, m); err != nil {
			break
		}
	}
	return playoutValue(p.eval, state, player)
}

// HeavyPolicy always plays the evaluator-best successor. Slower per
// rollout than RandomPolicy but far less noisy.
type HeavyPolicy struct {
	eval     *Evaluator
	maxDepth int
}

// NewHeavyPolicy creates a greedy playout policy.
func NewHeavyPolicy(eval *Evaluator) *HeavyPolicy {
	return &HeavyPolicy{eval: eval, maxDepth: defaultRolloutDepth}
}

// Rollout implements RolloutPolicy.
func (p *HeavyPolicy) Rollout(state *azul.GameState, player int) float64 {
	for ply := 0; ply < p.maxDepth && !state.RoundOver(); ply++ {
		mover := state.Current
		moves, err := GenerateMoves(state, mover)
		if err != nil || len(moves) == 0 {
			break
		}

		var best *azul.GameState
		bestScore := 0.0
		for _, m := range moves {
			child := state.Clone()
			if err := child.ApplyMove(mover, m); err != nil {
				continue
			}
			score := p.eval.Evaluate(child, mover)
			if best == nil || score > bestScore {
				best = child
				bestScore = score
			}
		}
		if best == nil {
			break
		}
		*state = *best
	}
	return playoutValue(p.eval, state, player)
}

// playoutValue scores the end of a playout: exact when the round finished,
// heuristic when the depth cap cut it short.
func playoutValue(eval *Evaluator, state *azul.GameState, player int) float64 {
	if state.RoundOver() {
		scores := state.FinalScores()
		if len(scores) == 2 {
			return float64(scores[player] - scores[1-player])
		}
		return float64(scores[player])
	}
	if state.NumPlayers() == 2 {
		return eval.Differential(state, player)
	}
	return eval.Evaluate(state, player)
}
