package engine

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/yourusername/azulengine/internal/weights"
	"github.com/yourusername/azulengine/pkg/azul"
)

// numFeatures is the length of the evaluator feature vector; it must match
// weights.Profile.Vector.
const numFeatures = 6

// Evaluator is the O(1) heuristic position scorer. It is stateless apart
// from its weight vector and safe for concurrent use.
type Evaluator struct {
	weights []float64
}

// NewEvaluator creates an evaluator with the given weight profile,
// or the default profile when nil.
func NewEvaluator(profile *weights.Profile) (*Evaluator, error) {
	if profile == nil {
		profile = weights.Default()
	}
	vec := profile.Vector()
	if len(vec) != numFeatures {
		return nil, fmt.Errorf("weight profile %q has %d weights, want %d",
			profile.Name, len(vec), numFeatures)
	}
	return &Evaluator{weights: vec}, nil
}

// Evaluate returns a scalar desirability of the state from one player's
// perspective. All terms are closed-form sums over the fixed-size board
// arrays, so the cost is independent of search depth.
func (e *Evaluator) Evaluate(state *azul.GameState, player int) float64 {
	var f [numFeatures]float64
	e.features(&state.Agents[player], &f)
	return floats.Dot(f[:], e.weights)
}

// Differential returns the evaluation of player minus the best evaluation
// among the remaining players. For two players this is the usual
// mover-relative differential.
func (e *Evaluator) Differential(state *azul.GameState, player int) float64 {
	own := e.Evaluate(state, player)
	best := 0.0
	first := true
	for p := 0; p < state.NumPlayers(); p++ {
		if p == player {
			continue
		}
		v := e.Evaluate(state, p)
		if first || v > best {
			best = v
			first = false
		}
	}
	return own - best
}

func (e *Evaluator) features(a *azul.AgentState, f *[numFeatures]float64) {
	// Immediate score.
	f[0] = float64(a.Score)

	// Pattern-line potential: partially filled lines weighted by
	// proximity to completion.
	potential := 0.0
	for r := 0; r < azul.WallSize; r++ {
		count := float64(a.LineCount[r])
		if count == 0 {
			continue
		}
		capacity := float64(azul.LineCapacity(r))
		potential += count * count / capacity
	}
	f[1] = potential

	// Estimated floor penalty (negative contribution).
	f[2] = -float64(azul.FloorPenalty(len(a.Floor)))

	// Progress toward row, column and color-set bonuses, weighted by the
	// bonus each would pay out when completed.
	var rowCount, colCount [azul.WallSize]int
	var setCount [azul.NumColors]int
	for r := 0; r < azul.WallSize; r++ {
		for c := 0; c < azul.WallSize; c++ {
			if a.Wall[r][c] {
				rowCount[r]++
				colCount[c]++
				setCount[(c-r+azul.WallSize)%azul.WallSize]++
			}
		}
	}
	var rowProgress, colProgress, setProgress float64
	for i := 0; i < azul.WallSize; i++ {
		fr := float64(rowCount[i]) / azul.WallSize
		fc := float64(colCount[i]) / azul.WallSize
		fs := float64(setCount[i]) / azul.WallSize
		rowProgress += 2 * fr * fr
		colProgress += 7 * fc * fc
		setProgress += 10 * fs * fs
	}
	f[3] = rowProgress
	f[4] = colProgress
	f[5] = setProgress
}
