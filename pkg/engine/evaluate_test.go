package engine

import (
	"testing"

	"github.com/yourusername/azulengine/internal/weights"
	"github.com/yourusername/azulengine/pkg/azul"
)

func TestEvaluateEmptyBoardIsZero(t *testing.T) {
	eval := newTestEvaluator(t)
	s := azul.NewGameState(2)
	if got := eval.Evaluate(s, 0); got != 0 {
		t.Errorf("Evaluate(empty) = %v, want 0", got)
	}
}

func TestEvaluateRewardsScore(t *testing.T) {
	eval := newTestEvaluator(t)
	s := azul.NewGameState(2)
	base := eval.Evaluate(s, 0)

	s.Agents[0].Score = 10
	if got := eval.Evaluate(s, 0); got <= base {
		t.Errorf("Evaluate = %v, want > %v after gaining points", got, base)
	}
}

func TestEvaluatePenalizesFloor(t *testing.T) {
	eval := newTestEvaluator(t)
	s := azul.NewGameState(2)
	base := eval.Evaluate(s, 0)

	s.Agents[0].Floor = []azul.Tile{azul.Red, azul.Red, azul.Red}
	if got := eval.Evaluate(s, 0); got >= base {
		t.Errorf("Evaluate = %v, want < %v with floor tiles", got, base)
	}
}

func TestEvaluateNearCompleteLineWorthMore(t *testing.T) {
	eval := newTestEvaluator(t)

	near := azul.NewGameState(2)
	near.Agents[0].LineCount[4] = 4
	near.Agents[0].LineColor[4] = azul.Blue

	far := azul.NewGameState(2)
	far.Agents[0].LineCount[4] = 1
	far.Agents[0].LineColor[4] = azul.Blue

	if eval.Evaluate(near, 0) <= eval.Evaluate(far, 0) {
		t.Error("a nearly complete line should score higher than a barely started one")
	}
}

func TestDifferentialAntisymmetricForTwoPlayers(t *testing.T) {
	eval := newTestEvaluator(t)
	s := azul.NewGameState(2)
	s.Agents[0].Score = 8
	s.Agents[1].Score = 3

	d0 := eval.Differential(s, 0)
	d1 := eval.Differential(s, 1)
	if d0 != -d1 {
		t.Errorf("differentials not antisymmetric: %v vs %v", d0, d1)
	}
	if d0 <= 0 {
		t.Errorf("differential = %v, want > 0 for the leading player", d0)
	}
}

func TestDifferentialUsesBestOpponent(t *testing.T) {
	eval := newTestEvaluator(t)
	s := azul.NewGameState(3)
	s.Agents[0].Score = 5
	s.Agents[1].Score = 2
	s.Agents[2].Score = 9

	d := eval.Differential(s, 0)
	want := eval.Evaluate(s, 0) - eval.Evaluate(s, 2)
	if d != want {
		t.Errorf("differential = %v, want %v (against the strongest opponent)", d, want)
	}
}

func TestNewEvaluatorCustomProfile(t *testing.T) {
	p := weights.Default()
	p.FloorPenalty = 0

	eval, err := NewEvaluator(p)
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}

	s := azul.NewGameState(2)
	s.Agents[0].Floor = []azul.Tile{azul.Red, azul.Red}
	if got := eval.Evaluate(s, 0); got != 0 {
		t.Errorf("Evaluate = %v, want 0 with zero floor weight", got)
	}
}
