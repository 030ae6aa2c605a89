package engine

import (
	"testing"

	"github.com/yourusername/azulengine/pkg/azul"
)

// draftState returns a two-player position mid-draft.
func draftState() *azul.GameState {
	s := azul.NewGameState(2)
	s.Factories[0] = azul.Pile{2, 2, 0, 0, 0}
	s.Factories[1] = azul.Pile{0, 0, 3, 1, 0}
	s.Centre = azul.Pile{1, 0, 0, 0, 1}
	return s
}

// lastTileState returns a position with a single blue tile left in the
// centre. Taking it onto line 0 completes the line and ends the round.
func lastTileState() *azul.GameState {
	s := azul.NewGameState(2)
	s.Centre = azul.Pile{1, 0, 0, 0, 0}
	return s
}

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	eval, err := NewEvaluator(nil)
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}
	return eval
}

func TestGenerateMovesAllValid(t *testing.T) {
	s := draftState()
	moves, err := GenerateMoves(s, 0)
	if err != nil {
		t.Fatalf("GenerateMoves failed: %v", err)
	}
	if len(moves) == 0 {
		t.Fatal("expected legal moves in a mid-draft position")
	}
	t.Logf("generated %d moves", len(moves))

	for i, m := range moves {
		if !ValidMove(s, 0, m) {
			t.Errorf("move %d (%s) fails independent validation: %+v", i, FormatMove(m), m)
		}
		child := s.Clone()
		if err := child.ApplyMove(0, m); err != nil {
			t.Errorf("move %d (%s) rejected by ApplyMove: %v", i, FormatMove(m), err)
		}
	}
}

func TestGenerateMovesDeterministicOrder(t *testing.T) {
	s := draftState()
	first, err := GenerateMoves(s, 0)
	if err != nil {
		t.Fatal(err)
	}
	second, err := GenerateMoves(s, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("move counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Errorf("move %d differs between runs: %s vs %s",
				i, FormatMove(first[i]), FormatMove(second[i]))
		}
	}
}

func TestGenerateMovesFloorOnlyWhenNoLineEligible(t *testing.T) {
	s := azul.NewGameState(2)
	s.Factories[0] = azul.Pile{3, 0, 0, 0, 0}
	// Every wall row already holds blue, so no line can receive it.
	for r := 0; r < azul.WallSize; r++ {
		s.Agents[0].Wall[r][azul.WallColumn(r, azul.Blue)] = true
	}

	moves, err := GenerateMoves(s, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 1 {
		t.Fatalf("moves = %d, want exactly the floor-only move", len(moves))
	}
	m := moves[0]
	if m.Line != azul.NoLine || m.ToFloor != 3 || m.ToLine != 0 {
		t.Errorf("unexpected move %+v", m)
	}
}

func TestGenerateMovesSplitsOverflow(t *testing.T) {
	s := azul.NewGameState(2)
	s.Factories[0] = azul.Pile{0, 0, 4, 0, 0}
	s.Agents[0].LineCount[2] = 1
	s.Agents[0].LineColor[2] = azul.Red

	moves, err := GenerateMoves(s, 0)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, m := range moves {
		if m.Line == 2 {
			found = true
			// Two empty slots on line 2, so two of four tiles spill.
			if m.ToLine != 2 || m.ToFloor != 2 {
				t.Errorf("line 2 split = %d/%d, want 2/2", m.ToLine, m.ToFloor)
			}
		}
	}
	if !found {
		t.Error("no move targets the partially filled line")
	}
}

func TestGenerateMovesRespectsLineColor(t *testing.T) {
	s := azul.NewGameState(2)
	s.Factories[0] = azul.Pile{2, 0, 0, 0, 0}
	s.Agents[0].LineCount[3] = 1
	s.Agents[0].LineColor[3] = azul.Red

	moves, err := GenerateMoves(s, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range moves {
		if m.Color == azul.Blue && m.Line == 3 {
			t.Errorf("generated blue move onto a red line: %+v", m)
		}
	}
}

func TestGenerateMovesErrors(t *testing.T) {
	if _, err := GenerateMoves(nil, 0); err == nil {
		t.Error("expected error for nil state")
	}
	if _, err := GenerateMoves(draftState(), 5); err == nil {
		t.Error("expected error for out-of-range player")
	}
}

func TestGenerateMovesEmptyWhenRoundOver(t *testing.T) {
	s := azul.NewGameState(2)
	moves, err := GenerateMoves(s, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 0 {
		t.Errorf("moves = %d, want 0 for an empty board", len(moves))
	}
}
