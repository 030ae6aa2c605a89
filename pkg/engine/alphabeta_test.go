package engine

import (
	"testing"
	"time"

	"github.com/yourusername/azulengine/pkg/azul"
)

func TestAlphaBetaPicksWinningLastTile(t *testing.T) {
	ab := NewAlphaBeta(newTestEvaluator(t))
	s := lastTileState()

	result, err := ab.Search(s, 0, AlphaBetaOptions{MaxDepth: 2})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if result.BestMove == nil {
		t.Fatal("no best move returned")
	}
	// Placing the lone blue tile on line 0 completes it for a point;
	// dumping it on the floor costs one.
	if result.BestMove.Line != 0 || result.BestMove.Color != azul.Blue {
		t.Errorf("best move = %s, want C:b:0", FormatMove(*result.BestMove))
	}
	if result.BestScore != 1 {
		t.Errorf("best score = %v, want exactly 1", result.BestScore)
	}
}

func TestAlphaBetaDeterministic(t *testing.T) {
	ab := NewAlphaBeta(newTestEvaluator(t))
	opts := AlphaBetaOptions{MaxDepth: 3, MaxTime: 30 * time.Second}

	first, err := ab.Search(draftState(), 0, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ab.Search(draftState(), 0, opts)
	if err != nil {
		t.Fatal(err)
	}

	if first.BestMove == nil || second.BestMove == nil {
		t.Fatal("search returned no move")
	}
	if !first.BestMove.Equal(*second.BestMove) {
		t.Errorf("best moves differ: %s vs %s",
			FormatMove(*first.BestMove), FormatMove(*second.BestMove))
	}
	if first.BestScore != second.BestScore {
		t.Errorf("best scores differ: %v vs %v", first.BestScore, second.BestScore)
	}
	if first.DepthReached != second.DepthReached {
		t.Errorf("depths differ: %d vs %d", first.DepthReached, second.DepthReached)
	}
}

func TestAlphaBetaDeeperSearchCountsMoreNodes(t *testing.T) {
	ab := NewAlphaBeta(newTestEvaluator(t))

	shallow, err := ab.Search(draftState(), 0, AlphaBetaOptions{MaxDepth: 1})
	if err != nil {
		t.Fatal(err)
	}
	deep, err := ab.Search(draftState(), 0, AlphaBetaOptions{MaxDepth: 3, MaxTime: 30 * time.Second})
	if err != nil {
		t.Fatal(err)
	}

	if deep.Nodes <= shallow.Nodes {
		t.Errorf("deep nodes = %d, shallow nodes = %d", deep.Nodes, shallow.Nodes)
	}
	t.Logf("depth 1: %d nodes, depth 3: %d nodes", shallow.Nodes, deep.Nodes)
}

func TestAlphaBetaNoMoves(t *testing.T) {
	ab := NewAlphaBeta(newTestEvaluator(t))
	s := azul.NewGameState(2)

	result, err := ab.Search(s, 0, AlphaBetaOptions{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !result.NoMoves {
		t.Error("NoMoves not set for a terminal position")
	}
	if result.BestMove != nil {
		t.Errorf("best move = %s, want none", FormatMove(*result.BestMove))
	}
}

func TestAlphaBetaErrors(t *testing.T) {
	ab := NewAlphaBeta(newTestEvaluator(t))
	if _, err := ab.Search(nil, 0, AlphaBetaOptions{}); err == nil {
		t.Error("expected error for nil state")
	}
	if _, err := ab.Search(draftState(), 2, AlphaBetaOptions{}); err == nil {
		t.Error("expected error for invalid player")
	}
}

func TestMoveOrderingPrefersLineCompletion(t *testing.T) {
	s := azul.NewGameState(2)
	s.Agents[0].LineCount[2] = 2
	s.Agents[0].LineColor[2] = azul.Red

	completing := azul.Move{Kind: azul.FactoryTake, Color: azul.Red, Line: 2, ToLine: 1}
	partial := azul.Move{Kind: azul.FactoryTake, Color: azul.Blue, Line: 4, ToLine: 2}
	floorOnly := azul.Move{Kind: azul.FactoryTake, Color: azul.Blue, Line: azul.NoLine, ToFloor: 2}

	moves := []azul.Move{floorOnly, partial, completing}
	orderMoves(&s.Agents[0], moves)

	if !moves[0].Equal(completing) {
		t.Errorf("first move = %s, want the line-completing move", FormatMove(moves[0]))
	}
	if !moves[len(moves)-1].Equal(floorOnly) {
		t.Errorf("last move = %s, want the floor dump", FormatMove(moves[len(moves)-1]))
	}
}
