package engine

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yourusername/azulengine/pkg/azul"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	return NewDatabase(newTestEvaluator(t), zerolog.Nop())
}

// fillWallCells tiles n wall cells row by row without ever completing a row.
func fillWallCells(a *azul.AgentState, n int) {
	for r := 0; r < azul.WallSize && n > 0; r++ {
		for c := 0; c < azul.WallSize-1 && n > 0; c++ {
			a.Wall[r][c] = true
			n--
		}
	}
}

func TestIsEndgamePositionTriggers(t *testing.T) {
	t.Run("few tiles remaining", func(t *testing.T) {
		s := draftState()
		if !IsEndgamePosition(s, 0) {
			t.Errorf("%d remaining tiles should trigger the default threshold",
				s.TilesRemaining())
		}
	})

	t.Run("plenty of tiles remaining", func(t *testing.T) {
		s := draftState()
		s.Factories[2] = azul.Pile{4, 0, 0, 0, 0}
		s.Factories[3] = azul.Pile{0, 4, 0, 0, 0}
		s.Factories[4] = azul.Pile{0, 0, 4, 0, 0}
		if IsEndgamePosition(s, 0) {
			t.Errorf("%d remaining tiles should not be an endgame", s.TilesRemaining())
		}
	})

	t.Run("completed wall row", func(t *testing.T) {
		s := draftState()
		s.Factories[2] = azul.Pile{4, 4, 4, 4, 4}
		for c := 0; c < azul.WallSize; c++ {
			s.Agents[0].Wall[0][c] = true
		}
		if !IsEndgamePosition(s, 0) {
			t.Error("a completed wall row should trigger endgame analysis")
		}
	})

	t.Run("wall tile count", func(t *testing.T) {
		s := draftState()
		s.Factories[2] = azul.Pile{4, 4, 4, 4, 4}
		fillWallCells(&s.Agents[0], 13)
		fillWallCells(&s.Agents[1], 12)
		if !IsEndgamePosition(s, 0) {
			t.Error("25 wall tiles across players should trigger endgame analysis")
		}
	})

	t.Run("terminal position", func(t *testing.T) {
		s := azul.NewGameState(2)
		if !IsEndgamePosition(s, 0) {
			t.Error("a terminal position should trigger endgame analysis")
		}
	})

	t.Run("custom threshold", func(t *testing.T) {
		s := draftState() // 10 tiles remaining
		if IsEndgamePosition(s, 5) {
			t.Error("10 remaining tiles should not trigger a threshold of 5")
		}
	})
}

func TestSymmetryHashSeatSwapInvariant(t *testing.T) {
	s := draftState()
	s.Agents[0].Score = 12
	s.Agents[0].LineCount[1] = 2
	s.Agents[0].LineColor[1] = azul.Red
	s.Agents[1].Score = 4
	s.Agents[1].Wall[3][3] = true

	swapped := s.Clone()
	swapped.Agents[0], swapped.Agents[1] = swapped.Agents[1], swapped.Agents[0]

	if SymmetryHash(s) != SymmetryHash(swapped) {
		t.Error("seat-swapped positions hash differently")
	}
}

func TestSymmetryHashDistinguishesBoards(t *testing.T) {
	s := draftState()
	base := SymmetryHash(s)

	changed := s.Clone()
	changed.Agents[0].Score = 30
	if SymmetryHash(changed) == base {
		t.Error("hash ignores agent score")
	}

	changed = s.Clone()
	changed.Centre[azul.Red]++
	if SymmetryHash(changed) == base {
		t.Error("hash ignores remaining tile supply")
	}
}

func TestCanonicalVectorShape(t *testing.T) {
	s := draftState()
	vec := CanonicalVector(s)
	want := azul.NumColors + 8*s.NumPlayers()
	if len(vec) != want {
		t.Errorf("vector length = %d, want %d", len(vec), want)
	}
}

func TestEndgameAnalyzeSolvesLastTile(t *testing.T) {
	db := newTestDatabase(t)

	result, err := db.Analyze(lastTileState(), 0, EndgameOptions{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.BestMove == nil {
		t.Fatal("no best move returned")
	}
	if result.BestMove.Line != 0 {
		t.Errorf("best move = %s, want the line 0 placement", FormatMove(*result.BestMove))
	}
	if !result.Exact {
		t.Error("one-tile position should solve exactly")
	}
	if result.BestScore != 1 {
		t.Errorf("best score = %v, want 1", result.BestScore)
	}
	if result.SearchTime > 2.5 {
		t.Errorf("solve took %.2fs, want within the 2s budget", result.SearchTime)
	}
}

func TestEndgameAnalyzeRootBranchCapClearsExact(t *testing.T) {
	db := newTestDatabase(t)

	// The lone centre tile admits six moves; a cap of two leaves root
	// moves unexplored, so the value is a bound rather than a solve.
	result, err := db.Analyze(lastTileState(), 0, EndgameOptions{BranchLimit: 2})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Exact {
		t.Error("truncated root move list reported an exact solve")
	}
	if result.BestMove == nil || result.BestMove.Line != 0 {
		t.Error("cap changed the best explored move")
	}
}

func TestEndgameAnalyzeCachesResults(t *testing.T) {
	db := newTestDatabase(t)

	first, err := db.Analyze(lastTileState(), 0, EndgameOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if first.FromCache {
		t.Fatal("first analysis reported a cache hit")
	}

	second, err := db.Analyze(lastTileState(), 0, EndgameOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !second.FromCache {
		t.Error("second analysis did not hit the cache")
	}
	if second.BestScore != first.BestScore {
		t.Errorf("cached score = %v, want %v", second.BestScore, first.BestScore)
	}
	if second.BestMove == nil || !second.BestMove.Equal(*first.BestMove) {
		t.Error("cached move differs from the solved move")
	}
	if db.Len() != 1 {
		t.Errorf("database holds %d entries, want 1", db.Len())
	}
}

func TestEndgameAnalyzeSharesSymmetricEntries(t *testing.T) {
	db := newTestDatabase(t)

	s := lastTileState()
	s.Agents[0].Score = 5
	s.Agents[1].Score = 2

	if _, err := db.Analyze(s, 0, EndgameOptions{}); err != nil {
		t.Fatal(err)
	}

	swapped := s.Clone()
	swapped.Agents[0], swapped.Agents[1] = swapped.Agents[1], swapped.Agents[0]
	result, err := db.Analyze(swapped, 0, EndgameOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !result.FromCache {
		t.Error("seat-swapped position missed the symmetry cache")
	}
}

func TestEndgameAnalyzeTerminalPosition(t *testing.T) {
	db := newTestDatabase(t)

	s := azul.NewGameState(2)
	s.Agents[0].Score = 6
	s.Agents[1].Score = 2

	result, err := db.Analyze(s, 0, EndgameOptions{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !result.NoMoves {
		t.Error("NoMoves not set for a terminal position")
	}
	if !result.Exact {
		t.Error("terminal positions are exact by definition")
	}
	if result.BestScore != 4 {
		t.Errorf("score = %v, want the +4 differential", result.BestScore)
	}
}

func TestEndgameAnalyzeHonorsTimeout(t *testing.T) {
	db := newTestDatabase(t)

	s := draftState()
	s.Factories[2] = azul.Pile{1, 1, 1, 1, 0}

	start := time.Now()
	result, err := db.Analyze(s, 0, EndgameOptions{
		MaxDepth: 6,
		MaxTime:  50 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Analyze ran %v, want well under a second", elapsed)
	}
	t.Logf("reached depth %d, exact=%v, %d nodes", result.Depth, result.Exact, result.Nodes)
}

func TestEndgameAnalyzeErrors(t *testing.T) {
	db := newTestDatabase(t)
	if _, err := db.Analyze(nil, 0, EndgameOptions{}); err == nil {
		t.Error("expected error for nil state")
	}
	if _, err := db.Analyze(draftState(), 9, EndgameOptions{}); err == nil {
		t.Error("expected error for invalid player")
	}
}
