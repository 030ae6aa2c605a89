package engine

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/azulengine/pkg/azul"
)

func newTestEngine(t *testing.T, opts EngineOptions) *Engine {
	t.Helper()
	opts.Logger = zerolog.Nop()
	e, err := NewEngine(opts)
	require.NoError(t, err)
	return e
}

func TestFormatMove(t *testing.T) {
	cases := []struct {
		move azul.Move
		want string
	}{
		{azul.Move{Kind: azul.FactoryTake, Source: 2, Color: azul.Red, Line: 3, ToLine: 2}, "F2:r:3"},
		{azul.Move{Kind: azul.FactoryTake, Source: 0, Color: azul.Blue, Line: 1, ToLine: 2, ToFloor: 1}, "F0:b:1+1"},
		{azul.Move{Kind: azul.CentreTake, Color: azul.White, Line: azul.NoLine, ToFloor: 3}, "C:w:floor"},
		{azul.Move{Kind: azul.CentreTake, Color: azul.Black, Line: 4, ToLine: 1}, "C:k:4"},
	}
	for _, tc := range cases {
		if got := FormatMove(tc.move); got != tc.want {
			t.Errorf("FormatMove(%+v) = %q, want %q", tc.move, got, tc.want)
		}
	}
}

func TestParseMoveRoundTrip(t *testing.T) {
	s := draftState()
	moves, err := GenerateMoves(s, 0)
	require.NoError(t, err)
	require.NotEmpty(t, moves)

	for _, m := range moves {
		parsed, err := ParseMove(FormatMove(m), s, 0)
		require.NoError(t, err, "parsing %s", FormatMove(m))
		require.True(t, parsed.Equal(m), "round trip changed %s into %s",
			FormatMove(m), FormatMove(parsed))
	}
}

func TestParseMoveRejectsMalformed(t *testing.T) {
	s := draftState()
	for _, bad := range []string{"", "F0", "F9:b:0", "F0:z:0", "F0:b:9", "X:b:0", "F0:r:0"} {
		if _, err := ParseMove(bad, s, 0); err == nil {
			t.Errorf("ParseMove(%q) succeeded, want error", bad)
		}
	}
}

func TestEngineAnalyzeAutoRoutesToEndgame(t *testing.T) {
	e := newTestEngine(t, EngineOptions{})

	// Ten tiles left: at the endgame threshold.
	result, err := e.Analyze(draftState(), 0, Request{Mode: ModeAuto})
	require.NoError(t, err)
	require.Equal(t, ModeEndgame, result.Mode)
}

func TestEngineAnalyzeAutoRoutesToAlphaBeta(t *testing.T) {
	e := newTestEngine(t, EngineOptions{})

	s := draftState()
	s.Factories[2] = azul.Pile{4, 0, 0, 0, 0}
	s.Factories[3] = azul.Pile{0, 4, 0, 0, 0}
	result, err := e.Analyze(s, 0, Request{})
	require.NoError(t, err)
	require.Equal(t, ModeAlphaBeta, result.Mode)
	require.NotEmpty(t, result.BestMove)
}

func TestEngineAnalyzeModes(t *testing.T) {
	e := newTestEngine(t, EngineOptions{})
	s := lastTileState()

	for _, mode := range []AnalysisMode{ModeAlphaBeta, ModeMCTS, ModeEndgame} {
		result, err := e.Analyze(s, 0, Request{Mode: mode})
		require.NoError(t, err, "mode %s", mode)
		require.Equal(t, mode, result.Mode)
		require.Equal(t, "C:b:0", result.BestMove, "mode %s", mode)
	}
}

func TestEngineAnalyzeUnknownMode(t *testing.T) {
	e := newTestEngine(t, EngineOptions{})
	_, err := e.Analyze(draftState(), 0, Request{Mode: "negamax"})
	require.Error(t, err)
}

func TestEngineAnalyzeUsesResultStore(t *testing.T) {
	store := NewMemoryStore()
	e := newTestEngine(t, EngineOptions{Store: store})
	s := lastTileState()

	first, err := e.Analyze(s, 0, Request{Mode: ModeAlphaBeta})
	require.NoError(t, err)
	require.False(t, first.FromCache)
	require.Equal(t, 1, store.Len())

	second, err := e.Analyze(s, 0, Request{Mode: ModeAlphaBeta})
	require.NoError(t, err)
	require.True(t, second.FromCache)
	require.Equal(t, first.BestMove, second.BestMove)
	require.Equal(t, first.BestScore, second.BestScore)

	// A different mode is a different store entry.
	third, err := e.Analyze(s, 0, Request{Mode: ModeMCTS})
	require.NoError(t, err)
	require.False(t, third.FromCache)
}

func TestEngineEvaluateCachedHitsCache(t *testing.T) {
	e := newTestEngine(t, EngineOptions{})
	s := draftState()

	first := e.EvaluateCached(s, 0)
	second := e.EvaluateCached(s, 0)
	require.Equal(t, first, second)

	_, hits, _ := e.Cache().Stats()
	require.Equal(t, uint64(1), hits)
}

func TestEngineRankMoves(t *testing.T) {
	e := newTestEngine(t, EngineOptions{})
	s := draftState()

	ranked, err := e.RankMoves(s, 0)
	require.NoError(t, err)
	require.NotEmpty(t, ranked)
	for i := 1; i < len(ranked); i++ {
		require.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score,
			"ranking not sorted at %d", i)
	}

	again, err := e.RankMoves(s, 0)
	require.NoError(t, err)
	require.Equal(t, len(ranked), len(again))
	for i := range ranked {
		require.True(t, ranked[i].Move.Equal(again[i].Move), "ranking unstable at %d", i)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	if _, ok := store.Get("missing"); ok {
		t.Error("empty store returned a result")
	}

	r := &Result{Mode: ModeAlphaBeta, BestMove: "F0:b:1", BestScore: 2.5}
	store.Put("key", r)

	got, ok := store.Get("key")
	if !ok {
		t.Fatal("stored result not found")
	}
	if got.BestMove != r.BestMove || got.BestScore != r.BestScore {
		t.Errorf("got %+v, want %+v", got, r)
	}

	// Returned results are copies.
	got.BestScore = 99
	fresh, _ := store.Get("key")
	if fresh.BestScore != 2.5 {
		t.Error("store handed out shared result memory")
	}

	store.Flush()
	if store.Len() != 0 {
		t.Errorf("store has %d entries after Flush", store.Len())
	}
}
