// Command benchmark plays head-to-head matches between engine
// configurations and reports win rates and timing.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/azulengine/pkg/azul"
	"github.com/yourusername/azulengine/pkg/engine"
)

type gameResult struct {
	scores  [2]int
	rounds  int
	elapsed time.Duration
	err     error
}

func main() {
	games := flag.Int("games", 20, "Number of games to play")
	modeA := flag.String("a", "alphabeta", "Searcher for seat 0 (alphabeta, mcts)")
	modeB := flag.String("b", "mcts", "Searcher for seat 1 (alphabeta, mcts)")
	depth := flag.Int("depth", 3, "Alpha-beta depth")
	rollouts := flag.Int("rollouts", 400, "MCTS rollouts per move")
	moveTime := flag.Duration("time", 500*time.Millisecond, "Per-move time budget")
	seed := flag.Int64("seed", 1, "Deal random seed")
	workers := flag.Int("workers", 0, "Concurrent games (0 = NumCPU)")
	flag.Parse()

	if *workers <= 0 {
		*workers = runtime.NumCPU()
	}

	eng, err := engine.NewEngine(engine.EngineOptions{
		Logger: zerolog.New(os.Stderr).Level(zerolog.WarnLevel),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Azul Engine Benchmark ===\n")
	fmt.Printf("Seat 0: %s   Seat 1: %s   Games: %d\n\n", *modeA, *modeB, *games)

	results := make([]gameResult, *games)
	start := time.Now()

	g := errgroup.Group{}
	g.SetLimit(*workers)
	for i := 0; i < *games; i++ {
		i := i
		g.Go(func() error {
			results[i] = playGame(eng, gameConfig{
				modes:    [2]string{*modeA, *modeB},
				depth:    *depth,
				rollouts: *rollouts,
				moveTime: *moveTime,
				seed:     *seed + int64(i),
			})
			return nil
		})
	}
	g.Wait()

	wins := [2]int{}
	draws := 0
	totalRounds := 0
	failed := 0
	for i, r := range results {
		if r.err != nil {
			fmt.Printf("game %d failed: %v\n", i, r.err)
			failed++
			continue
		}
		totalRounds += r.rounds
		switch {
		case r.scores[0] > r.scores[1]:
			wins[0]++
		case r.scores[1] > r.scores[0]:
			wins[1]++
		default:
			draws++
		}
	}

	played := *games - failed
	fmt.Printf("\nPlayed %d games in %.1fs\n", played, time.Since(start).Seconds())
	if played > 0 {
		fmt.Printf("Seat 0 (%s): %d wins (%.1f%%)\n", *modeA, wins[0], 100*float64(wins[0])/float64(played))
		fmt.Printf("Seat 1 (%s): %d wins (%.1f%%)\n", *modeB, wins[1], 100*float64(wins[1])/float64(played))
		fmt.Printf("Draws: %d\n", draws)
		fmt.Printf("Average rounds per game: %.1f\n", float64(totalRounds)/float64(played))
	}
	lookups, hits, _ := eng.Cache().Stats()
	fmt.Printf("Eval cache: %d lookups, %d hits (%.1f%%)\n", lookups, hits, eng.Cache().HitRate())
}

type gameConfig struct {
	modes    [2]string
	depth    int
	rollouts int
	moveTime time.Duration
	seed     int64
}

// playGame plays one full two-player game: deal, draft to the end of the
// round, resolve, repeat until a wall row completes or the bag runs dry.
func playGame(eng *engine.Engine, cfg gameConfig) gameResult {
	start := time.Now()
	rng := rand.New(rand.NewSource(cfg.seed))

	state := azul.NewGameState(2)
	var bag azul.Pile
	for t := 0; t < azul.NumColors; t++ {
		bag[t] = azul.TilesPerColor
	}

	res := gameResult{}
	for round := 0; round < 12; round++ {
		if !deal(state, &bag, rng) {
			break
		}
		res.rounds++

		for !state.RoundOver() {
			player := state.Current
			move, err := pickMove(eng, state, player, cfg)
			if err != nil {
				res.err = fmt.Errorf("round %d: %w", round, err)
				return res
			}
			if move == nil {
				break
			}
			if err := state.ApplyMove(player, *move); err != nil {
				res.err = fmt.Errorf("round %d: applying %s: %w", round, engine.FormatMove(*move), err)
				return res
			}
		}

		if state.ResolveRound() {
			break
		}
	}

	final := state.FinalScores()
	res.scores = [2]int{final[0], final[1]}
	res.elapsed = time.Since(start)
	return res
}

// deal fills every factory with four random tiles from the bag. Returns
// false when the bag cannot fill a single factory.
func deal(state *azul.GameState, bag *azul.Pile, rng *rand.Rand) bool {
	if bag.Total() < azul.FactoryCapacity {
		return false
	}
	for f := range state.Factories {
		state.Factories[f] = azul.Pile{}
		for n := 0; n < azul.FactoryCapacity && bag.Total() > 0; n++ {
			pick := rng.Intn(bag.Total())
			for t := 0; t < azul.NumColors; t++ {
				if pick < int(bag[t]) {
					state.Factories[f][t]++
					bag[t]--
					break
				}
				pick -= int(bag[t])
			}
		}
	}
	return true
}

// pickMove asks the configured searcher for the seat's move.
func pickMove(eng *engine.Engine, state *azul.GameState, player int, cfg gameConfig) (*azul.Move, error) {
	var req engine.Request
	switch cfg.modes[player] {
	case "mcts":
		req = engine.Request{
			Mode: engine.ModeMCTS,
			MCTS: engine.MCTSOptions{
				MaxRollouts: cfg.rollouts,
				MaxTime:     cfg.moveTime,
				Policy:      engine.NewRandomPolicy(eng.Evaluator(), cfg.seed),
			},
		}
	default:
		req = engine.Request{
			Mode: engine.ModeAlphaBeta,
			AlphaBeta: engine.AlphaBetaOptions{
				MaxDepth: cfg.depth,
				MaxTime:  cfg.moveTime,
			},
		}
	}

	result, err := eng.Analyze(state, player, req)
	if err != nil {
		return nil, err
	}
	if result.NoMoves {
		return nil, nil
	}
	move, err := engine.ParseMove(result.BestMove, state, player)
	if err != nil {
		return nil, err
	}
	return &move, nil
}
