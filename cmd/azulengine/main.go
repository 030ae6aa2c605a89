// azulengine - A command line Azul position analysis engine
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/yourusername/azulengine/internal/tilecode"
	"github.com/yourusername/azulengine/internal/weights"
	"github.com/yourusername/azulengine/pkg/azul"
	"github.com/yourusername/azulengine/pkg/engine"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "eval":
		cmdEval(args)
	case "move":
		cmdMove(args)
	case "mcts":
		cmdMCTS(args)
	case "endgame":
		cmdEndgame(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`azulengine - Azul Position Analysis Engine

Usage: azulengine <command> [options]

Commands:
  eval      Evaluate a position heuristically
  move      Find the best move with alpha-beta search
  mcts      Find the best move with Monte Carlo tree search
  endgame   Solve an endgame position exactly

Use "azulengine <command> -h" for command-specific help.

Position Format:
  "<factories> <centre> <agents> <turn>"
  Factories and centre are 5-digit tile piles (blue,yellow,red,black,white),
  factories separated by commas. Each agent is "lines/wall/floor/score",
  agents separated by "|". Example two-player opening:
  "20011,11020,00121,10201,02011 00000 -,-,-,-,-/0000000000000000000000000/00000/0|-,-,-,-,-/0000000000000000000000000/00000/0 0"`)
}

func parsePosition(posStr string) (*azul.GameState, error) {
	state, err := tilecode.DecodePosition(posStr)
	if err != nil {
		return nil, fmt.Errorf("invalid position: %w", err)
	}
	return state, nil
}

func createEngine(weightsFile string) (*engine.Engine, error) {
	opts := engine.EngineOptions{
		Logger: zerolog.New(os.Stderr).Level(zerolog.WarnLevel),
	}
	if weightsFile != "" {
		profile, err := weights.LoadJSON(weightsFile)
		if err != nil {
			return nil, fmt.Errorf("loading weights: %w", err)
		}
		opts.Weights = profile
	}
	e, err := engine.NewEngine(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return e, nil
}

// commonFlags registers the flags shared by every subcommand.
func commonFlags(fs *flag.FlagSet) (pos *string, player *int, weightsFile *string) {
	pos = fs.String("position", "", "Position ID string")
	player = fs.Int("player", 0, "Seat to analyze for")
	weightsFile = fs.String("weights", "", "Path to JSON weight profile")
	return
}

func requirePosition(pos string, usage string) {
	if pos == "" {
		fmt.Fprintln(os.Stderr, "Error: position required")
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdEval(args []string) {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	pos, player, weightsFile := commonFlags(fs)
	fs.Parse(args)
	requirePosition(*pos, "Usage: azulengine eval -position <positionID>")

	state, err := parsePosition(*pos)
	if err != nil {
		fatal(err)
	}
	e, err := createEngine(*weightsFile)
	if err != nil {
		fatal(err)
	}

	score := e.EvaluateCached(state, *player)
	fmt.Printf("Position:  %s\n", tilecode.EncodePosition(state))
	fmt.Printf("Player:    %d\n", *player)
	fmt.Printf("Score:     %+.3f\n", score)
	fmt.Printf("Endgame:   %v\n", e.IsEndgame(state))

	ranked, err := e.RankMoves(state, *player)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Moves:     %d legal\n", len(ranked))
	for i, r := range ranked {
		if i >= 5 {
			break
		}
		fmt.Printf("  %d. %-12s %+.3f\n", i+1, engine.FormatMove(r.Move), r.Score)
	}
}

func cmdMove(args []string) {
	fs := flag.NewFlagSet("move", flag.ExitOnError)
	pos, player, weightsFile := commonFlags(fs)
	depth := fs.Int("depth", 4, "Maximum search depth in plies")
	maxTime := fs.Duration("time", 2*time.Second, "Search time budget")
	fs.Parse(args)
	requirePosition(*pos, "Usage: azulengine move -position <positionID>")

	state, err := parsePosition(*pos)
	if err != nil {
		fatal(err)
	}
	e, err := createEngine(*weightsFile)
	if err != nil {
		fatal(err)
	}

	result, err := e.Analyze(state, *player, engine.Request{
		Mode: engine.ModeAlphaBeta,
		AlphaBeta: engine.AlphaBetaOptions{
			MaxDepth: *depth,
			MaxTime:  *maxTime,
		},
	})
	if err != nil {
		fatal(err)
	}
	printResult(result)
}

func cmdMCTS(args []string) {
	fs := flag.NewFlagSet("mcts", flag.ExitOnError)
	pos, player, weightsFile := commonFlags(fs)
	rollouts := fs.Int("rollouts", 1000, "Maximum rollouts")
	maxTime := fs.Duration("time", time.Second, "Search time budget")
	seed := fs.Int64("seed", 1, "Rollout random seed")
	fs.Parse(args)
	requirePosition(*pos, "Usage: azulengine mcts -position <positionID>")

	state, err := parsePosition(*pos)
	if err != nil {
		fatal(err)
	}
	e, err := createEngine(*weightsFile)
	if err != nil {
		fatal(err)
	}

	result, err := e.Analyze(state, *player, engine.Request{
		Mode: engine.ModeMCTS,
		MCTS: engine.MCTSOptions{
			MaxRollouts: *rollouts,
			MaxTime:     *maxTime,
			Policy:      engine.NewRandomPolicy(e.Evaluator(), *seed),
		},
	})
	if err != nil {
		fatal(err)
	}
	printResult(result)
}

func cmdEndgame(args []string) {
	fs := flag.NewFlagSet("endgame", flag.ExitOnError)
	pos, player, weightsFile := commonFlags(fs)
	depth := fs.Int("depth", 6, "Progressive deepening cap")
	maxTime := fs.Duration("time", 2*time.Second, "Solve time budget")
	fs.Parse(args)
	requirePosition(*pos, "Usage: azulengine endgame -position <positionID>")

	state, err := parsePosition(*pos)
	if err != nil {
		fatal(err)
	}
	e, err := createEngine(*weightsFile)
	if err != nil {
		fatal(err)
	}

	result, err := e.Analyze(state, *player, engine.Request{
		Mode: engine.ModeEndgame,
		Endgame: engine.EndgameOptions{
			MaxDepth: *depth,
			MaxTime:  *maxTime,
		},
	})
	if err != nil {
		fatal(err)
	}
	printResult(result)
}

func printResult(r *engine.Result) {
	fmt.Printf("Mode:      %s\n", r.Mode)
	if r.NoMoves {
		fmt.Println("No legal moves: position is terminal")
		fmt.Printf("Score:     %+.3f\n", r.BestScore)
		return
	}
	fmt.Printf("Best move: %s\n", r.BestMove)
	fmt.Printf("Score:     %+.3f\n", r.BestScore)
	if r.DepthReached > 0 {
		fmt.Printf("Depth:     %d\n", r.DepthReached)
	}
	if r.Rollouts > 0 {
		fmt.Printf("Rollouts:  %d\n", r.Rollouts)
	}
	if len(r.PV) > 0 {
		fmt.Printf("PV:        %v\n", r.PV)
	}
	fmt.Printf("Nodes:     %d\n", r.Nodes)
	fmt.Printf("Time:      %.3fs\n", r.SearchTime)
	if r.Exact {
		fmt.Println("Exact:     yes")
	}
	if r.TimedOut {
		fmt.Println("Timed out: yes")
	}
}
