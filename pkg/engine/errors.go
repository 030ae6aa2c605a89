// Package engine implements position analysis for Azul: move generation,
// heuristic evaluation, alpha-beta and Monte Carlo tree search, and an
// exact endgame solver with a memoizing database.
package engine

import "errors"

// Sentinel errors returned by the analysis operations. A position with no
// legal moves is not an error; searches report it through their NoMoves
// result flag.
var (
	ErrNilState      = errors.New("nil game state")
	ErrInvalidPlayer = errors.New("invalid player index")
)
