package engine

import (
	"fmt"

	"github.com/yourusername/azulengine/pkg/azul"
)

// lineMask is a bitmask over pattern lines 0..4.
type lineMask uint8

// legalityMasks[t] holds the pattern lines that may legally receive color t.
type legalityMasks [azul.NumColors]lineMask

// computeMasks builds the per-color line legality masks for one agent.
// A line is eligible for a color when its wall cell is still open and the
// line is empty or already staging that color with capacity left.
func computeMasks(agent *azul.AgentState) legalityMasks {
	var masks legalityMasks
	for t := azul.Tile(0); t < azul.NumColors; t++ {
		for r := 0; r < azul.WallSize; r++ {
			if agent.Wall[r][azul.WallColumn(r, t)] {
				continue
			}
			count := int(agent.LineCount[r])
			if count > 0 && agent.LineColor[r] != t {
				continue
			}
			if count >= azul.LineCapacity(r) {
				continue
			}
			masks[t] |= 1 << r
		}
	}
	return masks
}

// GenerateMoves returns every legal move for the player in a deterministic
// order: factory sources in index order, then the centre, colors ascending
// within each source, eligible lines ascending, floor-only move last.
func GenerateMoves(state *azul.GameState, player int) ([]azul.Move, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if player < 0 || player >= state.NumPlayers() {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidPlayer, player, state.NumPlayers())
	}

	masks := computeMasks(&state.Agents[player])
	agent := &state.Agents[player]

	var moves []azul.Move
	for f := range state.Factories {
		moves = appendSourceMoves(moves, agent, masks, azul.FactoryTake, f, state.Factories[f])
	}
	moves = appendSourceMoves(moves, agent, masks, azul.CentreTake, 0, state.Centre)
	return moves, nil
}

// appendSourceMoves emits the moves drawing from one pile: a placement per
// eligible pattern line plus the floor-only fallback for each color present.
func appendSourceMoves(moves []azul.Move, agent *azul.AgentState, masks legalityMasks,
	kind azul.ActionKind, source int, pile azul.Pile) []azul.Move {
	for t := azul.Tile(0); t < azul.NumColors; t++ {
		count := int(pile[t])
		if count == 0 {
			continue
		}
		for r := 0; r < azul.WallSize; r++ {
			if masks[t]&(1<<r) == 0 {
				continue
			}
			space := azul.LineCapacity(r) - int(agent.LineCount[r])
			toLine := count
			if toLine > space {
				toLine = space
			}
			moves = append(moves, azul.Move{
				Kind:    kind,
				Source:  source,
				Color:   t,
				Line:    r,
				ToLine:  uint8(toLine),
				ToFloor: uint8(count - toLine),
			})
		}
		moves = append(moves, azul.Move{
			Kind:    kind,
			Source:  source,
			Color:   t,
			Line:    azul.NoLine,
			ToFloor: uint8(count),
		})
	}
	return moves
}

// ValidMove reports whether m is a legal move for the player in the state.
// It rechecks the rules from scratch rather than consulting the generator,
// including the fill-line-first split between pattern line and floor.
func ValidMove(state *azul.GameState, player int, m azul.Move) bool {
	if state == nil || player < 0 || player >= state.NumPlayers() {
		return false
	}
	if m.Color < 0 || m.Color >= azul.NumColors {
		return false
	}

	var pile azul.Pile
	switch m.Kind {
	case azul.FactoryTake:
		if m.Source < 0 || m.Source >= len(state.Factories) {
			return false
		}
		pile = state.Factories[m.Source]
	case azul.CentreTake:
		pile = state.Centre
	default:
		return false
	}

	count := int(pile[m.Color])
	if count == 0 || int(m.ToLine)+int(m.ToFloor) != count {
		return false
	}

	if m.Line == azul.NoLine {
		return m.ToLine == 0
	}
	if m.Line < 0 || m.Line >= azul.WallSize {
		return false
	}

	agent := &state.Agents[player]
	if agent.Wall[m.Line][azul.WallColumn(m.Line, m.Color)] {
		return false
	}
	if agent.LineCount[m.Line] > 0 && agent.LineColor[m.Line] != m.Color {
		return false
	}
	space := azul.LineCapacity(m.Line) - int(agent.LineCount[m.Line])
	if space <= 0 {
		return false
	}

	// Tiles must fill the line before any spill to the floor.
	want := count
	if want > space {
		want = space
	}
	return int(m.ToLine) == want
}
