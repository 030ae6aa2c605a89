package azul

import (
	"fmt"
)

// floorPenalties is the cumulative penalty schedule for floor tiles.
// Tiles beyond the seventh slot carry no additional penalty.
var floorPenalties = [7]int{1, 1, 2, 2, 2, 3, 3}

// MaxFloorPenaltySlots is the number of floor slots that carry a penalty.
const MaxFloorPenaltySlots = len(floorPenalties)

// ApplyMove applies a draft move for the given player and advances the turn.
// It validates the move against the state and returns an error for a move
// that does not correspond to a legal action, leaving the state untouched.
func (s *GameState) ApplyMove(player int, m Move) error {
	if player < 0 || player >= len(s.Agents) {
		return fmt.Errorf("apply move: player %d out of range", player)
	}
	if m.Color < 0 || m.Color >= NumColors {
		return fmt.Errorf("apply move: invalid color %d", m.Color)
	}

	var source *Pile
	switch m.Kind {
	case FactoryTake:
		if m.Source < 0 || m.Source >= len(s.Factories) {
			return fmt.Errorf("apply move: factory %d out of range", m.Source)
		}
		source = &s.Factories[m.Source]
	case CentreTake:
		source = &s.Centre
	default:
		return fmt.Errorf("apply move: unknown action kind %d", m.Kind)
	}

	available := int(source[m.Color])
	if available == 0 {
		return fmt.Errorf("apply move: no %v tiles at source", m.Color)
	}
	if int(m.ToLine)+int(m.ToFloor) != available {
		return fmt.Errorf("apply move: move takes %d tiles but source has %d",
			int(m.ToLine)+int(m.ToFloor), available)
	}

	agent := &s.Agents[player]
	if m.Line != NoLine {
		if m.Line < 0 || m.Line >= WallSize {
			return fmt.Errorf("apply move: pattern line %d out of range", m.Line)
		}
		if agent.LineCount[m.Line] > 0 && agent.LineColor[m.Line] != m.Color {
			return fmt.Errorf("apply move: line %d holds %v, cannot add %v",
				m.Line, agent.LineColor[m.Line], m.Color)
		}
		if agent.Wall[m.Line][WallColumn(m.Line, m.Color)] {
			return fmt.Errorf("apply move: wall row %d already has %v", m.Line, m.Color)
		}
		capacity := LineCapacity(m.Line)
		if int(agent.LineCount[m.Line])+int(m.ToLine) > capacity {
			return fmt.Errorf("apply move: line %d overflows capacity %d", m.Line, capacity)
		}
	} else if m.ToLine != 0 {
		return fmt.Errorf("apply move: floor-only move places %d tiles on a line", m.ToLine)
	}

	// Take the tiles.
	source[m.Color] = 0
	if m.Kind == FactoryTake {
		// Remaining factory tiles move to the centre.
		for t := 0; t < NumColors; t++ {
			s.Centre[t] += source[t]
			source[t] = 0
		}
	}

	if m.Line != NoLine && m.ToLine > 0 {
		agent.LineCount[m.Line] += m.ToLine
		agent.LineColor[m.Line] = m.Color
	}
	for i := uint8(0); i < m.ToFloor; i++ {
		agent.Floor = append(agent.Floor, m.Color)
	}

	s.Current = (player + 1) % len(s.Agents)
	return nil
}

// scoreWallPlacement returns the points earned by tiling (row, col), counting
// the contiguous horizontal and vertical runs through the new tile.
func scoreWallPlacement(wall *[WallSize][WallSize]bool, row, col int) int {
	horiz := 1
	for c := col - 1; c >= 0 && wall[row][c]; c-- {
		horiz++
	}
	for c := col + 1; c < WallSize && wall[row][c]; c++ {
		horiz++
	}

	vert := 1
	for r := row - 1; r >= 0 && wall[r][col]; r-- {
		vert++
	}
	for r := row + 1; r < WallSize && wall[r][col]; r++ {
		vert++
	}

	score := 0
	if horiz > 1 {
		score += horiz
	}
	if vert > 1 {
		score += vert
	}
	if score == 0 {
		score = 1
	}
	return score
}

// FloorPenalty returns the total penalty for n floor tiles.
func FloorPenalty(n int) int {
	if n > MaxFloorPenaltySlots {
		n = MaxFloorPenaltySlots
	}
	penalty := 0
	for i := 0; i < n; i++ {
		penalty += floorPenalties[i]
	}
	return penalty
}

// ResolveRound performs end-of-round wall tiling for every agent: each
// complete pattern line moves one tile to the wall and scores adjacency,
// floor penalties are applied, and floors are cleared. Scores never drop
// below zero. Returns true if any agent finished a wall row, which ends
// the game.
func (s *GameState) ResolveRound() bool {
	gameOver := false
	for i := range s.Agents {
		agent := &s.Agents[i]
		for r := 0; r < WallSize; r++ {
			if int(agent.LineCount[r]) != LineCapacity(r) {
				continue
			}
			color := agent.LineColor[r]
			col := WallColumn(r, color)
			agent.Wall[r][col] = true
			agent.Score += scoreWallPlacement(&agent.Wall, r, col)
			agent.LineCount[r] = 0
			agent.LineColor[r] = -1
		}
		agent.Score -= FloorPenalty(len(agent.Floor))
		if agent.Score < 0 {
			agent.Score = 0
		}
		agent.Floor = agent.Floor[:0]

		if agent.CompletedRows() > 0 {
			gameOver = true
		}
	}
	s.Round++
	return gameOver
}

// CompletedRows returns the number of fully tiled wall rows.
func (a *AgentState) CompletedRows() int {
	rows := 0
	for r := 0; r < WallSize; r++ {
		full := true
		for c := 0; c < WallSize; c++ {
			if !a.Wall[r][c] {
				full = false
				break
			}
		}
		if full {
			rows++
		}
	}
	return rows
}

// CompletedColumns returns the number of fully tiled wall columns.
func (a *AgentState) CompletedColumns() int {
	cols := 0
	for c := 0; c < WallSize; c++ {
		full := true
		for r := 0; r < WallSize; r++ {
			if !a.Wall[r][c] {
				full = false
				break
			}
		}
		if full {
			cols++
		}
	}
	return cols
}

// CompletedColorSets returns the number of colors with all five wall cells tiled.
func (a *AgentState) CompletedColorSets() int {
	sets := 0
	for t := Tile(0); t < NumColors; t++ {
		full := true
		for r := 0; r < WallSize; r++ {
			if !a.Wall[r][WallColumn(r, t)] {
				full = false
				break
			}
		}
		if full {
			sets++
		}
	}
	return sets
}

// WallTileCount returns the number of tiled wall cells.
func (a *AgentState) WallTileCount() int {
	n := 0
	for r := 0; r < WallSize; r++ {
		for c := 0; c < WallSize; c++ {
			if a.Wall[r][c] {
				n++
			}
		}
	}
	return n
}

// FinalBonuses returns the game-end bonus points for an agent: 2 per
// completed row, 7 per completed column, 10 per completed color set.
func (a *AgentState) FinalBonuses() int {
	return 2*a.CompletedRows() + 7*a.CompletedColumns() + 10*a.CompletedColorSets()
}

// FinalScores resolves a copy of the state to the end of the current round
// and returns each agent's score including game-end bonuses. The receiver
// is not modified.
func (s *GameState) FinalScores() []int {
	resolved := s.Clone()
	gameOver := resolved.ResolveRound()

	scores := make([]int, len(resolved.Agents))
	for i := range resolved.Agents {
		scores[i] = resolved.Agents[i].Score
		if gameOver {
			scores[i] += resolved.Agents[i].FinalBonuses()
		}
	}
	return scores
}
