// Package tilecode implements position encoding for Azul game states.
//
// It provides two encodings: a compact binary PositionKey used for fast
// equality and cache indexing, and a human-readable position ID string
// (FEN-like) used for CLI input, HTTP requests, and external cache keys.
package tilecode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/azulengine/pkg/azul"
)

// KeyWords is the number of 32-bit words in a position key.
const KeyWords = 16

// PositionKey is a compact binary encoding of a position. Keys of states
// with identical contents compare equal; the packing is exact, not a hash.
type PositionKey struct {
	Data [KeyWords]uint32
}

// EqualKeys returns true if two position keys are identical.
func EqualKeys(a, b PositionKey) bool {
	return a.Data == b.Data
}

// bitWriter packs small fields into a PositionKey, LSB first.
type bitWriter struct {
	key PositionKey
	pos int
}

func (w *bitWriter) write(value uint32, bits int) {
	for bits > 0 {
		word := w.pos / 32
		off := w.pos % 32
		take := 32 - off
		if take > bits {
			take = bits
		}
		w.key.Data[word] |= (value & ((1 << take) - 1)) << off
		value >>= take
		bits -= take
		w.pos += take
	}
}

func clamp(v, max int) uint32 {
	if v < 0 {
		return 0
	}
	if v > max {
		return uint32(max)
	}
	return uint32(v)
}

// MakePositionKey creates a compact key from a game state.
func MakePositionKey(s *azul.GameState) PositionKey {
	w := &bitWriter{}
	w.write(uint32(len(s.Agents)), 3)
	w.write(uint32(len(s.Factories)), 4)
	for _, f := range s.Factories {
		for t := 0; t < azul.NumColors; t++ {
			w.write(uint32(f[t]), 3)
		}
	}
	for t := 0; t < azul.NumColors; t++ {
		w.write(uint32(s.Centre[t]), 6)
	}
	for i := range s.Agents {
		a := &s.Agents[i]
		for r := 0; r < azul.WallSize; r++ {
			w.write(uint32(a.LineCount[r]), 3)
			w.write(uint32(a.LineColor[r]+1), 3)
		}
		for r := 0; r < azul.WallSize; r++ {
			for c := 0; c < azul.WallSize; c++ {
				if a.Wall[r][c] {
					w.write(1, 1)
				} else {
					w.write(0, 1)
				}
			}
		}
		w.write(clamp(len(a.Floor), 15), 4)
		w.write(clamp(a.Score, 511), 9)
	}
	w.write(uint32(s.Current), 3)
	w.write(clamp(s.Round, 31), 5)
	return w.key
}

// Position ID string format, FEN-like:
//
//	<factories> <centre> <agents> <turn>
//
// factories: comma-separated piles, each pile five count characters in
// blue, yellow, red, black, white order; counts zero to nine are digits
// and ten to twenty are the letters 'A' to 'K', since the centre can
// accumulate more than nine tiles of one color. centre: one pile. agents are
// separated by '|'; each agent is lines/wall/floor/score where lines is
// five comma-separated fields ('-' or color letter plus count, e.g. "y2"),
// wall is 25 '0'/'1' characters row-major, floor is a pile, and score is
// decimal. turn is the player to move.
//
// Example (2 players, fresh round):
//
//	22000,01120,00211,11011,00002 00000 -,-,-,-,-/0000000000000000000000000/00000/0|-,-,-,-,-/0000000000000000000000000/00000/0 0

const colorLetters = "byrkw"

var errBadPosition = errors.New("malformed position ID")

// EncodePosition returns the position ID string for a state.
func EncodePosition(s *azul.GameState) string {
	var b strings.Builder

	for i, f := range s.Factories {
		if i > 0 {
			b.WriteByte(',')
		}
		writePile(&b, f)
	}
	b.WriteByte(' ')
	writePile(&b, s.Centre)
	b.WriteByte(' ')

	for i := range s.Agents {
		if i > 0 {
			b.WriteByte('|')
		}
		writeAgent(&b, &s.Agents[i])
	}
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(s.Current))

	return b.String()
}

func writePile(b *strings.Builder, p azul.Pile) {
	for t := 0; t < azul.NumColors; t++ {
		if p[t] > 9 {
			b.WriteByte('A' + p[t] - 10)
		} else {
			b.WriteByte('0' + p[t])
		}
	}
}

func writeAgent(b *strings.Builder, a *azul.AgentState) {
	for r := 0; r < azul.WallSize; r++ {
		if r > 0 {
			b.WriteByte(',')
		}
		if a.LineCount[r] == 0 {
			b.WriteByte('-')
		} else {
			b.WriteByte(colorLetters[a.LineColor[r]])
			b.WriteByte('0' + a.LineCount[r])
		}
	}
	b.WriteByte('/')
	for r := 0; r < azul.WallSize; r++ {
		for c := 0; c < azul.WallSize; c++ {
			if a.Wall[r][c] {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
	}
	b.WriteByte('/')
	var floor azul.Pile
	for _, t := range a.Floor {
		floor[t]++
	}
	writePile(b, floor)
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(a.Score))
}

// DecodePosition parses a position ID string into a game state.
func DecodePosition(id string) (*azul.GameState, error) {
	parts := strings.Fields(strings.TrimSpace(id))
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: expected 4 sections, got %d", errBadPosition, len(parts))
	}

	factoryParts := strings.Split(parts[0], ",")
	agentParts := strings.Split(parts[2], "|")
	if len(agentParts) < 2 || len(agentParts) > 4 {
		return nil, fmt.Errorf("%w: %d agents", errBadPosition, len(agentParts))
	}

	s := &azul.GameState{
		Factories: make([]azul.Pile, len(factoryParts)),
		Agents:    make([]azul.AgentState, len(agentParts)),
	}

	for i, fp := range factoryParts {
		pile, err := parsePile(fp)
		if err != nil {
			return nil, fmt.Errorf("factory %d: %w", i, err)
		}
		s.Factories[i] = pile
	}

	centre, err := parsePile(parts[1])
	if err != nil {
		return nil, fmt.Errorf("centre: %w", err)
	}
	s.Centre = centre

	for i, ap := range agentParts {
		agent, err := parseAgent(ap)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", i, err)
		}
		s.Agents[i] = agent
	}

	turn, err := strconv.Atoi(parts[3])
	if err != nil || turn < 0 || turn >= len(s.Agents) {
		return nil, fmt.Errorf("%w: bad turn %q", errBadPosition, parts[3])
	}
	s.Current = turn

	return s, nil
}

func parsePile(field string) (azul.Pile, error) {
	var pile azul.Pile
	if len(field) != azul.NumColors {
		return pile, fmt.Errorf("%w: pile %q", errBadPosition, field)
	}
	for t := 0; t < azul.NumColors; t++ {
		switch c := field[t]; {
		case c >= '0' && c <= '9':
			pile[t] = c - '0'
		case c >= 'A' && c <= 'K':
			pile[t] = c - 'A' + 10
		default:
			return pile, fmt.Errorf("%w: pile %q", errBadPosition, field)
		}
	}
	return pile, nil
}

func parseAgent(field string) (azul.AgentState, error) {
	agent := azul.NewAgentState()

	sections := strings.Split(field, "/")
	if len(sections) != 4 {
		return agent, fmt.Errorf("%w: agent %q", errBadPosition, field)
	}

	lines := strings.Split(sections[0], ",")
	if len(lines) != azul.WallSize {
		return agent, fmt.Errorf("%w: lines %q", errBadPosition, sections[0])
	}
	for r, lf := range lines {
		if lf == "-" {
			continue
		}
		if len(lf) != 2 {
			return agent, fmt.Errorf("%w: line %q", errBadPosition, lf)
		}
		color := strings.IndexByte(colorLetters, lf[0])
		count := int(lf[1] - '0')
		if color < 0 || count < 1 || count > azul.LineCapacity(r) {
			return agent, fmt.Errorf("%w: line %q on row %d", errBadPosition, lf, r)
		}
		agent.LineColor[r] = azul.Tile(color)
		agent.LineCount[r] = uint8(count)
	}

	wall := sections[1]
	if len(wall) != azul.WallSize*azul.WallSize {
		return agent, fmt.Errorf("%w: wall %q", errBadPosition, wall)
	}
	for i := 0; i < len(wall); i++ {
		switch wall[i] {
		case '1':
			agent.Wall[i/azul.WallSize][i%azul.WallSize] = true
		case '0':
		default:
			return agent, fmt.Errorf("%w: wall %q", errBadPosition, wall)
		}
	}

	floor, err := parsePile(sections[2])
	if err != nil {
		return agent, err
	}
	for t := azul.Tile(0); t < azul.NumColors; t++ {
		for i := uint8(0); i < floor[t]; i++ {
			agent.Floor = append(agent.Floor, t)
		}
	}

	score, err := strconv.Atoi(sections[3])
	if err != nil || score < 0 {
		return agent, fmt.Errorf("%w: score %q", errBadPosition, sections[3])
	}
	agent.Score = score

	return agent, nil
}
