// Package azul provides the game data model for the Azul analysis engine.
package azul

// Tile is one of the five tile colors.
type Tile int8

const (
	Blue Tile = iota
	Yellow
	Red
	Black
	White
)

// NumColors is the number of tile colors in the game.
const NumColors = 5

// WallSize is the side length of the wall grid and the number of pattern lines.
const WallSize = 5

// TilesPerColor is the number of tiles of each color in the bag.
const TilesPerColor = 20

// FactoryCapacity is the number of tiles drawn onto each factory display.
const FactoryCapacity = 4

// NoLine marks a move that sends every taken tile to the floor.
const NoLine = -1

// colorNames is indexed by Tile.
var colorNames = [NumColors]string{"blue", "yellow", "red", "black", "white"}

// String returns the lowercase color name, or "?" for an invalid tile.
func (t Tile) String() string {
	if t < 0 || t >= NumColors {
		return "?"
	}
	return colorNames[t]
}

// Pile is a multiset of tiles, one count per color. It represents the
// contents of a factory display or the shared centre pool.
type Pile [NumColors]uint8

// Total returns the number of tiles in the pile.
func (p Pile) Total() int {
	n := 0
	for _, c := range p {
		n += int(c)
	}
	return n
}

// Empty reports whether the pile holds no tiles.
func (p Pile) Empty() bool {
	return p.Total() == 0
}

// AgentState is one player's board: pattern lines, wall, floor line, score.
type AgentState struct {
	// LineCount[r] is the number of tiles staged on pattern line r (0..r+1).
	LineCount [WallSize]uint8
	// LineColor[r] is the color staged on pattern line r, or -1 when empty.
	LineColor [WallSize]Tile
	// Wall[r][c] reports whether the wall cell at row r, column c is tiled.
	Wall [WallSize][WallSize]bool
	// Floor holds overflow tiles in the order they arrived.
	Floor []Tile
	Score int
}

// GameState is a full snapshot of a position. The engine clones it before
// any simulated mutation, so concurrent search branches never alias arrays.
type GameState struct {
	Factories []Pile
	Centre    Pile
	Agents    []AgentState
	// Current is the player to move.
	Current int
	Round   int
}

// NumPlayers returns the number of players in the game.
func (s *GameState) NumPlayers() int {
	return len(s.Agents)
}

// Clone returns a fully independent deep copy of the state.
func (s *GameState) Clone() *GameState {
	c := &GameState{
		Factories: make([]Pile, len(s.Factories)),
		Centre:    s.Centre,
		Agents:    make([]AgentState, len(s.Agents)),
		Current:   s.Current,
		Round:     s.Round,
	}
	copy(c.Factories, s.Factories)
	for i := range s.Agents {
		a := s.Agents[i]
		a.Floor = append([]Tile(nil), s.Agents[i].Floor...)
		c.Agents[i] = a
	}
	return c
}

// ActionKind distinguishes the two tile sources a move can draw from.
type ActionKind uint8

const (
	FactoryTake ActionKind = iota
	CentreTake
)

// Move is a single draft action: take every tile of one color from a source
// and distribute it to a pattern line and/or the floor.
type Move struct {
	Kind    ActionKind
	Source  int // factory index for FactoryTake, ignored for CentreTake
	Color   Tile
	Line    int // destination pattern line, or NoLine for floor only
	ToLine  uint8
	ToFloor uint8
}

// ID returns the packed integer identity of the move. The packing is a
// bijection over the move fields, so two moves are equal iff their IDs are.
// ToFloor gets five bits: a floor dump can carry every tile of one color,
// up to TilesPerColor.
func (m Move) ID() uint32 {
	id := uint32(m.Kind)
	id = id<<4 | uint32(m.Source&0xF)
	id = id<<3 | uint32(m.Color)
	id = id<<3 | uint32(m.Line+1)
	id = id<<3 | uint32(m.ToLine)
	id = id<<5 | uint32(m.ToFloor&0x1F)
	return id
}

// Equal reports whether two moves are field-for-field identical.
func (m Move) Equal(o Move) bool {
	return m.ID() == o.ID()
}

// wallColumns[r][t] is the wall column that color t occupies on row r.
var wallColumns [WallSize][NumColors]int

func init() {
	for r := 0; r < WallSize; r++ {
		for t := 0; t < NumColors; t++ {
			wallColumns[r][t] = (r + t) % WallSize
		}
	}
}

// WallColumn returns the wall column for the given row and color.
func WallColumn(row int, color Tile) int {
	return wallColumns[row][color]
}

// LineCapacity returns the capacity of pattern line r (r+1 tiles).
func LineCapacity(row int) int {
	return row + 1
}

// NewAgentState returns an empty player board.
func NewAgentState() AgentState {
	a := AgentState{}
	for r := range a.LineColor {
		a.LineColor[r] = -1
	}
	return a
}

// factoryCount returns the number of factory displays for a player count.
func factoryCount(players int) int {
	return 2*players + 1
}

// NewGameState returns an empty position for the given player count with
// unfilled factories. Factories are filled by the caller or test fixture;
// the engine never draws from the bag itself.
func NewGameState(players int) *GameState {
	s := &GameState{
		Factories: make([]Pile, factoryCount(players)),
		Agents:    make([]AgentState, players),
	}
	for i := range s.Agents {
		s.Agents[i] = NewAgentState()
	}
	return s
}

// TilesRemaining returns the total tile count across factories and centre.
func (s *GameState) TilesRemaining() int {
	n := s.Centre.Total()
	for _, f := range s.Factories {
		n += f.Total()
	}
	return n
}

// RoundOver reports whether every tile source is empty.
func (s *GameState) RoundOver() bool {
	return s.TilesRemaining() == 0
}
