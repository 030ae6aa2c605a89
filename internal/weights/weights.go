// Package weights provides evaluator weight profiles.
// A profile assigns a weight to each heuristic feature the evaluator
// computes; the default profile is hand-tuned, and alternatives can be
// loaded from a JSON file for experimentation.
package weights

import (
	"encoding/json"
	"fmt"
	"os"
)

// Profile holds one weight per evaluator feature. The order must match
// the evaluator's feature vector.
type Profile struct {
	Name string `json:"name"`

	// Score is the weight on the agent's current score.
	Score float64 `json:"score"`
	// LinePotential weights partially filled pattern lines by their
	// proximity to completion.
	LinePotential float64 `json:"line_potential"`
	// FloorPenalty weights the estimated penalty for floor tiles.
	FloorPenalty float64 `json:"floor_penalty"`
	// RowBonus, ColumnBonus and SetBonus weight progress toward the
	// game-end bonuses.
	RowBonus    float64 `json:"row_bonus"`
	ColumnBonus float64 `json:"column_bonus"`
	SetBonus    float64 `json:"set_bonus"`
}

// Vector returns the profile as a slice in feature order.
func (p *Profile) Vector() []float64 {
	return []float64{
		p.Score,
		p.LinePotential,
		p.FloorPenalty,
		p.RowBonus,
		p.ColumnBonus,
		p.SetBonus,
	}
}

// Default returns the built-in weight profile.
func Default() *Profile {
	return &Profile{
		Name:          "default",
		Score:         1.0,
		LinePotential: 0.9,
		FloorPenalty:  1.0,
		RowBonus:      0.4,
		ColumnBonus:   0.7,
		SetBonus:      0.6,
	}
}

// LoadJSON loads a weight profile from a JSON file.
func LoadJSON(filename string) (*Profile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open weights file: %w", err)
	}

	p := Default()
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse weights file: %w", err)
	}
	return p, nil
}
