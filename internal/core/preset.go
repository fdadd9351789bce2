// FILE: internal/core/preset.go
package core

import (
	"fmt"
	"time"
)

// DifficultyPreset configures the engine's search budget for one
// opponent level. Skill maps onto the engine's "Skill Level" option.
type DifficultyPreset struct {
	Level    int
	Name     string
	MoveTime time.Duration
	Depth    int
	Skill    int
}

// Presets is the static difficulty table, ordered weakest to
// strongest, addressed by level 1-7.
var Presets = [7]DifficultyPreset{
	{Level: 1, Name: "Beginner", MoveTime: 100 * time.Millisecond, Depth: 2, Skill: 1},
	{Level: 2, Name: "Easy", MoveTime: 200 * time.Millisecond, Depth: 4, Skill: 4},
	{Level: 3, Name: "Casual", MoveTime: 400 * time.Millisecond, Depth: 6, Skill: 7},
	{Level: 4, Name: "Intermediate", MoveTime: 800 * time.Millisecond, Depth: 8, Skill: 10},
	{Level: 5, Name: "Advanced", MoveTime: 1500 * time.Millisecond, Depth: 12, Skill: 14},
	{Level: 6, Name: "Expert", MoveTime: 2500 * time.Millisecond, Depth: 16, Skill: 17},
	{Level: 7, Name: "Master", MoveTime: 4 * time.Second, Depth: 20, Skill: 20},
}

// PresetByLevel resolves a 1-based difficulty level.
func PresetByLevel(level int) (DifficultyPreset, error) {
	if level < 1 || level > len(Presets) {
		return DifficultyPreset{}, fmt.Errorf("difficulty level out of range: %d (valid: 1-%d)", level, len(Presets))
	}
	return Presets[level-1], nil
}

// DefaultPreset is used when no level was selected.
func DefaultPreset() DifficultyPreset {
	return Presets[2]
}
