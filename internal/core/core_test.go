// FILE: internal/core/core_test.go
package core

import "testing"

func TestClassifyDelta(t *testing.T) {
	tests := []struct {
		delta int
		want  Rating
	}{
		{500, RatingBrilliant},
		{300, RatingBrilliant}, // boundary inclusive
		{299, RatingGreat},
		{100, RatingGreat},
		{99, RatingGood},
		{1, RatingGood},
		{0, RatingGood},
		{-1, RatingInaccuracy},
		{-50, RatingInaccuracy}, // boundary inclusive
		{-51, RatingMistake},
		{-150, RatingMistake}, // boundary inclusive
		{-151, RatingBlunder},
		{-1000, RatingBlunder},
	}

	for _, tt := range tests {
		if got := ClassifyDelta(tt.delta); got != tt.want {
			t.Errorf("ClassifyDelta(%d) = %v, want %v", tt.delta, got, tt.want)
		}
	}
}

func TestPresetTableTotality(t *testing.T) {
	for level := 1; level <= len(Presets); level++ {
		p, err := PresetByLevel(level)
		if err != nil {
			t.Fatalf("PresetByLevel(%d): %v", level, err)
		}
		if p.Level != level {
			t.Errorf("preset %d carries level %d", level, p.Level)
		}
		if p.MoveTime <= 0 || p.Depth <= 0 || p.Name == "" {
			t.Errorf("preset %d incomplete: %+v", level, p)
		}
		if level > 1 && p.MoveTime <= Presets[level-2].MoveTime {
			t.Errorf("preset %d move time not increasing", level)
		}
	}

	for _, bad := range []int{0, -1, 8, 100} {
		if _, err := PresetByLevel(bad); err == nil {
			t.Errorf("PresetByLevel(%d) accepted", bad)
		}
	}
}

func TestOppositeColor(t *testing.T) {
	if OppositeColor(ColorWhite) != ColorBlack || OppositeColor(ColorBlack) != ColorWhite {
		t.Error("OppositeColor broken")
	}
}

func TestRatingString(t *testing.T) {
	ratings := []Rating{RatingBrilliant, RatingGreat, RatingGood, RatingInaccuracy, RatingMistake, RatingBlunder}
	seen := make(map[string]bool)
	for _, r := range ratings {
		s := r.String()
		if s == "" || s == "unknown" || seen[s] {
			t.Errorf("Rating(%d).String() = %q", r, s)
		}
		seen[s] = true
	}
}
