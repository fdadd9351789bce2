// FILE: internal/core/rating.go
package core

// Rating grades a single move, ordered best to worst.
type Rating int

const (
	RatingBrilliant Rating = iota
	RatingGreat
	RatingGood
	RatingInaccuracy
	RatingMistake
	RatingBlunder
)

func (r Rating) String() string {
	switch r {
	case RatingBrilliant:
		return "brilliant"
	case RatingGreat:
		return "great"
	case RatingGood:
		return "good"
	case RatingInaccuracy:
		return "inaccuracy"
	case RatingMistake:
		return "mistake"
	case RatingBlunder:
		return "blunder"
	default:
		return "unknown"
	}
}

// Classification thresholds in centipawns, from the mover's point of
// view. Boundaries are inclusive: exactly +300 is brilliant, exactly
// -50 an inaccuracy, exactly -150 a mistake.
const (
	BrilliantThreshold  = 300
	GreatThreshold      = 100
	GoodThreshold       = 0
	InaccuracyThreshold = -50
	MistakeThreshold    = -150
)

// ClassifyDelta maps a mover-relative centipawn delta to a Rating.
// Every integer delta maps to exactly one rating.
func ClassifyDelta(deltaCP int) Rating {
	switch {
	case deltaCP >= BrilliantThreshold:
		return RatingBrilliant
	case deltaCP >= GreatThreshold:
		return RatingGreat
	case deltaCP >= GoodThreshold:
		return RatingGood
	case deltaCP >= InaccuracyThreshold:
		return RatingInaccuracy
	case deltaCP >= MistakeThreshold:
		return RatingMistake
	default:
		return RatingBlunder
	}
}
