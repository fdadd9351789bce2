// FILE: internal/core/core.go
package core

type Color byte

const (
	ColorWhite Color = 'w'
	ColorBlack Color = 'b'
)

func (c Color) String() string {
	if c == ColorWhite {
		return "w"
	}
	return "b"
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// Result is the terminal verdict of a match. ResultNone means the
// match is still in progress.
type Result int

const (
	ResultNone Result = iota
	ResultWhiteWins
	ResultBlackWins
	ResultStalemate
	ResultDraw
)

func (r Result) String() string {
	switch r {
	case ResultWhiteWins:
		return "white wins"
	case ResultBlackWins:
		return "black wins"
	case ResultStalemate:
		return "stalemate"
	case ResultDraw:
		return "draw"
	default:
		return "ongoing"
	}
}

// MoveRecord is one entry of the match ledger. Records are appended
// once and never edited.
type MoveRecord struct {
	Ply     int    `json:"ply"`
	Color   Color  `json:"-"`
	UCI     string `json:"uci"`
	SAN     string `json:"san"`
	Rating  Rating `json:"rating"`
	DeltaCP int    `json:"deltaCp"`
}
