// FILE: internal/board/board.go
// Package board renders FEN snapshots for the terminal. Display only;
// legality lives in the rules package.
package board

import (
	"fmt"
	"strings"

	"chesscoach/internal/core"
)

const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Board is a parsed position grid, indexed a1=0 .. h8=63.
type Board struct {
	squares  [64]byte
	turn     core.Color
	fullmove int
}

// index maps a square name ("e4") to its grid slot, -1 if malformed.
func index(square string) int {
	if len(square) != 2 || square[0] < 'a' || square[0] > 'h' || square[1] < '1' || square[1] > '8' {
		return -1
	}
	return int(square[1]-'1')*8 + int(square[0]-'a')
}

// ParseFEN parses the board and turn fields of a FEN string.
func ParseFEN(fen string) (*Board, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid FEN: expected at least 2 fields, got %d", len(parts))
	}

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("invalid FEN: expected 8 ranks")
	}

	b := &Board{fullmove: 1}
	for r, rank := range ranks {
		// FEN lists rank 8 first
		row := 7 - r
		file := 0
		for _, ch := range rank {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if file >= 8 {
				return nil, fmt.Errorf("invalid FEN: too many pieces in rank %d", row+1)
			}
			b.squares[row*8+file] = byte(ch)
			file++
		}
		if file != 8 {
			return nil, fmt.Errorf("invalid FEN: rank %d has %d files", row+1, file)
		}
	}

	switch parts[1] {
	case "w":
		b.turn = core.ColorWhite
	case "b":
		b.turn = core.ColorBlack
	default:
		return nil, fmt.Errorf("invalid FEN: turn must be 'w' or 'b'")
	}

	if len(parts) == 6 {
		fmt.Sscanf(parts[5], "%d", &b.fullmove)
	}

	return b, nil
}

// Turn returns the side to move.
func (b *Board) Turn() core.Color {
	return b.turn
}

// Fullmove returns the FEN fullmove counter.
func (b *Board) Fullmove() int {
	return b.fullmove
}

// PieceAt returns the FEN piece letter on the square, 0 if empty or
// the square name is malformed.
func (b *Board) PieceAt(square string) byte {
	i := index(square)
	if i < 0 {
		return 0
	}
	return b.squares[i]
}

// ToASCII renders the plain-text board, white at the bottom.
func (b *Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")
	for row := 7; row >= 0; row-- {
		fmt.Fprintf(&sb, "%d ", row+1)
		for file := 0; file < 8; file++ {
			piece := b.squares[row*8+file]
			if piece == 0 {
				sb.WriteString(". ")
			} else {
				fmt.Fprintf(&sb, "%c ", piece)
			}
		}
		fmt.Fprintf(&sb, " %d\n", row+1)
	}
	sb.WriteString("  a b c d e f g h")
	return sb.String()
}
