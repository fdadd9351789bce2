// FILE: internal/board/board_test.go
package board

import (
	"strings"
	"testing"

	"chesscoach/internal/core"
)

func TestParseFENStartingPosition(t *testing.T) {
	b, err := ParseFEN(StartingFEN)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	if b.Turn() != core.ColorWhite {
		t.Errorf("turn = %v, want w", b.Turn())
	}
	if b.Fullmove() != 1 {
		t.Errorf("fullmove = %d, want 1", b.Fullmove())
	}

	checks := map[string]byte{
		"a1": 'R', "e1": 'K', "d1": 'Q', "h1": 'R',
		"a2": 'P', "e4": 0,
		"a8": 'r', "e8": 'k', "d8": 'q',
		"b7": 'p',
	}
	for square, want := range checks {
		if got := b.PieceAt(square); got != want {
			t.Errorf("PieceAt(%s) = %q, want %q", square, got, want)
		}
	}
}

func TestParseFENPartialFields(t *testing.T) {
	// Board and turn alone are enough for display
	b, err := ParseFEN("8/8/8/8/4k3/8/4K3/4R3 b")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if b.Turn() != core.ColorBlack {
		t.Errorf("turn = %v, want b", b.Turn())
	}
	if b.PieceAt("e1") != 'R' || b.PieceAt("e4") != 'k' {
		t.Error("pieces misplaced")
	}
}

func TestParseFENRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR", // missing turn
		"8/8/8/8/8/8/8 w",          // seven ranks
		"9/8/8/8/8/8/8/8 w",        // rank too wide
		"ppppppppp/8/8/8/8/8/8/8 w", // nine pieces
		"8/8/8/8/8/8/8/8 x",        // bad turn
	}
	for _, fen := range cases {
		if _, err := ParseFEN(fen); err == nil {
			t.Errorf("ParseFEN(%q) accepted", fen)
		}
	}
}

func TestPieceAtMalformedSquare(t *testing.T) {
	b, _ := ParseFEN(StartingFEN)
	for _, square := range []string{"", "a", "i1", "a9", "a0", "e44"} {
		if got := b.PieceAt(square); got != 0 {
			t.Errorf("PieceAt(%q) = %q, want 0", square, got)
		}
	}
}

func TestToASCII(t *testing.T) {
	b, _ := ParseFEN(StartingFEN)
	out := b.ToASCII()

	lines := strings.Split(out, "\n")
	if len(lines) != 10 {
		t.Fatalf("lines = %d, want 10", len(lines))
	}
	// Rank 8 printed first, white pieces at the bottom
	if !strings.Contains(lines[1], "r n b q k b n r") {
		t.Errorf("rank 8 = %q", lines[1])
	}
	if !strings.Contains(lines[8], "R N B Q K B N R") {
		t.Errorf("rank 1 = %q", lines[8])
	}
}
