// FILE: internal/rules/rules_test.go
package rules

import (
	"errors"
	"testing"

	"chesscoach/internal/core"
)

func TestParseMove(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Move
		wantErr bool
	}{
		{"simple", "e2e4", Move{From: "e2", To: "e4"}, false},
		{"promotion", "a7a8q", Move{From: "a7", To: "a8", Promotion: "q"}, false},
		{"uppercase normalized", "E2E4", Move{From: "e2", To: "e4"}, false},
		{"too short", "e2e", Move{}, true},
		{"too long", "e2e4qq", Move{}, true},
		{"bad file", "i2i4", Move{}, true},
		{"bad rank", "e9e4", Move{}, true},
		{"bad promotion piece", "a7a8k", Move{}, true},
		{"empty", "", Move{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMove(tt.input)
			if tt.wantErr {
				if !errors.Is(err, core.ErrIllegalMove) {
					t.Fatalf("ParseMove(%q) err = %v, want ErrIllegalMove", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMove(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMove(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBoardApply(t *testing.T) {
	b := New()
	if b.Turn() != core.ColorWhite {
		t.Fatalf("starting turn = %v, want white", b.Turn())
	}
	if n := len(b.LegalMoves()); n != 20 {
		t.Fatalf("starting legal moves = %d, want 20", n)
	}

	mv := Move{From: "e2", To: "e4"}
	san, err := b.SAN(mv)
	if err != nil {
		t.Fatalf("SAN: %v", err)
	}
	if san != "e4" {
		t.Errorf("SAN = %q, want %q", san, "e4")
	}
	if err := b.Apply(mv); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if b.Turn() != core.ColorBlack {
		t.Errorf("turn after e2e4 = %v, want black", b.Turn())
	}
}

func TestBoardApplyIllegal(t *testing.T) {
	b := New()
	before := b.FEN()

	err := b.Apply(Move{From: "e2", To: "e5"})
	if !errors.Is(err, core.ErrIllegalMove) {
		t.Fatalf("Apply(e2e5) err = %v, want ErrIllegalMove", err)
	}
	if b.FEN() != before {
		t.Error("board mutated by rejected move")
	}
}

func TestBoardPreviewFEN(t *testing.T) {
	b := New()
	before := b.FEN()

	after, err := b.PreviewFEN(Move{From: "e2", To: "e4"})
	if err != nil {
		t.Fatalf("PreviewFEN: %v", err)
	}
	if after == before {
		t.Error("preview FEN did not change")
	}
	if b.FEN() != before {
		t.Error("PreviewFEN mutated the board")
	}
}

func TestBoardOutcome(t *testing.T) {
	tests := []struct {
		name  string
		moves []string
		want  core.Result
	}{
		{
			name:  "fools mate",
			moves: []string{"f2f3", "e7e5", "g2g4", "d8h4"},
			want:  core.ResultBlackWins,
		},
		{
			name:  "scholars mate",
			moves: []string{"e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6", "h5f7"},
			want:  core.ResultWhiteWins,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			for _, text := range tt.moves {
				mv, err := ParseMove(text)
				if err != nil {
					t.Fatalf("ParseMove(%q): %v", text, err)
				}
				if err := b.Apply(mv); err != nil {
					t.Fatalf("Apply(%q): %v", text, err)
				}
			}
			result, over := b.Outcome()
			if !over {
				t.Fatal("game not over")
			}
			if result != tt.want {
				t.Errorf("result = %v, want %v", result, tt.want)
			}
		})
	}
}

func TestBoardOutcomeStalemate(t *testing.T) {
	b, err := FromFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	result, over := b.Outcome()
	if !over {
		t.Fatal("stalemate position reported as ongoing")
	}
	if result != core.ResultStalemate {
		t.Errorf("result = %v, want stalemate", result)
	}
}

func TestFromFENInvalid(t *testing.T) {
	if _, err := FromFEN("not a fen"); err == nil {
		t.Fatal("FromFEN accepted garbage")
	}
}
