// FILE: internal/cli/cli_test.go
package cli

import (
	"strings"
	"testing"

	"chesscoach/internal/board"
	"chesscoach/internal/core"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		input    string
		wantType CommandType
		wantArgs []string
	}{
		{"new", CmdNew, nil},
		{"level 5", CmdLevel, []string{"5"}},
		{"history", CmdHistory, nil},
		{"board", CmdBoard, nil},
		{"color brown", CmdColor, []string{"brown"}},
		{"help", CmdHelp, nil},
		{"?", CmdHelp, nil},
		{"quit", CmdQuit, nil},
		{"exit", CmdQuit, nil},
		{"e2e4", CmdMove, []string{"e2e4"}},
		{"a7a8q", CmdMove, []string{"a7a8q"}},
		{"", CmdNone, nil},
	}

	for _, tc := range cases {
		cmd := ParseCommand(tc.input)
		if cmd.Type != tc.wantType {
			t.Errorf("ParseCommand(%q).Type = %d, want %d", tc.input, cmd.Type, tc.wantType)
			continue
		}
		if len(cmd.Args) != len(tc.wantArgs) {
			t.Errorf("ParseCommand(%q).Args = %v, want %v", tc.input, cmd.Args, tc.wantArgs)
			continue
		}
		for i := range tc.wantArgs {
			if cmd.Args[i] != tc.wantArgs[i] {
				t.Errorf("ParseCommand(%q).Args = %v, want %v", tc.input, cmd.Args, tc.wantArgs)
			}
		}
	}
}

func TestGetCommandEOFQuits(t *testing.T) {
	var out strings.Builder
	c := New(strings.NewReader(""), &out)

	cmd, err := c.GetCommand()
	if err != nil {
		t.Fatalf("GetCommand: %v", err)
	}
	if cmd.Type != CmdQuit {
		t.Errorf("type on EOF = %d, want CmdQuit", cmd.Type)
	}
}

func TestFormatRatedMove(t *testing.T) {
	cases := []struct {
		rec  core.MoveRecord
		want string
	}{
		{core.MoveRecord{Ply: 1, Color: core.ColorWhite, SAN: "e4", Rating: core.RatingGood, DeltaCP: 12}, "1. e4 (good, +12)"},
		{core.MoveRecord{Ply: 2, Color: core.ColorBlack, SAN: "e5", Rating: core.RatingInaccuracy, DeltaCP: -40}, "1... e5?! (inaccuracy, -40)"},
		{core.MoveRecord{Ply: 5, Color: core.ColorWhite, SAN: "Nf3", Rating: core.RatingGreat, DeltaCP: 105}, "3. Nf3! (great, +105)"},
		{core.MoveRecord{Ply: 6, Color: core.ColorBlack, SAN: "Qh4", Rating: core.RatingBlunder, DeltaCP: -320}, "3... Qh4?? (blunder, -320)"},
	}

	for _, tc := range cases {
		if got := FormatRatedMove(tc.rec); got != tc.want {
			t.Errorf("FormatRatedMove(ply %d) = %q, want %q", tc.rec.Ply, got, tc.want)
		}
	}
}

func TestSetThemeRejectsUnknown(t *testing.T) {
	c := New(strings.NewReader(""), &strings.Builder{})
	if err := c.SetTheme("sepia"); err == nil {
		t.Error("unknown theme accepted")
	}
	if err := c.SetTheme(ThemeGreen); err != nil {
		t.Errorf("SetTheme(green): %v", err)
	}
}

func TestDisplayBoardPlainTheme(t *testing.T) {
	var out strings.Builder
	c := New(strings.NewReader(""), &out)

	b, err := board.ParseFEN(board.StartingFEN)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	c.DisplayBoard(b, "")

	got := out.String()
	if !strings.Contains(got, "a b c d e f g h") {
		t.Error("missing file legend")
	}
	if !strings.Contains(got, "R N B Q K B N R") {
		t.Error("missing white back rank")
	}
	if strings.Contains(got, "\033[") {
		t.Error("plain theme emitted escape codes")
	}
}

func TestDisplayBoardHighlightsLastMove(t *testing.T) {
	var out strings.Builder
	c := New(strings.NewReader(""), &out)
	if err := c.SetTheme(ThemeBrown); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}

	b, _ := board.ParseFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	c.DisplayBoard(b, "e2e4")

	// Gold background marks the source and target squares
	if n := strings.Count(out.String(), "\033[48;5;178m"); n != 2 {
		t.Errorf("highlighted squares = %d, want 2", n)
	}
}
