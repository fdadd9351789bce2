// FILE: internal/engine/engine_test.go
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"chesscoach/internal/core"
)

// newTestEngine wires a gateway to a scripted transcript instead of a
// real subprocess. Sent commands land in the returned builder.
func newTestEngine(outputLines []string) (*UCI, *strings.Builder) {
	pr, pw := io.Pipe()
	go func() {
		for _, line := range outputLines {
			_, _ = fmt.Fprintln(pw, line)
		}
		_ = pw.Close()
	}()

	var sb strings.Builder
	u := &UCI{
		in:    bufio.NewWriter(&sb),
		out:   bufio.NewScanner(pr),
		log:   zap.NewNop(),
		skill: -1,
	}
	return u, &sb
}

func TestEvaluateParsesCentipawns(t *testing.T) {
	u, sb := newTestEngine([]string{
		"info depth 8 score cp -14 pv e7e5",
		"info depth 12 score cp 23 pv e2e4 e7e5",
		"bestmove e2e4",
	})

	score, err := u.Evaluate(context.Background(), "test-fen", 12)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if score != 23 {
		t.Errorf("score = %d, want 23 (last reported)", score)
	}

	sent := sb.String()
	if !strings.Contains(sent, "position fen test-fen") {
		t.Errorf("position command not sent: %q", sent)
	}
	if !strings.Contains(sent, "go depth 12") {
		t.Errorf("depth command not sent: %q", sent)
	}
}

func TestEvaluateMateScores(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
	}{
		{"mate for mover", "info depth 20 score mate 3", 99997},
		{"mate against mover", "info depth 20 score mate -2", -99998},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, _ := newTestEngine([]string{tt.line, "bestmove e2e4"})
			score, err := u.Evaluate(context.Background(), "fen", 20)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if score != tt.want {
				t.Errorf("score = %d, want %d", score, tt.want)
			}
		})
	}
}

func TestEvaluateNoScore(t *testing.T) {
	u, _ := newTestEngine([]string{"bestmove e2e4"})
	if _, err := u.Evaluate(context.Background(), "fen", 10); !errors.Is(err, core.ErrEngineFailure) {
		t.Fatalf("err = %v, want ErrEngineFailure", err)
	}
}

func TestEvaluateEngineClosed(t *testing.T) {
	u, _ := newTestEngine(nil)
	if _, err := u.Evaluate(context.Background(), "fen", 10); !errors.Is(err, core.ErrEngineFailure) {
		t.Fatalf("err = %v, want ErrEngineFailure", err)
	}
}

func TestBestMoveUsesPresetBudget(t *testing.T) {
	u, sb := newTestEngine([]string{
		"info depth 6 score cp 40 pv d2d4",
		"bestmove d2d4 ponder g8f6",
	})

	preset := core.DifficultyPreset{Level: 3, MoveTime: 400 * time.Millisecond, Depth: 6, Skill: 7}
	mv, err := u.BestMove(context.Background(), "start-fen", preset)
	if err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	if mv != "d2d4" {
		t.Errorf("move = %q, want d2d4", mv)
	}

	sent := sb.String()
	if !strings.Contains(sent, "setoption name Skill Level value 7") {
		t.Errorf("skill option not sent: %q", sent)
	}
	if !strings.Contains(sent, "go movetime 400") {
		t.Errorf("movetime command not sent: %q", sent)
	}
}

func TestBestMoveSkillSentOnce(t *testing.T) {
	u, sb := newTestEngine([]string{
		"bestmove e2e4",
		"info score cp 1",
		"bestmove d2d4",
	})
	preset := core.DifficultyPreset{MoveTime: 100 * time.Millisecond, Skill: 5}

	if _, err := u.BestMove(context.Background(), "fen-1", preset); err != nil {
		t.Fatalf("first BestMove: %v", err)
	}
	if _, err := u.BestMove(context.Background(), "fen-2", preset); err != nil {
		t.Fatalf("second BestMove: %v", err)
	}
	if n := strings.Count(sb.String(), "setoption name Skill Level"); n != 1 {
		t.Errorf("skill option sent %d times, want 1", n)
	}
}

func TestBestMoveNone(t *testing.T) {
	u, _ := newTestEngine([]string{"bestmove (none)"})
	preset := core.DifficultyPreset{MoveTime: 100 * time.Millisecond}
	if _, err := u.BestMove(context.Background(), "mate-fen", preset); !errors.Is(err, core.ErrEngineFailure) {
		t.Fatalf("err = %v, want ErrEngineFailure", err)
	}
}

func TestSearchTimeout(t *testing.T) {
	// Pipe with no writer end closing: scanner blocks until "stop"
	// handling gives up.
	pr, _ := io.Pipe()
	var sb strings.Builder
	u := &UCI{in: bufio.NewWriter(&sb), out: bufio.NewScanner(pr), log: zap.NewNop(), skill: -1}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := u.Evaluate(ctx, "fen", 10)
	if !errors.Is(err, core.ErrEngineTimeout) {
		t.Fatalf("err = %v, want ErrEngineTimeout", err)
	}
	if !strings.Contains(sb.String(), "stop") {
		t.Errorf("stop not sent on timeout: %q", sb.String())
	}
}

func TestLateReplyDrainedBeforeNextSearch(t *testing.T) {
	pr, pw := io.Pipe()
	var sb strings.Builder
	u := &UCI{in: bufio.NewWriter(&sb), out: bufio.NewScanner(pr), log: zap.NewNop(), skill: -1}

	// First search times out with the engine silent; its reader stays
	// parked on the pipe.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := u.Evaluate(ctx, "fen-1", 10); !errors.Is(err, core.ErrEngineTimeout) {
		t.Fatalf("err = %v, want ErrEngineTimeout", err)
	}

	// The engine answers the stop late, then completes a fresh search.
	// The late bestmove must go to the old reader, not leak into the
	// next request's results.
	go func() {
		_, _ = fmt.Fprintln(pw, "bestmove a2a3")
		_, _ = fmt.Fprintln(pw, "info depth 10 score cp 42")
		_, _ = fmt.Fprintln(pw, "bestmove e2e4")
		_ = pw.Close()
	}()

	score, err := u.Evaluate(context.Background(), "fen-2", 10)
	if err != nil {
		t.Fatalf("Evaluate after timeout: %v", err)
	}
	if score != 42 {
		t.Errorf("score = %d, want 42 (late reply leaked)", score)
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		line   string
		want   int
		wantOK bool
	}{
		{"info depth 10 seldepth 14 score cp 35 nodes 12000", 35, true},
		{"info depth 10 score cp -120 pv e7e5", -120, true},
		{"info depth 22 score mate 1", 99999, true},
		{"info depth 22 score mate -10", -99990, true},
		{"info depth 10 nodes 500", 0, false},
		{"info string something", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseScore(tt.line)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("parseScore(%q) = (%d, %v), want (%d, %v)", tt.line, got, ok, tt.want, tt.wantOK)
		}
	}
}
