// FILE: internal/game/game_test.go
package game

import (
	"errors"
	"testing"

	"chesscoach/internal/core"
	"chesscoach/internal/rules"
)

func mustMove(t *testing.T, text string) rules.Move {
	t.Helper()
	mv, err := rules.ParseMove(text)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", text, err)
	}
	return mv
}

func TestStateApplyFlipsTurn(t *testing.T) {
	s := New()
	if s.Turn() != core.ColorWhite {
		t.Fatalf("turn = %v, want white", s.Turn())
	}
	if err := s.Apply(mustMove(t, "e2e4")); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if s.Turn() != core.ColorBlack {
		t.Errorf("turn = %v, want black", s.Turn())
	}
	if s.Over() {
		t.Error("game over after one move")
	}
}

func TestStateApplyIllegalNoMutation(t *testing.T) {
	s := New()
	before := s.FEN()
	err := s.Apply(mustMove(t, "e2e5"))
	if !errors.Is(err, core.ErrIllegalMove) {
		t.Fatalf("err = %v, want ErrIllegalMove", err)
	}
	if s.FEN() != before {
		t.Error("state mutated by rejected move")
	}
	if s.Turn() != core.ColorWhite {
		t.Error("turn flipped by rejected move")
	}
}

func TestStateTerminalLatch(t *testing.T) {
	s := New()
	for _, text := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		if err := s.Apply(mustMove(t, text)); err != nil {
			t.Fatalf("Apply(%q): %v", text, err)
		}
	}
	if !s.Over() {
		t.Fatal("mate not latched")
	}
	if s.Result() != core.ResultBlackWins {
		t.Errorf("result = %v, want black wins", s.Result())
	}

	err := s.Apply(mustMove(t, "a2a3"))
	if !errors.Is(err, core.ErrGameOver) {
		t.Fatalf("post-terminal Apply err = %v, want ErrGameOver", err)
	}
	if s.Result() != core.ResultBlackWins {
		t.Error("latched result changed")
	}
}

func TestNewFromFENLatchesImmediately(t *testing.T) {
	s, err := NewFromFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatalf("NewFromFEN: %v", err)
	}
	if !s.Over() {
		t.Fatal("stalemate FEN not latched at construction")
	}
	if s.Result() != core.ResultStalemate {
		t.Errorf("result = %v, want stalemate", s.Result())
	}
}

func TestHistoryAppendAssignsPlies(t *testing.T) {
	h := NewHistory()
	r1 := h.Append(core.MoveRecord{Color: core.ColorWhite, UCI: "e2e4", Rating: core.RatingGood})
	r2 := h.Append(core.MoveRecord{Color: core.ColorBlack, UCI: "e7e5", Rating: core.RatingGreat})

	if r1.Ply != 1 || r2.Ply != 2 {
		t.Errorf("plies = %d, %d, want 1, 2", r1.Ply, r2.Ply)
	}
	if h.Len() != 2 {
		t.Errorf("Len = %d, want 2", h.Len())
	}
}

func TestHistoryAllReturnsCopy(t *testing.T) {
	h := NewHistory()
	h.Append(core.MoveRecord{UCI: "e2e4"})

	all := h.All()
	all[0].UCI = "mutated"

	if got, _ := h.Last(); got.UCI != "e2e4" {
		t.Error("All() exposed internal storage")
	}
}

func TestHistoryRecent(t *testing.T) {
	h := NewHistory()
	for _, uci := range []string{"e2e4", "e7e5", "g1f3"} {
		h.Append(core.MoveRecord{UCI: uci})
	}

	recent := h.Recent(2)
	if len(recent) != 2 || recent[0].UCI != "e7e5" || recent[1].UCI != "g1f3" {
		t.Errorf("Recent(2) = %+v", recent)
	}
	if got := h.Recent(10); len(got) != 3 {
		t.Errorf("Recent(10) len = %d, want 3", len(got))
	}
	if got := h.Recent(0); got != nil {
		t.Errorf("Recent(0) = %+v, want nil", got)
	}
}

func TestHistorySummary(t *testing.T) {
	h := NewHistory()
	for _, r := range []core.Rating{
		core.RatingGood, core.RatingGood, core.RatingBlunder, core.RatingBrilliant,
	} {
		h.Append(core.MoveRecord{Rating: r})
	}

	sum := h.Summary()
	if sum.Good != 2 || sum.Blunder != 1 || sum.Brilliant != 1 || sum.Mistake != 0 {
		t.Errorf("Summary = %+v", sum)
	}
}
