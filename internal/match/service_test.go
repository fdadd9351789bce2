// FILE: internal/match/service_test.go
package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"chesscoach/internal/core"
	"chesscoach/internal/engine"
)

func newTestService(gw *fakeGateway) *Service {
	var factory GatewayFactory
	if gw != nil {
		factory = func() (engine.Gateway, error) { return gw, nil }
	}
	return NewService(factory, nil, nil)
}

func waitForPhase(t *testing.T, s *Service, id, phase string) core.MatchResponse {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := s.Snapshot(context.Background(), id, -1)
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
		if resp.Phase == phase {
			return resp
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("match %s never reached phase %s", id, phase)
	return core.MatchResponse{}
}

func TestServiceFullTurn(t *testing.T) {
	gw := &fakeGateway{
		evals:     []int{10, -20, 20, -5},
		bestMoves: []string{"e7e5"},
	}
	s := newTestService(gw)
	defer s.Close()

	id, err := s.CreateMatch(3, "")
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}

	resp, err := s.PlayMove(id, "e2e4")
	if err != nil {
		t.Fatalf("PlayMove: %v", err)
	}
	if resp.Phase != "scoring" {
		t.Errorf("phase after submit = %q, want scoring", resp.Phase)
	}

	resp = waitForPhase(t, s, id, "awaiting_input")
	if len(resp.Moves) != 2 {
		t.Fatalf("moves = %d, want 2", len(resp.Moves))
	}
	if resp.Moves[0].Move != "e2e4" || resp.Moves[1].Move != "e7e5" {
		t.Errorf("ledger = %+v", resp.Moves)
	}
	if resp.Turn != "w" {
		t.Errorf("turn = %q, want w", resp.Turn)
	}
}

func TestServiceLongPollSeesOpponentMove(t *testing.T) {
	gw := &fakeGateway{
		evals:     []int{0, 0, 0, 0},
		bestMoves: []string{"e7e5"},
		bestDelay: 50 * time.Millisecond,
	}
	s := newTestService(gw)
	defer s.Close()

	id, _ := s.CreateMatch(1, "")
	if _, err := s.PlayMove(id, "e2e4"); err != nil {
		t.Fatalf("PlayMove: %v", err)
	}

	// Wait past the human ply; the poll should return once the
	// engine's reply lands.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := s.Snapshot(ctx, id, 1)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(resp.Moves) < 2 {
		t.Fatalf("long poll returned %d moves, want 2", len(resp.Moves))
	}
}

func TestServiceLongPollReturnsWhenLedgerAlreadyAhead(t *testing.T) {
	s := newTestService(nil)
	defer s.Close()

	id, _ := s.CreateMatch(3, "")
	if _, err := s.PlayMove(id, "e2e4"); err != nil {
		t.Fatalf("PlayMove: %v", err)
	}
	waitForPhase(t, s, id, "awaiting_input")

	// The ledger already moved past waitFor; the poll must answer from
	// the current state instead of parking until the registry timeout.
	start := time.Now()
	resp, err := s.Snapshot(context.Background(), id, 0)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("poll slept %v on an already-stale waitFor", elapsed)
	}
	if len(resp.Moves) != 1 {
		t.Errorf("moves = %d, want 1", len(resp.Moves))
	}
}

func TestServiceUnknownMatch(t *testing.T) {
	s := newTestService(nil)
	defer s.Close()

	if _, err := s.PlayMove("nope", "e2e4"); !errors.Is(err, core.ErrMatchNotFound) {
		t.Errorf("PlayMove err = %v, want ErrMatchNotFound", err)
	}
	if _, err := s.Snapshot(context.Background(), "nope", -1); !errors.Is(err, core.ErrMatchNotFound) {
		t.Errorf("Snapshot err = %v, want ErrMatchNotFound", err)
	}
	if err := s.DeleteMatch("nope"); !errors.Is(err, core.ErrMatchNotFound) {
		t.Errorf("DeleteMatch err = %v, want ErrMatchNotFound", err)
	}
}

func TestServiceCreateRejectsBadLevel(t *testing.T) {
	s := newTestService(nil)
	defer s.Close()

	if _, err := s.CreateMatch(0, ""); err == nil {
		t.Error("level 0 accepted")
	}
	if _, err := s.CreateMatch(8, ""); err == nil {
		t.Error("level 8 accepted")
	}
}

func TestServiceCreateFromFEN(t *testing.T) {
	s := newTestService(nil)
	defer s.Close()

	fen := "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"
	id, err := s.CreateMatch(2, fen)
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}

	resp, err := s.Snapshot(context.Background(), id, -1)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if resp.Phase != "terminal" {
		t.Errorf("phase = %q, want terminal (stalemate position)", resp.Phase)
	}
	if resp.Result != "stalemate" {
		t.Errorf("result = %q, want stalemate", resp.Result)
	}

	if _, err := s.CreateMatch(2, "not a fen"); err == nil {
		t.Error("bad FEN accepted")
	}
}

func TestServiceDeleteReleasesMatch(t *testing.T) {
	s := newTestService(nil)
	defer s.Close()

	id, _ := s.CreateMatch(2, "")
	if s.MatchCount() != 1 {
		t.Fatalf("count = %d, want 1", s.MatchCount())
	}
	if err := s.DeleteMatch(id); err != nil {
		t.Fatalf("DeleteMatch: %v", err)
	}
	if s.MatchCount() != 0 {
		t.Errorf("count = %d, want 0", s.MatchCount())
	}
	if _, err := s.Snapshot(context.Background(), id, -1); !errors.Is(err, core.ErrMatchNotFound) {
		t.Errorf("Snapshot after delete err = %v", err)
	}
}

func TestServiceRestartMidCycleRefused(t *testing.T) {
	gw := &fakeGateway{
		evals:     []int{0, 0, 0, 0},
		bestMoves: []string{"e7e5"},
		bestDelay: 200 * time.Millisecond,
	}
	s := newTestService(gw)
	defer s.Close()

	id, _ := s.CreateMatch(1, "")
	if _, err := s.PlayMove(id, "e2e4"); err != nil {
		t.Fatalf("PlayMove: %v", err)
	}

	// The cycle is still draining; restart and a second move are
	// both refused.
	if _, err := s.Restart(id); !errors.Is(err, core.ErrTurnInProgress) {
		t.Errorf("Restart err = %v, want ErrTurnInProgress", err)
	}
	if _, err := s.PlayMove(id, "d2d4"); !errors.Is(err, core.ErrTurnInProgress) {
		t.Errorf("PlayMove err = %v, want ErrTurnInProgress", err)
	}

	waitForPhase(t, s, id, "awaiting_input")
	if _, err := s.Restart(id); err != nil {
		t.Errorf("Restart after cycle: %v", err)
	}
}

func TestServiceHumanOnly(t *testing.T) {
	s := newTestService(nil)
	defer s.Close()

	id, _ := s.CreateMatch(3, "")
	if _, err := s.PlayMove(id, "e2e4"); err != nil {
		t.Fatalf("PlayMove: %v", err)
	}

	resp := waitForPhase(t, s, id, "awaiting_input")
	if len(resp.Moves) != 1 {
		t.Fatalf("moves = %d, want 1 (no engine reply)", len(resp.Moves))
	}
	if resp.Turn != "b" {
		t.Errorf("turn = %q, want b", resp.Turn)
	}
}
