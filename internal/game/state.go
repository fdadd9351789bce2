// FILE: internal/game/state.go
// Package game holds per-match state: the current position with its
// terminal latch, and the append-only ledger of rated moves.
package game

import (
	"fmt"

	"chesscoach/internal/core"
	"chesscoach/internal/rules"
)

// State is the authoritative position of one match. Once the terminal
// verdict latches, every further Apply fails. Not safe for concurrent
// use; the scheduler serializes mutation.
type State struct {
	board  *rules.Board
	result core.Result
	over   bool
}

// New returns match state at the standard starting position.
func New() *State {
	return &State{board: rules.New()}
}

// NewFromFEN returns match state at an arbitrary position. The
// terminal latch is evaluated immediately, so a mated FEN starts over.
func NewFromFEN(fen string) (*State, error) {
	b, err := rules.FromFEN(fen)
	if err != nil {
		return nil, err
	}
	s := &State{board: b}
	s.latch()
	return s, nil
}

// Apply validates and plays a move. ErrGameOver after the verdict is
// latched, ErrIllegalMove if the rules reject it; neither mutates.
func (s *State) Apply(m rules.Move) error {
	if s.over {
		return fmt.Errorf("%w: %s", core.ErrGameOver, s.result)
	}
	if err := s.board.Apply(m); err != nil {
		return err
	}
	s.latch()
	return nil
}

// latch records the terminal verdict exactly once.
func (s *State) latch() {
	if s.over {
		return
	}
	if result, over := s.board.Outcome(); over {
		s.result = result
		s.over = true
	}
}

// FEN returns the current position snapshot. The string is immutable,
// so this is the frozen "before" input for scoring.
func (s *State) FEN() string {
	return s.board.FEN()
}

// Turn returns the side to move.
func (s *State) Turn() core.Color {
	return s.board.Turn()
}

// Over reports whether the terminal verdict has latched.
func (s *State) Over() bool {
	return s.over
}

// Result returns the latched verdict, or ResultNone while in progress.
func (s *State) Result() core.Result {
	return s.result
}

// LegalMoves lists the playable moves in the current position.
func (s *State) LegalMoves() []rules.Move {
	return s.board.LegalMoves()
}

// SAN renders the move against the current position, pre-apply.
func (s *State) SAN(m rules.Move) (string, error) {
	return s.board.SAN(m)
}

// PreviewFEN returns the position after the move without playing it.
func (s *State) PreviewFEN(m rules.Move) (string, error) {
	return s.board.PreviewFEN(m)
}
