// FILE: internal/match/scheduler.go
package match

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chesscoach/internal/core"
	"chesscoach/internal/engine"
	"chesscoach/internal/game"
	"chesscoach/internal/rules"
)

// Phase is the scheduler's turn-cycle state.
type Phase int

const (
	// PhaseAwaitingInput accepts a human move.
	PhaseAwaitingInput Phase = iota
	// PhaseScoring rates the human move in the background.
	PhaseScoring
	// PhaseOpponentThinking searches for the engine's reply.
	PhaseOpponentThinking
	// PhaseTerminal is the latched end of the match.
	PhaseTerminal
	// PhaseFaulted is terminal after an unrecoverable engine error.
	PhaseFaulted
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingInput:
		return "awaiting_input"
	case PhaseScoring:
		return "scoring"
	case PhaseOpponentThinking:
		return "opponent_thinking"
	case PhaseTerminal:
		return "terminal"
	case PhaseFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// EventKind identifies what a resolved completion did.
type EventKind int

const (
	// EventMoveRated applied the human move and appended its rating.
	EventMoveRated EventKind = iota
	// EventOpponentMoved applied and appended the engine's reply.
	EventOpponentMoved
	// EventFault latched the fault state.
	EventFault
)

// Event reports one resolved completion to the caller.
type Event struct {
	Kind   EventKind
	Record core.MoveRecord
	Phase  Phase
}

// Completion is the background worker's result, delivered over the
// scheduler's capacity-1 channel. Opaque to callers; pass it to
// ApplyReply on the owning goroutine.
type Completion struct {
	kind   EventKind
	record core.MoveRecord
	move   rules.Move
	err    error
}

// Scheduler drives one match through its turn cycle. State mutates
// only on the owning goroutine: PlayMove, ApplyReply and Restart must
// be externally serialized (the service wraps them in a per-match
// lock; the CLI is single-threaded). WaitReply alone is safe to call
// without the lock.
type Scheduler struct {
	state   *game.State
	history *game.History
	eval    *Evaluator
	gw      engine.Gateway // nil runs human-only
	preset  core.DifficultyPreset
	phase   Phase
	reply   chan Completion
	log     *zap.Logger

	startFEN string // empty means the standard starting position
	faultErr error
}

// NewScheduler builds a scheduler at the starting position. gw may be
// nil for human-only play; the evaluator then degrades every rating.
func NewScheduler(gw engine.Gateway, eval *Evaluator, preset core.DifficultyPreset, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		state:   game.New(),
		history: game.NewHistory(),
		eval:    eval,
		gw:      gw,
		preset:  preset,
		phase:   PhaseAwaitingInput,
		reply:   make(chan Completion, 1),
		log:     log,
	}
}

// NewSchedulerFromFEN builds a scheduler at a custom position. A
// terminal position latches immediately.
func NewSchedulerFromFEN(gw engine.Gateway, eval *Evaluator, preset core.DifficultyPreset, fen string, log *zap.Logger) (*Scheduler, error) {
	s := NewScheduler(gw, eval, preset, log)
	state, err := game.NewFromFEN(fen)
	if err != nil {
		return nil, err
	}
	s.state = state
	s.startFEN = fen
	if state.Over() {
		s.phase = PhaseTerminal
	}
	return s, nil
}

// Phase returns the current turn-cycle state.
func (s *Scheduler) Phase() Phase {
	return s.phase
}

// FEN returns the current position snapshot.
func (s *Scheduler) FEN() string {
	return s.state.FEN()
}

// Turn returns the side to move.
func (s *Scheduler) Turn() core.Color {
	return s.state.Turn()
}

// Result returns the latched verdict, ResultNone while in progress.
func (s *Scheduler) Result() core.Result {
	return s.state.Result()
}

// History returns the match ledger.
func (s *Scheduler) History() *game.History {
	return s.history
}

// Preset returns the active difficulty preset.
func (s *Scheduler) Preset() core.DifficultyPreset {
	return s.preset
}

// SetPreset changes difficulty. Refused mid-cycle so an in-flight
// search keeps the budget it started with.
func (s *Scheduler) SetPreset(p core.DifficultyPreset) error {
	if s.Pending() {
		return core.ErrTurnInProgress
	}
	s.preset = p
	return nil
}

// FaultErr returns the error that latched PhaseFaulted, if any.
func (s *Scheduler) FaultErr() error {
	return s.faultErr
}

// Pending reports whether a background request is outstanding.
func (s *Scheduler) Pending() bool {
	return s.phase == PhaseScoring || s.phase == PhaseOpponentThinking
}

// PlayMove accepts a human move: validates it against the current
// position and dispatches background scoring. The position is not
// touched here; the move is applied and appended together in
// ApplyReply, so the board and the ledger never disagree mid-cycle.
func (s *Scheduler) PlayMove(m rules.Move) error {
	switch s.phase {
	case PhaseFaulted:
		return fmt.Errorf("%w: %v", core.ErrSessionFault, s.faultErr)
	case PhaseTerminal:
		return fmt.Errorf("%w: %s", core.ErrGameOver, s.state.Result())
	case PhaseScoring, PhaseOpponentThinking:
		return core.ErrTurnInProgress
	}

	mover := s.state.Turn()
	beforeFEN := s.state.FEN()
	san, err := s.state.SAN(m)
	if err != nil {
		return err
	}
	afterFEN, err := s.state.PreviewFEN(m)
	if err != nil {
		return err
	}

	s.phase = PhaseScoring
	go s.scoreWorker(m, san, mover, beforeFEN, afterFEN)
	return nil
}

// scoreWorker rates the previewed move. Touches no scheduler state.
func (s *Scheduler) scoreWorker(m rules.Move, san string, mover core.Color, beforeFEN, afterFEN string) {
	rating, delta := s.eval.Score(context.Background(), beforeFEN, afterFEN, mover)
	s.reply <- Completion{
		kind: EventMoveRated,
		move: m,
		record: core.MoveRecord{
			Color:   mover,
			UCI:     m.UCI(),
			SAN:     san,
			Rating:  rating,
			DeltaCP: delta,
		},
	}
}

// opponentWorker searches for the engine's reply from fen and rates
// it. Runs entirely on scratch boards; touches no scheduler state.
func (s *Scheduler) opponentWorker(fen string, preset core.DifficultyPreset) {
	ctx, cancel := context.WithTimeout(context.Background(), preset.MoveTime*2+5*time.Second)
	defer cancel()

	text, err := s.gw.BestMove(ctx, fen, preset)
	if err != nil {
		s.reply <- Completion{kind: EventFault, err: err}
		return
	}

	mv, err := rules.ParseMove(text)
	if err != nil {
		s.reply <- Completion{kind: EventFault, err: fmt.Errorf("%w: engine move %q", core.ErrEngineFailure, text)}
		return
	}

	scratch, err := rules.FromFEN(fen)
	if err != nil {
		s.reply <- Completion{kind: EventFault, err: fmt.Errorf("%w: %v", core.ErrEngineFailure, err)}
		return
	}
	san, err := scratch.SAN(mv)
	if err != nil {
		s.reply <- Completion{kind: EventFault, err: fmt.Errorf("%w: engine move %q rejected", core.ErrEngineFailure, text)}
		return
	}
	afterFEN, err := scratch.PreviewFEN(mv)
	if err != nil {
		s.reply <- Completion{kind: EventFault, err: fmt.Errorf("%w: engine move %q rejected", core.ErrEngineFailure, text)}
		return
	}

	mover := scratch.Turn()
	rating, delta := s.eval.Score(ctx, fen, afterFEN, mover)
	s.reply <- Completion{
		kind: EventOpponentMoved,
		move: mv,
		record: core.MoveRecord{
			Color:   mover,
			UCI:     mv.UCI(),
			SAN:     san,
			Rating:  rating,
			DeltaCP: delta,
		},
	}
}

// WaitReply blocks until the outstanding request completes or ctx
// expires. Pure receive; safe without the scheduler's lock. In-flight
// engine work is never cancelled: a ctx expiry abandons the wait, the
// completion stays queued for the next WaitReply.
func (s *Scheduler) WaitReply(ctx context.Context) (Completion, error) {
	select {
	case c := <-s.reply:
		return c, nil
	case <-ctx.Done():
		return Completion{}, ctx.Err()
	}
}

// ApplyReply resolves a completion on the owning goroutine: applies
// the move, appends its rated record, advances the phase, and
// dispatches the opponent search when the cycle continues.
func (s *Scheduler) ApplyReply(c Completion) (Event, error) {
	switch c.kind {
	case EventFault:
		s.phase = PhaseFaulted
		s.faultErr = c.err
		s.log.Error("session faulted", zap.Error(c.err))
		return Event{Kind: EventFault, Phase: s.phase}, fmt.Errorf("%w: %v", core.ErrSessionFault, c.err)

	case EventMoveRated:
		// Legality was checked against this same position in PlayMove;
		// the position cannot have moved while the request was pending.
		if err := s.state.Apply(c.move); err != nil {
			s.phase = PhaseFaulted
			s.faultErr = err
			s.log.Error("session faulted", zap.Error(err))
			return Event{Kind: EventFault, Phase: s.phase}, fmt.Errorf("%w: %v", core.ErrSessionFault, err)
		}
		rec := s.history.Append(c.record)
		switch {
		case s.state.Over():
			s.phase = PhaseTerminal
		case s.gw == nil:
			s.phase = PhaseAwaitingInput
		default:
			s.phase = PhaseOpponentThinking
			go s.opponentWorker(s.state.FEN(), s.preset)
		}
		return Event{Kind: EventMoveRated, Record: rec, Phase: s.phase}, nil

	case EventOpponentMoved:
		if err := s.state.Apply(c.move); err != nil {
			s.phase = PhaseFaulted
			s.faultErr = fmt.Errorf("%w: engine move %s rejected: %v", core.ErrEngineFailure, c.move, err)
			s.log.Error("session faulted", zap.Error(s.faultErr))
			return Event{Kind: EventFault, Phase: s.phase}, fmt.Errorf("%w: %v", core.ErrSessionFault, s.faultErr)
		}
		rec := s.history.Append(c.record)
		if s.state.Over() {
			s.phase = PhaseTerminal
		} else {
			s.phase = PhaseAwaitingInput
		}
		return Event{Kind: EventOpponentMoved, Record: rec, Phase: s.phase}, nil
	}
	return Event{}, fmt.Errorf("unknown completion kind %d", c.kind)
}

// ResolveTurn drains the whole cycle after PlayMove: scoring, then the
// opponent search if one runs. Single-threaded callers only.
func (s *Scheduler) ResolveTurn(ctx context.Context) ([]Event, error) {
	var events []Event
	for s.Pending() {
		c, err := s.WaitReply(ctx)
		if err != nil {
			return events, err
		}
		ev, err := s.ApplyReply(c)
		events = append(events, ev)
		if err != nil {
			return events, err
		}
	}
	return events, nil
}

// Restart resets to the match's initial position and a fresh ledger.
// Refused while a request is outstanding; in-flight work is never
// cancelled. A faulted session may restart, keeping the same gateway.
func (s *Scheduler) Restart() error {
	if s.Pending() {
		return core.ErrTurnInProgress
	}
	if s.startFEN == "" {
		s.state = game.New()
	} else {
		state, err := game.NewFromFEN(s.startFEN)
		if err != nil {
			return err
		}
		s.state = state
	}
	s.history = game.NewHistory()
	s.phase = PhaseAwaitingInput
	if s.state.Over() {
		s.phase = PhaseTerminal
	}
	s.faultErr = nil
	return nil
}
