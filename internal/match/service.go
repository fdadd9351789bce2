// FILE: internal/match/service.go
package match

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chesscoach/internal/core"
	"chesscoach/internal/engine"
	"chesscoach/internal/rules"
	"chesscoach/internal/storage"
)

// GatewayFactory opens one engine gateway per match. Nil means every
// match runs human-only.
type GatewayFactory func() (engine.Gateway, error)

// Service manages concurrent matches for the API server. Each match
// owns its scheduler and engine gateway; a per-match lock serializes
// scheduler mutation while completions resolve in the background.
type Service struct {
	mu      sync.RWMutex
	matches map[string]*session
	newGw   GatewayFactory
	store   *storage.Store // nil if persistence disabled
	waiters *WaitRegistry
	log     *zap.Logger
}

type session struct {
	mu    sync.Mutex
	id    string
	sched *Scheduler
	gw    engine.Gateway
}

// NewService creates a service with optional persistence.
func NewService(newGw GatewayFactory, store *storage.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		matches: make(map[string]*session),
		newGw:   newGw,
		store:   store,
		waiters: NewWaitRegistry(),
		log:     log,
	}
}

// CreateMatch opens a new match at the given difficulty level and
// returns its ID. A non-empty fen starts from a custom position.
func (s *Service) CreateMatch(level int, fen string) (string, error) {
	preset, err := core.PresetByLevel(level)
	if err != nil {
		return "", err
	}

	var gw engine.Gateway
	if s.newGw != nil {
		gw, err = s.newGw()
		if err != nil {
			return "", err
		}
	}
	eval := NewEvaluator(gw, DefaultEvalDepth, s.log)

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.generateID()
	log := s.log.With(zap.String("match", id))

	var sched *Scheduler
	if fen == "" {
		sched = NewScheduler(gw, eval, preset, log)
	} else {
		sched, err = NewSchedulerFromFEN(gw, eval, preset, fen, log)
		if err != nil {
			if gw != nil {
				_ = gw.Close()
			}
			return "", fmt.Errorf("invalid fen: %v", err)
		}
	}

	sess := &session{
		id:    id,
		sched: sched,
		gw:    gw,
	}
	s.matches[id] = sess

	if s.store != nil {
		s.store.RecordNewMatch(storage.MatchRecord{
			MatchID:      id,
			InitialFEN:   sess.sched.FEN(),
			Level:        level,
			StartTimeUTC: time.Now().UTC(),
		})
	}

	s.log.Info("match created", zap.String("match", id), zap.Int("level", level))
	return id, nil
}

// generateID returns a UUID not already in use. Caller holds s.mu.
func (s *Service) generateID() string {
	for {
		id := uuid.New().String()
		if _, exists := s.matches[id]; !exists {
			return id
		}
	}
}

func (s *Service) session(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.matches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrMatchNotFound, id)
	}
	return sess, nil
}

// PlayMove submits a human move. It returns as soon as the turn cycle
// is dispatched; clients observe scoring and the opponent reply via
// Snapshot long-polling.
func (s *Service) PlayMove(id, uciText string) (core.MatchResponse, error) {
	sess, err := s.session(id)
	if err != nil {
		return core.MatchResponse{}, err
	}

	mv, err := rules.ParseMove(uciText)
	if err != nil {
		return core.MatchResponse{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.sched.PlayMove(mv); err != nil {
		return core.MatchResponse{}, err
	}
	go s.resolve(sess)

	return s.snapshotLocked(sess), nil
}

// resolve drains one turn cycle: waits for each completion off-lock,
// applies it under the session lock, then archives and notifies.
func (s *Service) resolve(sess *session) {
	for {
		c, err := sess.sched.WaitReply(context.Background())
		if err != nil {
			return
		}

		sess.mu.Lock()
		ev, applyErr := sess.sched.ApplyReply(c)
		pending := sess.sched.Pending()
		moveCount := sess.sched.History().Len()
		fen := sess.sched.FEN()
		result := sess.sched.Result()
		phase := sess.sched.Phase()
		sess.mu.Unlock()

		if applyErr != nil {
			s.waiters.NotifyMatch(sess.id, MatchUpdate{MoveCount: -1, Phase: phase.String()})
			return
		}

		if s.store != nil {
			s.store.RecordMove(storage.MoveRecord{
				MatchID:      sess.id,
				Ply:          ev.Record.Ply,
				MoveUCI:      ev.Record.UCI,
				SAN:          ev.Record.SAN,
				PlayerColor:  ev.Record.Color.String(),
				Rating:       ev.Record.Rating.String(),
				DeltaCP:      ev.Record.DeltaCP,
				FENAfterMove: fen,
				MoveTimeUTC:  time.Now().UTC(),
			})
			if ev.Phase == PhaseTerminal {
				s.store.RecordResult(sess.id, result.String())
			}
		}

		s.waiters.NotifyMatch(sess.id, MatchUpdate{MoveCount: moveCount, Phase: phase.String()})
		if !pending {
			return
		}
	}
}

// Snapshot returns the match view. With waitFor >= 0 it long-polls
// until the ledger grows past waitFor, the phase changes, or the
// registry timeout elapses.
func (s *Service) Snapshot(ctx context.Context, id string, waitFor int) (core.MatchResponse, error) {
	sess, err := s.session(id)
	if err != nil {
		return core.MatchResponse{}, err
	}

	if waitFor >= 0 {
		// Register before reading the ledger: a notification landing
		// between the read and the wait is then buffered, not lost.
		notify, cancel := s.waiters.RegisterWait(id, waitFor, ctx)
		sess.mu.Lock()
		current := sess.sched.History().Len()
		sess.mu.Unlock()
		if current > waitFor {
			cancel()
		} else {
			select {
			case <-notify:
			case <-ctx.Done():
			}
		}
		// Deleted while waiting
		if _, err := s.session(id); err != nil {
			return core.MatchResponse{}, err
		}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.snapshotLocked(sess), nil
}

// snapshotLocked builds the response DTO. Caller holds sess.mu.
func (s *Service) snapshotLocked(sess *session) core.MatchResponse {
	sched := sess.sched
	records := sched.History().All()
	moves := make([]core.RatedMove, 0, len(records))
	for _, r := range records {
		moves = append(moves, core.RatedMove{
			Ply:     r.Ply,
			Color:   r.Color.String(),
			Move:    r.UCI,
			SAN:     r.SAN,
			Rating:  r.Rating.String(),
			DeltaCP: r.DeltaCP,
		})
	}

	resp := core.MatchResponse{
		MatchID: sess.id,
		FEN:     sched.FEN(),
		Turn:    sched.Turn().String(),
		Phase:   sched.Phase().String(),
		Result:  sched.Result().String(),
		Level:   sched.Preset().Level,
		Moves:   moves,
	}
	if sched.Phase() == PhaseTerminal || sched.Phase() == PhaseFaulted {
		sum := sched.History().Summary()
		resp.Summary = &sum
	}
	return resp
}

// Restart resets a match to the starting position. Refused while a
// turn cycle is outstanding.
func (s *Service) Restart(id string) (core.MatchResponse, error) {
	sess, err := s.session(id)
	if err != nil {
		return core.MatchResponse{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.sched.Restart(); err != nil {
		return core.MatchResponse{}, err
	}
	if s.store != nil {
		s.store.ClearMatchMoves(sess.id)
	}
	s.waiters.NotifyMatch(sess.id, MatchUpdate{MoveCount: -1, Phase: sess.sched.Phase().String()})
	return s.snapshotLocked(sess), nil
}

// SetLevel changes a match's difficulty between turn cycles.
func (s *Service) SetLevel(id string, level int) (core.MatchResponse, error) {
	sess, err := s.session(id)
	if err != nil {
		return core.MatchResponse{}, err
	}
	preset, err := core.PresetByLevel(level)
	if err != nil {
		return core.MatchResponse{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.sched.SetPreset(preset); err != nil {
		return core.MatchResponse{}, err
	}
	return s.snapshotLocked(sess), nil
}

// DeleteMatch removes a match and releases its engine process.
func (s *Service) DeleteMatch(id string) error {
	s.mu.Lock()
	sess, ok := s.matches[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", core.ErrMatchNotFound, id)
	}
	delete(s.matches, id)
	s.mu.Unlock()

	s.waiters.RemoveMatch(id)
	if sess.gw != nil {
		if err := sess.gw.Close(); err != nil {
			s.log.Warn("engine close failed", zap.String("match", id), zap.Error(err))
		}
	}
	s.log.Info("match deleted", zap.String("match", id))
	return nil
}

// MatchCount returns the number of live matches.
func (s *Service) MatchCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

// StorageHealth returns the storage component status.
func (s *Service) StorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// Close shuts down every match, the wait registry, and storage.
func (s *Service) Close() error {
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.matches))
	for _, sess := range s.matches {
		sessions = append(sessions, sess)
	}
	s.matches = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		if sess.gw != nil {
			_ = sess.gw.Close()
		}
	}
	_ = s.waiters.Shutdown(5 * time.Second)

	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
