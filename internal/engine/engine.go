// FILE: internal/engine/engine.go
// Package engine wraps an external UCI search process behind the
// Gateway interface: position scoring and best-move search. The
// engine binary is the only process this package manages.
package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"chesscoach/internal/core"
)

// Mate scores are reported as "mate N"; they saturate near the band
// edge so deltas stay meaningful: mate in 1 beats mate in 5.
const mateScore = 100000

const (
	handshakeTimeout = 5 * time.Second

	// stopGrace is how long an aborted search may take to flush its
	// bestmove after "stop".
	stopGrace = 500 * time.Millisecond

	// staleReaderTimeout bounds how long a new request waits for a
	// reader abandoned by an earlier timeout to finish.
	staleReaderTimeout = 2 * time.Second
)

// Gateway is the search-engine surface the match layer depends on.
// Implementations must be safe for serialized use; callers never issue
// two requests concurrently.
type Gateway interface {
	// Evaluate scores the position in centipawns, relative to the
	// side to move.
	Evaluate(ctx context.Context, fen string, depth int) (int, error)
	// BestMove searches under the preset's budget and returns the
	// chosen move in UCI text.
	BestMove(ctx context.Context, fen string, preset core.DifficultyPreset) (string, error)
	Close() error
}

// UCI runs a UCI engine subprocess and speaks the protocol over its
// stdin/stdout. One request at a time; the match layer serializes.
type UCI struct {
	cmd   *exec.Cmd
	in    *bufio.Writer
	out   *bufio.Scanner
	log   *zap.Logger
	mu    sync.Mutex
	skill int

	// stale is the done channel of a reader goroutine abandoned by a
	// timeout, still parked on the output pipe. Guarded by mu.
	stale chan error

	closeOnce sync.Once
	closeErr  error
}

// New starts the engine binary at path and completes the UCI
// handshake. Failure to start or handshake is ErrEngineUnavailable.
func New(path string, log *zap.Logger) (*UCI, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrEngineUnavailable, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrEngineUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start %s: %v", core.ErrEngineUnavailable, path, err)
	}

	u := &UCI{
		cmd:   cmd,
		in:    bufio.NewWriter(stdin),
		out:   bufio.NewScanner(stdout),
		log:   log,
		skill: -1,
	}

	if err := u.handshake(); err != nil {
		u.Close()
		return nil, fmt.Errorf("%w: %v", core.ErrEngineUnavailable, err)
	}

	log.Info("engine started", zap.String("path", path))
	return u, nil
}

func (u *UCI) handshake() error {
	if err := u.send("uci"); err != nil {
		return err
	}
	if err := u.waitFor("uciok", handshakeTimeout); err != nil {
		return err
	}
	if err := u.send("isready"); err != nil {
		return err
	}
	return u.waitFor("readyok", handshakeTimeout)
}

// waitFor scans output until the exact line appears.
func (u *UCI) waitFor(line string, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		for u.out.Scan() {
			if u.out.Text() == line {
				done <- nil
				return
			}
		}
		done <- fmt.Errorf("engine closed waiting for %q", line)
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for %q", line)
	}
}

// Evaluate scores fen in centipawns relative to the side to move.
// Mate announcements map to ±(100000−n).
func (u *UCI) Evaluate(ctx context.Context, fen string, depth int) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.awaitIdle(); err != nil {
		return 0, err
	}
	if depth <= 0 {
		depth = 12
	}
	if err := u.send(fmt.Sprintf("position fen %s", fen)); err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrEngineFailure, err)
	}
	if err := u.send(fmt.Sprintf("go depth %d", depth)); err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrEngineFailure, err)
	}

	res, err := u.readSearch(ctx)
	if err != nil {
		return 0, err
	}
	if !res.scored {
		return 0, fmt.Errorf("%w: no score before bestmove", core.ErrEngineFailure)
	}
	return res.score, nil
}

// BestMove searches fen under the preset's movetime budget, with the
// engine's skill option set for the preset.
func (u *UCI) BestMove(ctx context.Context, fen string, preset core.DifficultyPreset) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.awaitIdle(); err != nil {
		return "", err
	}
	if preset.Skill != u.skill {
		if err := u.send(fmt.Sprintf("setoption name Skill Level value %d", clampSkill(preset.Skill))); err != nil {
			return "", fmt.Errorf("%w: %v", core.ErrEngineFailure, err)
		}
		u.skill = preset.Skill
	}

	if err := u.send(fmt.Sprintf("position fen %s", fen)); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrEngineFailure, err)
	}
	if err := u.send(fmt.Sprintf("go movetime %d", preset.MoveTime.Milliseconds())); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrEngineFailure, err)
	}

	res, err := u.readSearch(ctx)
	if err != nil {
		return "", err
	}
	if res.bestMove == "" || res.bestMove == "(none)" {
		return "", fmt.Errorf("%w: engine returned no move", core.ErrEngineFailure)
	}
	return res.bestMove, nil
}

type searchResult struct {
	bestMove string
	score    int
	scored   bool
}

// readSearch consumes engine output until bestmove, keeping the last
// reported score. Context expiry sends "stop" and waits briefly for
// the aborted search to flush.
func (u *UCI) readSearch(ctx context.Context) (searchResult, error) {
	var res searchResult

	done := make(chan error, 1)
	go func() {
		for u.out.Scan() {
			line := u.out.Text()
			if strings.HasPrefix(line, "info ") {
				if score, ok := parseScore(line); ok {
					res.score = score
					res.scored = true
				}
				continue
			}
			if strings.HasPrefix(line, "bestmove") {
				fields := strings.Fields(line)
				if len(fields) >= 2 {
					res.bestMove = fields[1]
				}
				done <- nil
				return
			}
		}
		done <- fmt.Errorf("engine closed unexpectedly")
	}()

	select {
	case err := <-done:
		if err != nil {
			return res, fmt.Errorf("%w: %v", core.ErrEngineFailure, err)
		}
		return res, nil
	case <-ctx.Done():
		_ = u.send("stop")
		select {
		case <-done:
		case <-time.After(stopGrace):
			// The reader is still parked on the pipe. Remember it so
			// the next request waits it out instead of scanning the
			// same output alongside it.
			u.stale = done
		}
		return searchResult{}, fmt.Errorf("%w: %v", core.ErrEngineTimeout, ctx.Err())
	}
}

// awaitIdle waits for a reader abandoned by a previous timeout, so two
// scanners never consume engine output at once. Caller holds mu.
func (u *UCI) awaitIdle() error {
	if u.stale == nil {
		return nil
	}
	select {
	case <-u.stale:
		u.stale = nil
		return nil
	case <-time.After(staleReaderTimeout):
		return fmt.Errorf("%w: previous search never completed", core.ErrEngineFailure)
	}
}

// parseScore extracts "score cp N" or "score mate N" from an info line.
func parseScore(line string) (int, bool) {
	i := strings.Index(line, " score ")
	if i == -1 {
		return 0, false
	}
	rest := line[i+1:]
	var n int
	if _, err := fmt.Sscanf(rest, "score cp %d", &n); err == nil {
		return n, true
	}
	if _, err := fmt.Sscanf(rest, "score mate %d", &n); err == nil {
		if n > 0 {
			return mateScore - n, true
		}
		return -mateScore - n, true
	}
	return 0, false
}

func clampSkill(skill int) int {
	if skill < 0 {
		return 0
	}
	if skill > 20 {
		return 20
	}
	return skill
}

// Close quits the engine process. Idempotent; safe on a partially
// constructed gateway.
func (u *UCI) Close() error {
	u.closeOnce.Do(func() {
		_ = u.send("quit")

		if u.cmd == nil {
			return
		}
		done := make(chan error, 1)
		go func() {
			done <- u.cmd.Wait()
		}()
		select {
		case <-done:
		case <-time.After(1 * time.Second):
			u.closeErr = u.cmd.Process.Kill()
		}
		u.log.Info("engine stopped")
	})
	return u.closeErr
}

func (u *UCI) send(cmd string) error {
	if _, err := fmt.Fprintln(u.in, cmd); err != nil {
		return err
	}
	return u.in.Flush()
}

var _ Gateway = (*UCI)(nil)
var _ io.Closer = (*UCI)(nil)
