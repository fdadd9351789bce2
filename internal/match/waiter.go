// FILE: internal/match/waiter.go
package match

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// WaitTimeout bounds one long-poll; the client re-polls after it.
	WaitTimeout = 25 * time.Second

	waitChannelBuffer = 1
)

// MatchUpdate is the payload delivered to long-poll waiters. MoveCount
// is the ledger length when the cycle advanced, or -1 for wake-ups
// without a new ledger entry (fault, restart, timeout). Phase is the
// turn-cycle phase at notification time, empty on a plain timeout.
type MatchUpdate struct {
	MoveCount int
	Phase     string
}

// WaitRegistry tracks long-polling clients per match. A notification
// wakes every waiter whose last known ledger length is stale.
type WaitRegistry struct {
	mu       sync.RWMutex
	waiters  map[string][]*waitRequest
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// waitRequest is one parked client.
type waitRequest struct {
	moveCount int // ledger length the client has already seen
	notify    chan MatchUpdate
	timer     *time.Timer
	matchID   string
}

func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string][]*waitRequest),
		shutdown: make(chan struct{}),
	}
}

// RegisterWait parks a client until the match's ledger grows past
// moveCount, the phase changes, or WaitTimeout elapses. The channel is
// buffered, so an update landing before the caller blocks is kept, not
// lost. The cancel func releases the waiter without consuming an
// update; calling it after delivery is harmless.
func (w *WaitRegistry) RegisterWait(matchID string, moveCount int, ctx context.Context) (<-chan MatchUpdate, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	req := &waitRequest{
		moveCount: moveCount,
		notify:    make(chan MatchUpdate, waitChannelBuffer),
		matchID:   matchID,
	}
	req.timer = time.AfterFunc(WaitTimeout, func() {
		w.deliver(req, MatchUpdate{MoveCount: -1})
	})
	w.waiters[matchID] = append(w.waiters[matchID], req)

	// Cleanup on client disconnect or delivery.
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
			w.removeWaiter(req)
		case <-req.notify:
			w.removeWaiter(req)
		case <-w.shutdown:
			w.removeWaiter(req)
			w.deliver(req, MatchUpdate{MoveCount: -1})
		}
	}()

	cancel := func() {
		w.removeWaiter(req)
		// Release the cleanup goroutine.
		w.deliver(req, MatchUpdate{MoveCount: moveCount})
	}
	return req.notify, cancel
}

// NotifyMatch wakes the clients waiting on a match. An update with
// MoveCount -1 wakes unconditionally; otherwise waiters that already
// saw this ledger length stay parked.
func (w *WaitRegistry) NotifyMatch(matchID string, u MatchUpdate) {
	w.mu.RLock()
	waitList := w.waiters[matchID]
	w.mu.RUnlock()

	for _, req := range waitList {
		if u.MoveCount == -1 || req.moveCount != u.MoveCount {
			w.deliver(req, u)
		}
	}
}

// RemoveMatch wakes and drops all waiters for a match, called before
// the match is deleted.
func (w *WaitRegistry) RemoveMatch(matchID string) {
	w.mu.Lock()
	waitList := w.waiters[matchID]
	delete(w.waiters, matchID)
	w.mu.Unlock()

	for _, req := range waitList {
		w.deliver(req, MatchUpdate{MoveCount: -1})
	}
}

// Shutdown wakes every cleanup goroutine and waits for them to drain.
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	close(w.shutdown)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out")
	}
}

// deliver hands the update to one waiter without blocking. A full
// buffer means an earlier update is already waiting; the client will
// re-snapshot and see the newer state anyway.
func (w *WaitRegistry) deliver(req *waitRequest, u MatchUpdate) {
	select {
	case req.notify <- u:
	default:
	}
}

func (w *WaitRegistry) removeWaiter(req *waitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	waitList := w.waiters[req.matchID]
	for i, waiter := range waitList {
		if waiter == req {
			w.waiters[req.matchID] = append(waitList[:i], waitList[i+1:]...)
			break
		}
	}
	if len(w.waiters[req.matchID]) == 0 {
		delete(w.waiters, req.matchID)
	}

	req.timer.Stop()
}
