// FILE: internal/match/waiter_test.go
package match

import (
	"context"
	"testing"
	"time"
)

func TestNotifyBufferedBeforeReceive(t *testing.T) {
	w := NewWaitRegistry()
	defer w.Shutdown(time.Second)

	notify, _ := w.RegisterWait("m1", 0, context.Background())

	// The update lands before the caller blocks on the channel; the
	// buffer holds it so the wake-up is not lost.
	w.NotifyMatch("m1", MatchUpdate{MoveCount: 1, Phase: "opponent_thinking"})

	select {
	case u := <-notify:
		if u.MoveCount != 1 || u.Phase != "opponent_thinking" {
			t.Errorf("update = %+v, want move count 1", u)
		}
	case <-time.After(time.Second):
		t.Fatal("buffered notification lost")
	}
}

func TestNotifySkipsAlreadySeenCount(t *testing.T) {
	w := NewWaitRegistry()
	defer w.Shutdown(time.Second)

	notify, cancel := w.RegisterWait("m1", 2, context.Background())
	defer cancel()

	w.NotifyMatch("m1", MatchUpdate{MoveCount: 2})

	select {
	case u := <-notify:
		t.Fatalf("waiter woken by a ledger length it already saw: %+v", u)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnconditionalNotifyWakesWaiter(t *testing.T) {
	w := NewWaitRegistry()
	defer w.Shutdown(time.Second)

	notify, _ := w.RegisterWait("m1", 5, context.Background())

	w.NotifyMatch("m1", MatchUpdate{MoveCount: -1, Phase: "faulted"})

	select {
	case u := <-notify:
		if u.Phase != "faulted" {
			t.Errorf("update = %+v, want faulted phase", u)
		}
	case <-time.After(time.Second):
		t.Fatal("unconditional notification not delivered")
	}
}

func TestRemoveMatchWakesWaiters(t *testing.T) {
	w := NewWaitRegistry()
	defer w.Shutdown(time.Second)

	notify, _ := w.RegisterWait("m1", 0, context.Background())
	w.RemoveMatch("m1")

	select {
	case <-notify:
	case <-time.After(time.Second):
		t.Fatal("waiter not released on match removal")
	}
}
