package announce

import (
	"sync/atomic"
	"testing"
)

func TestTrackerWaitsForSpawned(t *testing.T) {
	tr := NewTracker()
	var done int32

	for i := 0; i < 5; i++ {
		if err := tr.Spawn(func() {
			atomic.AddInt32(&done, 1)
		}); err != nil {
			t.Fatalf("Spawn: %v", err)
		}
	}

	tr.Close()
	tr.Wait()

	if got := atomic.LoadInt32(&done); got != 5 {
		t.Fatalf("expected 5 completed tasks, got %d", got)
	}
}

func TestTrackerRefusesAfterClose(t *testing.T) {
	tr := NewTracker()
	tr.Close()

	if err := tr.Spawn(func() {}); err != ErrClosed {
		t.Fatalf("Spawn after Close = %v, want ErrClosed", err)
	}
}
