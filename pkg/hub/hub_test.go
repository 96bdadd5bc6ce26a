package hub

import (
	"context"
	"testing"
	"time"
)

func TestBroadcastNeverBlocks(t *testing.T) {
	h := New("test")

	// No Run loop draining: the queue fills and further messages drop
	// instead of blocking the producer.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			h.BroadcastBinary([]byte{byte(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked with a full queue")
	}
}

func TestBroadcastJSONError(t *testing.T) {
	h := New("test")
	if err := h.BroadcastJSON(make(chan int)); err == nil {
		t.Error("expected marshal error for channel value")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	h := New("test")
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	h.BroadcastBinary([]byte("frame"))
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on context cancel")
	}

	if got := h.ClientCount(); got != 0 {
		t.Errorf("ClientCount = %d after shutdown, want 0", got)
	}
}
