package video

import (
	"testing"
	"time"
)

func TestCloseIsIdempotent(t *testing.T) {
	s := NewSource("ws://localhost:1", "nobody")

	// Never connected: Close must tolerate nil peer and socket, and a
	// second call must be a no-op.
	s.Close()
	s.Close()

	if !s.closed.Load() {
		t.Error("source should report closed")
	}
}

func TestFrameBeforeAnyDecode(t *testing.T) {
	s := NewSource("ws://localhost:1", "nobody")
	if _, err := s.Frame(); err == nil {
		t.Error("expected error when no frame has been decoded")
	}
}

func TestWaitForFrameTimesOut(t *testing.T) {
	s := NewSource("ws://localhost:1", "nobody")

	start := time.Now()
	if _, err := s.WaitForFrame(60 * time.Millisecond); err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Error("timeout took far longer than requested")
	}
}

func TestWaitForFrameReturnsAvailableFrame(t *testing.T) {
	s := NewSource("ws://localhost:1", "nobody")
	s.frameMutex.Lock()
	s.latestFrame = []byte{0xff, 0xd8, 0xff}
	s.frameMutex.Unlock()

	f, err := s.WaitForFrame(time.Second)
	if err != nil {
		t.Fatalf("WaitForFrame: %v", err)
	}
	if len(f) != 3 {
		t.Errorf("frame length = %d, want 3", len(f))
	}
}
