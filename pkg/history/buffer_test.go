package history

import (
	"image"
	"testing"
	"time"

	"github.com/teslashibe/glitchmirror/pkg/frame"
)

// countingBitmap records Close calls so tests can verify the eviction
// release contract.
type countingBitmap struct {
	closes *int
}

func (c countingBitmap) Image() *image.RGBA      { return nil }
func (c countingBitmap) Bounds() image.Rectangle { return image.Rect(0, 0, 8, 8) }
func (c countingBitmap) Close() error {
	*c.closes = 1 + *c.closes
	return nil
}

func pair(closes *int) FramePair {
	return FramePair{
		Left:  countingBitmap{closes: closes},
		Right: countingBitmap{closes: closes},
		When:  time.Now(),
	}
}

func TestBuffer_NeverExceedsCap(t *testing.T) {
	b := NewBuffer()
	closes := 0

	for i := 0; i < MaxHistory+20; i++ {
		b.Push(pair(&closes))
		if b.Len() > MaxHistory {
			t.Fatalf("buffer grew to %d after push %d", b.Len(), i)
		}
	}
	if b.Len() != MaxHistory {
		t.Errorf("got len %d, want %d", b.Len(), MaxHistory)
	}
}

func TestBuffer_EvictionReleasesBitmaps(t *testing.T) {
	b := NewBuffer()

	oldestCloses := 0
	b.Push(pair(&oldestCloses))

	otherCloses := 0
	for i := 0; i < MaxHistory-1; i++ {
		b.Push(pair(&otherCloses))
	}
	if oldestCloses != 0 {
		t.Fatalf("oldest released before overflow: %d closes", oldestCloses)
	}

	// The 61st push evicts exactly the first pair: both of its bitmaps.
	b.Push(pair(&otherCloses))
	if oldestCloses != 2 {
		t.Errorf("got %d closes on evicted pair, want 2", oldestCloses)
	}
	if otherCloses != 0 {
		t.Errorf("retained pairs were closed: %d closes", otherCloses)
	}
}

func TestBuffer_GetClampsToOldest(t *testing.T) {
	b := NewBuffer()
	closes := 0

	if _, ok := b.Get(0); ok {
		t.Fatal("empty buffer returned a frame")
	}

	first := pair(&closes)
	first.When = time.Unix(1, 0)
	b.Push(first)
	second := pair(&closes)
	second.When = time.Unix(2, 0)
	b.Push(second)

	tests := []struct {
		name  string
		delay int
		want  FramePair
	}{
		{name: "newest", delay: 0, want: second},
		{name: "exact", delay: 1, want: first},
		{name: "deeper than available clamps to oldest", delay: 45, want: first},
		{name: "negative clamps to newest", delay: -3, want: second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := b.Get(tt.delay)
			if !ok {
				t.Fatal("expected a frame")
			}
			if got != tt.want {
				t.Errorf("got wrong frame for delay %d", tt.delay)
			}
		})
	}
}

func TestBuffer_ReleaseDrainsEverything(t *testing.T) {
	b := NewBuffer()
	closes := 0
	for i := 0; i < 10; i++ {
		b.Push(pair(&closes))
	}

	b.Release()
	if b.Len() != 0 {
		t.Errorf("got len %d after Release, want 0", b.Len())
	}
	if closes != 20 {
		t.Errorf("got %d closes, want 20", closes)
	}
}

func TestFramePair_CloseToleratesNil(t *testing.T) {
	// A pair with a missing side must not panic on Close.
	closes := 0
	p := FramePair{Left: countingBitmap{closes: &closes}}
	p.Close()
	if closes != 1 {
		t.Errorf("got %d closes, want 1", closes)
	}
}
