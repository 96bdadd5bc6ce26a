// Package history maintains the bounded temporal store of paired eye-region
// snapshots that the compositor replays with artificial delay.
package history

import (
	"time"

	"github.com/teslashibe/glitchmirror/pkg/frame"
)

// MaxHistory is the hard cap on retained frames. At steady state the buffer
// holds MaxHistory pairs (two bitmaps each), which bounds capture-backed
// memory for continuous operation.
const MaxHistory = 60

// FramePair is one tick's extracted eye regions.
type FramePair struct {
	Left  frame.Bitmap
	Right frame.Bitmap
	When  time.Time
}

// Close releases both snapshots.
func (p FramePair) Close() {
	if p.Left != nil {
		p.Left.Close()
	}
	if p.Right != nil {
		p.Right.Close()
	}
}

// Buffer stores the most recent MaxHistory frame pairs, newest first.
// It is not safe for concurrent use; the session serializes access.
type Buffer struct {
	frames []FramePair
}

// NewBuffer creates an empty history buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		frames: make([]FramePair, 0, MaxHistory),
	}
}

// Push inserts a pair at the front. If the buffer exceeds MaxHistory the
// oldest pair is evicted and both of its bitmaps are released.
func (b *Buffer) Push(p FramePair) {
	b.frames = append([]FramePair{p}, b.frames...)
	if len(b.frames) > MaxHistory {
		evicted := b.frames[len(b.frames)-1]
		b.frames = b.frames[:len(b.frames)-1]
		evicted.Close()
	}
}

// Get returns the pair at min(delay, Len-1), or false when the buffer is
// empty. Requests deeper than the available history degrade to the oldest
// retained pair rather than failing, so shapes render during warm-up.
func (b *Buffer) Get(delay int) (FramePair, bool) {
	if len(b.frames) == 0 {
		return FramePair{}, false
	}
	if delay < 0 {
		delay = 0
	}
	if delay > len(b.frames)-1 {
		delay = len(b.frames) - 1
	}
	return b.frames[delay], true
}

// Len returns the number of retained pairs.
func (b *Buffer) Len() int {
	return len(b.frames)
}

// Release evicts and closes every retained pair. Used on session teardown.
func (b *Buffer) Release() {
	for _, p := range b.frames {
		p.Close()
	}
	b.frames = b.frames[:0]
}
