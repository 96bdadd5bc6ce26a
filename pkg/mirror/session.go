// Package mirror owns the per-session mutable state of the glitch mirror:
// head smoothing, blink detection, scene lifecycle, eye-crop history, and
// the reset flash. One Session drives one Compositor.
package mirror

import (
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/glitchmirror/pkg/facemesh"
	"github.com/teslashibe/glitchmirror/pkg/geom"
	"github.com/teslashibe/glitchmirror/pkg/history"
	"github.com/teslashibe/glitchmirror/pkg/render"
	"github.com/teslashibe/glitchmirror/pkg/scene"
)

const (
	// BlinkThreshold is the eye aspect ratio under which an eye counts as
	// closed.
	BlinkThreshold = 0.18

	// BlinkCooldown is the number of ticks after a reset during which
	// further resets are suppressed.
	BlinkCooldown = 25

	// SmoothFactor is the per-axis exponential moving average factor for
	// head position.
	SmoothFactor = 0.08

	// FlashDecay multiplies the reset flash intensity each render tick.
	FlashDecay = 0.85
)

// Session holds all mutable mirror state. HandleResult is the only writer;
// a depth-1 drop policy discards a result that arrives while a previous
// one is still being processed.
type Session struct {
	comp *render.Compositor
	gen  *scene.Generator

	busy atomic.Bool

	mu       sync.RWMutex
	scene    *scene.State
	hist     *history.Buffer
	head     geom.Point
	cooldown int
	flash    float64
	closed   bool // eyes closed on the previous tick

	ticks  uint64
	resets uint64
	done   bool

	dropped atomic.Uint64
}

// NewSession creates a session with a freshly generated scene and the head
// position at center.
func NewSession(comp *render.Compositor, gen *scene.Generator) *Session {
	return &Session{
		comp:  comp,
		gen:   gen,
		scene: gen.Generate(),
		hist:  history.NewBuffer(),
		head:  geom.Center,
	}
}

// HandleResult processes one tracking result: updates head/blink state,
// extracts and stores the eye crops, renders, and decays the flash.
// Returns nil when the previous invocation has not finished yet (the
// result is dropped) or after Close.
func (s *Session) HandleResult(res facemesh.Result) *image.RGBA {
	if !s.busy.CompareAndSwap(false, true) {
		s.dropped.Add(1)
		return nil
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return nil
	}

	now := res.When
	if now.IsZero() {
		now = time.Now()
	}

	s.ticks++
	s.track(res)
	s.push(res)

	out := s.comp.Render(render.Input{
		Frame:   res.Frame,
		Scene:   s.scene,
		Head:    s.head,
		History: s.hist,
		Flash:   s.flash,
		Now:     now,
	})

	s.flash *= FlashDecay
	if s.flash < render.FlashEpsilon {
		s.flash = 0
	}

	return out
}

// track runs one head/blink update. A reset fires on the closed-eye edge:
// both aspect ratios under threshold, eyes open on the previous tick, and
// cooldown expired. A prolonged closure therefore produces exactly one
// reset.
func (s *Session) track(res facemesh.Result) {
	target := geom.Center
	closed := false

	if res.HasFace() {
		nose := res.Landmarks[facemesh.NoseTip]
		// Horizontal mirroring, so the composite moves like a reflection.
		target = geom.Point{X: 1 - nose.X, Y: nose.Y}

		left := geom.EyeAspectRatio(res.Landmarks, facemesh.LeftEyeEAR)
		right := geom.EyeAspectRatio(res.Landmarks, facemesh.RightEyeEAR)
		closed = left < BlinkThreshold && right < BlinkThreshold
	}

	if closed && !s.closed && s.cooldown <= 0 {
		s.scene = s.gen.Generate()
		s.flash = 1.0
		s.cooldown = BlinkCooldown
		s.resets++
	} else if s.cooldown > 0 {
		s.cooldown--
	}
	s.closed = closed

	s.head.X = geom.Lerp(s.head.X, target.X, SmoothFactor)
	s.head.Y = geom.Lerp(s.head.Y, target.Y, SmoothFactor)
}

// push extracts both eye crops and stores them in the history buffer. A
// degenerate crop on either eye skips the tick's push entirely; a partial
// crop is released rather than stored alone.
func (s *Session) push(res facemesh.Result) {
	if !res.HasFace() || res.Frame == nil {
		return
	}

	left := extractEye(res.Frame, res.Landmarks, facemesh.LeftEyeRegion)
	right := extractEye(res.Frame, res.Landmarks, facemesh.RightEyeRegion)
	if left == nil || right == nil {
		if left != nil {
			left.Close()
		}
		if right != nil {
			right.Close()
		}
		return
	}

	when := res.When
	if when.IsZero() {
		when = time.Now()
	}
	s.hist.Push(history.FramePair{Left: left, Right: right, When: when})
}

// Status is a point-in-time snapshot of the session for reporting.
type Status struct {
	Head     geom.Point `json:"head"`
	Flash    float64    `json:"flash"`
	Cooldown int        `json:"cooldown"`
	Palette  string     `json:"palette"`
	Shapes   int        `json:"shapes"`
	History  int        `json:"history"`
	Ticks    uint64     `json:"ticks"`
	Resets   uint64     `json:"resets"`
	Dropped  uint64     `json:"dropped"`
}

// Status returns a consistent snapshot of the session state.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		Head:     s.head,
		Flash:    s.flash,
		Cooldown: s.cooldown,
		Palette:  s.scene.Palette.Name,
		Shapes:   len(s.scene.Shapes),
		History:  s.hist.Len(),
		Ticks:    s.ticks,
		Resets:   s.resets,
		Dropped:  s.dropped.Load(),
	}
}

// Scene returns the current scene state.
func (s *Session) Scene() *scene.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene
}

// Close releases all retained history bitmaps. Results handed in after
// Close are dropped, so nothing writes into the released buffer.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.done = true
	s.hist.Release()
}
