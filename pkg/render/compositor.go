// Package render implements the per-tick frame compositor: parallax shape
// placement, the inter-shape connection graph, trail/glitch layers, the
// reset flash, and the global post-processing overlay.
package render

import (
	"image"
	"math/rand"
	"time"

	"github.com/fogleman/gg"

	"github.com/teslashibe/glitchmirror/pkg/frame"
	"github.com/teslashibe/glitchmirror/pkg/geom"
	"github.com/teslashibe/glitchmirror/pkg/history"
	"github.com/teslashibe/glitchmirror/pkg/scene"
)

const (
	// BaseShapeSize is the unscaled render size of a shape in pixels.
	BaseShapeSize = 120

	// ConnectionRange is the fraction of min(width,height) under which two
	// placed shapes are connected.
	ConnectionRange = 0.4

	// TrailLayers is the number of rendered instances per shape (main + trails).
	TrailLayers = 3

	// FlashEpsilon is the intensity below which the reset flash is treated
	// as fully decayed.
	FlashEpsilon = 0.001

	// FramePeriod is the assumed tracking frame period, used for the
	// delay-time labels.
	FramePeriod = 16.6 * float64(time.Millisecond) / float64(time.Second)
)

// Input is everything one render tick consumes. Frame may be nil before
// the first capture; Scene must not be nil.
type Input struct {
	Frame   frame.Frame
	Scene   *scene.State
	Head    geom.Point // smoothed head position
	History *history.Buffer
	Flash   float64 // reset flash intensity, 0-1
	Now     time.Time
}

// Compositor renders composited frames at a fixed canvas size. Not safe
// for concurrent use; the session runs exactly one render at a time.
type Compositor struct {
	width  int
	height int
	rng    *rand.Rand
}

// New creates a compositor for the given canvas size. Inject a seeded rng
// for deterministic output in tests.
func New(width, height int, rng *rand.Rand) *Compositor {
	return &Compositor{
		width:  width,
		height: height,
		rng:    rng,
	}
}

// Size returns the canvas dimensions.
func (c *Compositor) Size() (int, int) {
	return c.width, c.height
}

// placedShape is a shape that resolved a history frame this tick, with its
// computed screen placement.
type placedShape struct {
	shape scene.Shape
	x, y  float64 // screen-space center
	size  float64
	pair  history.FramePair
}

// Render runs the six compositing stages in their fixed order and returns
// the finished frame. Shapes whose history frame is not yet available are
// skipped; everything else always runs.
func (c *Compositor) Render(in Input) *image.RGBA {
	dc := gg.NewContext(c.width, c.height)

	px, py := c.parallax(in.Head)

	c.drawBackground(dc, in, px, py)

	placed := c.place(in, px, py)

	c.drawConnections(dc, in.Scene, placed)

	for _, p := range placed {
		c.drawShape(dc, in.Scene, p, px, py)
	}

	c.drawResetOverlay(dc, in)

	c.drawPost(dc, in.Now)

	return dc.Image().(*image.RGBA)
}

// parallax returns the screen-space displacement of the smoothed head
// position from center.
func (c *Compositor) parallax(head geom.Point) (float64, float64) {
	return (head.X - 0.5) * float64(c.width), (head.Y - 0.5) * float64(c.height)
}

// place resolves each shape's history frame and screen position. Shapes
// without history are dropped for this tick.
func (c *Compositor) place(in Input, px, py float64) []placedShape {
	if in.Scene == nil || in.History == nil {
		return nil
	}

	placed := make([]placedShape, 0, len(in.Scene.Shapes))
	for _, s := range in.Scene.Shapes {
		pair, ok := in.History.Get(s.DelayFrames)
		if !ok {
			continue
		}

		depth := s.Scale * 0.5
		// Gaze drift: a secondary displacement that grows with the shape's
		// glitch intensity, so unstable shapes wander further.
		driftX := px * 0.15 * s.GlitchIntensity
		driftY := py * 0.15 * s.GlitchIntensity

		placed = append(placed, placedShape{
			shape: s,
			x:     s.X*float64(c.width) + px*depth + driftX,
			y:     s.Y*float64(c.height) + py*depth + driftY,
			size:  BaseShapeSize * s.Scale,
			pair:  pair,
		})
	}
	return placed
}
