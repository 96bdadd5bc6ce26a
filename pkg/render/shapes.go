package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/teslashibe/glitchmirror/pkg/frame"
	"github.com/teslashibe/glitchmirror/pkg/history"
	"github.com/teslashibe/glitchmirror/pkg/scene"
)

const (
	// trailOffsetStep scales how far each trail layer lags behind the main
	// instance, opposite the parallax direction.
	trailOffsetStep = 0.08

	// Dropout chances simulate signal loss; boosted by glitch intensity.
	trailDropoutChance = 0.25
	mainDropoutChance  = 0.02

	jitterChance    = 0.05
	jitterMagnitude = 6.0

	// trailHighlightChance substitutes the neutral highlight color on a
	// trail layer.
	trailHighlightChance = 0.1

	shapeScanlineSpacing = 4
)

// drawShape renders stage 4 for one placed shape: two trail layers then
// the main instance, back to front.
func (c *Compositor) drawShape(dc *gg.Context, st *scene.State, p placedShape, px, py float64) {
	crop := selectEye(p.shape.ID, p.pair)
	if crop == nil {
		return
	}
	img := crop.Image()
	if img == nil {
		return
	}

	gi := p.shape.GlitchIntensity
	shift := 1 + int(gi*3)

	for k := TrailLayers - 1; k >= 0; k-- {
		main := k == 0

		lag := trailOffsetStep * float64(k) * (0.8 + gi)
		ox := -px * lag
		oy := -py * lag

		opacity := 1.0
		dropout := mainDropoutChance
		if !main {
			opacity = 0.4 / (float64(k) + 0.5)
			dropout = trailDropoutChance
		}

		// Stochastic signal dropout.
		if c.rng.Float64() < dropout+gi*0.1 {
			opacity *= 0.1
		}

		// Stochastic horizontal jitter.
		jx := 0.0
		if c.rng.Float64() < jitterChance+gi*0.05 {
			jx = (c.rng.Float64()*2 - 1) * jitterMagnitude * gi
		}

		col := p.shape.Color
		if !main && c.rng.Float64() < trailHighlightChance {
			col = scene.Highlight
		}

		x0 := p.x - p.size/2 + ox + jx
		y0 := p.y - p.size/2 + oy

		drawLayer(dc, st.Mode, img, col, shift, x0, y0, p.size, opacity, main)

		if main {
			drawShapeChrome(dc, p, col, x0, y0)
		}
	}
}

// selectEye picks the left or right eye crop for a shape. The assignment is
// stable per shape id so an instance never flips eyes frame to frame.
func selectEye(id string, pair history.FramePair) frame.Bitmap {
	if len(id) > 0 && id[0]%2 == 0 {
		return pair.Left
	}
	return pair.Right
}

// drawLayer draws one instance of the crop into a square clip region with
// the scene's glitch treatment applied, then interior scanlines and a
// border stroke.
func drawLayer(dc *gg.Context, mode scene.GlitchMode, img *image.RGBA, col color.RGBA, shift int, x0, y0, size, opacity float64, main bool) {
	composed := composeCrop(img, mode, col, shift, opacity)
	b := composed.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}

	dc.Push()
	dc.DrawRectangle(x0, y0, size, size)
	dc.Clip()

	dc.Push()
	dc.Translate(x0, y0)
	dc.Scale(size/float64(b.Dx()), size/float64(b.Dy()))
	dc.DrawImage(composed, 0, 0)
	dc.Pop()

	// Interior scanlines.
	dc.SetRGBA(0, 0, 0, 0.25*opacity)
	for y := y0; y < y0+size; y += shapeScanlineSpacing {
		dc.DrawRectangle(x0, y, size, 1)
		dc.Fill()
	}

	dc.ResetClip()
	dc.Pop()

	strokeWidth := 1.0
	if main {
		strokeWidth = 2.0
	}
	dc.SetLineWidth(strokeWidth)
	dc.SetRGBA255(int(col.R), int(col.G), int(col.B), int(200*opacity))
	dc.DrawRectangle(x0, y0, size, size)
	dc.Stroke()
}

// drawShapeChrome adds the id tag, delay caption, and corner brackets on
// the main layer only.
func drawShapeChrome(dc *gg.Context, p placedShape, col color.RGBA, x0, y0 float64) {
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGBA255(int(col.R), int(col.G), int(col.B), 230)

	tag := p.shape.ID
	if len(tag) > 4 {
		tag = tag[:4]
	}
	dc.DrawString(tag, x0+2, y0-4)

	delay := fmt.Sprintf("%.2fs", float64(p.shape.DelayFrames)*FramePeriod)
	dc.DrawString(delay, x0+2, y0+p.size+12)

	// Corner brackets.
	const arm = 8.0
	x1 := x0 + p.size
	y1 := y0 + p.size
	dc.SetLineWidth(1)
	for _, seg := range [][4]float64{
		{x0 - 3, y0 - 3 + arm, x0 - 3, y0 - 3}, {x0 - 3, y0 - 3, x0 - 3 + arm, y0 - 3},
		{x1 + 3 - arm, y0 - 3, x1 + 3, y0 - 3}, {x1 + 3, y0 - 3, x1 + 3, y0 - 3 + arm},
		{x0 - 3, y1 + 3 - arm, x0 - 3, y1 + 3}, {x0 - 3, y1 + 3, x0 - 3 + arm, y1 + 3},
		{x1 + 3 - arm, y1 + 3, x1 + 3, y1 + 3}, {x1 + 3, y1 + 3 - arm, x1 + 3, y1 + 3},
	} {
		dc.DrawLine(seg[0], seg[1], seg[2], seg[3])
		dc.Stroke()
	}
}
