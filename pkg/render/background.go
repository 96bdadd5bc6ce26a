package render

import (
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

const (
	gridSpacing = 80
	// gridParallax is the fraction of the head parallax applied to the grid.
	gridParallax = 0.1
)

// drawBackground renders stage 1: the heavily filtered live frame, a
// semi-transparent dark wash, and the parallax-shifted grid.
func (c *Compositor) drawBackground(dc *gg.Context, in Input, px, py float64) {
	bg := in.Scene.Palette.Background
	dc.SetRGBA255(int(bg.R), int(bg.G), int(bg.B), 255)
	dc.Clear()

	if in.Frame != nil {
		if src := in.Frame.Image(); src != nil {
			// Filter at quarter resolution; the blur hides the difference
			// and the cost drops 16x.
			small := imaging.Resize(src, c.width/4, c.height/4, imaging.Box)
			small = imaging.Blur(small, 6)
			small = imaging.AdjustSaturation(small, -70)
			small = imaging.AdjustContrast(small, 15)
			small = imaging.AdjustBrightness(small, -35)
			full := imaging.Resize(small, c.width, c.height, imaging.Linear)
			dc.DrawImage(full, 0, 0)
		}
	}

	// Dark wash over the filtered frame.
	dc.SetRGBA255(int(bg.R), int(bg.G), int(bg.B), 150)
	dc.DrawRectangle(0, 0, float64(c.width), float64(c.height))
	dc.Fill()

	c.drawGrid(dc, in, px*gridParallax, py*gridParallax)
}

// drawGrid draws the low-opacity background grid, offset by a tenth of the
// parallax displacement.
func (c *Compositor) drawGrid(dc *gg.Context, in Input, ox, oy float64) {
	sec := in.Scene.Palette.Secondary
	dc.SetRGBA255(int(sec.R), int(sec.G), int(sec.B), 20)
	dc.SetLineWidth(1)

	w, h := float64(c.width), float64(c.height)
	for x := mod(ox, gridSpacing); x < w; x += gridSpacing {
		dc.DrawLine(x, 0, x, h)
		dc.Stroke()
	}
	for y := mod(oy, gridSpacing); y < h; y += gridSpacing {
		dc.DrawLine(0, y, w, y)
		dc.Stroke()
	}
}

// mod wraps v into [0, m).
func mod(v, m float64) float64 {
	v = v - m*float64(int(v/m))
	if v < 0 {
		v += m
	}
	return v
}
