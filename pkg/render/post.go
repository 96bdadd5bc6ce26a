package render

import (
	"image/color"
	"math"
	"time"

	"github.com/fogleman/gg"
)

func colorRGBA(r, g, b, a uint8) color.Color {
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

const (
	postScanlineSpacing = 4
	// highlightPeriod is how long the soft highlight bar takes to sweep the
	// full canvas height once.
	highlightPeriod = 6 * time.Second
)

// drawPost renders stage 6: full-frame scanlines, a slowly sweeping
// highlight bar, and a radial vignette. Runs on every frame regardless of
// tracking or history state.
func (c *Compositor) drawPost(dc *gg.Context, now time.Time) {
	w, h := float64(c.width), float64(c.height)

	dc.SetRGBA(0, 0, 0, 0.12)
	for y := 0.0; y < h; y += postScanlineSpacing {
		dc.DrawRectangle(0, y, w, 1)
		dc.Fill()
	}

	// Highlight bar, phase driven by wall clock so it keeps moving even
	// when the scene is static.
	phase := float64(now.UnixNano()%int64(highlightPeriod)) / float64(highlightPeriod)
	barY := phase * h
	barH := h * 0.12
	grad := gg.NewLinearGradient(0, barY-barH/2, 0, barY+barH/2)
	grad.AddColorStop(0, colorRGBA(255, 255, 255, 0))
	grad.AddColorStop(0.5, colorRGBA(255, 255, 255, 18))
	grad.AddColorStop(1, colorRGBA(255, 255, 255, 0))
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, barY-barH/2, w, barH)
	dc.Fill()

	// Vignette.
	cx, cy := w/2, h/2
	outer := math.Sqrt(cx*cx+cy*cy)
	vg := gg.NewRadialGradient(cx, cy, outer*0.45, cx, cy, outer)
	vg.AddColorStop(0, colorRGBA(0, 0, 0, 0))
	vg.AddColorStop(1, colorRGBA(0, 0, 0, 115))
	dc.SetFillStyle(vg)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()
}
