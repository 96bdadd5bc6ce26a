package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/teslashibe/glitchmirror/pkg/scene"
)

// drawResetOverlay renders stage 5: the whole-canvas flash and noise burst
// immediately after a blink-triggered scene reset. A no-op once the flash
// intensity has decayed below FlashEpsilon. Decay itself is owned by the
// session, not the compositor.
func (c *Compositor) drawResetOverlay(dc *gg.Context, in Input) {
	if in.Flash <= FlashEpsilon || in.Scene == nil {
		return
	}

	w := float64(c.width)
	h := float64(c.height)

	screenUniform(dc.Image().(*image.RGBA), color.RGBA{R: 255, G: 255, B: 255, A: 255}, 0.35*in.Flash)

	// Horizontal noise strips in the scene's accent colors.
	strips := 3 + c.rng.Intn(6)
	for i := 0; i < strips; i++ {
		col := in.Scene.Palette.Secondary
		if c.rng.Float64() < 0.4 {
			col = scene.Highlight
		}
		y := c.rng.Float64() * h
		sh := 2 + c.rng.Float64()*14
		dc.SetRGBA255(int(col.R), int(col.G), int(col.B), int(255*in.Flash*0.6))
		dc.DrawRectangle(0, y, w, sh)
		dc.Fill()
	}

	if in.Flash > 0.2 {
		col := in.Scene.Palette.Primary
		if c.rng.Float64() < 0.5 {
			col = scene.Highlight
		}
		dc.SetRGBA255(int(col.R), int(col.G), int(col.B), int(255*in.Flash))
		dc.Push()
		dc.Translate(w/2, h/2)
		dc.Scale(4, 4)
		dc.DrawStringAnchored("SCRAMBLE", 0, 0, 0.5, 0.5)
		dc.Pop()
	}
}
