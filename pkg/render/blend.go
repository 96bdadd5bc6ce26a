package render

import (
	"image"
	"image/color"

	"github.com/teslashibe/glitchmirror/pkg/scene"
)

// Pixel blend operations. Neither gg nor imaging expose non-default blend
// modes, so the overlay/screen compositing the mirror needs is done here
// directly on RGBA buffers.

// composeCrop prepares an eye crop for drawing: applies the scene's glitch
// treatment, an overlay blend with the shape color, and folds the layer
// opacity into the alpha channel. Color channels are premultiplied by the
// opacity, as image.RGBA requires. The source image is not modified.
func composeCrop(src *image.RGBA, mode scene.GlitchMode, tint color.RGBA, shift int, opacity float64) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	tr := float64(tint.R) / 255
	tg := float64(tint.G) / 255
	tb := float64(tint.B) / 255

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bb := samplePixel(src, b, x, y, mode, shift)

			if mode == scene.ModeInvert {
				r, g, bb = 1-r, 1-g, 1-bb
			}

			dst.SetRGBA(x, y, color.RGBA{
				R: uint8(overlayChannel(r, tr)*opacity*255 + 0.5),
				G: uint8(overlayChannel(g, tg)*opacity*255 + 0.5),
				B: uint8(overlayChannel(bb, tb)*opacity*255 + 0.5),
				A: uint8(opacity*255 + 0.5),
			})
		}
	}
	return dst
}

// samplePixel reads one pixel, displacing the red and blue channels
// horizontally when the scene is in rgb-split mode.
func samplePixel(src *image.RGBA, b image.Rectangle, x, y int, mode scene.GlitchMode, shift int) (r, g, bl float64) {
	at := func(xx int) color.RGBA {
		if xx < 0 {
			xx = 0
		}
		if xx > b.Dx()-1 {
			xx = b.Dx() - 1
		}
		return src.RGBAAt(b.Min.X+xx, b.Min.Y+y)
	}

	center := at(x)
	if mode != scene.ModeRGBSplit || shift == 0 {
		return float64(center.R) / 255, float64(center.G) / 255, float64(center.B) / 255
	}

	left := at(x - shift)
	right := at(x + shift)
	return float64(left.R) / 255, float64(center.G) / 255, float64(right.B) / 255
}

// overlayChannel applies the overlay blend to one channel pair.
func overlayChannel(base, blend float64) float64 {
	if base < 0.5 {
		return 2 * base * blend
	}
	return 1 - 2*(1-base)*(1-blend)
}

// screenUniform composites a flat color over the whole image with the
// screen blend at the given strength. Used for the reset flash, which
// brightens without clipping the way plain addition does.
func screenUniform(dst *image.RGBA, c color.RGBA, strength float64) {
	if strength <= 0 {
		return
	}
	if strength > 1 {
		strength = 1
	}

	cr := float64(c.R) / 255 * strength
	cg := float64(c.G) / 255 * strength
	cb := float64(c.B) / 255 * strength

	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := dst.RGBAAt(x, y)
			p.R = screenChannel(p.R, cr)
			p.G = screenChannel(p.G, cg)
			p.B = screenChannel(p.B, cb)
			dst.SetRGBA(x, y, p)
		}
	}
}

func screenChannel(base uint8, blend float64) uint8 {
	v := 1 - (1-float64(base)/255)*(1-blend)
	return uint8(v*255 + 0.5)
}
