package render

import (
	"math"

	"github.com/fogleman/gg"

	"github.com/teslashibe/glitchmirror/pkg/scene"
)

// drawConnections renders stage 3: a line between every pair of placed
// shapes closer than ConnectionRange of the smaller canvas dimension, with
// opacity falling off linearly to zero at the threshold. O(n²) over at
// most ~35 shapes.
func (c *Compositor) drawConnections(dc *gg.Context, st *scene.State, placed []placedShape) {
	threshold := ConnectionRange * math.Min(float64(c.width), float64(c.height))
	if threshold <= 0 {
		return
	}

	sec := st.Palette.Secondary
	dc.SetLineWidth(1)

	for i := 0; i < len(placed); i++ {
		for j := i + 1; j < len(placed); j++ {
			a, b := placed[i], placed[j]
			dx := a.x - b.x
			dy := a.y - b.y
			d := math.Sqrt(dx*dx + dy*dy)
			if d >= threshold {
				continue
			}

			alpha := (1 - d/threshold) * 0.35
			dc.SetRGBA(float64(sec.R)/255, float64(sec.G)/255, float64(sec.B)/255, alpha)
			dc.DrawLine(a.x, a.y, b.x, b.y)
			dc.Stroke()
		}
	}
}
