package mirror

import (
	"image"

	"github.com/teslashibe/glitchmirror/pkg/frame"
	"github.com/teslashibe/glitchmirror/pkg/geom"
)

const (
	// Padding added around the landmark bounding box, as a fraction of the
	// box size, split evenly between both sides.
	eyePadX = 0.6
	eyePadY = 1.0
)

// extractEye crops one eye region from the source frame. The region is the
// axis-aligned bounding box of the indexed landmarks in normalized
// coordinates, padded and clamped to [0,1], then converted to pixels.
// Returns nil on degenerate geometry; the caller skips the history push.
func extractEye(f frame.Frame, landmarks []geom.Point, indices []int) frame.Bitmap {
	if f == nil || len(indices) == 0 {
		return nil
	}

	minX, minY := 1.0, 1.0
	maxX, maxY := 0.0, 0.0
	for _, idx := range indices {
		if idx < 0 || idx >= len(landmarks) {
			return nil
		}
		p := landmarks[idx]
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	padX := (maxX - minX) * eyePadX / 2
	padY := (maxY - minY) * eyePadY / 2

	x0 := geom.Clamp(minX-padX, 0, 1)
	x1 := geom.Clamp(maxX+padX, 0, 1)
	y0 := geom.Clamp(minY-padY, 0, 1)
	y1 := geom.Clamp(maxY+padY, 0, 1)

	bounds := f.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	rect := image.Rect(
		bounds.Min.X+int(x0*w),
		bounds.Min.Y+int(y0*h),
		bounds.Min.X+int(x1*w),
		bounds.Min.Y+int(y1*h),
	)
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return nil
	}

	crop, err := f.Crop(rect)
	if err != nil {
		return nil
	}
	return crop
}
