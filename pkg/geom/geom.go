// Package geom provides the small geometry and signal helpers shared by the
// tracking and rendering packages. All points are in normalized image space
// ([0,1] on both axes) unless a caller says otherwise.
package geom

import "math"

// Point is a 2D point with an optional depth component. Z is zero when the
// producing tracker has no depth estimate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// Center is the normalized frame center.
var Center = Point{X: 0.5, Y: 0.5}

// Distance returns the Euclidean distance between two points in the XY plane.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Lerp linearly interpolates from start to end. The caller is responsible
// for keeping t in a sensible range; no clamping is performed.
func Lerp(start, end, t float64) float64 {
	return start + (end-start)*t
}

// Clamp limits a value to [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// EyeIndices names the four landmarks of one eye used for the aspect-ratio
// signal, in [outer, inner, upper, lower] order.
type EyeIndices struct {
	Outer int
	Inner int
	Upper int
	Lower int
}

// EyeAspectRatio returns vertical eyelid separation divided by horizontal
// eye width for one eye. Low values indicate a closed eye. A degenerate
// horizontal width (extreme head angle collapsing the eye corners) is
// treated as closed and returns 0.
func EyeAspectRatio(landmarks []Point, idx EyeIndices) float64 {
	n := len(landmarks)
	if idx.Outer >= n || idx.Inner >= n || idx.Upper >= n || idx.Lower >= n {
		return 0
	}
	width := Distance(landmarks[idx.Outer], landmarks[idx.Inner])
	if width < 1e-6 {
		return 0
	}
	height := Distance(landmarks[idx.Upper], landmarks[idx.Lower])
	return height / width
}
