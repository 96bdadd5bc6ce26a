// Package scene generates the randomized parameters for one visual scene:
// a palette plus an ordered set of shape descriptors. A scene is immutable
// once generated and is replaced wholesale on every blink-triggered reset.
package scene

import "image/color"

// GlitchMode selects the per-scene crop treatment.
type GlitchMode int

const (
	// ModeRGBSplit offsets the color channels horizontally.
	ModeRGBSplit GlitchMode = iota
	// ModeInvert inverts the crop colors.
	ModeInvert
)

func (m GlitchMode) String() string {
	if m == ModeInvert {
		return "invert"
	}
	return "rgb-split"
}

// Kind tags the shape geometry. Only rectangles are generated today; the
// tag anticipates circle/triangle/slice variants.
type Kind int

const (
	KindRectangle Kind = iota
	KindCircle
	KindTriangle
	KindSlice
)

// Palette holds the three semantic color roles of a scene.
type Palette struct {
	Name       string
	Background color.RGBA
	Primary    color.RGBA
	Secondary  color.RGBA
}

// Shape describes one composited rectangle. Immutable once generated.
type Shape struct {
	ID              string
	Kind            Kind
	DelayFrames     int     // lookup depth into the history buffer
	X, Y            float64 // base normalized position
	Scale           float64
	Color           color.RGBA
	GlitchIntensity float64 // 0-1
}

// Focal reports whether this is the designated large centered shape.
func (s Shape) Focal() bool {
	return s.X == 0.5 && s.Y == 0.5 && s.Scale >= FocalScaleMin
}

// State is one generated scene. The shape slice is ordered; index 0 is
// always the focal shape.
type State struct {
	Palette Palette
	Mode    GlitchMode
	Shapes  []Shape
}
