// Package facemesh defines the boundary to the face-landmark tracking
// collaborator. The mirror consumes tracking output only: a list of
// normalized landmark points per frame, or no face.
package facemesh

import "github.com/teslashibe/glitchmirror/pkg/geom"

// Landmark indices following the MediaPipe FaceMesh convention.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const (
	NoseTip = 1

	// NumLandmarks is the minimum landmark count a conforming tracker
	// produces. Results with fewer points are treated as no face.
	NumLandmarks = 468
)

// Aspect-ratio quads per eye, in [outer, inner, upper, lower] order.
// "Left" and "right" are the subject's, not the viewer's.
var (
	RightEyeEAR = geom.EyeIndices{Outer: 33, Inner: 133, Upper: 159, Lower: 145}
	LeftEyeEAR  = geom.EyeIndices{Outer: 263, Inner: 362, Upper: 386, Lower: 374}
)

// Eye-contour subsets used for snapshot cropping.
var (
	RightEyeRegion = []int{33, 7, 163, 144, 145, 153, 154, 155, 133, 173, 157, 158, 159, 160, 161, 246}
	LeftEyeRegion  = []int{362, 382, 381, 380, 374, 373, 390, 249, 263, 466, 388, 387, 386, 385, 384, 398}
)
