package facemesh

import (
	"time"

	"github.com/teslashibe/glitchmirror/pkg/frame"
	"github.com/teslashibe/glitchmirror/pkg/geom"
)

// Result is one tracking tick's output: zero-or-one face's landmarks plus
// a reference to the source frame the landmarks were measured on. The
// receiver of a Result owns Frame and must release it after rendering.
type Result struct {
	Landmarks []geom.Point
	Frame     frame.Frame
	When      time.Time
}

// HasFace reports whether a conforming face was detected this tick.
func (r Result) HasFace() bool {
	return len(r.Landmarks) >= NumLandmarks
}

// Tracker produces face landmarks for single frames. Implementations must
// be safe for sequential use from one goroutine; the capture loop never
// issues overlapping calls.
type Tracker interface {
	// Detect returns normalized landmarks for the first detected face, or
	// an empty slice when no face is present. Encoded is the frame as JPEG.
	Detect(encoded []byte) ([]geom.Point, error)

	// Close releases tracker resources.
	Close() error
}
