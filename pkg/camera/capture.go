package camera

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/glitchmirror/pkg/frame"
)

var ErrClosed = errors.New("camera: capture closed")

// Capture reads frames from a local webcam device. Not safe for
// concurrent use; the capture loop is the only reader.
type Capture struct {
	mu     sync.Mutex
	cap    *gocv.VideoCapture
	mat    gocv.Mat
	cfg    Config
	closed bool
}

// Open opens the capture device and applies the requested mode.
func Open(deviceID int, cfg Config) (*Capture, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("camera: bad config: %v", errs)
	}

	cap, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("camera: open device %d: %w", deviceID, err)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	cap.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	return &Capture{
		cap: cap,
		mat: gocv.NewMat(),
		cfg: cfg,
	}, nil
}

// Read grabs the next frame and returns it twice: as an in-memory frame
// for extraction/rendering, and JPEG-encoded for the tracking sidecar.
// Both are snapshots; the capture's internal buffer is reused.
func (c *Capture) Read() (frame.Frame, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, nil, ErrClosed
	}

	if ok := c.cap.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, nil, errors.New("camera: no frame available")
	}

	img, err := c.mat.ToImage()
	if err != nil {
		return nil, nil, fmt.Errorf("camera: convert frame: %w", err)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, c.mat,
		[]int{gocv.IMWriteJpegQuality, c.cfg.Quality})
	if err != nil {
		return nil, nil, fmt.Errorf("camera: encode frame: %w", err)
	}
	defer buf.Close()

	encoded := make([]byte, len(buf.GetBytes()))
	copy(encoded, buf.GetBytes())

	var f frame.Frame
	if rgba, ok := img.(*image.RGBA); ok {
		f = frame.NewImage(rgba)
	} else {
		f = frame.FromImage(img)
	}
	return f, encoded, nil
}

// Config returns the capture configuration.
func (c *Capture) Config() Config {
	return c.cfg
}

// Close releases the device and the internal buffer.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	c.mat.Close()
	return c.cap.Close()
}
