package video

import (
	"bytes"
	"fmt"
	"os/exec"
	"sync"
	"time"
)

// Decoder converts raw H264 NAL data to JPEG through a piped ffmpeg
// invocation, rate limited so a fast track cannot spawn decoders faster
// than they finish.
type Decoder struct {
	mu          sync.Mutex
	lastDecode  time.Time
	minInterval time.Duration

	frameMu     sync.RWMutex
	latestFrame []byte
}

// NewDecoder creates a decoder. minInterval bounds the decode rate, e.g.
// 50ms caps it at 20 FPS.
func NewDecoder(minInterval time.Duration) *Decoder {
	return &Decoder{
		minInterval: minInterval,
		lastDecode:  time.Now().Add(-minInterval),
	}
}

// DecodeNAL decodes accumulated NAL units to a JPEG frame. Calls inside
// the rate-limit window return the previous frame.
func (d *Decoder) DecodeNAL(nalData []byte) ([]byte, error) {
	if len(nalData) < 100 {
		return nil, nil
	}

	d.mu.Lock()
	if time.Since(d.lastDecode) < d.minInterval {
		d.mu.Unlock()
		return d.LatestFrame(), nil
	}
	d.lastDecode = time.Now()
	d.mu.Unlock()

	cmd := exec.Command("ffmpeg",
		"-f", "h264",
		"-i", "pipe:0",
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-q:v", "3",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(nalData)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("video: ffmpeg decode: %w", err)
	}

	jpeg := stdout.Bytes()
	if len(jpeg) < 1000 {
		// Truncated stream, keep the previous frame.
		return d.LatestFrame(), nil
	}

	d.frameMu.Lock()
	d.latestFrame = jpeg
	d.frameMu.Unlock()
	return jpeg, nil
}

// LatestFrame returns the most recently decoded frame, or nil.
func (d *Decoder) LatestFrame() []byte {
	d.frameMu.RLock()
	defer d.frameMu.RUnlock()
	return d.latestFrame
}
