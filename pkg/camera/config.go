// Package camera provides the live video source: webcam capture through
// OpenCV, producing frames the extraction and rendering layers consume.
package camera

import "fmt"

// Config holds capture settings.
type Config struct {
	// Width and Height request a capture resolution; the driver may pick
	// the closest supported mode.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Framerate is the target capture FPS.
	Framerate int `json:"framerate"`

	// Quality is the JPEG quality (1-100) used when encoding frames for
	// the tracking sidecar.
	Quality int `json:"quality"`
}

// DefaultConfig returns the 720p capture configuration. High enough for
// usable eye crops, cheap enough to track at full rate.
func DefaultConfig() Config {
	return Config{
		Width:     1280,
		Height:    720,
		Framerate: 30,
		Quality:   85,
	}
}

// Validate returns a list of config problems, empty when valid.
func (c Config) Validate() []string {
	var errs []string
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Sprintf("invalid resolution %dx%d", c.Width, c.Height))
	}
	if c.Framerate <= 0 {
		errs = append(errs, fmt.Sprintf("invalid framerate %d", c.Framerate))
	}
	if c.Quality < 1 || c.Quality > 100 {
		errs = append(errs, fmt.Sprintf("quality %d out of range 1-100", c.Quality))
	}
	return errs
}
