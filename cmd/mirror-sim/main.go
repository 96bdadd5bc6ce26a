// mirror-sim drives the mirror session with a synthetic tracking signal:
// a sinusoidal head sweep with periodic blinks, no camera or tracking
// sidecar required. Useful for styling palettes and checking the pipeline
// on machines without OpenCV.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/teslashibe/glitchmirror/internal/log"
	"github.com/teslashibe/glitchmirror/pkg/facemesh"
	"github.com/teslashibe/glitchmirror/pkg/frame"
	"github.com/teslashibe/glitchmirror/pkg/geom"
	"github.com/teslashibe/glitchmirror/pkg/mirror"
	"github.com/teslashibe/glitchmirror/pkg/render"
	"github.com/teslashibe/glitchmirror/pkg/scene"
)

func main() {
	out := flag.String("out", "sim-frames", "output directory for rendered frames")
	ticks := flag.Int("ticks", 300, "number of ticks to simulate")
	width := flag.Int("width", 640, "canvas width")
	height := flag.Int("height", 360, "canvas height")
	every := flag.Int("every", 10, "write every Nth frame")
	seed := flag.Int64("seed", 1, "random seed")
	blinkEvery := flag.Int("blink-every", 90, "blink once every N ticks")
	flag.Parse()

	log.Init("info")

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Error("create output dir", "error", err)
		os.Exit(1)
	}

	comp := render.New(*width, *height, rand.New(rand.NewSource(*seed)))
	gen := scene.NewGenerator(nil, rand.New(rand.NewSource(*seed+1)))
	session := mirror.NewSession(comp, gen)
	defer session.Close()

	written := 0
	for i := 0; i < *ticks; i++ {
		res := syntheticResult(i, *blinkEvery)
		rendered := session.HandleResult(res)
		res.Frame.Close()
		if rendered == nil {
			continue
		}

		if i%*every == 0 {
			path := filepath.Join(*out, fmt.Sprintf("frame-%04d.jpg", i))
			if err := writeJPEG(path, rendered); err != nil {
				log.Error("write frame", "path", path, "error", err)
				os.Exit(1)
			}
			written++
		}
	}

	st := session.Status()
	log.Info("simulation finished",
		"frames_written", written,
		"resets", st.Resets,
		"history", st.History,
		"out", *out)
}

// syntheticResult fabricates one tracking tick: the nose sweeps a slow
// sine, eye regions sit at plausible face positions, and both eyes close
// for three ticks at the blink interval.
func syntheticResult(tick, blinkEvery int) facemesh.Result {
	lm := make([]geom.Point, facemesh.NumLandmarks)
	for i := range lm {
		lm[i] = geom.Point{X: 0.5, Y: 0.5}
	}

	phase := float64(tick) / 120.0 * 2 * math.Pi
	noseX := 0.5 + 0.25*math.Sin(phase)
	noseY := 0.5 + 0.10*math.Sin(phase*0.7)
	lm[facemesh.NoseTip] = geom.Point{X: noseX, Y: noseY}

	blinking := blinkEvery > 0 && tick%blinkEvery < 3
	ratio := 0.32
	if blinking {
		ratio = 0.08
	}
	setEye(lm, facemesh.RightEyeEAR, facemesh.RightEyeRegion, noseX-0.12, noseY-0.08, ratio)
	setEye(lm, facemesh.LeftEyeEAR, facemesh.LeftEyeRegion, noseX+0.12, noseY-0.08, ratio)

	return facemesh.Result{
		Landmarks: lm,
		Frame:     syntheticFrame(tick),
		When:      time.Now(),
	}
}

// setEye lays out one eye: the aspect-ratio quad around (cx, cy) plus a
// contour ellipse for cropping.
func setEye(lm []geom.Point, ear geom.EyeIndices, region []int, cx, cy, ratio float64) {
	const width = 0.08
	lm[ear.Outer] = geom.Point{X: cx - width/2, Y: cy}
	lm[ear.Inner] = geom.Point{X: cx + width/2, Y: cy}
	lm[ear.Upper] = geom.Point{X: cx, Y: cy - ratio*width/2}
	lm[ear.Lower] = geom.Point{X: cx, Y: cy + ratio*width/2}

	for i, idx := range region {
		a := float64(i) / float64(len(region)) * 2 * math.Pi
		lm[idx] = geom.Point{
			X: cx + math.Cos(a)*width/2,
			Y: cy + math.Sin(a)*width/6,
		}
	}
}

// syntheticFrame renders a drifting two-tone gradient standing in for the
// camera image.
func syntheticFrame(tick int) frame.Frame {
	const w, h = 320, 180
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	shift := tick % 255
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((x + shift) % 256),
				G: uint8((y + shift*2) % 256),
				B: 90,
				A: 255,
			})
		}
	}
	return frame.NewImage(img)
}

func writeJPEG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
