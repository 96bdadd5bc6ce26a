package mirror

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"math/rand"
	"os"
	"time"

	"github.com/teslashibe/glitchmirror/internal/config"
	"github.com/teslashibe/glitchmirror/internal/log"
	"github.com/teslashibe/glitchmirror/pkg/facemesh"
	"github.com/teslashibe/glitchmirror/pkg/facemesh/detection"
	"github.com/teslashibe/glitchmirror/pkg/frame"
	"github.com/teslashibe/glitchmirror/pkg/geom"
	"github.com/teslashibe/glitchmirror/pkg/render"
	"github.com/teslashibe/glitchmirror/pkg/scene"
)

// FrameSource produces live frames: a local webcam or a remote WebRTC
// producer. Read returns the frame decoded for rendering and JPEG-encoded
// for the tracking sidecar.
type FrameSource interface {
	Read() (frame.Frame, []byte, error)
}

// Config holds application settings. Zero values fall back to environment
// configuration in New.
type Config struct {
	Port        string
	MeshURL     string
	CameraID    int
	Width       int
	Height      int
	PaletteFile string

	// CameraPreset names the local capture configuration (default, 720p,
	// 1080p, low). Ignored when WebRTCURL is set.
	CameraPreset string

	// WebRTCURL switches the frame source from the local webcam to a
	// remote producer when non-empty.
	WebRTCURL    string
	ProducerName string

	// GateModel is the path to the face detection model used to skip
	// tracking round trips on empty frames. Gating is disabled when the
	// file does not exist.
	GateModel string

	Debug bool
}

// DefaultConfig returns the environment-backed configuration.
func DefaultConfig() Config {
	return Config{
		Port:         config.Port(),
		MeshURL:      config.MeshURL(),
		CameraID:     config.CameraID(),
		CameraPreset: config.CameraPreset(),
		Width:        config.CanvasWidth(),
		Height:       config.CanvasHeight(),
		PaletteFile:  config.PaletteFile(),
		GateModel:    detection.DefaultConfig().ModelPath,
		ProducerName: "glitchmirror-cam",
	}
}

// WebServer is the display surface: it receives composited frames and
// status snapshots. Satisfied by web.Server.
type WebServer interface {
	Start(ctx context.Context) error
	SendFrame(jpeg []byte)
	SendStatus(st Status)
	Shutdown() error
}

// App wires the frame source, tracking, session, and display together.
type App struct {
	cfg Config

	source     FrameSource
	closer     func() error
	gate       detection.Gate
	gateThresh float64
	tracker    facemesh.Tracker
	session    *Session
	server     WebServer
}

// New creates an app. Validation happens in Init, where components are
// actually constructed.
func New(cfg Config) *App {
	return &App{cfg: cfg}
}

// SetServer injects the display server. Must be called before Run.
func (a *App) SetServer(s WebServer) {
	a.server = s
}

// Session returns the session for status queries. Nil before Init.
func (a *App) Session() *Session {
	return a.session
}

// Init constructs and connects all components.
func (a *App) Init(openSource func(Config) (FrameSource, func() error, error)) error {
	palettes := scene.BuiltinPalettes()
	if a.cfg.PaletteFile != "" {
		loaded, err := scene.LoadPalettes(a.cfg.PaletteFile)
		if err != nil {
			return fmt.Errorf("load palettes: %w", err)
		}
		palettes = loaded
		log.Info("palettes loaded", "file", a.cfg.PaletteFile, "count", len(palettes))
	}

	comp := render.New(a.cfg.Width, a.cfg.Height, rand.New(rand.NewSource(time.Now().UnixNano())))
	gen := scene.NewGenerator(palettes, rand.New(rand.NewSource(time.Now().UnixNano())))
	a.session = NewSession(comp, gen)

	source, closer, err := openSource(a.cfg)
	if err != nil {
		return fmt.Errorf("open frame source: %w", err)
	}
	a.source = source
	a.closer = closer

	if a.cfg.GateModel != "" {
		if _, err := os.Stat(a.cfg.GateModel); err == nil {
			gateCfg := detection.DefaultConfig()
			gateCfg.ModelPath = a.cfg.GateModel
			gate, err := detection.NewYuNet(gateCfg)
			if err != nil {
				log.Warn("face gate unavailable", "error", err)
			} else {
				a.gate = gate
				a.gateThresh = gateCfg.ConfidenceThresh
				log.Info("face gate enabled", "model", a.cfg.GateModel)
			}
		}
	}

	client := facemesh.NewClient(a.cfg.MeshURL)
	if err := client.Connect(); err != nil {
		return fmt.Errorf("connect tracking sidecar: %w", err)
	}
	a.tracker = client
	log.Info("tracking connected", "url", a.cfg.MeshURL)

	return nil
}

// Run drives the capture/track/render loop until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.session == nil || a.source == nil {
		return errors.New("mirror: Run before Init")
	}

	if a.server != nil {
		go func() {
			if err := a.server.Start(ctx); err != nil {
				log.Error("web server stopped", "error", err)
			}
		}()
		go a.broadcastStatus(ctx)
	}

	interval := time.Second / 30
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	frames := 0
	lastReport := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if a.tick() {
				frames++
			}

			if time.Since(lastReport) >= 5*time.Second {
				fps := float64(frames) / time.Since(lastReport).Seconds()
				st := a.session.Status()
				log.Info("mirror running",
					"fps", fmt.Sprintf("%.1f", fps),
					"history", st.History,
					"resets", st.Resets,
					"dropped", st.Dropped)
				frames = 0
				lastReport = time.Now()
			}
		}
	}
}

// tick runs one capture-track-render cycle. Returns false when the tick
// produced no output frame.
func (a *App) tick() bool {
	f, encoded, err := a.source.Read()
	if err != nil {
		log.Debug("no frame this tick", "error", err)
		return false
	}
	defer f.Close()

	landmarks := a.detect(encoded)

	out := a.session.HandleResult(facemesh.Result{
		Landmarks: landmarks,
		Frame:     f,
		When:      time.Now(),
	})
	if out == nil {
		return false
	}

	if a.server != nil {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: 80}); err != nil {
			log.Warn("frame encode failed", "error", err)
			return true
		}
		a.server.SendFrame(buf.Bytes())
	}
	return true
}

// detect runs the cheap face gate, then the full landmark tracker only
// when a confident primary face is present. With several faces in frame
// the best-scoring one decides whether the sidecar round trip happens.
func (a *App) detect(encoded []byte) []geom.Point {
	if a.gate != nil {
		dets, err := a.gate.Detect(encoded)
		if err != nil {
			log.Debug("face gate error", "error", err)
		} else {
			best := detection.SelectBest(dets)
			if best == nil || best.Confidence < a.gateThresh {
				return nil
			}
			if len(dets) > 1 {
				cx, cy := best.Center()
				log.Debug("multiple faces gated",
					"faces", len(dets),
					"confidence", best.Confidence,
					"cx", cx, "cy", cy)
			}
		}
	}

	landmarks, err := a.tracker.Detect(encoded)
	if err != nil {
		log.Debug("tracking error", "error", err)
		return nil
	}
	return landmarks
}

// broadcastStatus pushes session snapshots to status subscribers.
func (a *App) broadcastStatus(ctx context.Context) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.server.SendStatus(a.session.Status())
		}
	}
}

// Shutdown releases all components in reverse dependency order.
func (a *App) Shutdown() {
	if a.server != nil {
		if err := a.server.Shutdown(); err != nil {
			log.Warn("web shutdown", "error", err)
		}
	}
	if a.tracker != nil {
		a.tracker.Close()
	}
	if a.gate != nil {
		a.gate.Close()
	}
	if a.closer != nil {
		if err := a.closer(); err != nil {
			log.Warn("source close", "error", err)
		}
	}
	if a.session != nil {
		a.session.Close()
	}
	log.Info("mirror stopped")
}
