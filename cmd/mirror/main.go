// glitchmirror - blink-driven glitch mirror installation.
// Captures a live face, tracks landmarks through a sidecar, and streams
// the composited output to browser viewers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/glitchmirror/internal/log"
	"github.com/teslashibe/glitchmirror/pkg/camera"
	"github.com/teslashibe/glitchmirror/pkg/mirror"
	"github.com/teslashibe/glitchmirror/pkg/video"
	"github.com/teslashibe/glitchmirror/pkg/web"
)

func main() {
	cfg := parseFlags()

	level := "info"
	if cfg.Debug {
		level = "debug"
	}
	log.Init(level)

	app := mirror.New(cfg)

	if err := app.Init(openSource); err != nil {
		log.Error("initialization failed", "error", err)
		os.Exit(1)
	}
	defer app.Shutdown()

	server := web.NewServer(cfg.Port)
	server.StatusFunc = func() mirror.Status { return app.Session().Status() }
	server.SceneFunc = app.Session().Scene
	app.SetServer(server)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("runtime error", "error", err)
		os.Exit(1)
	}
}

// openSource opens the webcam, or a remote WebRTC producer when
// -webrtc is set.
func openSource(cfg mirror.Config) (mirror.FrameSource, func() error, error) {
	if cfg.WebRTCURL != "" {
		src := video.NewSource(cfg.WebRTCURL, cfg.ProducerName)
		if err := src.Connect(); err != nil {
			return nil, nil, err
		}
		// Fail at startup rather than spinning on an empty source.
		if _, err := src.WaitForFrame(15 * time.Second); err != nil {
			src.Close()
			return nil, nil, err
		}
		return src, func() error { src.Close(); return nil }, nil
	}

	camCfg := camera.GetPreset(cfg.CameraPreset)
	if camCfg == nil {
		return nil, nil, fmt.Errorf("unknown camera preset %q", cfg.CameraPreset)
	}
	cam, err := camera.Open(cfg.CameraID, *camCfg)
	if err != nil {
		return nil, nil, err
	}
	return cam, cam.Close, nil
}

// parseFlags parses command line flags over environment defaults.
func parseFlags() mirror.Config {
	cfg := mirror.DefaultConfig()

	port := flag.String("port", cfg.Port, "viewer HTTP port (overrides MIRROR_PORT)")
	meshURL := flag.String("mesh-url", cfg.MeshURL, "tracking sidecar websocket URL (overrides MESH_URL)")
	cameraID := flag.Int("camera", cfg.CameraID, "webcam device id (overrides CAMERA_ID)")
	preset := flag.String("preset", cfg.CameraPreset, "capture preset: default, 720p, 1080p, low (overrides CAMERA_PRESET)")
	webrtc := flag.String("webrtc", "", "remote producer signalling URL, e.g. ws://host:8443")
	producer := flag.String("producer", cfg.ProducerName, "remote producer name")
	palettes := flag.String("palettes", cfg.PaletteFile, "TOML palette file (overrides MIRROR_PALETTES)")
	gateModel := flag.String("gate-model", cfg.GateModel, "face detection model path, empty disables the gate")
	debug := flag.Bool("debug", false, "enable verbose debug logging")

	flag.Parse()

	cfg.Port = *port
	cfg.MeshURL = *meshURL
	cfg.CameraID = *cameraID
	cfg.CameraPreset = *preset
	cfg.WebRTCURL = *webrtc
	cfg.ProducerName = *producer
	cfg.PaletteFile = *palettes
	cfg.GateModel = *gateModel
	cfg.Debug = *debug

	return cfg
}
