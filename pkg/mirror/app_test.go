package mirror

import (
	"errors"
	"testing"

	"github.com/teslashibe/glitchmirror/pkg/camera"
	"github.com/teslashibe/glitchmirror/pkg/facemesh/detection"
	"github.com/teslashibe/glitchmirror/pkg/geom"
)

type stubGate struct {
	dets []detection.Detection
	err  error
}

func (g *stubGate) Detect([]byte) ([]detection.Detection, error) { return g.dets, g.err }
func (g *stubGate) Close() error                                 { return nil }

type countingTracker struct {
	calls     int
	landmarks []geom.Point
}

func (t *countingTracker) Detect([]byte) ([]geom.Point, error) {
	t.calls++
	return t.landmarks, nil
}

func (t *countingTracker) Close() error { return nil }

func TestDetectGatesOnBestFace(t *testing.T) {
	confident := detection.Detection{X: 0.4, Y: 0.4, W: 0.2, H: 0.2, Confidence: 0.9}
	weak := detection.Detection{X: 0.1, Y: 0.1, W: 0.05, H: 0.05, Confidence: 0.2}

	tests := []struct {
		name        string
		dets        []detection.Detection
		gateErr     error
		wantTracked bool
	}{
		{"no faces", nil, nil, false},
		{"confident face", []detection.Detection{confident}, nil, true},
		{"only weak faces", []detection.Detection{weak, weak}, nil, false},
		{"weak crowd with one confident face", []detection.Detection{weak, confident, weak}, nil, true},
		{"gate failure falls through to tracker", nil, errors.New("model busted"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := &countingTracker{landmarks: []geom.Point{{X: 0.5, Y: 0.5}}}
			app := &App{
				gate:       &stubGate{dets: tt.dets, err: tt.gateErr},
				gateThresh: detection.DefaultConfig().ConfidenceThresh,
				tracker:    tracker,
			}

			landmarks := app.detect(nil)

			if tt.wantTracked && tracker.calls != 1 {
				t.Errorf("tracker calls = %d, want 1", tracker.calls)
			}
			if !tt.wantTracked {
				if tracker.calls != 0 {
					t.Errorf("tracker called %d times on a gated-out frame", tracker.calls)
				}
				if landmarks != nil {
					t.Error("gated-out frame should produce no landmarks")
				}
			}
		})
	}
}

func TestDetectWithoutGateAlwaysTracks(t *testing.T) {
	tracker := &countingTracker{}
	app := &App{tracker: tracker}

	app.detect(nil)
	if tracker.calls != 1 {
		t.Errorf("tracker calls = %d, want 1 with gating disabled", tracker.calls)
	}
}

func TestDefaultConfigCameraPresetResolves(t *testing.T) {
	cfg := DefaultConfig()
	if camera.GetPreset(cfg.CameraPreset) == nil {
		t.Errorf("default camera preset %q is not a known preset", cfg.CameraPreset)
	}
}
