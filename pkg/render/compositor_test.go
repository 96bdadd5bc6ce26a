package render

import (
	"image"
	"image/color"
	"math/rand"
	"testing"
	"time"

	"github.com/teslashibe/glitchmirror/pkg/frame"
	"github.com/teslashibe/glitchmirror/pkg/geom"
	"github.com/teslashibe/glitchmirror/pkg/history"
	"github.com/teslashibe/glitchmirror/pkg/scene"
)

func testScene(t *testing.T) *scene.State {
	t.Helper()
	gen := scene.NewGenerator(nil, rand.New(rand.NewSource(7)))
	return gen.Generate()
}

func testFrame(t *testing.T, w, h int) frame.Frame {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return frame.FromImage(img)
}

func testPair(t *testing.T) history.FramePair {
	t.Helper()
	mk := func() frame.Bitmap {
		img := image.NewRGBA(image.Rect(0, 0, 12, 8))
		return frame.FromImage(img)
	}
	return history.FramePair{Left: mk(), Right: mk(), When: time.Unix(1, 0)}
}

func TestRenderProducesCanvasSizedFrame(t *testing.T) {
	c := New(320, 240, rand.New(rand.NewSource(1)))

	buf := history.NewBuffer()
	for i := 0; i < 10; i++ {
		buf.Push(testPair(t))
	}

	out := c.Render(Input{
		Frame:   testFrame(t, 320, 240),
		Scene:   testScene(t),
		Head:    geom.Center,
		History: buf,
		Flash:   0.9,
		Now:     time.Unix(100, 0),
	})

	if out == nil {
		t.Fatal("Render returned nil")
	}
	if got := out.Bounds(); got.Dx() != 320 || got.Dy() != 240 {
		t.Errorf("Render bounds = %v, want 320x240", got)
	}
}

func TestRenderWithoutCaptureFrame(t *testing.T) {
	c := New(160, 120, rand.New(rand.NewSource(2)))

	out := c.Render(Input{
		Scene:   testScene(t),
		Head:    geom.Center,
		History: history.NewBuffer(),
		Now:     time.Unix(100, 0),
	})

	if got := out.Bounds(); got.Dx() != 160 || got.Dy() != 120 {
		t.Errorf("Render bounds = %v, want 160x120", got)
	}
}

func TestPlaceSkipsShapesWithoutHistory(t *testing.T) {
	c := New(320, 240, rand.New(rand.NewSource(3)))

	in := Input{Scene: testScene(t), History: history.NewBuffer()}
	if placed := c.place(in, 0, 0); len(placed) != 0 {
		t.Errorf("place with empty history returned %d shapes, want 0", len(placed))
	}

	in.History.Push(testPair(t))
	placed := c.place(in, 0, 0)
	if len(placed) != len(in.Scene.Shapes) {
		t.Errorf("place returned %d shapes, want %d", len(placed), len(in.Scene.Shapes))
	}
}

func TestParallax(t *testing.T) {
	c := New(1000, 500, rand.New(rand.NewSource(4)))

	tests := []struct {
		name   string
		head   geom.Point
		px, py float64
	}{
		{"center", geom.Point{X: 0.5, Y: 0.5}, 0, 0},
		{"far left", geom.Point{X: 0, Y: 0.5}, -500, 0},
		{"bottom right", geom.Point{X: 1, Y: 1}, 500, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			px, py := c.parallax(tt.head)
			if px != tt.px || py != tt.py {
				t.Errorf("parallax(%v) = (%v, %v), want (%v, %v)", tt.head, px, py, tt.px, tt.py)
			}
		})
	}
}

func TestPlaceAppliesDepthScaledParallax(t *testing.T) {
	c := New(1000, 1000, rand.New(rand.NewSource(5)))

	st := &scene.State{
		Palette: scene.BuiltinPalettes()[0],
		Shapes: []scene.Shape{
			{ID: "a", X: 0.5, Y: 0.5, Scale: 1.0, DelayFrames: 2},
		},
	}
	buf := history.NewBuffer()
	buf.Push(testPair(t))

	placed := c.place(Input{Scene: st, History: buf}, 100, 0)
	if len(placed) != 1 {
		t.Fatalf("place returned %d shapes, want 1", len(placed))
	}

	// depth = scale * 0.5, so a unit-scale shape moves half the parallax.
	want := 0.5*1000 + 100*0.5
	if placed[0].x != want {
		t.Errorf("placed x = %v, want %v", placed[0].x, want)
	}
}

func TestSelectEyeStablePerID(t *testing.T) {
	pair := testPair(t)

	evens := selectEye("0abc", pair)
	if evens != pair.Left {
		t.Error("even id byte should select left eye")
	}
	odds := selectEye("1abc", pair)
	if odds != pair.Right {
		t.Error("odd id byte should select right eye")
	}

	for i := 0; i < 5; i++ {
		if selectEye("0abc", pair) != evens {
			t.Fatal("eye selection not stable across calls")
		}
	}
}

func TestComposeCropInvert(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 255, G: 0, B: 255, A: 255})
	src.SetRGBA(1, 0, color.RGBA{R: 0, G: 255, B: 0, A: 255})

	// Mid-gray tint keeps the overlay blend close to identity, so the
	// inversion dominates the result.
	out := composeCrop(src, scene.ModeInvert, color.RGBA{R: 128, G: 128, B: 128, A: 255}, 0, 1)

	p := out.RGBAAt(0, 0)
	if p.R > 30 || p.B > 30 {
		t.Errorf("inverted bright channels should be dark, got R=%d B=%d", p.R, p.B)
	}
	if p.G < 220 {
		t.Errorf("inverted dark channel should be bright, got G=%d", p.G)
	}
}

func TestComposeCropFoldsOpacity(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	out := composeCrop(src, scene.ModeRGBSplit, color.RGBA{R: 128, G: 128, B: 128, A: 255}, 0, 0.5)
	p := out.RGBAAt(0, 0)
	if p.A < 126 || p.A > 129 {
		t.Errorf("alpha = %d, want ~128 for 0.5 opacity", p.A)
	}
	if p.R > p.A || p.G > p.A || p.B > p.A {
		t.Errorf("color channels must be premultiplied, got %+v", p)
	}
}

func TestComposeCropPremultiplied(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	for _, opacity := range []float64{0.16, 0.4, 0.8, 1.0} {
		out := composeCrop(src, scene.ModeRGBSplit, color.RGBA{R: 255, G: 255, B: 255, A: 255}, 0, opacity)
		p := out.RGBAAt(0, 0)
		if p.R > p.A || p.G > p.A || p.B > p.A {
			t.Errorf("opacity %.2f: channels exceed alpha: %+v", opacity, p)
		}
		want := uint8(opacity*255 + 0.5)
		if p.A != want {
			t.Errorf("opacity %.2f: alpha = %d, want %d", opacity, p.A, want)
		}
	}
}

func TestScreenUniformBrightens(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 40, G: 40, B: 40, A: 255})

	screenUniform(img, color.RGBA{R: 255, G: 255, B: 255, A: 255}, 0.5)

	got := img.RGBAAt(0, 0)
	if got.R <= 40 {
		t.Errorf("screen blend should brighten, got R=%d", got.R)
	}

	before := img.RGBAAt(1, 1)
	screenUniform(img, color.RGBA{R: 255, G: 255, B: 255, A: 255}, 0)
	if img.RGBAAt(1, 1) != before {
		t.Error("zero strength should be a no-op")
	}
}

func TestModWrap(t *testing.T) {
	tests := []struct {
		v, m, want float64
	}{
		{0, 80, 0},
		{85, 80, 5},
		{-5, 80, 75},
		{160, 80, 0},
	}
	for _, tt := range tests {
		if got := mod(tt.v, tt.m); got != tt.want {
			t.Errorf("mod(%v, %v) = %v, want %v", tt.v, tt.m, got, tt.want)
		}
	}
}
