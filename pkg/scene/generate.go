package scene

import (
	"image/color"
	"math/rand"

	"github.com/google/uuid"
)

// Generation ranges. Shape counts use the half-open floor-of-uniform
// convention, so the maximum observed count is ShapeCountMax-1.
const (
	ShapeCountMin = 20
	ShapeCountMax = 35

	DelayFramesMin = 2
	DelayFramesMax = 45

	FocalScaleMin = 1.8
	FocalScaleMax = 2.5

	ShapeScaleMin = 0.3
	ShapeScaleMax = 1.4

	PositionMin = 0.05
	PositionMax = 0.95

	GlitchMin = 0.1
	GlitchMax = 0.9

	// PrimaryColorChance is the probability a shape takes the palette's
	// primary color; otherwise it takes the fixed highlight color.
	PrimaryColorChance = 0.7
)

// Highlight is the fixed accent used for non-primary shapes and trail
// color substitution.
var Highlight = color.RGBA{R: 0xe8, G: 0xe8, B: 0xf0, A: 0xff}

// Generator produces scene states from a palette table and a random
// source. Inject a seeded rand.Rand for deterministic tests.
type Generator struct {
	palettes []Palette
	rng      *rand.Rand
}

// NewGenerator creates a generator over the given palette table. An empty
// table falls back to the built-in one.
func NewGenerator(palettes []Palette, rng *rand.Rand) *Generator {
	if len(palettes) == 0 {
		palettes = BuiltinPalettes()
	}
	return &Generator{palettes: palettes, rng: rng}
}

// Generate produces a fresh scene: one palette chosen uniformly from the
// table, an independent 50/50 glitch mode, and 20-34 shapes of which
// exactly the first is focal.
func (g *Generator) Generate() *State {
	palette := g.palettes[g.rng.Intn(len(g.palettes))]

	mode := ModeRGBSplit
	if g.rng.Float64() < 0.5 {
		mode = ModeInvert
	}

	count := ShapeCountMin + g.rng.Intn(ShapeCountMax-ShapeCountMin)
	shapes := make([]Shape, 0, count)
	for i := 0; i < count; i++ {
		shapes = append(shapes, g.shape(i, palette))
	}

	return &State{
		Palette: palette,
		Mode:    mode,
		Shapes:  shapes,
	}
}

func (g *Generator) shape(i int, palette Palette) Shape {
	s := Shape{
		ID:              uuid.NewString(),
		Kind:            KindRectangle,
		DelayFrames:     DelayFramesMin + g.rng.Intn(DelayFramesMax-DelayFramesMin),
		GlitchIntensity: g.uniform(GlitchMin, GlitchMax),
	}

	if i == 0 {
		// The focal shape anchors the scene: centered and large.
		s.X, s.Y = 0.5, 0.5
		s.Scale = g.uniform(FocalScaleMin, FocalScaleMax)
	} else {
		s.X = g.uniform(PositionMin, PositionMax)
		s.Y = g.uniform(PositionMin, PositionMax)
		s.Scale = g.uniform(ShapeScaleMin, ShapeScaleMax)
	}

	if g.rng.Float64() < PrimaryColorChance {
		s.Color = palette.Primary
	} else {
		s.Color = Highlight
	}

	return s
}

func (g *Generator) uniform(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}
