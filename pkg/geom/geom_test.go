package geom

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Point
		expected float64
	}{
		{
			name:     "same point",
			a:        Point{X: 0.5, Y: 0.5},
			b:        Point{X: 0.5, Y: 0.5},
			expected: 0,
		},
		{
			name:     "unit horizontal",
			a:        Point{X: 0, Y: 0},
			b:        Point{X: 1, Y: 0},
			expected: 1,
		},
		{
			name:     "3-4-5 triangle",
			a:        Point{X: 0, Y: 0},
			b:        Point{X: 0.3, Y: 0.4},
			expected: 0.5,
		},
		{
			name:     "depth is ignored",
			a:        Point{X: 0, Y: 0, Z: 5},
			b:        Point{X: 1, Y: 0, Z: -5},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLerp(t *testing.T) {
	tests := []struct {
		name             string
		start, end, t    float64
		expected         float64
	}{
		{name: "t=0 returns start", start: 2, end: 10, t: 0, expected: 2},
		{name: "t=1 returns end", start: 2, end: 10, t: 1, expected: 10},
		{name: "midpoint", start: 2, end: 10, t: 0.5, expected: 6},
		{name: "smoothing step", start: 0, end: 1, t: 0.08, expected: 0.08},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lerp(tt.start, tt.end, tt.t)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-0.2, 0, 1); got != 0 {
		t.Errorf("below range: got %v, want 0", got)
	}
	if got := Clamp(1.7, 0, 1); got != 1 {
		t.Errorf("above range: got %v, want 1", got)
	}
	if got := Clamp(0.42, 0, 1); got != 0.42 {
		t.Errorf("in range: got %v, want 0.42", got)
	}
}

func TestEyeAspectRatio(t *testing.T) {
	idx := EyeIndices{Outer: 0, Inner: 1, Upper: 2, Lower: 3}

	tests := []struct {
		name      string
		landmarks []Point
		expected  float64
	}{
		{
			name: "open eye",
			landmarks: []Point{
				{X: 0.40, Y: 0.50},
				{X: 0.50, Y: 0.50},
				{X: 0.45, Y: 0.48},
				{X: 0.45, Y: 0.52},
			},
			expected: 0.4,
		},
		{
			name: "closed eye",
			landmarks: []Point{
				{X: 0.40, Y: 0.50},
				{X: 0.50, Y: 0.50},
				{X: 0.45, Y: 0.50},
				{X: 0.45, Y: 0.50},
			},
			expected: 0,
		},
		{
			name: "degenerate width reads as closed",
			landmarks: []Point{
				{X: 0.45, Y: 0.50},
				{X: 0.45, Y: 0.50},
				{X: 0.45, Y: 0.48},
				{X: 0.45, Y: 0.52},
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EyeAspectRatio(tt.landmarks, idx)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEyeAspectRatio_IndexOutOfRange(t *testing.T) {
	idx := EyeIndices{Outer: 0, Inner: 1, Upper: 2, Lower: 99}
	landmarks := []Point{{}, {}, {}}
	if got := EyeAspectRatio(landmarks, idx); got != 0 {
		t.Errorf("got %v, want 0 for out-of-range index", got)
	}
}
