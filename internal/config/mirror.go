// Package config provides configuration helpers for glitchmirror commands.
package config

import (
	"os"
	"strconv"
)

// Defaults for the mirror session.
const (
	DefaultPort    = "8090"
	DefaultMeshURL = "ws://localhost:9464/mesh"
	DefaultWidth   = 1280
	DefaultHeight  = 720
)

// Port returns the viewer port from MIRROR_PORT, or the default.
func Port() string {
	if p := os.Getenv("MIRROR_PORT"); p != "" {
		return p
	}
	return DefaultPort
}

// MeshURL returns the landmark sidecar URL from MESH_URL, or the default.
func MeshURL() string {
	if u := os.Getenv("MESH_URL"); u != "" {
		return u
	}
	return DefaultMeshURL
}

// CameraID returns the capture device index from CAMERA_ID, or 0.
func CameraID() int {
	return envInt("CAMERA_ID", 0)
}

// CanvasWidth returns the output width from MIRROR_WIDTH, or the default.
func CanvasWidth() int {
	return envInt("MIRROR_WIDTH", DefaultWidth)
}

// CanvasHeight returns the output height from MIRROR_HEIGHT, or the default.
func CanvasHeight() int {
	return envInt("MIRROR_HEIGHT", DefaultHeight)
}

// PaletteFile returns the optional TOML palette override path from
// MIRROR_PALETTES. Empty means use the built-in table.
func PaletteFile() string {
	return os.Getenv("MIRROR_PALETTES")
}

// CameraPreset returns the capture preset name from CAMERA_PRESET, or
// "default".
func CameraPreset() string {
	if p := os.Getenv("CAMERA_PRESET"); p != "" {
		return p
	}
	return "default"
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
