package scene

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// BuiltinPalettes returns the default 8-entry palette table.
func BuiltinPalettes() []Palette {
	return []Palette{
		{Name: "signal", Background: hex("#0a0a12"), Primary: hex("#00ffc3"), Secondary: hex("#ff0066")},
		{Name: "static", Background: hex("#0d0d0d"), Primary: hex("#f0f0f0"), Secondary: hex("#5c5c6e")},
		{Name: "phosphor", Background: hex("#041004"), Primary: hex("#33ff57"), Secondary: hex("#0e5c1f")},
		{Name: "amber", Background: hex("#140d02"), Primary: hex("#ffb000"), Secondary: hex("#804f00")},
		{Name: "vapor", Background: hex("#120a1c"), Primary: hex("#ff71ce"), Secondary: hex("#01cdfe")},
		{Name: "blueprint", Background: hex("#041428"), Primary: hex("#7fd4ff"), Secondary: hex("#1d5d8f")},
		{Name: "thermal", Background: hex("#100208"), Primary: hex("#ff4d1a"), Secondary: hex("#ffd21a")},
		{Name: "xray", Background: hex("#06080e"), Primary: hex("#c8d8ff"), Secondary: hex("#3f517a")},
	}
}

// paletteFile is the TOML override schema:
//
//	[[palette]]
//	name = "signal"
//	background = "#0a0a12"
//	primary = "#00ffc3"
//	secondary = "#ff0066"
type paletteFile struct {
	Palette []paletteEntry `toml:"palette"`
}

type paletteEntry struct {
	Name       string `toml:"name"`
	Background string `toml:"background"`
	Primary    string `toml:"primary"`
	Secondary  string `toml:"secondary"`
}

// LoadPalettes reads a palette table from a TOML file.
func LoadPalettes(path string) ([]Palette, error) {
	var file paletteFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("parse palettes: %w", err)
	}
	if len(file.Palette) == 0 {
		return nil, fmt.Errorf("parse palettes: no [[palette]] entries in %s", path)
	}

	palettes := make([]Palette, 0, len(file.Palette))
	for i, e := range file.Palette {
		bg, err := parseHex(e.Background)
		if err != nil {
			return nil, fmt.Errorf("palette %d background: %w", i, err)
		}
		pri, err := parseHex(e.Primary)
		if err != nil {
			return nil, fmt.Errorf("palette %d primary: %w", i, err)
		}
		sec, err := parseHex(e.Secondary)
		if err != nil {
			return nil, fmt.Errorf("palette %d secondary: %w", i, err)
		}
		palettes = append(palettes, Palette{
			Name:       e.Name,
			Background: bg,
			Primary:    pri,
			Secondary:  sec,
		})
	}
	return palettes, nil
}

func parseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("want #rrggbb, got %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("want #rrggbb, got %q", s)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}

// hex parses a compile-time color literal; it panics on malformed input.
func hex(s string) color.RGBA {
	c, err := parseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}
