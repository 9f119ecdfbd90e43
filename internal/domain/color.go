package domain

import (
	"fmt"
	"image/color"
)

// ParseHexColor parses a #RRGGBB color. Invalid input yields opaque black,
// the stroke model's default ink.
func ParseHexColor(s string) color.RGBA {
	c := color.RGBA{A: 0xff}
	if len(s) != 7 || s[0] != '#' {
		return c
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return c
	}
	c.R, c.G, c.B = r, g, b
	return c
}
