package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Color is an RGB triple as sent on the wire.
type Color struct {
	R, G, B uint8
}

// FallbackColor is substituted for any stored color that cannot be decoded.
var FallbackColor = Color{R: 0, G: 255, B: 0}

// ValidColor reports whether s is a well-formed #RRGGBB string.
func ValidColor(s string) bool {
	return colorPattern.MatchString(s)
}

// DecodeColor parses "#RRGGBB". Malformed input yields FallbackColor so a bad
// stored value never blocks rendering.
func DecodeColor(s string) Color {
	if !ValidColor(s) {
		return FallbackColor
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return FallbackColor
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// EncodeColor clamps each channel into [0,255] and formats as lowercase #rrggbb.
func EncodeColor(r, g, b int) string {
	return fmt.Sprintf("#%02x%02x%02x", clampChannel(r), clampChannel(g), clampChannel(b))
}

// Hex returns the canonical textual form.
func (c Color) Hex() string {
	return EncodeColor(int(c.R), int(c.G), int(c.B))
}

// Triple returns the channels in wire order.
func (c Color) Triple() [3]int {
	return [3]int{int(c.R), int(c.G), int(c.B)}
}

func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
