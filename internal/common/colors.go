package common

import (
	"fmt"
	"image/color"
)

// Value colours: negative values shade towards red, positive towards green.
var (
	NegativeColor = color.RGBA{200, 50, 50, 255}
	NeutralColor  = color.RGBA{120, 120, 120, 255}
	PositiveColor = color.RGBA{50, 200, 50, 255}
)

// SeriesColors are assigned to chart series in order.
var SeriesColors = []color.RGBA{
	{50, 100, 200, 255}, // blue
	{200, 50, 50, 255},  // red
	{50, 200, 50, 255},  // green
	{200, 200, 50, 255}, // yellow
}

// ValueColor blends from NeutralColor towards NegativeColor or PositiveColor
// by |v| / scale.
func ValueColor(v, scale float64) color.RGBA {
	if scale <= 0 {
		return NeutralColor
	}
	t := Clamp(v/scale, -1, 1)
	target := PositiveColor
	if t < 0 {
		target = NegativeColor
		t = -t
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + t*(float64(b)-float64(a)) + 0.5)
	}
	return color.RGBA{
		R: mix(NeutralColor.R, target.R),
		G: mix(NeutralColor.G, target.G),
		B: mix(NeutralColor.B, target.B),
		A: 255,
	}
}

// SeriesColor returns the colour of the i-th series, cycling.
func SeriesColor(i int) color.RGBA {
	return SeriesColors[Abs(i)%len(SeriesColors)]
}

// Hex renders c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
