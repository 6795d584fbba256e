// Package chart turns budget allocations into colored pie slices. Both the
// play view and the result page draw from the same series and palette.
package chart

import (
	"fmt"
	"math"
)

// GoldenAngle is the hue step between consecutive slices, in degrees.
const GoldenAngle = 137.50776405003785

const (
	sliceSaturation = 0.7
	sliceLightness  = 0.5
)

// RemainingColor is reserved for the "Remaining" slice.
var RemainingColor = RGB{R: 54, G: 162, B: 235}

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

// Prefix returns "rgba(r, g, b, " for appending an alpha.
func (c RGB) Prefix() string {
	return fmt.Sprintf("rgba(%d, %d, %d, ", c.R, c.G, c.B)
}

// Fill is the translucent slice fill.
func (c RGB) Fill() string { return c.Prefix() + "0.5)" }

// Stroke is the opaque slice border.
func (c RGB) Stroke() string { return c.Prefix() + "1)" }

// Hex returns "#RRGGBB", as used by lipgloss and fpdf callers.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// GenerateColors returns count colors spaced by the golden angle. When
// remainingLast is set the final slot gets RemainingColor.
func GenerateColors(count int, remainingLast bool) []RGB {
	if count <= 0 {
		return nil
	}
	out := make([]RGB, count)
	for i := range count {
		if remainingLast && i == count-1 {
			out[i] = RemainingColor
			continue
		}
		hue := math.Mod(float64(i)*GoldenAngle, 360)
		out[i] = HSLToRGB(hue/360, sliceSaturation, sliceLightness)
	}
	return out
}

// HSLToRGB converts h, s, l in [0,1] to 8-bit RGB.
func HSLToRGB(h, s, l float64) RGB {
	if s == 0 {
		v := channel(l)
		return RGB{R: v, G: v, B: v}
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return RGB{
		R: channel(hueToRGB(p, q, h+1.0/3)),
		G: channel(hueToRGB(p, q, h)),
		B: channel(hueToRGB(p, q, h-1.0/3)),
	}
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

func channel(v float64) uint8 {
	x := math.Round(v * 255)
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x)
}
