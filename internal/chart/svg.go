package chart

import (
	"fmt"
	"html"
	"math"
	"strings"
)

// SVG renders the series as a pie chart of the given pixel size. Each
// wedge uses the translucent fill and opaque stroke of its color.
func SVG(s Series, size int) string {
	if size <= 0 {
		size = 300
	}
	c := float64(size) / 2
	r := c - 2

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" role="img">`,
		size, size, size, size)

	for _, sl := range s.Slices() {
		if sl.Fraction <= 0 {
			continue
		}
		title := html.EscapeString(sl.Label)
		if sl.Fraction >= 0.9999 {
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-width="1"><title>%s</title></circle>`,
				c, c, r, sl.Color.Fill(), sl.Color.Stroke(), title)
			continue
		}
		x1, y1 := point(c, r, sl.Start)
		x2, y2 := point(c, r, sl.End)
		large := 0
		if sl.End-sl.Start > math.Pi {
			large = 1
		}
		fmt.Fprintf(&b, `<path d="M%.2f,%.2f L%.2f,%.2f A%.2f,%.2f 0 %d 1 %.2f,%.2f Z" fill="%s" stroke="%s" stroke-width="1"><title>%s</title></path>`,
			c, c, x1, y1, r, r, large, x2, y2, sl.Color.Fill(), sl.Color.Stroke(), title)
	}

	b.WriteString(`</svg>`)
	return b.String()
}

// point returns the coordinate at angle a, measured clockwise from 12 o'clock.
func point(c, r, a float64) (float64, float64) {
	return c + r*math.Sin(a), c - r*math.Cos(a)
}
