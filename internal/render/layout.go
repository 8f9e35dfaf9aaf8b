// Package render turns a challenge spec into fully resolved visual
// instructions and rasterizes them to a PNG. Layout (advance, tilt, skew) is
// computed here; the drawing backend only paints what it is told.
package render

import (
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/lalcmellkmal/kanatcha/internal/challenge"
	"github.com/lalcmellkmal/kanatcha/internal/config"
)

// Glyph is one positioned character ready for rasterization.
type Glyph struct {
	Char    string
	Color   color.Color
	TiltDeg float64
	SkewX   float64
	X, Y    float64
}

var (
	requiredColor = color.Color(color.Black)
	bonusColor    = color.Color(color.Gray{Y: 0x80})
)

// Layout resolves a spec into positioned glyphs: required glyphs in black,
// the bonus (if any) in gray, each with a random tilt inside the configured
// range (sign chosen per glyph), a random horizontal skew, and a horizontal
// advance of cos(tilt)·fontSize·(spacing + jitter).
func Layout(sp challenge.Spec, cfg config.Render, r *rand.Rand) []Glyph {
	chars := make([]rune, 0, len(sp.Required)+1)
	chars = append(chars, sp.Required...)
	if sp.Bonus != 0 {
		chars = append(chars, sp.Bonus)
	}

	glyphs := make([]Glyph, 0, len(chars))
	x, y := 0.0, cfg.FontSize
	for i, ch := range chars {
		tilt := cfg.TiltMin + r.Float64()*(cfg.TiltMax-cfg.TiltMin)
		if r.Float64() < 0.5 {
			tilt = -tilt
		}
		col := requiredColor
		if sp.Bonus != 0 && i == len(chars)-1 {
			col = bonusColor
		}
		glyphs = append(glyphs, Glyph{
			Char:    string(ch),
			Color:   col,
			TiltDeg: tilt,
			SkewX:   r.Float64()*(cfg.Skew*2) - cfg.Skew,
			X:       x,
			Y:       y,
		})
		advance := math.Cos(tilt*math.Pi/180) * cfg.FontSize
		x += advance * (cfg.Spacing + r.Float64()*0.1)
	}
	return glyphs
}
