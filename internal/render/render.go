package render

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/fogleman/gg"

	"github.com/lalcmellkmal/kanatcha/internal/config"
)

// GG rasterizes positioned glyphs onto a white canvas using fogleman/gg.
type GG struct {
	cfg config.Render
}

// NewGG validates the configured font up front so a missing file fails at
// startup instead of on the first challenge.
func NewGG(cfg config.Render) (*GG, error) {
	if cfg.FontPath == "" {
		return nil, fmt.Errorf("no font configured")
	}
	if _, err := os.Stat(cfg.FontPath); err != nil {
		return nil, fmt.Errorf("font %s: %w", cfg.FontPath, err)
	}
	return &GG{cfg: cfg}, nil
}

// Render draws the glyphs and returns PNG bytes.
func (g *GG) Render(ctx context.Context, glyphs []Glyph) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dc := gg.NewContext(g.cfg.ImageWidth, g.cfg.ImageHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	if err := dc.LoadFontFace(g.cfg.FontPath, g.cfg.FontSize); err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}

	mid := g.cfg.FontSize / 2
	for _, gl := range glyphs {
		dc.Push()
		dc.RotateAbout(gg.Radians(gl.TiltDeg), gl.X+mid, gl.Y-mid)
		dc.ShearAbout(gl.SkewX, 0, gl.X, gl.Y)
		dc.SetColor(gl.Color)
		dc.DrawString(gl.Char, gl.X, gl.Y)
		dc.Pop()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
