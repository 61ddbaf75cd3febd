// Package raster is an offscreen render.Surface backed by an RGBA image.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"github.com/ThatOtherAndrew/Layerview/internal/render"
)

type Canvas struct {
	img    *image.RGBA
	dasher *rasterx.Dasher
}

func New(width, height int) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	return &Canvas{
		img:    img,
		dasher: rasterx.NewDasher(width, height, scanner),
	}
}

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) Clear(col color.RGBA) {
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: col}, image.Point{}, draw.Src)
}

// Line strokes one round-capped segment.
func (c *Canvas) Line(x0, y0, x1, y1 float64, s render.Stroke) {
	for _, v := range [...]float64{x0, y0, x1, y1, s.Width} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
	}
	d := c.dasher
	d.Clear()
	d.SetStroke(fixed.Int26_6(s.Width*64), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.ArcClip, nil, 0)
	d.SetColor(s.Color)
	d.Start(rasterx.ToFixedP(x0, y0))
	d.Line(rasterx.ToFixedP(x1, y1))
	d.Stop(false)
	d.Draw()
}

func (c *Canvas) Image() *image.RGBA { return c.img }

func (c *Canvas) WritePNG(w io.Writer) error {
	return png.Encode(w, c.img)
}

func (c *Canvas) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
