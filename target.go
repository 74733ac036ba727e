package tilemap

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Target is the surface a Map renders onto.
type Target interface {
	// Fill paints the whole target with c.
	Fill(c color.Color)
	// DrawImage composites the sr region of src over the target with the
	// top-left corner of sr placed at dp.
	DrawImage(src image.Image, sr image.Rectangle, dp image.Point)
}

// ImageTarget adapts a draw.Image to Target.
type ImageTarget struct {
	Dst draw.Image
}

// NewImageTarget returns a Target drawing into dst.
func NewImageTarget(dst draw.Image) *ImageTarget {
	return &ImageTarget{Dst: dst}
}

func (t *ImageTarget) Fill(c color.Color) {
	draw.Draw(t.Dst, t.Dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (t *ImageTarget) DrawImage(src image.Image, sr image.Rectangle, dp image.Point) {
	origin := t.Dst.Bounds().Min.Add(dp)
	r := image.Rectangle{Min: origin, Max: origin.Add(sr.Size())}
	draw.Draw(t.Dst, r, src, sr.Min, draw.Over)
}
