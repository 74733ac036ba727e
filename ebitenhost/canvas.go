// Package ebitenhost runs a tilemap.Map inside an ebiten game.
package ebitenhost

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// DefaultMaxIdleFrames is how long a texture may go unused before Canvas
// releases it.
const DefaultMaxIdleFrames = 120

type texture struct {
	img      *ebiten.Image
	lastUsed uint64
}

// Canvas is a tilemap.Target drawing onto an *ebiten.Image. Source images
// are uploaded to the GPU on first use and reused while they keep being
// drawn, so the static composite is uploaded once per rebuild.
type Canvas struct {
	dst      *ebiten.Image
	textures map[image.Image]*texture
	frame    uint64

	// MaxIdleFrames is the number of Bind calls a texture may go unused
	// before it is deallocated.
	MaxIdleFrames uint64
}

// NewCanvas returns an unbound canvas.
func NewCanvas() *Canvas {
	return &Canvas{
		textures:      make(map[image.Image]*texture),
		MaxIdleFrames: DefaultMaxIdleFrames,
	}
}

// Bind makes dst the destination of the following draws. Call it once per
// frame, before Map.Render.
func (c *Canvas) Bind(dst *ebiten.Image) {
	c.dst = dst
	c.frame++
	for src, t := range c.textures {
		if c.frame-t.lastUsed > c.MaxIdleFrames {
			t.img.Deallocate()
			delete(c.textures, src)
		}
	}
}

// Textures returns the number of uploaded images.
func (c *Canvas) Textures() int { return len(c.textures) }

func (c *Canvas) Fill(col color.Color) {
	c.dst.Fill(col)
}

func (c *Canvas) DrawImage(src image.Image, sr image.Rectangle, dp image.Point) {
	tex := c.texture(src)
	// Uploaded textures always start at (0,0).
	sub := tex.SubImage(sr.Sub(src.Bounds().Min)).(*ebiten.Image)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(dp.X), float64(dp.Y))
	c.dst.DrawImage(sub, op)
}

func (c *Canvas) texture(src image.Image) *ebiten.Image {
	if img, ok := src.(*ebiten.Image); ok {
		return img
	}
	t, ok := c.textures[src]
	if !ok {
		t = &texture{img: ebiten.NewImageFromImage(src)}
		c.textures[src] = t
	}
	t.lastUsed = c.frame
	return t.img
}
