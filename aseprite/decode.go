// Package aseprite decodes Aseprite (.ase, .aseprite) sprites into flattened
// frames. Importing the package registers the format with the image package,
// so image.Decode returns the first frame of a sprite.
package aseprite

import (
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"slices"
	"time"

	"golang.org/x/image/draw"
)

func init() {
	image.RegisterFormat("aseprite", "????\xe0\xa5", Decode, DecodeConfig)
}

// Frame is one flattened animation frame.
type Frame struct {
	Image    *image.NRGBA
	Duration time.Duration
}

// Sprite is a decoded Aseprite file.
type Sprite struct {
	Width, Height int
	Frames        []Frame
	Tags          []Tag
}

// Decode returns the first frame of the sprite read from r.
func Decode(r io.Reader) (image.Image, error) {
	s, err := DecodeAll(r)
	if err != nil {
		return nil, err
	}
	if len(s.Frames) == 0 {
		return nil, errors.New("aseprite: sprite has no frames")
	}
	return s.Frames[0].Image, nil
}

// DecodeConfig returns the sprite dimensions without decoding pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return image.Config{}, fmt.Errorf("aseprite: reading header: %w", err)
	}
	if h.MagicNumberHeader != MagicNumber {
		return image.Config{}, fmt.Errorf("aseprite: invalid magic number: 0x%X", h.MagicNumberHeader)
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}

// DecodeAll decodes every frame of the sprite, flattening visible layers.
func DecodeAll(r io.Reader) (*Sprite, error) {
	header, frames, err := readFile(r)
	if err != nil {
		return nil, err
	}
	bpp, err := header.bytesPerPixel()
	if err != nil {
		return nil, err
	}

	var (
		palette []color.Color
		layers  []layer
		tags    []Tag
	)
	cels := make([][]cel, len(frames))
	for i, frame := range frames {
		for _, chunk := range frame.Chunks {
			switch chunk.ChunkType {
			case chunkOldPalette:
				// The new palette chunk takes precedence when both are present.
				if len(palette) == 0 {
					if palette, err = parseOldPalette(chunk.ChunkData, palette); err != nil {
						return nil, fmt.Errorf("aseprite: parsing 0x0004 chunk: %w", err)
					}
				}
			case chunkPalette:
				if palette, err = parsePalette(chunk.ChunkData, palette); err != nil {
					return nil, fmt.Errorf("aseprite: parsing 0x2019 chunk: %w", err)
				}
			case chunkLayer:
				l, err := parseLayer(chunk.ChunkData)
				if err != nil {
					return nil, fmt.Errorf("aseprite: parsing 0x2004 chunk: %w", err)
				}
				layers = append(layers, l)
			case chunkCel:
				c, err := parseCel(chunk.ChunkData, bpp)
				if err != nil {
					return nil, fmt.Errorf("aseprite: frame %d: parsing 0x2005 chunk: %w", i, err)
				}
				cels[i] = append(cels[i], c)
			case chunkTags:
				if tags, err = parseTags(chunk.ChunkData); err != nil {
					return nil, fmt.Errorf("aseprite: parsing 0x2018 chunk: %w", err)
				}
			}
		}
	}

	sprite := &Sprite{
		Width:  int(header.Width),
		Height: int(header.Height),
		Frames: make([]Frame, len(frames)),
		Tags:   tags,
	}
	shown := effectiveVisibility(layers)
	for i := range frames {
		img, err := flatten(header, bpp, palette, layers, shown, cels, i)
		if err != nil {
			return nil, err
		}
		sprite.Frames[i] = Frame{
			Image:    img,
			Duration: time.Duration(frames[i].Header.FrameDuration) * time.Millisecond,
		}
	}
	return sprite, nil
}

// flatten composites the cels of frame into a single image. shown is the
// effective visibility of each layer.
func flatten(h *Header, bpp int, palette []color.Color, layers []layer, shown []bool, cels [][]cel, frame int) (*image.NRGBA, error) {
	canvas := image.NewNRGBA(image.Rect(0, 0, int(h.Width), int(h.Height)))

	ordered := slices.Clone(cels[frame])
	slices.SortStableFunc(ordered, func(a, b cel) int {
		if a.order() == b.order() {
			return cmp.Compare(a.ZIndex, b.ZIndex)
		}
		return cmp.Compare(a.order(), b.order())
	})

	for _, c := range ordered {
		l := layer{Flags: layerFlagVisible, Type: layerTypeNormal, Opacity: 255}
		visible := true
		if int(c.LayerIndex) < len(layers) {
			l = layers[c.LayerIndex]
			visible = shown[c.LayerIndex]
		}
		if !visible || l.Type != layerTypeNormal {
			continue
		}

		src := c
		if c.Type == LinkedCelData {
			linked, ok := findCel(cels, int(c.LinkedFrame), c.LayerIndex)
			if !ok {
				return nil, fmt.Errorf("aseprite: frame %d links to missing cel in frame %d", frame, c.LinkedFrame)
			}
			src = linked
		}
		if src.Type != RawImageData && src.Type != CompressedImageData {
			continue
		}

		img := celImage(h, bpp, palette, l, src)
		opacity := int(c.Opacity)
		if h.LayerOpacityValid() {
			opacity = opacity * int(l.Opacity) / 255
		}
		dst := img.Bounds().Add(image.Pt(int(c.X), int(c.Y)))
		draw.DrawMask(canvas, dst, img, image.Point{}, image.NewUniform(color.Alpha{A: uint8(opacity)}), image.Point{}, draw.Over)
	}
	return canvas, nil
}

func findCel(cels [][]cel, frame int, layerIndex WORD) (cel, bool) {
	if frame < 0 || frame >= len(cels) {
		return cel{}, false
	}
	for _, c := range cels[frame] {
		if c.LayerIndex == layerIndex && c.Type != LinkedCelData {
			return c, true
		}
	}
	return cel{}, false
}

// celImage converts the pixel data of a cel to NRGBA.
func celImage(h *Header, bpp int, palette []color.Color, l layer, c cel) *image.NRGBA {
	w, ht := int(c.Width), int(c.Height)
	img := image.NewNRGBA(image.Rect(0, 0, w, ht))
	for i := 0; i < w*ht; i++ {
		p := c.Pixels[i*bpp : (i+1)*bpp]
		var col color.NRGBA
		switch bpp {
		case 4:
			col = color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
		case 2:
			col = color.NRGBA{R: p[0], G: p[0], B: p[0], A: p[1]}
		case 1:
			idx := p[0]
			if (idx == h.TransparentIdx && !l.background()) || int(idx) >= len(palette) {
				continue
			}
			col = color.NRGBAModel.Convert(palette[idx]).(color.NRGBA)
		}
		img.SetNRGBA(i%w, i/w, col)
	}
	return img
}
