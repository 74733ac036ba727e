package tilemap

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// RebuildStaticComposite redraws every static visible basic tile into the
// static composite. Tiles with negative world coordinates shift the whole
// composite so that it starts at zero; the shift is kept as NegativeOffset.
func (m *Map) RebuildStaticComposite() error {
	var (
		minP, maxP image.Point
		found      bool
	)
	for _, t := range m.tiles[Basic] {
		if t.Animated() || !t.visible {
			continue
		}
		if t.img == nil {
			return fmt.Errorf("tilemap: static tile %q at %v: %w", t.id, t.base, ErrNoImage)
		}
		end := t.base.Add(t.Size())
		if !found {
			minP, maxP, found = t.base, end, true
			continue
		}
		minP.X = min(minP.X, t.base.X)
		minP.Y = min(minP.Y, t.base.Y)
		maxP.X = max(maxP.X, end.X)
		maxP.Y = max(maxP.Y, end.Y)
	}

	offset := image.Point{}
	size := image.Pt(1, 1)
	if found {
		offset = image.Pt(max(0, -minP.X), max(0, -minP.Y))
		size = maxP.Add(offset)
		size.X = max(size.X, 1)
		size.Y = max(size.Y, 1)
	}

	surface := image.NewRGBA(image.Rectangle{Max: size})
	drawn := 0
	for _, t := range m.tiles[Basic] {
		if t.Animated() || !t.visible {
			continue
		}
		at := t.base.Add(offset)
		b := t.img.Bounds()
		draw.Draw(surface, image.Rectangle{Min: at, Max: at.Add(b.Size())}, t.img, b.Min, draw.Over)
		drawn++
	}

	m.composite = surface
	m.negOffset = offset
	m.staticDirty = false
	Logger().Debug("static composite rebuilt", "tiles", drawn, "size", size, "offset", offset)
	return nil
}
