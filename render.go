package tilemap

import "image"

// IsOnScreen reports whether t, placed relative to the camera, intersects
// the viewport. It works on a clone and leaves t untouched.
func (m *Map) IsOnScreen(t *Tile) bool {
	c := t.Clone()
	c.setPosition(t.base.Sub(m.camera))
	if c.img == nil {
		return false
	}
	return c.rect.Overlaps(image.Rectangle{Max: m.viewport})
}

// applyCameraOffset moves the display position of t to base minus camera.
func (m *Map) applyCameraOffset(t *Tile) {
	t.setPosition(t.base.Sub(m.camera))
}

// Render draws the visible part of the map onto target and refreshes the
// on-screen and invisible sets.
//
// Static tiles come from the static composite in a single draw; animated
// basic tiles are drawn one by one on top of it. Spawn and event points
// are only drawn in authoring mode. A composite that is out of date is
// rebuilt first.
func (m *Map) Render(target Target) error {
	m.prevCamera = m.camera
	m.generation++
	clear(m.shifted)

	m.onScreen = [categoryCount][]*Tile{}
	m.invisible = nil

	if _, ok := m.Viewport(); !ok {
		return ErrViewportUnset
	}
	if m.composite == nil {
		return ErrCompositeNotBuilt
	}
	if m.staticDirty {
		if err := m.RebuildStaticComposite(); err != nil {
			return err
		}
	}

	if m.bgColor != nil {
		target.Fill(m.bgColor)
	}

	// The composite region under the viewport, clipped to the composite so
	// that looking past its edges draws nothing there.
	area := image.Rectangle{Min: m.negOffset.Add(m.camera)}
	area.Max = area.Min.Add(m.viewport)
	if visible := area.Intersect(m.composite.Bounds()); !visible.Empty() {
		target.DrawImage(m.composite, visible, visible.Min.Sub(area.Min))
	}

	for _, t := range m.tiles[Basic] {
		if !t.visible {
			m.invisible = append(m.invisible, t)
			continue
		}
		if !m.IsOnScreen(t) {
			continue
		}
		m.applyCameraOffset(t)
		m.onScreen[Basic] = append(m.onScreen[Basic], t)
		if t.Animated() {
			target.DrawImage(t.img, t.img.Bounds(), t.pos)
		}
	}

	for _, cat := range []Category{Spawn, Event} {
		for _, t := range m.tiles[cat] {
			if !m.IsOnScreen(t) {
				continue
			}
			m.applyCameraOffset(t)
			m.onScreen[cat] = append(m.onScreen[cat], t)
			if m.authoring {
				target.DrawImage(t.img, t.img.Bounds(), t.pos)
			}
		}
	}
	return nil
}

// UpdateRectPos shifts a rectangle the map does not own by the opposite of
// the camera movement since the last render, so an object whose world
// position did not change stays put on screen. Each rectangle may be
// shifted once per render; a second call fails with ErrRectAlreadyShifted.
func (m *Map) UpdateRectPos(r *image.Rectangle) error {
	if r == nil {
		return ErrNilRect
	}
	if gen, ok := m.shifted[r]; ok && gen == m.generation {
		return ErrRectAlreadyShifted
	}
	*r = r.Sub(m.CameraDelta())
	if m.shifted == nil {
		m.shifted = make(map[*image.Rectangle]uint64)
	}
	m.shifted[r] = m.generation
	return nil
}
