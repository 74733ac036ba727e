// Package tilemap is a 2D tile-map engine.
//
// A Map holds three ordered collections of tiles (basic tiles, spawn points
// and event points) positioned in world space. Static visible basic tiles
// are pre-rendered into one surface, the static composite, so that a frame
// costs one large draw plus one draw per animated tile. Render culls every
// collection against a viewport anchored at the screen origin and offset by
// the camera, and records which tiles ended up on screen.
//
// Maps are saved in a flat delimited text format, see Document.
//
// Typical frame loop:
//
//	m.SetCamera(cam)
//	_ = m.UpdateRectPos(&playerRect) // keep a sprite the map does not own in place
//	if err := m.Render(target); err != nil { ... }
//	for _, t := range m.OnScreen(tilemap.Event) { ... }
package tilemap
