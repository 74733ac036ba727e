package tilemap

import (
	"fmt"
	"image"
	"image/color"
	"slices"
)

// Default marker art, relative to the working directory of the host.
const (
	DefaultSpawnMarker = "mapmaker_assets/spawn_point.png"
	DefaultEventMarker = "mapmaker_assets/event_point.png"
)

// MarkerImages names the images used for spawn and event points.
type MarkerImages struct {
	Spawn string
	Event string
}

// Map is a flat list compositor: three ordered tile collections, a camera,
// and a pre-rendered surface holding every static visible basic tile.
//
// Collection order is paint order. A Map is not safe for concurrent use.
type Map struct {
	loader  ImageLoader
	markers MarkerImages

	folder     string
	background string
	bgColor    color.Color

	tiles     [categoryCount][]*Tile
	onScreen  [categoryCount][]*Tile
	invisible []*Tile

	camera     image.Point
	prevCamera image.Point
	viewport   image.Point

	composite   *image.RGBA
	negOffset   image.Point
	staticDirty bool

	authoring bool

	// generation counts Render calls; shifted records the generation in
	// which each rectangle was last passed to UpdateRectPos.
	generation uint64
	shifted    map[*image.Rectangle]uint64
}

// Option configures a Map in NewMap.
type Option func(*Map) error

// WithViewport sets the culling window.
func WithViewport(width, height int) Option {
	return func(m *Map) error { return m.SetViewport(width, height) }
}

// WithBackground sets the background color name.
func WithBackground(name string) Option {
	return func(m *Map) error { return m.SetBackground(name) }
}

// WithFolder sets the asset folder recorded in save files.
func WithFolder(folder string) Option {
	return func(m *Map) error {
		m.folder = folder
		return nil
	}
}

// WithMarkerImages overrides the spawn and event marker art.
func WithMarkerImages(markers MarkerImages) Option {
	return func(m *Map) error {
		m.markers = markers
		return nil
	}
}

// WithAuthoringMode makes Render draw spawn and event points.
func WithAuthoringMode(on bool) Option {
	return func(m *Map) error {
		m.authoring = on
		return nil
	}
}

// NewMap returns an empty map loading images through loader. A nil loader
// uses a fresh ImageCache on the OS filesystem.
func NewMap(loader ImageLoader, opts ...Option) (*Map, error) {
	if loader == nil {
		loader = NewImageCache()
	}
	m := &Map{
		loader:     loader,
		markers:    MarkerImages{Spawn: DefaultSpawnMarker, Event: DefaultEventMarker},
		background: DefaultBackground,
		shifted:    make(map[*image.Rectangle]uint64),
	}
	m.bgColor, _ = LookupColor(DefaultBackground)
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Loader returns the image loader of the map.
func (m *Map) Loader() ImageLoader { return m.loader }

// Markers returns the spawn and event marker art.
func (m *Map) Markers() MarkerImages { return m.markers }

func (m *Map) Folder() string          { return m.folder }
func (m *Map) SetFolder(folder string) { m.folder = folder }

// Background returns the background color name.
func (m *Map) Background() string { return m.background }

// SetBackground sets the fill color by name, or NoBackground.
func (m *Map) SetBackground(name string) error {
	c, ok := LookupColor(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColor, name)
	}
	m.background = name
	m.bgColor = c
	return nil
}

func (m *Map) AuthoringMode() bool         { return m.authoring }
func (m *Map) SetAuthoringMode(on bool)    { m.authoring = on }
func (m *Map) Camera() image.Point         { return m.camera }
func (m *Map) PreviousCamera() image.Point { return m.prevCamera }

// SetCamera moves the camera. There is no clamping: the camera may look at
// empty parts of the world.
func (m *Map) SetCamera(p image.Point) { m.camera = p }

// MoveCamera shifts the camera by d.
func (m *Map) MoveCamera(d image.Point) { m.camera = m.camera.Add(d) }

// CameraDelta returns the camera movement since the last Render.
func (m *Map) CameraDelta() image.Point { return m.camera.Sub(m.prevCamera) }

// Viewport returns the culling window size and whether it was set.
func (m *Map) Viewport() (image.Point, bool) {
	return m.viewport, m.viewport != image.Point{}
}

// SetViewport sets the culling window anchored at the screen origin. It is
// independent of the target resolution.
func (m *Map) SetViewport(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, width, height)
	}
	m.viewport = image.Pt(width, height)
	return nil
}

// Tiles returns a copy of the collection of cat.
func (m *Map) Tiles(cat Category) []*Tile {
	if !cat.valid() {
		return nil
	}
	return slices.Clone(m.tiles[cat])
}

// OnScreen returns the tiles of cat found on screen by the last Render.
func (m *Map) OnScreen(cat Category) []*Tile {
	if !cat.valid() {
		return nil
	}
	return slices.Clone(m.onScreen[cat])
}

// Invisible returns the hidden basic tiles seen by the last Render.
func (m *Map) Invisible() []*Tile {
	return slices.Clone(m.invisible)
}

// Len returns the number of tiles in cat.
func (m *Map) Len(cat Category) int {
	if !cat.valid() {
		return 0
	}
	return len(m.tiles[cat])
}

// Add appends t to cat, in front of everything already there.
func (m *Map) Add(cat Category, t *Tile) error {
	if !cat.valid() {
		return fmt.Errorf("%w: %v", ErrUnknownCategory, cat)
	}
	if err := m.checkOwner(cat, t); err != nil {
		return err
	}
	m.tiles[cat] = append(m.tiles[cat], t)
	m.adopt(cat, t)
	return nil
}

// AddToBack inserts t at the start of cat, behind everything already there.
func (m *Map) AddToBack(cat Category, t *Tile) error {
	if !cat.valid() {
		return fmt.Errorf("%w: %v", ErrUnknownCategory, cat)
	}
	if err := m.checkOwner(cat, t); err != nil {
		return err
	}
	m.tiles[cat] = slices.Insert(m.tiles[cat], 0, t)
	m.adopt(cat, t)
	return nil
}

// checkOwner refuses a basic tile held by another map. Use Clone to place
// the same art on several maps.
func (m *Map) checkOwner(cat Category, t *Tile) error {
	if cat == Basic && t.owner != nil && t.owner != m {
		return fmt.Errorf("%w: %q", ErrTileOwned, t.id)
	}
	return nil
}

func (m *Map) adopt(cat Category, t *Tile) {
	if cat == Basic {
		t.owner = m
		m.staticDirty = true
	}
}

// Remove deletes t (by identity) from cat and reports whether it was there.
func (m *Map) Remove(cat Category, t *Tile) bool {
	if !cat.valid() {
		return false
	}
	i := slices.Index(m.tiles[cat], t)
	if i < 0 {
		return false
	}
	m.tiles[cat] = slices.Delete(m.tiles[cat], i, i+1)
	if cat == Basic {
		if t.owner == m {
			t.owner = nil
		}
		m.staticDirty = true
	}
	return true
}

// Clear removes every tile of every category.
func (m *Map) Clear() {
	for _, t := range m.tiles[Basic] {
		if t.owner == m {
			t.owner = nil
		}
	}
	m.tiles = [categoryCount][]*Tile{}
	m.onScreen = [categoryCount][]*Tile{}
	m.invisible = nil
	m.staticDirty = true
}

// StaticComposite returns the pre-rendered static surface, nil before the
// first RebuildStaticComposite.
func (m *Map) StaticComposite() *image.RGBA { return m.composite }

// NegativeOffset returns the translation of world coordinates into the
// static composite.
func (m *Map) NegativeOffset() image.Point { return m.negOffset }

// StaticDirty reports whether a change since the last rebuild affects the
// static composite.
func (m *Map) StaticDirty() bool { return m.staticDirty }

// GridCell returns the cell of a grid anchored at the world origin that
// contains pointer, in screen coordinates for the current camera.
func (m *Map) GridCell(pointer, spacing image.Point) (image.Rectangle, error) {
	return GridCell(pointer, m.camera, spacing)
}
