package tilemap

import (
	"errors"
	"image"
	"slices"

	"golang.org/x/image/draw"
)

// DefaultScale is the scale percent of a new tile.
const DefaultScale = 100

// ImageSource is the art of a tile: one path for a static tile, or a set of
// frame paths for an animated one. Frame order is the lexicographic order of
// the paths, so asset authors control playback by file naming
// (walk_00.png, walk_01.png, ...).
type ImageSource struct {
	paths    []string
	animated bool
}

// Static returns the source of a non-animated tile.
func Static(path string) ImageSource {
	return ImageSource{paths: []string{path}}
}

// Frames returns the source of an animated tile.
func Frames(paths ...string) ImageSource {
	return ImageSource{paths: slices.Clone(paths), animated: true}
}

// Paths returns a copy of the image paths.
func (s ImageSource) Paths() []string { return slices.Clone(s.paths) }

// Animated reports whether the source describes animation frames.
func (s ImageSource) Animated() bool { return s.animated }

// Empty reports whether the source names no usable path.
func (s ImageSource) Empty() bool {
	return len(s.paths) == 0 || (len(s.paths) == 1 && s.paths[0] == "")
}

// Tile is a positioned image on the map. Its base position is in world
// space and is what gets saved; its display position is base minus camera
// and is refreshed by Map.Render for tiles on screen.
type Tile struct {
	id      string
	base    image.Point
	pos     image.Point
	source  ImageSource
	scale   int
	visible bool

	// animated is the kind of the loaded art; it follows source on
	// LoadImage only.
	animated   bool
	img        image.Image
	frames     []image.Image
	framePaths []string // image paths of the loaded frames
	frame      int
	rect       image.Rectangle

	// owner is the map holding the tile among its basic tiles, told about
	// changes that invalidate its static composite.
	owner *Map
}

// NewTile returns a visible tile at base with the default scale. The image
// is not loaded until LoadImage.
func NewTile(id string, base image.Point, src ImageSource) *Tile {
	return &Tile{
		id:       id,
		base:     base,
		pos:      base,
		source:   src,
		scale:    DefaultScale,
		visible:  true,
		animated: src.animated,
	}
}

func (t *Tile) ID() string          { return t.id }
func (t *Tile) SetID(id string)     { t.id = id }
func (t *Tile) Base() image.Point   { return t.base }
func (t *Tile) Source() ImageSource { return t.source }
func (t *Tile) Scale() int          { return t.scale }
func (t *Tile) Visible() bool       { return t.visible }

// Position returns the display position computed by the last render.
func (t *Tile) Position() image.Point { return t.pos }

// Animated reports whether the tile plays frames. After SetSource it keeps
// describing the loaded art until the next LoadImage.
func (t *Tile) Animated() bool { return t.animated }

// Image returns the active image, nil before LoadImage.
func (t *Tile) Image() image.Image { return t.img }

// Rect returns the bounding rectangle at the display position.
func (t *Tile) Rect() image.Rectangle { return t.rect }

// Size returns the size of the active image.
func (t *Tile) Size() image.Point {
	if t.img == nil {
		return image.Point{}
	}
	return t.img.Bounds().Size()
}

// Frame returns the active frame index. It is 0 for static tiles.
func (t *Tile) Frame() int { return t.frame }

// FramePath returns the image path of the active frame, "" before LoadImage.
func (t *Tile) FramePath() string {
	if t.frame >= len(t.framePaths) {
		return ""
	}
	return t.framePaths[t.frame]
}

// FrameCount returns the number of loaded frames, 1 for a loaded static tile.
func (t *Tile) FrameCount() int {
	if t.Animated() {
		return len(t.frames)
	}
	if t.img != nil {
		return 1
	}
	return 0
}

// SetBase moves the tile in world space. The display position follows
// on the next render.
func (t *Tile) SetBase(p image.Point) {
	if p == t.base {
		return
	}
	t.base = p
	if !t.Animated() {
		t.invalidate()
	}
}

// SetVisible shows or hides the tile.
func (t *Tile) SetVisible(v bool) {
	if v == t.visible {
		return
	}
	t.visible = v
	if !t.Animated() {
		t.invalidate()
	}
}

// SetSource replaces the art. It takes effect on the next LoadImage.
func (t *Tile) SetSource(src ImageSource) { t.source = src }

// SetScale sets the scale percent applied by the next LoadImage.
func (t *Tile) SetScale(percent int) { t.scale = percent }

func (t *Tile) invalidate() {
	if t.owner != nil {
		t.owner.staticDirty = true
	}
}

type loadOptions struct {
	width, height int
}

// LoadOption customizes LoadImage.
type LoadOption func(*loadOptions)

// WithSize pins the loaded image size, bypassing the scale percent.
func WithSize(width, height int) LoadOption {
	return func(o *loadOptions) {
		o.width = width
		o.height = height
	}
}

// WithWidth pins the loaded width only.
func WithWidth(width int) LoadOption {
	return func(o *loadOptions) { o.width = width }
}

// WithHeight pins the loaded height only.
func WithHeight(height int) LoadOption {
	return func(o *loadOptions) { o.height = height }
}

// LoadImage decodes the tile art through loader and scales it. Animated
// sources are sorted and every frame is loaded; the first becomes active.
// On error the tile is left unchanged.
func (t *Tile) LoadImage(loader ImageLoader, opts ...LoadOption) error {
	if t.source.Empty() {
		return ErrEmptySource
	}
	o := loadOptions{width: -1, height: -1}
	for _, opt := range opts {
		opt(&o)
	}

	paths := t.source.paths
	if t.source.animated {
		paths = slices.Clone(paths)
		slices.Sort(paths)
	}

	frames := make([]image.Image, 0, len(paths))
	for _, p := range paths {
		img, err := loader.Get(p)
		if err != nil {
			var ie *ImageError
			if !errors.As(err, &ie) {
				err = &ImageError{Path: p, Err: err}
			}
			return err
		}
		frames = append(frames, t.scaleImage(img, o, p))
	}

	// A tile leaving or joining the static composite dirties it as much as
	// a static tile changing art does.
	dirty := !t.animated || !t.source.animated

	t.source.paths = paths
	t.framePaths = paths
	t.animated = t.source.animated
	t.img = frames[0]
	t.frame = 0
	t.frames = nil
	if t.animated {
		t.frames = frames
	}
	t.rect = image.Rectangle{Min: t.pos, Max: t.pos.Add(t.img.Bounds().Size())}
	if dirty {
		t.invalidate()
	}
	return nil
}

// scaleImage resizes img to the requested size. A size that resolves to
// zero on an axis keeps the natural size on that axis.
func (t *Tile) scaleImage(img image.Image, o loadOptions, path string) image.Image {
	natural := img.Bounds().Size()
	size := image.Pt(o.width, o.height)
	if o.width < 0 {
		size.X = natural.X * t.scale / 100
	}
	if o.height < 0 {
		size.Y = natural.Y * t.scale / 100
	}
	if size.X <= 0 || size.Y <= 0 {
		Logger().Warn("tile image scales to a degenerate size, keeping natural size on that axis",
			"tile", t.id, "path", path, "scale", t.scale, "natural", natural, "requested", size)
		if size.X <= 0 {
			size.X = natural.X
		}
		if size.Y <= 0 {
			size.Y = natural.Y
		}
	}
	if size == natural {
		return img
	}

	dst := image.NewRGBA(image.Rectangle{Max: size})
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// AdvanceFrame steps the animation forward or backward with wraparound. It
// reports whether the step wrapped past the loop boundary, i.e. left the
// last frame going forward or the first frame going backward.
func (t *Tile) AdvanceFrame(forward bool) (bool, error) {
	if !t.Animated() {
		return false, ErrNotAnimated
	}
	n := len(t.frames)
	if n == 0 {
		return false, ErrNoImage
	}

	wrapped := false
	if forward {
		t.frame++
		if t.frame >= n {
			t.frame = 0
			wrapped = true
		}
	} else {
		t.frame--
		if t.frame < 0 {
			t.frame = n - 1
			wrapped = true
		}
	}
	t.img = t.frames[t.frame]
	return wrapped, t.UpdateRect()
}

// NextFrame is AdvanceFrame(true).
func (t *Tile) NextFrame() (bool, error) { return t.AdvanceFrame(true) }

// PreviousFrame is AdvanceFrame(false).
func (t *Tile) PreviousFrame() (bool, error) { return t.AdvanceFrame(false) }

// SetFrame activates frame index.
func (t *Tile) SetFrame(index int) error {
	if !t.Animated() {
		return ErrNotAnimated
	}
	if len(t.frames) == 0 {
		return ErrNoImage
	}
	if index < 0 || index >= len(t.frames) {
		return ErrFrameOutOfRange
	}
	t.frame = index
	t.img = t.frames[index]
	return t.UpdateRect()
}

// UpdateRect recomputes the bounding rectangle from the active image and
// the display position.
func (t *Tile) UpdateRect() error {
	if t.img == nil {
		return ErrNoImage
	}
	t.rect = image.Rectangle{Min: t.pos, Max: t.pos.Add(t.img.Bounds().Size())}
	return nil
}

// setPosition moves the display position and refreshes the rectangle.
func (t *Tile) setPosition(p image.Point) {
	t.pos = p
	if t.img != nil {
		t.rect = image.Rectangle{Min: p, Max: p.Add(t.img.Bounds().Size())}
	}
}

// Clone returns a copy of the tile sharing its decoded images. The copy
// belongs to no map.
func (t *Tile) Clone() *Tile {
	c := *t
	c.owner = nil
	return &c
}
