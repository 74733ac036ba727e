package tilemap

import (
	"errors"
	"fmt"
)

var (
	// ErrViewportUnset is returned by Render before SetViewport was called.
	ErrViewportUnset = errors.New("tilemap: viewport size is not set")
	// ErrInvalidViewport is returned for non-positive viewport sizes.
	ErrInvalidViewport = errors.New("tilemap: viewport size must be positive")
	// ErrCompositeNotBuilt is returned by Render before the first RebuildStaticComposite.
	ErrCompositeNotBuilt = errors.New("tilemap: static composite has never been built")

	// ErrEmptySource is returned when a tile has no image path to load.
	ErrEmptySource = errors.New("tilemap: tile has no image source")
	// ErrNoImage is returned when an operation needs an image that was never loaded.
	ErrNoImage = errors.New("tilemap: tile image is not loaded")
	// ErrNotAnimated is returned by frame operations on a static tile.
	ErrNotAnimated = errors.New("tilemap: tile is not animated")
	// ErrFrameOutOfRange is returned by SetFrame for an invalid index.
	ErrFrameOutOfRange = errors.New("tilemap: frame index out of range")

	// ErrUnknownCategory is returned for a Category outside the defined set.
	ErrUnknownCategory = errors.New("tilemap: unknown tile category")
	// ErrRectAlreadyShifted is returned by UpdateRectPos when the same
	// rectangle is compensated twice for one render.
	ErrRectAlreadyShifted = errors.New("tilemap: rectangle already shifted for this render")
	// ErrTileOwned is returned when adding a basic tile that another map
	// already holds.
	ErrTileOwned = errors.New("tilemap: tile belongs to another map")
	// ErrUnknownColor is returned for a background name that is not a known color.
	ErrUnknownColor = errors.New("tilemap: unknown background color")

	// ErrMalformed is wrapped by every FormatError.
	ErrMalformed = errors.New("tilemap: malformed save data")
	// ErrReservedToken is returned by Save when a field contains a delimiter.
	ErrReservedToken = errors.New("tilemap: field contains a reserved delimiter")
)

// ImageError reports an image that could not be read or decoded.
type ImageError struct {
	Path string
	Err  error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("tilemap: loading image %q: %v", e.Path, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// FormatError locates a problem in save data. Record and Field are -1 when
// the problem is not tied to one.
type FormatError struct {
	Section string
	Record  int
	Field   int
	Msg     string
	Err     error
}

func (e *FormatError) Error() string {
	loc := e.Section
	if e.Record >= 0 {
		loc = fmt.Sprintf("%s record %d", loc, e.Record)
	}
	if e.Field >= 0 {
		loc = fmt.Sprintf("%s field %d", loc, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("tilemap: malformed save data: %s: %s: %v", loc, e.Msg, e.Err)
	}
	return fmt.Sprintf("tilemap: malformed save data: %s: %s", loc, e.Msg)
}

// Unwrap returns ErrMalformed together with the underlying cause, so both
// errors.Is(err, ErrMalformed) and errors.As on the cause work.
func (e *FormatError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformed, e.Err}
	}
	return []error{ErrMalformed}
}

var (
	// ErrNilRect is returned by UpdateRectPos for a nil rectangle.
	ErrNilRect = errors.New("tilemap: nil rectangle")
	// ErrInvalidSpacing is returned by GridCell for non-positive spacing.
	ErrInvalidSpacing = errors.New("tilemap: grid spacing must be positive")
)
