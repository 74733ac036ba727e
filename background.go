package tilemap

import (
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// NoBackground is the background name that disables the fill, leaving
// whatever the target already holds.
const NoBackground = "none"

// DefaultBackground is the background of a new map.
const DefaultBackground = "black"

// LookupColor resolves a background name (an SVG 1.1 color keyword, case
// insensitive). NoBackground resolves to a nil color.
func LookupColor(name string) (color.Color, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == NoBackground {
		return nil, true
	}
	c, ok := colornames.Map[key]
	if !ok {
		return nil, false
	}
	return c, true
}
