package tilemap

import (
	"fmt"
	"image"
)

// GridCell returns the cell containing pointer of a grid of the given
// spacing anchored at the world origin, in screen coordinates for camera.
func GridCell(pointer, camera, spacing image.Point) (image.Rectangle, error) {
	if spacing.X <= 0 || spacing.Y <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: %v", ErrInvalidSpacing, spacing)
	}
	world := pointer.Add(camera)
	cell := image.Pt(floorDiv(world.X, spacing.X)*spacing.X, floorDiv(world.Y, spacing.Y)*spacing.Y)
	minP := cell.Sub(camera)
	return image.Rectangle{Min: minP, Max: minP.Add(spacing)}, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
