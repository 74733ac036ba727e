package tilemap

import (
	"errors"
	"image"
	"testing"
)

func TestGridCell(t *testing.T) {
	tests := []struct {
		name    string
		pointer image.Point
		camera  image.Point
		spacing image.Point
		want    image.Rectangle
	}{
		{"origin cell", image.Pt(5, 5), image.Point{}, image.Pt(16, 16), image.Rect(0, 0, 16, 16)},
		{"cell edge", image.Pt(16, 31), image.Point{}, image.Pt(16, 16), image.Rect(16, 16, 32, 32)},
		{"negative world", image.Pt(-1, -1), image.Point{}, image.Pt(16, 16), image.Rect(-16, -16, 0, 0)},
		{"scrolled camera", image.Pt(0, 0), image.Pt(10, 0), image.Pt(16, 16), image.Rect(-10, 0, 6, 16)},
		{"non square", image.Pt(40, 10), image.Point{}, image.Pt(32, 8), image.Rect(32, 8, 64, 16)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GridCell(tt.pointer, tt.camera, tt.spacing)
			if err != nil {
				t.Fatalf("GridCell() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("GridCell() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGridCellInvalidSpacing(t *testing.T) {
	for _, s := range []image.Point{{0, 16}, {16, -1}} {
		if _, err := GridCell(image.Point{}, image.Point{}, s); !errors.Is(err, ErrInvalidSpacing) {
			t.Errorf("GridCell(spacing %v) error = %v, want ErrInvalidSpacing", s, err)
		}
	}
}

func TestMapGridCellUsesCamera(t *testing.T) {
	m := newTestMap(t, newFakeLoader())
	m.SetCamera(image.Pt(-8, 0))
	got, err := m.GridCell(image.Pt(0, 0), image.Pt(16, 16))
	if err != nil {
		t.Fatal(err)
	}
	if want := image.Rect(-8, 0, 8, 16); got != want {
		t.Errorf("GridCell() = %v, want %v", got, want)
	}
}
