package tilemap

import (
	"errors"
	"image"
	"io/fs"
	"strings"
	"testing"
)

func TestNewTileDefaults(t *testing.T) {
	tile := NewTile("grass", image.Pt(3, 4), Static("grass.png"))
	if tile.Scale() != DefaultScale {
		t.Errorf("Scale() = %d, want %d", tile.Scale(), DefaultScale)
	}
	if !tile.Visible() {
		t.Error("new tile should be visible")
	}
	if tile.Position() != image.Pt(3, 4) {
		t.Errorf("Position() = %v, want base", tile.Position())
	}
	if tile.Image() != nil || tile.FrameCount() != 0 {
		t.Error("image must not be loaded before LoadImage")
	}
}

func TestLoadImageScale(t *testing.T) {
	loader := newFakeLoader()
	loader.add("rock.png", 40, 20, red)

	tests := []struct {
		name  string
		scale int
		opts  []LoadOption
		want  image.Point
	}{
		{"natural", 100, nil, image.Pt(40, 20)},
		{"half", 50, nil, image.Pt(20, 10)},
		{"double", 200, nil, image.Pt(80, 40)},
		{"pinned size", 50, []LoadOption{WithSize(7, 9)}, image.Pt(7, 9)},
		{"pinned width", 50, []LoadOption{WithWidth(7)}, image.Pt(7, 10)},
		{"pinned height", 50, []LoadOption{WithHeight(9)}, image.Pt(20, 9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile := NewTile("rock", image.Pt(5, 5), Static("rock.png"))
			tile.SetScale(tt.scale)
			if err := tile.LoadImage(loader, tt.opts...); err != nil {
				t.Fatalf("LoadImage() error = %v", err)
			}
			if got := tile.Size(); got != tt.want {
				t.Errorf("Size() = %v, want %v", got, tt.want)
			}
			wantRect := image.Rectangle{Min: image.Pt(5, 5), Max: image.Pt(5, 5).Add(tt.want)}
			if tile.Rect() != wantRect {
				t.Errorf("Rect() = %v, want %v", tile.Rect(), wantRect)
			}
		})
	}
}

func TestLoadImageSharesUnscaledImage(t *testing.T) {
	loader := newFakeLoader()
	img := loader.add("rock.png", 16, 16, red)

	a := loadedTile(t, loader, "a", image.Point{}, Static("rock.png"))
	b := loadedTile(t, loader, "b", image.Pt(16, 0), Static("rock.png"))
	if a.Image() != img || b.Image() != img {
		t.Error("tiles at natural size should share the loader image")
	}
}

func TestLoadImageDegenerateScale(t *testing.T) {
	logs := captureLogs(t)
	loader := newFakeLoader()
	loader.add("thin.png", 200, 1, red)

	tile := NewTile("thin", image.Point{}, Static("thin.png"))
	tile.SetScale(50)
	if err := tile.LoadImage(loader); err != nil {
		t.Fatalf("LoadImage() error = %v", err)
	}
	if got, want := tile.Size(), image.Pt(100, 1); got != want {
		t.Errorf("Size() = %v, want %v", got, want)
	}
	if !strings.Contains(logs.String(), "degenerate") {
		t.Errorf("expected a warning, got logs %q", logs.String())
	}
}

func TestLoadImageAnimatedSortsFrames(t *testing.T) {
	loader := newFakeLoader()
	f0 := loader.add("walk_00.png", 8, 8, red)
	f1 := loader.add("walk_01.png", 8, 8, green)
	f2 := loader.add("walk_02.png", 8, 8, blue)

	tile := loadedTile(t, loader, "walk", image.Point{}, Frames("walk_02.png", "walk_00.png", "walk_01.png"))

	if tile.FrameCount() != 3 {
		t.Fatalf("FrameCount() = %d, want 3", tile.FrameCount())
	}
	if got := tile.Source().Paths(); got[0] != "walk_00.png" || got[2] != "walk_02.png" {
		t.Errorf("Paths() = %v, want sorted", got)
	}
	want := []image.Image{f0, f1, f2}
	for i := range want {
		if err := tile.SetFrame(i); err != nil {
			t.Fatalf("SetFrame(%d) error = %v", i, err)
		}
		if tile.Image() != want[i] {
			t.Errorf("frame %d is not the image of walk_0%d.png", i, i)
		}
	}
}

func TestLoadImageErrors(t *testing.T) {
	loader := newFakeLoader()
	loader.add("ok.png", 4, 4, red)

	t.Run("empty source", func(t *testing.T) {
		tile := NewTile("x", image.Point{}, Static(""))
		if err := tile.LoadImage(loader); !errors.Is(err, ErrEmptySource) {
			t.Errorf("LoadImage() error = %v, want ErrEmptySource", err)
		}
	})

	t.Run("missing frame leaves tile unchanged", func(t *testing.T) {
		tile := loadedTile(t, loader, "x", image.Point{}, Static("ok.png"))
		before := tile.Image()
		tile.SetSource(Frames("ok.png", "missing.png"))

		err := tile.LoadImage(loader)
		var ie *ImageError
		if !errors.As(err, &ie) {
			t.Fatalf("LoadImage() error = %v, want *ImageError", err)
		}
		if ie.Path != "missing.png" {
			t.Errorf("ImageError.Path = %q, want missing.png", ie.Path)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("error should wrap the loader cause, got %v", err)
		}
		if tile.Image() != before || tile.FrameCount() != 1 {
			t.Error("failed load modified the tile")
		}
	})
}

func TestAdvanceFrame(t *testing.T) {
	loader := newFakeLoader()
	for _, p := range []string{"a0.png", "a1.png", "a2.png"} {
		loader.add(p, 4, 4, red)
	}

	tests := []struct {
		name        string
		start       int
		forward     bool
		wantFrame   int
		wantWrapped bool
	}{
		{"forward from middle", 1, true, 2, false},
		{"forward from first", 0, true, 1, false},
		{"forward from last wraps", 2, true, 0, true},
		{"backward from middle", 1, false, 0, false},
		{"backward from last", 2, false, 1, false},
		{"backward from first wraps", 0, false, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile := loadedTile(t, loader, "a", image.Point{}, Frames("a0.png", "a1.png", "a2.png"))
			if err := tile.SetFrame(tt.start); err != nil {
				t.Fatal(err)
			}
			wrapped, err := tile.AdvanceFrame(tt.forward)
			if err != nil {
				t.Fatalf("AdvanceFrame() error = %v", err)
			}
			if tile.Frame() != tt.wantFrame || wrapped != tt.wantWrapped {
				t.Errorf("AdvanceFrame() = frame %d wrapped %v, want frame %d wrapped %v",
					tile.Frame(), wrapped, tt.wantFrame, tt.wantWrapped)
			}
		})
	}
}

func TestAdvanceFrameFullCycle(t *testing.T) {
	loader := newFakeLoader()
	loader.add("a0.png", 4, 4, red)
	loader.add("a1.png", 4, 4, green)
	tile := loadedTile(t, loader, "a", image.Point{}, Frames("a0.png", "a1.png"))
	first := tile.Image()

	for i := 0; i < tile.FrameCount(); i++ {
		if _, err := tile.NextFrame(); err != nil {
			t.Fatal(err)
		}
	}
	if tile.Frame() != 0 || tile.Image() != first {
		t.Errorf("after a full cycle frame = %d, want 0", tile.Frame())
	}
	if _, err := tile.PreviousFrame(); err != nil {
		t.Fatal(err)
	}
	if tile.Frame() != 1 {
		t.Errorf("PreviousFrame() from 0 = %d, want 1", tile.Frame())
	}
}

func TestFrameErrors(t *testing.T) {
	loader := newFakeLoader()
	loader.add("s.png", 4, 4, red)
	loader.add("a0.png", 4, 4, red)
	loader.add("a1.png", 4, 4, red)

	static := loadedTile(t, loader, "s", image.Point{}, Static("s.png"))
	if _, err := static.NextFrame(); !errors.Is(err, ErrNotAnimated) {
		t.Errorf("NextFrame() on static tile error = %v, want ErrNotAnimated", err)
	}
	if err := static.SetFrame(0); !errors.Is(err, ErrNotAnimated) {
		t.Errorf("SetFrame() on static tile error = %v, want ErrNotAnimated", err)
	}

	unloaded := NewTile("u", image.Point{}, Frames("a0.png", "a1.png"))
	if _, err := unloaded.NextFrame(); !errors.Is(err, ErrNoImage) {
		t.Errorf("NextFrame() before load error = %v, want ErrNoImage", err)
	}

	anim := loadedTile(t, loader, "a", image.Point{}, Frames("a0.png", "a1.png"))
	for _, i := range []int{-1, 2} {
		if err := anim.SetFrame(i); !errors.Is(err, ErrFrameOutOfRange) {
			t.Errorf("SetFrame(%d) error = %v, want ErrFrameOutOfRange", i, err)
		}
	}
	if anim.Frame() != 0 {
		t.Errorf("failed SetFrame changed the frame to %d", anim.Frame())
	}
}

func TestUpdateRect(t *testing.T) {
	tile := NewTile("x", image.Point{}, Static("x.png"))
	if err := tile.UpdateRect(); !errors.Is(err, ErrNoImage) {
		t.Errorf("UpdateRect() error = %v, want ErrNoImage", err)
	}

	loader := newFakeLoader()
	loader.add("x.png", 10, 6, red)
	if err := tile.LoadImage(loader); err != nil {
		t.Fatal(err)
	}
	tile.setPosition(image.Pt(-3, 2))
	if err := tile.UpdateRect(); err != nil {
		t.Fatal(err)
	}
	if want := image.Rect(-3, 2, 7, 8); tile.Rect() != want {
		t.Errorf("Rect() = %v, want %v", tile.Rect(), want)
	}
}

func TestClone(t *testing.T) {
	loader := newFakeLoader()
	loader.add("x.png", 10, 10, red)
	m := newTestMap(t, loader)
	tile := loadedTile(t, loader, "x", image.Pt(1, 1), Static("x.png"))
	if err := m.Add(Basic, tile); err != nil {
		t.Fatal(err)
	}

	c := tile.Clone()
	if c.Image() != tile.Image() {
		t.Error("clone should share the decoded image")
	}
	if c.owner != nil {
		t.Error("clone should belong to no map")
	}

	c.SetBase(image.Pt(50, 50))
	if tile.Base() != image.Pt(1, 1) {
		t.Error("moving the clone moved the original")
	}
}
