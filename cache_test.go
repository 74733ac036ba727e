package tilemap

import (
	"errors"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"
	"time"
)

func TestImageCacheGet(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tile.png")
	if err := os.WriteFile(p, pngBytes(t, 12, 8, red), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewImageCache()
	first, err := c.Get(p)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := first.Bounds().Size(); got != image.Pt(12, 8) {
		t.Errorf("decoded size = %v, want 12x8", got)
	}

	// Equivalent spellings hit the same entry.
	second, err := c.Get(dir + "/./sub/../tile.png")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if first != second {
		t.Error("second Get should return the cached image")
	}

	want := CacheStats{Hits: 1, Misses: 1, Entries: 1}
	if got := c.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestImageCacheErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewImageCache()
	if _, err := c.Get(""); !errors.Is(err, ErrEmptySource) {
		t.Errorf("Get(\"\") error = %v, want ErrEmptySource", err)
	}

	tests := []struct {
		name     string
		path     string
		notExist bool
	}{
		{"missing", filepath.Join(dir, "missing.png"), true},
		{"undecodable", bad, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Get(tt.path)
			var ie *ImageError
			if !errors.As(err, &ie) {
				t.Fatalf("Get() error = %v, want *ImageError", err)
			}
			if ie.Path != tt.path {
				t.Errorf("ImageError.Path = %q, want %q", ie.Path, tt.path)
			}
			if got := errors.Is(err, fs.ErrNotExist); got != tt.notExist {
				t.Errorf("errors.Is(err, fs.ErrNotExist) = %v, want %v", got, tt.notExist)
			}
		})
	}
	if c.Len() != 0 {
		t.Errorf("failed loads were cached: Len() = %d", c.Len())
	}
}

func TestImageCacheFS(t *testing.T) {
	fsys := fstest.MapFS{
		"assets/a.png": {Data: pngBytes(t, 4, 4, green)},
	}
	c := NewImageCacheFS(fsys)

	img, err := c.Get("./assets/a.png")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Errorf("width = %d, want 4", img.Bounds().Dx())
	}
	if _, err := c.Get("assets/a.png"); err != nil {
		t.Fatal(err)
	}
	if s := c.Stats(); s.Hits != 1 || s.Entries != 1 {
		t.Errorf("Stats() = %+v, want one hit and one entry", s)
	}
}

func TestImageCacheSpriteFrames(t *testing.T) {
	fsys := fstest.MapFS{
		"hero.aseprite": {Data: spriteBytes(t, 2, 2, []spriteFrame{
			{100 * time.Millisecond, red},
			{0, green},
			{250 * time.Millisecond, blue},
		}, SpriteTag{Name: "walk", From: 1, To: 2}, SpriteTag{Name: "broken", From: 2, To: 7})},
	}
	c := NewImageCacheFS(fsys)

	tests := []struct {
		path string
		want color.RGBA
	}{
		{"hero.aseprite#0", red},
		{"hero.aseprite#01", green},
		{"./hero.aseprite#2", blue},
		{"hero.aseprite", red},
	}
	for _, tt := range tests {
		img, err := c.Get(tt.path)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", tt.path, err)
		}
		if got := color.RGBAModel.Convert(img.At(0, 0)); got != tt.want {
			t.Errorf("Get(%q) pixel = %v, want %v", tt.path, got, tt.want)
		}
	}
	if s := c.Stats(); s.Misses != 1 {
		t.Errorf("Stats() = %+v, want a single decode of the sprite", s)
	}
	first, _ := c.Get("hero.aseprite#1")
	second, _ := c.Get("hero.aseprite#001")
	if first != second {
		t.Error("padded and plain frame paths returned different images")
	}

	info, err := c.Sprite("hero.aseprite#2")
	if err != nil {
		t.Fatalf("Sprite() error = %v", err)
	}
	want := SpriteInfo{
		Frames:    3,
		Durations: []time.Duration{100 * time.Millisecond, 0, 250 * time.Millisecond},
		Tags:      []SpriteTag{{Name: "walk", From: 1, To: 2}},
	}
	if !reflect.DeepEqual(info, want) {
		t.Errorf("Sprite() = %+v, want %+v", info, want)
	}

	durations := []struct {
		path   string
		want   time.Duration
		wantOK bool
	}{
		{"hero.aseprite#0", 100 * time.Millisecond, true},
		{"hero.aseprite#1", 0, false},
		{"hero.aseprite#02", 250 * time.Millisecond, true},
		{"hero.aseprite#3", 0, false},
		{"other.aseprite#0", 0, false},
		{"tile.png", 0, false},
	}
	for _, d := range durations {
		got, ok := c.FrameDuration(d.path)
		if got != d.want || ok != d.wantOK {
			t.Errorf("FrameDuration(%q) = %v, %v, want %v, %v", d.path, got, ok, d.want, d.wantOK)
		}
	}

	_, err = c.Get("hero.aseprite#3")
	var ie *ImageError
	if !errors.As(err, &ie) || !errors.Is(err, ErrFrameOutOfRange) {
		t.Errorf("Get() past the last frame error = %v, want *ImageError wrapping ErrFrameOutOfRange", err)
	}
	if _, err := c.Sprite("missing.aseprite"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Sprite() of a missing file error = %v, want fs.ErrNotExist", err)
	}
}

func TestSplitFrame(t *testing.T) {
	tests := []struct {
		path     string
		wantBase string
		wantN    int
		wantOK   bool
	}{
		{"a/hero.aseprite#3", "a/hero.aseprite", 3, true},
		{"hero.ASE#012", "hero.ASE", 12, true},
		{"hero.aseprite", "", 0, false},
		{"hero.png#1", "", 0, false},
		{"hero.aseprite#walk", "", 0, false},
		{"hero.aseprite#-1", "", 0, false},
	}
	for _, tt := range tests {
		base, n, ok := splitFrame(tt.path)
		if base != tt.wantBase || n != tt.wantN || ok != tt.wantOK {
			t.Errorf("splitFrame(%q) = %q, %d, %v, want %q, %d, %v",
				tt.path, base, n, ok, tt.wantBase, tt.wantN, tt.wantOK)
		}
	}
}
