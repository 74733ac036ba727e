package tilemap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"log/slog"
	"testing"
	"time"

	"github.com/retroblast-engine/tilemap/aseprite"
)

type fakeLoader struct {
	images map[string]image.Image
	calls  map[string]int
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		images: make(map[string]image.Image),
		calls:  make(map[string]int),
	}
}

// add registers a solid w×h image under path.
func (f *fakeLoader) add(path string, w, h int, c color.Color) image.Image {
	img := solidImage(w, h, c)
	f.images[path] = img
	return img
}

func (f *fakeLoader) Get(path string) (image.Image, error) {
	f.calls[path]++
	img, ok := f.images[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	return img, nil
}

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(w, h, c)); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

type drawCall struct {
	src image.Image
	sr  image.Rectangle
	dp  image.Point
}

// recordingTarget records what Render asks it to draw.
type recordingTarget struct {
	fills []color.Color
	draws []drawCall
}

func (r *recordingTarget) Fill(c color.Color) { r.fills = append(r.fills, c) }

func (r *recordingTarget) DrawImage(src image.Image, sr image.Rectangle, dp image.Point) {
	r.draws = append(r.draws, drawCall{src: src, sr: sr, dp: dp})
}

func (r *recordingTarget) drewImage(img image.Image) int {
	n := 0
	for _, d := range r.draws {
		if d.src == img {
			n++
		}
	}
	return n
}

// captureLogs routes the engine logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return &buf
}

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)

// loadedTile returns a tile whose image is already loaded from loader.
func loadedTile(t *testing.T, loader ImageLoader, id string, base image.Point, src ImageSource, opts ...LoadOption) *Tile {
	t.Helper()
	tile := NewTile(id, base, src)
	if err := tile.LoadImage(loader, opts...); err != nil {
		t.Fatalf("LoadImage(%q) error = %v", id, err)
	}
	return tile
}

func newTestMap(t *testing.T, loader ImageLoader, opts ...Option) *Map {
	t.Helper()
	m, err := NewMap(loader, opts...)
	if err != nil {
		t.Fatalf("NewMap() error = %v", err)
	}
	return m
}

type spriteFrame struct {
	duration time.Duration
	c        color.RGBA
}

// spriteBytes encodes an RGBA Aseprite file with one visible layer whose
// cel fills each frame with a solid color.
func spriteBytes(t *testing.T, w, h int, frames []spriteFrame, tags ...SpriteTag) []byte {
	t.Helper()
	le := func(buf *bytes.Buffer, values ...any) {
		for _, v := range values {
			if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
				t.Fatalf("binary.Write(%T): %v", v, err)
			}
		}
	}

	var body bytes.Buffer
	for i, f := range frames {
		var chunks bytes.Buffer
		count := 0
		chunk := func(typ aseprite.WORD, data []byte) {
			le(&chunks, aseprite.DWORD(len(data)+6), typ)
			chunks.Write(data)
			count++
		}

		if i == 0 {
			var layer bytes.Buffer
			// flags, type, child level, default size, blend mode, opacity,
			// reserved, empty name
			le(&layer, aseprite.WORD(1), aseprite.WORD(0), aseprite.WORD(0), aseprite.WORD(0), aseprite.WORD(0),
				aseprite.WORD(0), aseprite.BYTE(255), [3]aseprite.BYTE{}, aseprite.WORD(0))
			chunk(0x2004, layer.Bytes())
			if len(tags) > 0 {
				var tagChunk bytes.Buffer
				le(&tagChunk, aseprite.WORD(len(tags)), [8]aseprite.BYTE{})
				for _, tag := range tags {
					le(&tagChunk, aseprite.WORD(tag.From), aseprite.WORD(tag.To), aseprite.Forward,
						aseprite.WORD(0), [6]aseprite.BYTE{}, [3]aseprite.BYTE{}, aseprite.BYTE(0),
						aseprite.WORD(len(tag.Name)), []byte(tag.Name))
				}
				chunk(0x2018, tagChunk.Bytes())
			}
		}

		var cel bytes.Buffer
		le(&cel, aseprite.WORD(0), aseprite.SHORT(0), aseprite.SHORT(0), aseprite.BYTE(255), aseprite.RawImageData,
			aseprite.SHORT(0), [5]aseprite.BYTE{}, aseprite.WORD(w), aseprite.WORD(h))
		for i := 0; i < w*h; i++ {
			cel.Write([]byte{f.c.R, f.c.G, f.c.B, f.c.A})
		}
		chunk(0x2005, cel.Bytes())

		le(&body, aseprite.FrameHeader{
			BytesInFrame:  aseprite.DWORD(16 + chunks.Len()),
			MagicNumber:   aseprite.MagicNumberFrame,
			OldChunkCount: aseprite.WORD(count),
			FrameDuration: aseprite.WORD(f.duration / time.Millisecond),
			NewChunkCount: aseprite.DWORD(count),
		})
		body.Write(chunks.Bytes())
	}

	var out bytes.Buffer
	le(&out, aseprite.Header{
		FileSize:          aseprite.DWORD(128 + body.Len()),
		MagicNumberHeader: aseprite.MagicNumber,
		FrameCount:        aseprite.WORD(len(frames)),
		Width:             aseprite.WORD(w),
		Height:            aseprite.WORD(h),
		ColorDepth:        aseprite.ColorDepthRGBA,
		Flags:             1,
	})
	out.Write(body.Bytes())
	return out.Bytes()
}
