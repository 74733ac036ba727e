package tilemap

import (
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoding
	_ "image/jpeg" // register JPEG decoding
	_ "image/png"  // register PNG decoding
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "golang.org/x/image/bmp"  // register BMP decoding
	_ "golang.org/x/image/webp" // register WebP decoding

	"github.com/retroblast-engine/tilemap/aseprite"
)

// FrameSeparator addresses one frame of a sprite file in an image path:
// "hero.aseprite#2" is the third frame of hero.aseprite. A plain sprite
// path resolves to its first frame.
const FrameSeparator = "#"

// spriteExtensions are the file types whose frames can be addressed.
var spriteExtensions = map[string]bool{
	".ase":      true,
	".aseprite": true,
}

// SpriteInfo describes the frames of a sprite file.
type SpriteInfo struct {
	Frames    int
	Durations []time.Duration // per frame, zero when the file sets none
	Tags      []SpriteTag
}

// SpriteTag is a named inclusive frame range of a sprite.
type SpriteTag struct {
	Name     string
	From, To int
}

// SpriteLoader is an ImageLoader that also understands frame-addressed
// sprite paths.
type SpriteLoader interface {
	ImageLoader
	Sprite(path string) (SpriteInfo, error)
}

// SpriteFramePath returns the image path of frame n of the sprite at p, padded
// to width digits so that frame paths sort in playback order.
func SpriteFramePath(p string, n, width int) string {
	return fmt.Sprintf("%s%s%0*d", p, FrameSeparator, width, n)
}

// splitFrame parses a frame-addressed sprite path.
func splitFrame(p string) (base string, n int, ok bool) {
	i := strings.LastIndex(p, FrameSeparator)
	if i < 0 || !spriteExtensions[strings.ToLower(path.Ext(p[:i]))] {
		return "", 0, false
	}
	n, err := strconv.Atoi(p[i+len(FrameSeparator):])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return p[:i], n, true
}

func frameKey(base string, n int) string {
	return base + FrameSeparator + strconv.Itoa(n)
}

// ImageLoader resolves an image path to a decoded image. Implementations
// must return the same image for the same path so tiles sharing art share
// pixels.
type ImageLoader interface {
	Get(path string) (image.Image, error)
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// ImageCache is an append-only ImageLoader: every path is decoded once and
// kept for the lifetime of the cache. It is safe for concurrent use.
type ImageCache struct {
	mu      sync.Mutex
	images  map[string]image.Image
	sprites map[string]*SpriteInfo
	open    func(name string) (io.ReadCloser, error)

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewImageCache returns a cache reading from the operating system filesystem.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images:  make(map[string]image.Image),
		sprites: make(map[string]*SpriteInfo),
		open: func(name string) (io.ReadCloser, error) {
			return os.Open(filepath.FromSlash(name))
		},
	}
}

// NewImageCacheFS returns a cache reading from fsys, e.g. an embed.FS.
func NewImageCacheFS(fsys fs.FS) *ImageCache {
	return &ImageCache{
		images:  make(map[string]image.Image),
		sprites: make(map[string]*SpriteInfo),
		open: func(name string) (io.ReadCloser, error) {
			return fsys.Open(name)
		},
	}
}

// normalizePath maps equivalent spellings of a path to one cache key.
func normalizePath(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

// Get returns the decoded image for p, decoding it on first use. A
// frame-addressed sprite path decodes the whole sprite at once.
func (c *ImageCache) Get(p string) (image.Image, error) {
	if p == "" {
		return nil, ErrEmptySource
	}
	key := normalizePath(p)
	base, frame, isFrame := splitFrame(key)
	if isFrame {
		key = frameKey(base, frame)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if img, ok := c.images[key]; ok {
		c.hits.Add(1)
		return img, nil
	}
	c.misses.Add(1)

	if isFrame {
		info, err := c.loadSprite(p, base)
		if err != nil {
			return nil, err
		}
		if frame >= info.Frames {
			return nil, &ImageError{Path: p, Err: fmt.Errorf("frame %d of %d: %w", frame, info.Frames, ErrFrameOutOfRange)}
		}
		return c.images[key], nil
	}

	f, err := c.open(key)
	if err != nil {
		return nil, &ImageError{Path: p, Err: err}
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, &ImageError{Path: p, Err: err}
	}
	c.images[key] = img
	Logger().Debug("image decoded", "path", key, "format", format, "size", img.Bounds().Size())
	return img, nil
}

// Sprite returns the frames and tags of the sprite file at p, which may be
// frame-addressed.
func (c *ImageCache) Sprite(p string) (SpriteInfo, error) {
	if p == "" {
		return SpriteInfo{}, ErrEmptySource
	}
	key := normalizePath(p)
	if base, _, ok := splitFrame(key); ok {
		key = base
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	info, err := c.loadSprite(p, key)
	if err != nil {
		return SpriteInfo{}, err
	}
	return SpriteInfo{
		Frames:    info.Frames,
		Durations: slices.Clone(info.Durations),
		Tags:      slices.Clone(info.Tags),
	}, nil
}

// FrameDuration returns the display time a decoded sprite sets for the
// frame at p. It never decodes.
func (c *ImageCache) FrameDuration(p string) (time.Duration, bool) {
	base, n, ok := splitFrame(normalizePath(p))
	if !ok {
		return 0, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.sprites[base]
	if !ok || n >= len(info.Durations) || info.Durations[n] <= 0 {
		return 0, false
	}
	return info.Durations[n], true
}

// loadSprite decodes every frame of the sprite at base once and caches each
// under its frame key. c.mu must be held.
func (c *ImageCache) loadSprite(p, base string) (*SpriteInfo, error) {
	if info, ok := c.sprites[base]; ok {
		return info, nil
	}

	f, err := c.open(base)
	if err != nil {
		return nil, &ImageError{Path: p, Err: err}
	}
	defer f.Close()

	s, err := aseprite.DecodeAll(f)
	if err != nil {
		return nil, &ImageError{Path: p, Err: err}
	}
	if len(s.Frames) == 0 {
		return nil, &ImageError{Path: p, Err: ErrNoImage}
	}

	info := &SpriteInfo{Frames: len(s.Frames), Durations: make([]time.Duration, len(s.Frames))}
	for i, fr := range s.Frames {
		c.images[frameKey(base, i)] = fr.Image
		info.Durations[i] = fr.Duration
	}
	if _, ok := c.images[base]; !ok {
		c.images[base] = s.Frames[0].Image
	}
	for _, t := range s.Tags {
		if t.From < 0 || t.From > t.To || t.To >= info.Frames {
			Logger().Warn("sprite tag out of range, ignored", "path", base, "tag", t.Name, "from", t.From, "to", t.To)
			continue
		}
		info.Tags = append(info.Tags, SpriteTag{Name: t.Name, From: t.From, To: t.To})
	}
	c.sprites[base] = info
	Logger().Debug("sprite decoded", "path", base, "frames", info.Frames, "tags", len(info.Tags))
	return info, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}

// Stats returns a snapshot of the cache counters.
func (c *ImageCache) Stats() CacheStats {
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.Len(),
	}
}
