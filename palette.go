package tilemap

import (
	"fmt"
	"image"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// paletteExtensions are the file extensions LoadPalette turns into tiles.
var paletteExtensions = map[string]bool{
	".png":      true,
	".jpg":      true,
	".jpeg":     true,
	".gif":      true,
	".bmp":      true,
	".webp":     true,
	".ase":      true,
	".aseprite": true,
}

func isPaletteImage(name string) bool {
	return paletteExtensions[strings.ToLower(path.Ext(name))]
}

// LoadPalette builds the tiles offered by an asset folder: one static tile
// per image file in dir and one animated tile per sub-directory, whose
// image files are the frames. Directories with a "." in their name and
// files of unknown type are skipped. Tile IDs are the entry names without
// extension and image paths are dir-relative paths inside fsys, so loader
// must read from the same filesystem.
//
// When loader is a SpriteLoader, a multi-frame sprite file becomes one
// animated tile over its frame paths, or one per tag named id_tag.
func LoadPalette(fsys fs.FS, dir string, loader ImageLoader) ([]*Tile, error) {
	return loadPalette(fsys, dir, func(p string) string { return p }, loader)
}

// LoadPaletteDir is LoadPalette over an operating system folder, relative
// or absolute. Tile image paths are folder-prefixed, so loader should be a
// NewImageCache.
func LoadPaletteDir(folder string, loader ImageLoader) ([]*Tile, error) {
	prefix := filepath.ToSlash(folder)
	return loadPalette(os.DirFS(folder), ".", func(p string) string {
		return path.Join(prefix, p)
	}, loader)
}

// loadPalette walks dir in fsys; imagePath maps an fsys path to the path
// handed to loader and stored in the tiles.
func loadPalette(fsys fs.FS, dir string, imagePath func(string) string, loader ImageLoader) ([]*Tile, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("tilemap: reading palette %s: %w", dir, err)
	}

	var tiles []*Tile
	for _, e := range entries {
		name := e.Name()
		p := path.Join(dir, name)

		var found []*Tile
		switch {
		case e.IsDir() && !strings.Contains(name, "."):
			frames, err := paletteFrames(fsys, p)
			if err != nil {
				return nil, err
			}
			if len(frames) == 0 {
				Logger().Warn("palette animation folder has no frames", "dir", p)
				continue
			}
			for i, f := range frames {
				frames[i] = imagePath(f)
			}
			found = []*Tile{NewTile(name, image.Point{}, Frames(frames...))}
		case !e.IsDir() && isPaletteImage(name):
			id := strings.TrimSuffix(name, path.Ext(name))
			found, err = fileTiles(id, imagePath(p), loader)
			if err != nil {
				return nil, err
			}
		default:
			Logger().Warn("palette entry skipped", "path", p)
			continue
		}

		for _, t := range found {
			if err := t.LoadImage(loader); err != nil {
				return nil, err
			}
		}
		tiles = append(tiles, found...)
	}
	return tiles, nil
}

// fileTiles returns the tiles offered by one image file.
func fileTiles(id, p string, loader ImageLoader) ([]*Tile, error) {
	sl, ok := loader.(SpriteLoader)
	if !ok || !spriteExtensions[strings.ToLower(path.Ext(p))] {
		return []*Tile{NewTile(id, image.Point{}, Static(p))}, nil
	}
	info, err := sl.Sprite(p)
	if err != nil {
		return nil, err
	}

	width := len(strconv.Itoa(info.Frames - 1))
	framePaths := func(from, to int) []string {
		paths := make([]string, 0, to-from+1)
		for n := from; n <= to; n++ {
			paths = append(paths, SpriteFramePath(p, n, width))
		}
		return paths
	}

	switch {
	case len(info.Tags) > 0:
		tiles := make([]*Tile, 0, len(info.Tags))
		for _, tag := range info.Tags {
			tiles = append(tiles, NewTile(id+"_"+tag.Name, image.Point{}, Frames(framePaths(tag.From, tag.To)...)))
		}
		return tiles, nil
	case info.Frames > 1:
		return []*Tile{NewTile(id, image.Point{}, Frames(framePaths(0, info.Frames-1)...))}, nil
	default:
		return []*Tile{NewTile(id, image.Point{}, Static(p))}, nil
	}
}

// paletteFrames lists the image files of an animation folder.
func paletteFrames(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("tilemap: reading palette %s: %w", dir, err)
	}
	var frames []string
	for _, e := range entries {
		p := path.Join(dir, e.Name())
		if e.IsDir() || !isPaletteImage(e.Name()) {
			Logger().Warn("palette frame skipped", "path", p)
			continue
		}
		frames = append(frames, p)
	}
	return frames, nil
}
