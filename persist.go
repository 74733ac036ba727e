package tilemap

import (
	"fmt"
	"image"
	"io"
	"os"
)

// Document returns the savable content of the map.
func (m *Map) Document() *Document {
	d := &Document{
		Folder:     m.folder,
		Background: m.background,
	}
	for _, t := range m.tiles[Basic] {
		d.Tiles = append(d.Tiles, TileRecord{
			ID:       t.id,
			X:        t.base.X,
			Y:        t.base.Y,
			Animated: t.source.Animated(),
			Scale:    t.scale,
			Paths:    t.source.Paths(),
		})
	}
	d.Spawns = markerRecords(m.tiles[Spawn])
	d.Events = markerRecords(m.tiles[Event])
	return d
}

func markerRecords(tiles []*Tile) []MarkerRecord {
	var out []MarkerRecord
	for _, t := range tiles {
		size := t.Size()
		out = append(out, MarkerRecord{
			ID:     t.id,
			X:      t.base.X,
			Y:      t.base.Y,
			Width:  size.X,
			Height: size.Y,
		})
	}
	return out
}

// LoadDocument replaces the map content with d. Every tile image is loaded
// before anything is replaced, so on error the map is unchanged. On success
// the camera is back at the origin and the static composite is rebuilt.
func (m *Map) LoadDocument(d *Document) error {
	var tiles [categoryCount][]*Tile

	for i, r := range d.Tiles {
		src := Static(firstOrEmpty(r.Paths))
		if r.Animated {
			src = Frames(r.Paths...)
		}
		t := NewTile(r.ID, image.Pt(r.X, r.Y), src)
		t.scale = r.Scale
		if err := t.LoadImage(m.loader); err != nil {
			return fmt.Errorf("tilemap: loading tile %d (%q): %w", i, r.ID, err)
		}
		tiles[Basic] = append(tiles[Basic], t)
	}

	markers := []struct {
		cat     Category
		path    string
		records []MarkerRecord
	}{
		{Spawn, m.markers.Spawn, d.Spawns},
		{Event, m.markers.Event, d.Events},
	}
	for _, mk := range markers {
		for i, r := range mk.records {
			t := NewTile(r.ID, image.Pt(r.X, r.Y), Static(mk.path))
			if err := t.LoadImage(m.loader, WithSize(r.Width, r.Height)); err != nil {
				return fmt.Errorf("tilemap: loading %v point %d (%q): %w", mk.cat, i, r.ID, err)
			}
			tiles[mk.cat] = append(tiles[mk.cat], t)
		}
	}

	bg, ok := LookupColor(d.Background)
	if !ok {
		Logger().Warn("unknown background color, background fill disabled", "background", d.Background)
	}

	m.Clear()
	m.tiles = tiles
	for _, t := range m.tiles[Basic] {
		t.owner = m
	}
	m.folder = d.Folder
	m.background = d.Background
	m.bgColor = bg
	m.camera = image.Point{}
	m.prevCamera = image.Point{}

	Logger().Debug("map loaded",
		"tiles", len(tiles[Basic]), "spawns", len(tiles[Spawn]), "events", len(tiles[Event]))
	return m.RebuildStaticComposite()
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Encode writes the save form of the map to w.
func (m *Map) Encode(w io.Writer) error {
	data, err := m.Document().MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Decode reads a save file from r and loads it with LoadDocument.
func (m *Map) Decode(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var d Document
	if err := d.UnmarshalText(data); err != nil {
		return err
	}
	return m.LoadDocument(&d)
}

// Save writes the map to the file at path.
func (m *Map) Save(path string) error {
	data, err := m.Document().MarshalText()
	if err != nil {
		return fmt.Errorf("tilemap: saving %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("tilemap: saving %s: %w", path, err)
	}
	Logger().Debug("map saved", "path", path, "bytes", len(data))
	return nil
}

// Load replaces the map content with the save file at path.
func (m *Map) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("tilemap: loading %s: %w", path, err)
	}
	defer f.Close()
	if err := m.Decode(f); err != nil {
		return fmt.Errorf("tilemap: loading %s: %w", path, err)
	}
	return nil
}
