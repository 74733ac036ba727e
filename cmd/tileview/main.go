// Command tileview displays a saved tile map and edits it.
//
// Arrow keys or WASD scroll, Tab toggles authoring mode. In authoring mode
// a left click places the selected palette tile on the grid, a right click
// removes the tile under the cursor, Q and E cycle the palette, P and O
// place spawn and event points, and F2 saves.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/retroblast-engine/tilemap"
)

func main() {
	if err := run(); err != nil {
		slog.Error("tileview failed", "error", err)
		fmt.Fprintln(os.Stderr, "tileview:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "JSON config file")
	mapPath := flag.String("map", "", "save file to open")
	folder := flag.String("assets", "", "asset folder offered as palette")
	authoring := flag.Bool("authoring", false, "start in authoring mode")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "map":
			cfg.MapPath = *mapPath
		case "assets":
			cfg.AssetFolder = *folder
		case "authoring":
			cfg.Authoring = *authoring
		}
	})

	cleanup, err := initLogger(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer cleanup()

	m, err := tilemap.NewMap(nil,
		tilemap.WithViewport(cfg.ScreenWidth, cfg.ScreenHeight),
		tilemap.WithBackground(cfg.Background),
		tilemap.WithFolder(cfg.AssetFolder),
		tilemap.WithAuthoringMode(cfg.Authoring),
		tilemap.WithMarkerImages(tilemap.MarkerImages{Spawn: cfg.SpawnMarker, Event: cfg.EventMarker}),
	)
	if err != nil {
		return err
	}
	if cfg.MapPath != "" {
		if _, statErr := os.Stat(cfg.MapPath); statErr == nil {
			if err := m.Load(cfg.MapPath); err != nil {
				return err
			}
		}
	}
	if m.StaticComposite() == nil {
		if err := m.RebuildStaticComposite(); err != nil {
			return err
		}
	}
	if cfg.AssetFolder == "" {
		cfg.AssetFolder = m.Folder()
	}

	g, err := newGame(cfg, m)
	if err != nil {
		return err
	}
	slog.Info("Starting viewer", "map", cfg.MapPath, "tiles", m.Len(tilemap.Basic), "palette", len(g.palette))

	ebiten.SetWindowSize(cfg.ScreenWidth, cfg.ScreenHeight)
	ebiten.SetWindowTitle("tileview")
	return ebiten.RunGame(g)
}
