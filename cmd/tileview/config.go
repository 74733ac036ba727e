package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/retroblast-engine/tilemap"
)

// Config holds the viewer settings.
type Config struct {
	MapPath      string `json:"map"`
	AssetFolder  string `json:"asset_folder"`
	ScreenWidth  int    `json:"screen_width"`
	ScreenHeight int    `json:"screen_height"`
	CameraSpeed  int    `json:"camera_speed"`
	FrameMs      int    `json:"frame_ms"`
	GridSize     int    `json:"grid_size"`
	Authoring    bool   `json:"authoring"`
	Background   string `json:"background"`
	SpawnMarker  string `json:"spawn_marker"`
	EventMarker  string `json:"event_marker"`
	LogDir       string `json:"log_dir"`
}

func defaultConfig() Config {
	return Config{
		ScreenWidth:  640,
		ScreenHeight: 480,
		CameraSpeed:  4,
		FrameMs:      int(tilemap.DefaultFrameDuration.Milliseconds()),
		GridSize:     32,
		Background:   tilemap.DefaultBackground,
		SpawnMarker:  tilemap.DefaultSpawnMarker,
		EventMarker:  tilemap.DefaultEventMarker,
		LogDir:       "debug",
	}
}

// loadConfig reads the JSON config at path over the defaults. An empty
// path returns the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.ScreenWidth <= 0 || c.ScreenHeight <= 0 {
		return fmt.Errorf("screen size must be positive, got %dx%d", c.ScreenWidth, c.ScreenHeight)
	}
	if c.GridSize <= 0 {
		return fmt.Errorf("grid_size must be positive, got %d", c.GridSize)
	}
	return nil
}
