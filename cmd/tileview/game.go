package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/retroblast-engine/tilemap"
	"github.com/retroblast-engine/tilemap/ebitenhost"
)

var (
	cursorColor = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	anchorColor = color.RGBA{R: 255, G: 0, B: 255, A: 255}
)

type game struct {
	cfg    Config
	m      *tilemap.Map
	canvas *ebitenhost.Canvas
	anim   *tilemap.Animator

	palette  []*tilemap.Tile
	selected int
	markers  int

	// anchor is a rectangle pinned to the world origin; the map does not
	// own it, so it follows the camera through UpdateRectPos.
	anchor image.Rectangle

	err error
}

func newGame(cfg Config, m *tilemap.Map) (*game, error) {
	g := &game{
		cfg:    cfg,
		m:      m,
		canvas: ebitenhost.NewCanvas(),
		anim:   tilemap.NewAnimator(time.Duration(cfg.FrameMs) * time.Millisecond),
		anchor: image.Rect(0, 0, cfg.GridSize, cfg.GridSize).Sub(m.Camera()),
	}
	if timer, ok := m.Loader().(tilemap.FrameTimer); ok {
		g.anim.Timer = timer
	}
	if cfg.AssetFolder != "" {
		palette, err := tilemap.LoadPaletteDir(cfg.AssetFolder, m.Loader())
		if err != nil {
			return nil, err
		}
		g.palette = palette
	}
	return g, nil
}

func (g *game) Update() error {
	if g.err != nil {
		return g.err
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.m.SetAuthoringMode(!g.m.AuthoringMode())
	}

	var d image.Point
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA) {
		d.X -= g.cfg.CameraSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD) {
		d.X += g.cfg.CameraSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW) {
		d.Y -= g.cfg.CameraSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyS) {
		d.Y += g.cfg.CameraSpeed
	}
	g.m.MoveCamera(d)

	if g.m.AuthoringMode() {
		if err := g.edit(); err != nil {
			return err
		}
	}

	_, err := g.anim.Update(g.m)
	return err
}

// edit applies the authoring controls.
func (g *game) edit() error {
	if n := len(g.palette); n > 0 {
		if inpututil.IsKeyJustPressed(ebiten.KeyE) {
			g.selected = (g.selected + 1) % n
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
			g.selected = (g.selected + n - 1) % n
		}
	}

	cell, err := g.cursorCell()
	if err != nil {
		return err
	}
	world := cell.Min.Add(g.m.Camera())

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && len(g.palette) > 0:
		t := g.palette[g.selected].Clone()
		t.SetBase(world)
		if err := g.m.Add(tilemap.Basic, t); err != nil {
			return err
		}
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight):
		g.removeAt(image.Pt(ebiten.CursorPosition()))
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		return g.placeMarker(tilemap.Spawn, world)
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		return g.placeMarker(tilemap.Event, world)
	case inpututil.IsKeyJustPressed(ebiten.KeyF2) && g.cfg.MapPath != "":
		if err := g.m.Save(g.cfg.MapPath); err != nil {
			if errors.Is(err, tilemap.ErrReservedToken) {
				slog.Warn("Map not saved", "error", err)
				return nil
			}
			return err
		}
		slog.Info("Map saved", "path", g.cfg.MapPath)
	}
	return nil
}

func (g *game) cursorCell() (image.Rectangle, error) {
	return g.m.GridCell(image.Pt(ebiten.CursorPosition()), image.Pt(g.cfg.GridSize, g.cfg.GridSize))
}

// removeAt removes the front-most tile under p, markers first.
func (g *game) removeAt(p image.Point) {
	for _, cat := range []tilemap.Category{tilemap.Event, tilemap.Spawn, tilemap.Basic} {
		tiles := g.m.OnScreen(cat)
		for i := len(tiles) - 1; i >= 0; i-- {
			t := tiles[i]
			if p.In(t.Rect()) {
				g.m.Remove(cat, t)
				return
			}
		}
	}
}

func (g *game) placeMarker(cat tilemap.Category, world image.Point) error {
	path := g.m.Markers().Spawn
	if cat == tilemap.Event {
		path = g.m.Markers().Event
	}
	g.markers++
	t := tilemap.NewTile(fmt.Sprintf("%v-%d", cat, g.markers), world, tilemap.Static(path))
	if err := t.LoadImage(g.m.Loader(), tilemap.WithSize(g.cfg.GridSize, g.cfg.GridSize)); err != nil {
		return err
	}
	return g.m.Add(cat, t)
}

func (g *game) Draw(screen *ebiten.Image) {
	if err := g.m.UpdateRectPos(&g.anchor); err != nil {
		g.err = err
		return
	}
	g.canvas.Bind(screen)
	if err := g.m.Render(g.canvas); err != nil {
		g.err = err
		return
	}

	strokeRect(screen, g.anchor, anchorColor)
	if g.m.AuthoringMode() {
		if cell, err := g.cursorCell(); err == nil {
			strokeRect(screen, cell, cursorColor)
		}
	}

	cam := g.m.Camera()
	hud := fmt.Sprintf("camera %d,%d  tiles %d/%d  spawns %d  events %d  FPS %.0f",
		cam.X, cam.Y, len(g.m.OnScreen(tilemap.Basic)), g.m.Len(tilemap.Basic),
		g.m.Len(tilemap.Spawn), g.m.Len(tilemap.Event), ebiten.ActualFPS())
	if g.m.AuthoringMode() && len(g.palette) > 0 {
		hud += fmt.Sprintf("\nauthoring  tile %q (%d/%d)", g.palette[g.selected].ID(), g.selected+1, len(g.palette))
	}
	ebitenutil.DebugPrint(screen, hud)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.ScreenWidth, g.cfg.ScreenHeight
}

func strokeRect(dst *ebiten.Image, r image.Rectangle, c color.Color) {
	vector.StrokeRect(dst, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), 1, c, false)
}
