package aseprite

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"image/color"
	"io"
)

// layer is the decoded part of a 0x2004 chunk the compositor needs.
type layer struct {
	Flags      WORD
	Type       WORD
	ChildLevel WORD // nesting depth below group layers, 0 at the top
	BlendMode  WORD
	Opacity    BYTE
	Name       string
}

func (l layer) visible() bool    { return l.Flags&layerFlagVisible != 0 }

// effectiveVisibility resolves, for each layer in file order, whether it is
// shown once the visibility of its parent groups is applied. A group is the
// nearest preceding layer one child level up.
func effectiveVisibility(layers []layer) []bool {
	shown := make([]bool, len(layers))
	var parents []bool
	for i, l := range layers {
		level := min(int(l.ChildLevel), len(parents))
		parents = parents[:level]
		shown[i] = l.visible() && (level == 0 || parents[level-1])
		parents = append(parents, shown[i])
	}
	return shown
}
func (l layer) background() bool { return l.Flags&layerFlagBackground != 0 }

// cel is a decoded 0x2005 chunk.
type cel struct {
	LayerIndex    WORD
	X, Y          SHORT
	Opacity       BYTE
	Type          CelType
	ZIndex        SHORT
	Width, Height WORD
	Pixels        []byte // uncompressed pixel data
	LinkedFrame   WORD
}

// order is the effective stacking order of a cel within its frame.
func (c cel) order() int {
	return int(c.LayerIndex) + int(c.ZIndex)
}

// Tag is an animation range defined in the sprite.
type Tag struct {
	Name      string
	From, To  int
	Direction LoopDirection
	Repeat    int
}

func readString(r *bytes.Reader) (string, error) {
	var n WORD
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	chars := make([]byte, n)
	if _, err := io.ReadFull(r, chars); err != nil {
		return "", err
	}
	return string(chars), nil
}

// parseOldPalette applies a 0x0004 chunk to palette.
func parseOldPalette(data []byte, palette []color.Color) ([]color.Color, error) {
	r := bytes.NewReader(data)
	var packets WORD
	if err := binary.Read(r, binary.LittleEndian, &packets); err != nil {
		return nil, err
	}
	idx := 0
	for i := 0; i < int(packets); i++ {
		var skip, count BYTE
		if err := binary.Read(r, binary.LittleEndian, &skip); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, err
		}
		idx += int(skip)
		n := int(count)
		if n == 0 {
			n = 256
		}
		for j := 0; j < n; j++ {
			var rgb [3]BYTE
			if err := binary.Read(r, binary.LittleEndian, &rgb); err != nil {
				return nil, err
			}
			palette = setPaletteEntry(palette, idx, color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255})
			idx++
		}
	}
	return palette, nil
}

// parsePalette applies a 0x2019 chunk to palette.
func parsePalette(data []byte, palette []color.Color) ([]color.Color, error) {
	r := bytes.NewReader(data)
	var head struct {
		NewPaletteSize DWORD
		FirstColor     DWORD
		LastColor      DWORD
		Reserved       [8]BYTE
	}
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return nil, err
	}
	if head.LastColor < head.FirstColor {
		return nil, fmt.Errorf("aseprite: palette range %d..%d is inverted", head.FirstColor, head.LastColor)
	}
	for i := head.FirstColor; i <= head.LastColor; i++ {
		var entry struct {
			Flags      WORD
			R, G, B, A BYTE
		}
		if err := binary.Read(r, binary.LittleEndian, &entry); err != nil {
			return nil, err
		}
		if entry.Flags&1 != 0 {
			if _, err := readString(r); err != nil {
				return nil, err
			}
		}
		palette = setPaletteEntry(palette, int(i), color.NRGBA{R: entry.R, G: entry.G, B: entry.B, A: entry.A})
	}
	return palette, nil
}

func setPaletteEntry(palette []color.Color, idx int, c color.Color) []color.Color {
	for len(palette) <= idx {
		palette = append(palette, color.Transparent)
	}
	palette[idx] = c
	return palette
}

func parseLayer(data []byte) (layer, error) {
	r := bytes.NewReader(data)
	var head struct {
		Flags         WORD
		Type          WORD
		ChildLevel    WORD
		DefaultWidth  WORD
		DefaultHeight WORD
		BlendMode     WORD
		Opacity       BYTE
		Reserved      [3]BYTE
	}
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return layer{}, err
	}
	name, err := readString(r)
	if err != nil {
		return layer{}, err
	}
	return layer{
		Flags:      head.Flags,
		Type:       head.Type,
		ChildLevel: head.ChildLevel,
		BlendMode:  head.BlendMode,
		Opacity:    head.Opacity,
		Name:       name,
	}, nil
}

func parseCel(data []byte, bpp int) (cel, error) {
	r := bytes.NewReader(data)
	var head struct {
		LayerIndex WORD
		X, Y       SHORT
		Opacity    BYTE
		Type       CelType
		ZIndex     SHORT
		Reserved   [5]BYTE
	}
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return cel{}, err
	}
	c := cel{
		LayerIndex: head.LayerIndex,
		X:          head.X,
		Y:          head.Y,
		Opacity:    head.Opacity,
		Type:       head.Type,
		ZIndex:     head.ZIndex,
	}

	switch c.Type {
	case LinkedCelData:
		if err := binary.Read(r, binary.LittleEndian, &c.LinkedFrame); err != nil {
			return cel{}, err
		}
		return c, nil
	case RawImageData, CompressedImageData:
		if err := binary.Read(r, binary.LittleEndian, &c.Width); err != nil {
			return cel{}, err
		}
		if err := binary.Read(r, binary.LittleEndian, &c.Height); err != nil {
			return cel{}, err
		}
		rest := data[len(data)-r.Len():]
		if c.Type == CompressedImageData {
			var err error
			if rest, err = decompressZlib(rest); err != nil {
				return cel{}, fmt.Errorf("aseprite: decompressing cel image: %w", err)
			}
		}
		want := int(c.Width) * int(c.Height) * bpp
		if len(rest) < want {
			return cel{}, fmt.Errorf("aseprite: cel image data too short: %d < %d bytes", len(rest), want)
		}
		c.Pixels = rest[:want]
		return c, nil
	default:
		// Tilemap cels are not rendered.
		return c, nil
	}
}

func parseTags(data []byte) ([]Tag, error) {
	r := bytes.NewReader(data)
	var head struct {
		NumberOfTags WORD
		Reserved     [8]BYTE
	}
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return nil, err
	}
	tags := make([]Tag, 0, head.NumberOfTags)
	for i := 0; i < int(head.NumberOfTags); i++ {
		var raw struct {
			FromFrame  WORD
			ToFrame    WORD
			Direction  LoopDirection
			Repeat     WORD
			Reserved   [6]BYTE
			Deprecated [3]BYTE
			ExtraByte  BYTE
		}
		if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
			return nil, err
		}
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		tags = append(tags, Tag{
			Name:      name,
			From:      int(raw.FromFrame),
			To:        int(raw.ToFrame),
			Direction: raw.Direction,
			Repeat:    int(raw.Repeat),
		})
	}
	return tags, nil
}

func decompressZlib(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("input data is empty")
	}
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib reader: %w", err)
	}
	defer r.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, r); err != nil {
		return nil, fmt.Errorf("failed to copy decompressed data: %w", err)
	}
	return out.Bytes(), nil
}
