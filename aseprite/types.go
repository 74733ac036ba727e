package aseprite

import "fmt"

// From https://github.com/aseprite/aseprite/blob/main/docs/ase-file-specs.md#references
type (
	BYTE  = uint8  // An 8-bit unsigned integer value
	WORD  = uint16 // A 16-bit unsigned integer value
	SHORT = int16  // A 16-bit signed integer value
	DWORD = uint32 // A 32-bit unsigned integer value
)

const (
	// MagicNumber identifies an Aseprite file (0xA5E0).
	MagicNumber = 0xA5E0
	// MagicNumberFrame identifies a frame header (0xF1FA).
	MagicNumberFrame = 0xF1FA

	// Color depth (bits per pixel)
	ColorDepthRGBA      WORD = 32
	ColorDepthGrayscale WORD = 16
	ColorDepthIndexed   WORD = 8

	headerSize      = 128
	frameHeaderSize = 16
	chunkHeaderSize = 6
)

// Chunk types understood by the decoder. Everything else is skipped.
const (
	chunkOldPalette WORD = 0x0004
	chunkLayer      WORD = 0x2004
	chunkCel        WORD = 0x2005
	chunkTags       WORD = 0x2018
	chunkPalette    WORD = 0x2019
)

// Header is the 128 byte file header.
type Header struct {
	FileSize          DWORD    // File size (4 bytes)
	MagicNumberHeader WORD     // Magic number (0xA5E0) (2 bytes)
	FrameCount        WORD     // Number of frames (2 bytes)
	Width             WORD     // Width in pixels (2 bytes)
	Height            WORD     // Height in pixels (2 bytes)
	ColorDepth        WORD     // 32 bpp = RGBA, 16 bpp = Grayscale, 8 bpp = Indexed (2 bytes)
	Flags             DWORD    // Flags: 1 = Layer opacity has valid value (4 bytes)
	Speed             WORD     // Deprecated, frame headers carry the duration (2 bytes)
	Reserved1         DWORD    // Reserved (set to 0)  (4 bytes)
	Reserved2         DWORD    // Reserved (set to 0) (4 bytes)
	TransparentIdx    BYTE     // Transparent palette entry for non-background layers (1 byte)
	IgnoreBytes       [3]BYTE  // Ignore these bytes (3 bytes)
	NumColors         WORD     // Number of colors (0 means 256 for old sprites format) (2 bytes)
	PixelWidth        BYTE     // Pixel width (1 byte)
	PixelHeight       BYTE     // Pixel height (1 byte)
	GridX             SHORT    // X position of the grid (2 bytes)
	GridY             SHORT    // Y position of the grid (2 bytes)
	GridWidth         WORD     // Grid width (zero if there is no grid) (2 bytes)
	GridHeight        WORD     // Grid height (zero if there is no grid) (2 bytes)
	FutureUse         [84]BYTE // For future use (set to zero) (84 bytes)
}

// LayerOpacityValid reports whether layer opacity values should be honored.
func (h Header) LayerOpacityValid() bool {
	return h.Flags&1 != 0
}

// bytesPerPixel returns the pixel stride of cel image data.
func (h Header) bytesPerPixel() (int, error) {
	switch h.ColorDepth {
	case ColorDepthRGBA:
		return 4, nil
	case ColorDepthGrayscale:
		return 2, nil
	case ColorDepthIndexed:
		return 1, nil
	default:
		return 0, fmt.Errorf("aseprite: unknown color depth: %d", h.ColorDepth)
	}
}

// FrameHeader represents the structure of a frame header (16 bytes)
type FrameHeader struct {
	BytesInFrame  DWORD   // Bytes in frame (4 bytes)
	MagicNumber   WORD    // Magic number (0xF1FA) (2 bytes)
	OldChunkCount WORD    // 0xFFFF means NewChunkCount must be used (2 bytes)
	FrameDuration WORD    // Frame duration in milliseconds (2 bytes)
	Reserved      [2]BYTE // Reserved (2 bytes)
	NewChunkCount DWORD   // 0 means OldChunkCount must be used (4 bytes)
}

// NumberOfChunks returns the number of chunks in the frame
func (fh *FrameHeader) NumberOfChunks() uint32 {
	if fh.OldChunkCount == 0xFFFF {
		return fh.NewChunkCount
	}
	if fh.NewChunkCount == 0 {
		return uint32(fh.OldChunkCount)
	}
	return fh.NewChunkCount
}

// Chunk is a raw chunk read from a frame.
type Chunk struct {
	ChunkSize DWORD
	ChunkType WORD
	ChunkData []BYTE
}

type rawFrame struct {
	Header FrameHeader
	Chunks []Chunk
}

// LoopDirection is the playback direction of a tag.
type LoopDirection BYTE

const (
	Forward         LoopDirection = iota // 0 = forward
	Reverse                              // 1 = reverse
	PingPong                             // 2 = ping-pong
	PingPongReverse                      // 3 = ping-pong reverse
)

// CelType is the kind of data stored in a cel chunk.
type CelType WORD

const (
	RawImageData CelType = iota
	LinkedCelData
	CompressedImageData
	CompressedTilemapData
)

// Layer flags and types (chunk 0x2004).
const (
	layerFlagVisible    WORD = 1
	layerFlagBackground WORD = 8

	layerTypeNormal  WORD = 0
	layerTypeGroup   WORD = 1
	layerTypeTilemap WORD = 2
)
