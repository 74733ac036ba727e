package aseprite

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// readFile parses the header, frame headers and raw chunks of an .aseprite
// or .ase stream. Chunk payloads are not interpreted here.
func readFile(r io.Reader) (*Header, []rawFrame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	br := bytes.NewReader(data)

	header := &Header{}
	if err := binary.Read(br, binary.LittleEndian, header); err != nil {
		return nil, nil, fmt.Errorf("aseprite: reading header: %w", err)
	}
	if header.MagicNumberHeader != MagicNumber {
		return nil, nil, fmt.Errorf("aseprite: invalid magic number: 0x%X", header.MagicNumberHeader)
	}
	if header.Width == 0 || header.Height == 0 {
		return nil, nil, fmt.Errorf("aseprite: invalid sprite size %dx%d", header.Width, header.Height)
	}

	frames := make([]rawFrame, 0, header.FrameCount)
	for i := 0; i < int(header.FrameCount); i++ {
		fh := FrameHeader{}
		if err := binary.Read(br, binary.LittleEndian, &fh); err != nil {
			return nil, nil, fmt.Errorf("aseprite: reading frame %d header: %w", i, err)
		}
		if fh.MagicNumber != MagicNumberFrame {
			return nil, nil, fmt.Errorf("aseprite: frame %d: invalid magic number: 0x%X", i, fh.MagicNumber)
		}

		var chunks []Chunk
		var totalChunkSize uint32
		for j := 0; j < int(fh.NumberOfChunks()); j++ {
			chunk := Chunk{}
			if err := binary.Read(br, binary.LittleEndian, &chunk.ChunkSize); err != nil {
				return nil, nil, fmt.Errorf("aseprite: frame %d chunk %d: %w", i, j, err)
			}
			if err := binary.Read(br, binary.LittleEndian, &chunk.ChunkType); err != nil {
				return nil, nil, fmt.Errorf("aseprite: frame %d chunk %d: %w", i, j, err)
			}
			if chunk.ChunkSize < chunkHeaderSize {
				return nil, nil, fmt.Errorf("aseprite: invalid chunk detected: size %d", chunk.ChunkSize)
			}
			chunk.ChunkData = make([]BYTE, chunk.ChunkSize-chunkHeaderSize)
			if _, err := io.ReadFull(br, chunk.ChunkData); err != nil {
				return nil, nil, fmt.Errorf("aseprite: frame %d chunk %d data: %w", i, j, err)
			}
			chunks = append(chunks, chunk)
			totalChunkSize += chunk.ChunkSize
		}

		if totalChunkSize+frameHeaderSize != fh.BytesInFrame {
			return nil, nil, fmt.Errorf("aseprite: frame %d size mismatch: expected %d, got %d",
				i, fh.BytesInFrame, totalChunkSize+frameHeaderSize)
		}
		frames = append(frames, rawFrame{Header: fh, Chunks: chunks})
	}

	return header, frames, nil
}
