// Package savestate loads PSP RAM snapshots from PPSSPP save states or
// raw memory dump files.
package savestate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/retroenv/psptransmog/internal/memimage"
)

// PPSSPP save state envelope: a fixed header followed by a zstd stream,
// the RAM range starts at a fixed offset inside the decompressed data.
const (
	headerSize = 0xB0
	ramOffset  = 0x48

	// RAMBase is the virtual address of the start of PSP user RAM.
	RAMBase = 0x08000000

	// decompressed states are well under this, guard against corrupt input
	maxStateSize = 256 << 20
)

// Loader loads memory images from disk.
type Loader struct{}

// New creates a loader.
func New() *Loader {
	return &Loader{}
}

// Load reads a memory image from the given file. Files with the .ppst
// extension are treated as PPSSPP save states, anything else as a raw
// RAM dump starting at rawBase.
func (l *Loader) Load(path string, rawBase uint32) (*memimage.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".ppst") {
		return l.loadState(data)
	}

	img, err := memimage.New(rawBase, data)
	if err != nil {
		return nil, fmt.Errorf("loading raw dump %s: %w", path, err)
	}
	return img, nil
}

func (l *Loader) loadState(data []byte) (*memimage.Image, error) {
	if len(data) <= headerSize {
		return nil, fmt.Errorf("save state too short: %d bytes", len(data))
	}

	decoder, err := zstd.NewReader(nil,
		zstd.WithDecoderMaxMemory(maxStateSize))
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer decoder.Close()

	decompressed, err := decoder.DecodeAll(data[headerSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing save state: %w", err)
	}
	if len(decompressed) <= ramOffset {
		return nil, fmt.Errorf("decompressed state too short: %d bytes", len(decompressed))
	}

	img, err := memimage.New(RAMBase, decompressed[ramOffset:])
	if err != nil {
		return nil, fmt.Errorf("building memory image: %w", err)
	}
	return img, nil
}
