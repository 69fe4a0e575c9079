// Package cwcheat encodes patch instructions into the CWCheat text format
// and appends code blocks to a cheat database file.
package cwcheat

import (
	"fmt"
	"strings"

	"github.com/retroenv/psptransmog/internal/codegen"
)

// DefaultBase is the address all CWCheat offsets are relative to.
const DefaultBase = 0x08800000

// maxOffset bounds the 7 hex digit offset field of a code line.
const maxOffset = 0x10000000

// Encoder converts instructions into CWCheat code lines. Encoding is pure,
// the same instruction always yields the same line.
type Encoder struct {
	base uint32
}

// NewEncoder creates an encoder relative to the given external base address.
func NewEncoder(base uint32) Encoder {
	return Encoder{base: base}
}

// Line encodes one instruction as a CWCheat write line:
// "_L 0x{T}{offset:07X} 0x{value:08X}" with type tag 0/1/2 for
// byte/half/word writes.
func (e Encoder) Line(in codegen.Instruction) (string, error) {
	if in.Address < e.base {
		return "", fmt.Errorf("address 0x%08X below cheat base 0x%08X", in.Address, e.base)
	}
	offset := in.Address - e.base
	if offset >= maxOffset {
		return "", fmt.Errorf("address 0x%08X exceeds cheat offset range", in.Address)
	}

	var tag byte
	switch in.Width {
	case codegen.Byte:
		tag = '0'
	case codegen.Half:
		tag = '1'
	case codegen.Word:
		tag = '2'
	default:
		return "", fmt.Errorf("unsupported write width %d", in.Width)
	}

	return fmt.Sprintf("_L 0x%c%07X 0x%08X", tag, offset, in.Value), nil
}

// Block is a titled group of code lines, the unit shown to the user and
// appended to the cheat file.
type Block struct {
	Title   string
	Enabled bool
	Lines   []string
}

// EncodeBlock encodes instructions into an enabled block.
func (e Encoder) EncodeBlock(title string, instructions []codegen.Instruction) (Block, error) {
	block := Block{
		Title:   title,
		Enabled: true,
		Lines:   make([]string, 0, len(instructions)),
	}
	for _, in := range instructions {
		line, err := e.Line(in)
		if err != nil {
			return Block{}, fmt.Errorf("encoding block %q: %w", title, err)
		}
		block.Lines = append(block.Lines, line)
	}
	return block, nil
}

// String renders the block with its _C header line.
func (b Block) String() string {
	prefix := "_C1"
	if !b.Enabled {
		prefix = "_C0"
	}
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteByte(' ')
	sb.WriteString(b.Title)
	for _, line := range b.Lines {
		sb.WriteByte('\n')
		sb.WriteString(line)
	}
	return sb.String()
}

// Render joins blocks with a blank line between them.
func Render(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n\n")
}
