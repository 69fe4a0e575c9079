package cwcheat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/psptransmog/internal/codegen"
	"github.com/retroenv/retrogolib/assert"
)

func TestLine(t *testing.T) {
	e := NewEncoder(DefaultBase)

	tests := []struct {
		name     string
		in       codegen.Instruction
		expected string
	}{
		{
			// armor entry: 0x08960750 + 101*40 = 0x08961958
			name:     "word write invisible armor",
			in:       codegen.NewInstruction(0x08961958, codegen.Word, 0),
			expected: "_L 0x20161958 0x00000000",
		},
		{
			name:     "half write weapon model 242",
			in:       codegen.NewInstruction(0x08957828, codegen.Half, 242),
			expected: "_L 0x10157828 0x000000F2",
		},
		{
			name:     "byte write",
			in:       codegen.NewInstruction(0x08800001, codegen.Byte, 0xAB),
			expected: "_L 0x00000001 0x000000AB",
		},
		{
			name:     "word write packed models",
			in:       codegen.NewInstruction(0x08961958, codegen.Word, 0x00610060),
			expected: "_L 0x20161958 0x00610060",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := e.Line(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, line)
		})
	}
}

func TestLineOffsetRoundTrip(t *testing.T) {
	e := NewEncoder(DefaultBase)

	address := uint32(0x08961958)
	line, err := e.Line(codegen.NewInstruction(address, codegen.Word, 0))
	assert.NoError(t, err)

	// offset field recovers the address by adding the base back
	assert.Equal(t, "_L 0x20161958 0x00000000", line)
	assert.Equal(t, address, uint32(0x00161958)+DefaultBase)
}

func TestLineRejectsUnencodableAddresses(t *testing.T) {
	e := NewEncoder(DefaultBase)

	_, err := e.Line(codegen.NewInstruction(0x08000000, codegen.Word, 0))
	assert.Error(t, err)

	_, err = e.Line(codegen.NewInstruction(0x18800000, codegen.Word, 0))
	assert.Error(t, err)
}

func TestEncodeBlock(t *testing.T) {
	e := NewEncoder(DefaultBase)

	instructions := []codegen.Instruction{
		codegen.NewInstruction(0x08961958, codegen.Word, 0),
		codegen.NewInstruction(0x08961980, codegen.Word, 0),
	}
	block, err := e.EncodeBlock("Armor Transmog: Rath Soul Helm -> Invisible", instructions)
	assert.NoError(t, err)

	expected := "_C1 Armor Transmog: Rath Soul Helm -> Invisible\n" +
		"_L 0x20161958 0x00000000\n" +
		"_L 0x20161980 0x00000000"
	assert.Equal(t, expected, block.String())

	block.Enabled = false
	assert.True(t, strings.HasPrefix(block.String(), "_C0 "))
}

func TestRender(t *testing.T) {
	a := Block{Title: "First", Enabled: true, Lines: []string{"_L 0x20161958 0x00000000"}}
	b := Block{Title: "Second", Enabled: true}

	expected := "_C1 First\n_L 0x20161958 0x00000000\n\n_C1 Second"
	assert.Equal(t, expected, Render([]Block{a, b}))
}

func TestAppendFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ULJM05500.ini")
	assert.NoError(t, os.WriteFile(path, []byte("_S ULJM-05500\n_G Monster Hunter Freedom Unite\n"), 0o644))

	block := Block{Title: "Test", Enabled: true, Lines: []string{"_L 0x20161958 0x00000000"}}
	assert.NoError(t, AppendFile(path, []Block{block}))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	expected := "_S ULJM-05500\n_G Monster Hunter Freedom Unite\n\n\n" +
		"_C1 Test\n_L 0x20161958 0x00000000\n"
	assert.Equal(t, expected, string(data))

	// appending nothing leaves the file untouched
	assert.NoError(t, AppendFile(path, nil))
	unchanged, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, expected, string(unchanged))
}
