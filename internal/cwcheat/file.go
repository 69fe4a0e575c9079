package cwcheat

import (
	"fmt"
	"io"
	"os"
)

// Write renders blocks to a writer, ending with a newline.
func Write(w io.Writer, blocks []Block) error {
	if len(blocks) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, Render(blocks)+"\n"); err != nil {
		return fmt.Errorf("writing cheat blocks: %w", err)
	}
	return nil
}

// AppendFile appends blocks to a cheat database file, separated from the
// existing content by a blank line. The file is created if missing.
func AppendFile(path string, blocks []Block) error {
	if len(blocks) == 0 {
		return nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening cheat file %s: %w", path, err)
	}
	if _, err := io.WriteString(file, "\n\n"+Render(blocks)+"\n"); err != nil {
		_ = file.Close()
		return fmt.Errorf("appending to cheat file %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing cheat file %s: %w", path, err)
	}
	return nil
}
