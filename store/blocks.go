package store

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"lemoncello/model"
)

// ErrEmptyLibrary is returned when an imported document holds no blocks.
var ErrEmptyLibrary = errors.New("block library is empty")

type blockLibrary struct {
	Blocks []model.Block `yaml:"blocks"`
}

// ExportBlocks writes blocks as a YAML library document.
// IDs and creation times are not exported.
func ExportBlocks(w io.Writer, blocks []model.Block) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(blockLibrary{Blocks: blocks}); err != nil {
		return fmt.Errorf("encode block library: %w", err)
	}
	return enc.Close()
}

// ReadBlocks parses a YAML library document.
func ReadBlocks(r io.Reader) ([]model.Block, error) {
	var lib blockLibrary
	if err := yaml.NewDecoder(r).Decode(&lib); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyLibrary
		}
		return nil, fmt.Errorf("decode block library: %w", err)
	}
	if len(lib.Blocks) == 0 {
		return nil, ErrEmptyLibrary
	}
	return lib.Blocks, nil
}

// ReadBlocksFile is ReadBlocks on the file at path.
func ReadBlocksFile(path string) ([]model.Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadBlocks(f)
}
