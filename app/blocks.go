package app

import (
	"fmt"
	"strings"

	"lemoncello/model"
)

// Blocks returns the block library in display order.
func (s *Service) Blocks() []model.Block {
	blocks := make([]model.Block, len(s.state.Blocks))
	copy(blocks, s.state.Blocks)
	return blocks
}

// GetBlock returns a block by id.
func (s *Service) GetBlock(id string) (model.Block, error) {
	for _, b := range s.state.Blocks {
		if b.ID == id {
			return b, nil
		}
	}
	return model.Block{}, ErrBlockNotFound
}

// ResolveBlock finds a block by id, then by case-insensitive name.
// The quick start id always resolves.
func (s *Service) ResolveBlock(ref string) (model.Block, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Block{}, ErrBlockNotFound
	}
	if ref == model.QuickStartBlockID {
		return model.QuickStartBlock(), nil
	}
	if b, err := s.GetBlock(ref); err == nil {
		return b, nil
	}
	for _, b := range s.state.Blocks {
		if strings.EqualFold(b.Name, ref) {
			return b, nil
		}
	}
	return model.Block{}, fmt.Errorf("%w: %q", ErrBlockNotFound, ref)
}

// CreateBlock validates the template, assigns an id and appends it to the library.
func (s *Service) CreateBlock(block model.Block) (model.Block, error) {
	block, err := validateBlock(block)
	if err != nil {
		return model.Block{}, err
	}
	block.ID = s.newID()
	block.CreatedAt = s.now()
	s.pushUndo()
	s.state.Blocks = append(s.state.Blocks, block)
	return block, nil
}

// UpdateBlock replaces the editable fields of a block. Running timers keep their own copy.
func (s *Service) UpdateBlock(id string, changes model.Block) (model.Block, error) {
	changes, err := validateBlock(changes)
	if err != nil {
		return model.Block{}, err
	}
	for i := range s.state.Blocks {
		if s.state.Blocks[i].ID != id {
			continue
		}
		changes.ID = id
		changes.CreatedAt = s.state.Blocks[i].CreatedAt
		s.pushUndo()
		s.state.Blocks[i] = changes
		return changes, nil
	}
	return model.Block{}, ErrBlockNotFound
}

func (s *Service) DeleteBlock(id string) error {
	for i := range s.state.Blocks {
		if s.state.Blocks[i].ID != id {
			continue
		}
		s.pushUndo()
		s.state.Blocks = append(s.state.Blocks[:i], s.state.Blocks[i+1:]...)
		return nil
	}
	return ErrBlockNotFound
}

func (s *Service) MoveBlockUp(id string) (model.Block, error) {
	return s.moveBlock(id, -1)
}

func (s *Service) MoveBlockDown(id string) (model.Block, error) {
	return s.moveBlock(id, 1)
}

func (s *Service) moveBlock(id string, direction int) (model.Block, error) {
	idx := -1
	for i := range s.state.Blocks {
		if s.state.Blocks[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return model.Block{}, ErrBlockNotFound
	}

	target := idx + direction
	if target < 0 {
		return model.Block{}, ErrBlockAlreadyAtTop
	}
	if target >= len(s.state.Blocks) {
		return model.Block{}, ErrBlockAlreadyAtBottom
	}

	s.pushUndo()
	s.state.Blocks[idx], s.state.Blocks[target] = s.state.Blocks[target], s.state.Blocks[idx]
	return s.state.Blocks[target], nil
}

// SeedDefaultBlocks fills an empty library with the default templates.
// It reports whether anything was added. Seeding is not undoable.
func (s *Service) SeedDefaultBlocks() bool {
	if len(s.state.Blocks) > 0 {
		return false
	}
	now := s.now()
	for _, b := range model.DefaultBlocks() {
		b.ID = s.newID()
		b.CreatedAt = now
		s.state.Blocks = append(s.state.Blocks, b)
	}
	return true
}

// ImportBlocks appends blocks read from a library file. Either every block is
// valid and all are added as one undoable step, or nothing changes.
func (s *Service) ImportBlocks(blocks []model.Block) ([]model.Block, error) {
	valid := make([]model.Block, 0, len(blocks))
	for i, b := range blocks {
		b, err := validateBlock(b)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i+1, err)
		}
		valid = append(valid, b)
	}

	now := s.now()
	s.pushUndo()
	for i := range valid {
		valid[i].ID = s.newID()
		valid[i].CreatedAt = now
	}
	s.state.Blocks = append(s.state.Blocks, valid...)
	return valid, nil
}

func validateBlock(b model.Block) (model.Block, error) {
	b.Name = strings.TrimSpace(b.Name)
	b.Description = strings.TrimSpace(b.Description)
	b.Icon = strings.TrimSpace(b.Icon)
	b.Color = strings.TrimSpace(b.Color)
	if b.Name == "" {
		return model.Block{}, ErrInvalidName
	}
	if !b.Kind.Valid() {
		return model.Block{}, fmt.Errorf("%w: %q", ErrInvalidKind, b.Kind)
	}
	if b.WorkMinutes < 0 || b.RestMinutes < 0 {
		return model.Block{}, fmt.Errorf("%w: minutes must not be negative", ErrInvalidDuration)
	}

	switch b.Kind {
	case model.KindMeeting:
		b.RestMinutes = 0
		b.Cycles = 1
	case model.KindRest:
		b.WorkMinutes = 0
		b.Cycles = 1
	case model.KindCustom:
		b.Cycles = 1
	}
	if b.Cycles < 1 {
		return model.Block{}, ErrInvalidCycles
	}
	if b.Kind == model.KindRest && b.RestMinutes == 0 {
		return model.Block{}, fmt.Errorf("%w: rest blocks need rest minutes", ErrInvalidDuration)
	}
	if b.Kind != model.KindRest && b.WorkMinutes == 0 {
		return model.Block{}, fmt.Errorf("%w: work minutes must be positive", ErrInvalidDuration)
	}
	return b, nil
}
