package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lemoncello/model"
)

const undoStackLimit = 20

var (
	ErrBlockNotFound        = errors.New("block not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrInvalidName          = errors.New("name must not be empty")
	ErrInvalidKind          = errors.New("invalid block kind")
	ErrInvalidDuration      = errors.New("invalid duration")
	ErrInvalidCycles        = errors.New("cycles must be at least 1")
	ErrInvalidTimeRange     = errors.New("session must end after it starts")
	ErrNothingToUndo        = errors.New("nothing to undo")
	ErrBlockAlreadyAtTop    = errors.New("block is already at top")
	ErrBlockAlreadyAtBottom = errors.New("block is already at bottom")
	ErrNoSessions           = errors.New("no sessions recorded")
	ErrInvalidFocus         = errors.New("invalid focus")
)

// snapshot is what Undo restores. Sessions are append-only and never part of it.
type snapshot struct {
	blocks []model.Block
	tasks  []model.Task
}

// Service holds domain rules and in-memory state.
// It is not safe for concurrent use.
type Service struct {
	state model.AppState
	undo  []snapshot
	newID func() string
	now   func() time.Time
}

// NewService creates a service with a copy of the provided state.
func NewService(state model.AppState) *Service {
	return &Service{
		state: normalizeState(copyState(state)),
		undo:  []snapshot{},
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// State returns a copy of current state.
func (s *Service) State() model.AppState {
	return copyState(s.state)
}

// SetFocus records which pane the UI had focused.
func (s *Service) SetFocus(focus string) error {
	switch focus {
	case model.FocusBlocks, model.FocusTasks, model.FocusMinimized:
		s.state.Metadata.UI.Focus = focus
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFocus, focus)
	}
}

func (s *Service) MarkOnboardingSeen() {
	s.state.Metadata.FirstRun = false
}

// Undo reverts the latest block or task mutation.
func (s *Service) Undo() error {
	if len(s.undo) == 0 {
		return ErrNothingToUndo
	}
	last := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.state.Blocks = append([]model.Block{}, last.blocks...)
	s.state.Tasks = append([]model.Task{}, last.tasks...)
	return nil
}

// CanUndo reports whether Undo has anything to revert.
func (s *Service) CanUndo() bool {
	return len(s.undo) > 0
}

func (s *Service) pushUndo() {
	s.undo = append(s.undo, snapshot{
		blocks: append([]model.Block{}, s.state.Blocks...),
		tasks:  append([]model.Task{}, s.state.Tasks...),
	})
	if len(s.undo) > undoStackLimit {
		s.undo = s.undo[len(s.undo)-undoStackLimit:]
	}
}

func normalizeState(state model.AppState) model.AppState {
	if state.Blocks == nil {
		state.Blocks = []model.Block{}
	}
	if state.Tasks == nil {
		state.Tasks = []model.Task{}
	}
	if state.Sessions == nil {
		state.Sessions = []model.Session{}
	}
	if state.Metadata.Version == 0 {
		state.Metadata.Version = 1
	}
	switch strings.TrimSpace(state.Metadata.UI.Focus) {
	case model.FocusBlocks, model.FocusTasks, model.FocusMinimized:
	default:
		state.Metadata.UI.Focus = model.FocusBlocks
	}
	for i := range state.Sessions {
		if state.Sessions[i].Date == "" && !state.Sessions[i].EndTime.IsZero() {
			state.Sessions[i].Date = model.DayOf(state.Sessions[i].EndTime)
		}
	}
	return state
}

func copyState(state model.AppState) model.AppState {
	out := state
	if state.Blocks != nil {
		out.Blocks = append([]model.Block{}, state.Blocks...)
	}
	if state.Tasks != nil {
		out.Tasks = append([]model.Task{}, state.Tasks...)
	}
	if state.Sessions != nil {
		out.Sessions = append([]model.Session{}, state.Sessions...)
	}
	return out
}
