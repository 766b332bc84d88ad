package store

import (
	"sync"

	"lemoncello/model"
)

// File serialises access to one state file for callers that share it,
// such as the engine's session sink and the UI.
type File struct {
	mu   sync.Mutex
	path string
}

// Open returns a handle for the state file at path. The file is not read.
func Open(path string) *File {
	return &File{path: path}
}

// Path returns the state file location.
func (f *File) Path() string {
	return f.path
}

// Load reads the state, recovering from backups when needed.
func (f *File) Load() (model.AppState, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return LoadWithRecovery(f.path)
}

// Save autosaves state.
func (f *File) Save(state model.AppState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Autosave(f.path, state)
}

// Update loads the state, applies fn and autosaves the result.
// Nothing is written when fn returns an error.
func (f *File) Update(fn func(*model.AppState) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	state, err := Load(f.path)
	if err != nil {
		return err
	}
	if err := fn(&state); err != nil {
		return err
	}
	return Autosave(f.path, state)
}
