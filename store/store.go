// Package store keeps lemoncello's blocks, tasks and session log in one JSON
// document. Writes go through a temp file and rename, the previous document is
// kept as a backup, and a corrupt document is replaced by the newest readable
// backup on load.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lemoncello/model"
)

const currentVersion = 1

// ErrUnsupportedVersion is returned for documents written by a newer schema.
// Such files are left untouched.
var ErrUnsupportedVersion = errors.New("state file was written by a newer lemoncello")

// CorruptError reports a document, or one of its keys, that could not be decoded.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt state (%s): %v", e.Key, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// document holds each top-level key raw so that an absent key keeps its default.
type document struct {
	Blocks   json.RawMessage `json:"blocks"`
	Tasks    json.RawMessage `json:"tasks"`
	Sessions json.RawMessage `json:"sessions"`
	Metadata json.RawMessage `json:"metadata"`
}

// Load reads the state file at path.
// A missing file yields a fresh state.
func Load(path string) (model.AppState, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return model.NewState(), nil
	}
	if err != nil {
		return model.AppState{}, fmt.Errorf("read state: %w", err)
	}
	return decodeState(data)
}

// LoadWithRecovery loads state, restoring the newest readable backup when the state file is corrupt.
// The returned message is non-empty when a recovery happened.
func LoadWithRecovery(path string) (model.AppState, string, error) {
	state, err := Load(path)
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		return state, "", err
	}

	backups := backupsFor(path)
	moved, err := backups.quarantine()
	if err != nil {
		return model.AppState{}, "", fmt.Errorf("move corrupt state file: %w", err)
	}
	suffix := ""
	if moved != "" {
		suffix = fmt.Sprintf(" (bad file moved to %s)", filepath.Base(moved))
	}

	restored, source, err := backups.newest()
	switch {
	case err == nil:
		if err := Save(path, restored); err != nil {
			return model.AppState{}, "", fmt.Errorf("restore backup: %w", err)
		}
		return restored, fmt.Sprintf("Recovered corrupt state from %s%s", filepath.Base(source), suffix), nil
	case !errors.Is(err, errNoBackup):
		return model.AppState{}, "", fmt.Errorf("inspect backups: %w", err)
	}

	fresh := model.NewState()
	if err := Save(path, fresh); err != nil {
		return model.AppState{}, "", fmt.Errorf("write fresh state after corruption: %w", err)
	}
	return fresh, "State file was corrupt and no backup could be read; started fresh" + suffix, nil
}

// Save writes state to path without taking a backup.
func Save(path string, state model.AppState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Autosave replaces the state file atomically through a temp file and rename.
// The previous file is kept as path.bak plus a rotating timestamped set.
func Autosave(path string, state model.AppState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := backupsFor(path).snapshot(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	err = enc.Encode(state)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func decodeState(data []byte) (model.AppState, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.AppState{}, &CorruptError{Key: "document", Err: err}
	}

	state := model.NewState()
	if present(doc.Metadata) {
		state.Metadata = model.Metadata{}
	}
	keys := []struct {
		name string
		raw  json.RawMessage
		dst  any
	}{
		{"blocks", doc.Blocks, &state.Blocks},
		{"tasks", doc.Tasks, &state.Tasks},
		{"sessions", doc.Sessions, &state.Sessions},
		{"metadata", doc.Metadata, &state.Metadata},
	}
	for _, k := range keys {
		if !present(k.raw) {
			continue
		}
		if err := json.Unmarshal(k.raw, k.dst); err != nil {
			return model.AppState{}, &CorruptError{Key: k.name, Err: err}
		}
	}

	if state.Metadata.Version > currentVersion {
		return model.AppState{}, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, state.Metadata.Version)
	}
	normalize(&state)
	return state, nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// normalize fills what older documents did not store.
func normalize(state *model.AppState) {
	if state.Blocks == nil {
		state.Blocks = []model.Block{}
	}
	if state.Tasks == nil {
		state.Tasks = []model.Task{}
	}
	if state.Sessions == nil {
		state.Sessions = []model.Session{}
	}
	for i := range state.Sessions {
		s := &state.Sessions[i]
		if s.Date == "" && !s.EndTime.IsZero() {
			s.Date = model.DayOf(s.EndTime)
		}
	}
	if state.Metadata.Version == 0 {
		state.Metadata.Version = currentVersion
	}
	if strings.TrimSpace(state.Metadata.UI.Focus) == "" {
		state.Metadata.UI.Focus = model.FocusBlocks
	}
}
