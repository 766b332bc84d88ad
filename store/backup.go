package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"lemoncello/model"
)

const keepBackups = 10

var errNoBackup = errors.New("no readable backup")

// backupSet is path.bak (the copy taken before the last write) plus
// timestamped path.bak.<stamp> copies, of which the newest keep survive.
type backupSet struct {
	path string
	keep int
	now  func() time.Time
}

func backupsFor(path string) backupSet {
	return backupSet{path: path, keep: keepBackups, now: time.Now}
}

func (b backupSet) latest() string {
	return b.path + ".bak"
}

// rotating lists the timestamped copies, oldest first.
func (b backupSet) rotating() ([]string, error) {
	files, err := filepath.Glob(b.path + ".bak.*")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// snapshot copies the current state file into the set. A missing file is not an error.
func (b backupSet) snapshot() error {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read state for backup: %w", err)
	}

	stamp := b.now().UTC().Format("20060102-150405.000000000")
	for _, target := range []string{b.latest(), b.path + ".bak." + stamp} {
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}
	}
	return b.prune()
}

func (b backupSet) prune() error {
	files, err := b.rotating()
	if err != nil || len(files) <= b.keep {
		return err
	}
	for _, old := range files[:len(files)-b.keep] {
		if err := os.Remove(old); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// newest returns the most recent backup that decodes, trying path.bak first.
func (b backupSet) newest() (model.AppState, string, error) {
	rotating, err := b.rotating()
	if err != nil {
		return model.AppState{}, "", err
	}
	candidates := []string{b.latest()}
	for i := len(rotating) - 1; i >= 0; i-- {
		candidates = append(candidates, rotating[i])
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		if state, err := decodeState(data); err == nil {
			return state, candidate, nil
		}
	}
	return model.AppState{}, "", errNoBackup
}

// quarantine renames a corrupt state file to name.corrupt-<stamp>.ext and returns the new path.
func (b backupSet) quarantine() (string, error) {
	if _, err := os.Stat(b.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	ext := filepath.Ext(b.path)
	stem := strings.TrimSuffix(filepath.Base(b.path), ext)
	moved := filepath.Join(filepath.Dir(b.path), fmt.Sprintf("%s.corrupt-%s%s", stem, b.now().UTC().Format("20060102-150405"), ext))
	if err := os.Rename(b.path, moved); err != nil {
		return "", err
	}
	return moved, nil
}
