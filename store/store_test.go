package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"
	"time"

	"lemoncello/model"
)

func loggedState(tag string) model.AppState {
	start := time.Date(2026, 2, 19, 9, 0, 0, 0, time.UTC)
	worked, expected := 12, 25
	return model.AppState{
		Blocks: []model.Block{{
			ID:          "focus-" + tag,
			Name:        "Focus " + tag,
			Kind:        model.KindPomodoro,
			WorkMinutes: 25,
			RestMinutes: 5,
			Cycles:      4,
			CreatedAt:   start,
		}},
		Tasks: []model.Task{{ID: "write-" + tag, Title: "Write " + tag, CreatedAt: start}},
		Sessions: []model.Session{{
			ID:                          "s-" + tag,
			BlockID:                     "focus-" + tag,
			BlockName:                   "Focus " + tag,
			StartTime:                   start,
			EndTime:                     start.Add(12 * time.Minute),
			TotalWorkMinutes:            worked,
			WorkDescription:             "draft " + tag,
			Date:                        "2026-02-19",
			StoppedByUser:               true,
			TimeCompletedBeforeStopping: &worked,
			ExpectedDuration:            &expected,
			TaskID:                      "write-" + tag,
			TaskName:                    "Write " + tag,
		}},
		Metadata: model.Metadata{Version: 1, UI: model.UIContext{Focus: model.FocusTasks}},
	}
}

func writeRaw(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadWithoutFileGivesFreshState(t *testing.T) {
	state, err := Load(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(model.NewState(), state) {
		t.Fatalf("got %+v", state)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	want := loggedState("a")
	if err := Save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("round trip mismatch\nwant=%+v\ngot=%+v", want, got)
	}
}

func TestAutosaveKeepsPreviousDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	before, after := loggedState("before"), loggedState("after")
	if err := Save(path, before); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := Autosave(path, after); err != nil {
		t.Fatalf("autosave: %v", err)
	}

	if got, err := Load(path); err != nil || !reflect.DeepEqual(after, got) {
		t.Fatalf("current document: %v %+v", err, got)
	}
	if got, err := Load(path + ".bak"); err != nil || !reflect.DeepEqual(before, got) {
		t.Fatalf("backup document: %v %+v", err, got)
	}
	rotating, _ := filepath.Glob(path + ".bak.*")
	if len(rotating) != 1 {
		t.Fatalf("expected one rotating copy, got %v", rotating)
	}
}

func TestAutosaveFirstWriteTakesNoBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := Autosave(path, loggedState("only")); err != nil {
		t.Fatalf("autosave: %v", err)
	}
	if _, err := os.Stat(path + ".bak"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no backup, stat err=%v", err)
	}
}

func TestBackupSetPrunesOldestCopies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	writeRaw(t, path, `{"blocks":[]}`)

	clock := time.Date(2026, 2, 19, 8, 0, 0, 0, time.UTC)
	set := backupSet{path: path, keep: 3, now: func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}}
	for i := 0; i < 6; i++ {
		if err := set.snapshot(); err != nil {
			t.Fatalf("snapshot %d: %v", i, err)
		}
	}

	files, err := set.rotating()
	if err != nil {
		t.Fatalf("rotating: %v", err)
	}
	want := []string{
		path + ".bak.20260219-080004.000000000",
		path + ".bak.20260219-080005.000000000",
		path + ".bak.20260219-080006.000000000",
	}
	if !reflect.DeepEqual(want, files) {
		t.Fatalf("kept copies\nwant=%v\ngot=%v", want, files)
	}
}

func TestLoadWithRecoveryUsesLatestBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	for i, s := range []model.AppState{loggedState("1"), loggedState("2"), loggedState("3")} {
		save := Autosave
		if i == 0 {
			save = Save
		}
		if err := save(path, s); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	writeRaw(t, path, "{truncated")

	got, msg, err := LoadWithRecovery(path)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if msg == "" {
		t.Fatalf("expected a recovery message")
	}
	if !reflect.DeepEqual(loggedState("2"), got) {
		t.Fatalf("expected the state before the last write, got %+v", got)
	}
	if persisted, err := Load(path); err != nil || !reflect.DeepEqual(got, persisted) {
		t.Fatalf("recovered state not written back: %v", err)
	}
	moved, _ := filepath.Glob(filepath.Join(dir, "state.corrupt-*.json"))
	if len(moved) != 1 {
		t.Fatalf("expected the bad file to be kept aside once, got %v", moved)
	}
}

func TestLoadWithRecoverySkipsUnreadableBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	good := loggedState("good")
	if err := Save(path, good); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := Autosave(path, loggedState("later")); err != nil {
		t.Fatalf("autosave: %v", err)
	}
	writeRaw(t, path+".bak", `{"sessions": "nope"}`)
	writeRaw(t, path, "")

	got, _, err := LoadWithRecovery(path)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if !reflect.DeepEqual(good, got) {
		t.Fatalf("expected rotating copy, got %+v", got)
	}
}

func TestLoadWithRecoveryStartsFreshWithoutBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	writeRaw(t, path, "[1, 2")

	got, msg, err := LoadWithRecovery(path)
	if err != nil || msg == "" {
		t.Fatalf("recover: %v %q", err, msg)
	}
	if !reflect.DeepEqual(model.NewState(), got) {
		t.Fatalf("expected fresh state, got %+v", got)
	}
	if persisted, err := Load(path); err != nil || !reflect.DeepEqual(model.NewState(), persisted) {
		t.Fatalf("fresh state not written: %v %+v", err, persisted)
	}
}

func TestLoadReportsCorruptKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	writeRaw(t, path, `{"blocks": [], "tasks": {"id": 3}}`)

	_, err := Load(path)
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) || corrupt.Key != "tasks" {
		t.Fatalf("expected corrupt tasks key, got %v", err)
	}
}

func TestNewerVersionIsRejectedAndLeftInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	body := `{"blocks": [], "metadata": {"version": ` + strconv.Itoa(currentVersion+1) + `}}`
	writeRaw(t, path, body)

	if _, _, err := LoadWithRecovery(path); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != body {
		t.Fatalf("state file was touched: %v %q", err, data)
	}
}

func TestLoadFillsOlderDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	writeRaw(t, path, `{
  "blocks": [{"id": "b1", "name": "Focus", "kind": "pomodoro", "workMinutes": 25, "restMinutes": 5, "cycles": 4}],
  "sessions": [{"id": "s1", "blockId": "b1", "endTime": "2026-02-19T12:00:00Z", "totalWorkMinutes": 25}],
  "tasks": null
}`)

	state, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state.Metadata.Version != currentVersion || state.Metadata.UI.Focus != model.FocusBlocks {
		t.Fatalf("metadata defaults not applied: %+v", state.Metadata)
	}
	if !state.Metadata.FirstRun {
		t.Fatalf("a document without metadata should still show onboarding")
	}
	if state.Tasks == nil {
		t.Fatalf("null tasks should decode as an empty list")
	}
	end := time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC)
	if len(state.Sessions) != 1 || state.Sessions[0].Date != model.DayOf(end) {
		t.Fatalf("session date not derived from end time: %+v", state.Sessions)
	}
	if len(state.Blocks) != 1 || state.Blocks[0].EffectiveCycles() != 4 {
		t.Fatalf("unexpected blocks: %+v", state.Blocks)
	}
}

func TestFileUpdateAppliesAndPersists(t *testing.T) {
	f := Open(filepath.Join(t.TempDir(), "nested", "state.json"))

	err := f.Update(func(state *model.AppState) error {
		state.Sessions = append(state.Sessions, model.Session{ID: "s1", Date: "2026-02-19"})
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	boom := errors.New("boom")
	err = f.Update(func(state *model.AppState) error {
		state.Sessions = nil
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}

	state, status, err := f.Load()
	if err != nil || status != "" {
		t.Fatalf("load: %v (%s)", err, status)
	}
	if len(state.Sessions) != 1 || state.Sessions[0].ID != "s1" {
		t.Fatalf("expected only the first update, got %+v", state.Sessions)
	}
}
