package tui

import (
	"fmt"
	"strconv"
	"strings"

	"lemoncello/model"
)

const (
	fieldName = iota
	fieldKind
	fieldWork
	fieldRest
	fieldCycles
	fieldIcon
)

type formField struct {
	label string
	value string
}

// blockForm walks the block fields one prompt at a time.
type blockForm struct {
	editID string
	fields []formField
	step   int
}

func newBlockForm(b model.Block, editID string) blockForm {
	return blockForm{
		editID: editID,
		fields: []formField{
			{label: "Name", value: b.Name},
			{label: "Kind (pomodoro/meeting/rest/custom)", value: string(b.Kind)},
			{label: "Work minutes", value: strconv.Itoa(b.WorkMinutes)},
			{label: "Rest minutes", value: strconv.Itoa(b.RestMinutes)},
			{label: "Cycles", value: strconv.Itoa(b.Cycles)},
			{label: "Icon", value: b.Icon},
		},
	}
}

func (f *blockForm) current() string {
	if f.step < 0 || f.step >= len(f.fields) {
		return ""
	}
	return f.fields[f.step].value
}

func (f *blockForm) label() string {
	if f.step < 0 || f.step >= len(f.fields) {
		return ""
	}
	return f.fields[f.step].label
}

func (f *blockForm) set(value string) {
	if f.step < 0 || f.step >= len(f.fields) {
		return
	}
	f.fields[f.step].value = value
}

func (f *blockForm) last() bool {
	return f.step >= len(f.fields)-1
}

func (f *blockForm) title() string {
	if f.editID != "" {
		return "Edit block"
	}
	return "New block"
}

// block converts the collected fields. Range checks are left to the service.
func (f *blockForm) block() (model.Block, error) {
	kind, err := parseKind(f.fields[fieldKind].value)
	if err != nil {
		f.step = fieldKind
		return model.Block{}, err
	}

	numbers := make([]int, 0, 3)
	for _, idx := range []int{fieldWork, fieldRest, fieldCycles} {
		raw := strings.TrimSpace(f.fields[idx].value)
		if raw == "" {
			numbers = append(numbers, 0)
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			f.step = idx
			return model.Block{}, fmt.Errorf("%s must be a whole number", f.fields[idx].label)
		}
		numbers = append(numbers, n)
	}

	return model.Block{
		Name:        f.fields[fieldName].value,
		Kind:        kind,
		WorkMinutes: numbers[0],
		RestMinutes: numbers[1],
		Cycles:      numbers[2],
		Icon:        f.fields[fieldIcon].value,
	}, nil
}

// parseKind accepts a kind name or its first letter.
func parseKind(raw string) (model.BlockKind, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, k := range []model.BlockKind{model.KindPomodoro, model.KindMeeting, model.KindRest, model.KindCustom} {
		if raw == string(k) || (len(raw) == 1 && strings.HasPrefix(string(k), raw)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown kind %q", raw)
}
