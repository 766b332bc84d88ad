// Package phrase picks the motivational lines shown under the app title.
package phrase

import "math/rand/v2"

var lemonPhrases = []string{
	"Squeeze the day! 🍋",
	"When life gives you lemons, take a shot! 🍋",
	"Stay zesty, stay focused 🍋",
	"One slice at a time 🍋",
	"Fresh squeeze loading… 🍋",
	"Make it count, make it zesty 🍋",
	"Sour power activated 🍋",
	"Life's better with a twist 🍋",
	"Peel back distractions 🍋",
	"Keep it fresh, keep it sharp 🍋",
	"Zest mode: ON 🍋",
	"Drop by drop, shot by shot 🍋",
	"Your daily dose of focus 🍋",
	"Citrus-powered productivity 🍋",
	"No pulp, pure focus 🍋",
	"Time to get juicy 🍋",
	"Freshly squeezed motivation 🍋",
	"A little sour, a lot of power 🍋",
	"Slice through your tasks 🍋",
	"Vitamin Focus, served fresh 🍋",
}

// Picker returns phrases at random without repeating the previous one.
// A Picker is not safe for concurrent use.
type Picker struct {
	rng     *rand.Rand
	phrases []string
	last    int
}

// NewPicker returns a picker over the built-in phrases seeded with seed.
func NewPicker(seed uint64) *Picker {
	return NewPickerFrom(seed, lemonPhrases)
}

// NewPickerFrom returns a picker over phrases.
func NewPickerFrom(seed uint64, phrases []string) *Picker {
	return &Picker{
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		phrases: append([]string{}, phrases...),
		last:    -1,
	}
}

// Next returns the next phrase, or "" when the picker has none.
func (p *Picker) Next() string {
	switch len(p.phrases) {
	case 0:
		return ""
	case 1:
		p.last = 0
		return p.phrases[0]
	}
	// draw from the n-1 slots that exclude the previous pick
	i := p.rng.IntN(len(p.phrases) - 1)
	if p.last >= 0 && i >= p.last {
		i++
	}
	p.last = i
	return p.phrases[i]
}

// All returns the built-in phrases.
func All() []string {
	return append([]string{}, lemonPhrases...)
}
