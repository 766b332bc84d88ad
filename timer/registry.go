package timer

// Registry holds minimized timers keyed by id, in the order they were parked.
type Registry struct {
	order  []string
	timers map[string]Timer
	limit  int
}

// NewRegistry creates a registry. A limit of 0 or less means unbounded.
func NewRegistry(limit int) *Registry {
	return &Registry{timers: map[string]Timer{}, limit: limit}
}

// Full reports whether another timer can be parked.
func (r *Registry) Full() bool {
	return r.limit > 0 && len(r.order) >= r.limit
}

// Put stores t, replacing an entry with the same id in place.
func (r *Registry) Put(t Timer) bool {
	if _, ok := r.timers[t.ID]; ok {
		r.timers[t.ID] = t
		return true
	}
	if r.Full() {
		return false
	}
	r.order = append(r.order, t.ID)
	r.timers[t.ID] = t
	return true
}

// Get returns the timer with the given id.
func (r *Registry) Get(id string) (Timer, bool) {
	t, ok := r.timers[id]
	return t, ok
}

// Has reports whether id is parked.
func (r *Registry) Has(id string) bool {
	_, ok := r.timers[id]
	return ok
}

// Take removes and returns the timer with the given id.
func (r *Registry) Take(id string) (Timer, bool) {
	t, ok := r.timers[id]
	if !ok {
		return Timer{}, false
	}
	delete(r.timers, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return t, true
}

// List returns the parked timers in parking order.
func (r *Registry) List() []Timer {
	out := make([]Timer, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.timers[id])
	}
	return out
}

// Len returns the number of parked timers.
func (r *Registry) Len() int {
	return len(r.order)
}
