// Package connectivity provides the online/offline signal consumed by the
// leaderboard engine.
package connectivity

import "github.com/vovakirdan/space-runner/internal/observe"

// Manual is a connectivity signal set explicitly by its owner.
// It backs the --offline mode and tests.
type Manual struct {
	v *observe.Value[bool]
}

// NewManual creates a signal with the given initial state.
func NewManual(online bool) *Manual {
	return &Manual{v: observe.NewValue(online)}
}

// Online returns the current state.
func (m *Manual) Online() bool { return m.v.Get() }

// Set changes the state. Subscribers are only notified on a change.
func (m *Manual) Set(online bool) {
	if m.v.Get() == online {
		return
	}
	m.v.Set(online)
}

// Subscribe registers fn for state changes.
func (m *Manual) Subscribe(fn func(online bool)) func() {
	return m.v.Subscribe(fn)
}
