// Package fsm provides a small named-state machine. Only the active state
// receives Update and Render calls.
package fsm

import "time"

// State holds the optional hooks of a named state. R is the render target.
type State[R any] struct {
	OnEnter func()
	OnExit  func()
	Update  func(dt time.Duration)
	Render  func(target R)
}

// Machine dispatches frames to the active state.
type Machine[R any] struct {
	states      map[string]*State[R]
	current     string
	previous    string
	timeInState time.Duration
}

// NewMachine creates a machine with no states and no active state.
func NewMachine[R any]() *Machine[R] {
	return &Machine[R]{
		states: make(map[string]*State[R]),
	}
}

// Add registers a state under name, replacing any earlier registration.
func (m *Machine[R]) Add(name string, s State[R]) {
	m.states[name] = &s
}

// Set transitions to the named state. Unknown names are ignored.
// The outgoing state's OnExit always runs before the incoming OnEnter,
// including when name is already the active state.
func (m *Machine[R]) Set(name string) {
	next, ok := m.states[name]
	if !ok {
		return
	}

	if cur, ok := m.states[m.current]; ok && cur.OnExit != nil {
		cur.OnExit()
	}

	m.previous = m.current
	m.current = name
	m.timeInState = 0

	if next.OnEnter != nil {
		next.OnEnter()
	}
}

// Update advances the active state by dt.
func (m *Machine[R]) Update(dt time.Duration) {
	s, ok := m.states[m.current]
	if !ok {
		return
	}
	m.timeInState += dt
	if s.Update != nil {
		s.Update(dt)
	}
}

// Render draws the active state onto target.
func (m *Machine[R]) Render(target R) {
	s, ok := m.states[m.current]
	if !ok || s.Render == nil {
		return
	}
	s.Render(target)
}

// Current returns the active state name, or "" before the first Set.
func (m *Machine[R]) Current() string {
	return m.current
}

// Previous returns the state that was active before the last transition.
func (m *Machine[R]) Previous() string {
	return m.previous
}

// TimeInState returns how long the active state has been updated for.
func (m *Machine[R]) TimeInState() time.Duration {
	return m.timeInState
}
