package invoke

import (
	"sync"

	ts "github.com/funvibe/meditation/internal/typesystem"
)

// Access tracks which non-public members may currently be used.
//
// A member is usable when it is public, when it was granted permanently,
// or while at least one caller holds an override on it. Overrides are
// counted so overlapping callers release in any order without leaving the
// member elevated.
type Access struct {
	mu        sync.Mutex
	granted   map[*ts.Member]bool
	overrides map[*ts.Member]int
}

func NewAccess() *Access {
	return &Access{
		granted:   make(map[*ts.Member]bool),
		overrides: make(map[*ts.Member]int),
	}
}

// Grant sets the permanent accessibility of m.
func (a *Access) Grant(m *ts.Member, accessible bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if accessible {
		a.granted[m] = true
	} else {
		delete(a.granted, m)
	}
}

// IsAccessible reports whether m may be used right now.
func (a *Access) IsAccessible(m *ts.Member) bool {
	if m.IsPublic() {
		return true
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.granted[m] || a.overrides[m] > 0
}

// Acquire elevates m for the duration of one call when override is set.
// The returned release restores the previous state and must be called
// exactly once, typically with defer.
func (a *Access) Acquire(m *ts.Member, override bool) (release func()) {
	if !override || m.IsPublic() {
		return func() {}
	}
	a.mu.Lock()
	a.overrides[m]++
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			if a.overrides[m] <= 1 {
				delete(a.overrides, m)
				return
			}
			a.overrides[m]--
		})
	}
}

// Held is the number of overrides currently outstanding on m.
func (a *Access) Held(m *ts.Member) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.overrides[m]
}
