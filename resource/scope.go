package resource

import "github.com/vkngwrapper/scenes/gpu"

// Scope owns a stack of driver objects and releases them in reverse order of
// registration. Nesting scopes gives teardown order by construction: a scope
// registered inside another is destroyed before anything registered ahead of it.
type Scope struct {
	releases []func()
}

// Add registers d for destruction. Nil destroyers are ignored.
func (s *Scope) Add(d gpu.Destroyer) {
	if d == nil {
		return
	}
	s.releases = append(s.releases, d.Destroy)
}

// Defer registers an arbitrary release func.
func (s *Scope) Defer(release func()) {
	if release == nil {
		return
	}
	s.releases = append(s.releases, release)
}

// Nest registers child so it is destroyed at this point in the order.
func (s *Scope) Nest(child *Scope) {
	s.releases = append(s.releases, child.Destroy)
}

// Len is the number of pending releases.
func (s *Scope) Len() int {
	return len(s.releases)
}

// Destroy runs every pending release, last registered first, and leaves the
// scope empty and reusable.
func (s *Scope) Destroy() {
	for i := len(s.releases) - 1; i >= 0; i-- {
		s.releases[i]()
	}
	s.releases = s.releases[:0]
}
