// Package store turns coordinates into projects.
//
// A Resolver is answered from the local forest, from a repository laid out on
// disk, or from descriptors declared inline in configuration. Resolvers
// compose with Or and are cached with Memoize.
package store

import (
	"sync"

	"github.com/cloudposse/pomgraph/pkg/pom"
)

// Resolver finds the project with the given coordinates.
type Resolver interface {
	Resolve(c pom.Coordinates) (*pom.Project, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(c pom.Coordinates) (*pom.Project, bool)

func (f ResolverFunc) Resolve(c pom.Coordinates) (*pom.Project, bool) { return f(c) }

// None resolves nothing.
var None Resolver = ResolverFunc(func(pom.Coordinates) (*pom.Project, bool) { return nil, false })

// Local answers from an in-memory project index.
type Local struct {
	projects *pom.Projects
}

var _ Resolver = (*Local)(nil)

// NewLocal wraps projects.
func NewLocal(projects *pom.Projects) *Local {
	return &Local{projects: projects}
}

// Resolve implements Resolver.
func (l *Local) Resolve(c pom.Coordinates) (*pom.Project, bool) {
	if l == nil || l.projects == nil {
		return nil, false
	}
	return l.projects.Get(c)
}

// Projects returns the backing index.
func (l *Local) Projects() *pom.Projects { return l.projects }

// Or asks first, then second. Nil resolvers are skipped.
func Or(first, second Resolver) Resolver {
	switch {
	case first == nil && second == nil:
		return None
	case first == nil:
		return second
	case second == nil:
		return first
	}
	return ResolverFunc(func(c pom.Coordinates) (*pom.Project, bool) {
		if p, ok := first.Resolve(c); ok {
			return p, true
		}
		return second.Resolve(c)
	})
}

// Chain is Or folded over resolvers, in order.
func Chain(resolvers ...Resolver) Resolver {
	var out Resolver
	for _, r := range resolvers {
		out = Or(out, r)
	}
	if out == nil {
		return None
	}
	return out
}

type result struct {
	project *pom.Project
	ok      bool
}

type memoizing struct {
	resolver Resolver
	mu       sync.Mutex
	cache    map[pom.Coordinates]result
}

// Memoize caches hits and misses of r for the returned resolver's lifetime.
func Memoize(r Resolver) Resolver {
	if m, ok := r.(*memoizing); ok {
		return m
	}
	return &memoizing{resolver: r, cache: make(map[pom.Coordinates]result)}
}

func (m *memoizing) Resolve(c pom.Coordinates) (*pom.Project, bool) {
	m.mu.Lock()
	if r, ok := m.cache[c]; ok {
		m.mu.Unlock()
		return r.project, r.ok
	}
	m.mu.Unlock()

	p, ok := m.resolver.Resolve(c)

	m.mu.Lock()
	m.cache[c] = result{project: p, ok: ok}
	m.mu.Unlock()
	return p, ok
}
