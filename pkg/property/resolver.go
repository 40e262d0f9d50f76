// Package property resolves `${name}` references in descriptor values.
//
// A Resolver answers single names with their raw value. Expand does the
// substitution, following references recursively through one resolver, so
// composed resolvers (Or, Memoize) see every nested lookup.
package property

import (
	"maps"
	"sync"
)

// Resolver answers a property name. The value may itself contain references.
type Resolver interface {
	Resolve(name string) (string, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(name string) (string, bool)

// Resolve calls f.
func (f ResolverFunc) Resolve(name string) (string, bool) {
	return f(name)
}

// None never answers.
var None Resolver = ResolverFunc(func(string) (string, bool) { return "", false })

type mapResolver struct {
	values map[string]string
}

// Map answers from a copy of values.
func Map(values map[string]string) Resolver {
	return &mapResolver{values: maps.Clone(values)}
}

func (m *mapResolver) Resolve(name string) (string, bool) {
	v, ok := m.values[name]
	return v, ok
}

type orResolver struct {
	first, second Resolver
}

// Or asks first, then second. An answer from first is kept even when it
// still holds references; Expand retries those through the whole chain,
// which reaches second.
func Or(first, second Resolver) Resolver {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	}
	return &orResolver{first: first, second: second}
}

func (o *orResolver) Resolve(name string) (string, bool) {
	if v, ok := o.first.Resolve(name); ok {
		return v, true
	}
	return o.second.Resolve(name)
}

type lookup struct {
	value string
	ok    bool
}

type memoizing struct {
	mu       sync.Mutex
	resolver Resolver
	cache    map[string]lookup
}

// Memoize caches every answer of r, including misses, for the life of the
// returned resolver. Inputs are immutable within a session.
func Memoize(r Resolver) Resolver {
	if _, ok := r.(*memoizing); ok {
		return r
	}
	return &memoizing{resolver: r, cache: make(map[string]lookup)}
}

func (m *memoizing) Resolve(name string) (string, bool) {
	m.mu.Lock()
	if hit, ok := m.cache[name]; ok {
		m.mu.Unlock()
		return hit.value, hit.ok
	}
	m.mu.Unlock()

	// Resolve without the lock; composed resolvers may re-enter.
	v, ok := m.resolver.Resolve(name)

	m.mu.Lock()
	m.cache[name] = lookup{value: v, ok: ok}
	m.mu.Unlock()
	return v, ok
}

// Value looks name up and expands the answer.
func Value(r Resolver, name string) (string, bool) {
	v, ok := r.Resolve(name)
	if !ok {
		return "", false
	}
	return Expand(v, r), true
}
