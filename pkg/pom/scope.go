package pom

import (
	"fmt"
	"math/bits"
	"strings"

	errUtils "github.com/cloudposse/pomgraph/errors"
)

// Scope is the visibility class of a dependency. Declaration order is the
// ordinal used when merging: the lower one wins.
type Scope int

const (
	Compile Scope = iota
	Test
	Provided
	Runtime
	Import
)

var scopeNames = [...]string{
	Compile:  "compile",
	Test:     "test",
	Provided: "provided",
	Runtime:  "runtime",
	Import:   "import",
}

// Which scopes a consumer inherits from a dependency declared in a scope.
var transitivity = [...]ScopeSet{
	Compile:  NewScopeSet(Compile, Runtime, Provided),
	Test:     NewScopeSet(Compile, Runtime, Provided),
	Provided: NewScopeSet(Compile, Runtime, Provided),
	Runtime:  NewScopeSet(Compile, Runtime),
	Import:   0,
}

// Scopes lists every scope in declaration order.
func Scopes() []Scope {
	return []Scope{Compile, Test, Provided, Runtime, Import}
}

// ParseScope is case-insensitive; an empty string is Compile.
func ParseScope(s string) (Scope, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Compile, nil
	}
	for i, name := range scopeNames {
		if name == s {
			return Scope(i), nil
		}
	}
	return Compile, fmt.Errorf("%w: '%s'", errUtils.ErrInvalidScope, s)
}

// Ordinal is the declaration position.
func (s Scope) Ordinal() int { return int(s) }

func (s Scope) valid() bool { return s >= Compile && s <= Import }

func (s Scope) String() string {
	if !s.valid() {
		return fmt.Sprintf("scope(%d)", int(s))
	}
	return scopeNames[s]
}

// Transitivity returns the scopes a consumer inherits through s.
func Transitivity(s Scope) ScopeSet {
	if !s.valid() {
		return 0
	}
	return transitivity[s]
}

// MarshalText renders the scope name.
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a scope name.
func (s *Scope) UnmarshalText(text []byte) error {
	parsed, err := ParseScope(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ScopeSet is a set of scopes.
type ScopeSet uint8

// NewScopeSet builds a set.
func NewScopeSet(scopes ...Scope) ScopeSet {
	var set ScopeSet
	for _, s := range scopes {
		set = set.With(s)
	}
	return set
}

// AllScopes contains every scope.
func AllScopes() ScopeSet { return NewScopeSet(Scopes()...) }

// ParseScopeSet parses a comma separated list; an empty list is every scope.
func ParseScopeSet(list string) (ScopeSet, error) {
	if strings.TrimSpace(list) == "" {
		return AllScopes(), nil
	}
	var set ScopeSet
	for _, part := range strings.Split(list, ",") {
		s, err := ParseScope(part)
		if err != nil {
			return 0, err
		}
		set = set.With(s)
	}
	return set, nil
}

func (set ScopeSet) With(s Scope) ScopeSet {
	if !s.valid() {
		return set
	}
	return set | 1<<uint(s)
}

func (set ScopeSet) Has(s Scope) bool { return s.valid() && set&(1<<uint(s)) != 0 }

func (set ScopeSet) Union(o ScopeSet) ScopeSet { return set | o }

func (set ScopeSet) Intersect(o ScopeSet) ScopeSet { return set & o }

func (set ScopeSet) IsEmpty() bool { return set == 0 }

func (set ScopeSet) Len() int { return bits.OnesCount8(uint8(set)) }

// Transitive is the union of Transitivity over every member.
func (set ScopeSet) Transitive() ScopeSet {
	var out ScopeSet
	for _, s := range set.Scopes() {
		out |= Transitivity(s)
	}
	return out
}

// Scopes lists members in declaration order.
func (set ScopeSet) Scopes() []Scope {
	var out []Scope
	for _, s := range Scopes() {
		if set.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

func (set ScopeSet) String() string {
	names := make([]string, 0, set.Len())
	for _, s := range set.Scopes() {
		names = append(names, s.String())
	}
	return strings.Join(names, ",")
}
