package property

import "strings"

const (
	refOpen  = "${"
	refClose = '}'

	// MaxDepth caps nested expansion for resolvers that synthesize names.
	MaxDepth = 64
)

// Expand replaces each `${name}` in s with the expansion of its value under r.
//
// A reference that r cannot answer stays in place as literal text. A name
// is never expanded inside its own expansion, so a cycle such as
// a=${b}, b=${a} stops at the repeated name and leaves it literal. Depth is
// bounded by the number of distinct names on the current path plus one, and
// never exceeds MaxDepth.
func Expand(s string, r Resolver) string {
	if r == nil || !strings.Contains(s, refOpen) {
		return s
	}
	e := &expander{resolver: r, active: make(map[string]bool)}
	return e.expand(s, 0)
}

type expander struct {
	resolver Resolver
	active   map[string]bool
}

func (e *expander) expand(s string, depth int) string {
	var out strings.Builder
	for {
		start := strings.Index(s, refOpen)
		if start < 0 {
			break
		}
		end := strings.IndexByte(s[start+len(refOpen):], refClose)
		if end < 0 {
			break
		}
		end += start + len(refOpen)

		out.WriteString(s[:start])
		out.WriteString(e.substitute(s[start+len(refOpen):end], s[start:end+1], depth))
		s = s[end+1:]
	}
	out.WriteString(s)
	return out.String()
}

func (e *expander) substitute(name, literal string, depth int) string {
	if name == "" || e.active[name] || depth >= MaxDepth || depth > len(e.active)+1 {
		return literal
	}
	v, ok := e.resolver.Resolve(name)
	if !ok {
		return literal
	}

	e.active[name] = true
	defer delete(e.active, name)
	return e.expand(v, depth+1)
}

// HasReference reports whether s still contains a `${...}` segment.
func HasReference(s string) bool {
	start := strings.Index(s, refOpen)
	return start >= 0 && strings.IndexByte(s[start+len(refOpen):], refClose) >= 0
}

// References lists the names referenced by s in order of appearance.
func References(s string) []string {
	var names []string
	for {
		start := strings.Index(s, refOpen)
		if start < 0 {
			return names
		}
		rest := s[start+len(refOpen):]
		end := strings.IndexByte(rest, refClose)
		if end < 0 {
			return names
		}
		if end > 0 {
			names = append(names, rest[:end])
		}
		s = rest[end+1:]
	}
}
