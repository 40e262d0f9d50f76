package pom

import (
	"strings"

	"github.com/cloudposse/pomgraph/pkg/property"
)

// PlaceholderToken marks a coordinate field as not known yet; the value has
// to come from somewhere else (usually the parent or dependency management).
const PlaceholderToken = "---"

// DefaultRelativePath is where an unset parent relative path points.
const DefaultRelativePath = "../pom.yaml"

func isPlaceholder[T ~string](v T) bool {
	s := strings.TrimSpace(string(v))
	return s == "" || s == PlaceholderToken
}

func isResolved[T ~string](v T) bool {
	return !isPlaceholder(v) && !property.HasReference(string(v))
}

func resolve[T ~string](v T, r property.Resolver) T {
	if isPlaceholder(v) || !property.HasReference(string(v)) {
		return v
	}
	return T(property.Expand(string(v), r))
}

// GroupID is the group part of a coordinate.
type GroupID string

func (g GroupID) IsPlaceholder() bool                 { return isPlaceholder(g) }
func (g GroupID) IsResolved() bool                    { return isResolved(g) }
func (g GroupID) Resolve(r property.Resolver) GroupID { return resolve(g, r) }
func (g GroupID) Or(fallback GroupID) GroupID         { return or(g, fallback) }
func (g GroupID) String() string                      { return string(g) }

// ArtifactID is the artifact part of a coordinate.
type ArtifactID string

func (a ArtifactID) IsPlaceholder() bool                    { return isPlaceholder(a) }
func (a ArtifactID) IsResolved() bool                       { return isResolved(a) }
func (a ArtifactID) Resolve(r property.Resolver) ArtifactID { return resolve(a, r) }
func (a ArtifactID) String() string                         { return string(a) }

// Version is a raw, possibly unresolved, version string. Ordering and
// arithmetic live in pkg/version.
type Version string

func (v Version) IsPlaceholder() bool                 { return isPlaceholder(v) }
func (v Version) IsResolved() bool                    { return isResolved(v) }
func (v Version) Resolve(r property.Resolver) Version { return resolve(v, r) }
func (v Version) String() string                      { return string(v) }
func (v Version) Or(fallback Version) Version         { return or(v, fallback) }

func or[T ~string](v, fallback T) T {
	if isPlaceholder(v) {
		return fallback
	}
	return v
}

// ParentRelativePath locates the parent descriptor on disk.
// The zero value is unset and means DefaultRelativePath.
type ParentRelativePath struct {
	path string
	set  bool
}

// NoParentPath is an explicitly empty path: the parent is not on disk.
func NoParentPath() ParentRelativePath {
	return ParentRelativePath{set: true}
}

// RelativePath is an explicit path.
func RelativePath(path string) ParentRelativePath {
	return ParentRelativePath{path: path, set: true}
}

// IsUnset reports whether no path was declared.
func (p ParentRelativePath) IsUnset() bool { return !p.set }

// IsEmpty reports an explicitly empty declaration.
func (p ParentRelativePath) IsEmpty() bool { return p.set && p.path == "" }

// Path returns the effective path, "" when explicitly empty.
func (p ParentRelativePath) Path() string {
	if !p.set {
		return DefaultRelativePath
	}
	return p.path
}

// IsResolved reports whether the path carries no references.
func (p ParentRelativePath) IsResolved() bool {
	return !property.HasReference(p.path)
}

// Resolve expands references in an explicit path.
func (p ParentRelativePath) Resolve(r property.Resolver) ParentRelativePath {
	if !p.set || !property.HasReference(p.path) {
		return p
	}
	return RelativePath(property.Expand(p.path, r))
}

func (p ParentRelativePath) String() string {
	switch {
	case !p.set:
		return "<default>"
	case p.path == "":
		return "<none>"
	}
	return p.path
}
