package pom

import (
	"sort"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gobwas/glob"

	"github.com/cloudposse/pomgraph/pkg/property"
)

// DefaultType is the type of a dependency that declares none.
const DefaultType = "jar"

// Dependency is one declared or resolved dependency.
type Dependency struct {
	Coordinates `yaml:",inline"`

	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Scope    Scope  `json:"scope" yaml:"scope"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`

	// Exclusions may use `*` wildcards in either part.
	Exclusions []ArtifactIdentity `json:"exclusions,omitempty" yaml:"exclusions,omitempty"`
}

// EffectiveType returns Type or DefaultType.
func (d Dependency) EffectiveType() string {
	if d.Type == "" {
		return DefaultType
	}
	return d.Type
}

// IsResolved reports whether the coordinates are concrete.
func (d Dependency) IsResolved() bool {
	return d.Coordinates.IsResolved()
}

// IsBOMImport reports a dependency-management entry importing another project's management.
func (d Dependency) IsBOMImport() bool {
	return d.Scope == Import && d.EffectiveType() == "pom"
}

// Resolve expands references in the coordinates and exclusions.
func (d Dependency) Resolve(r property.Resolver) Dependency {
	if d.IsResolved() && !exclusionsHaveReferences(d.Exclusions) {
		return d
	}
	out := d
	out.Coordinates = d.Coordinates.Resolve(r)
	if len(d.Exclusions) > 0 {
		out.Exclusions = make([]ArtifactIdentity, len(d.Exclusions))
		for i, e := range d.Exclusions {
			out.Exclusions[i] = ArtifactIdentity{GroupID: e.GroupID.Resolve(r), ArtifactID: e.ArtifactID.Resolve(r)}
		}
		out.Exclusions = normalizeExclusions(out.Exclusions)
	}
	return out
}

func exclusionsHaveReferences(exclusions []ArtifactIdentity) bool {
	for _, e := range exclusions {
		if property.HasReference(string(e.GroupID)) || property.HasReference(string(e.ArtifactID)) {
			return true
		}
	}
	return false
}

// Excludes reports whether one of the exclusions matches id.
func (d Dependency) Excludes(id ArtifactIdentity) bool {
	for _, e := range d.Exclusions {
		if exclusionMatches(e, id) {
			return true
		}
	}
	return false
}

// WithExclusions returns a copy whose exclusions are the union of both lists.
func (d Dependency) WithExclusions(more ...ArtifactIdentity) Dependency {
	if len(more) == 0 {
		return d
	}
	all := make([]ArtifactIdentity, 0, len(d.Exclusions)+len(more))
	all = append(all, d.Exclusions...)
	all = append(all, more...)
	d.Exclusions = normalizeExclusions(all)
	return d
}

// Merge combines two declarations of the same artifact and type.
// Exclusions intersect, optional is AND-ed and the lower scope ordinal wins.
// The version is the first resolved one. ok is false when identity or
// type differ; that is never an error.
func Merge(a, b Dependency) (Dependency, bool) {
	if !a.SameArtifact(b.Coordinates) || a.EffectiveType() != b.EffectiveType() {
		return Dependency{}, false
	}

	out := a
	if !a.Version.IsResolved() && b.Version.IsResolved() {
		out.Version = b.Version
	}
	out.Type = a.EffectiveType()
	out.Optional = a.Optional && b.Optional
	out.Scope = min(a.Scope, b.Scope)

	common := mapset.NewThreadUnsafeSet(a.Exclusions...).Intersect(mapset.NewThreadUnsafeSet(b.Exclusions...))
	out.Exclusions = normalizeExclusions(common.ToSlice())
	return out, true
}

func (d Dependency) String() string {
	var b strings.Builder
	b.WriteString(d.Coordinates.String())
	if d.EffectiveType() != DefaultType {
		b.WriteString(":" + d.EffectiveType())
	}
	b.WriteString(" (" + d.Scope.String())
	if d.Optional {
		b.WriteString(", optional")
	}
	b.WriteString(")")
	return b.String()
}

// normalizeExclusions sorts and deduplicates; empty input gives nil.
func normalizeExclusions(in []ArtifactIdentity) []ArtifactIdentity {
	if len(in) == 0 {
		return nil
	}
	out := mapset.NewThreadUnsafeSet(in...).ToSlice()
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

var exclusionGlobs sync.Map

func exclusionMatches(pattern, id ArtifactIdentity) bool {
	return partMatches(string(pattern.GroupID), string(id.GroupID)) &&
		partMatches(string(pattern.ArtifactID), string(id.ArtifactID))
}

func partMatches(pattern, value string) bool {
	if pattern == value || pattern == "*" {
		return true
	}
	if !strings.ContainsAny(pattern, "*?[{") {
		return false
	}

	if g, ok := exclusionGlobs.Load(pattern); ok {
		return g.(glob.Glob).Match(value)
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return false
	}
	exclusionGlobs.Store(pattern, g)
	return g.Match(value)
}
