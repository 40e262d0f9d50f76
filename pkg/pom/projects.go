package pom

import (
	"slices"
	"sort"
)

// Projects is an immutable collection indexed by group and by artifact identity.
type Projects struct {
	all        []*Project
	byIdentity map[ArtifactIdentity][]*Project
	byGroup    map[GroupID][]*Project
}

// NewProjects indexes projects in the given order; nil entries are dropped.
func NewProjects(projects ...*Project) *Projects {
	ps := &Projects{
		byIdentity: make(map[ArtifactIdentity][]*Project),
		byGroup:    make(map[GroupID][]*Project),
	}
	for _, p := range projects {
		if p == nil {
			continue
		}
		id := p.Identity()
		ps.all = append(ps.all, p)
		ps.byIdentity[id] = append(ps.byIdentity[id], p)
		ps.byGroup[id.GroupID] = append(ps.byGroup[id.GroupID], p)
	}
	return ps
}

// All returns the projects in insertion order.
func (ps *Projects) All() []*Project { return slices.Clone(ps.all) }

func (ps *Projects) Len() int { return len(ps.all) }

// Find returns every project with the identity.
func (ps *Projects) Find(id ArtifactIdentity) []*Project {
	return slices.Clone(ps.byIdentity[id])
}

// Group returns every project in a group.
func (ps *Projects) Group(group GroupID) []*Project {
	return slices.Clone(ps.byGroup[group])
}

// Groups lists the distinct groups, sorted.
func (ps *Projects) Groups() []GroupID {
	groups := make([]GroupID, 0, len(ps.byGroup))
	for g := range ps.byGroup {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
	return groups
}

// Get finds the project with exactly these coordinates. A placeholder
// version matches when the identity is unique.
func (ps *Projects) Get(c Coordinates) (*Project, bool) {
	candidates := ps.byIdentity[c.Identity()]
	if c.Version.IsPlaceholder() {
		if len(candidates) == 1 {
			return candidates[0], true
		}
		return nil, false
	}
	for _, p := range candidates {
		if p.EffectiveCoordinates().Version == c.Version {
			return p, true
		}
	}
	return nil, false
}

// Contains reports whether p itself is in the collection.
func (ps *Projects) Contains(p *Project) bool {
	return slices.Contains(ps.byIdentity[p.Identity()], p)
}
