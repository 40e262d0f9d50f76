// Package graph builds the parent/child structure of a project forest, the
// roles each project plays and the index of who defines which property.
package graph

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	log "github.com/cloudposse/pomgraph/pkg/logger"
	"github.com/cloudposse/pomgraph/pkg/perf"
	"github.com/cloudposse/pomgraph/pkg/pom"
	"github.com/cloudposse/pomgraph/pkg/property"
)

type options struct {
	family FamilyFunc
}

// Option configures New.
type Option func(*options)

// WithFamilyFunc replaces DefaultFamily.
func WithFamilyFunc(f FamilyFunc) Option {
	return func(o *options) {
		if f != nil {
			o.family = f
		}
	}
}

type definition struct {
	name  string
	value string
}

// Graph is a read-only view of a forest.
type Graph struct {
	projects    *pom.Projects
	parents     map[*pom.Project]*pom.Project
	children    map[*pom.Project][]*pom.Project
	roles       map[*pom.Project]Roles
	families    map[*pom.Project]Family
	members     map[Family][]*pom.Project
	definitions map[definition]mapset.Set[*pom.Project]
}

// New indexes projects.
func New(projects *pom.Projects, opts ...Option) *Graph {
	defer perf.Track(nil, "graph.New")()

	o := options{family: DefaultFamily}
	for _, opt := range opts {
		opt(&o)
	}

	g := &Graph{
		projects:    projects,
		parents:     make(map[*pom.Project]*pom.Project),
		children:    make(map[*pom.Project][]*pom.Project),
		roles:       make(map[*pom.Project]Roles),
		families:    make(map[*pom.Project]Family),
		members:     make(map[Family][]*pom.Project),
		definitions: make(map[definition]mapset.Set[*pom.Project]),
	}

	all := sorted(projects.All())
	for _, p := range all {
		if parent, ok := g.findParent(p); ok {
			g.parents[p] = parent
			g.children[parent] = append(g.children[parent], p)
		}
	}

	for _, p := range all {
		_, isParent := g.children[p]
		rs := classify(p, isParent)
		if rs == 0 {
			log.Warn("Project has no structural role", "project", p.String(), "source", p.Source())
			rs = Roles(RoleUnknown)
		}
		g.roles[p] = rs

		f := o.family(p)
		g.families[p] = f
		g.members[f] = append(g.members[f], p)

		for _, prop := range p.Properties() {
			key := definition{name: prop.Name, value: prop.Value}
			if g.definitions[key] == nil {
				g.definitions[key] = mapset.NewThreadUnsafeSet[*pom.Project]()
			}
			g.definitions[key].Add(p)
		}
	}

	log.Debug("Built project graph", "projects", len(all), "families", len(g.members))
	return g
}

// findParent matches the parent link by full coordinates, then by a unique identity.
func (g *Graph) findParent(p *pom.Project) (*pom.Project, bool) {
	link, ok := p.Parent()
	if !ok {
		return nil, false
	}
	coords := link.Coordinates
	if !coords.IsResolved() {
		coords = coords.Resolve(property.Map(p.PropertyMap()))
	}
	if parent, ok := g.projects.Get(coords); ok && parent != p {
		return parent, true
	}
	candidates := g.projects.Find(coords.Identity())
	if len(candidates) == 1 && candidates[0] != p {
		log.Debug("Parent matched by identity", "project", p.String(), "parent", candidates[0].String(), "declared", coords.Version.String())
		return candidates[0], true
	}
	return nil, false
}

// Projects returns every project, ordered by coordinates.
func (g *Graph) Projects() []*pom.Project { return sorted(g.projects.All()) }

// Index returns the underlying collection.
func (g *Graph) Index() *pom.Projects { return g.projects }

// Parent returns the in-forest parent of p.
func (g *Graph) Parent(p *pom.Project) (*pom.Project, bool) {
	parent, ok := g.parents[p]
	return parent, ok
}

// Children returns the projects whose parent is p.
func (g *Graph) Children(p *pom.Project) []*pom.Project {
	return append([]*pom.Project(nil), g.children[p]...)
}

// Descendants returns every project below p, depth first. A project reached
// twice, including through a corrupted cycle back to p, is listed once.
func (g *Graph) Descendants(p *pom.Project) []*pom.Project {
	visited := mapset.NewThreadUnsafeSet(p)
	var out []*pom.Project
	var visit func(*pom.Project)
	visit = func(n *pom.Project) {
		for _, child := range g.children[n] {
			if !visited.Add(child) {
				continue
			}
			out = append(out, child)
			visit(child)
		}
	}
	visit(p)
	return out
}

// Ancestors returns the in-forest parent chain of p, nearest first.
func (g *Graph) Ancestors(p *pom.Project) []*pom.Project {
	visited := mapset.NewThreadUnsafeSet(p)
	var out []*pom.Project
	for parent, ok := g.parents[p]; ok; parent, ok = g.parents[parent] {
		if !visited.Add(parent) {
			log.Debug("Parent cycle", "project", p.String(), "at", parent.String())
			break
		}
		out = append(out, parent)
	}
	return out
}

// Root returns the topmost in-forest ancestor of p, or p.
func (g *Graph) Root(p *pom.Project) *pom.Project {
	ancestors := g.Ancestors(p)
	if len(ancestors) == 0 {
		return p
	}
	return ancestors[len(ancestors)-1]
}

// Roles returns the roles of p.
func (g *Graph) Roles(p *pom.Project) Roles { return g.roles[p] }

// ProjectsWithRole returns the projects holding r, ordered by coordinates.
func (g *Graph) ProjectsWithRole(r Role) []*pom.Project {
	var out []*pom.Project
	for p, rs := range g.roles {
		if rs.Has(r) {
			out = append(out, p)
		}
	}
	return sorted(out)
}

// Family returns the family of p.
func (g *Graph) Family(p *pom.Project) Family { return g.families[p] }

// Members returns the projects of f, ordered by coordinates.
func (g *Graph) Members(f Family) []*pom.Project {
	return append([]*pom.Project(nil), g.members[f]...)
}

// Families returns every family, sorted.
func (g *Graph) Families() []Family {
	out := make([]Family, 0, len(g.members))
	for f := range g.members {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ProjectsDefining returns the projects whose own properties set name to value.
func (g *Graph) ProjectsDefining(name, value string) []*pom.Project {
	set, ok := g.definitions[definition{name: name, value: value}]
	if !ok {
		return nil
	}
	return sorted(set.ToSlice())
}

func sorted(ps []*pom.Project) []*pom.Project {
	sort.SliceStable(ps, func(i, j int) bool {
		a, b := ps[i].EffectiveCoordinates().String(), ps[j].EffectiveCoordinates().String()
		if a != b {
			return a < b
		}
		return ps[i].Source() < ps[j].Source()
	})
	return ps
}
