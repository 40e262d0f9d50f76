package propagation

import (
	"sort"

	"github.com/cloudposse/pomgraph/pkg/graph"
	"github.com/cloudposse/pomgraph/pkg/pom"
	"github.com/cloudposse/pomgraph/pkg/version"
)

// VersionEdit rewrites the version tag of a project.
type VersionEdit struct {
	Project *pom.Project
	Change  version.Change
}

// PropertyEdit rewrites one property value.
type PropertyEdit struct {
	Project *pom.Project
	Name    string
	Old     string
	New     string
}

// FamilyChange is a family and the change applied to it.
type FamilyChange struct {
	Family    graph.Family
	Change    version.Change
	Synthetic bool
}

// Plan is the outcome of a run. Every slice is sorted by project.
type Plan struct {
	VersionEdits       []VersionEdit
	ParentVersionEdits []VersionEdit
	PropertyEdits      []PropertyEdit
	// VersionRemovals drop an own version that repeats the parent's.
	VersionRemovals []*pom.Project
	Families        []FamilyChange
	// Skipped mismatches left untouched.
	Skipped []Mismatch

	effective map[*pom.Project]version.Change
}

func (r *run) plan(e *Edits) *Plan {
	p := &Plan{effective: e.changes}

	for _, proj := range sortProjects(keys(e.tagged)) {
		p.VersionEdits = append(p.VersionEdits, VersionEdit{Project: proj, Change: e.changes[proj]})
	}
	for _, proj := range sortProjects(keys(e.parentVersions)) {
		p.ParentVersionEdits = append(p.ParentVersionEdits, VersionEdit{Project: proj, Change: e.parentVersions[proj]})
	}
	p.VersionRemovals = sortProjects(keys(e.removals))

	for k, c := range e.properties {
		p.PropertyEdits = append(p.PropertyEdits, PropertyEdit{Project: k.project, Name: k.name, Old: c.from, New: c.to})
	}
	sort.SliceStable(p.PropertyEdits, func(i, j int) bool {
		a, b := p.PropertyEdits[i], p.PropertyEdits[j]
		if a.Project != b.Project {
			return less(a.Project, b.Project)
		}
		return a.Name < b.Name
	})

	for _, f := range sortFamilies(keys(e.families)) {
		p.Families = append(p.Families, FamilyChange{Family: f, Change: e.families[f], Synthetic: e.synthetic[f]})
	}
	for _, proj := range sortProjects(keys(e.mismatches)) {
		if s := e.mismatches[proj]; s.decided && s.outcome == Skip {
			p.Skipped = append(p.Skipped, s.mismatch)
		}
	}
	return p
}

func less(a, b *pom.Project) bool {
	return sortProjects([]*pom.Project{b, a})[0] == a
}

// IsEmpty reports whether the plan changes nothing.
func (p *Plan) IsEmpty() bool {
	return len(p.VersionEdits) == 0 && len(p.ParentVersionEdits) == 0 &&
		len(p.PropertyEdits) == 0 && len(p.VersionRemovals) == 0
}

// EffectiveVersion is the version proj ends up at, own or inherited.
func (p *Plan) EffectiveVersion(proj *pom.Project) (version.Version, bool) {
	c, ok := p.effective[proj]
	return c.New, ok
}

// Changed lists every project whose effective version changes.
func (p *Plan) Changed() []*pom.Project {
	return sortProjects(keys(p.effective))
}

// ApplyTo returns projects with the plan's edits applied in memory. Projects
// the plan does not touch are shared with the input.
func (p *Plan) ApplyTo(projects *pom.Projects) *pom.Projects {
	opts := make(map[*pom.Project][]pom.Option)
	for _, e := range p.VersionEdits {
		opts[e.Project] = append(opts[e.Project], pom.WithVersion(pom.Version(e.Change.New.String())))
	}
	for _, proj := range p.VersionRemovals {
		opts[proj] = append(opts[proj], pom.WithVersion(pom.PlaceholderToken))
	}
	for _, e := range p.ParentVersionEdits {
		opts[e.Project] = append(opts[e.Project], pom.WithParentVersion(pom.Version(e.Change.New.String())))
	}
	for _, e := range p.PropertyEdits {
		opts[e.Project] = append(opts[e.Project], pom.WithProperty(e.Name, e.New))
	}

	all := projects.All()
	out := make([]*pom.Project, len(all))
	for i, proj := range all {
		if o, ok := opts[proj]; ok {
			out[i] = proj.With(o...)
		} else {
			out[i] = proj
		}
	}
	return pom.NewProjects(out...)
}
