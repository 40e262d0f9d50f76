package propagation

import (
	"maps"

	"github.com/cloudposse/pomgraph/pkg/graph"
	"github.com/cloudposse/pomgraph/pkg/pom"
	"github.com/cloudposse/pomgraph/pkg/version"
)

type propertyKey struct {
	project *pom.Project
	name    string
}

type propertyChange struct {
	from string
	to   string
}

type mismatchState struct {
	mismatch Mismatch
	decided  bool
	outcome  Outcome
}

// Edits is the pending state of one propagation run. Every round works on a
// clone and the loop ends when a round returns a value equal to its input.
type Edits struct {
	// changes is the effective version change of each project, own or inherited.
	changes map[*pom.Project]version.Change
	// tagged projects get their version tag written.
	tagged         map[*pom.Project]bool
	parentVersions map[*pom.Project]version.Change
	properties     map[propertyKey]propertyChange
	removals       map[*pom.Project]bool
	mismatches     map[*pom.Project]mismatchState
	families       map[graph.Family]version.Change
	synthetic      map[graph.Family]bool
}

func newEdits() *Edits {
	return &Edits{
		changes:        make(map[*pom.Project]version.Change),
		tagged:         make(map[*pom.Project]bool),
		parentVersions: make(map[*pom.Project]version.Change),
		properties:     make(map[propertyKey]propertyChange),
		removals:       make(map[*pom.Project]bool),
		mismatches:     make(map[*pom.Project]mismatchState),
		families:       make(map[graph.Family]version.Change),
		synthetic:      make(map[graph.Family]bool),
	}
}

// Clone returns an independent copy.
func (e *Edits) Clone() *Edits {
	return &Edits{
		changes:        maps.Clone(e.changes),
		tagged:         maps.Clone(e.tagged),
		parentVersions: maps.Clone(e.parentVersions),
		properties:     maps.Clone(e.properties),
		removals:       maps.Clone(e.removals),
		mismatches:     maps.Clone(e.mismatches),
		families:       maps.Clone(e.families),
		synthetic:      maps.Clone(e.synthetic),
	}
}

// Equal compares by value.
func (e *Edits) Equal(o *Edits) bool {
	return maps.Equal(e.changes, o.changes) &&
		maps.Equal(e.tagged, o.tagged) &&
		maps.Equal(e.parentVersions, o.parentVersions) &&
		maps.Equal(e.properties, o.properties) &&
		maps.Equal(e.removals, o.removals) &&
		maps.Equal(e.mismatches, o.mismatches) &&
		maps.Equal(e.families, o.families) &&
		maps.Equal(e.synthetic, o.synthetic)
}

// setVersion records p moving to change.New. tag writes p's version tag.
func (e *Edits) setVersion(p *pom.Project, change version.Change, tag bool) {
	e.changes[p] = change
	if tag {
		e.tagged[p] = true
	}
}

func (e *Edits) change(p *pom.Project) (version.Change, bool) {
	c, ok := e.changes[p]
	return c, ok
}

func (e *Edits) setProperty(p *pom.Project, name, from, to string) {
	e.properties[propertyKey{project: p, name: name}] = propertyChange{from: from, to: to}
}

func (e *Edits) pendingMismatches() []*pom.Project {
	var out []*pom.Project
	for p, m := range e.mismatches {
		if !m.decided {
			out = append(out, p)
		}
	}
	return sortProjects(out)
}
