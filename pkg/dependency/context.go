package dependency

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	log "github.com/cloudposse/pomgraph/pkg/logger"
	"github.com/cloudposse/pomgraph/pkg/perf"
	"github.com/cloudposse/pomgraph/pkg/pom"
	"github.com/cloudposse/pomgraph/pkg/property"
)

// Problem is a descriptor that could not be located or a reference that could
// not be resolved. Problems never stop resolution.
type Problem struct {
	Consumer pom.Coordinates
	Missing  pom.Coordinates
	Optional bool
	Err      error
}

func (p Problem) Error() string { return p.Err.Error() }

func (p Problem) Unwrap() error { return p.Err }

// Result is a transitive dependency set plus what could not be found.
type Result struct {
	Dependencies []pom.Dependency
	Problems     []Problem
}

// Context is the resolved view of one project. Built once per project by an Engine.
type Context struct {
	engine       *Engine
	project      *pom.Project
	parent       *Context
	chain        []*pom.Project
	properties   property.Resolver
	managed      map[pom.ArtifactIdentity]pom.Dependency
	managedOrder []pom.ArtifactIdentity
	declared     []pom.Dependency
	problems     []Problem
}

// Project returns the project this context describes.
func (c *Context) Project() *pom.Project { return c.project }

// Parent returns the parent's context, nil at the root or when the chain was cut.
func (c *Context) Parent() *Context { return c.parent }

// Chain is the project followed by its ancestors, nearest first.
func (c *Context) Chain() []*pom.Project { return slices.Clone(c.chain) }

// Properties resolves names against the project, then its ancestors.
func (c *Context) Properties() property.Resolver { return c.properties }

// Property returns the fully expanded value of name.
func (c *Context) Property(name string) (string, bool) {
	return property.Value(c.properties, name)
}

// Problems reports parents and imports that could not be located.
func (c *Context) Problems() []Problem { return slices.Clone(c.problems) }

// ManagedDependencies returns the management index in declaration order,
// imported entries after local ones.
func (c *Context) ManagedDependencies() []pom.Dependency {
	out := make([]pom.Dependency, len(c.managedOrder))
	for i, id := range c.managedOrder {
		out[i] = c.managed[id]
	}
	return out
}

// Resolve fills in what dep leaves open: properties first, then the local
// management entry, then the parent, one level at a time.
func (c *Context) Resolve(dep pom.Dependency) pom.Dependency {
	if dep.IsResolved() {
		return dep
	}
	out := dep.Resolve(c.properties)
	if entry, ok := c.managed[out.Identity()]; ok {
		out = applyManagement(out, entry)
	}
	if out.IsResolved() || c.parent == nil {
		return out
	}
	return c.parent.Resolve(out)
}

func applyManagement(dep, entry pom.Dependency) pom.Dependency {
	if !dep.Version.IsResolved() && !entry.Version.IsPlaceholder() {
		dep.Version = entry.Version
	}
	if dep.Type == "" {
		dep.Type = entry.Type
	}
	if dep.Scope == pom.Compile && entry.Scope != pom.Import {
		dep.Scope = entry.Scope
	}
	return dep.WithExclusions(entry.Exclusions...)
}

// DirectDependencies returns the project's and its ancestors' declared
// dependencies in the given scopes, all scopes when none are given. Entries
// for the same artifact are merged; when they cannot merge the nearest wins.
func (c *Context) DirectDependencies(scopes ...pom.Scope) []pom.Dependency {
	return c.direct(scopeSet(scopes))
}

func (c *Context) direct(scopes pom.ScopeSet) []pom.Dependency {
	acc := newAccumulator()
	for _, d := range c.declared {
		if scopes.Has(d.Scope) {
			acc.add(d)
		}
	}

	traversed := mapset.NewThreadUnsafeSet(c.project)
	for ancestor := c.parent; ancestor != nil; ancestor = ancestor.parent {
		if !traversed.Add(ancestor.project) {
			log.Debug("Parent chain revisits a project", "project", c.project.String(), "ancestor", ancestor.project.String())
			break
		}
		for _, raw := range ancestor.project.Dependencies() {
			d := c.Resolve(raw)
			if scopes.Has(d.Scope) {
				acc.add(d)
			}
		}
	}
	return acc.list()
}

// FullDependencies returns the direct dependencies plus, for each, the
// dependencies of its own descriptor in the scopes that pass through it.
// Exclusions of every dependency on the path apply below it, optional
// dependencies of dependencies are dropped, and cycles are cut.
func (c *Context) FullDependencies(scopes ...pom.Scope) Result {
	defer perf.Track(nil, "dependency.Context.FullDependencies")()

	w := &walker{
		engine:   c.engine,
		acc:      newAccumulator(),
		visiting: mapset.NewThreadUnsafeSet[*pom.Project](),
		expanded: mapset.NewThreadUnsafeSet[expansion](),
	}
	w.problems = append(w.problems, c.problems...)
	w.walk(c, scopeSet(scopes), nil)
	return Result{Dependencies: w.acc.list(), Problems: w.problems}
}

type expansion struct {
	project *pom.Project
	scopes  pom.ScopeSet
}

type walker struct {
	engine   *Engine
	acc      *accumulator
	visiting mapset.Set[*pom.Project]
	expanded mapset.Set[expansion]
	problems []Problem
}

func (w *walker) walk(ctx *Context, scopes pom.ScopeSet, path []pom.Dependency) {
	w.visiting.Add(ctx.project)
	defer w.visiting.Remove(ctx.project)

	for _, d := range ctx.direct(scopes) {
		if excluded(path, d.Identity()) {
			continue
		}
		if len(path) > 0 && d.Optional {
			continue
		}
		w.acc.add(d)

		if !d.IsResolved() {
			w.report(ctx, ctx.unresolved(d))
			continue
		}
		target, ok := w.engine.Lookup(d.Coordinates)
		if !ok {
			w.report(ctx, ctx.missing(d))
			continue
		}
		if w.visiting.Contains(target.project) {
			log.Debug("Dependency cycle", "from", ctx.project.String(), "to", target.project.String())
			continue
		}

		next := pom.Transitivity(d.Scope).Intersect(scopes.Transitive())
		if next.IsEmpty() {
			continue
		}
		nextPath := append(slices.Clip(path), d)
		// A project already expanded with the same scopes adds nothing new, as
		// long as no dependency on the path filters what it contributes.
		if !hasExclusions(nextPath) && !w.expanded.Add(expansion{project: target.project, scopes: next}) {
			continue
		}
		w.walk(target, next, nextPath)
	}
}

func (w *walker) report(ctx *Context, p Problem) {
	if p.Optional {
		log.Debug("Optional dependency descriptor not found", "project", ctx.project.String(), "dependency", p.Missing.String())
	} else {
		log.Warn("Dependency descriptor not found", "project", ctx.project.String(), "dependency", p.Missing.String())
	}
	w.problems = append(w.problems, p)
}

func excluded(path []pom.Dependency, id pom.ArtifactIdentity) bool {
	for _, d := range path {
		if d.Excludes(id) {
			return true
		}
	}
	return false
}

func hasExclusions(path []pom.Dependency) bool {
	for _, d := range path {
		if len(d.Exclusions) > 0 {
			return true
		}
	}
	return false
}

func scopeSet(scopes []pom.Scope) pom.ScopeSet {
	if len(scopes) == 0 {
		return pom.AllScopes()
	}
	return pom.NewScopeSet(scopes...)
}

// accumulator deduplicates by identity, keeping first-seen order.
type accumulator struct {
	order []pom.ArtifactIdentity
	deps  map[pom.ArtifactIdentity]pom.Dependency
}

func newAccumulator() *accumulator {
	return &accumulator{deps: make(map[pom.ArtifactIdentity]pom.Dependency)}
}

func (a *accumulator) add(d pom.Dependency) {
	id := d.Identity()
	existing, ok := a.deps[id]
	if !ok {
		a.order = append(a.order, id)
		a.deps[id] = d
		return
	}
	if merged, ok := pom.Merge(existing, d); ok {
		a.deps[id] = merged
	}
}

func (a *accumulator) list() []pom.Dependency {
	out := make([]pom.Dependency, len(a.order))
	for i, id := range a.order {
		out[i] = a.deps[id]
	}
	return out
}
