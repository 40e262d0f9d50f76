// Package dependency computes the effective dependencies of a project.
//
// An Engine owns one Context per project. A Context knows the project's parent
// chain, its property resolver and its dependency-management index, and
// answers direct and transitive dependency queries from them.
package dependency

import (
	"fmt"

	errUtils "github.com/cloudposse/pomgraph/errors"
	log "github.com/cloudposse/pomgraph/pkg/logger"
	"github.com/cloudposse/pomgraph/pkg/perf"
	"github.com/cloudposse/pomgraph/pkg/pom"
	"github.com/cloudposse/pomgraph/pkg/property"
	"github.com/cloudposse/pomgraph/pkg/store"
)

// Engine builds and memoizes contexts. It is not safe for concurrent use.
type Engine struct {
	resolver store.Resolver
	contexts map[*pom.Project]*Context
	building map[*pom.Project]bool
}

// New returns an engine looking descriptors up through resolver.
func New(resolver store.Resolver) *Engine {
	if resolver == nil {
		resolver = store.None
	}
	return &Engine{
		resolver: resolver,
		contexts: make(map[*pom.Project]*Context),
		building: make(map[*pom.Project]bool),
	}
}

// For returns the context of p, building it on first use.
func (e *Engine) For(p *pom.Project) *Context {
	if ctx := e.contexts[p]; ctx != nil {
		return ctx
	}
	ctx, _ := e.build(p)
	return ctx
}

// Lookup resolves c through the engine's store and returns its context.
func (e *Engine) Lookup(c pom.Coordinates) (*Context, bool) {
	p, ok := e.resolver.Resolve(c)
	if !ok {
		return nil, false
	}
	return e.For(p), true
}

// build returns false when p is already being built further up the stack,
// which means the parent or import graph loops back to p.
func (e *Engine) build(p *pom.Project) (*Context, bool) {
	if ctx := e.contexts[p]; ctx != nil {
		return ctx, true
	}
	if e.building[p] {
		return nil, false
	}
	defer perf.Track(nil, "dependency.Engine.build")()

	e.building[p] = true
	defer delete(e.building, p)

	ctx := &Context{engine: e, project: p}
	ctx.linkParent()
	ctx.properties = property.Memoize(property.Or(
		pom.CoordinatesResolver(p),
		property.Or(property.Map(p.PropertyMap()), ctx.parentProperties()),
	))
	ctx.indexManagement()
	ctx.resolveDeclared()

	e.contexts[p] = ctx
	return ctx, true
}

// linkParent resolves the parent once. A missing or cyclic parent ends the chain.
func (c *Context) linkParent() {
	parent, ok := c.project.Parent()
	if !ok {
		c.chain = []*pom.Project{c.project}
		return
	}

	coords := parent.Coordinates
	if !coords.IsResolved() {
		coords = coords.Resolve(property.Or(pom.CoordinatesResolver(c.project), property.Map(c.project.PropertyMap())))
	}

	p, found := c.engine.resolver.Resolve(coords)
	switch {
	case !found:
		log.Warn("Parent descriptor not found", "project", c.project.String(), "parent", coords.String())
		c.problems = append(c.problems, Problem{
			Consumer: c.project.EffectiveCoordinates(),
			Missing:  coords,
			Err:      fmt.Errorf("%w: %s (parent of %s)", errUtils.ErrParentNotFound, coords, c.project),
		})
	case p == c.project:
		log.Debug("Project is its own parent", "project", c.project.String())
	default:
		parentCtx, ok := c.engine.build(p)
		if !ok {
			log.Debug("Parent chain loops back", "project", c.project.String(), "parent", p.String())
			break
		}
		c.parent = parentCtx
	}

	c.chain = []*pom.Project{c.project}
	if c.parent != nil {
		c.chain = append(c.chain, c.parent.chain...)
	}
}

func (c *Context) parentProperties() property.Resolver {
	if c.parent == nil {
		return nil
	}
	return c.parent.properties
}

// indexManagement is pass 1: own entries first, then BOM imports for the
// identities still missing, so local entries always win.
func (c *Context) indexManagement() {
	c.managed = make(map[pom.ArtifactIdentity]pom.Dependency)
	var imports []pom.Dependency
	for _, raw := range c.project.DependencyManagement() {
		entry := raw.Resolve(c.properties)
		if entry.IsBOMImport() {
			imports = append(imports, entry)
			continue
		}
		c.addManaged(entry)
	}

	for _, imp := range imports {
		if !imp.IsResolved() {
			c.problems = append(c.problems, c.unresolved(imp))
			continue
		}
		p, ok := c.engine.resolver.Resolve(imp.Coordinates)
		if !ok {
			log.Warn("Imported bill of materials not found", "project", c.project.String(), "import", imp.String())
			c.problems = append(c.problems, c.missing(imp))
			continue
		}
		imported, ok := c.engine.build(p)
		if !ok {
			log.Debug("Skipping cyclic management import", "project", c.project.String(), "import", p.String())
			continue
		}
		for _, id := range imported.managedOrder {
			if _, exists := c.managed[id]; !exists {
				c.addManaged(imported.managed[id])
			}
		}
	}
}

func (c *Context) addManaged(entry pom.Dependency) {
	id := entry.Identity()
	if _, exists := c.managed[id]; exists {
		return
	}
	c.managed[id] = entry
	c.managedOrder = append(c.managedOrder, id)
}

// resolveDeclared is pass 2.
func (c *Context) resolveDeclared() {
	raw := c.project.Dependencies()
	c.declared = make([]pom.Dependency, len(raw))
	for i, d := range raw {
		c.declared[i] = c.Resolve(d)
	}
}

func (c *Context) unresolved(d pom.Dependency) Problem {
	return Problem{
		Consumer: c.project.EffectiveCoordinates(),
		Missing:  d.Coordinates,
		Optional: d.Optional,
		Err:      fmt.Errorf("%w: %s has unresolved references", errUtils.ErrDescriptorNotFound, d.Coordinates),
	}
}

func (c *Context) missing(d pom.Dependency) Problem {
	return Problem{
		Consumer: c.project.EffectiveCoordinates(),
		Missing:  d.Coordinates,
		Optional: d.Optional,
		Err:      fmt.Errorf("%w: %s", errUtils.ErrDescriptorNotFound, d.Coordinates),
	}
}
