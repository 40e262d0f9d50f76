// Package propagation computes the edits that move a forest to requested
// versions.
//
// A run starts from explicit project and family targets and repeats a fixed
// sequence of passes over an Edits accumulator until a round changes nothing.
// Members found at an unexpected version are mismatches, settled by a
// MismatchPolicy. The result is a Plan of plain edits for a rewriter.
package propagation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	errUtils "github.com/cloudposse/pomgraph/errors"
	log "github.com/cloudposse/pomgraph/pkg/logger"
	"github.com/cloudposse/pomgraph/pkg/graph"
	"github.com/cloudposse/pomgraph/pkg/perf"
	"github.com/cloudposse/pomgraph/pkg/pom"
	"github.com/cloudposse/pomgraph/pkg/property"
	"github.com/cloudposse/pomgraph/pkg/publish"
	"github.com/cloudposse/pomgraph/pkg/version"
)

// Request is the input of one run.
type Request struct {
	// Projects moves single projects to a new version.
	Projects map[*pom.Project]version.Version
	// Families moves every member of a family from Old to New.
	Families map[graph.Family]version.Change

	SuperpomBump SuperpomBumpPolicy
	// Mismatch defaults to Fixed(Abort).
	Mismatch MismatchPolicy
	// Publish enables the superpom completeness check.
	Publish publish.Checker

	// MaxRounds defaults to 4 × projects + 8.
	MaxRounds int
	// KeepRedundantVersions disables pruning of own versions equal to the parent's.
	KeepRedundantVersions bool
}

// Engine runs propagation over one graph.
type Engine struct {
	graph *graph.Graph
}

// New returns an engine over g.
func New(g *graph.Graph) *Engine {
	return &Engine{graph: g}
}

// run is the state of one Propagate call.
type run struct {
	graph   *graph.Graph
	req     Request
	current map[*pom.Project]version.Version
}

// Propagate computes the plan for req. If any mismatch is left with the
// Abort outcome, no plan is returned and the error names every such project.
func (e *Engine) Propagate(ctx context.Context, req Request) (*Plan, error) {
	defer perf.Track(nil, "propagation.Engine.Propagate")()

	if req.Mismatch == nil {
		req.Mismatch = Fixed(Abort)
	}
	if req.MaxRounds <= 0 {
		req.MaxRounds = 4*len(e.graph.Projects()) + 8
	}

	r := &run{graph: e.graph, req: req, current: make(map[*pom.Project]version.Version)}
	for _, p := range e.graph.Projects() {
		if v, ok := currentVersion(p); ok {
			r.current[p] = v
		} else {
			log.Debug("Project version is not a literal version", "project", p.String(), "version", p.EffectiveCoordinates().Version.String())
		}
	}

	edits, err := r.seed()
	if err != nil {
		return nil, err
	}
	if edits, err = r.converge(edits); err != nil {
		return nil, err
	}
	if !req.KeepRedundantVersions {
		r.prune(edits)
	}

	if req.Publish != nil {
		bumped, err := r.completeSuperpoms(ctx, edits)
		if err != nil {
			return nil, err
		}
		if bumped {
			if edits, err = r.converge(edits); err != nil {
				return nil, err
			}
			if !req.KeepRedundantVersions {
				r.prune(edits)
			}
		}
	}

	if err := r.aborted(edits); err != nil {
		return nil, err
	}
	return r.plan(edits), nil
}

func currentVersion(p *pom.Project) (version.Version, bool) {
	raw := p.EffectiveCoordinates().Version
	if !raw.IsResolved() {
		return version.Version{}, false
	}
	v, err := version.Parse(string(raw))
	return v, err == nil
}

// seed validates the targets and records them.
func (r *run) seed() (*Edits, error) {
	if len(r.req.Projects) == 0 && len(r.req.Families) == 0 {
		return nil, errUtils.ErrNoTargets
	}
	edits := newEdits()

	for f, change := range r.req.Families {
		if len(r.graph.Members(f)) == 0 {
			return nil, errUtils.Build(fmt.Errorf("%w: no project belongs to family '%s'", errUtils.ErrInvalidFamilyTarget, f)).
				WithHintf("known families: %s", joinFamilies(r.graph.Families())).
				Err()
		}
		if change.IsDowngrade() {
			log.Warn("Family target is a downgrade", "family", f, "change", change.String())
		}
		edits.families[f] = change
	}

	for p, target := range r.req.Projects {
		if !r.graph.Index().Contains(p) {
			return nil, fmt.Errorf("%w: %s is not part of the forest", errUtils.ErrInvalidProjectTarget, p)
		}
		cur, ok := r.current[p]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no literal version", errUtils.ErrInvalidProjectTarget, p)
		}
		change := version.Change{Old: cur, New: target}
		if change.IsNoOp() {
			continue
		}
		if change.IsDowngrade() {
			log.Warn("Project target is a downgrade", "project", p.String(), "change", change.String())
		}
		edits.setVersion(p, change, true)
	}
	return edits, nil
}

// converge repeats rounds until one returns its input unchanged.
func (r *run) converge(edits *Edits) (*Edits, error) {
	for round := 1; round <= r.req.MaxRounds; round++ {
		next := edits.Clone()
		r.round(next)
		if next.Equal(edits) {
			log.Debug("Propagation converged", "rounds", round, "changes", len(next.changes))
			return next, nil
		}
		log.Trace("Propagation round", "round", round, "changes", len(next.changes), "mismatches", len(next.mismatches))
		edits = next
	}
	return nil, errUtils.Build(errUtils.ErrPropagationDiverged).
		WithExplanationf("no fixed point after %d rounds", r.req.MaxRounds).
		WithContext("max_rounds", r.req.MaxRounds).
		Err()
}

func (r *run) round(e *Edits) {
	r.cascadeAll(e)
	r.propertyPass(e)
	r.familyPass(e)
	r.triageMismatches(e)
	r.detectSyntheticFamilies(e)
	r.applyMismatchPolicy(e)
}

// cascadeAll pushes every recorded change down the child adjacency.
func (r *run) cascadeAll(e *Edits) {
	for _, p := range sortProjects(keys(e.changes)) {
		r.cascade(e, p, e.changes[p])
	}
}

// cascade gives each child of p a parent-version edit. Children without an
// own version inherit the change and pass it on.
func (r *run) cascade(e *Edits, p *pom.Project, change version.Change) {
	for _, child := range r.graph.Children(p) {
		pv := version.Change{Old: declaredParentVersion(child, change.Old), New: change.New}
		if existing, ok := e.parentVersions[child]; ok && existing == pv {
			continue
		}
		e.parentVersions[child] = pv

		if child.HasOwnVersion() || e.tagged[child] {
			continue
		}
		if cur, ok := r.current[child]; ok {
			inherited := version.Change{Old: cur, New: change.New}
			e.setVersion(child, inherited, false)
			r.cascade(e, child, inherited)
		}
	}
}

func declaredParentVersion(child *pom.Project, fallback version.Version) version.Version {
	link, ok := child.Parent()
	if !ok {
		return fallback
	}
	v, err := version.Parse(string(link.Version))
	if err != nil {
		return fallback
	}
	return v
}

// versionProperty is a recognised version-carrying property name.
type versionProperty struct {
	key      string
	previous bool
}

var versionSuffixes = []struct {
	suffix   string
	previous bool
}{
	{".prev.version", true},
	{".previous.version", true},
	{".published.version", true},
	{".version", false},
}

func parseVersionProperty(name string) (versionProperty, bool) {
	for _, s := range versionSuffixes {
		if key, ok := strings.CutSuffix(name, s.suffix); ok && key != "" {
			return versionProperty{key: key, previous: s.previous}, true
		}
	}
	return versionProperty{}, false
}

// changeFor finds the change a property key refers to: a changing artifact
// first, then a family.
func (r *run) changeFor(e *Edits, key string) (version.Change, bool) {
	var found []version.Change
	for p, c := range e.changes {
		if string(p.Coordinates().ArtifactID) == key {
			found = append(found, c)
		}
	}
	if len(found) > 0 {
		for _, c := range found[1:] {
			if c.New != found[0].New {
				log.Debug("Artifact name is ambiguous for property", "key", key)
				return version.Change{}, false
			}
		}
		return found[0], true
	}
	c, ok := e.families[graph.Family(key)]
	return c, ok
}

// propertyPass rewrites literal version properties to follow their changes.
func (r *run) propertyPass(e *Edits) {
	for _, p := range r.graph.Projects() {
		for _, prop := range p.Properties() {
			vp, ok := parseVersionProperty(prop.Name)
			if !ok || property.HasReference(prop.Value) {
				continue
			}
			if _, err := version.Parse(prop.Value); err != nil {
				continue
			}
			change, ok := r.changeFor(e, vp.key)
			if !ok {
				continue
			}

			target := change.New
			if vp.previous {
				if change.Old.Flavor() != version.Release {
					continue
				}
				target = change.Old
			}
			if target.String() == prop.Value {
				delete(e.properties, propertyKey{project: p, name: prop.Name})
				continue
			}
			e.setProperty(p, prop.Name, prop.Value, target.String())
			r.bumpEditedSuperpom(e, p, change.New)
		}
	}
}

// bumpEditedSuperpom gives a superpom whose properties change a version of
// its own, unless its family target already moves it.
func (r *run) bumpEditedSuperpom(e *Edits, p *pom.Project, cause version.Version) {
	if !r.graph.Roles(p).IsSuperpom() {
		return
	}
	if _, pending := e.change(p); pending {
		return
	}
	cur, ok := r.current[p]
	if !ok {
		return
	}
	if fc, ok := e.families[r.graph.Family(p)]; ok && (cur.Equal(fc.Old) || cur.Equal(fc.New)) {
		return
	}
	if bumped, ok := r.req.SuperpomBump.bump(cur, cause); ok {
		log.Debug("Bumping edited superpom", "project", p.String(), "version", bumped.String())
		e.setVersion(p, version.Change{Old: cur, New: bumped}, true)
	}
}

// familyPass moves each family member at the expected old version.
func (r *run) familyPass(e *Edits) {
	for _, f := range sortFamilies(keys(e.families)) {
		fc := e.families[f]
		for _, m := range r.graph.Members(f) {
			if _, done := e.change(m); done {
				continue
			}
			if _, seen := e.mismatches[m]; seen {
				continue
			}
			if !m.HasOwnVersion() && r.parentInFamily(m, f) {
				// Follows its parent through the cascade.
				continue
			}
			cur, ok := r.current[m]
			if !ok {
				continue
			}

			switch {
			case cur.Equal(fc.New):
			case cur.Equal(fc.Old):
				change := version.Change{Old: cur, New: fc.New}
				if m.HasOwnVersion() {
					e.setVersion(m, change, true)
				} else {
					e.parentVersions[m] = version.Change{Old: declaredParentVersion(m, cur), New: fc.New}
					e.setVersion(m, change, false)
				}
			default:
				e.mismatches[m] = mismatchState{mismatch: Mismatch{Project: m, Family: f, Expected: fc, Actual: cur}}
			}
		}
	}
}

func (r *run) parentInFamily(p *pom.Project, f graph.Family) bool {
	parent, ok := r.graph.Parent(p)
	return ok && r.graph.Family(parent) == f
}

// triageMismatches bumps mismatched superpoms when the policy allows.
func (r *run) triageMismatches(e *Edits) {
	for _, p := range e.pendingMismatches() {
		if !r.graph.Roles(p).IsSuperpom() {
			continue
		}
		m := e.mismatches[p].mismatch
		bumped, ok := r.req.SuperpomBump.bump(m.Actual, m.Expected.New)
		if !ok {
			continue
		}
		log.Debug("Bumping mismatched superpom", "project", p.String(), "from", m.Actual.String(), "to", bumped.String())
		delete(e.mismatches, p)
		e.setVersion(p, version.Change{Old: m.Actual, New: bumped}, true)
	}
}

// detectSyntheticFamilies gives a family without a target the change that all
// of its leaf and bom members already share.
func (r *run) detectSyntheticFamilies(e *Edits) {
	for _, f := range r.graph.Families() {
		if _, ok := e.families[f]; ok {
			continue
		}
		var common *version.Change
		consistent := true
		for _, m := range r.graph.Members(f) {
			rs := r.graph.Roles(m)
			if !rs.Has(graph.RoleLeaf) && !rs.Has(graph.RoleBillOfMaterials) {
				continue
			}
			c, ok := e.change(m)
			if !ok || (common != nil && *common != c) {
				consistent = false
				break
			}
			common = &c
		}
		if consistent && common != nil {
			log.Debug("Detected family change", "family", f, "change", common.String())
			e.families[f] = *common
			e.synthetic[f] = true
		}
	}
}

// applyMismatchPolicy settles every mismatch still pending.
func (r *run) applyMismatchPolicy(e *Edits) {
	for _, p := range e.pendingMismatches() {
		m := e.mismatches[p].mismatch
		outcome := r.req.Mismatch.Decide(m)
		switch outcome {
		case CoerceToTarget:
			delete(e.mismatches, p)
			e.setVersion(p, version.Change{Old: m.Actual, New: m.Expected.New}, true)
		case Bump:
			delete(e.mismatches, p)
			bumped := m.Actual.Bump(version.Dot).WithQualifier(m.Expected.New.Qualifier())
			e.setVersion(p, version.Change{Old: m.Actual, New: bumped}, true)
		default:
			e.mismatches[p] = mismatchState{mismatch: m, decided: true, outcome: outcome}
		}
		log.Debug("Mismatch decided", "project", p.String(), "outcome", outcome.String())
	}
}

// prune turns own versions that only repeat the new parent version into removals.
func (r *run) prune(e *Edits) {
	for p := range e.tagged {
		change := e.changes[p]
		pv, ok := e.parentVersions[p]
		if !ok || pv.New != change.New {
			continue
		}
		delete(e.tagged, p)
		if p.HasOwnVersion() {
			e.removals[p] = true
		}
	}
}

// completeSuperpoms bumps untouched superpoms above a changing project whose
// published state differs from the local one.
func (r *run) completeSuperpoms(ctx context.Context, e *Edits) (bool, error) {
	bumped := false
	for _, p := range r.graph.Projects() {
		if !r.graph.Roles(p).IsSuperpom() {
			continue
		}
		if _, pending := e.change(p); pending {
			continue
		}
		cause, ok := r.changingDescendant(e, p)
		if !ok {
			continue
		}
		cur, ok := r.current[p]
		if !ok {
			continue
		}

		differs, err := r.req.Publish.Differs(ctx, p)
		if err != nil {
			return false, errUtils.Build(fmt.Errorf("%w: %s: %w", errUtils.ErrPublishCheck, p, err)).
				WithHint("check publish.url or run without --publish-check").
				Err()
		}
		if !differs {
			continue
		}

		policy := r.req.SuperpomBump
		if policy == Ignore {
			policy = BumpWithoutChangingFlavor
		}
		next, _ := policy.bump(cur, cause)
		log.Info("Superpom differs from its published version", "project", p.String(), "version", next.String())
		e.setVersion(p, version.Change{Old: cur, New: next}, true)
		bumped = true
	}
	return bumped, nil
}

func (r *run) changingDescendant(e *Edits, p *pom.Project) (version.Version, bool) {
	for _, d := range r.graph.Descendants(p) {
		if _, ok := e.families[r.graph.Family(d)]; !ok {
			continue
		}
		if c, ok := e.change(d); ok {
			return c.New, true
		}
	}
	return version.Version{}, false
}

// aborted reports every mismatch decided as Abort in one error.
func (r *run) aborted(e *Edits) error {
	var mismatches []Mismatch
	for _, p := range sortProjects(keys(e.mismatches)) {
		if s := e.mismatches[p]; s.decided && s.outcome == Abort {
			mismatches = append(mismatches, s.mismatch)
		}
	}
	if len(mismatches) == 0 {
		return nil
	}

	names := make([]string, len(mismatches))
	lines := make([]string, len(mismatches))
	for i, m := range mismatches {
		names[i] = m.Project.String()
		lines[i] = m.String()
	}
	return errUtils.Build(fmt.Errorf("%w: %s", errUtils.ErrVersionMismatch, strings.Join(names, ", "))).
		WithExplanation(strings.Join(lines, "\n")).
		WithHint("rerun with --mismatch=skip, --mismatch=coerce or --mismatch=bump").
		WithContext("projects", len(mismatches)).
		WithExitCode(errUtils.ExitCodeMismatch).
		Err()
}

func keys[K comparable, V any](m map[K]V) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func sortProjects(ps []*pom.Project) []*pom.Project {
	sort.SliceStable(ps, func(i, j int) bool {
		a, b := ps[i].EffectiveCoordinates().String(), ps[j].EffectiveCoordinates().String()
		if a != b {
			return a < b
		}
		return ps[i].Source() < ps[j].Source()
	})
	return ps
}

func sortFamilies(fs []graph.Family) []graph.Family {
	sort.Slice(fs, func(i, j int) bool { return fs[i] < fs[j] })
	return fs
}

func joinFamilies(fs []graph.Family) string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
