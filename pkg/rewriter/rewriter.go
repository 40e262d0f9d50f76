// Package rewriter writes a propagation plan back into descriptor files.
//
// Files are edited as node trees so that everything the plan does not touch,
// including key order and comments, stays as it was. Writes are atomic and the
// whole run holds an exclusive lock on the forest.
package rewriter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"gopkg.in/yaml.v3"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/descriptor"
	"github.com/cloudposse/pomgraph/pkg/filesystem"
	log "github.com/cloudposse/pomgraph/pkg/logger"
	"github.com/cloudposse/pomgraph/pkg/perf"
	"github.com/cloudposse/pomgraph/pkg/pom"
	"github.com/cloudposse/pomgraph/pkg/propagation"
)

// DefaultLockFile is created in the base path while files are rewritten.
const DefaultLockFile = ".pomgraph.lock"

// Change is the outcome for one descriptor file.
type Change struct {
	Path string `json:"path" yaml:"path"`
	// Diff is a unified diff of the file, relative to the base path.
	Diff string `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// Rewriter applies plans below one base path.
type Rewriter struct {
	basePath string
	lockFile string
	dryRun   bool
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithDryRun computes diffs without writing.
func WithDryRun(dryRun bool) Option {
	return func(r *Rewriter) { r.dryRun = dryRun }
}

// WithLockFile overrides DefaultLockFile. Relative paths are under the base path.
func WithLockFile(path string) Option {
	return func(r *Rewriter) {
		if path != "" {
			r.lockFile = path
		}
	}
}

func New(basePath string, opts ...Option) *Rewriter {
	r := &Rewriter{basePath: basePath, lockFile: DefaultLockFile}
	for _, opt := range opts {
		opt(r)
	}
	if !filepath.IsAbs(r.lockFile) {
		r.lockFile = filepath.Join(basePath, r.lockFile)
	}
	return r
}

// Apply rewrites every descriptor the plan touches and returns the changed
// files in path order.
func (r *Rewriter) Apply(plan *propagation.Plan) ([]Change, error) {
	defer perf.Track(nil, "rewriter.Rewriter.Apply")()

	edits := collect(plan)
	if len(edits) == 0 {
		return nil, nil
	}
	if r.dryRun {
		return r.apply(edits)
	}

	var changes []Change
	err := filesystem.WithLock(r.lockFile, func() error {
		var err error
		changes, err = r.apply(edits)
		return err
	})
	return changes, err
}

func (r *Rewriter) apply(edits map[string]*fileEdits) ([]Change, error) {
	paths := make([]string, 0, len(edits))
	for path := range edits {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var changes []Change
	for _, path := range paths {
		change, changed, err := r.rewrite(path, edits[path])
		if err != nil {
			return changes, err
		}
		if changed {
			changes = append(changes, change)
		}
	}
	return changes, nil
}

func (r *Rewriter) rewrite(path string, e *fileEdits) (Change, bool, error) {
	format, err := descriptor.FormatFor(path)
	if err != nil {
		return Change{}, false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Change{}, false, fmt.Errorf("%w: %w", errUtils.ErrReadDescriptor, err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		return Change{}, false, fmt.Errorf("%w: %w", errUtils.ErrReadDescriptor, err)
	}

	f, err := parse(path, format, before)
	if err != nil {
		return Change{}, false, err
	}
	e.applyTo(f.root())

	after, err := f.encode()
	if err != nil {
		return Change{}, false, fmt.Errorf("%w: %s: %w", errUtils.ErrRewriteDescriptor, path, err)
	}
	if bytes.Equal(before, after) {
		return Change{}, false, nil
	}

	rel := path
	if p, err := filepath.Rel(r.basePath, path); err == nil {
		rel = filepath.ToSlash(p)
	}
	change := Change{Path: rel, Diff: unifiedDiff(rel, string(before), string(after))}

	if r.dryRun {
		log.Debug("Would rewrite descriptor", "path", rel)
		return change, true, nil
	}
	if err := filesystem.WriteFileAtomic(path, after, info.Mode().Perm()); err != nil {
		return Change{}, false, fmt.Errorf("%w: %s: %w", errUtils.ErrRewriteDescriptor, path, err)
	}
	log.Info("Rewrote descriptor", "path", rel)
	return change, true, nil
}

func unifiedDiff(name, before, after string) string {
	edits := myers.ComputeEdits(span.URIFromPath(name), before, after)
	return fmt.Sprint(gotextdiff.ToUnified("a/"+name, "b/"+name, before, edits))
}

type property struct{ name, value string }

// fileEdits are the edits for one descriptor.
type fileEdits struct {
	version       string
	removeVersion bool
	parentVersion string
	properties    []property
}

func (e *fileEdits) applyTo(root *yaml.Node) {
	if e.removeVersion {
		remove(root, "version")
	} else if e.version != "" {
		setScalar(root, "version", e.version, "artifactId", "groupId")
	}
	if e.parentVersion != "" {
		setScalar(mapping(root, "parent"), "version", e.parentVersion, "artifactId")
	}
	if len(e.properties) > 0 {
		props := mapping(root, "properties")
		for _, p := range e.properties {
			setScalar(props, p.name, p.value)
		}
	}
}

func collect(plan *propagation.Plan) map[string]*fileEdits {
	out := make(map[string]*fileEdits)
	get := func(p *pom.Project) *fileEdits {
		if p.Source() == "" {
			log.Warn("Project has no descriptor file, skipping its edits", "project", p.String())
			return nil
		}
		e, ok := out[p.Source()]
		if !ok {
			e = &fileEdits{}
			out[p.Source()] = e
		}
		return e
	}

	for _, v := range plan.VersionEdits {
		if e := get(v.Project); e != nil {
			e.version = v.Change.New.String()
		}
	}
	for _, p := range plan.VersionRemovals {
		if e := get(p); e != nil {
			e.removeVersion = true
		}
	}
	for _, v := range plan.ParentVersionEdits {
		if e := get(v.Project); e != nil {
			e.parentVersion = v.Change.New.String()
		}
	}
	for _, p := range plan.PropertyEdits {
		if e := get(p.Project); e != nil {
			e.properties = append(e.properties, property{name: p.Name, value: p.New})
		}
	}
	return out
}
