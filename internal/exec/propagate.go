package exec

import (
	"context"
	"fmt"
	"io"

	"github.com/samber/lo"

	errUtils "github.com/cloudposse/pomgraph/errors"
	log "github.com/cloudposse/pomgraph/pkg/logger"
	"github.com/cloudposse/pomgraph/pkg/perf"
	"github.com/cloudposse/pomgraph/pkg/pom"
	"github.com/cloudposse/pomgraph/pkg/propagation"
	"github.com/cloudposse/pomgraph/pkg/publish"
	"github.com/cloudposse/pomgraph/pkg/rewriter"
)

// Edit kinds reported by `pomgraph propagate`.
const (
	EditVersion       = "version"
	EditParentVersion = "parent-version"
	EditProperty      = "property"
	EditRemoveVersion = "remove-version"
)

// PropagateProps are the arguments of `pomgraph propagate`. The superpom and
// mismatch policies come from the configuration, which the flags override.
type PropagateProps struct {
	Families []string
	Projects []string

	DryRun                bool
	PublishCheck          bool
	KeepRedundantVersions bool

	// Checker replaces the remote publish checker when PublishCheck is set.
	Checker publish.Checker

	Format string
	File   string
}

// EditRow is one edit of the plan.
type EditRow struct {
	Project string `json:"project" yaml:"project"`
	Kind    string `json:"kind" yaml:"kind"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Old     string `json:"old,omitempty" yaml:"old,omitempty"`
	New     string `json:"new,omitempty" yaml:"new,omitempty"`
}

// FamilyRow is a family change, requested or detected.
type FamilyRow struct {
	Family    string `json:"family" yaml:"family"`
	Old       string `json:"old" yaml:"old"`
	New       string `json:"new" yaml:"new"`
	Synthetic bool   `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
}

// FileRow is one rewritten descriptor.
type FileRow struct {
	Path string `json:"path" yaml:"path"`
	Diff string `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// PropagateResult is the plan and, unless it was a dry run, the files written.
type PropagateResult struct {
	DryRun   bool        `json:"dryRun" yaml:"dryRun"`
	Families []FamilyRow `json:"families" yaml:"families"`
	Edits    []EditRow   `json:"edits" yaml:"edits"`
	Skipped  []string    `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Files    []FileRow   `json:"files" yaml:"files"`
}

func (r *PropagateResult) headers() []string {
	return []string{"PROJECT", "EDIT", "OLD", "NEW"}
}

func (r *PropagateResult) rows() [][]string {
	return lo.Map(r.Edits, func(e EditRow, _ int) []string {
		kind := e.Kind
		if e.Name != "" {
			kind += " " + e.Name
		}
		return []string{e.Project, kind, e.Old, e.New}
	})
}

// ExecutePropagate computes the propagation plan for the requested targets
// and rewrites the descriptors, or only prints the plan and diffs with DryRun.
func ExecutePropagate(ctx context.Context, w io.Writer, ws *Workspace, props PropagateProps) error {
	defer perf.Track(&ws.Config, "exec.ExecutePropagate")()

	if err := ValidateFormat(props.Format); err != nil {
		return err
	}
	req, err := buildRequest(ws, props)
	if err != nil {
		return err
	}

	plan, err := propagation.New(ws.Graph).Propagate(ctx, req)
	if err != nil {
		return err
	}
	for _, m := range plan.Skipped {
		log.Warn("Skipped version mismatch", "project", m.Project.String(), "family", string(m.Family), "actual", m.Actual.String())
	}

	result := planResult(plan)
	result.DryRun = props.DryRun
	if plan.IsEmpty() {
		log.Info("Forest is already at the requested versions")
	}

	rw := rewriter.New(ws.Config.BasePathAbsolute,
		rewriter.WithDryRun(props.DryRun),
		rewriter.WithLockFile(ws.Config.Descriptors.LockFile))
	changes, err := rw.Apply(plan)
	if err != nil {
		return err
	}
	result.Files = lo.Map(changes, func(c rewriter.Change, _ int) FileRow {
		row := FileRow{Path: c.Path}
		if props.DryRun {
			row.Diff = c.Diff
		}
		return row
	})
	if !props.DryRun {
		log.Info("Rewrote descriptors", "files", len(changes))
	}

	if err := printOrWriteToFile(w, props.Format, props.File, result); err != nil {
		return err
	}
	if props.DryRun && props.File == "" && (props.Format == "" || props.Format == FormatTable) {
		for _, f := range result.Files {
			if _, err := fmt.Fprintln(w, f.Diff); err != nil {
				return err
			}
		}
	}
	return nil
}

func buildRequest(ws *Workspace, props PropagateProps) (propagation.Request, error) {
	var req propagation.Request
	families, err := ParseFamilyTargets(props.Families)
	if err != nil {
		return req, err
	}
	projects, err := ParseProjectTargets(ws, props.Projects)
	if err != nil {
		return req, err
	}

	cfg := ws.Config.Propagation
	bump, err := propagation.ParseSuperpomBumpPolicy(cfg.SuperpomBump)
	if err != nil {
		return req, usage(err, "set --superpom-bump to ignore, acquire-flavor or keep-flavor")
	}
	outcome, err := propagation.ParseOutcome(cfg.Mismatch)
	if err != nil {
		return req, usage(err, "set --mismatch to skip, coerce, bump or abort")
	}

	req = propagation.Request{
		Projects:              projects,
		Families:              families,
		SuperpomBump:          bump,
		Mismatch:              propagation.Fixed(outcome),
		MaxRounds:             cfg.MaxRounds,
		KeepRedundantVersions: props.KeepRedundantVersions || !cfg.RemoveRedundantVersions,
	}

	if props.PublishCheck {
		checker := props.Checker
		if checker == nil {
			remote, err := publish.NewRemoteChecker(ws.Config.Publish, nil)
			if err != nil {
				return req, err
			}
			checker = remote
		}
		req.Publish = checker
	}
	return req, nil
}

func usage(err error, hint string) error {
	return errUtils.Build(err).WithHint(hint).WithExitCode(errUtils.ExitCodeUsage).Err()
}

func planResult(plan *propagation.Plan) *PropagateResult {
	name := func(p *pom.Project) string { return p.EffectiveCoordinates().Identity().String() }
	result := &PropagateResult{Families: []FamilyRow{}, Edits: []EditRow{}, Files: []FileRow{}}

	for _, f := range plan.Families {
		result.Families = append(result.Families, FamilyRow{
			Family:    string(f.Family),
			Old:       f.Change.Old.String(),
			New:       f.Change.New.String(),
			Synthetic: f.Synthetic,
		})
	}
	for _, e := range plan.VersionEdits {
		result.Edits = append(result.Edits, EditRow{Project: name(e.Project), Kind: EditVersion, Old: e.Change.Old.String(), New: e.Change.New.String()})
	}
	for _, e := range plan.ParentVersionEdits {
		result.Edits = append(result.Edits, EditRow{Project: name(e.Project), Kind: EditParentVersion, Old: e.Change.Old.String(), New: e.Change.New.String()})
	}
	for _, e := range plan.PropertyEdits {
		result.Edits = append(result.Edits, EditRow{Project: name(e.Project), Kind: EditProperty, Name: e.Name, Old: e.Old, New: e.New})
	}
	for _, p := range plan.VersionRemovals {
		result.Edits = append(result.Edits, EditRow{Project: name(p), Kind: EditRemoveVersion, Old: p.Coordinates().Version.String()})
	}
	result.Skipped = lo.Map(plan.Skipped, func(m propagation.Mismatch, _ int) string { return m.String() })
	return result
}
