package exec

import (
	"io"
	"strconv"

	"github.com/samber/lo"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/dependency"
	log "github.com/cloudposse/pomgraph/pkg/logger"
	"github.com/cloudposse/pomgraph/pkg/perf"
	"github.com/cloudposse/pomgraph/pkg/pom"
)

// DepsProps are the arguments of `pomgraph deps`.
type DepsProps struct {
	Project string
	// Scopes is a comma separated list; empty means every scope.
	Scopes string
	// Full adds the transitive dependencies.
	Full   bool
	Format string
	File   string
}

// DepsResult lists the dependencies of one project.
type DepsResult struct {
	Project      string           `json:"project" yaml:"project"`
	Scopes       []string         `json:"scopes" yaml:"scopes"`
	Full         bool             `json:"full" yaml:"full"`
	Dependencies []pom.Dependency `json:"dependencies" yaml:"dependencies"`
	Problems     []ProblemRow     `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// ProblemRow is a descriptor that could not be located.
type ProblemRow struct {
	Consumer string `json:"consumer" yaml:"consumer"`
	Missing  string `json:"missing" yaml:"missing"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
	Message  string `json:"message" yaml:"message"`
}

func (r *DepsResult) headers() []string {
	return []string{"DEPENDENCY", "TYPE", "SCOPE", "OPTIONAL"}
}

func (r *DepsResult) rows() [][]string {
	return lo.Map(r.Dependencies, func(d pom.Dependency, _ int) []string {
		return []string{d.Coordinates.String(), d.EffectiveType(), d.Scope.String(), strconv.FormatBool(d.Optional)}
	})
}

// ExecuteDeps prints the direct or full dependency set of a project.
func ExecuteDeps(w io.Writer, ws *Workspace, props DepsProps) error {
	defer perf.Track(&ws.Config, "exec.ExecuteDeps")()

	scopes, err := pom.ParseScopeSet(props.Scopes)
	if err != nil {
		return errUtils.Build(err).
			WithHint("use a comma separated list of compile, test, provided, runtime, import").
			WithExitCode(errUtils.ExitCodeUsage).
			Err()
	}
	project, err := ws.FindProject(props.Project)
	if err != nil {
		return err
	}

	ctx := ws.Engine.For(project)
	result := &DepsResult{
		Project: project.EffectiveCoordinates().String(),
		Scopes:  lo.Map(scopes.Scopes(), func(s pom.Scope, _ int) string { return s.String() }),
		Full:    props.Full,
	}
	var problems []dependency.Problem
	if props.Full {
		full := ctx.FullDependencies(scopes.Scopes()...)
		result.Dependencies = full.Dependencies
		problems = full.Problems
	} else {
		result.Dependencies = ctx.DirectDependencies(scopes.Scopes()...)
		problems = ctx.Problems()
	}
	result.Problems = problemRows(problems)

	for _, p := range result.Problems {
		log.Debug("Unresolved descriptor", "consumer", p.Consumer, "missing", p.Missing, "optional", p.Optional)
	}
	if n := len(result.Problems); n > 0 {
		log.Warn("Some descriptors could not be found", "project", result.Project, "problems", n)
	}
	return printOrWriteToFile(w, props.Format, props.File, result)
}

func problemRows(problems []dependency.Problem) []ProblemRow {
	return lo.Map(problems, func(p dependency.Problem, _ int) ProblemRow {
		return ProblemRow{
			Consumer: p.Consumer.String(),
			Missing:  p.Missing.String(),
			Optional: p.Optional,
			Message:  p.Error(),
		}
	})
}
