package exec

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/samber/lo"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/graph"
	"github.com/cloudposse/pomgraph/pkg/perf"
	"github.com/cloudposse/pomgraph/pkg/pom"
)

// RolesProps are the arguments of `pomgraph roles`.
type RolesProps struct {
	Family string
	Role   string
	Format string
	File   string
}

// RoleRow describes one project of the forest.
type RoleRow struct {
	Project string   `json:"project" yaml:"project"`
	Family  string   `json:"family" yaml:"family"`
	Roles   []string `json:"roles" yaml:"roles"`
	Parent  string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Source  string   `json:"source,omitempty" yaml:"source,omitempty"`
}

// RolesResult lists the classified projects.
type RolesResult struct {
	Projects []RoleRow `json:"projects" yaml:"projects"`
}

func (r *RolesResult) headers() []string {
	return []string{"PROJECT", "FAMILY", "ROLES", "PARENT"}
}

func (r *RolesResult) rows() [][]string {
	return lo.Map(r.Projects, func(row RoleRow, _ int) []string {
		return []string{row.Project, row.Family, fmt.Sprint(row.Roles), row.Parent}
	})
}

// ExecuteRoles prints the role and family of every project in the forest.
func ExecuteRoles(w io.Writer, ws *Workspace, props RolesProps) error {
	defer perf.Track(&ws.Config, "exec.ExecuteRoles")()

	var role graph.Role
	if props.Role != "" {
		r, ok := graph.ParseRole(props.Role)
		if !ok {
			return errUtils.Build(fmt.Errorf("%w: role '%s'", errUtils.ErrInvalidFlagValue, props.Role)).
				WithHint("use one of parent, bom, config, config-root, leaf, unknown").
				WithExitCode(errUtils.ExitCodeUsage).
				Err()
		}
		role = r
	}

	projects := ws.Graph.Projects()
	if props.Family != "" {
		projects = ws.Graph.Members(graph.Family(props.Family))
		if len(projects) == 0 {
			return errUtils.Build(fmt.Errorf("%w: family '%s'", errUtils.ErrInvalidFlagValue, props.Family)).
				WithHintf("known families: %v", ws.Graph.Families()).
				WithExitCode(errUtils.ExitCodeUsage).
				Err()
		}
	}

	result := &RolesResult{Projects: []RoleRow{}}
	for _, p := range projects {
		roles := ws.Graph.Roles(p)
		if role != 0 && !roles.Has(role) {
			continue
		}
		result.Projects = append(result.Projects, roleRow(ws, p, roles))
	}
	return printOrWriteToFile(w, props.Format, props.File, result)
}

func roleRow(ws *Workspace, p *pom.Project, roles graph.Roles) RoleRow {
	row := RoleRow{
		Project: p.EffectiveCoordinates().String(),
		Family:  string(ws.Graph.Family(p)),
		Roles:   lo.Map(roles.List(), func(r graph.Role, _ int) string { return r.String() }),
	}
	if parent, ok := ws.Graph.Parent(p); ok {
		row.Parent = parent.EffectiveCoordinates().String()
	} else if declared, ok := p.Parent(); ok {
		row.Parent = declared.Coordinates.String()
	}
	if src := p.Source(); src != "" {
		if rel, err := filepath.Rel(ws.Config.BasePathAbsolute, src); err == nil {
			src = filepath.ToSlash(rel)
		}
		row.Source = src
	}
	return row
}
