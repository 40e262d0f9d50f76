package exec

import (
	"fmt"
	"strings"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/graph"
	"github.com/cloudposse/pomgraph/pkg/pom"
	"github.com/cloudposse/pomgraph/pkg/version"
)

// ParseFamilyTargets parses "family=old:new" arguments.
func ParseFamilyTargets(args []string) (map[graph.Family]version.Change, error) {
	targets := make(map[graph.Family]version.Change, len(args))
	for _, arg := range args {
		family, change, ok := strings.Cut(arg, "=")
		oldVersion, newVersion, ok2 := strings.Cut(change, ":")
		family = strings.TrimSpace(family)
		if !ok || !ok2 || family == "" {
			return nil, targetUsage(fmt.Errorf("%w: '%s' is not family=old:new", errUtils.ErrInvalidFamilyTarget, arg), "--family kivakit=1.0.0:1.0.1")
		}
		c, err := version.NewChange(strings.TrimSpace(oldVersion), strings.TrimSpace(newVersion))
		if err != nil {
			return nil, targetUsage(fmt.Errorf("%w: '%s': %w", errUtils.ErrInvalidFamilyTarget, arg, err), "--family kivakit=1.0.0:1.0.1")
		}
		if prev, dup := targets[graph.Family(family)]; dup && prev != c {
			return nil, targetUsage(fmt.Errorf("%w: family '%s' is given twice", errUtils.ErrInvalidFamilyTarget, family), "give each family once")
		}
		targets[graph.Family(family)] = c
	}
	return targets, nil
}

// ParseProjectTargets parses "group:artifact[:version]=new" arguments and
// finds each project in the forest.
func ParseProjectTargets(ws *Workspace, args []string) (map[*pom.Project]version.Version, error) {
	targets := make(map[*pom.Project]version.Version, len(args))
	for _, arg := range args {
		ref, target, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(ref) == "" {
			return nil, targetUsage(fmt.Errorf("%w: '%s' is not group:artifact=version", errUtils.ErrInvalidProjectTarget, arg), "--project com.telenav.kivakit:kivakit-core=1.0.1")
		}
		v, err := version.Parse(strings.TrimSpace(target))
		if err != nil {
			return nil, targetUsage(fmt.Errorf("%w: '%s': %w", errUtils.ErrInvalidProjectTarget, arg, err), "--project com.telenav.kivakit:kivakit-core=1.0.1")
		}
		p, err := ws.FindProject(ref)
		if err != nil {
			return nil, err
		}
		if !ws.Projects.Contains(p) {
			return nil, fmt.Errorf("%w: %s is not part of the forest under %s", errUtils.ErrInvalidProjectTarget, p, ws.Config.BasePathAbsolute)
		}
		targets[p] = v
	}
	return targets, nil
}

func targetUsage(err error, hint string) error {
	return errUtils.Build(err).WithHint(hint).WithExitCode(errUtils.ExitCodeUsage).Err()
}
