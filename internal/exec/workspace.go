package exec

import (
	"fmt"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/dependency"
	"github.com/cloudposse/pomgraph/pkg/descriptor"
	"github.com/cloudposse/pomgraph/pkg/graph"
	log "github.com/cloudposse/pomgraph/pkg/logger"
	"github.com/cloudposse/pomgraph/pkg/perf"
	"github.com/cloudposse/pomgraph/pkg/pom"
	"github.com/cloudposse/pomgraph/pkg/schema"
	"github.com/cloudposse/pomgraph/pkg/store"
)

// Workspace is the loaded forest under the base path together with the
// configured stores.
type Workspace struct {
	Config   schema.Configuration
	Projects *pom.Projects
	Graph    *graph.Graph
	Resolver store.Resolver
	Engine   *dependency.Engine
}

// LoadWorkspace discovers the descriptors under the base path and builds the
// configured stores behind them.
func LoadWorkspace(cfg *schema.Configuration) (*Workspace, error) {
	defer perf.Track(cfg, "exec.LoadWorkspace")()

	projects, err := descriptor.LoadForest(cfg.BasePathAbsolute, cfg.Descriptors.IncludedPaths, cfg.Descriptors.ExcludedPaths)
	if err != nil {
		return nil, err
	}
	registry, err := store.NewRegistry(cfg.Stores, cfg.BasePathAbsolute)
	if err != nil {
		return nil, err
	}
	if names := registry.Names(); len(names) > 0 {
		log.Debug("Using descriptor stores", "stores", names)
	}

	resolver := registry.Resolver(store.NewLocal(projects))
	return &Workspace{
		Config:   *cfg,
		Projects: projects,
		Graph:    graph.New(projects),
		Resolver: resolver,
		Engine:   dependency.New(resolver),
	}, nil
}

// FindProject resolves a "group:artifact[:version]" reference. Without a
// version the reference must name exactly one project of the forest.
// Projects outside the forest are looked up in the stores.
func (w *Workspace) FindProject(ref string) (*pom.Project, error) {
	c, err := pom.ParseCoordinates(ref)
	if err != nil {
		return nil, errUtils.Build(err).
			WithHint("use group:artifact or group:artifact:version").
			WithExitCode(errUtils.ExitCodeUsage).
			Err()
	}

	if c.Version.IsPlaceholder() {
		candidates := w.Projects.Find(c.Identity())
		switch len(candidates) {
		case 1:
			return candidates[0], nil
		case 0:
			return nil, errUtils.Build(fmt.Errorf("%w: %s", errUtils.ErrProjectNotFound, c.Identity())).
				WithHintf("no descriptor under %s declares %s", w.Config.BasePathAbsolute, c.Identity()).
				Err()
		default:
			versions := make([]string, 0, len(candidates))
			for _, p := range candidates {
				versions = append(versions, p.EffectiveCoordinates().Version.String())
			}
			return nil, errUtils.Build(fmt.Errorf("%w: %s", errUtils.ErrAmbiguousProject, c.Identity())).
				WithExplanationf("the forest holds versions %v", versions).
				WithHint("add the version to the reference").
				WithExitCode(errUtils.ExitCodeUsage).
				Err()
		}
	}

	if p, ok := w.Resolver.Resolve(c); ok {
		return p, nil
	}
	return nil, errUtils.Build(fmt.Errorf("%w: %s", errUtils.ErrProjectNotFound, c)).
		WithHint("check the version, or configure a store that holds the descriptor").
		Err()
}
