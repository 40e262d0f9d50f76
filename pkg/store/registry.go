package store

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/mitchellh/mapstructure"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/descriptor"
	"github.com/cloudposse/pomgraph/pkg/pom"
	"github.com/cloudposse/pomgraph/pkg/schema"
)

// Store types accepted in the `stores` configuration section.
const (
	TypeForest     = "forest"
	TypeRepository = "repository"
	TypeInMemory   = "in-memory"
)

// ForestOptions are the `forest` store options: another descriptor tree.
type ForestOptions struct {
	BasePath      string   `mapstructure:"base_path"`
	IncludedPaths []string `mapstructure:"included_paths"`
	ExcludedPaths []string `mapstructure:"excluded_paths"`
}

// InMemoryOptions are the `in-memory` store options: descriptors inline.
type InMemoryOptions struct {
	Descriptors []map[string]any `mapstructure:"descriptors"`
}

// Registry maps store names to resolvers.
type Registry map[string]Resolver

// NewRegistry builds every configured store. Relative paths are taken from basePath.
func NewRegistry(stores map[string]schema.StoreConfig, basePath string) (Registry, error) {
	registry := make(Registry, len(stores))
	for name, storeConfig := range stores {
		switch storeConfig.Type {
		case TypeForest:
			var opts ForestOptions
			if err := parseOptions(name, storeConfig.Options, &opts); err != nil {
				return nil, err
			}
			if opts.BasePath == "" {
				return nil, fmt.Errorf("%w: store '%s' requires base_path", errUtils.ErrStoreConfig, name)
			}
			projects, err := descriptor.LoadForest(absolute(basePath, opts.BasePath), opts.IncludedPaths, opts.ExcludedPaths)
			if err != nil {
				return nil, fmt.Errorf("store '%s': %w", name, err)
			}
			registry[name] = NewLocal(projects)

		case TypeRepository:
			var opts RepositoryOptions
			if err := parseOptions(name, storeConfig.Options, &opts); err != nil {
				return nil, err
			}
			root := absolute(basePath, opts.Path)
			if opts.Path == "" || !repositoryExists(root) {
				return nil, fmt.Errorf("%w: store '%s' path '%s' is not a directory", errUtils.ErrStoreConfig, name, opts.Path)
			}
			formats := make([]descriptor.Format, 0, len(opts.Formats))
			for _, f := range opts.Formats {
				formats = append(formats, descriptor.Format(f))
			}
			registry[name] = NewRepositoryStore(root, formats...)

		case TypeInMemory:
			var opts InMemoryOptions
			if err := parseOptions(name, storeConfig.Options, &opts); err != nil {
				return nil, err
			}
			projects := make([]*pom.Project, 0, len(opts.Descriptors))
			for i, m := range opts.Descriptors {
				p, err := descriptor.FromMap(m, fmt.Sprintf("store:%s[%d]", name, i))
				if err != nil {
					return nil, fmt.Errorf("store '%s': %w", name, err)
				}
				projects = append(projects, p)
			}
			registry[name] = NewLocal(pom.NewProjects(projects...))

		default:
			return nil, fmt.Errorf("%w: '%s' for store '%s'", errUtils.ErrStoreType, storeConfig.Type, name)
		}
	}
	return registry, nil
}

// Get returns the named store.
func (r Registry) Get(name string) (Resolver, error) {
	s, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", errUtils.ErrStoreNotFound, name)
	}
	return s, nil
}

// Names returns the store names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolver asks primary first, then every store in name order, memoized.
func (r Registry) Resolver(primary Resolver) Resolver {
	resolvers := []Resolver{primary}
	for _, name := range r.Names() {
		resolvers = append(resolvers, r[name])
	}
	return Memoize(Chain(resolvers...))
}

func parseOptions(name string, options map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      target,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(options); err != nil {
		return fmt.Errorf("%w: store '%s': %w", errUtils.ErrStoreConfig, name, err)
	}
	return nil
}

func absolute(basePath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(basePath, p)
}
