package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/lo"

	"github.com/cloudposse/pomgraph/pkg/descriptor"
	log "github.com/cloudposse/pomgraph/pkg/logger"
	"github.com/cloudposse/pomgraph/pkg/pom"
)

// RepositoryStore reads descriptors from a directory laid out like a Maven
// repository (see descriptor.RepositoryPath).
type RepositoryStore struct {
	root    string
	formats []descriptor.Format
}

var _ Resolver = (*RepositoryStore)(nil)

// RepositoryOptions are the `repository` store options.
type RepositoryOptions struct {
	Path    string   `mapstructure:"path"`
	Formats []string `mapstructure:"formats"`
}

// NewRepositoryStore opens root. Formats default to YAML then JSON.
func NewRepositoryStore(root string, formats ...descriptor.Format) *RepositoryStore {
	if len(formats) == 0 {
		formats = []descriptor.Format{descriptor.FormatYAML, descriptor.FormatJSON}
	}
	return &RepositoryStore{root: root, formats: lo.Uniq(formats)}
}

// Resolve implements Resolver. Coordinates must be fully resolved.
func (s *RepositoryStore) Resolve(c pom.Coordinates) (*pom.Project, bool) {
	if !c.IsResolved() {
		return nil, false
	}
	for _, format := range s.formats {
		path := filepath.Join(s.root, filepath.FromSlash(descriptor.RepositoryPath(c, format)))
		p, err := descriptor.Load(path)
		switch {
		case err == nil:
			if p.EffectiveCoordinates() != c {
				log.Warn("Repository descriptor does not match its location", "path", path, "declared", p.EffectiveCoordinates().String())
				return nil, false
			}
			return p, true
		case errors.Is(err, fs.ErrNotExist):
			continue
		default:
			log.Warn("Failed to load repository descriptor", "path", path, "error", err)
			return nil, false
		}
	}
	log.Trace("Descriptor not in repository", "coordinates", c.String(), "root", s.root)
	return nil, false
}

// Root returns the repository directory.
func (s *RepositoryStore) Root() string { return s.root }

func repositoryExists(root string) bool {
	info, err := os.Stat(root)
	return err == nil && info.IsDir()
}
