package descriptor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	mapset "github.com/deckarep/golang-set/v2"

	errUtils "github.com/cloudposse/pomgraph/errors"
	log "github.com/cloudposse/pomgraph/pkg/logger"
	"github.com/cloudposse/pomgraph/pkg/perf"
	"github.com/cloudposse/pomgraph/pkg/pom"
)

var (
	DefaultIncludedPaths = []string{"**/pom.yaml", "**/pom.yml", "**/pom.json"}
	DefaultExcludedPaths = []string{"**/target/**", "**/.git/**", "**/node_modules/**"}
)

// Discover lists the descriptor files under basePath matching any included
// pattern and no excluded pattern. Patterns are doublestar globs relative to
// basePath; the result is sorted.
func Discover(basePath string, included, excluded []string) ([]string, error) {
	defer perf.Track(nil, "descriptor.Discover")()

	if len(included) == 0 {
		included = DefaultIncludedPaths
	}
	for _, pattern := range append(append([]string{}, included...), excluded...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: '%s'", errUtils.ErrInvalidPattern, pattern)
		}
	}

	info, err := os.Stat(basePath)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: '%s'", errUtils.ErrMissingBasePath, basePath)
	}

	fsys := os.DirFS(basePath)
	found := mapset.NewThreadUnsafeSet[string]()
	for _, pattern := range included {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("%w: '%s': %w", errUtils.ErrInvalidPattern, pattern, err)
		}
		for _, match := range matches {
			if !isExcluded(match, excluded) {
				found.Add(match)
			}
		}
	}

	rel := found.ToSlice()
	sort.Strings(rel)
	paths := make([]string, len(rel))
	for i, r := range rel {
		paths[i] = filepath.Join(basePath, filepath.FromSlash(r))
	}
	return paths, nil
}

func isExcluded(rel string, excluded []string) bool {
	for _, pattern := range excluded {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// LoadForest discovers and loads every descriptor under basePath.
// Two descriptors with the same effective coordinates are an error.
func LoadForest(basePath string, included, excluded []string) (*pom.Projects, error) {
	defer perf.Track(nil, "descriptor.LoadForest")()

	paths, err := Discover(basePath, included, excluded)
	if err != nil {
		return nil, err
	}

	bySource := make(map[pom.Coordinates]string, len(paths))
	projects := make([]*pom.Project, 0, len(paths))
	for _, p := range paths {
		project, err := Load(p)
		if err != nil {
			return nil, err
		}
		c := project.EffectiveCoordinates()
		if first, dup := bySource[c]; dup {
			return nil, errUtils.Build(errUtils.ErrDuplicateDescriptor).
				WithExplanationf("%s is declared by both %s and %s", c, first, p).
				WithHint("exclude one of the files with descriptors.excluded_paths").
				WithContext("coordinates", c.String()).
				Err()
		}
		bySource[c] = p
		projects = append(projects, project)
	}

	log.Debug("Loaded descriptor forest", "base_path", basePath, "descriptors", len(projects))
	return pom.NewProjects(projects...), nil
}

// RepositoryPath is the slash separated location of c in a repository laid
// out like a Maven repository: group/path/artifact/version/artifact-version.pom.yaml.
func RepositoryPath(c pom.Coordinates, format Format) string {
	group := strings.ReplaceAll(string(c.GroupID), ".", "/")
	file := fmt.Sprintf("%s-%s.pom.%s", c.ArtifactID, c.Version, format)
	return path.Join(group, string(c.ArtifactID), string(c.Version), file)
}

// Fingerprint is a digest of p's canonical YAML encoding. Two descriptors
// with the same content have the same fingerprint regardless of layout.
func Fingerprint(p *pom.Project) (string, error) {
	data, err := Encode(p, FormatYAML)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
