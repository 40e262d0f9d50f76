package exec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/descriptor"
	"github.com/cloudposse/pomgraph/pkg/schema"
)

const superpomYAML = `groupId: com.telenav.kivakit
artifactId: kivakit-superpom
version: 1.0.0
packaging: pom
properties:
  kivakit.version: 1.0.0
  java.version: "17"
dependencyManagement:
  - groupId: org.junit
    artifactId: junit
    version: 5.9.0
    scope: test
`

const coreYAML = `artifactId: kivakit-core
parent:
  groupId: com.telenav.kivakit
  artifactId: kivakit-superpom
  version: 1.0.0
properties:
  core.name: core-${kivakit.version}
  java.version: "21"
dependencies:
  - groupId: org.junit
    artifactId: junit
  - groupId: com.telenav.kivakit
    artifactId: kivakit-logging
    version: ${kivakit.version}
`

const loggingYAML = `artifactId: kivakit-logging
version: 1.0.0
parent:
  groupId: com.telenav.kivakit
  artifactId: kivakit-superpom
  version: 1.0.0
dependencies:
  - groupId: org.slf4j
    artifactId: slf4j-api
    version: 2.0.0
`

// newForest writes the kivakit fixture under a temp dir.
func newForest(t *testing.T, extra map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"pom.yaml":         superpomYAML,
		"core/pom.yaml":    coreYAML,
		"logging/pom.yaml": loggingYAML,
	}
	for rel, content := range extra {
		files[rel] = content
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func testConfig(dir string) *schema.Configuration {
	return &schema.Configuration{
		BasePathAbsolute: dir,
		Descriptors: schema.Descriptors{
			IncludedPaths: descriptor.DefaultIncludedPaths,
			ExcludedPaths: descriptor.DefaultExcludedPaths,
		},
		Propagation: schema.Propagation{
			SuperpomBump:            "acquire-flavor",
			Mismatch:                "abort",
			RemoveRedundantVersions: true,
		},
	}
}

func loadWorkspace(t *testing.T, dir string) *Workspace {
	t.Helper()
	ws, err := LoadWorkspace(testConfig(dir))
	require.NoError(t, err)
	return ws
}

func TestFindProject(t *testing.T) {
	extra := map[string]string{
		"v1/pom.yaml": "groupId: org.example\nartifactId: twin\nversion: 1.0.0\n",
		"v2/pom.yaml": "groupId: org.example\nartifactId: twin\nversion: 2.0.0\n",
	}
	ws := loadWorkspace(t, newForest(t, extra))

	tests := []struct {
		name string
		ref  string
		want string
		err  error
	}{
		{name: "identity", ref: "com.telenav.kivakit:kivakit-core", want: "com.telenav.kivakit:kivakit-core:1.0.0"},
		{name: "with version", ref: "org.example:twin:2.0.0", want: "org.example:twin:2.0.0"},
		{name: "ambiguous", ref: "org.example:twin", err: errUtils.ErrAmbiguousProject},
		{name: "unknown", ref: "org.example:nothing", err: errUtils.ErrProjectNotFound},
		{name: "unknown version", ref: "org.example:twin:3.0.0", err: errUtils.ErrProjectNotFound},
		{name: "malformed", ref: "kivakit-core", err: errUtils.ErrInvalidCoordinates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ws.FindProject(tt.ref)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.EffectiveCoordinates().String())
		})
	}
}

func TestFindProject_ExitCodes(t *testing.T) {
	ws := loadWorkspace(t, newForest(t, nil))

	_, err := ws.FindProject("kivakit-core")
	assert.Equal(t, errUtils.ExitCodeUsage, errUtils.GetExitCode(err))

	_, err = ws.FindProject("org.example:nothing")
	assert.Equal(t, errUtils.ExitCodeFailure, errUtils.GetExitCode(err))
}

func TestLoadWorkspace_Stores(t *testing.T) {
	dir := newForest(t, nil)
	cfg := testConfig(dir)
	cfg.Stores = map[string]schema.StoreConfig{
		"inline": {
			Type: "in-memory",
			Options: map[string]any{
				"descriptors": []any{
					map[string]any{"groupId": "org.slf4j", "artifactId": "slf4j-api", "version": "2.0.0"},
				},
			},
		},
	}

	ws, err := LoadWorkspace(cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, ws.Projects.Len(), "store descriptors are not part of the forest")

	p, err := ws.FindProject("org.slf4j:slf4j-api:2.0.0")
	require.NoError(t, err)
	assert.Equal(t, "store:inline[0]", p.Source())
}

func TestLoadWorkspace_DuplicateDescriptor(t *testing.T) {
	dir := newForest(t, map[string]string{"copy/pom.yaml": loggingYAML})

	_, err := LoadWorkspace(testConfig(dir))
	assert.ErrorIs(t, err, errUtils.ErrDuplicateDescriptor)
}
