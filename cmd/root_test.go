package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/cloudposse/pomgraph/errors"
)

var forest = map[string]string{
	"pom.yaml": `groupId: com.telenav.kivakit
artifactId: kivakit-superpom
version: 1.0.0
packaging: pom
properties:
  kivakit.version: 1.0.0
dependencyManagement:
  - groupId: org.junit
    artifactId: junit
    version: 5.9.0
    scope: test
`,
	"core/pom.yaml": `artifactId: kivakit-core
parent:
  groupId: com.telenav.kivakit
  artifactId: kivakit-superpom
  version: 1.0.0
dependencies:
  - groupId: org.junit
    artifactId: junit
`,
}

func TestVersionCmd(t *testing.T) {
	isolate(t)

	out, err := execute(t, "version", "--base-path", "does-not-matter")
	require.NoError(t, err)
	assert.Equal(t, "pomgraph "+Version+" on "+runtime.GOOS+"/"+runtime.GOARCH+"\n", out)
}

func TestDepsCmd(t *testing.T) {
	isolate(t)
	dir := writeForest(t, forest)

	out, err := execute(t, "deps", "com.telenav.kivakit:kivakit-core", "--base-path", dir, "--format", "json", "--scope", "test,compile")
	require.NoError(t, err)

	var result struct {
		Project      string   `json:"project"`
		Scopes       []string `json:"scopes"`
		Dependencies []struct {
			ArtifactID string `json:"artifactId"`
			Version    string `json:"version"`
			Scope      string `json:"scope"`
		} `json:"dependencies"`
	}
	require.NoError(t, jsoniter.Unmarshal([]byte(out), &result))
	assert.Equal(t, "com.telenav.kivakit:kivakit-core:1.0.0", result.Project)
	assert.Equal(t, []string{"compile", "test"}, result.Scopes)
	require.Len(t, result.Dependencies, 1)
	assert.Equal(t, "junit", result.Dependencies[0].ArtifactID)
	assert.Equal(t, "5.9.0", result.Dependencies[0].Version)
	assert.Equal(t, "test", result.Dependencies[0].Scope)
}

func TestPropertiesCmd(t *testing.T) {
	isolate(t)
	dir := writeForest(t, forest)

	out, err := execute(t, "properties", "com.telenav.kivakit:kivakit-core", "--base-path", dir, "--name", "kivakit.version", "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: kivakit.version")
	assert.Contains(t, out, "definedIn: com.telenav.kivakit:kivakit-superpom:1.0.0")
}

func TestRolesCmd(t *testing.T) {
	isolate(t)
	dir := writeForest(t, forest)

	out, err := execute(t, "roles", "--base-path", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "PROJECT")
	assert.Contains(t, out, "com.telenav.kivakit:kivakit-core:1.0.0")
	assert.Contains(t, out, "[parent config-root]")
}

func TestRolesCmd_File(t *testing.T) {
	isolate(t)
	dir := writeForest(t, forest)
	file := filepath.Join(t.TempDir(), "roles.json")

	out, err := execute(t, "roles", "--base-path", dir, "--format", "json", "--file", file)
	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"family": "kivakit"`)
}

func TestPropagateCmd(t *testing.T) {
	isolate(t)
	dir := writeForest(t, forest)

	out, err := execute(t, "propagate", "--base-path", dir, "--family", "kivakit=1.0.0:1.0.1", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "+version: 1.0.1")
	data, err := os.ReadFile(filepath.Join(dir, "pom.yaml"))
	require.NoError(t, err)
	assert.Equal(t, forest["pom.yaml"], string(data))

	_, err = execute(t, "propagate", "--base-path", dir, "--family", "kivakit=1.0.0:1.0.1", "--format", "json")
	require.NoError(t, err)
	data, err = os.ReadFile(filepath.Join(dir, "pom.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 1.0.1")
}

func TestPropagateCmd_MismatchFromConfig(t *testing.T) {
	isolate(t)
	files := map[string]string{"extra/pom.yaml": "groupId: com.telenav.kivakit\nartifactId: kivakit-extra\nversion: 0.9.0\n"}
	for k, v := range forest {
		files[k] = v
	}
	dir := writeForest(t, files)

	_, err := execute(t, "propagate", "--base-path", dir, "--family", "kivakit=1.0.0:1.0.1", "--dry-run")
	assert.ErrorIs(t, err, errUtils.ErrVersionMismatch)
	assert.Equal(t, errUtils.ExitCodeMismatch, errUtils.GetExitCode(err))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pomgraph.yaml"), []byte("propagation:\n  mismatch: skip\n"), 0o644))
	_, err = execute(t, "propagate", "--config", filepath.Join(dir, "pomgraph.yaml"), "--base-path", dir, "--family", "kivakit=1.0.0:1.0.1", "--dry-run")
	assert.NoError(t, err, "the configuration sets the mismatch policy")

	_, err = execute(t, "propagate", "--config", filepath.Join(dir, "pomgraph.yaml"), "--base-path", dir, "--family", "kivakit=1.0.0:1.0.1", "--dry-run", "--mismatch", "abort")
	assert.ErrorIs(t, err, errUtils.ErrVersionMismatch, "the flag overrides the configuration")
}

func TestRootCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
		code int
	}{
		{name: "unknown flag", args: []string{"roles", "--bogus"}, want: errUtils.ErrInvalidArguments, code: errUtils.ExitCodeUsage},
		{name: "log level", args: []string{"roles", "--logs-level", "Loud"}, want: errUtils.ErrInvalidLogLevel, code: errUtils.ExitCodeUsage},
		{name: "missing base path", args: []string{"roles", "--base-path", "nowhere"}, want: errUtils.ErrMissingBasePath, code: errUtils.ExitCodeUsage},
		{name: "format", args: []string{"roles", "--format", "xml"}, want: errUtils.ErrInvalidFormat, code: errUtils.ExitCodeUsage},
		{name: "bad reference", args: []string{"deps", "kivakit-core"}, want: errUtils.ErrInvalidCoordinates, code: errUtils.ExitCodeUsage},
		{name: "unknown project", args: []string{"deps", "org.example:none"}, want: errUtils.ErrProjectNotFound, code: errUtils.ExitCodeFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			require.NoError(t, os.WriteFile("pom.yaml", []byte(forest["pom.yaml"]), 0o644))

			_, err := execute(t, tt.args...)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.code, errUtils.GetExitCode(err))
		})
	}
}
