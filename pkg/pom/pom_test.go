package pom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/property"
)

func TestElements(t *testing.T) {
	props := property.Map(map[string]string{"kivakit.version": "1.2.0"})

	tests := []struct {
		name        string
		version     Version
		placeholder bool
		resolved    bool
		after       Version
	}{
		{name: "concrete", version: "1.0.0", resolved: true, after: "1.0.0"},
		{name: "placeholder token", version: PlaceholderToken, placeholder: true, after: PlaceholderToken},
		{name: "empty", version: "", placeholder: true, after: ""},
		{name: "reference", version: "${kivakit.version}", after: "1.2.0"},
		{name: "unknown reference", version: "${nope}", after: "${nope}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.placeholder, tt.version.IsPlaceholder())
			assert.Equal(t, tt.resolved, tt.version.IsResolved())
			got := tt.version.Resolve(props)
			assert.Equal(t, tt.after, got)
			assert.Equal(t, got, got.Resolve(props))
		})
	}
}

func TestParentRelativePath(t *testing.T) {
	var unset ParentRelativePath
	assert.True(t, unset.IsUnset())
	assert.Equal(t, DefaultRelativePath, unset.Path())

	none := NoParentPath()
	assert.False(t, none.IsUnset())
	assert.True(t, none.IsEmpty())
	assert.Equal(t, "", none.Path())

	explicit := RelativePath("../${dir}/pom.yaml")
	assert.False(t, explicit.IsResolved())
	resolved := explicit.Resolve(property.Map(map[string]string{"dir": "parent"}))
	assert.Equal(t, "../parent/pom.yaml", resolved.Path())
	assert.True(t, resolved.IsResolved())
}

func TestParseCoordinates(t *testing.T) {
	c, err := ParseCoordinates("com.telenav.kivakit:kivakit-core:1.0.0")
	require.NoError(t, err)
	assert.Equal(t, NewCoordinates("com.telenav.kivakit", "kivakit-core", "1.0.0"), c)
	assert.Equal(t, "com.telenav.kivakit:kivakit-core:1.0.0", c.String())

	c, err = ParseCoordinates("com.telenav.kivakit:kivakit-core")
	require.NoError(t, err)
	assert.True(t, c.Version.IsPlaceholder())
	assert.Equal(t, "com.telenav.kivakit:kivakit-core", c.String())

	for _, bad := range []string{"", "one", "a::c", "a:b:c:d"} {
		_, err := ParseCoordinates(bad)
		assert.ErrorIs(t, err, errUtils.ErrInvalidCoordinates, bad)
	}
}

func TestCoordinates_SameArtifact(t *testing.T) {
	a := NewCoordinates("g", "a", "1")
	b := NewCoordinates("g", "a", "2")
	assert.True(t, a.SameArtifact(b))
	assert.NotEqual(t, a, b)
	assert.False(t, a.SameArtifact(NewCoordinates("g", "other", "1")))
}

func TestScope_Transitivity(t *testing.T) {
	expected := map[Scope][]Scope{
		Compile:  {Compile, Provided, Runtime},
		Test:     {Compile, Provided, Runtime},
		Provided: {Compile, Provided, Runtime},
		Runtime:  {Compile, Runtime},
		Import:   nil,
	}
	for scope, want := range expected {
		t.Run(scope.String(), func(t *testing.T) {
			assert.Equal(t, want, Transitivity(scope).Scopes())
		})
	}

	assert.False(t, Transitivity(Runtime).Has(Provided), "runtime never passes provided on")
	assert.Equal(t, NewScopeSet(Compile, Runtime, Provided), NewScopeSet(Runtime, Test).Transitive())
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("Provided")
	require.NoError(t, err)
	assert.Equal(t, Provided, s)

	s, err = ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, Compile, s)

	_, err = ParseScope("system")
	assert.ErrorIs(t, err, errUtils.ErrInvalidScope)

	set, err := ParseScopeSet("compile, runtime")
	require.NoError(t, err)
	assert.Equal(t, "compile,runtime", set.String())

	set, err = ParseScopeSet("")
	require.NoError(t, err)
	assert.Equal(t, 5, set.Len())
}

func TestMerge(t *testing.T) {
	exclA := ArtifactIdentity{GroupID: "x", ArtifactID: "a"}
	exclB := ArtifactIdentity{GroupID: "x", ArtifactID: "b"}
	exclC := ArtifactIdentity{GroupID: "x", ArtifactID: "c"}

	a := Dependency{
		Coordinates: NewCoordinates("g", "lib", "1.0"),
		Scope:       Runtime,
		Optional:    true,
		Exclusions:  []ArtifactIdentity{exclA, exclB},
	}
	b := Dependency{
		Coordinates: NewCoordinates("g", "lib", PlaceholderToken),
		Type:        "jar",
		Scope:       Test,
		Optional:    false,
		Exclusions:  []ArtifactIdentity{exclC, exclB},
	}

	ab, ok := Merge(a, b)
	require.True(t, ok)
	ba, ok := Merge(b, a)
	require.True(t, ok)

	for _, m := range []Dependency{ab, ba} {
		assert.Equal(t, Test, m.Scope)
		assert.False(t, m.Optional)
		assert.Equal(t, []ArtifactIdentity{exclB}, m.Exclusions)
		assert.Equal(t, Version("1.0"), m.Version)
	}
}

func TestMerge_NoResult(t *testing.T) {
	a := Dependency{Coordinates: NewCoordinates("g", "lib", "1")}

	_, ok := Merge(a, Dependency{Coordinates: NewCoordinates("g", "other", "1")})
	assert.False(t, ok)

	_, ok = Merge(a, Dependency{Coordinates: NewCoordinates("g", "lib", "1"), Type: "pom"})
	assert.False(t, ok)
}

func TestDependency_Excludes(t *testing.T) {
	d := Dependency{
		Coordinates: NewCoordinates("g", "lib", "1"),
		Exclusions: []ArtifactIdentity{
			{GroupID: "org.slf4j", ArtifactID: "*"},
			{GroupID: "commons-*", ArtifactID: "commons-logging"},
			{GroupID: "exact", ArtifactID: "artifact"},
		},
	}

	assert.True(t, d.Excludes(ArtifactIdentity{GroupID: "org.slf4j", ArtifactID: "slf4j-api"}))
	assert.True(t, d.Excludes(ArtifactIdentity{GroupID: "commons-io", ArtifactID: "commons-logging"}))
	assert.True(t, d.Excludes(ArtifactIdentity{GroupID: "exact", ArtifactID: "artifact"}))
	assert.False(t, d.Excludes(ArtifactIdentity{GroupID: "exact", ArtifactID: "other"}))
	assert.False(t, d.Excludes(ArtifactIdentity{GroupID: "org.slf4j.impl", ArtifactID: "x"}))
}

func TestDependency_Resolve(t *testing.T) {
	props := property.Map(map[string]string{"lib.version": "3.1", "lib.group": "org.lib"})
	d := Dependency{
		Coordinates: NewCoordinates("${lib.group}", "lib", "${lib.version}"),
		Exclusions:  []ArtifactIdentity{{GroupID: "${lib.group}", ArtifactID: "internal"}},
	}

	r := d.Resolve(props)

	assert.True(t, r.IsResolved())
	assert.Equal(t, NewCoordinates("org.lib", "lib", "3.1"), r.Coordinates)
	assert.Equal(t, []ArtifactIdentity{{GroupID: "org.lib", ArtifactID: "internal"}}, r.Exclusions)
	assert.Equal(t, r, r.Resolve(props))
	assert.False(t, d.IsResolved(), "resolution returns a new value")
}

func TestProject(t *testing.T) {
	parent := NewCoordinates("com.telenav.kivakit", "kivakit-parent", "1.0.0")
	p := NewProject(
		NewCoordinates("", "kivakit-core", ""),
		WithParent(Parent{Coordinates: parent}),
		WithProperty("b", "2"),
		WithProperty("a", "1"),
		WithProperty("b", "3"),
		WithSource("core/pom.yaml"),
	)

	assert.False(t, p.HasOwnVersion())
	assert.Equal(t, NewCoordinates("com.telenav.kivakit", "kivakit-core", "1.0.0"), p.EffectiveCoordinates())
	assert.Equal(t, []Property{{Name: "b", Value: "3"}, {Name: "a", Value: "1"}}, p.Properties())
	assert.Equal(t, map[string]string{"a": "1", "b": "3"}, p.PropertyMap())

	bumped := p.With(WithParentVersion("1.0.1"), WithProperty("c", "4"))
	assert.Equal(t, Version("1.0.0"), p.EffectiveCoordinates().Version, "original untouched")
	assert.Equal(t, Version("1.0.1"), bumped.EffectiveCoordinates().Version)
	v, ok := bumped.Property("c")
	assert.True(t, ok)
	assert.Equal(t, "4", v)
	_, ok = p.Property("c")
	assert.False(t, ok)

	assert.True(t, p.Equal(p.With()))
	assert.False(t, p.Equal(bumped.With(WithSource("elsewhere"))))
}

func TestProjects(t *testing.T) {
	a1 := NewProject(NewCoordinates("g", "a", "1"))
	a2 := NewProject(NewCoordinates("g", "a", "2"))
	b := NewProject(NewCoordinates("g", "b", "1"))
	ps := NewProjects(a1, a2, b, nil)

	assert.Equal(t, 3, ps.Len())
	assert.Len(t, ps.Find(ArtifactIdentity{GroupID: "g", ArtifactID: "a"}), 2)
	assert.Len(t, ps.Group("g"), 3)

	got, ok := ps.Get(NewCoordinates("g", "a", "2"))
	require.True(t, ok)
	assert.Same(t, a2, got)

	_, ok = ps.Get(NewCoordinates("g", "a", PlaceholderToken))
	assert.False(t, ok, "ambiguous identity")

	got, ok = ps.Get(NewCoordinates("g", "b", PlaceholderToken))
	require.True(t, ok)
	assert.Same(t, b, got)

	assert.True(t, ps.Contains(b))
	assert.False(t, ps.Contains(NewProject(NewCoordinates("g", "b", "1"))))
}

func TestCoordinatesResolver(t *testing.T) {
	p := NewProject(
		NewCoordinates("", "core", ""),
		WithParent(Parent{Coordinates: NewCoordinates("com.example", "parent", "2.0")}),
	)
	r := CoordinatesResolver(p)

	assert.Equal(t, "com.example:core:2.0", property.Expand("${project.groupId}:${project.artifactId}:${project.version}", r))
	assert.Equal(t, "parent-2.0", property.Expand("${project.parent.artifactId}-${parent.version}", r))
	assert.Equal(t, "2.0", property.Expand("${pom.version}", r))
	assert.Equal(t, "${project.name}", property.Expand("${project.name}", r))
}
