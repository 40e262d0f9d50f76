package graph

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudposse/pomgraph/pkg/pom"
)

func parentOf(group, artifact, version string) pom.Option {
	return pom.WithParent(pom.Parent{Coordinates: pom.NewCoordinates(group, artifact, version)})
}

func names(ps []*pom.Project) []string {
	return lo.Map(ps, func(p *pom.Project, _ int) string { return string(p.Coordinates().ArtifactID) })
}

// kivakit is a superpom, a bom parent with two modules, and one extension.
func kivakit() (*pom.Projects, map[string]*pom.Project) {
	superpom := pom.NewProject(pom.NewCoordinates("com.telenav.kivakit", "superpom", "1.0.0"),
		pom.WithPackaging(pom.PackagingPom),
		pom.WithProperty("kivakit.version", "1.0.0"),
	)
	parent := pom.NewProject(pom.NewCoordinates("com.telenav.kivakit", "kivakit", "1.0.0"),
		pom.WithPackaging(pom.PackagingPom),
		pom.WithModules("core", "network"),
		parentOf("com.telenav.kivakit", "superpom", "1.0.0"),
	)
	core := pom.NewProject(pom.NewCoordinates("", "core", ""),
		parentOf("com.telenav.kivakit", "kivakit", "1.0.0"),
		pom.WithProperty("kivakit.version", "1.0.0"),
	)
	network := pom.NewProject(pom.NewCoordinates("", "network", ""),
		parentOf("com.telenav.kivakit", "kivakit", "0.9.0"),
	)
	ext := pom.NewProject(pom.NewCoordinates("com.telenav.kivakit-extensions", "ext", "2.0.0"),
		pom.WithProperty("kivakit.version", "0.9.0"),
	)
	config := pom.NewProject(pom.NewCoordinates("com.telenav.mesakit", "mesakit-config", "3.0.0"),
		pom.WithPackaging(pom.PackagingPom),
		parentOf("com.telenav.kivakit", "superpom", "1.0.0"),
	)

	all := map[string]*pom.Project{"superpom": superpom, "kivakit": parent, "core": core, "network": network, "ext": ext, "config": config}
	return pom.NewProjects(lo.Values(all)...), all
}

func TestNew_Adjacency(t *testing.T) {
	projects, all := kivakit()
	g := New(projects)

	parent, ok := g.Parent(all["core"])
	require.True(t, ok)
	assert.Same(t, all["kivakit"], parent)

	parent, ok = g.Parent(all["network"])
	require.True(t, ok, "falls back to the unique identity")
	assert.Same(t, all["kivakit"], parent)

	_, ok = g.Parent(all["superpom"])
	assert.False(t, ok)

	assert.Equal(t, []string{"core", "network"}, names(g.Children(all["kivakit"])))
	assert.ElementsMatch(t, []string{"kivakit", "core", "network", "mesakit-config"}, names(g.Descendants(all["superpom"])))
	assert.Equal(t, []string{"kivakit", "superpom"}, names(g.Ancestors(all["core"])))
	assert.Same(t, all["superpom"], g.Root(all["network"]))
	assert.Same(t, all["ext"], g.Root(all["ext"]))
}

func TestNew_Roles(t *testing.T) {
	projects, all := kivakit()
	g := New(projects)

	tests := []struct {
		project string
		want    []Role
	}{
		{project: "superpom", want: []Role{RoleParent, RoleConfigRoot}},
		{project: "kivakit", want: []Role{RoleParent, RoleBillOfMaterials, RoleConfig}},
		{project: "core", want: []Role{RoleLeaf}},
		{project: "ext", want: []Role{RoleLeaf}},
		{project: "config", want: []Role{RoleConfig}},
	}

	for _, tt := range tests {
		t.Run(tt.project, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Roles(all[tt.project]).List())
		})
	}

	assert.True(t, g.Roles(all["kivakit"]).IsSuperpom())
	assert.False(t, g.Roles(all["core"]).IsSuperpom())
	assert.Equal(t, []string{"kivakit", "superpom"}, names(g.ProjectsWithRole(RoleParent)))
	assert.Equal(t, "parent,bom,config", g.Roles(all["kivakit"]).String())

	r, ok := ParseRole("CONFIG-ROOT")
	assert.True(t, ok)
	assert.Equal(t, RoleConfigRoot, r)
}

func TestNew_RootBillOfMaterials(t *testing.T) {
	bom := pom.NewProject(pom.NewCoordinates("g.x", "bom", "1"), pom.WithPackaging(pom.PackagingPom), pom.WithModules("m"))
	m := pom.NewProject(pom.NewCoordinates("", "m", ""), parentOf("g.x", "bom", "1"))

	g := New(pom.NewProjects(bom, m))

	assert.Equal(t, []Role{RoleParent, RoleBillOfMaterials, RoleConfigRoot}, g.Roles(bom).List())
}

func TestFamilies(t *testing.T) {
	projects, all := kivakit()
	g := New(projects)

	assert.Equal(t, []Family{"kivakit", "mesakit"}, g.Families())
	assert.Equal(t, Family("kivakit"), g.Family(all["ext"]))
	assert.Equal(t, []string{"ext", "core", "kivakit", "network", "superpom"}, names(g.Members("kivakit")))

	custom := New(projects, WithFamilyFunc(func(p *pom.Project) Family { return Family(p.Packaging()) }))
	assert.Equal(t, []Family{"jar", "pom"}, custom.Families())
}

func TestFamilyOfGroup(t *testing.T) {
	tests := map[pom.GroupID]Family{
		"com.telenav.kivakit":            "kivakit",
		"com.telenav.kivakit-extensions": "kivakit",
		"lexakai":                        "lexakai",
		"org.a-b-c":                      "a-b",
		"org.-x":                         "-x",
	}
	for group, want := range tests {
		assert.Equal(t, want, FamilyOfGroup(group), string(group))
	}
}

func TestProjectsDefining(t *testing.T) {
	projects, all := kivakit()
	g := New(projects)

	assert.Equal(t, []string{"core", "superpom"}, names(g.ProjectsDefining("kivakit.version", "1.0.0")))
	assert.Equal(t, []*pom.Project{all["ext"]}, g.ProjectsDefining("kivakit.version", "0.9.0"))
	assert.Nil(t, g.ProjectsDefining("kivakit.version", "2.0.0"))
}

func TestDescendants_Cycle(t *testing.T) {
	a := pom.NewProject(pom.NewCoordinates("g", "a", "1"), parentOf("g", "c", "1"))
	b := pom.NewProject(pom.NewCoordinates("g", "b", "1"), parentOf("g", "a", "1"))
	c := pom.NewProject(pom.NewCoordinates("g", "c", "1"), parentOf("g", "b", "1"))

	g := New(pom.NewProjects(a, b, c))

	assert.Equal(t, []string{"b", "c"}, names(g.Descendants(a)))
	assert.Equal(t, []string{"c", "b"}, names(g.Ancestors(a)))
}
