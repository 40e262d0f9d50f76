package propagation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/graph"
	"github.com/cloudposse/pomgraph/pkg/pom"
	"github.com/cloudposse/pomgraph/pkg/publish"
	"github.com/cloudposse/pomgraph/pkg/version"
)

func project(group, artifact, v string, opts ...pom.Option) *pom.Project {
	return pom.NewProject(pom.NewCoordinates(group, artifact, v), opts...)
}

func childOf(parent *pom.Project) pom.Option {
	return pom.WithParent(pom.Parent{Coordinates: parent.EffectiveCoordinates()})
}

func superpom() pom.Option { return pom.WithPackaging(pom.PackagingPom) }

func family(name, from, to string) map[graph.Family]version.Change {
	return map[graph.Family]version.Change{graph.Family(name): version.MustChange(from, to)}
}

func propagate(t *testing.T, projects *pom.Projects, req Request) (*Plan, error) {
	t.Helper()
	return New(graph.New(projects)).Propagate(context.Background(), req)
}

func versionEdits(p *Plan) []string {
	var out []string
	for _, e := range p.VersionEdits {
		out = append(out, fmt.Sprintf("%s %s", e.Project.Coordinates().ArtifactID, e.Change))
	}
	return out
}

func parentEdits(p *Plan) []string {
	var out []string
	for _, e := range p.ParentVersionEdits {
		out = append(out, fmt.Sprintf("%s %s", e.Project.Coordinates().ArtifactID, e.Change))
	}
	return out
}

func propertyEdits(p *Plan) []string {
	var out []string
	for _, e := range p.PropertyEdits {
		out = append(out, fmt.Sprintf("%s %s=%s", e.Project.Coordinates().ArtifactID, e.Name, e.New))
	}
	return out
}

func effective(t *testing.T, p *Plan, proj *pom.Project) string {
	t.Helper()
	v, ok := p.EffectiveVersion(proj)
	require.True(t, ok, "%s has no effective version", proj)
	return v.String()
}

func TestPropagate_Converges(t *testing.T) {
	var members []*pom.Project
	for i := range 6 {
		members = append(members, project("com.telenav.kivakit", fmt.Sprintf("m%d", i), "1.0.0"))
	}
	projects := pom.NewProjects(members...)
	req := Request{Families: family("kivakit", "1.0.0", "1.0.1")}

	plan, err := propagate(t, projects, req)
	require.NoError(t, err)

	assert.Len(t, plan.VersionEdits, len(members))
	for _, m := range members {
		assert.Equal(t, "1.0.1", effective(t, plan, m))
	}

	again, err := propagate(t, plan.ApplyTo(projects), req)
	require.NoError(t, err)
	assert.True(t, again.IsEmpty(), "a second run finds nothing to do")
}

func TestPropagate_MismatchPolicy(t *testing.T) {
	a := project("com.telenav.kivakit", "a", "1.0.0")
	b := project("com.telenav.kivakit", "b", "2.0.0")
	projects := pom.NewProjects(a, b)

	tests := []struct {
		outcome Outcome
		want    []string
	}{
		{outcome: CoerceToTarget, want: []string{"a 1.0.0 -> 1.0.1", "b 2.0.0 -> 1.0.1"}},
		{outcome: Bump, want: []string{"a 1.0.0 -> 1.0.1", "b 2.0.0 -> 2.0.1"}},
		{outcome: Skip, want: []string{"a 1.0.0 -> 1.0.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			plan, err := propagate(t, projects, Request{
				Families: family("kivakit", "1.0.0", "1.0.1"),
				Mismatch: Fixed(tt.outcome),
			})
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, versionEdits(plan)); diff != "" {
				t.Errorf("version edits mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("skip reports the mismatch", func(t *testing.T) {
		plan, err := propagate(t, projects, Request{Families: family("kivakit", "1.0.0", "1.0.1"), Mismatch: Fixed(Skip)})
		require.NoError(t, err)
		require.Len(t, plan.Skipped, 1)
		assert.Same(t, b, plan.Skipped[0].Project)
		assert.Equal(t, version.MustParse("2.0.0"), plan.Skipped[0].Actual)
	})

	t.Run("abort", func(t *testing.T) {
		_, err := propagate(t, projects, Request{Families: family("kivakit", "1.0.0", "1.0.1")})
		require.Error(t, err)
		assert.ErrorIs(t, err, errUtils.ErrVersionMismatch)
		assert.Contains(t, err.Error(), "com.telenav.kivakit:b:2.0.0")
		assert.Equal(t, errUtils.ExitCodeMismatch, errUtils.GetExitCode(err))
	})

	t.Run("policy sees the mismatch", func(t *testing.T) {
		var seen []Mismatch
		_, err := propagate(t, projects, Request{
			Families: family("kivakit", "1.0.0", "1.0.1"),
			Mismatch: MismatchPolicyFunc(func(m Mismatch) Outcome {
				seen = append(seen, m)
				return Skip
			}),
		})
		require.NoError(t, err)
		require.Len(t, seen, 1, "each mismatch is decided once")
		assert.Equal(t, graph.Family("kivakit"), seen[0].Family)
		assert.Equal(t, version.MustChange("1.0.0", "1.0.1"), seen[0].Expected)
	})
}

func TestPropagate_CascadesToInheritingChildren(t *testing.T) {
	parent := project("com.telenav.kivakit", "kivakit", "1.0.0", superpom(), pom.WithModules("core"))
	core := project("", "core", "", childOf(parent))
	projects := pom.NewProjects(parent, core)

	plan, err := propagate(t, projects, Request{
		Projects: map[*pom.Project]version.Version{parent: version.MustParse("1.1.0")},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"kivakit 1.0.0 -> 1.1.0"}, versionEdits(plan))
	assert.Equal(t, []string{"core 1.0.0 -> 1.1.0"}, parentEdits(plan))
	assert.Equal(t, "1.1.0", effective(t, plan, core))

	require.Len(t, plan.Families, 1)
	assert.Equal(t, graph.Family("kivakit"), plan.Families[0].Family)
	assert.True(t, plan.Families[0].Synthetic)

	applied := plan.ApplyTo(projects)
	moved, ok := applied.Get(pom.NewCoordinates("com.telenav.kivakit", "core", "1.1.0"))
	require.True(t, ok)
	assert.False(t, moved.HasOwnVersion())
}

func TestPropagate_PropertiesAndPruning(t *testing.T) {
	sp := project("com.telenav.kivakit", "superpom", "1.0.0", superpom(),
		pom.WithProperty("kivakit.version", "1.0.0"),
		pom.WithProperty("kivakit.prev.version", "0.9.0"),
		pom.WithProperty("lexakai.version", "3.0.0"),
		pom.WithProperty("kivakit.home", "${user.home}"),
	)
	leaf := project("com.telenav.kivakit", "leaf", "1.0.0", childOf(sp))
	projects := pom.NewProjects(sp, leaf)
	req := Request{Families: family("kivakit", "1.0.0", "1.0.1")}

	plan, err := propagate(t, projects, req)
	require.NoError(t, err)

	assert.Equal(t, []string{"superpom kivakit.prev.version=1.0.0", "superpom kivakit.version=1.0.1"}, propertyEdits(plan))
	assert.Equal(t, []string{"superpom 1.0.0 -> 1.0.1"}, versionEdits(plan))
	assert.Equal(t, []*pom.Project{leaf}, plan.VersionRemovals, "the leaf only repeats its parent's version")
	assert.Equal(t, "1.0.1", effective(t, plan, leaf))

	kept, err := propagate(t, projects, Request{Families: req.Families, KeepRedundantVersions: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"leaf 1.0.0 -> 1.0.1", "superpom 1.0.0 -> 1.0.1"}, versionEdits(kept))
	assert.Empty(t, kept.VersionRemovals)

	again, err := propagate(t, plan.ApplyTo(projects), req)
	require.NoError(t, err)
	assert.True(t, again.IsEmpty())
}

func TestPropagate_SuperpomBump(t *testing.T) {
	core := project("com.telenav.kivakit", "core", "1.0.0")
	sp := project("com.telenav.lexakai", "lexakai-superpom", "2.0.0", superpom(), pom.WithProperty("kivakit.version", "1.0.0"))
	projects := pom.NewProjects(core, sp)

	tests := []struct {
		policy SuperpomBumpPolicy
		want   []string
	}{
		{policy: BumpAcquiringNewFamilyFlavor, want: []string{"core 1.0.0 -> 1.1.0-SNAPSHOT", "lexakai-superpom 2.0.0 -> 2.0.1-SNAPSHOT"}},
		{policy: BumpWithoutChangingFlavor, want: []string{"core 1.0.0 -> 1.1.0-SNAPSHOT", "lexakai-superpom 2.0.0 -> 2.0.1"}},
		{policy: Ignore, want: []string{"core 1.0.0 -> 1.1.0-SNAPSHOT"}},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			plan, err := propagate(t, projects, Request{
				Families:     family("kivakit", "1.0.0", "1.1.0-SNAPSHOT"),
				SuperpomBump: tt.policy,
			})
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, versionEdits(plan)); diff != "" {
				t.Errorf("version edits mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, []string{"lexakai-superpom kivakit.version=1.1.0-SNAPSHOT"}, propertyEdits(plan))
		})
	}
}

func TestPropagate_MismatchedSuperpomIsBumped(t *testing.T) {
	sp := project("com.telenav.kivakit", "superpom", "0.5.0", superpom())
	core := project("com.telenav.kivakit", "core", "1.0.0")

	plan, err := propagate(t, pom.NewProjects(sp, core), Request{
		Families:     family("kivakit", "1.0.0", "1.0.1"),
		SuperpomBump: BumpAcquiringNewFamilyFlavor,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"core 1.0.0 -> 1.0.1", "superpom 0.5.0 -> 0.5.1"}, versionEdits(plan))
	assert.Empty(t, plan.Skipped)
}

func TestPropagate_PublishCheck(t *testing.T) {
	sp := project("com.telenav.lexakai", "superpom", "3.0.0", superpom())
	core := project("com.telenav.kivakit", "core", "1.0.0", childOf(sp))
	projects := pom.NewProjects(sp, core)

	t.Run("differs", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		checker := publish.NewMockChecker(ctrl)
		checker.EXPECT().Differs(gomock.Any(), sp).Return(true, nil).Times(1)

		plan, err := propagate(t, projects, Request{Families: family("kivakit", "1.0.0", "1.0.1"), Publish: checker})
		require.NoError(t, err)
		assert.Equal(t, []string{"core 1.0.0 -> 1.0.1", "superpom 3.0.0 -> 3.0.1"}, versionEdits(plan))
		assert.Equal(t, []string{"core 3.0.0 -> 3.0.1"}, parentEdits(plan))
	})

	t.Run("unchanged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		checker := publish.NewMockChecker(ctrl)
		checker.EXPECT().Differs(gomock.Any(), sp).Return(false, nil)

		plan, err := propagate(t, projects, Request{Families: family("kivakit", "1.0.0", "1.0.1"), Publish: checker})
		require.NoError(t, err)
		assert.Equal(t, []string{"core 1.0.0 -> 1.0.1"}, versionEdits(plan))
	})

	t.Run("error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		checker := publish.NewMockChecker(ctrl)
		checker.EXPECT().Differs(gomock.Any(), sp).Return(false, errors.New("connection refused"))

		_, err := propagate(t, projects, Request{Families: family("kivakit", "1.0.0", "1.0.1"), Publish: checker})
		assert.ErrorIs(t, err, errUtils.ErrPublishCheck)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestPropagate_InvalidRequests(t *testing.T) {
	core := project("com.telenav.kivakit", "core", "1.0.0")
	stranger := project("com.telenav.other", "stranger", "1.0.0")
	projects := pom.NewProjects(core)

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{name: "no targets", req: Request{}, want: errUtils.ErrNoTargets},
		{name: "unknown family", req: Request{Families: family("mesakit", "1.0.0", "1.0.1")}, want: errUtils.ErrInvalidFamilyTarget},
		{
			name: "foreign project",
			req:  Request{Projects: map[*pom.Project]version.Version{stranger: version.MustParse("2.0.0")}},
			want: errUtils.ErrInvalidProjectTarget,
		},
		{name: "round cap", req: Request{Families: family("kivakit", "1.0.0", "1.0.1"), MaxRounds: 1}, want: errUtils.ErrPropagationDiverged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := propagate(t, projects, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPropagate_NoOpProjectTarget(t *testing.T) {
	core := project("com.telenav.kivakit", "core", "1.0.0")

	plan, err := propagate(t, pom.NewProjects(core), Request{
		Projects: map[*pom.Project]version.Version{core: version.MustParse("1.0.0")},
	})
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
}

func TestPropagate_ProjectTargetDefinesFamily(t *testing.T) {
	parent := project("com.telenav.kivakit", "superpom", "3.0.0", superpom())
	a := project("com.telenav.kivakit", "a", "1.0.0")
	projects := pom.NewProjects(parent, a)
	targets := map[*pom.Project]version.Version{a: version.MustParse("1.0.1")}

	t.Run("abort", func(t *testing.T) {
		_, err := propagate(t, projects, Request{Projects: targets})
		assert.ErrorIs(t, err, errUtils.ErrVersionMismatch)
		assert.ErrorContains(t, err, "com.telenav.kivakit:superpom:3.0.0")
	})

	t.Run("skip", func(t *testing.T) {
		plan, err := propagate(t, projects, Request{Projects: targets, Mismatch: Fixed(Skip)})
		require.NoError(t, err)
		assert.Equal(t, []string{"a 1.0.0 -> 1.0.1"}, versionEdits(plan))
		require.Len(t, plan.Skipped, 1)
		assert.Same(t, parent, plan.Skipped[0].Project)
	})
}

func TestPropagate_FamilyTargetMatchesByValue(t *testing.T) {
	a := project("com.telenav.kivakit", "a", "1.0.0")
	b := project("com.telenav.kivakit", "b", "1.00")

	plan, err := propagate(t, pom.NewProjects(a, b), Request{Families: family("kivakit", "1.0", "1.0.1")})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a 1.0.0 -> 1.0.1", "b 1.00 -> 1.0.1"}, versionEdits(plan))
	assert.Empty(t, plan.Skipped)
}

func TestParsePolicies(t *testing.T) {
	o, err := ParseOutcome("")
	require.NoError(t, err)
	assert.Equal(t, Abort, o)

	o, err = ParseOutcome("Coerce")
	require.NoError(t, err)
	assert.Equal(t, CoerceToTarget, o)

	_, err = ParseOutcome("maybe")
	assert.ErrorIs(t, err, errUtils.ErrInvalidPolicy)

	p, err := ParseSuperpomBumpPolicy("keep-flavor")
	require.NoError(t, err)
	assert.Equal(t, BumpWithoutChangingFlavor, p)

	p, err = ParseSuperpomBumpPolicy("")
	require.NoError(t, err)
	assert.Equal(t, BumpAcquiringNewFamilyFlavor, p)

	_, err = ParseSuperpomBumpPolicy("sometimes")
	assert.ErrorIs(t, err, errUtils.ErrInvalidPolicy)
}
