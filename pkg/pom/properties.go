package pom

import "github.com/cloudposse/pomgraph/pkg/property"

// Canonical names answered by CoordinatesResolver.
const (
	PropertyGroupID          = "project.groupId"
	PropertyArtifactID       = "project.artifactId"
	PropertyVersion          = "project.version"
	PropertyPackaging        = "project.packaging"
	PropertyParentGroupID    = "project.parent.groupId"
	PropertyParentArtifactID = "project.parent.artifactId"
	PropertyParentVersion    = "project.parent.version"
)

var legacyAliases = map[string]string{
	"pom.groupId":           PropertyGroupID,
	"pom.artifactId":        PropertyArtifactID,
	"pom.version":           PropertyVersion,
	"pom.packaging":         PropertyPackaging,
	"parent.groupId":        PropertyParentGroupID,
	"parent.artifactId":     PropertyParentArtifactID,
	"parent.version":        PropertyParentVersion,
	"pom.parent.groupId":    PropertyParentGroupID,
	"pom.parent.artifactId": PropertyParentArtifactID,
	"pom.parent.version":    PropertyParentVersion,
}

// CoordinatesResolver answers project.* and project.parent.* names from p's
// declared coordinates. An inherited group or version falls back to the parent's.
func CoordinatesResolver(p *Project) property.Resolver {
	values := make(map[string]string, 7)
	set := func(name string, v string) {
		if v != "" && v != PlaceholderToken {
			values[name] = v
		}
	}

	c := p.EffectiveCoordinates()
	set(PropertyGroupID, string(c.GroupID))
	set(PropertyArtifactID, string(c.ArtifactID))
	set(PropertyVersion, string(c.Version))
	set(PropertyPackaging, string(p.Packaging()))
	if parent, ok := p.Parent(); ok {
		set(PropertyParentGroupID, string(parent.GroupID))
		set(PropertyParentArtifactID, string(parent.ArtifactID))
		set(PropertyParentVersion, string(parent.Version))
	}

	m := property.Map(values)
	return property.ResolverFunc(func(name string) (string, bool) {
		if canonical, ok := legacyAliases[name]; ok {
			name = canonical
		}
		return m.Resolve(name)
	})
}
