package pom

import (
	"fmt"
	"strings"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/property"
)

// ArtifactIdentity is a (group, artifact) pair without a version.
type ArtifactIdentity struct {
	GroupID    GroupID    `json:"groupId" yaml:"groupId"`
	ArtifactID ArtifactID `json:"artifactId" yaml:"artifactId"`
}

func (a ArtifactIdentity) String() string {
	return string(a.GroupID) + ":" + string(a.ArtifactID)
}

// ParseIdentity parses "group:artifact".
func ParseIdentity(s string) (ArtifactIdentity, error) {
	group, artifact, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || group == "" || artifact == "" || strings.Contains(artifact, ":") {
		return ArtifactIdentity{}, fmt.Errorf("%w: '%s' is not group:artifact", errUtils.ErrInvalidCoordinates, s)
	}
	return ArtifactIdentity{GroupID: GroupID(group), ArtifactID: ArtifactID(artifact)}, nil
}

// Coordinates identify one version of one artifact.
type Coordinates struct {
	GroupID    GroupID    `json:"groupId" yaml:"groupId"`
	ArtifactID ArtifactID `json:"artifactId" yaml:"artifactId"`
	Version    Version    `json:"version,omitempty" yaml:"version,omitempty"`
}

// NewCoordinates builds coordinates from plain strings.
func NewCoordinates(group, artifact, version string) Coordinates {
	return Coordinates{GroupID: GroupID(group), ArtifactID: ArtifactID(artifact), Version: Version(version)}
}

// ParseCoordinates parses "group:artifact" or "group:artifact:version".
// A missing version is the placeholder token.
func ParseCoordinates(s string) (Coordinates, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	switch {
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return NewCoordinates(parts[0], parts[1], PlaceholderToken), nil
	case len(parts) == 3 && parts[0] != "" && parts[1] != "" && parts[2] != "":
		return NewCoordinates(parts[0], parts[1], parts[2]), nil
	}
	return Coordinates{}, fmt.Errorf("%w: '%s' is not group:artifact[:version]", errUtils.ErrInvalidCoordinates, s)
}

// Identity drops the version.
func (c Coordinates) Identity() ArtifactIdentity {
	return ArtifactIdentity{GroupID: c.GroupID, ArtifactID: c.ArtifactID}
}

// SameArtifact compares group and artifact only.
func (c Coordinates) SameArtifact(o Coordinates) bool {
	return c.Identity() == o.Identity()
}

// IsResolved reports whether all three fields are concrete.
func (c Coordinates) IsResolved() bool {
	return c.GroupID.IsResolved() && c.ArtifactID.IsResolved() && c.Version.IsResolved()
}

// Resolve expands references in every field.
func (c Coordinates) Resolve(r property.Resolver) Coordinates {
	return Coordinates{
		GroupID:    c.GroupID.Resolve(r),
		ArtifactID: c.ArtifactID.Resolve(r),
		Version:    c.Version.Resolve(r),
	}
}

// WithVersion returns a copy carrying v.
func (c Coordinates) WithVersion(v Version) Coordinates {
	c.Version = v
	return c
}

func (c Coordinates) String() string {
	if c.Version.IsPlaceholder() {
		return c.Identity().String()
	}
	return c.Identity().String() + ":" + string(c.Version)
}
