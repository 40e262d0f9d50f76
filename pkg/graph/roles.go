package graph

import (
	"strings"

	"github.com/cloudposse/pomgraph/pkg/pom"
)

// Role is a structural role a project plays in the forest.
type Role uint8

const (
	RoleParent Role = 1 << iota
	RoleBillOfMaterials
	RoleConfig
	RoleConfigRoot
	RoleLeaf
	RoleUnknown
)

var roleNames = []struct {
	role Role
	name string
}{
	{RoleParent, "parent"},
	{RoleBillOfMaterials, "bom"},
	{RoleConfig, "config"},
	{RoleConfigRoot, "config-root"},
	{RoleLeaf, "leaf"},
	{RoleUnknown, "unknown"},
}

// Roles is a set of roles.
type Roles uint8

// Has reports whether every role in r is present.
func (rs Roles) Has(r Role) bool { return Roles(r)&rs == Roles(r) && r != 0 }

// With adds r.
func (rs Roles) With(r Role) Roles { return rs | Roles(r) }

// IsSuperpom reports a Config or ConfigRoot project.
func (rs Roles) IsSuperpom() bool { return rs.Has(RoleConfig) || rs.Has(RoleConfigRoot) }

// List returns the roles in declaration order.
func (rs Roles) List() []Role {
	var out []Role
	for _, rn := range roleNames {
		if rs.Has(rn.role) {
			out = append(out, rn.role)
		}
	}
	return out
}

func (r Role) String() string {
	for _, rn := range roleNames {
		if rn.role == r {
			return rn.name
		}
	}
	return "role(?)"
}

func (rs Roles) String() string {
	names := make([]string, 0, 6)
	for _, r := range rs.List() {
		names = append(names, r.String())
	}
	return strings.Join(names, ",")
}

// ParseRole accepts the names printed by Role.String.
func ParseRole(s string) (Role, bool) {
	for _, rn := range roleNames {
		if strings.EqualFold(rn.name, s) {
			return rn.role, true
		}
	}
	return 0, false
}

// classify applies the role rules in order.
func classify(p *pom.Project, isParent bool) Roles {
	var rs Roles
	switch {
	case p.IsPomPackaged() && len(p.Modules()) > 0:
		rs = rs.With(RoleBillOfMaterials)
	case p.IsPomPackaged() && !p.HasParent():
		rs = rs.With(RoleConfigRoot)
	case p.IsPomPackaged():
		rs = rs.With(RoleConfig)
	default:
		rs = rs.With(RoleLeaf)
	}
	if isParent {
		rs = rs.With(RoleParent)
	}
	// BOM parents also supply configuration.
	if rs.Has(RoleParent) && rs.Has(RoleBillOfMaterials) {
		if p.HasParent() {
			rs = rs.With(RoleConfig)
		} else {
			rs = rs.With(RoleConfigRoot)
		}
	}
	return rs
}

// Family groups projects that are versioned together.
type Family string

// FamilyFunc derives a project's family.
type FamilyFunc func(p *pom.Project) Family

// DefaultFamily is the trailing dot segment of the group id without any
// trailing "-suffix": com.telenav.kivakit-extensions is "kivakit".
func DefaultFamily(p *pom.Project) Family {
	return FamilyOfGroup(p.EffectiveCoordinates().GroupID)
}

// FamilyOfGroup applies the DefaultFamily rule to a group id.
func FamilyOfGroup(group pom.GroupID) Family {
	s := string(group)
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "-"); i > 0 {
		s = s[:i]
	}
	return Family(s)
}
