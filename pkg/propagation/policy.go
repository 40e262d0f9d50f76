package propagation

import (
	"fmt"
	"strings"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/graph"
	"github.com/cloudposse/pomgraph/pkg/pom"
	"github.com/cloudposse/pomgraph/pkg/version"
)

// SuperpomBumpPolicy decides whether a superpom whose content changes gets a
// new version of its own, and with which flavor.
type SuperpomBumpPolicy int

const (
	Ignore SuperpomBumpPolicy = iota
	BumpAcquiringNewFamilyFlavor
	BumpWithoutChangingFlavor
)

var superpomBumpNames = map[SuperpomBumpPolicy]string{
	Ignore:                       "ignore",
	BumpAcquiringNewFamilyFlavor: "acquire-flavor",
	BumpWithoutChangingFlavor:    "keep-flavor",
}

func (p SuperpomBumpPolicy) String() string {
	if name, ok := superpomBumpNames[p]; ok {
		return name
	}
	return fmt.Sprintf("superpom-bump(%d)", int(p))
}

// ParseSuperpomBumpPolicy accepts ignore, acquire-flavor and keep-flavor.
// An empty string is acquire-flavor.
func ParseSuperpomBumpPolicy(s string) (SuperpomBumpPolicy, error) {
	if strings.TrimSpace(s) == "" {
		return BumpAcquiringNewFamilyFlavor, nil
	}
	for p, name := range superpomBumpNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return Ignore, fmt.Errorf("%w: superpom bump '%s' (expected ignore, acquire-flavor or keep-flavor)", errUtils.ErrInvalidPolicy, s)
}

// bump computes a Dot bump of current. newFlavor is the flavor of the change
// that caused it.
func (p SuperpomBumpPolicy) bump(current version.Version, newFlavor version.Version) (version.Version, bool) {
	switch p {
	case BumpAcquiringNewFamilyFlavor:
		return current.Bump(version.Dot).WithQualifier(newFlavor.Qualifier()), true
	case BumpWithoutChangingFlavor:
		return current.Bump(version.Dot).WithQualifier(current.Qualifier()), true
	}
	return current, false
}

// Outcome is what happens to a mismatch.
type Outcome int

const (
	Skip Outcome = iota
	CoerceToTarget
	Bump
	Abort
)

var outcomeNames = map[Outcome]string{
	Skip:           "skip",
	CoerceToTarget: "coerce",
	Bump:           "bump",
	Abort:          "abort",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// ParseOutcome accepts skip, coerce, bump and abort. An empty string is abort.
func ParseOutcome(s string) (Outcome, error) {
	if strings.TrimSpace(s) == "" {
		return Abort, nil
	}
	for o, name := range outcomeNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return o, nil
		}
	}
	return Abort, fmt.Errorf("%w: mismatch outcome '%s' (expected skip, coerce, bump or abort)", errUtils.ErrInvalidPolicy, s)
}

// Mismatch is a family member found at a version other than the one the
// family change expects.
type Mismatch struct {
	Project  *pom.Project
	Family   graph.Family
	Expected version.Change
	Actual   version.Version
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s is at %s, expected %s for family %s", m.Project, m.Actual, m.Expected.Old, m.Family)
}

// MismatchPolicy decides each mismatch left after the automatic fixes.
type MismatchPolicy interface {
	Decide(m Mismatch) Outcome
}

// MismatchPolicyFunc adapts a function to MismatchPolicy.
type MismatchPolicyFunc func(m Mismatch) Outcome

func (f MismatchPolicyFunc) Decide(m Mismatch) Outcome { return f(m) }

// Fixed returns the same outcome for every mismatch.
func Fixed(o Outcome) MismatchPolicy {
	return MismatchPolicyFunc(func(Mismatch) Outcome { return o })
}
