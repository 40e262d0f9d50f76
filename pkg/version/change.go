package version

import "fmt"

// Magnitude names the most significant segment a change touches.
type Magnitude int

const (
	None Magnitude = iota
	Dot
	Minor
	Major
)

var magnitudeNames = map[Magnitude]string{
	None:  "none",
	Dot:   "dot",
	Minor: "minor",
	Major: "major",
}

var magnitudeSegment = map[Magnitude]int{
	Major: 0,
	Minor: 1,
	Dot:   2,
}

func (m Magnitude) String() string {
	if name, ok := magnitudeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("magnitude(%d)", int(m))
}

// FlavorChange describes how the qualifier class moves.
type FlavorChange int

const (
	Unchanged FlavorChange = iota
	ToSnapshot
	ToRelease
	ToOpposite
)

var flavorChangeNames = map[FlavorChange]string{
	Unchanged:  "unchanged",
	ToSnapshot: "to-snapshot",
	ToRelease:  "to-release",
	ToOpposite: "to-opposite",
}

func (f FlavorChange) String() string {
	if name, ok := flavorChangeNames[f]; ok {
		return name
	}
	return fmt.Sprintf("flavor-change(%d)", int(f))
}

// Apply converts v as described by f. ToOpposite turns a release into a
// snapshot and anything else into a release.
func (f FlavorChange) Apply(v Version) Version {
	switch f {
	case ToSnapshot:
		return v.WithFlavor(Snapshot)
	case ToRelease:
		return v.WithFlavor(Release)
	case ToOpposite:
		if v.Flavor() == Release {
			return v.WithFlavor(Snapshot)
		}
		return v.WithFlavor(Release)
	}
	return v
}

// Change is a move from Old to New.
type Change struct {
	Old Version `json:"old" yaml:"old"`
	New Version `json:"new" yaml:"new"`
}

// NewChange parses both ends.
func NewChange(oldVersion, newVersion string) (Change, error) {
	o, err := Parse(oldVersion)
	if err != nil {
		return Change{}, err
	}
	n, err := Parse(newVersion)
	if err != nil {
		return Change{}, err
	}
	return Change{Old: o, New: n}, nil
}

// MustChange is NewChange that panics.
func MustChange(oldVersion, newVersion string) Change {
	c, err := NewChange(oldVersion, newVersion)
	if err != nil {
		panic(err)
	}
	return c
}

// IsNoOp reports ends that name the same version.
func (c Change) IsNoOp() bool { return c.Old.Equal(c.New) }

// Magnitude is the first numeric segment that differs.
func (c Change) Magnitude() Magnitude {
	a, b := c.Old.Segments(), c.New.Segments()
	for i := 0; i < max(len(a), len(b)); i++ {
		if segmentAt(a, i) == segmentAt(b, i) {
			continue
		}
		switch i {
		case 0:
			return Major
		case 1:
			return Minor
		default:
			return Dot
		}
	}
	return None
}

// FlavorChange classifies the qualifier move.
func (c Change) FlavorChange() FlavorChange {
	oldFlavor, newFlavor := c.Old.Flavor(), c.New.Flavor()
	switch {
	case oldFlavor == newFlavor:
		return Unchanged
	case newFlavor == Snapshot:
		return ToSnapshot
	case newFlavor == Release:
		return ToRelease
	}
	return ToOpposite
}

// IsDowngrade reports New ordering before Old. Leaving a pre-release for
// a release is never a downgrade.
func (c Change) IsDowngrade() bool {
	if c.Old.IsPreRelease() && c.New.Flavor() == Release {
		return false
	}
	return c.New.Compare(c.Old) < 0
}

func (c Change) String() string {
	return c.Old.String() + " -> " + c.New.String()
}

// MarshalText renders the version string.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses a version string.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
