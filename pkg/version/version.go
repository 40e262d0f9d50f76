// Package version parses descriptor versions and classifies changes between them.
//
// A version is dot separated numeric segments followed by an optional
// qualifier after the first '-': 1.2.0, 1.2.0-SNAPSHOT, 3.1-beta-2.
package version

import (
	"fmt"
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"

	errUtils "github.com/cloudposse/pomgraph/errors"
)

// SnapshotQualifier marks a development version.
const SnapshotQualifier = "SNAPSHOT"

// Flavor is the qualifier class of a version.
type Flavor int

const (
	Release Flavor = iota
	Snapshot
	Other
)

func (f Flavor) String() string {
	switch f {
	case Release:
		return "release"
	case Snapshot:
		return "snapshot"
	default:
		return "other"
	}
}

// Version is a parsed version. It is comparable by its declared text; use
// Equal for value equality. The zero value is invalid.
type Version struct {
	numbers   string
	qualifier string
}

func newVersion(segments []int, qualifier string) Version {
	parts := make([]string, len(segments))
	for i, n := range segments {
		parts[i] = strconv.Itoa(n)
	}
	return Version{numbers: strings.Join(parts, "."), qualifier: qualifier}
}

// Parse parses s, requiring at least one numeric segment.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	numbers, qualifier, _ := strings.Cut(s, "-")
	if numbers == "" {
		return Version{}, fmt.Errorf("%w: '%s'", errUtils.ErrInvalidVersion, s)
	}

	for _, part := range strings.Split(numbers, ".") {
		if !isDigits(part) {
			return Version{}, fmt.Errorf("%w: '%s' has a non-numeric segment '%s'", errUtils.ErrInvalidVersion, s, part)
		}
		if _, err := strconv.Atoi(part); err != nil {
			return Version{}, fmt.Errorf("%w: '%s': %w", errUtils.ErrInvalidVersion, s, err)
		}
	}
	// The segments keep their text so that rewritten descriptors show what was declared.
	return Version{numbers: numbers, qualifier: qualifier}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MustParse is Parse that panics; for constants and tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsValid reports whether v came from a successful Parse.
func (v Version) IsValid() bool { return v.numbers != "" }

// Segments returns the numeric segments.
func (v Version) Segments() []int {
	if v.numbers == "" {
		return nil
	}
	parts := strings.Split(v.numbers, ".")
	segments := make([]int, len(parts))
	for i, part := range parts {
		segments[i], _ = strconv.Atoi(part)
	}
	return segments
}

// Equal reports whether v and o name the same version: numeric segments
// compared by value with missing ones as zero, qualifiers compared exactly.
// 1.0, 1.0.0 and 1.00 are equal; == compares the declared text.
func (v Version) Equal(o Version) bool {
	return v.compareSegments(o) == 0
}

// Qualifier returns the text after the first '-'.
func (v Version) Qualifier() string { return v.qualifier }

// Flavor classifies the qualifier.
func (v Version) Flavor() Flavor {
	switch {
	case v.qualifier == "":
		return Release
	case strings.HasSuffix(strings.ToUpper(v.qualifier), SnapshotQualifier):
		return Snapshot
	default:
		return Other
	}
}

// IsPreRelease is true for snapshot and other-qualified versions.
func (v Version) IsPreRelease() bool { return v.Flavor() != Release }

func (v Version) String() string {
	if v.qualifier == "" {
		return v.numbers
	}
	return v.numbers + "-" + v.qualifier
}

// segmentAt returns segment i, 0 past the end.
func segmentAt(segments []int, i int) int {
	if i < len(segments) {
		return segments[i]
	}
	return 0
}

// Compare orders v against o: -1, 0 or 1.
func (v Version) Compare(o Version) int {
	a, errA := goversion.NewVersion(v.String())
	b, errB := goversion.NewVersion(o.String())
	if errA == nil && errB == nil {
		return a.Compare(b)
	}
	return v.compareSegments(o)
}

func (v Version) compareSegments(o Version) int {
	a, b := v.Segments(), o.Segments()
	for i := 0; i < max(len(a), len(b)); i++ {
		if d := segmentAt(a, i) - segmentAt(b, i); d != 0 {
			return sign(d)
		}
	}
	switch {
	case v.qualifier == o.qualifier:
		return 0
	case v.qualifier == "":
		return 1
	case o.qualifier == "":
		return -1
	}
	return sign(strings.Compare(v.qualifier, o.qualifier))
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// WithFlavor returns v converted to flavor f. Converting to Other keeps
// an existing qualifier and otherwise has no effect.
func (v Version) WithFlavor(f Flavor) Version {
	out := v
	switch f {
	case Release:
		out.qualifier = ""
	case Snapshot:
		if v.Flavor() != Snapshot {
			out.qualifier = SnapshotQualifier
		}
	}
	return out
}

// WithQualifier replaces the qualifier; "" makes a release.
func (v Version) WithQualifier(qualifier string) Version {
	out := v
	out.qualifier = qualifier
	return out
}

// Bump increments the segment named by m and zeroes the ones below it,
// padding missing segments with zero. None returns v unchanged.
// The qualifier is dropped; apply a flavor afterwards.
func (v Version) Bump(m Magnitude) Version {
	idx, ok := magnitudeSegment[m]
	if !ok {
		return v
	}
	current := v.Segments()
	segments := make([]int, max(len(current), idx+1))
	copy(segments, current)
	segments[idx]++
	for i := idx + 1; i < len(segments); i++ {
		segments[i] = 0
	}
	return newVersion(segments, "")
}
