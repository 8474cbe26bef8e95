// Package pyversion turns the minimum Python version chosen at generation time
// into the derived values embedded in the generated project: the supported
// range, the CI matrix, the short tool-target form and the trove classifiers.
package pyversion

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/adamamer20/pythonic-template/pkg/errors"
)

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)$`)

// ClassifierPrefix is the trove classifier prefix for a Python minor release.
const ClassifierPrefix = "Programming Language :: Python :: "

// Version is a Python release line in major.minor form.
type Version struct {
	Major int
	Minor int
}

// Parse parses a "major.minor" string such as "3.12".
func Parse(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Version{}, errors.Newf(errors.ErrConfigInvalid,
			"python version %q is not in major.minor form", s).
			WithDetail("value", s)
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	return Version{Major: major, Minor: minor}, nil
}

// MustParse is like Parse but panics on malformed input. Intended for constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseList parses every entry, sorts ascending and drops duplicates.
func ParseList(values []string) ([]Version, error) {
	out := make([]Version, 0, len(values))
	for _, s := range values {
		v, err := Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return Normalize(out), nil
}

// Normalize returns a sorted copy of versions without duplicates.
func Normalize(versions []Version) []Version {
	out := append([]Version(nil), versions...)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	uniq := out[:0]
	for i, v := range out {
		if i > 0 && v == out[i-1] {
			continue
		}
		uniq = append(uniq, v)
	}
	return uniq
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Short returns the version without separator, e.g. "312".
func (v Version) Short() string {
	return fmt.Sprintf("%d%d", v.Major, v.Minor)
}

// IsZero reports whether v was never set.
func (v Version) IsZero() bool {
	return v.Major == 0 && v.Minor == 0
}

// Compare returns -1, 0 or +1.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		if v.Major < o.Major {
			return -1
		}
		return 1
	case v.Minor != o.Minor:
		if v.Minor < o.Minor {
			return -1
		}
		return 1
	}
	return 0
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
