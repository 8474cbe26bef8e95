package pyversion

import (
	"strconv"
	"strings"

	"github.com/adamamer20/pythonic-template/pkg/errors"
)

// DefaultKnown lists the release lines the template is prepared to support.
var DefaultKnown = []Version{
	{Major: 3, Minor: 10}, {Major: 3, Minor: 11}, {Major: 3, Minor: 12},
	{Major: 3, Minor: 13}, {Major: 3, Minor: 14},
}

// DefaultFloor is the oldest release line the template accepts.
var DefaultFloor = Version{Major: 3, Minor: 10}

// Derived holds every value computed from the minimum version.
type Derived struct {
	Min    Version
	Max    Version
	Matrix []Version
}

// Derive computes the supported range starting at min.
//
// min must be one of known and not below floor (a zero floor disables the
// check). known does not need to be sorted.
func Derive(min Version, known []Version, floor Version) (Derived, error) {
	if min.IsZero() {
		return Derived{}, errors.New(errors.ErrConfigInvalid, "python version is required")
	}

	sorted := Normalize(known)
	if len(sorted) == 0 {
		return Derived{}, errors.New(errors.ErrConfigInvalid, "known python versions list is empty")
	}

	if !floor.IsZero() && min.Less(floor) {
		return Derived{}, errors.Newf(errors.ErrConfigInvalid,
			"python %s is older than the oldest supported release %s", min, floor).
			WithDetail("min", min.String()).
			WithDetail("floor", floor.String())
	}

	start := -1
	for i, v := range sorted {
		if v == min {
			start = i
			break
		}
	}
	if start < 0 {
		return Derived{}, errors.Newf(errors.ErrConfigInvalid,
			"python %s is not one of the known versions %s", min, joinVersions(sorted)).
			WithDetail("min", min.String())
	}

	matrix := append([]Version(nil), sorted[start:]...)
	return Derived{
		Min:    min,
		Max:    matrix[len(matrix)-1],
		Matrix: matrix,
	}, nil
}

// Short returns the minimum version without separator, e.g. "312".
func (d Derived) Short() string {
	return d.Min.Short()
}

// MatrixLiteral renders the matrix as a flow array usable in YAML and JSON,
// e.g. ["3.12", "3.13"].
func (d Derived) MatrixLiteral() string {
	quoted := make([]string, len(d.Matrix))
	for i, v := range d.Matrix {
		quoted[i] = strconv.Quote(v.String())
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// Classifiers returns one trove classifier per matrix entry.
func (d Derived) Classifiers() []string {
	out := make([]string, len(d.Matrix))
	for i, v := range d.Matrix {
		out[i] = ClassifierPrefix + v.String()
	}
	return out
}

// ClassifierBlock formats the classifiers as TOML array items. The first line
// carries no indentation since it replaces a marker that already sits after
// indent; following lines are prefixed with indent and separated by newline.
func (d Derived) ClassifierBlock(indent, newline string) string {
	lines := make([]string, len(d.Matrix))
	for i, c := range d.Classifiers() {
		lines[i] = strconv.Quote(c) + ","
	}
	return strings.Join(lines, newline+indent)
}

func joinVersions(vs []Version) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
