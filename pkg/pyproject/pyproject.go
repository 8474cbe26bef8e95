// Package pyproject reads and updates the requires-python constraint of a
// generated project's pyproject.toml.
package pyproject

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/adamamer20/pythonic-template/pkg/filesystem"
	"github.com/adamamer20/pythonic-template/pkg/logging"
	"github.com/adamamer20/pythonic-template/pkg/pyversion"
	"github.com/pelletier/go-toml/v2"
)

// FileName is the project metadata file.
const FileName = "pyproject.toml"

// DefaultRequiresPython applies when the project declares no constraint.
const DefaultRequiresPython = ">=3.10"

var (
	lowerBound     = regexp.MustCompile(`>=?\s*(\d+)\.(\d+)`)
	upperExclusive = regexp.MustCompile(`<\s*(\d+)\.(\d+)`)
	upperInclusive = regexp.MustCompile(`<=\s*(\d+)\.(\d+)`)
	tableHeader    = regexp.MustCompile(`^\s*\[\[?([^\[\]]+)\]\]?\s*(#.*)?$`)
	requiresLine   = regexp.MustCompile(`^(\s*requires-python\s*=\s*)(?:"[^"]*"|'[^']*')(.*)$`)
)

// Range is the span of minor versions a requires-python constraint admits.
type Range struct {
	Min pyversion.Version `json:"min"`
	Max pyversion.Version `json:"max"`
}

type document struct {
	Project struct {
		RequiresPython string `toml:"requires-python"`
	} `toml:"project"`
}

// ParseRange turns a constraint such as ">=3.10,<3.13" into its minor range
// (3.10 to 3.12). A missing lower bound means 3.10; a missing upper bound,
// or one on a new major such as <4.0, collapses the range onto the lower bound.
func ParseRange(spec string) (Range, error) {
	r := Range{Min: pyversion.DefaultFloor}
	if m := lowerBound.FindStringSubmatch(spec); m != nil {
		r.Min = version(m[1], m[2])
	}
	r.Max = r.Min

	if m := upperInclusive.FindStringSubmatch(spec); m != nil {
		r.Max = version(m[1], m[2])
	} else if m := upperExclusive.FindStringSubmatch(spec); m != nil {
		// a major-only bound like <4.0 names no last minor; keep Max at Min
		if upper := version(m[1], m[2]); upper.Minor > 0 {
			r.Max = pyversion.Version{Major: upper.Major, Minor: upper.Minor - 1}
		}
	}

	if r.Max.Less(r.Min) {
		return Range{}, errors.Newf(errors.ErrInvalidInput,
			"requires-python %q admits no version", spec)
	}
	return r, nil
}

func version(major, minor string) pyversion.Version {
	// the patterns only capture digits
	ma, _ := strconv.Atoi(major)
	mi, _ := strconv.Atoi(minor)
	return pyversion.Version{Major: ma, Minor: mi}
}

// ReadRequiresPython returns the project's requires-python value, or
// DefaultRequiresPython when it is not declared.
func ReadRequiresPython(fsys filesystem.FS, path string) (string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileNotFound, "cannot read %s", path)
	}
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "", errors.Wrapf(err, errors.ErrTemplateInvalid, "invalid TOML in %s", path)
	}
	if doc.Project.RequiresPython == "" {
		return DefaultRequiresPython, nil
	}
	return doc.Project.RequiresPython, nil
}

// ReadRange parses the requires-python range of the file at path.
func ReadRange(fsys filesystem.FS, path string) (Range, error) {
	spec, err := ReadRequiresPython(fsys, path)
	if err != nil {
		return Range{}, err
	}
	return ParseRange(spec)
}

// BumpSpec moves the lower bound of spec to to. A spec without a ">=" bound
// is replaced entirely.
func BumpSpec(spec string, to pyversion.Version) string {
	bound := ">=" + to.String()
	if !strings.Contains(spec, ">=") {
		return bound
	}
	return lowerBound.ReplaceAllLiteralString(spec, bound)
}

// Bump rewrites requires-python in the file at path so that its lower bound
// is to. Only that line changes; the rest of the file is kept byte for byte.
// It returns the old and new constraint.
func Bump(fsys filesystem.FS, path string, to pyversion.Version) (string, string, error) {
	logger := logging.GetLogger("pyproject")

	old, err := ReadRequiresPython(fsys, path)
	if err != nil {
		return "", "", err
	}
	info, err := fsys.Stat(path)
	if err != nil {
		return "", "", errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return "", "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path)
	}

	updated := BumpSpec(old, to)
	content := setRequiresPython(string(data), updated)

	// the rewrite must still parse to the intended value
	var doc document
	if err := toml.Unmarshal([]byte(content), &doc); err != nil || doc.Project.RequiresPython != updated {
		return "", "", errors.Newf(errors.ErrInternal, "rewriting requires-python in %s produced an unexpected document", path)
	}

	if content != string(data) {
		if err := fsys.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
			return "", "", errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
		}
	}
	logger.Info().Str("old", old).Str("new", updated).Msg("Updated requires-python")
	return old, updated, nil
}

// setRequiresPython replaces or inserts the requires-python key of the
// [project] table.
func setRequiresPython(content, spec string) string {
	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}
	lines := strings.Split(content, newline)
	value := strconv.Quote(spec)

	projectHeader := -1
	table := ""
	for i, line := range lines {
		if m := tableHeader.FindStringSubmatch(line); m != nil {
			table = strings.TrimSpace(m[1])
			if table == "project" {
				projectHeader = i
			}
			continue
		}
		if table != "project" {
			continue
		}
		if m := requiresLine.FindStringSubmatch(line); m != nil {
			lines[i] = m[1] + value + m[2]
			return strings.Join(lines, newline)
		}
	}

	entry := "requires-python = " + value
	if projectHeader >= 0 {
		lines = append(lines[:projectHeader+1], append([]string{entry}, lines[projectHeader+1:]...)...)
		return strings.Join(lines, newline)
	}

	out := strings.TrimRight(content, "\r\n")
	if out != "" {
		out += newline + newline
	}
	return out + "[project]" + newline + entry + newline
}
