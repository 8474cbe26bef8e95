// Package targets resolves the ordered list of generated files that carry
// marker tokens.
package targets

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/adamamer20/pythonic-template/pkg/logging"
	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPaths are the template files known to embed marker tokens, relative
// to the generated project root. render-paper.yml only exists for paper
// projects.
var DefaultPaths = []string{
	".github/workflows/ci.yml",
	".github/workflows/docs.yml",
	".github/workflows/publish.yml",
	".github/workflows/render-paper.yml",
	"README.md",
	"pyproject.toml",
	"docs/development/changelog.md",
}

// textExtensions restricts substitution to text formats.
var textExtensions = map[string]bool{
	".yml":  true,
	".yaml": true,
	".md":   true,
	".toml": true,
}

// IsText reports whether rel has an extension eligible for substitution.
func IsText(rel string) bool {
	return textExtensions[strings.ToLower(path.Ext(rel))]
}

// Resolve returns the ordered, de-duplicated target list for root.
//
// paths are taken literally (DefaultPaths when empty) and may not exist;
// extra are doublestar patterns expanded against the files present in root.
// Entries with non-text extensions are dropped.
func Resolve(root string, paths, extra []string) ([]string, error) {
	logger := logging.GetLogger("targets")

	if len(paths) == 0 {
		paths = DefaultPaths
	}

	seen := make(map[string]bool)
	var out []string
	add := func(rel string) {
		if seen[rel] {
			return
		}
		seen[rel] = true
		if !IsText(rel) {
			logger.Debug().Str("path", rel).Msg("Skipping non-text target")
			return
		}
		out = append(out, rel)
	}

	for _, p := range paths {
		rel, err := clean(p)
		if err != nil {
			return nil, err
		}
		add(rel)
	}

	if len(extra) == 0 {
		return out, nil
	}

	fsys := os.DirFS(root)
	for _, pattern := range extra {
		pattern = filepath.ToSlash(pattern)
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Newf(errors.ErrConfigInvalid, "invalid target pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to expand target pattern %q", pattern)
		}
		sort.Strings(matches)
		logger.Debug().Str("pattern", pattern).Int("matches", len(matches)).Msg("Expanded target pattern")
		for _, m := range matches {
			add(m)
		}
	}

	return out, nil
}

func clean(p string) (string, error) {
	rel := path.Clean(filepath.ToSlash(p))
	if path.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, "../") || rel == "." {
		return "", errors.Newf(errors.ErrConfigInvalid, "target %q must be a file inside the project", p)
	}
	return rel, nil
}
