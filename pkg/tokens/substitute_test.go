package tokens_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/adamamer20/pythonic-template/pkg/filesystem"
	"github.com/adamamer20/pythonic-template/pkg/testutil"
	"github.com/adamamer20/pythonic-template/pkg/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allTokens = []string{
	tokens.PyMin, tokens.PyMax, tokens.PyMatrix, tokens.PyShort, tokens.PyClassifiers, tokens.ReleaseDate,
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	return testutil.TempTree(t, files)
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	return testutil.ReadFile(t, root, rel)
}

func templateFiles() map[string]string {
	return map[string]string{
		".github/workflows/ci.yml": "jobs:\n  test:\n    strategy:\n      matrix:\n        python-version: __PY_MATRIX__\n" +
			"    steps:\n      - if: matrix.python-version == '__PY_MAX__'\n",
		"README.md":                     "Requires Python __PY_MIN__+\n",
		"pyproject.toml":                "requires-python = \">=__PY_MIN__\"\nclassifiers = [\n    __PY_CLASSIFIERS__\n]\n[tool.ruff]\ntarget-version = \"py__PY_SHORT__\"\n",
		"docs/development/changelog.md": "## [0.1.0] - __RELEASE_DATE__\n",
		"docs/index.md":                 "Nothing to replace here.\n",
	}
}

func TestApplySubstitutesAllTargets(t *testing.T) {
	root := writeProject(t, templateFiles())
	targets := []string{".github/workflows/ci.yml", "README.md", "pyproject.toml", "docs/development/changelog.md", "docs/index.md"}

	report := tokens.NewSubstituter(filesystem.NewOS(), scenarioTable(t), false).Apply(root, targets)

	assert.Equal(t, targets[:4], report.Changed)
	assert.Equal(t, []string{"docs/index.md"}, report.Unchanged)
	assert.Empty(t, report.Missing)
	assert.Empty(t, report.Failed)
	assert.False(t, report.HasUnresolved())

	for _, rel := range targets {
		content := readFile(t, root, rel)
		for _, tok := range allTokens {
			assert.NotContains(t, content, tok, "%s still contains %s", rel, tok)
		}
	}

	pyproject := readFile(t, root, "pyproject.toml")
	assert.Contains(t, pyproject, `requires-python = ">=3.12"`)
	assert.Contains(t, pyproject, `target-version = "py312"`)
	assert.Contains(t, pyproject, `"Programming Language :: Python :: 3.12",`)
	assert.Contains(t, pyproject, `"Programming Language :: Python :: 3.13",`)
	assert.Contains(t, readFile(t, root, "README.md"), "Python 3.12+")
}

func TestApplyIsIdempotent(t *testing.T) {
	root := writeProject(t, templateFiles())
	targets := []string{".github/workflows/ci.yml", "README.md", "pyproject.toml"}
	sub := tokens.NewSubstituter(filesystem.NewOS(), scenarioTable(t), false)

	first := sub.Apply(root, targets)
	require.Len(t, first.Changed, 3)

	// Push mtimes into the past so a rewrite would be visible.
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	before := make(map[string]string)
	for _, rel := range targets {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.Chtimes(full, past, past))
		before[rel] = readFile(t, root, rel)
	}

	second := sub.Apply(root, targets)
	assert.Empty(t, second.Changed)
	assert.Equal(t, targets, second.Unchanged)

	for _, rel := range targets {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
		require.NoError(t, err)
		assert.True(t, info.ModTime().Equal(past), "%s must not be rewritten", rel)
		assert.Equal(t, before[rel], readFile(t, root, rel))
	}
}

func TestApplyContinuesPastMissingFile(t *testing.T) {
	root := writeProject(t, templateFiles())
	targets := []string{"README.md", ".github/workflows/render-paper.yml", "pyproject.toml"}

	report := tokens.NewSubstituter(filesystem.NewOS(), scenarioTable(t), false).Apply(root, targets)

	assert.Equal(t, []string{".github/workflows/render-paper.yml"}, report.Missing)
	assert.Equal(t, []string{"README.md", "pyproject.toml"}, report.Changed)
	for _, rel := range report.Changed {
		content := readFile(t, root, rel)
		for _, tok := range allTokens {
			assert.NotContains(t, content, tok)
		}
	}
}

func TestApplyReportsUnresolvedTokens(t *testing.T) {
	root := writeProject(t, map[string]string{
		"README.md": "Python __PY_MIN__+ and __PY_FUTURE__\n",
	})

	report := tokens.NewSubstituter(filesystem.NewOS(), scenarioTable(t), false).Apply(root, []string{"README.md"})

	assert.Equal(t, []string{"README.md"}, report.Changed)
	assert.Equal(t, map[string][]string{"README.md": {"__PY_FUTURE__"}}, report.Unresolved)
	assert.Equal(t, "Python 3.12+ and __PY_FUTURE__\n", readFile(t, root, "README.md"))
}

func TestApplyDryRunDoesNotWrite(t *testing.T) {
	mem := testutil.NewMemoryFSWith("/project", templateFiles())

	report := tokens.NewSubstituter(mem, scenarioTable(t), true).Apply("/project", []string{"README.md", "pyproject.toml"})

	assert.Equal(t, []string{"README.md", "pyproject.toml"}, report.Changed)
	assert.Equal(t, 0, mem.WriteCount())
	readme, _ := mem.Content("/project/README.md")
	assert.Equal(t, "Requires Python __PY_MIN__+\n", readme)
}

func TestApplyInMemoryWritesOnlyChangedFiles(t *testing.T) {
	mem := testutil.NewMemoryFSWith("/project", templateFiles())
	sub := tokens.NewSubstituter(mem, scenarioTable(t), false)

	first := sub.Apply("/project", []string{"README.md", "docs/index.md"})
	assert.Equal(t, []string{"README.md"}, first.Changed)
	assert.Equal(t, 1, mem.WriteCount())

	second := sub.Apply("/project", []string{"README.md", "docs/index.md"})
	assert.Empty(t, second.Changed)
	assert.Equal(t, 1, mem.WriteCount())
}

type failingWriteFS struct {
	filesystem.FS
}

func (failingWriteFS) WriteFile(string, []byte, fs.FileMode) error {
	return fs.ErrPermission
}

func TestApplyRecordsWriteFailures(t *testing.T) {
	root := writeProject(t, templateFiles())

	report := tokens.NewSubstituter(failingWriteFS{filesystem.NewOS()}, scenarioTable(t), false).
		Apply(root, []string{"README.md", "docs/index.md"})

	require.Contains(t, report.Failed, "README.md")
	assert.True(t, errors.IsErrorCode(report.Failed["README.md"], errors.ErrFileWrite))
	assert.Equal(t, 0, errors.ExitCode(report.Failed["README.md"]))
	assert.Equal(t, []string{"docs/index.md"}, report.Unchanged)
	assert.Empty(t, report.Changed)
}

func TestApplyDirectoryTarget(t *testing.T) {
	root := writeProject(t, map[string]string{"docs/index.md": "x"})

	report := tokens.NewSubstituter(filesystem.NewOS(), scenarioTable(t), false).Apply(root, []string{"docs"})

	assert.Contains(t, report.Failed, "docs")
}
