package pyproject

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/adamamer20/pythonic-template/pkg/filesystem"
	"github.com/adamamer20/pythonic-template/pkg/pyversion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		spec     string
		min, max string
	}{
		{">=3.10,<3.13", "3.10", "3.12"},
		{">=3.12", "3.12", "3.12"},
		{">= 3.11, < 3.14", "3.11", "3.13"},
		{">=3.10,<=3.13", "3.10", "3.13"},
		{"<3.13", "3.10", "3.12"},
		{"~=3.11", "3.10", "3.10"},
		{">=3.10,<4.0", "3.10", "3.10"},
		{"<4.0", "3.10", "3.10"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			r, err := ParseRange(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.min, r.Min.String())
			assert.Equal(t, tt.max, r.Max.String())
		})
	}
}

func TestParseRangeEmpty(t *testing.T) {
	_, err := ParseRange(">=3.12,<3.12")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRangeJSON(t *testing.T) {
	r, err := ParseRange(">=3.10,<3.13")
	require.NoError(t, err)
	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"min": "3.10", "max": "3.12"}`, string(out))
}

func TestBumpSpec(t *testing.T) {
	to := pyversion.MustParse("3.12")
	assert.Equal(t, ">=3.12", BumpSpec(">=3.10", to))
	assert.Equal(t, ">=3.12,<3.14", BumpSpec(">=3.10,<3.14", to))
	assert.Equal(t, ">=3.12", BumpSpec("~=3.10", to))
	assert.Equal(t, ">=3.12", BumpSpec("", to))
}

func writePyproject(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadRange(t *testing.T) {
	fsys := filesystem.NewOS()

	path := writePyproject(t, "[project]\nname = \"demo\"\nrequires-python = \">=3.11,<3.14\"\n")
	r, err := ReadRange(fsys, path)
	require.NoError(t, err)
	assert.Equal(t, Range{Min: pyversion.MustParse("3.11"), Max: pyversion.MustParse("3.13")}, r)

	path = writePyproject(t, "[project]\nname = \"demo\"\n")
	spec, err := ReadRequiresPython(fsys, path)
	require.NoError(t, err)
	assert.Equal(t, DefaultRequiresPython, spec)
}

func TestReadErrors(t *testing.T) {
	fsys := filesystem.NewOS()

	_, err := ReadRequiresPython(fsys, filepath.Join(t.TempDir(), FileName))
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))

	_, err = ReadRequiresPython(fsys, writePyproject(t, "[project\nname="))
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateInvalid))
}

func TestBumpPreservesFormatting(t *testing.T) {
	original := `[build-system]
requires = ["hatchling"]

[project]
name = "demo"  # the distribution name
requires-python = ">=3.10,<3.14"  # keep in sync with CI
classifiers = [
    "Programming Language :: Python :: 3.10",
]

[tool.ruff]
target-version = "py310"
`
	path := writePyproject(t, original)

	old, updated, err := Bump(filesystem.NewOS(), path, pyversion.MustParse("3.12"))
	require.NoError(t, err)
	assert.Equal(t, ">=3.10,<3.14", old)
	assert.Equal(t, ">=3.12,<3.14", updated)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[build-system]
requires = ["hatchling"]

[project]
name = "demo"  # the distribution name
requires-python = ">=3.12,<3.14"  # keep in sync with CI
classifiers = [
    "Programming Language :: Python :: 3.10",
]

[tool.ruff]
target-version = "py310"
`, string(data))
}

func TestBumpInsertsMissingKey(t *testing.T) {
	path := writePyproject(t, "[project]\nname = \"demo\"\n\n[tool.other]\nrequires-python = \"ignored\"\n")

	old, updated, err := Bump(filesystem.NewOS(), path, pyversion.MustParse("3.13"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRequiresPython, old)
	assert.Equal(t, ">=3.13", updated)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[project]\nrequires-python = \">=3.13\"\nname = \"demo\"\n\n[tool.other]\nrequires-python = \"ignored\"\n", string(data))
}

func TestBumpWithoutProjectTable(t *testing.T) {
	path := writePyproject(t, "[tool.ruff]\nline-length = 88\n")

	_, _, err := Bump(filesystem.NewOS(), path, pyversion.MustParse("3.11"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[tool.ruff]\nline-length = 88\n\n[project]\nrequires-python = \">=3.11\"\n", string(data))
}
