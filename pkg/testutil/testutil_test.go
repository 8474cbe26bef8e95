package testutil

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/adamamer20/pythonic-template/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ filesystem.FS = (*MemoryFS)(nil)

func TestMemoryFS(t *testing.T) {
	m := NewMemoryFSWith("/project", FileTree{"docs/index.md": "hello"})

	info, err := m.Stat("/project/docs")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	info, err = m.Stat("/project/docs/index.md")
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
	assert.Equal(t, fs.FileMode(0644), info.Mode().Perm())

	_, err = m.Stat("/project/missing.md")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	require.NoError(t, m.WriteFile("/project/docs/index.md", []byte("bye"), 0600))
	content, ok := m.Content("/project/docs/index.md")
	assert.True(t, ok)
	assert.Equal(t, "bye", content)
	assert.Equal(t, 1, m.WriteCount())
	assert.Equal(t, []string{"/project/docs/index.md"}, m.Paths())
}

func TestMemoryFSFailOn(t *testing.T) {
	m := NewMemoryFSWith("/p", FileTree{"a.md": "x"})
	m.FailOn("/p/a.md", fs.ErrPermission)

	_, err := m.ReadFile("/p/a.md")
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.Error(t, m.WriteFile("/p/a.md", nil, 0644))
	assert.Equal(t, 0, m.WriteCount())
}

func TestRunnerAndLookPath(t *testing.T) {
	boom := errors.New("boom")
	r := &Runner{Fail: map[string]error{"uv sync": boom}}

	_, err := r.Run(context.Background(), "/p", "git", "init")
	require.NoError(t, err)
	res, err := r.Run(context.Background(), "/p", "uv", "sync")
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, []string{"git init", "uv sync"}, r.Calls())

	lookPath := LookPath("git")
	p, err := lookPath("git")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/git", p)
	_, err = lookPath("uv")
	assert.Error(t, err)
}

func TestTree(t *testing.T) {
	root := TempTree(t, FileTree{"a/b.txt": "content"})
	assert.Equal(t, "content", ReadFile(t, root, "a/b.txt"))
}
