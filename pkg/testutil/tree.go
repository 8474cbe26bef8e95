package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// FileTree maps slash-separated relative paths to file contents.
type FileTree map[string]string

// WriteTree creates every file of tree under root, with parent directories.
func WriteTree(t *testing.T, root string, tree FileTree) {
	t.Helper()
	for rel, content := range tree {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

// TempTree writes tree into a fresh temporary directory and returns it.
func TempTree(t *testing.T, tree FileTree) string {
	t.Helper()
	root := t.TempDir()
	WriteTree(t, root, tree)
	return root
}

// ReadFile returns the content of root/rel, failing the test when unreadable.
func ReadFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}
