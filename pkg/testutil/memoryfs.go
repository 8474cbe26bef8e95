package testutil

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryFS implements filesystem.FS with in-memory storage. Directories are
// implied by the files below them.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string]*memFile

	// Error injection
	errorPaths map[string]error

	// Statistics
	writeCount int
}

type memFile struct {
	content []byte
	mode    fs.FileMode
	modTime time.Time
}

// NewMemoryFS creates an empty in-memory filesystem.
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		files:      make(map[string]*memFile),
		errorPaths: make(map[string]error),
	}
}

// NewMemoryFSWith creates a filesystem holding tree under root.
func NewMemoryFSWith(root string, tree FileTree) *MemoryFS {
	m := NewMemoryFS()
	for rel, content := range tree {
		m.files[m.key(path.Join(filepath.ToSlash(root), rel))] = &memFile{
			content: []byte(content),
			mode:    0644,
			modTime: time.Now(),
		}
	}
	return m
}

func (m *MemoryFS) key(name string) string {
	return path.Clean(filepath.ToSlash(name))
}

// FailOn makes every operation on name return err.
func (m *MemoryFS) FailOn(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorPaths[m.key(name)] = err
}

// WriteCount returns the number of successful writes.
func (m *MemoryFS) WriteCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writeCount
}

// Content returns the content of name and whether it exists.
func (m *MemoryFS) Content(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[m.key(name)]
	if !ok {
		return "", false
	}
	return string(f.content), true
}

// Paths returns every file path, sorted.
func (m *MemoryFS) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.files))
	for k := range m.files {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *MemoryFS) isDir(key string) bool {
	prefix := key + "/"
	for k := range m.files {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// Stat returns file info for a file or an implied directory.
func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := m.key(name)
	if err, ok := m.errorPaths[key]; ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	if f, ok := m.files[key]; ok {
		return memInfo{name: path.Base(key), size: int64(len(f.content)), mode: f.mode, modTime: f.modTime}, nil
	}
	if m.isDir(key) {
		return memInfo{name: path.Base(key), mode: fs.ModeDir | 0755}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// ReadFile returns a copy of the file content.
func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := m.key(name)
	if err, ok := m.errorPaths[key]; ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	f, ok := m.files[key]
	if !ok {
		if m.isDir(key) {
			return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
		}
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), f.content...), nil
}

// WriteFile creates or replaces name.
func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := m.key(name)
	if err, ok := m.errorPaths[key]; ok {
		return &fs.PathError{Op: "write", Path: name, Err: err}
	}
	m.files[key] = &memFile{
		content: append([]byte(nil), data...),
		mode:    perm,
		modTime: time.Now(),
	}
	m.writeCount++
	return nil
}

type memInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() fs.FileMode  { return i.mode }
func (i memInfo) ModTime() time.Time { return i.modTime }
func (i memInfo) IsDir() bool        { return i.mode.IsDir() }
func (i memInfo) Sys() interface{}   { return nil }
