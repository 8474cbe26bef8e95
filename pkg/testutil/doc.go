// Package testutil provides fixtures and fakes shared by the package tests:
// file trees written to temporary directories, an in-memory filesystem,
// a recording command runner and a PATH lookup stub.
//
// Usage guidelines:
//   - Prefer MemoryFS when a test only needs the filesystem.FS interface
//   - Use WriteTree with t.TempDir() when code walks real directories
//     (glob expansion, os.DirFS)
//   - All test data should be defined inline, not in external files
package testutil
