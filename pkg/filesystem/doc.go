// Package filesystem provides the small filesystem surface the hook needs to
// read and rewrite generated files, so tests can substitute their own.
package filesystem
