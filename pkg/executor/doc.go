// Package executor runs the external tools used while bootstrapping a
// generated project (git, uv, pre-commit). Commands run synchronously in the
// project directory; output is captured and logged, never streamed.
package executor
