// Package bootstrap runs the environment set-up steps that follow token
// substitution: repository init, initial commit, dependency sync and
// pre-commit hook installation.
//
// Steps run strictly in order. A step whose feature is disabled or whose tool
// is missing is skipped, a failing step is recorded and the pipeline moves on.
// Nothing is rolled back and nothing is retried.
package bootstrap
