package version

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/adamamer20/pythonic-template/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/adamamer20/pythonic-template/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/adamamer20/pythonic-template/internal/version.Date={{.Date}}
)
