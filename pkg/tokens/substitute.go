package tokens

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"

	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/adamamer20/pythonic-template/pkg/filesystem"
	"github.com/adamamer20/pythonic-template/pkg/logging"
	"github.com/rs/zerolog"
)

// Report describes the outcome of one substitution pass.
type Report struct {
	// Changed files were rewritten (or would be, in dry-run mode).
	Changed []string
	// Unchanged files contained no known token and were not touched.
	Unchanged []string
	// Missing files were listed as targets but do not exist.
	Missing []string
	// Failed files could not be read or written.
	Failed map[string]error
	// Unresolved maps a file to the marker-shaped strings still present after
	// substitution.
	Unresolved map[string][]string
}

// HasUnresolved reports whether any file still carries a marker.
func (r Report) HasUnresolved() bool {
	return len(r.Unresolved) > 0
}

// Substituter rewrites target files through a token table.
type Substituter struct {
	fs     filesystem.FS
	table  Table
	dryRun bool
	logger zerolog.Logger
}

// NewSubstituter creates a substituter. In dry-run mode files are never written.
func NewSubstituter(fsys filesystem.FS, table Table, dryRun bool) *Substituter {
	return &Substituter{
		fs:     fsys,
		table:  table,
		dryRun: dryRun,
		logger: logging.GetLogger("tokens"),
	}
}

// Apply substitutes tokens in every target under root, in order. A missing or
// unreadable file is recorded and the remaining files are still processed.
func (s *Substituter) Apply(root string, targets []string) Report {
	done := logging.LogOperationStart(s.logger, "substitute")
	defer done()

	report := Report{
		Failed:     make(map[string]error),
		Unresolved: make(map[string][]string),
	}

	for _, rel := range targets {
		full := filepath.Join(root, filepath.FromSlash(rel))

		info, err := s.fs.Stat(full)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				s.logger.Warn().Str("path", rel).Msg("Target file not found, skipping")
				report.Missing = append(report.Missing, rel)
				continue
			}
			report.Failed[rel] = errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", rel)
			s.logger.Warn().Err(err).Str("path", rel).Msg("Cannot stat target file")
			continue
		}
		if info.IsDir() {
			report.Failed[rel] = errors.Newf(errors.ErrFileAccess, "%s is a directory", rel)
			s.logger.Warn().Str("path", rel).Msg("Target is a directory, skipping")
			continue
		}

		data, err := s.fs.ReadFile(full)
		if err != nil {
			report.Failed[rel] = errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", rel)
			s.logger.Warn().Err(err).Str("path", rel).Msg("Cannot read target file")
			continue
		}

		original := string(data)
		updated := s.table.Replace(original)

		if leftover := FindMarkers(updated); len(leftover) > 0 {
			report.Unresolved[rel] = leftover
			s.logger.Warn().Str("path", rel).Strs("tokens", leftover).Msg("Unresolved marker tokens remain")
		}

		if updated == original {
			s.logger.Debug().Str("path", rel).Msg("No tokens to replace")
			report.Unchanged = append(report.Unchanged, rel)
			continue
		}

		if s.dryRun {
			s.logger.Info().Str("path", rel).Msg("Dry run - file would be rewritten")
			report.Changed = append(report.Changed, rel)
			continue
		}

		if err := s.fs.WriteFile(full, []byte(updated), info.Mode().Perm()); err != nil {
			report.Failed[rel] = errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", rel)
			s.logger.Warn().Err(err).Str("path", rel).Msg("Cannot write target file")
			continue
		}

		s.logger.Info().Str("path", rel).Msg("Substituted tokens")
		report.Changed = append(report.Changed, rel)
	}

	return report
}
