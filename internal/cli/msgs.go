package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Post-generation hook for the pythonic project template"
	MsgVersionShort    = "Print version information"
	MsgVersionLong     = "Print detailed version information including commit hash and build date"
	MsgRunShort        = "Run the complete post-generation hook"
	MsgDeriveShort     = "Show the Python version range derived from the configuration"
	MsgSubstituteShort = "Replace marker tokens in the target files"
	MsgDoctorShort     = "Check that the tools needed by enabled features are installed"
	MsgBootstrapShort  = "Run the bootstrap steps (git, dependency sync, hooks)"
	MsgValidateShort   = "Check template sources for broken invariants"
	MsgVersionsShort   = "Print the min/max Python versions allowed by pyproject.toml as JSON"
	MsgBumpShort       = "Move the requires-python lower bound in pyproject.toml"

	// Status messages
	MsgDryRunNotice    = "DRY RUN MODE - no files were written and no commands were run"
	MsgHookDone        = "Project successfully initialized"
	MsgHookDoneWarn    = "Project initialized with %d warning(s)"
	MsgUnbootstrapped  = "Generated files were kept; bootstrap was not run"
	MsgBumped          = "Updated requires-python=%s for %s"
	MsgVersionFormat   = "postgen version %s\n"
	MsgCommitFormat    = "Commit: %s\n"
	MsgBuiltFormat     = "Built:  %s\n"
	MsgSubstituteCount = "%d file(s) changed, %d unchanged, %d missing"

	// Error messages
	MsgErrUnknownFormat = "invalid --format value %q"
	MsgErrBumpTarget    = "--to must be a major.minor version"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun  = "Preview changes without writing files or running commands"
	MsgFlagDir     = "Generated project directory"
	MsgFlagContext = "Generation context file (default: .cruft.json or .cookiecutter.json in --dir)"
	MsgFlagSet     = "Override a configuration value, e.g. --set python_version=3.13 (repeatable)"
	MsgFlagFormat  = "Output format: auto, term, text or json"
	MsgFlagTo      = "New minimum Python version, e.g. 3.12"
	MsgFlagFile    = "Path to pyproject.toml (default: pyproject.toml in --dir)"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/run-long.txt
	msgRunLongRaw string
	MsgRunLong    = strings.TrimSpace(msgRunLongRaw)
)
