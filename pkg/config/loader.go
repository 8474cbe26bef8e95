package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/adamamer20/pythonic-template/pkg/errors"
	"github.com/adamamer20/pythonic-template/pkg/logging"
	"github.com/adamamer20/pythonic-template/pkg/pyversion"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix of environment overrides.
	EnvPrefix = "POSTGEN_"
	// ProjectConfigFile is the optional per-project settings file.
	ProjectConfigFile = "postgen.toml"
)

// contextFileCandidates are probed in the project root when no context file
// is given explicitly.
var contextFileCandidates = []string{".cruft.json", ".cookiecutter.json"}

// contextSubtrees are the keys under which the answers live in known context
// file layouts (cruft, cookiecutter replay).
var contextSubtrees = []string{"context.cookiecutter", "cookiecutter"}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// Root is the generated project directory. Defaults to the working directory.
	Root string
	// ContextFile overrides context file discovery. Relative paths are
	// resolved against Root.
	ContextFile string
	// Overrides are key=value pairs applied last, e.g. "python_version=3.13".
	Overrides []string
	DryRun    bool
}

// Load reads every configuration layer and returns a validated Config.
func Load(opts LoadOptions) (Config, error) {
	logger := logging.GetLogger("config")

	root := opts.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Config{}, errors.Wrapf(err, errors.ErrConfigLoad, "cannot resolve project root %q", root)
	}

	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Generation context file
	contextPath, err := findContextFile(absRoot, opts.ContextFile)
	if err != nil {
		return Config{}, err
	}
	if contextPath != "" {
		answers, err := loadContextFile(contextPath)
		if err != nil {
			return Config{}, err
		}
		if err := k.Merge(answers); err != nil {
			return Config{}, errors.Wrapf(err, errors.ErrConfigLoad, "failed to merge context from %s", contextPath)
		}
		logger.Debug().Str("path", contextPath).Msg("Loaded generation context")
	}

	// 3. Project settings file
	projectPath := filepath.Join(absRoot, ProjectConfigFile)
	if _, err := os.Stat(projectPath); err == nil {
		if err := k.Load(file.Provider(projectPath), toml.Parser()); err != nil {
			return Config{}, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load %s", projectPath)
		}
		logger.Debug().Str("path", projectPath).Msg("Loaded project settings")
	}

	// 4. Environment
	err = k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	// 5. Command line overrides
	overrides, err := parseOverrides(opts.Overrides)
	if err != nil {
		return Config{}, err
	}
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return Config{}, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	cfg := Config{Root: absRoot, DryRun: opts.DryRun}
	if err := unmarshal(k, "", &cfg.Context); err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigInvalid, "invalid generation context")
	}
	if err := unmarshal(k, "hook", &cfg.Hook); err != nil {
		return Config{}, errors.Wrap(err, errors.ErrConfigInvalid, "invalid hook settings")
	}
	cfg.Hook.KnownVersions = pyversion.Normalize(cfg.Hook.KnownVersions)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	logger.Info().
		Str("root", cfg.Root).
		Str("python", cfg.Context.PythonVersion.String()).
		Str("projectType", string(cfg.Context.ProjectType)).
		Bool("dryRun", cfg.DryRun).
		Msg("Configuration loaded")

	return cfg, nil
}

func findContextFile(root, explicit string) (string, error) {
	if explicit != "" {
		path := explicit
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		if _, err := os.Stat(path); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "context file %s not readable", path)
		}
		return path, nil
	}
	for _, name := range contextFileCandidates {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// loadContextFile parses a JSON context file (JSON is valid YAML) and returns
// the subtree holding the template answers.
func loadContextFile(path string) (*koanf.Koanf, error) {
	raw := koanf.New(".")
	if err := raw.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to parse context file %s", path)
	}
	for _, key := range contextSubtrees {
		if raw.Exists(key) {
			return raw.Cut(key), nil
		}
	}
	return raw, nil
}

func parseOverrides(pairs []string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "override %q must be key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}

func unmarshal(k *koanf.Koanf, path string, out interface{}) error {
	return k.UnmarshalWithConf(path, out, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           out,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				versionListHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.StringToTimeDurationHookFunc(),
				versionHookFunc(),
				toggleHookFunc(),
			),
		},
	})
}

var (
	versionType     = reflect.TypeOf(pyversion.Version{})
	versionListType = reflect.TypeOf([]pyversion.Version{})
)

// versionListHookFunc decodes "3.12,3.13" into a version list, as passed
// through the environment or --set.
func versionListHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		s, ok := data.(string)
		if to != versionListType || !ok {
			return data, nil
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		return pyversion.ParseList(parts)
	}
}

// versionHookFunc decodes "3.12" into pyversion.Version. Numbers are refused
// because 3.10 and 3.1 are indistinguishable once parsed as floats.
func versionHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != versionType {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return pyversion.Parse(v)
		case pyversion.Version:
			return v, nil
		case float32, float64, int, int64:
			return nil, fmt.Errorf("python version %v must be a quoted \"major.minor\" string", v)
		}
		return data, nil
	}
}

// toggleHookFunc accepts cookiecutter style y/n answers for boolean fields.
func toggleHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to.Kind() != reflect.Bool || from.Kind() != reflect.String {
			return data, nil
		}
		return ParseToggle(reflect.ValueOf(data).String())
	}
}

// ParseToggle converts a yes/no style answer into a bool.
func ParseToggle(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1", "on":
		return true, nil
	case "n", "no", "false", "0", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a yes/no answer", s)
}
