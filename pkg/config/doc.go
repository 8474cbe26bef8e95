// Package config loads the generation context and hook settings.
//
// Sources are layered, later ones overriding earlier ones:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the generation context file (.cruft.json or a cookiecutter replay file)
//  3. postgen.toml in the project root
//  4. POSTGEN_* environment variables ("__" separates nesting levels)
//  5. explicit key=value overrides from the command line
//
// The merged values are decoded once into an immutable, typed Config.
// Loosely typed answers ("y"/"n" toggles, "3.12" versions) are converted
// and validated here so nothing downstream handles raw strings.
package config
