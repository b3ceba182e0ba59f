// Package config loads the interpreter's optional .loxrc.toml, the one
// ambient piece of configuration spec.md's CLI doesn't otherwise need
// (SPEC_FULL.md §2.2).
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Configuration holds the interpreter's ambient settings. CLI flags always
// take precedence; a .loxrc.toml only supplies defaults (SPEC_FULL.md §2.2).
type Configuration struct {
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
	NoColor  bool   `toml:"no_color"`
	DebugAST bool   `toml:"debug_ast"`
}

// Default returns the configuration used when no .loxrc.toml is present.
func Default() Configuration {
	return Configuration{LogLevel: "none"}
}

// Load reads path if it exists, merging over Default(). A missing file is
// not an error; a malformed one is.
func Load(path string) (Configuration, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}
