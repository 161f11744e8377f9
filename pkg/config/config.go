// Package config loads kiro.toml project configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/kiro-lang/tree-sitter-kiro/pkg/grammar"
	"github.com/kiro-lang/tree-sitter-kiro/pkg/kiro"
)

// FileName is the project configuration file name.
const FileName = "kiro.toml"

// LogLevelEnv overrides [log].level.
const LogLevelEnv = "KIRO_LOG_LEVEL"

// Config represents a kiro.toml file.
type Config struct {
	Grammar GrammarConfig `toml:"grammar"`
	Check   CheckConfig   `toml:"check"`
	Log     LogConfig     `toml:"log"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

// GrammarConfig says where the compiled grammar library lives.
type GrammarConfig struct {
	// Library is an explicit path to the grammar library. Relative paths are
	// resolved against the directory containing kiro.toml.
	Library string `toml:"library,omitempty"`

	// Paths are extra directories searched before the defaults.
	Paths []string `toml:"paths,omitempty"`

	// Language overrides the grammar name, which determines both the
	// library file names and the tree_sitter_<name> symbol.
	Language string `toml:"language,omitempty"`
}

// CheckConfig configures `kiro-ts check`.
type CheckConfig struct {
	// Include lists files, directories or doublestar patterns checked when
	// no arguments are given.
	Include []string `toml:"include,omitempty"`

	// Jobs bounds concurrent file checks; 0 means GOMAXPROCS.
	Jobs int `toml:"jobs,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level,omitempty"`
}

// Default returns the configuration used when there is no kiro.toml.
func Default() *Config {
	return &Config{
		Grammar: GrammarConfig{Language: "kiro"},
		Check:   CheckConfig{Include: []string{kiro.EntryFile}},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads a kiro.toml file on top of the defaults.
func Load(path string) (*Config, error) {
	config := Default()
	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown configuration key", "file", path, "key", key.String())
	}

	config.Path = path
	config.resolve(filepath.Dir(path))
	return config, config.Validate()
}

// Find searches for kiro.toml starting from dir and walking up to parent
// directories, stopping at a .git boundary. It returns the defaults if no
// file is found.
func Find(dir string) (*Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return Default(), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

func (c *Config) resolve(base string) {
	if c.Grammar.Library != "" && !filepath.IsAbs(c.Grammar.Library) {
		c.Grammar.Library = filepath.Join(base, c.Grammar.Library)
	}
	for i, p := range c.Grammar.Paths {
		if !filepath.IsAbs(p) {
			c.Grammar.Paths[i] = filepath.Join(base, p)
		}
	}
	for i, p := range c.Check.Include {
		if !filepath.IsAbs(p) {
			c.Check.Include[i] = filepath.Join(base, p)
		}
	}
}

// ApplyEnv overrides the configuration from environment variables.
func (c *Config) ApplyEnv() {
	if lib := os.Getenv(grammar.LibraryEnv); lib != "" {
		c.Grammar.Library = lib
	}
	if level := os.Getenv(LogLevelEnv); level != "" {
		c.Log.Level = level
	}
}

// Validate reports configuration values that can never work.
func (c *Config) Validate() error {
	var errs []error
	if c.Check.Jobs < 0 {
		errs = append(errs, fmt.Errorf("check.jobs must not be negative, got %d", c.Check.Jobs))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if strings.ContainsAny(c.Grammar.Language, `/\ `) {
		errs = append(errs, fmt.Errorf("grammar.language %q is not a grammar name", c.Grammar.Language))
	}
	return errors.Join(errs...)
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Loader returns a grammar loader for this configuration. Configured paths
// are searched before grammar.DefaultPaths.
func (c *Config) Loader() *grammar.Loader {
	lang := c.Grammar.Language
	if lang == "" {
		lang = "kiro"
	}
	return &grammar.Loader{
		Language: lang,
		Library:  c.Grammar.Library,
		Paths:    append(slices.Clone(c.Grammar.Paths), grammar.DefaultPaths()...),
	}
}
