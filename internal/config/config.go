// Package config loads numparse command configuration.
//
// Configuration precedence (highest to lowest):
//  1. Command-line flags
//  2. Environment variables (NUMPARSE_PATTERN, NUMPARSE_LOG_LEVEL, ...)
//  3. Config file (YAML or TOML, chosen by extension)
//  4. Defaults
//
// The extraction keys (pattern, map, filter) are kept untyped so that
// exprfn.FromMap can report a wrongly typed value, e.g. "pattern: 42".
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/az-ai-labs/numparse/exprfn"
)

const (
	envPrefix         = "NUMPARSE_"
	maxConfigFileSize = 1 << 20 // 1 MiB
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

var formats = []string{FormatJSON, FormatYAML, FormatText}

// extractKeys are passed through to exprfn.FromMap untyped.
var extractKeys = []string{exprfn.KeyPattern, exprfn.KeyMap, exprfn.KeyFilter}

// Config is the resolved command configuration.
type Config struct {
	Format string    `koanf:"format"`
	Log    LogConfig `koanf:"log"`

	// Extract holds the pattern, map and filter keys that were set, as
	// loaded.
	Extract map[string]any `koanf:"-"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Load resolves configuration from the file at path (skipped when empty),
// the environment and overrides, which maps keys such as "pattern" or
// "log.level" to flag values.
func Load(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := loadFile(k, path); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	for key, val := range overrides {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("config: setting %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.Extract = make(map[string]any, len(extractKeys))
	for _, key := range extractKeys {
		if k.Exists(key) {
			cfg.Extract[key] = k.Get(key)
		}
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the output format.
func (c *Config) Validate() error {
	if !slices.Contains(formats, c.Format) {
		return fmt.Errorf("config: invalid format %q (want one of %s)", c.Format, strings.Join(formats, ", "))
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Format == "" {
		cfg.Format = FormatJSON
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

// loadFile parses the config file at path into k.
func loadFile(k *koanf.Koanf, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if len(content) > maxConfigFileSize {
		return fmt.Errorf("config: %s exceeds %d bytes", path, maxConfigFileSize)
	}

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".toml":
		parser = tomlParser{}
	default:
		return fmt.Errorf("config: unsupported file type %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}

	if err := k.Load(rawbytes.Provider(content), parser); err != nil {
		return fmt.Errorf("config: loading %s: %w", path, err)
	}
	return nil
}

// envKey maps NUMPARSE_LOG_LEVEL to log.level and NUMPARSE_PATTERN to
// pattern.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if rest, ok := strings.CutPrefix(key, "log_"); ok {
		return "log." + rest
	}
	return key
}

// tomlParser implements koanf.Parser with BurntSushi/toml.
type tomlParser struct{}

func (tomlParser) Unmarshal(b []byte) (map[string]any, error) {
	var out map[string]any
	if err := toml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (tomlParser) Marshal(m map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
