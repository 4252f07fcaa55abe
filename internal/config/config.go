package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level meditate.yaml configuration.
type Config struct {
	// Log controls the zap logger built by the CLI.
	Log LogConfig `yaml:"log"`

	// Catalog is the path of the SQLite catalog database.
	// Relative paths are resolved against the config file directory.
	Catalog string `yaml:"catalog,omitempty"`

	// Schemas lists YAML type-model files loaded before every command.
	Schemas []string `yaml:"schemas,omitempty"`

	// ProtoImportPaths are the import paths used when parsing .proto files.
	ProtoImportPaths []string `yaml:"proto_import_paths,omitempty"`

	// dir is the directory holding the config file; empty for defaults.
	dir string
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string `yaml:"level,omitempty"`

	// Format is console or json. Defaults to console.
	Format string `yaml:"format,omitempty"`
}

// Default returns the configuration used when no meditate.yaml is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a meditate.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses meditate.yaml content from bytes.
// The path argument is used for error messages and relative path resolution.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.dir = filepath.Dir(path)
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for meditate.yaml starting from dir and walking up
// to parent directories. Returns an empty path and nil error if none exists.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Resolve makes p absolute relative to the config file directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// SchemaPaths returns the configured schema files resolved against the config directory.
func (c *Config) SchemaPaths() []string {
	paths := make([]string, len(c.Schemas))
	for i, s := range c.Schemas {
		paths[i] = c.Resolve(s)
	}
	return paths
}

func (c *Config) validate(path string) error {
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%s: log.level: unknown level %q", path, c.Log.Level)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("%s: log.format: unknown format %q", path, c.Log.Format)
	}

	seen := make(map[string]bool)
	for i, s := range c.Schemas {
		if s == "" {
			return fmt.Errorf("%s: schemas[%d]: empty path", path, i)
		}
		if !hasSchemaExt(s) {
			return fmt.Errorf("%s: schemas[%d]: %q is not a YAML file", path, i, s)
		}
		if seen[s] {
			return fmt.Errorf("%s: schemas[%d]: duplicate schema %q", path, i, s)
		}
		seen[s] = true
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Catalog == "" {
		c.Catalog = "meditate.db"
	}
	if len(c.ProtoImportPaths) == 0 {
		c.ProtoImportPaths = []string{"."}
	}
}

func hasSchemaExt(p string) bool {
	ext := filepath.Ext(p)
	for _, e := range SchemaFileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
