package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON string

// Config holds all configuration options for recluse. The toml and yaml
// tags keep `recluse init` output loadable by the koanf pipeline.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis" yaml:"analysis"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude" yaml:"exclude"`

	// Dead-element classification settings
	DeadCode DeadCodeConfig `koanf:"deadcode" toml:"deadcode" yaml:"deadcode"`

	// HTML report settings
	Report ReportConfig `koanf:"report" toml:"report" yaml:"report"`
}

// AnalysisConfig controls how the analysis run executes.
type AnalysisConfig struct {
	// Jobs is the extraction worker count. Zero means twice the CPU count.
	Jobs int `koanf:"jobs" toml:"jobs" yaml:"jobs"`

	// FailOnFindings makes the CLI exit non-zero when any finding is reported.
	FailOnFindings bool `koanf:"fail_on_findings" toml:"fail_on_findings" yaml:"fail_on_findings"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns" toml:"patterns" yaml:"patterns"`
	Extensions []string `koanf:"extensions" toml:"extensions" yaml:"extensions"`
	Dirs       []string `koanf:"dirs" toml:"dirs" yaml:"dirs"`
	Gitignore  bool     `koanf:"gitignore" toml:"gitignore" yaml:"gitignore"`
}

// DeadCodeConfig defines the naming conventions that exempt definitions from
// dead-element classification. Lists replace the defaults when set; an absent
// key keeps the default list.
type DeadCodeConfig struct {
	// TestPrefixes marks functions as test code (e.g. "test_").
	TestPrefixes []string `koanf:"test_prefixes" toml:"test_prefixes" yaml:"test_prefixes"`

	// FixtureNames are framework hook functions invoked implicitly.
	FixtureNames []string `koanf:"fixture_names" toml:"fixture_names" yaml:"fixture_names"`

	// EntryPoints are invoked by the runtime, never by project code.
	EntryPoints []string `koanf:"entry_points" toml:"entry_points" yaml:"entry_points"`

	// AbstractMarkers exempt classes when present as a name prefix or suffix.
	AbstractMarkers []string `koanf:"abstract_markers" toml:"abstract_markers" yaml:"abstract_markers"`

	// TestClassAffixes exempt classes when present as a name prefix or suffix.
	TestClassAffixes []string `koanf:"test_class_affixes" toml:"test_class_affixes" yaml:"test_class_affixes"`
}

// ReportConfig controls the HTML report.
type ReportConfig struct {
	Title string `koanf:"title" toml:"title" yaml:"title"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Jobs:           0,
			FailOnFindings: false,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.min.css",
				"*.g.dart",
				"*.freezed.dart",
			},
			Extensions: []string{},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				".recluse",
				"dist",
				"build",
				"__pycache__",
				".dart_tool",
				".venv",
				"venv",
			},
			Gitignore: true,
		},
		DeadCode: DeadCodeConfig{
			TestPrefixes:     []string{"test_"},
			FixtureNames:     []string{"setUp", "tearDown"},
			EntryPoints:      []string{"main"},
			AbstractMarkers:  []string{"Abstract"},
			TestClassAffixes: []string{"Test", "Tests", "TestCase"},
		},
		Report: ReportConfig{
			Title: "Code Analysis Report",
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = koanfjson.Parser()
	default:
		// Try to detect from content or default to TOML
		parser = toml.Parser()
	}

	// Load the config file
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	// Validate before unmarshaling so typos surface as schema errors
	// instead of silently ignored keys.
	if err := validate(k.Raw()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	// Unmarshal into config struct
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks the raw config map against the embedded JSON Schema.
func validate(raw map[string]interface{}) error {
	// Round-trip through JSON so TOML/YAML native types (int64, time)
	// become canonical JSON values the validator understands.
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}

	schema, err := compileSchema()
	if err != nil {
		return err
	}
	return schema.Validate(doc)
}

func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("recluse-config.schema.json", doc); err != nil {
		return nil, err
	}
	return compiler.Compile("recluse-config.schema.json")
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	// Standard config file names to search for
	configNames := []string{
		"recluse.toml",
		"recluse.yaml",
		"recluse.yml",
		"recluse.json",
		".recluse.toml",
		".recluse.yaml",
		".recluse.yml",
		".recluse.json",
	}

	// Search in current directory and .recluse directory
	searchDirs := []string{".", ".recluse"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	// Check directory exclusions
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	// Check extension exclusions
	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	// Check pattern exclusions
	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
