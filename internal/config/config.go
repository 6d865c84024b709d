// Package config defines the transmute configuration, loadable from
// .transmute.yaml with environment variable overrides.
package config

import "path/filepath"

// Config represents the complete transmute configuration.
type Config struct {
	Language string        `yaml:"language" mapstructure:"language"`
	Include  IncludeConfig `yaml:"include" mapstructure:"include"`
	Oracle   OracleConfig  `yaml:"oracle" mapstructure:"oracle"`
	Output   OutputConfig  `yaml:"output" mapstructure:"output"`
}

// IncludeConfig controls include-file resolution.
type IncludeConfig struct {
	SearchRoot   string   `yaml:"search_root" mapstructure:"search_root"`     // directory searched for include files
	Ignore       []string `yaml:"ignore" mapstructure:"ignore"`               // glob patterns pruning the search
	AlternateExt string   `yaml:"alternate_ext" mapstructure:"alternate_ext"` // extension tried when the literal name misses
}

// OracleConfig controls the transformation oracle.
type OracleConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`             // "mock" is the only built-in provider
	CacheLocation string `yaml:"cache_location" mapstructure:"cache_location"` // sqlite artifact cache path; empty disables caching
}

// OutputConfig controls the generated target file.
type OutputConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Language: "cpp",
		Include: IncludeConfig{
			SearchRoot:   ".",
			AlternateExt: ".rs",
			Ignore: []string{
				"build/**",
				"vendor/**",
				".git/**",
				"target/**",
				"node_modules/**",
			},
		},
		Oracle: OracleConfig{
			Provider:      "mock",
			CacheLocation: filepath.Join(".transmute", "cache.db"),
		},
		Output: OutputConfig{
			Path: "transmuted.rs",
		},
	}
}
