package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds the scan configuration
type Config struct {
	// Main settings
	RootDir         string
	OutputFile      string
	FileExtensions  []string
	IncludePatterns []string
	ExcludePatterns []string
	ScanArchives    bool
	TempDir         string

	// Concurrency settings
	Workers int
}

// DefaultExtensions lists the file types that can carry a version
// resource.
var DefaultExtensions = []string{".exe", ".dll", ".sys", ".ocx", ".scr", ".cpl", ".drv", ".msi"}

// Default returns the baseline configuration
func Default() Config {
	return Config{
		OutputFile:     "versions.json",
		FileExtensions: DefaultExtensions,
		ScanArchives:   false,
		TempDir:        os.TempDir(),
		Workers:        4,
	}
}

// Load reads a config file into cfg. Values already set on cfg stay
// untouched unless the file provides them.
func Load(path string, cfg *Config) error {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if v.IsSet("output") {
		cfg.OutputFile = v.GetString("output")
	}
	if v.IsSet("extensions") {
		cfg.FileExtensions = v.GetStringSlice("extensions")
	}
	if v.IsSet("include") {
		cfg.IncludePatterns = v.GetStringSlice("include")
	}
	if v.IsSet("exclude") {
		cfg.ExcludePatterns = v.GetStringSlice("exclude")
	}
	if v.IsSet("scan-archives") {
		cfg.ScanArchives = v.GetBool("scan-archives")
	}
	if v.IsSet("temp-dir") {
		cfg.TempDir = v.GetString("temp-dir")
	}
	if v.IsSet("workers") {
		cfg.Workers = v.GetInt("workers")
	}

	return nil
}
