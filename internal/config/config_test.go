package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output: out.json
extensions:
  - .exe
  - .dll
scan-archives: true
workers: 8
`), 0644))

	cfg := Default()
	require.NoError(t, Load(path, &cfg))

	assert.Equal(t, "out.json", cfg.OutputFile)
	assert.Equal(t, []string{".exe", ".dll"}, cfg.FileExtensions)
	assert.True(t, cfg.ScanArchives)
	assert.Equal(t, 8, cfg.Workers)

	// Unset keys keep their defaults
	assert.Equal(t, os.TempDir(), cfg.TempDir)
	assert.Empty(t, cfg.IncludePatterns)
}

func TestLoadMissingFile(t *testing.T) {
	cfg := Default()
	err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &cfg)
	assert.Error(t, err)
}
