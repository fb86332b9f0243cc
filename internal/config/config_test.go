package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/config"
)

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.False(t, cfg.PreserveComments)
	require.Equal(t, 24*time.Hour, cfg.RustdocCacheTTL)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoadMergesYAMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "veltrano.yaml")
	yamlSrc := "preserve_comments: true\ncrate_paths:\n  - ./vendor/crate-a\nrustdoc_cache_ttl: 1h\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlSrc), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.True(t, cfg.PreserveComments)
	require.Equal(t, []string{"./vendor/crate-a"}, cfg.CratePaths)
	require.Equal(t, time.Hour, cfg.RustdocCacheTTL)
	require.Equal(t, config.Default().RustdocCacheDir, cfg.RustdocCacheDir)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "veltrano.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
}
