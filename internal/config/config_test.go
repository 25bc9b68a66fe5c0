package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, `
stats:
  base_url: "http://stats.local:5000/"
  default_quarter: "Fall 2013"
catalog:
  source: "http"
  url: "http://stats.local:5000/course_records.json"
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "all", cfg.Stats.Courses)
	assert.Equal(t, time.Duration(0), cfg.Stats.Timeout)
	assert.Equal(t, "Fall 2013", cfg.Stats.DefaultQuarter)
	assert.InDelta(t, 0.97, cfg.Heatmap.WidthRatio, 1e-9)
	assert.InDelta(t, 0.25, cfg.Heatmap.HeightRatio, 1e-9)
	assert.Equal(t, 1200, cfg.Heatmap.DefaultParentWidth)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.ConfigFile)
}

func TestLoadConfigTimeoutSeconds(t *testing.T) {
	dir := writeConfig(t, `
stats:
  base_url: "http://stats.local:5000/"
  timeout_seconds: 3
catalog:
  source: "local"
  object: "course_records.json"
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Stats.Timeout)
	assert.Equal(t, "local", cfg.Catalog.Source)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
stats:
  base_url: "http://stats.local:5000/"
catalog:
  source: "http"
  url: "http://stats.local:5000/course_records.json"
`)
	t.Setenv("STATS_BASE_URL", "http://override:9000/")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://override:9000/", cfg.Stats.BaseURL)
}

func TestLoadConfigValidation(t *testing.T) {
	cases := map[string]string{
		"missing base url": `
catalog:
  source: "http"
  url: "http://x/"
`,
		"http catalog without url": `
stats:
  base_url: "http://stats.local/"
catalog:
  source: "http"
`,
		"object catalog without object": `
stats:
  base_url: "http://stats.local/"
catalog:
  source: "minio"
`,
		"unknown catalog source": `
stats:
  base_url: "http://stats.local/"
catalog:
  source: "ftp"
  object: "x.json"
`,
		"non-positive ratio": `
stats:
  base_url: "http://stats.local/"
catalog:
  source: "local"
  object: "x.json"
heatmap:
  width_ratio: 0
`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}
