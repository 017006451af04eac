package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "locator.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Sweep.CheckpointEvery)
	assert.Equal(t, 3, cfg.Sweep.VendorParallelism)
	assert.Equal(t, "locator-cli/1.0", cfg.Sweep.UserAgent)
	assert.InDelta(t, 0.85, cfg.Dedup.FuzzyThreshold, 0.001)
	assert.InDelta(t, 50, cfg.Zips.SpacingMiles, 0.001)
	assert.Equal(t, "/tmp/locator", cfg.License.TempDir)
	assert.Equal(t, "https://login.salesforce.com", cfg.Salesforce.LoginURL)

	// Scoring defaults mirror scorer.DefaultConfig.
	assert.InDelta(t, 35, cfg.Scoring.MultiOEMWeight, 0.001)
	assert.InDelta(t, 25, cfg.Scoring.LicenseWeight, 0.001)
	assert.InDelta(t, 75, cfg.Scoring.TierACutoff, 0.001)
	assert.InDelta(t, 15, cfg.Scoring.TenureFullYears, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  path: /var/lib/locator/sweeps.db
log:
  level: debug
  format: console
server:
  port: 9090
zips:
  spacing_miles: 25
  states: [TX, CA, FL]
scoring:
  tier_a_cutoff: 80
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/locator/sweeps.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.InDelta(t, 25, cfg.Zips.SpacingMiles, 0.001)
	assert.Equal(t, []string{"TX", "CA", "FL"}, cfg.Zips.States)
	assert.InDelta(t, 80, cfg.Scoring.TierACutoff, 0.001)
	// Defaults still apply for unset values
	assert.Equal(t, 25, cfg.Sweep.CheckpointEvery)
	assert.InDelta(t, 55, cfg.Scoring.TierBCutoff, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  path: file.db
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LOCATOR_STORE_PATH", "env.db")
	t.Setenv("LOCATOR_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "env.db", cfg.Store.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("LOCATOR_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Path = "locator.db"
	cfg.Sweep.VendorParallelism = 3
	cfg.Dedup.FuzzyThreshold = 0.85
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateSweep_AllPresent(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("sweep"))
}

func TestValidateSweep_MissingStore(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Path = ""

	err := cfg.Validate("sweep")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.path is required")
}

func TestValidateSweep_ParallelismBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Sweep.VendorParallelism = 0
	err := cfg.Validate("sweep")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "vendor_parallelism must be between 1 and 20")

	cfg.Sweep.VendorParallelism = 21
	err = cfg.Validate("sweep")
	assert.Error(t, err)

	cfg.Sweep.VendorParallelism = 20
	assert.NoError(t, cfg.Validate("sweep"))
}

func TestValidateLicense_RequiresDatabase(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("license")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "license.database_url is required")

	cfg.License.DatabaseURL = "postgres://localhost/licensing"
	assert.NoError(t, cfg.Validate("license"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateFuzzyThresholdBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Dedup.FuzzyThreshold = 1.5
	err := cfg.Validate("sweep")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fuzzy_threshold must be between 0 and 1")

	cfg.Dedup.FuzzyThreshold = -0.1
	err = cfg.Validate("export")
	assert.Error(t, err)
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
