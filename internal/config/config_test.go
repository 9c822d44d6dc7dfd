package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no config.yaml or .env is picked up
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_SERVICE_KEY", "service-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StoreSupabase, cfg.Store.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.Analytics.InsightTTL)
	assert.Equal(t, 2*time.Minute, cfg.Analytics.RecomputeTimeout)
	assert.Equal(t, 20*time.Second, cfg.Narrative.Timeout)
	assert.Equal(t, "slog", cfg.Logging.Backend)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_PrefixedEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_SERVICE_KEY", "service-key")
	t.Setenv("STRIDE_STORE_DRIVER", "sqlite")
	t.Setenv("STRIDE_STORE_DSN", "file:stride.db")
	t.Setenv("STRIDE_ANALYTICS_TIMEZONE", "America/New_York")
	t.Setenv("STRIDE_ANALYTICS_INSIGHT_TTL", "48h")
	t.Setenv("STRIDE_LOGGING_BACKEND", "zap")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, "file:stride.db", cfg.Store.DSN)
	assert.Equal(t, 48*time.Hour, cfg.Analytics.InsightTTL)
	assert.Equal(t, "zap", cfg.Logging.Backend)

	loc, err := cfg.Analytics.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("SUPABASE_URL=https://dotenv.supabase.co\nSUPABASE_SERVICE_KEY=dotenv-key\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("SUPABASE_URL")
		os.Unsetenv("SUPABASE_SERVICE_KEY")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://dotenv.supabase.co", cfg.Supabase.URL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Supabase: SupabaseConfig{URL: "https://example.supabase.co", ServiceKey: "key"},
			Store:    StoreConfig{Driver: StoreSupabase},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing supabase url", func(c *Config) { c.Supabase.URL = "" }, true},
		{"missing service key", func(c *Config) { c.Supabase.ServiceKey = "" }, true},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = StorePostgres }, true},
		{"postgres with dsn", func(c *Config) { c.Store.Driver = StorePostgres; c.Store.DSN = "postgres://x" }, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, true},
		{"bad timezone", func(c *Config) { c.Analytics.Timezone = "Mars/Olympus" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
