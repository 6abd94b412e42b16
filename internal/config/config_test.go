package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_DefaultValues(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, "DryStore", cfg.Report.Prefix)
	assert.Equal(t, 30, cfg.Report.RowsPerPage)
	assert.Equal(t, 2*time.Second, cfg.Logo.Timeout)
	assert.Equal(t, "memory", cfg.Session.Driver)
	assert.Equal(t, 20, cfg.History.Limit)
	assert.Equal(t, 200, cfg.History.RecentLimit)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOriginList())
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("LOGO_TIMEOUT", "500ms")
	t.Setenv("HISTORY_WINDOW_DAYS", "7")
	t.Setenv("SEED_LAYOUT", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 500*time.Millisecond, cfg.Logo.Timeout)
	assert.Equal(t, 7, cfg.History.WindowDays)
	assert.True(t, cfg.SeedLayout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOriginList())
}

func TestLoad_InvalidNumberFallsBack(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HISTORY_LIMIT", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.History.Limit)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret": {"JWT_SECRET": ""},
		"short secret":   {"JWT_SECRET": "short"},
		"store driver":   {"JWT_SECRET": testSecret, "STORE_DRIVER": "mongo"},
		"session driver": {"JWT_SECRET": testSecret, "SESSION_DRIVER": "etcd"},
		"s3 no bucket":   {"JWT_SECRET": testSecret, "LOGO_DRIVER": "s3"},
		"rows per page":  {"JWT_SECRET": testSecret, "REPORT_ROWS_PER_PAGE": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
