package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "zoom", cfg.ServiceAccount.Username)
	assert.True(t, cfg.Forward.Enabled)
	assert.Equal(t, 10, cfg.Forward.TimeoutSec)
	assert.Equal(t, SinkBigQuery, cfg.Sink.Kind)
	assert.Equal(t, "link_zoom", cfg.Sink.URLColumn)
	assert.Equal(t, "unifecaf-data.unifecaf_zoom.ds_checkins", cfg.BigQuery.TableID())
	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SINK_KIND", "Postgres")
	t.Setenv("SINK_URL_COLUMN", "meeting_url")
	t.Setenv("FORWARD_ENABLED", "false")
	t.Setenv("FORWARD_BASE_URL", "http://peer:8080/")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 10.0.0.2 ,")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SinkPostgres, cfg.Sink.Kind)
	assert.Equal(t, "meeting_url", cfg.Sink.URLColumn)
	assert.False(t, cfg.Forward.Enabled)
	assert.Equal(t, "http://peer:8080", cfg.Forward.BaseURL)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Server.TrustedProxies)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.Database.DSN())
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown sink", key: "SINK_KIND", val: "mongo"},
		{name: "queue as worker sink", key: "WORKER_SINK_KIND", val: "queue"},
		{name: "unknown url column", key: "SINK_URL_COLUMN", val: "url"},
		{name: "zero timeout", key: "FORWARD_TIMEOUT_SEC", val: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDSNFromComponents(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "1", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:1/d?sslmode=disable", c.DSN())
}

func TestWarnings(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		pass   string
		want   int
	}{
		{"default secret without service account", "", "", 0},
		{"default secret with service account", "", "pw", 1},
		{"custom secret with service account", "s3cr3t", "pw", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", tt.secret)
			t.Setenv("SERVICE_PASS", tt.pass)
			cfg, err := Load()
			require.NoError(t, err)
			warnings := cfg.Warnings()
			require.Len(t, warnings, tt.want)
			if tt.want > 0 {
				assert.Contains(t, warnings[0], "JWT_SECRET")
			}
		})
	}
}
