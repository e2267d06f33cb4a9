package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PARTY_REVEAL_TIME", "")
	t.Setenv("DB_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "sql", cfg.Storage.Backend)
	assert.Equal(t, "forbid", cfg.Party.HostLeavePolicy)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.InDelta(t, 37.5665, cfg.Weather.DefaultLat, 1e-9)

	hour, minute, err := cfg.Party.RevealClock()
	require.NoError(t, err)
	assert.Equal(t, 12, hour)
	assert.Equal(t, 30, minute)
}

func TestLoad_InvalidRevealTime(t *testing.T) {
	t.Setenv("PARTY_REVEAL_TIME", "half past noon")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      DatabaseConfig
		contains []string
	}{
		{
			name:     "postgres",
			cfg:      DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "u", Password: "p", DBName: "matjip", SSLMode: "disable"},
			contains: []string{"host=db", "dbname=matjip", "sslmode=disable"},
		},
		{
			name:     "mysql",
			cfg:      DatabaseConfig{Driver: "mysql", Host: "db", Port: "3306", User: "u", Password: "p", DBName: "matjip"},
			contains: []string{"u:p@tcp(db:3306)/matjip", "parseTime=true", "charset=utf8mb4"},
		},
		{
			name:     "sqlite",
			cfg:      DatabaseConfig{Driver: "sqlite", Path: "local.db"},
			contains: []string{"local.db"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := tt.cfg.DSN()
			for _, part := range tt.contains {
				assert.True(t, strings.Contains(dsn, part), "dsn %q should contain %q", dsn, part)
			}
		})
	}
}

func TestParseSlice(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, parseSlice("http://a, http://b,"))
	assert.Empty(t, parseSlice(""))
}
