package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewManager_Defaults(t *testing.T) {
	m, err := NewManager(WithConfigFile(writeConfigFile(t, "{}\n")))
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "oncodrug", cfg.Database.Database)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 10*time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, 20.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 5, cfg.Search.VariantPageSize)
	assert.Equal(t, 10, cfg.Search.DrugPageSize)
	assert.Equal(t, 100, cfg.Search.MaxPageSize)
	assert.True(t, m.IsDevelopment())
	assert.False(t, m.IsProduction())
	assert.NoError(t, m.Validate())
}

func TestNewManager_FileAndEnvironment(t *testing.T) {
	path := writeConfigFile(t, `
environment: production
server:
  port: 9000
database:
  driver: sqlite
  sqlite_path: /var/lib/oncodrug/annotations.db
search:
  variant_page_size: 8
`)
	t.Setenv("ONCODRUG_SERVER_PORT", "9100")
	t.Setenv("ONCODRUG_LOGGING_LEVEL", "debug")

	m, err := NewManager(WithConfigFile(path))
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, 9100, m.GetServerConfig().Port, "environment wins over file")
	assert.Equal(t, "sqlite", m.GetDatabaseConfig().Driver)
	assert.Equal(t, "/var/lib/oncodrug/annotations.db", cfg.Database.SQLitePath)
	assert.Equal(t, 8, cfg.Search.VariantPageSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, m.IsProduction())
	assert.NoError(t, m.Validate())
}

func TestNewManager_MissingExplicitFile(t *testing.T) {
	_, err := NewManager(WithConfigFile(filepath.Join(t.TempDir(), "absent.yaml")))
	assert.Error(t, err)
}

func TestManager_Reload(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 9001\n")
	m, err := NewManager(WithConfigFile(path))
	require.NoError(t, err)
	assert.Equal(t, 9001, m.GetServerConfig().Port)

	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9002\n"), 0600))
	require.NoError(t, m.Reload())
	assert.Equal(t, 9002, m.GetServerConfig().Port)
}

func TestManager_Validate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{"Defaults", "{}", false},
		{"Bad port", "server:\n  port: 70000\n", true},
		{"Unknown driver", "database:\n  driver: mysql\n", true},
		{"Postgres without host", "database:\n  host: \"\"\n", true},
		{"SQLite without path", "database:\n  driver: sqlite\n  sqlite_path: \"\"\n", true},
		{"TLS without cert", "server:\n  tls_enabled: true\n", true},
		{"Zero rate", "rate_limit:\n  requests_per_second: 0\n", true},
		{"Rate limit disabled", "rate_limit:\n  enabled: false\n  requests_per_second: 0\n", false},
		{"Page size above max", "search:\n  variant_page_size: 500\n", true},
		{"Bad log level", "logging:\n  level: verbose\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManager(WithConfigFile(writeConfigFile(t, tt.yaml)))
			require.NoError(t, err)

			err = m.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestManager_DatabaseStrings(t *testing.T) {
	m, err := NewManager(WithConfigFile(writeConfigFile(t, `
database:
  host: db
  port: 5433
  username: app
  password: pw
  database: drugs
`)))
	require.NoError(t, err)

	assert.Equal(t, "host=db port=5433 user=app password=pw dbname=drugs sslmode=disable", m.GetDatabaseConnectionString())
	assert.Equal(t, "postgres://app:pw@db:5433/drugs?sslmode=disable", m.GetDatabaseURL())
}
