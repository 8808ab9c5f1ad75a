package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultWebPort, cfg.Web.ListenPort)
	assert.Equal(t, DriverSQLite3, cfg.Database.Driver)
	assert.Equal(t, "data", cfg.Storage.DataDir)
}

func TestLoadFileOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yaml")
	content := "web:\n  listen_port: 8088\ndatabase:\n  driver: postgres\n  name: opentutorials\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := NewDefaultConfig()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, 8088, cfg.Web.ListenPort)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "opentutorials", cfg.Database.Name)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "data", cfg.Storage.DataDir)
}

func TestLoadFileMissing(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Error(t, cfg.LoadFile(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("DATABASE", "tutorial")
	t.Setenv("PASSWORD", "secret")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATA_DIR", "/srv/topics")

	cfg := NewDefaultConfig()
	require.NoError(t, cfg.LoadEnv(filepath.Join(t.TempDir(), "missing.env")))

	assert.Equal(t, 4000, cfg.Web.ListenPort)
	assert.Equal(t, "tutorial", cfg.Database.Name)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "/srv/topics", cfg.Storage.DataDir)
}

func TestLoadEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("BASE_URL=http://topics.example:5000\n"), 0o644))
	// godotenv never overrides variables that are already set
	t.Setenv("BASE_URL", "")
	os.Unsetenv("BASE_URL")

	cfg := NewDefaultConfig()
	require.NoError(t, cfg.LoadEnv(envFile))
	t.Cleanup(func() { os.Unsetenv("BASE_URL") })

	assert.Equal(t, "http://topics.example:5000", cfg.Web.BaseURL)
}

func TestLoadEnvBadPort(t *testing.T) {
	t.Setenv("PORT", "eighty")
	cfg := NewDefaultConfig()
	assert.Error(t, cfg.LoadEnv())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MainConfig)
	}{
		{"low port", func(c *MainConfig) { c.Web.ListenPort = 80 }},
		{"high port", func(c *MainConfig) { c.Web.ListenPort = 70000 }},
		{"ssl without cert", func(c *MainConfig) { c.Web.SSL = true }},
		{"unknown driver", func(c *MainConfig) { c.Database.Driver = "mysql" }},
		{"empty database name", func(c *MainConfig) { c.Database.Name = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDSN(t *testing.T) {
	sq := DatabaseConfig{Driver: DriverSQLite3, Name: "data/topics.sq3"}
	assert.Equal(t, "file:data/topics.sq3?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", sq.DSN())

	pg := DatabaseConfig{
		Driver:   DriverPostgres,
		Name:     "tutorial",
		Host:     "db",
		Port:     5432,
		User:     "root",
		Password: "p@ss",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://root:p%40ss@db:5432/tutorial?sslmode=disable", pg.DSN())
}
