// Package config provides configuration management for go-topics.
package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var AppVersion = "-unset-" // will be set at build time

const (
	DefaultWebPort         = 3000
	DefaultShutdownTimeout = 10 * time.Second

	DriverSQLite3  = "sqlite3"
	DriverPostgres = "postgres"
)

// MainConfig holds the configuration shared by both topic servers
type MainConfig struct {
	// Mutex for thread-safe access
	mux sync.Mutex `yaml:"-"`

	// Web interface settings
	Web WebConfig `yaml:"web"`

	// Flat file storage (topics-file)
	Storage StorageConfig `yaml:"storage"`

	// Relational storage (topics-sql)
	Database DatabaseConfig `yaml:"database"`

	AppVersion string `yaml:"-"` // Application version, set at build time
}

// WebConfig holds web interface configuration
type WebConfig struct {
	ListenPort int    `yaml:"listen_port"`
	BaseURL    string `yaml:"base_url"`
	SSL        bool   `yaml:"ssl"`
	CertFile   string `yaml:"cert_file,omitempty"`
	KeyFile    string `yaml:"key_file,omitempty"`
	Debug      bool   `yaml:"debug"`
}

// StorageConfig holds the flat file store configuration
type StorageConfig struct {
	DataDir string `yaml:"data_dir"` // Directory holding <title>.txt files
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver       string `yaml:"driver"` // sqlite3 or postgres
	Name         string `yaml:"name"`   // sqlite3: file path, postgres: database name
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	SSLMode      string `yaml:"sslmode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *MainConfig {
	maincfg := &MainConfig{
		AppVersion: AppVersion,
		Web: WebConfig{
			ListenPort: DefaultWebPort,
			BaseURL:    fmt.Sprintf("http://localhost:%d", DefaultWebPort),
		},
		Storage: StorageConfig{
			DataDir: "data",
		},
		Database: DatabaseConfig{
			Driver:       DriverSQLite3,
			Name:         "data/topics.sq3",
			Host:         "localhost",
			Port:         5432,
			User:         "root",
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
	}
	return maincfg
}

// LoadFile merges a YAML config file over the current values.
// Keys missing from the file keep their previous value.
func (mc *MainConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	mc.mux.Lock()
	defer mc.mux.Unlock()
	if err := yaml.Unmarshal(data, mc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	log.Printf("[CONFIG]: Loaded config file %s", path)
	return nil
}

// LoadEnv loads the given .env files (missing files are ignored) and applies
// the environment variables PORT, BASE_URL, DATA_DIR, DATABASE, PASSWORD,
// DB_DRIVER, DB_HOST, DB_PORT and DB_USER.
func (mc *MainConfig) LoadEnv(envFiles ...string) error {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
		log.Printf("[CONFIG]: Loaded env file %s", f)
	}

	mc.mux.Lock()
	defer mc.mux.Unlock()

	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		mc.Web.ListenPort = p
	}
	if v, ok := os.LookupEnv("DB_PORT"); ok && v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DB_PORT %q: %w", v, err)
		}
		mc.Database.Port = p
	}
	setFromEnv(&mc.Web.BaseURL, "BASE_URL")
	setFromEnv(&mc.Storage.DataDir, "DATA_DIR")
	setFromEnv(&mc.Database.Name, "DATABASE")
	setFromEnv(&mc.Database.Password, "PASSWORD")
	setFromEnv(&mc.Database.Driver, "DB_DRIVER")
	setFromEnv(&mc.Database.Host, "DB_HOST")
	setFromEnv(&mc.Database.User, "DB_USER")
	return nil
}

func setFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// Validate checks the web and database settings
func (mc *MainConfig) Validate() error {
	mc.mux.Lock()
	defer mc.mux.Unlock()

	if mc.Web.ListenPort < 1024 || mc.Web.ListenPort > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1024 and 65535)", mc.Web.ListenPort)
	}
	if mc.Web.SSL && (mc.Web.CertFile == "" || mc.Web.KeyFile == "") {
		return errors.New("SSL enabled but cert_file or key_file not specified in config")
	}
	if mc.Web.BaseURL != "" {
		if _, err := url.Parse(mc.Web.BaseURL); err != nil {
			return fmt.Errorf("invalid base_url %q: %w", mc.Web.BaseURL, err)
		}
	}
	switch mc.Database.Driver {
	case DriverSQLite3, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q (use %s or %s)", mc.Database.Driver, DriverSQLite3, DriverPostgres)
	}
	if mc.Database.Name == "" {
		return errors.New("database name must be set")
	}
	return nil
}

// DSN builds the data source name for the configured driver
func (dc *DatabaseConfig) DSN() string {
	switch dc.Driver {
	case DriverPostgres:
		u := &url.URL{
			Scheme: "postgres",
			Host:   fmt.Sprintf("%s:%d", dc.Host, dc.Port),
			Path:   "/" + dc.Name,
		}
		if dc.Password != "" {
			u.User = url.UserPassword(dc.User, dc.Password)
		} else if dc.User != "" {
			u.User = url.User(dc.User)
		}
		if dc.SSLMode != "" {
			u.RawQuery = "sslmode=" + url.QueryEscape(dc.SSLMode)
		}
		return u.String()
	default:
		return "file:" + dc.Name + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	}
}
