// Package config handles walletsimd runtime configuration.
//
// Precedence, lowest to highest: built-in defaults, the .conf file, command
// line flags, then the WALLETSIM_ADMIN_PASSWORD environment variable for the
// admin secret.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Storage backend names.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// Config holds the daemon's runtime configuration.
type Config struct {
	DataDir string `conf:"datadir"`

	// HTTP API server
	HTTP HTTPConfig

	// Admin authentication
	Admin AdminConfig

	// Storage backend for wallet records and the transaction ledger
	Storage StorageConfig

	// Balance oracle
	Oracle OracleConfig

	// Logging
	Log LogConfig
}

// HTTPConfig holds API server settings.
type HTTPConfig struct {
	Addr        string   `conf:"http.addr"`
	Port        int      `conf:"http.port"`
	AllowedIPs  []string `conf:"http.allowed"`
	CORSOrigins []string `conf:"http.cors"` // Allowed CORS origins ("*" = all).
}

// AdminConfig holds admin authentication settings. The password is never
// written back to disk by the daemon.
type AdminConfig struct {
	Password        string `conf:"admin.password"`
	TokenTTLMinutes int    `conf:"admin.token_ttl"`
}

// StorageConfig selects the backing store. The memory backend keeps all
// simulator state in the process; badger writes to Dir (or an in-memory
// Badger instance when Dir is empty).
type StorageConfig struct {
	Backend string `conf:"storage.backend"`
	Dir     string `conf:"storage.dir"`
}

// OracleConfig holds balance simulation settings. A zero seed draws a fresh
// sequence each run; a fixed seed reproduces balances across runs.
type OracleConfig struct {
	Seed int64 `conf:"oracle.seed"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.walletsim
//	macOS:   ~/Library/Application Support/Walletsim
//	Windows: %APPDATA%\Walletsim
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".walletsim"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Walletsim")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Walletsim")
		}
		return filepath.Join(home, "AppData", "Roaming", "Walletsim")
	default:
		return filepath.Join(home, ".walletsim")
	}
}

// StorageDir returns the directory for the Badger backend.
func (c *Config) StorageDir() string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	return filepath.Join(c.DataDir, "db")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "walletsim.conf")
}
