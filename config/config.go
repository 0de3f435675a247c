// Package config handles suitokend configuration.
//
// Settings are resolved in order: built-in defaults, the key = value config
// file in the data directory, then command-line flags.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"
)

// Version is reported by --version and the server_info RPC.
const Version = "0.1.0"

// Config holds daemon runtime configuration.
type Config struct {
	DataDir string `conf:"datadir"`

	// RPC server
	RPC RPCConfig

	// Remote repository access
	Source SourceConfig

	// Verification behaviour
	Verify VerifyConfig

	// Prometheus endpoint
	Metrics MetricsConfig

	// Logging
	Log LogConfig
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Addr        string        `conf:"rpc.addr"`
	Port        int           `conf:"rpc.port"`
	AllowedIPs  []string      `conf:"rpc.allowed"`
	CORSOrigins []string      `conf:"rpc.cors"`    // Allowed CORS origins ("*" = all).
	Timeout     time.Duration `conf:"rpc.timeout"` // Per-request deadline.
	WebSocket   bool          `conf:"rpc.ws"`      // Serve JSON-RPC on /ws as well.
}

// ListenAddr returns addr:port.
func (c RPCConfig) ListenAddr() string {
	return net.JoinHostPort(c.Addr, strconv.Itoa(c.Port))
}

// SourceConfig controls how verify_url fetches repositories.
type SourceConfig struct {
	Hosts     []string `conf:"source.hosts"`   // Allowed git hosts.
	GitBinary string   `conf:"source.git"`     // git executable ("" = from PATH).
	WorkDir   string   `conf:"source.workdir"` // Parent of temporary clones ("" = system temp).
}

// VerifyConfig controls verification.
type VerifyConfig struct {
	Mode string `conf:"verify.mode"` // "all" or "first" .move file.
}

// MetricsConfig controls the /metrics endpoint.
type MetricsConfig struct {
	Enabled   bool   `conf:"metrics.enabled"`
	Namespace string `conf:"metrics.namespace"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level    string `conf:"log.level"`
	File     string `conf:"log.file"`
	JSON     bool   `conf:"log.json"`
	MaxRolls int    `conf:"log.maxrolls"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.suitoken
//	macOS:   ~/Library/Application Support/SuiToken
//	Windows: %APPDATA%\SuiToken
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".suitoken"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "SuiToken")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "SuiToken")
		}
		return filepath.Join(home, "AppData", "Roaming", "SuiToken")
	default:
		return filepath.Join(home, ".suitoken")
	}
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "suitokend.conf")
}

// LogFile resolves Log.File against the logs directory. Relative names are
// placed under LogsDir; "" means no log file.
func (c *Config) LogFile() string {
	if c.Log.File == "" || filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(c.LogsDir(), c.Log.File)
}

// EnsureDataDirs creates the data directory and a default config file if
// they don't already exist. Safe to call on every startup.
func EnsureDataDirs(cfg *Config) error {
	for _, dir := range []string{cfg.DataDir, cfg.LogsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}
	return nil
}
