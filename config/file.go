package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFile loads configuration from a .conf file.
// Format: key = value (one per line, # for comments). A missing file yields
// no values.
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a config value by key. Unknown keys are ignored.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	case "datadir":
		cfg.DataDir = value

	// RPC
	case "rpc.addr":
		cfg.RPC.Addr = value
	case "rpc.port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.RPC.Port = port
	case "rpc.allowed":
		cfg.RPC.AllowedIPs = parseStringList(value)
	case "rpc.cors":
		cfg.RPC.CORSOrigins = parseStringList(value)
	case "rpc.timeout":
		d, err := parseDuration(value)
		if err != nil {
			return err
		}
		cfg.RPC.Timeout = d
	case "rpc.ws":
		cfg.RPC.WebSocket = parseBool(value)

	// Source
	case "source.hosts":
		cfg.Source.Hosts = parseStringList(value)
	case "source.git":
		cfg.Source.GitBinary = value
	case "source.workdir":
		cfg.Source.WorkDir = value

	// Verify
	case "verify.mode":
		cfg.Verify.Mode = value

	// Metrics
	case "metrics.enabled", "metrics":
		cfg.Metrics.Enabled = parseBool(value)
	case "metrics.namespace":
		cfg.Metrics.Namespace = value

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)
	case "log.maxrolls":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Log.MaxRolls = n

	default:
		// Unknown keys are ignored
	}
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// parseDuration accepts Go durations ("90s", "2m") or bare seconds ("90").
func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// parseStringList parses a comma-separated list.
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// WriteDefaultConfig writes a default configuration file.
func WriteDefaultConfig(path string) error {
	content := `# suitokend configuration
#
# Format: key = value. Command-line flags override these settings.

# Data directory (default: ~/.suitoken)
# datadir = ~/.suitoken

# ============================================================================
# RPC Server
# ============================================================================

rpc.addr = 127.0.0.1
rpc.port = 8645
rpc.allowed = 127.0.0.1
# CORS allowed origins ("*" for all)
# rpc.cors = http://localhost:3000

# Per-request deadline (covers git clones for verify_url)
rpc.timeout = 60s

# Serve the same JSON-RPC methods over a WebSocket at /ws
rpc.ws = false

# ============================================================================
# Source Repositories
# ============================================================================

# Hosts verify_url may clone from (comma-separated)
source.hosts = github.com

# git executable (default: git from PATH)
# source.git = /usr/bin/git

# Parent directory for temporary clones (default: system temp dir)
# source.workdir =

# ============================================================================
# Verification
# ============================================================================

# Which .move files to verify: all or first
verify.mode = all

# ============================================================================
# Metrics
# ============================================================================

# Expose Prometheus metrics at /metrics on the RPC listener
metrics.enabled = false
metrics.namespace = suitoken

# ============================================================================
# Logging
# ============================================================================

log.level = info
# Log file, relative to <datadir>/logs (rotated, always JSON)
# log.file = suitokend.log
log.json = false
log.maxrolls = 8
`
	return os.WriteFile(path, []byte(content), 0o644)
}
