package config

import (
	"fmt"
	"net"
	"strings"

	klog "github.com/Klingon-tech/sui-tokengen/internal/log"
)

// Validate checks runtime config for obvious operator mistakes. It
// normalizes host names and the verify mode in place.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.RPC.Port < 0 || cfg.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port must be in range [0, 65535]")
	}
	if cfg.RPC.Timeout < 0 {
		return fmt.Errorf("rpc.timeout must not be negative")
	}
	for i, entry := range cfg.RPC.AllowedIPs {
		if _, _, err := net.ParseCIDR(entry); err == nil {
			continue
		}
		if net.ParseIP(entry) == nil {
			return fmt.Errorf("rpc.allowed[%d] %q is not an IP or CIDR", i, entry)
		}
	}

	if len(cfg.Source.Hosts) == 0 {
		return fmt.Errorf("source.hosts must list at least one host")
	}
	for i, h := range cfg.Source.Hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" || strings.ContainsAny(h, "/:@ ") {
			return fmt.Errorf("source.hosts[%d] %q is not a host name", i, cfg.Source.Hosts[i])
		}
		cfg.Source.Hosts[i] = h
	}

	cfg.Verify.Mode = strings.ToLower(strings.TrimSpace(cfg.Verify.Mode))
	switch cfg.Verify.Mode {
	case "":
		cfg.Verify.Mode = "all"
	case "all", "first":
	default:
		return fmt.Errorf("verify.mode must be all or first")
	}

	if _, err := klog.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if cfg.Log.MaxRolls < 0 {
		return fmt.Errorf("log.maxrolls must not be negative")
	}
	return nil
}
