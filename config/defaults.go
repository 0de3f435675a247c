package config

import "time"

// Default returns the default daemon configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		RPC: RPCConfig{
			Addr:       "127.0.0.1",
			Port:       8645,
			AllowedIPs: []string{"127.0.0.1"},
			Timeout:    60 * time.Second,
		},
		Source: SourceConfig{
			Hosts: []string{"github.com"},
		},
		Verify: VerifyConfig{
			Mode: "all",
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "suitoken",
		},
		Log: LogConfig{
			Level:    "info",
			JSON:     false,
			MaxRolls: 8,
		},
	}
}
