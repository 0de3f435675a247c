package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	DataDir string
	Config  string

	// RPC
	RPCAddr    string
	RPCPort    int
	RPCAllowed string
	RPCCORS    string
	RPCTimeout time.Duration
	WS         bool

	// Source / verify
	GitHosts   string
	GitBinary  string
	WorkDir    string
	VerifyMode string

	// Metrics
	Metrics bool

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetWS      bool
	SetMetrics bool
	SetLogJSON bool
}

// ParseFlags parses command-line flags from args (without the program name).
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("suitokend", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	// Core
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	// RPC
	fs.StringVar(&f.RPCAddr, "rpc-addr", "", "RPC listen address")
	fs.IntVar(&f.RPCPort, "rpc-port", 0, "RPC listen port")
	fs.StringVar(&f.RPCAllowed, "rpc-allowed", "", "Allowed IPs for RPC")
	fs.StringVar(&f.RPCCORS, "rpc-cors", "", "Allowed CORS origins for RPC (comma-separated)")
	fs.DurationVar(&f.RPCTimeout, "rpc-timeout", 0, "Per-request deadline")
	fs.BoolVar(&f.WS, "ws", false, "Serve JSON-RPC over WebSocket at /ws")

	// Source / verify
	fs.StringVar(&f.GitHosts, "git-hosts", "", "Allowed git hosts (comma-separated)")
	fs.StringVar(&f.GitBinary, "git", "", "git executable")
	fs.StringVar(&f.WorkDir, "workdir", "", "Parent directory for temporary clones")
	fs.StringVar(&f.VerifyMode, "verify-mode", "", "Verify all or first .move file")

	// Metrics
	fs.BoolVar(&f.Metrics, "metrics", false, "Expose Prometheus metrics at /metrics")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	f.SetWS = isFlagSet(fs, "ws")
	f.SetMetrics = isFlagSet(fs, "metrics")
	f.SetLogJSON = isFlagSet(fs, "log-json")

	f.Args = fs.Args()

	// A positional argument stops flag parsing; anything after it that looks
	// like a flag was silently dropped.
	for _, arg := range f.Args {
		if strings.HasPrefix(arg, "-") {
			return nil, fmt.Errorf("flag %q was not parsed (positional argument stopped parsing)", arg)
		}
	}
	return f, nil
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// RPC
	if f.RPCAddr != "" {
		cfg.RPC.Addr = f.RPCAddr
	}
	if f.RPCPort != 0 {
		cfg.RPC.Port = f.RPCPort
	}
	if f.RPCAllowed != "" {
		cfg.RPC.AllowedIPs = parseStringList(f.RPCAllowed)
	}
	if f.RPCCORS != "" {
		cfg.RPC.CORSOrigins = parseStringList(f.RPCCORS)
	}
	if f.RPCTimeout != 0 {
		cfg.RPC.Timeout = f.RPCTimeout
	}
	if f.SetWS {
		cfg.RPC.WebSocket = f.WS
	}

	// Source / verify
	if f.GitHosts != "" {
		cfg.Source.Hosts = parseStringList(f.GitHosts)
	}
	if f.GitBinary != "" {
		cfg.Source.GitBinary = f.GitBinary
	}
	if f.WorkDir != "" {
		cfg.Source.WorkDir = f.WorkDir
	}
	if f.VerifyMode != "" {
		cfg.Verify.Mode = f.VerifyMode
	}

	// Metrics
	if f.SetMetrics {
		cfg.Metrics.Enabled = f.Metrics
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintUsage writes the daemon help text to stdout.
func PrintUsage() {
	usage := `suitokend - Sui Move coin generator and verifier (JSON-RPC)

Usage:
  suitokend [options]
  suitokend --help

Commands:
  --help, -h      Show this help message
  --version, -v   Show version information

Core Options:
  --datadir       Data directory (default: ~/.suitoken)
  --config, -c    Config file path (default: <datadir>/suitokend.conf)

RPC Options:
  --rpc-addr      RPC listen address (default: 127.0.0.1)
  --rpc-port      RPC port (default: 8645)
  --rpc-allowed   Allowed IPs for RPC (comma-separated)
  --rpc-cors      Allowed CORS origins for RPC (comma-separated)
  --rpc-timeout   Per-request deadline (default: 60s)
  --ws            Also serve JSON-RPC over WebSocket at /ws

Verification Options:
  --git-hosts     Hosts verify_url may clone from (default: github.com)
  --git           git executable (default: git from PATH)
  --workdir       Parent directory for temporary clones
  --verify-mode   Verify all (default) or first .move file

Metrics Options:
  --metrics       Expose Prometheus metrics at /metrics

Logging Options:
  --log-level     Log level: debug, info, warn, error (default: info)
  --log-file      Log file, relative to <datadir>/logs (default: none)
  --log-json      Output logs as JSON

Examples:
  # Start with defaults
  suitokend

  # Listen on all interfaces for a private network
  suitokend --rpc-addr=0.0.0.0 --rpc-allowed=10.0.0.0/8

  # Enable metrics and WebSocket
  suitokend --metrics --ws
`
	fmt.Print(usage)
}

// Load loads configuration with the following precedence:
// 1. Default values
// 2. Auto-create data dir + default config (idempotent)
// 3. Config file
// 4. Command-line flags
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, nil, err
	}
	if flags.Help || flags.Version {
		return nil, flags, nil
	}

	cfg := Default()
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}

	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	// Flags have the highest precedence.
	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, flags, nil
}

// LoadOrExit wraps Load for main packages: it prints usage or version and
// exits when asked to, and exits non-zero on errors.
func LoadOrExit() *Config {
	cfg, flags, err := Load(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			PrintUsage()
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flags.Help {
		PrintUsage()
		os.Exit(0)
	}
	if flags.Version {
		fmt.Println("suitokend version " + Version)
		os.Exit(0)
	}
	return cfg
}
