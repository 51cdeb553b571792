package config

import (
	"flag"
	"fmt"
	"os"
)

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	DataDir string
	Config  string

	// HTTP
	Addr    string
	Port    int
	Allowed string
	CORS    string

	// Admin. The password itself is never a flag (it would leak into
	// process listings); use the config file, the environment, or the
	// interactive prompt.
	TokenTTL       int
	PromptPassword bool

	// Storage
	Backend    string
	StorageDir string

	// Oracle
	Seed int64

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Explicitly-set bool flags (for true/false overrides).
	SetLogJSON bool
}

// ParseFlags parses command-line flags.
func ParseFlags() (*Flags, error) {
	return parseFlags(os.Args[1:])
}

func parseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("walletsimd", flag.ContinueOnError)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")

	// Core
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	// HTTP
	fs.StringVar(&f.Addr, "addr", "", "HTTP listen address")
	fs.IntVar(&f.Port, "port", 0, "HTTP listen port")
	fs.StringVar(&f.Allowed, "allowed", "", "Allowed client IPs/CIDRs, comma-separated (empty = all)")
	fs.StringVar(&f.CORS, "cors", "", "Allowed CORS origins, comma-separated")

	// Admin
	fs.IntVar(&f.TokenTTL, "token-ttl", 0, "Admin session token lifetime in minutes")
	fs.BoolVar(&f.PromptPassword, "prompt-password", false, "Prompt for the admin password on startup")

	// Storage
	fs.StringVar(&f.Backend, "storage", "", "Storage backend (memory or badger)")
	fs.StringVar(&f.StorageDir, "storage-dir", "", "Badger database directory")

	// Oracle
	fs.Int64Var(&f.Seed, "seed", 0, "Balance oracle seed (0 = random per run)")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path (also logs to console)")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Log JSON to console instead of colored output")

	fs.Usage = printUsage

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "log-json" {
			f.SetLogJSON = true
		}
	})

	return f, nil
}

// ApplyFlags overlays explicitly-set flags onto cfg.
func ApplyFlags(cfg *Config, f *Flags) {
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.Addr != "" {
		cfg.HTTP.Addr = f.Addr
	}
	if f.Port != 0 {
		cfg.HTTP.Port = f.Port
	}
	if f.Allowed != "" {
		cfg.HTTP.AllowedIPs = parseStringList(f.Allowed)
	}
	if f.CORS != "" {
		cfg.HTTP.CORSOrigins = parseStringList(f.CORS)
	}
	if f.TokenTTL != 0 {
		cfg.Admin.TokenTTLMinutes = f.TokenTTL
	}
	if f.Backend != "" {
		cfg.Storage.Backend = f.Backend
	}
	if f.StorageDir != "" {
		cfg.Storage.Dir = f.StorageDir
	}
	if f.Seed != 0 {
		cfg.Oracle.Seed = f.Seed
	}
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

// printUsage prints command-line help.
func printUsage() {
	usage := `walletsimd - simulated custodial wallet backend

Usage:
  walletsimd [options]

Core Options:
  --help, -h      Show this help message
  --version       Show version information
  --datadir       Data directory (default: ~/.walletsim)
  --config, -c    Config file path (default: <datadir>/walletsim.conf)

HTTP Options:
  --addr          HTTP listen address (default: 127.0.0.1)
  --port          HTTP listen port (default: 3000)
  --allowed       Allowed client IPs/CIDRs, comma-separated (empty = all)
  --cors          Allowed CORS origins, comma-separated (default: *)

Admin Options:
  --token-ttl        Admin session token lifetime in minutes (default: 60)
  --prompt-password  Prompt for the admin password on startup

Storage Options:
  --storage       Storage backend: memory or badger (default: memory)
  --storage-dir   Badger database directory (default: <datadir>/db)

Oracle Options:
  --seed          Balance oracle seed; 0 draws fresh balances each run

Logging Options:
  --log-level     Log level: debug, info, warn, error (default: info)
  --log-file      Log file path (default: stdout)
  --log-json      Output logs as JSON

Examples:
  # Start with in-memory state on the default port
  walletsimd

  # Persist state across restarts
  walletsimd --storage=badger

  # Read the admin password interactively instead of from config
  walletsimd --prompt-password

Note:
  The admin password can also be set via the WALLETSIM_ADMIN_PASSWORD
  environment variable, which overrides the config file.
`
	fmt.Print(usage)
}

// Load builds the effective configuration: defaults, then the config file,
// then flags, then the WALLETSIM_ADMIN_PASSWORD environment variable.
func Load() (*Config, *Flags, error) {
	flags, err := ParseFlags()
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		return nil, nil, err
	}

	if flags.Help {
		printUsage()
		os.Exit(0)
	}

	cfg := Default()
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	path := flags.Config
	if path == "" {
		path = cfg.ConfigFile()
	}
	values, err := LoadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, values); err != nil {
		return nil, nil, err
	}

	ApplyFlags(cfg, flags)

	if pw := os.Getenv("WALLETSIM_ADMIN_PASSWORD"); pw != "" {
		cfg.Admin.Password = pw
	}

	if err := Validate(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, flags, nil
}
