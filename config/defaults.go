package config

// DefaultAdminPassword is the development default. Operators override it via
// the config file, WALLETSIM_ADMIN_PASSWORD, or --prompt-password.
const DefaultAdminPassword = "admin123"

// Default returns the default daemon configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		HTTP: HTTPConfig{
			Addr: "127.0.0.1",
			Port: 3000,
			// Empty allowlist = all IPs; this is a local simulator.
			AllowedIPs:  []string{},
			CORSOrigins: []string{"*"},
		},
		Admin: AdminConfig{
			Password:        DefaultAdminPassword,
			TokenTTLMinutes: 60,
		},
		Storage: StorageConfig{
			Backend: BackendMemory,
		},
		Oracle: OracleConfig{
			Seed: 0,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}
