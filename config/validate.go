package config

import "fmt"

// Validate checks runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.HTTP.Port < 0 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be in range [0, 65535]")
	}
	if cfg.Storage.Backend != BackendMemory && cfg.Storage.Backend != BackendBadger {
		return fmt.Errorf("storage.backend must be %q or %q", BackendMemory, BackendBadger)
	}
	if cfg.Admin.Password == "" {
		return fmt.Errorf("admin.password must not be empty")
	}
	if cfg.Admin.TokenTTLMinutes <= 0 {
		return fmt.Errorf("admin.token_ttl must be positive")
	}
	return nil
}
