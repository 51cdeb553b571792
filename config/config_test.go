package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walletsim.conf")
	content := `# walletsim test config
http.addr = 0.0.0.0
http.port = 8080
http.cors = "http://localhost:5173, http://localhost:3000"
admin.password = 'hunter2'
admin.token_ttl = 15
storage.backend = badger
oracle.seed = 42
log.level = debug
log.json = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	cfg := Default()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig() error: %v", err)
	}

	if cfg.HTTP.Addr != "0.0.0.0" {
		t.Errorf("HTTP.Addr = %q, want 0.0.0.0", cfg.HTTP.Addr)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("HTTP.Port = %d, want 8080", cfg.HTTP.Port)
	}
	if len(cfg.HTTP.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v, want 2 entries", cfg.HTTP.CORSOrigins)
	}
	if cfg.Admin.Password != "hunter2" {
		t.Errorf("Admin.Password = %q, want hunter2", cfg.Admin.Password)
	}
	if cfg.Admin.TokenTTLMinutes != 15 {
		t.Errorf("TokenTTLMinutes = %d, want 15", cfg.Admin.TokenTTLMinutes)
	}
	if cfg.Storage.Backend != BackendBadger {
		t.Errorf("Storage.Backend = %q, want badger", cfg.Storage.Backend)
	}
	if cfg.Oracle.Seed != 42 {
		t.Errorf("Oracle.Seed = %d, want 42", cfg.Oracle.Seed)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Errorf("Log = %+v, want level debug json true", cfg.Log)
	}
}

func TestLoadFileMissingIsEmpty(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "nope.conf"))
	if err != nil {
		t.Fatalf("LoadFile() on missing file error: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("LoadFile() on missing file = %v, want empty", values)
	}
}

func TestApplyFileConfigRejectsUnknownKey(t *testing.T) {
	cfg := Default()
	err := ApplyFileConfig(cfg, map[string]string{"no.such.key": "1"})
	if err == nil {
		t.Error("ApplyFileConfig() accepted unknown key")
	}
}

func TestApplyFlags(t *testing.T) {
	flags, err := parseFlags([]string{
		"-port", "9000",
		"-storage", "badger",
		"-seed", "7",
		"-log-json",
	})
	if err != nil {
		t.Fatalf("parseFlags() error: %v", err)
	}

	cfg := Default()
	ApplyFlags(cfg, flags)

	if cfg.HTTP.Port != 9000 {
		t.Errorf("HTTP.Port = %d, want 9000", cfg.HTTP.Port)
	}
	if cfg.Storage.Backend != BackendBadger {
		t.Errorf("Storage.Backend = %q, want badger", cfg.Storage.Backend)
	}
	if cfg.Oracle.Seed != 7 {
		t.Errorf("Oracle.Seed = %d, want 7", cfg.Oracle.Seed)
	}
	if !cfg.Log.JSON {
		t.Error("Log.JSON = false, want true")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.HTTP.Port = 70000 }, true},
		{"bad backend", func(c *Config) { c.Storage.Backend = "postgres" }, true},
		{"empty password", func(c *Config) { c.Admin.Password = "" }, true},
		{"zero ttl", func(c *Config) { c.Admin.TokenTTLMinutes = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
