package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TZ", "")
	path := writeConfig(t, `
app:
  env: dev
storage:
  driver: memory
jwt:
  secret: s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.DefaultTimezone != "UTC" {
		t.Errorf("default timezone = %q", cfg.App.DefaultTimezone)
	}
	if cfg.ProfilesDriver() != DriverMemory {
		t.Errorf("profiles driver = %q", cfg.ProfilesDriver())
	}
	if cfg.Redis.DraftTTL != 168*time.Hour {
		t.Errorf("draft ttl = %v", cfg.Redis.DraftTTL)
	}
	if cfg.JWT.AccessTokenTTL != 2*time.Hour || cfg.Server.Port != 8080 {
		t.Errorf("jwt/server defaults not applied: %+v %+v", cfg.JWT, cfg.Server)
	}
}

func TestLoadTimezone(t *testing.T) {
	tests := []struct {
		name string
		tz   string
		yaml string
		want string
	}{
		{"runtime", "America/New_York", "", "America/New_York"},
		{"runtime with colon", ":Asia/Tokyo", "", "Asia/Tokyo"},
		{"configured wins", "America/New_York", "  default_timezone: Europe/Paris\n", "Europe/Paris"},
		{"fallback", "", "", "UTC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TZ", tt.tz)
			cfg, err := Load(writeConfig(t, "app:\n  env: dev\n"+tt.yaml+"jwt:\n  secret: s\nstorage:\n  driver: memory\n"))
			if err != nil {
				t.Fatal(err)
			}
			if cfg.App.DefaultTimezone != tt.want {
				t.Errorf("default timezone = %q, want %q", cfg.App.DefaultTimezone, tt.want)
			}
		})
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad env", "app:\n  env: staging\njwt:\n  secret: s\nstorage:\n  driver: memory\n"},
		{"missing secret", "app:\n  env: dev\nstorage:\n  driver: memory\n"},
		{"postgres without dsn", "app:\n  env: prod\njwt:\n  secret: s\nstorage:\n  driver: postgres\n"},
		{"mongo profiles without dsn", "app:\n  env: prod\njwt:\n  secret: s\nstorage:\n  driver: postgres\n  profiles: mongo\n"},
		{"unknown driver", "app:\n  env: dev\njwt:\n  secret: s\nstorage:\n  driver: sqlite\n"},
		{"bad timezone", "app:\n  env: dev\n  default_timezone: Mars/Olympus\njwt:\n  secret: s\nstorage:\n  driver: memory\n"},
		{"local timezone", "app:\n  env: dev\n  default_timezone: Local\njwt:\n  secret: s\nstorage:\n  driver: memory\n"},
		{"mixed memory", "app:\n  env: dev\njwt:\n  secret: s\ndb:\n  dsn: x\nstorage:\n  driver: postgres\n  profiles: memory\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, ErrConfigNotLoaded) {
				t.Errorf("err = %v", err)
			}
		})
	}
}
