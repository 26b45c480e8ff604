package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.Port != 8080 || cfg.Share.SlugRetries != 5 || cfg.Editor.AutoSaveDelay != 2*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Redis.Addr() != "localhost:6379" {
		t.Fatalf("redis addr = %s", cfg.Redis.Addr())
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("API_PORT", "9090")
	t.Setenv("EDITOR_AUTOSAVE_DELAY", "750ms")
	t.Setenv("SHARE_PUBLIC_BASE_URL", "https://cv.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.Port != 9090 || cfg.Editor.AutoSaveDelay != 750*time.Millisecond || cfg.Share.PublicBaseURL != "https://cv.example.com" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("EDITOR_HISTORY_LIMIT=7\nAPI_PORT=7000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)
	t.Setenv("API_PORT", "7100")
	t.Cleanup(func() { os.Unsetenv("EDITOR_HISTORY_LIMIT") })

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Editor.HistoryLimit != 7 {
		t.Fatalf("history limit = %d, want 7 from .env", cfg.Editor.HistoryLimit)
	}
	if cfg.API.Port != 7100 {
		t.Fatalf("api port = %d, environment must win", cfg.API.Port)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SHARE_PUBLIC_BASE_URL", "cv.example.com")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for base url without scheme")
	}
}

func TestStorageIsOptionalButValidatedWhenSet(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Enabled() {
		t.Fatal("storage must be disabled without an endpoint")
	}

	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	if _, err := Load(); err == nil {
		t.Fatal("expected credentials to be required once an endpoint is set")
	}

	t.Setenv("MINIO_ACCESS_KEY_ID", "minio")
	t.Setenv("MINIO_SECRET_ACCESS_KEY", "minio-secret")
	t.Setenv("API_ALLOWED_ORIGINS", "https://cv.example.com, ,https://app.example.com")
	cfg, err = Load()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Storage.Enabled() || cfg.Storage.Bucket != "resume-exports" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if got := cfg.API.Origins(); len(got) != 2 || got[1] != "https://app.example.com" {
		t.Fatalf("origins = %q", got)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
