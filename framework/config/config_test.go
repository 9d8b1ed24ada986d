package config_test

import (
	"os"
	"testing"

	"github.com/km-arc/go-resolver/framework/config"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func setEnv(t *testing.T, key, val string) {
	t.Helper()
	t.Setenv(key, val) // automatically restored after test
}

// unsetEnv clears key for the test and restores it afterwards. godotenv only
// fills variables that are absent, so keys read from a file must be unset.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "APP_NAME", "APP_ENV", "APP_DEBUG", "APP_PORT", "LOG_LEVEL", "LOG_FORMAT",
		"RESOLVER_DISPOSE_ON_NEW_SCOPE", "RESOLVER_METRICS", "RESOLVER_REQUEST_ID_HEADER")
	cfg := config.Load("testdata/empty.env")

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"App.Name", cfg.App.Name, "go-resolver"},
		{"App.Env", cfg.App.Env, "local"},
		{"App.Debug", cfg.App.Debug, true},
		{"App.Port", cfg.App.Port, "8000"},
		{"Log.Level", cfg.Log.Level, "info"},
		{"Log.Format", cfg.Log.Format, "console"},
		{"Resolver.DisposeOnNewScope", cfg.Resolver.DisposeOnNewScope, false},
		{"Resolver.Metrics", cfg.Resolver.Metrics, true},
		{"Resolver.RequestIDHeader", cfg.Resolver.RequestIDHeader, "X-Request-Id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	setEnv(t, "APP_NAME", "MyApp")
	setEnv(t, "APP_ENV", "production")
	setEnv(t, "APP_PORT", "9000")
	setEnv(t, "LOG_LEVEL", "debug")
	setEnv(t, "RESOLVER_METRICS", "false")

	cfg := config.Load("testdata/empty.env")

	if cfg.App.Name != "MyApp" {
		t.Errorf("App.Name: got %q want %q", cfg.App.Name, "MyApp")
	}
	if !cfg.IsProduction() {
		t.Errorf("IsProduction: got false for env %q", cfg.App.Env)
	}
	if cfg.App.Port != "9000" {
		t.Errorf("App.Port: got %q want %q", cfg.App.Port, "9000")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level: got %q want %q", cfg.Log.Level, "debug")
	}
	if cfg.Resolver.Metrics {
		t.Error("Resolver.Metrics: expected false")
	}
}

func TestLoad_ReadsDotenvFile(t *testing.T) {
	unsetEnv(t, "APP_NAME", "LOG_FORMAT", "RESOLVER_DISPOSE_ON_NEW_SCOPE")

	cfg := config.Load("testdata/app.env")

	if cfg.App.Name != "dotenv-app" {
		t.Errorf("App.Name: got %q want %q", cfg.App.Name, "dotenv-app")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format: got %q want %q", cfg.Log.Format, "json")
	}
	if !cfg.Resolver.DisposeOnNewScope {
		t.Error("Resolver.DisposeOnNewScope: expected true")
	}
}

func TestLoad_EnvironmentWinsOverDotenv(t *testing.T) {
	unsetEnv(t, "LOG_FORMAT", "RESOLVER_DISPOSE_ON_NEW_SCOPE")
	setEnv(t, "APP_NAME", "from-env")

	cfg := config.Load("testdata/app.env")

	if cfg.App.Name != "from-env" {
		t.Errorf("App.Name: got %q want %q", cfg.App.Name, "from-env")
	}
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	unsetEnv(t, "APP_NAME")
	cfg := config.Load("testdata/does-not-exist.env")
	if cfg.App.Name != "go-resolver" {
		t.Errorf("App.Name: got %q want default", cfg.App.Name)
	}
}

// ── Get / GetInt / GetBool ───────────────────────────────────────────────────

func TestGet_ReturnsValue(t *testing.T) {
	setEnv(t, "CUSTOM_KEY", "hello")
	if got := config.Get("CUSTOM_KEY", "default"); got != "hello" {
		t.Errorf("got %q want %q", got, "hello")
	}
}

func TestGet_ReturnsFallback(t *testing.T) {
	unsetEnv(t, "MISSING_KEY")
	if got := config.Get("MISSING_KEY", "fallback"); got != "fallback" {
		t.Errorf("got %q want %q", got, "fallback")
	}
}

func TestGetInt_ReturnsInt(t *testing.T) {
	setEnv(t, "SOME_INT", "42")
	if got := config.GetInt("SOME_INT", 0); got != 42 {
		t.Errorf("got %d want %d", got, 42)
	}
}

func TestGetInt_ReturnsFallbackOnInvalid(t *testing.T) {
	setEnv(t, "SOME_INT", "notanint")
	if got := config.GetInt("SOME_INT", 99); got != 99 {
		t.Errorf("got %d want %d", got, 99)
	}
}

func TestGetBool_True(t *testing.T) {
	for _, val := range []string{"true", "1", "True", "TRUE"} {
		setEnv(t, "BOOL_KEY", val)
		if !config.GetBool("BOOL_KEY", false) {
			t.Errorf("expected true for %q", val)
		}
	}
}

func TestGetBool_ReturnsFallbackOnInvalid(t *testing.T) {
	setEnv(t, "BOOL_KEY", "notabool")
	if !config.GetBool("BOOL_KEY", true) {
		t.Error("expected fallback true")
	}
}
