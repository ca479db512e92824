package config

import (
	"os"
	"testing"
	"time"
)

func TestGetEnvWithDefault(t *testing.T) {
	const key = "TEST_APP_PORT"

	// 环境变量未设置时，应该返回默认值
	_ = os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "9000" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "9000")
	}

	// 环境变量设置后，应优先返回环境变量
	if err := os.Setenv(key, "8080"); err != nil {
		t.Fatalf("Setenv error: %v", err)
	}
	defer os.Unsetenv(key)
	if got := getEnv(key, "9000"); got != "8080" {
		t.Fatalf("getEnv(%q) = %q, want %q", key, got, "8080")
	}
}

func TestGetEnvIntRejectsInvalid(t *testing.T) {
	const key = "TEST_FETCH_MAX_ATTEMPTS"
	defer os.Unsetenv(key)

	_ = os.Unsetenv(key)
	if got := getEnvInt(key, 3); got != 3 {
		t.Fatalf("getEnvInt default = %d, want 3", got)
	}

	_ = os.Setenv(key, "5")
	if got := getEnvInt(key, 3); got != 5 {
		t.Fatalf("getEnvInt = %d, want 5", got)
	}

	// 非法或非正数回落到默认值
	for _, bad := range []string{"abc", "-1", "0"} {
		_ = os.Setenv(key, bad)
		if got := getEnvInt(key, 3); got != 3 {
			t.Fatalf("getEnvInt(%q) = %d, want default 3", bad, got)
		}
	}
}

func TestGetEnvListSplitsAndTrims(t *testing.T) {
	const key = "TEST_FALLBACK_URLS"
	defer os.Unsetenv(key)

	_ = os.Unsetenv(key)
	if got := getEnvList(key); len(got) != 0 {
		t.Fatalf("getEnvList unset = %v, want empty", got)
	}

	_ = os.Setenv(key, "https://a.example.com, https://b.example.com ,, ")
	got := getEnvList(key)
	if len(got) != 2 {
		t.Fatalf("getEnvList = %v, want 2 entries", got)
	}
	if got[0] != "https://a.example.com" || got[1] != "https://b.example.com" {
		t.Fatalf("getEnvList entries wrong: %v", got)
	}
}

func TestLoadReadsUpstreamKnobs(t *testing.T) {
	_ = os.Setenv("APP_PORT", "1234")
	_ = os.Setenv("HOTSPOT_BASE_URL", "https://mirror.example.com")
	_ = os.Setenv("FETCH_TIMEOUT_SECONDS", "7")
	defer func() {
		_ = os.Unsetenv("APP_PORT")
		_ = os.Unsetenv("HOTSPOT_BASE_URL")
		_ = os.Unsetenv("FETCH_TIMEOUT_SECONDS")
	}()

	cfg := Load()
	if cfg.AppPort != "1234" {
		t.Fatalf("AppPort = %q, want %q", cfg.AppPort, "1234")
	}
	if cfg.HotspotBaseURL != "https://mirror.example.com" {
		t.Fatalf("HotspotBaseURL = %q", cfg.HotspotBaseURL)
	}
	if cfg.FetchTimeout != 7*time.Second {
		t.Fatalf("FetchTimeout = %v, want 7s", cfg.FetchTimeout)
	}
}
