package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppPort string

	PostgresDSN string
	RedisAddr   string

	CronSpec string

	// 上游热点站点：主站 + 备用镜像（逗号分隔）
	HotspotBaseURL      string
	HotspotFallbackURLs []string

	FetchMaxAttempts int
	FetchTimeout     time.Duration
	RetryBaseDelay   time.Duration
}

func Load() *Config {
	cfg := &Config{
		AppPort:     getEnv("APP_PORT", "9000"),
		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost user=hotspothub password=hotspothub dbname=hotspothub port=5432 sslmode=disable TimeZone=UTC"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6380"),
		CronSpec:    getEnv("CRON_SPEC", "*/30 * * * *"),

		HotspotBaseURL:      getEnv("HOTSPOT_BASE_URL", "https://duanxianxia.com"),
		HotspotFallbackURLs: getEnvList("HOTSPOT_FALLBACK_URLS"),

		FetchMaxAttempts: getEnvInt("FETCH_MAX_ATTEMPTS", 3),
		FetchTimeout:     time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 15)) * time.Second,
		RetryBaseDelay:   time.Duration(getEnvInt("RETRY_BASE_DELAY_MS", 1000)) * time.Millisecond,
	}

	log.Printf("config loaded: port=%s cron=%s upstream=%s fallbacks=%d",
		cfg.AppPort, cfg.CronSpec, cfg.HotspotBaseURL, len(cfg.HotspotFallbackURLs))
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		log.Printf("config: invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

// getEnvList 解析逗号分隔的列表，忽略空段
func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
