package main

import (
	"context"
	"log"
	"os"

	"github.com/LJTian/HotspotHub/internal/collector"
	"github.com/LJTian/HotspotHub/internal/config"
	"github.com/LJTian/HotspotHub/internal/ingest"
	"github.com/LJTian/HotspotHub/internal/storage"
)

// 一个仅执行一轮采集任务的命令行入口：适合手动触发采集
func main() {
	cfg := config.Load()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	// 确保各个分类登记存在（与 cmd/api 保持一致）
	for _, t := range collector.AllFeedTypes() {
		if _, err := store.EnsureFeed(string(t), t.Label()); err != nil {
			log.Fatalf("ensure feed %s failed: %v", t, err)
		}
	}

	fetchCtx := collector.NewFetchContext(cfg.HotspotBaseURL, cfg.HotspotFallbackURLs)
	fetchCtx.MaxAttempts = cfg.FetchMaxAttempts
	fetchCtx.BaseDelay = cfg.RetryBaseDelay
	fetchCtx.Client.Timeout = cfg.FetchTimeout

	pipeline := ingest.New(fetchCtx, store)
	pipeline.CalendarFallback = &collector.CalendarPageFallback{BaseURL: cfg.HotspotBaseURL}

	outcomes := pipeline.RunIngestion(context.Background(), collector.AllFeedTypes())

	failed := 0
	for t, o := range outcomes {
		if o.Err != nil {
			failed++
			log.Printf("%s: error: %v", t, o.Err)
			continue
		}
		log.Printf("%s: stored=%d skipped=%d", t, o.Stored, o.Skipped)
	}
	if failed == len(outcomes) {
		os.Exit(1)
	}
}
