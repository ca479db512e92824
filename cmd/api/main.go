package main

import (
	"log"

	"github.com/LJTian/HotspotHub/internal/api"
	"github.com/LJTian/HotspotHub/internal/collector"
	"github.com/LJTian/HotspotHub/internal/config"
	"github.com/LJTian/HotspotHub/internal/ingest"
	"github.com/LJTian/HotspotHub/internal/scheduler"
	"github.com/LJTian/HotspotHub/internal/storage"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	// 确保各个分类登记存在
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

	s, err := scheduler.New(cfg.CronSpec, pipeline, collector.AllFeedTypes())
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	s.Start()

	// API
	r := gin.Default()
	apiServer := api.NewServer(store)
	apiServer.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}
