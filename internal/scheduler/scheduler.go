package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/LJTian/HotspotHub/internal/collector"
	"github.com/LJTian/HotspotHub/internal/ingest"
	"github.com/robfig/cron/v3"
)

// Scheduler 定时触发采集的薄封装：按 cron 表达式调用一轮采集并记录结果
type Scheduler struct {
	cron     *cron.Cron
	pipeline *ingest.Pipeline
	types    []collector.FeedType
}

func New(spec string, pipeline *ingest.Pipeline, types []collector.FeedType) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:     c,
		pipeline: pipeline,
		types:    types,
	}

	_, err := c.AddFunc(spec, s.runOnce)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// 延迟执行首轮采集，避免与服务启动阶段的请求争抢资源
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		go s.runOnce()
	})
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunOnce 对外暴露的单次执行入口，方便手动触发采集
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	log.Println("start ingestion job...")
	start := time.Now()

	outcomes := s.pipeline.RunIngestion(context.Background(), s.types)

	total, failed := 0, 0
	for t, o := range outcomes {
		if o.Err != nil {
			failed++
			log.Printf("  %s: error: %v", t, o.Err)
			continue
		}
		total += o.Stored
		log.Printf("  %s: stored=%d skipped=%d", t, o.Stored, o.Skipped)
	}

	log.Printf("ingestion job done in %s: stored=%d failed_types=%d", time.Since(start).Round(time.Millisecond), total, failed)
}
