package ingest

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/LJTian/HotspotHub/internal/collector"
	"github.com/LJTian/HotspotHub/internal/processor"
)

// Outcome 单个分类在一轮采集中的结果，仅在运行期传递，不持久化
type Outcome struct {
	Stored  int
	Skipped int
	Err     error
}

// Fetcher 拉取一个分类的原始片段
type Fetcher interface {
	Fetch(ctx context.Context, t collector.FeedType) (*collector.Fragment, error)
}

// PageFetcher 不经接口信封、直接抓页面的兜底拉取
type PageFetcher interface {
	Fetch(ctx context.Context) (*collector.Fragment, error)
}

// Appender 存储层的追加入口
type Appender interface {
	Append(items []processor.Record) (int, error)
}

// Pipeline 驱动一轮采集：逐个分类走 拉取→解析→规整→入库，
// 单个分类失败不影响其余分类
type Pipeline struct {
	Fetcher Fetcher
	Store   Appender

	// CalendarFallback 财经日历接口重试耗尽后的页面兜底，可为 nil
	CalendarFallback PageFetcher

	// PauseMax 分类之间的随机停顿上限，约束对共享上游的请求频率
	PauseMax time.Duration

	Now func() time.Time

	normalizer *processor.Normalizer
}

func New(fetcher Fetcher, store Appender) *Pipeline {
	return &Pipeline{
		Fetcher:    fetcher,
		Store:      store,
		PauseMax:   2 * time.Second,
		Now:        time.Now,
		normalizer: processor.NewNormalizer(),
	}
}

// RunIngestion 对给定分类各执行一遍采集流水线，返回完整的结果表。
// 即使全部分类失败也只在结果里体现，从不向调用方抛错。
// 取消信号会阻止发起新的拉取，剩余分类记为取消。
func (p *Pipeline) RunIngestion(ctx context.Context, types []collector.FeedType) map[collector.FeedType]Outcome {
	log.Printf("ingestion run: %d feed types", len(types))
	outcomes := make(map[collector.FeedType]Outcome, len(types))

	for i, t := range types {
		if err := ctx.Err(); err != nil {
			outcomes[t] = Outcome{Err: err}
			continue
		}

		outcomes[t] = p.runOne(ctx, t)
		o := outcomes[t]
		if o.Err != nil {
			log.Printf("ingest %s failed: %v", t, o.Err)
		} else {
			log.Printf("ingest %s done: stored=%d skipped=%d", t, o.Stored, o.Skipped)
		}

		if i < len(types)-1 {
			p.pause(ctx)
		}
	}

	return outcomes
}

func (p *Pipeline) runOne(ctx context.Context, t collector.FeedType) Outcome {
	frag, err := p.Fetcher.Fetch(ctx, t)
	if err != nil {
		if t == collector.FeedFinancialCalendar && p.CalendarFallback != nil && ctx.Err() == nil {
			log.Printf("ingest %s: api fetch failed, trying page fallback: %v", t, err)
			frag, err = p.CalendarFallback.Fetch(ctx)
		}
		if err != nil {
			return Outcome{Err: err}
		}
	}

	ext, ok := collector.ExtractorFor(t)
	if !ok {
		return Outcome{Err: collector.ErrUnrecognizedLayout}
	}

	raws, extSkipped, err := ext.Extract(frag)
	if err != nil {
		// 片段在手但结构不认识：上游改版，上报而不重试
		return Outcome{Err: err}
	}

	fetchedAt := time.Now()
	if p.Now != nil {
		fetchedAt = p.Now()
	}
	records, normSkipped := p.normalizer.Process(t, raws, fetchedAt)
	skipped := extSkipped + normSkipped
	if len(records) == 0 {
		return Outcome{Skipped: skipped}
	}

	stored, err := p.Store.Append(records)
	if err != nil {
		return Outcome{Skipped: skipped, Err: err}
	}

	return Outcome{Stored: stored, Skipped: skipped}
}

// pause 分类之间的礼貌停顿，时长在 (0, PauseMax] 内随机；取消时立即返回
func (p *Pipeline) pause(ctx context.Context) {
	if p.PauseMax <= 0 {
		return
	}
	delay := time.Duration(rand.Int63n(int64(p.PauseMax))) + time.Millisecond

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
