package processor

import (
	"strconv"
	"strings"
	"time"

	"github.com/LJTian/HotspotHub/internal/collector"
)

// Record 写入存储层前的统一结构，四个分类共用一个形态。
// 热度同时保留原始文本和尽力解析出的整数，不丢原始形态。
type Record struct {
	FeedType  collector.FeedType
	TypeLabel string

	Rank     string
	Title    string
	Link     string
	OccursAt string // 发布时间或日历日期的展示串，上游格式不稳定，不解析为时间戳
	Heat     string
	Keywords string

	HeatScore *int64

	FetchedAt time.Time
	Raw       map[string]any
}

// Normalizer 把解析器产出的原始字段映射为统一 Record
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Process 规整一次抓取的全部条目。fetchedAt 对整批统一打点，
// 使同一次抓取的记录对应同一个采集时刻。
// 缺标题的条目在入库前丢弃，计入 skipped。
func (n *Normalizer) Process(t collector.FeedType, raws []collector.RawFields, fetchedAt time.Time) ([]Record, int) {
	out := make([]Record, 0, len(raws))
	skipped := 0

	for _, raw := range raws {
		title := strings.TrimSpace(raw.Title)
		if title == "" {
			skipped++
			continue
		}

		r := Record{
			FeedType:  t,
			TypeLabel: t.Label(),
			Title:     title,
			FetchedAt: fetchedAt,
		}

		// 分类决定哪些字段有意义，其余字段留空（留空不是错误）
		switch t {
		case collector.FeedHotNews, collector.FeedCommunityPost:
			r.Rank = raw.Rank
			r.Link = raw.Link
			r.OccursAt = raw.TimeText
			r.Heat = raw.Heat
		case collector.FeedTodayHotspot:
			r.OccursAt = raw.Date
			r.Keywords = raw.Keywords
			r.Heat = raw.Heat
		case collector.FeedFinancialCalendar:
			r.OccursAt = raw.Date
		}

		r.HeatScore = parseHeatScore(r.Heat)
		r.Raw = rawMap(raw)

		out = append(out, r)
	}

	return out, skipped
}

// parseHeatScore 尽力把热度文本解析为整数；取前导数字部分，
// 无法解析时返回 nil，原始文本另行保留
func parseHeatScore(s string) *int64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil
	}
	end := 0
	for ; end < len(s); end++ {
		if s[end] < '0' || s[end] > '9' {
			break
		}
	}
	if end == 0 {
		return nil
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// rawMap 保留解析器原始字段快照，随记录一起入库便于追溯
func rawMap(raw collector.RawFields) map[string]any {
	m := make(map[string]any, 4)
	if raw.Rank != "" {
		m["rank"] = raw.Rank
	}
	if raw.TimeText != "" {
		m["publish_time"] = raw.TimeText
	}
	if raw.Date != "" {
		m["date"] = raw.Date
	}
	if raw.Heat != "" {
		m["heat"] = raw.Heat
	}
	if raw.Keywords != "" {
		m["keywords"] = raw.Keywords
	}
	return m
}
