package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/LJTian/HotspotHub/internal/processor"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Feed 描述一个采集分类，例如 hot_news / financial_calendar
type Feed struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Code   string `gorm:"size:64;uniqueIndex" json:"code"`
	Name   string `gorm:"size:128" json:"name"`
	Status string `gorm:"size:32;index" json:"status"` // active / disabled

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Record 入库的统一记录。只追加，不做原地更新：
// 同一标题跨轮次重复属于预期，热度随时间漂移，历史序列用于统计。
// 所有分类共用一张表，新增分类不需要迁移旧行。
type Record struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	FeedType  string `gorm:"size:32;index" json:"feedType"`
	TypeLabel string `gorm:"size:32" json:"typeLabel"`

	Rank     string `gorm:"size:16" json:"rank,omitempty"`
	Title    string `gorm:"size:512" json:"title"`
	Link     string `gorm:"size:1024" json:"link,omitempty"`
	OccursAt string `gorm:"size:64;index" json:"occursAt,omitempty"` // 展示串，按精确匹配筛选
	Heat     string `gorm:"size:64" json:"heat,omitempty"`
	Keywords string `gorm:"size:256" json:"keywords,omitempty"`

	HeatScore *int64 `gorm:"index" json:"heatScore,omitempty"`

	FetchedAt time.Time         `gorm:"index" json:"fetchedAt"`
	Extra     datatypes.JSONMap `gorm:"type:jsonb" json:"extra,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewStore(dsn, redisAddr string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("warn: redis ping failed: %v", err)
	}

	return NewStoreWithDB(db, rdb)
}

// NewStoreWithDB 用现成的 gorm 连接构建 Store，测试用内存 sqlite 时走这里
func NewStoreWithDB(db *gorm.DB, rdb *redis.Client) (*Store, error) {
	if err := db.AutoMigrate(&Feed{}, &Record{}); err != nil {
		return nil, err
	}
	return &Store{DB: db, Redis: rdb}, nil
}

// EnsureFeed 确保某个分类登记存在
func (s *Store) EnsureFeed(code, name string) (*Feed, error) {
	f := &Feed{}
	if err := s.DB.Where("code = ?", code).First(f).Error; err == nil {
		return f, nil
	}

	f = &Feed{
		Code:   code,
		Name:   name,
		Status: "active",
	}
	if err := s.DB.Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateRunesDB 按 rune 数截断字符串，确保不会超过数据库字段长度
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

// Append 追加一批记录，整批在一个事务内完成，要么全部落库要么一条不落。
// 缺标题的记录不入库。返回实际持久化条数。
func (s *Store) Append(items []processor.Record) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	rows := make([]Record, 0, len(items))
	for _, it := range items {
		title := truncateRunesDB(toValidUTF8(it.Title), 512)
		if title == "" {
			continue
		}
		rows = append(rows, Record{
			FeedType:  string(it.FeedType),
			TypeLabel: it.TypeLabel,
			Rank:      truncateRunesDB(it.Rank, 16),
			Title:     title,
			Link:      truncateRunesDB(it.Link, 1024),
			OccursAt:  truncateRunesDB(toValidUTF8(it.OccursAt), 64),
			Heat:      truncateRunesDB(toValidUTF8(it.Heat), 64),
			Keywords:  truncateRunesDB(toValidUTF8(it.Keywords), 256),
			HeatScore: it.HeatScore,
			FetchedAt: it.FetchedAt,
			Extra:     datatypes.JSONMap(it.Raw),
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		return 0, fmt.Errorf("storage: append: %w", err)
	}

	// 查询缓存依赖短 TTL 自然过期，不做按 key 通配删除
	return len(rows), nil
}

const queryCacheTTL = time.Minute

// Query 按分类和可选的日期串返回记录，按插入先后倒序（最新在前），
// 并使用 Redis 做短 TTL 缓存。
// feedType: 分类，可为空；occursAt: 精确匹配的日期/时间串，可为空
func (s *Store) Query(feedType, occursAt string, limit int) ([]Record, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("records:list:%s:%s:%d", feedType, occursAt, limit)

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []Record
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var list []Record
	db := s.DB.Model(&Record{})
	if feedType != "" {
		db = db.Where("feed_type = ?", feedType)
	}
	if occursAt != "" {
		// 上游日期标题格式不稳定，保持精确匹配，不做日期解析
		db = db.Where("occurs_at = ?", occursAt)
	}
	if err := db.Order("id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("storage: query: %w", err)
	}

	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, queryCacheTTL).Err()
		}
	}

	return list, nil
}

// StatsResult 按分类的计数加总计，出自同一次查询快照
type StatsResult struct {
	ByFeedType map[string]int64 `json:"byFeedType"`
	Total      int64            `json:"total"`
}

// Stats 返回各分类的记录数和总数。总计由同一批分组结果累加得出，
// 与并发写入交错时也不会出现总计不等于分项之和。
func (s *Store) Stats() (*StatsResult, error) {
	var rows []struct {
		FeedType string
		Count    int64
	}
	if err := s.DB.Model(&Record{}).
		Select("feed_type, COUNT(*) AS count").
		Group("feed_type").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("storage: stats: %w", err)
	}

	res := &StatsResult{ByFeedType: make(map[string]int64, len(rows))}
	for _, r := range rows {
		res.ByFeedType[r.FeedType] = r.Count
		res.Total += r.Count
	}
	return res, nil
}
