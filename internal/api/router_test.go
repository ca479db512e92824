package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LJTian/HotspotHub/internal/collector"
	"github.com/LJTian/HotspotHub/internal/processor"
	"github.com/LJTian/HotspotHub/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) (*gin.Engine, *storage.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	store, err := storage.NewStoreWithDB(db, nil)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}

	r := gin.New()
	NewServer(store).RegisterRoutes(r)
	return r, store
}

func seed(t *testing.T, store *storage.Store) {
	t.Helper()
	now := time.Now()
	items := []processor.Record{
		{FeedType: collector.FeedHotNews, TypeLabel: "热点资讯", Title: "新闻一", FetchedAt: now},
		{FeedType: collector.FeedHotNews, TypeLabel: "热点资讯", Title: "新闻二", FetchedAt: now},
		{FeedType: collector.FeedFinancialCalendar, TypeLabel: "财经日历", Title: "利率决议", OccursAt: "09月18日", FetchedAt: now},
	}
	if _, err := store.Append(items); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestListRecordsFilterAndCount(t *testing.T) {
	r, store := newTestRouter(t)
	seed(t, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/records?type=hot_news&limit=10", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Count int              `json:"count"`
		Data  []storage.Record `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 2 || len(resp.Data) != 2 {
		t.Fatalf("count = %d data = %d, want 2/2", resp.Count, len(resp.Data))
	}
	for _, rec := range resp.Data {
		if rec.FeedType != "hot_news" {
			t.Fatalf("leaked other feed type: %+v", rec)
		}
	}

	// 上游选择器写法同样接受
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/records?type=ths", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("selector alias status = %d", w.Code)
	}
}

func TestListRecordsRejectsUnknownType(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/records?type=whatever", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	r, store := newTestRouter(t)
	seed(t, store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Data storage.StatsResult `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.Total != 3 {
		t.Fatalf("total = %d, want 3", resp.Data.Total)
	}
	if resp.Data.ByFeedType["hot_news"] != 2 || resp.Data.ByFeedType["financial_calendar"] != 1 {
		t.Fatalf("by feed type wrong: %+v", resp.Data.ByFeedType)
	}
}
