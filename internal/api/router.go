package api

import (
	"net/http"
	"strconv"

	"github.com/LJTian/HotspotHub/internal/collector"
	"github.com/LJTian/HotspotHub/internal/storage"
	"github.com/gin-gonic/gin"
)

// Server 只读查询 API，存储层 Query/Stats 之上的薄封装
type Server struct {
	store *storage.Store
}

func NewServer(store *storage.Store) *Server {
	return &Server{store: store}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/records", s.listRecords)
		v1.GET("/stats", s.stats)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listRecords(c *gin.Context) {
	feedType := ""
	if raw := c.Query("type"); raw != "" {
		t, ok := collector.ParseFeedType(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "bad_request",
				"message": "unknown feed type",
			})
			return
		}
		feedType = string(t)
	}

	date := c.Query("date")

	limitStr := c.DefaultQuery("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 50
	}

	items, err := s.store.Query(feedType, date, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"count":   len(items),
		"data":    items,
	})
}

func (s *Server) stats(c *gin.Context) {
	stats, err := s.store.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    stats,
	})
}
