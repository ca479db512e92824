package collector

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// CalendarPageFallback 财经日历的兜底抓取：JSON 接口重试耗尽后，
// 直接访问公开页面把 timeline 面板整体摘下来作为片段
type CalendarPageFallback struct {
	BaseURL string
}

func (p *CalendarPageFallback) Fetch(ctx context.Context) (*Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u, err := url.Parse(p.BaseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("calendar fallback: bad base url %q", p.BaseURL)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(u.Host),
		colly.UserAgent(defaultHeaderProfiles[0].UserAgent),
	)
	c.SetRequestTimeout(defaultFetchTimeout)

	var panelHTML string
	c.OnHTML("div#timeline", func(e *colly.HTMLElement) {
		if h, err := goquery.OuterHtml(e.DOM); err == nil {
			panelHTML = h
		}
	})

	pageURL := strings.TrimRight(p.BaseURL, "/") + "/web/hotnews/web"
	log.Printf("calendar fallback: fetching page %s", pageURL)
	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("calendar fallback: visit: %w", err)
	}

	if strings.TrimSpace(panelHTML) == "" {
		return nil, fmt.Errorf("calendar fallback: timeline panel not found")
	}

	return &Fragment{HTML: panelHTML}, nil
}
