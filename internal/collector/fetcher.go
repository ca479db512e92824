package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	fetchMaxResponseBytes = 4 << 20 // 4MB，片段最大不过几百 KB
	defaultFetchTimeout   = 15 * time.Second
	defaultMaxAttempts    = 3
	defaultBaseDelay      = time.Second
	maxBackoffDelay       = 30 * time.Second
)

// HeaderProfile 一套请求身份（UA 及配套请求头），按次随机选取以降低被上游限流的概率
type HeaderProfile struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
}

var defaultHeaderProfiles = []HeaderProfile{
	{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		Accept:         "application/json, text/javascript, */*; q=0.01",
		AcceptLanguage: "zh-CN,zh;q=0.9,en;q=0.8",
	},
	{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Accept:         "application/json, text/javascript, */*; q=0.01",
		AcceptLanguage: "zh-CN,zh;q=0.9,en;q=0.8",
	},
	{
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Accept:         "application/json, text/javascript, */*; q=0.01",
		AcceptLanguage: "zh-CN,zh;q=0.8,en-US;q=0.6",
	},
}

// FetchContext 一次采集使用的全部请求状态：端点列表、请求头池、重试参数。
// 作为显式的值传入，不依赖任何进程级可变会话。
type FetchContext struct {
	// Endpoints 主站在前，后续为备用镜像；重试时按序轮换
	Endpoints []string
	Profiles  []HeaderProfile

	Client      *http.Client
	MaxAttempts int
	BaseDelay   time.Duration
}

func NewFetchContext(baseURL string, fallbacks []string) *FetchContext {
	endpoints := append([]string{baseURL}, fallbacks...)
	return &FetchContext{
		Endpoints:   endpoints,
		Profiles:    defaultHeaderProfiles,
		Client:      &http.Client{Timeout: defaultFetchTimeout},
		MaxAttempts: defaultMaxAttempts,
		BaseDelay:   defaultBaseDelay,
	}
}

// 上游 getHotNewsByType 的响应信封；cdate 仅财经日历返回
type upstreamEnvelope struct {
	Result string `json:"result"`
	HTML   string `json:"html"`
	CDate  string `json:"cdate"`
}

// Fetch 请求一个分类的片段。传输失败、非 2xx、result 非 success、
// 空片段均视为可重试失败：轮换端点、指数退避后再试，
// 最多 MaxAttempts 次，用尽后返回最后一次的错误。
func (f *FetchContext) Fetch(ctx context.Context, t FeedType) (*Fragment, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("fetcher: unknown feed type %q", t)
	}

	attempts := f.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := f.backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		endpoint := f.Endpoints[attempt%len(f.Endpoints)]
		frag, err := f.fetchOnce(ctx, endpoint, t)
		if err == nil {
			return frag, nil
		}
		lastErr = err
		log.Printf("fetch %s attempt %d/%d via %s failed: %v", t.Selector(), attempt+1, attempts, endpoint, err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("fetcher: %s exhausted %d attempts: %w", t.Selector(), attempts, lastErr)
}

func (f *FetchContext) fetchOnce(ctx context.Context, endpoint string, t FeedType) (*Fragment, error) {
	form := url.Values{"type": {t.Selector()}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(endpoint, "/")+"/api/getHotNewsByType",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("fetcher: build request: %w", err)
	}

	p := f.pickProfile()
	req.Header.Set("User-Agent", p.UserAgent)
	req.Header.Set("Accept", p.Accept)
	req.Header.Set("Accept-Language", p.AcceptLanguage)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Origin", endpoint)
	req.Header.Set("Referer", strings.TrimRight(endpoint, "/")+"/web/hotnews/web")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetcher: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetcher: unexpected status %d", resp.StatusCode)
	}

	var env upstreamEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, fetchMaxResponseBytes)).Decode(&env); err != nil {
		return nil, fmt.Errorf("fetcher: decode envelope: %w", err)
	}
	if env.Result != "success" {
		return nil, fmt.Errorf("fetcher: upstream result %q", env.Result)
	}
	if strings.TrimSpace(env.HTML) == "" {
		return nil, fmt.Errorf("fetcher: empty fragment")
	}

	return &Fragment{HTML: env.HTML, CDate: env.CDate}, nil
}

func (f *FetchContext) pickProfile() HeaderProfile {
	if len(f.Profiles) == 0 {
		return defaultHeaderProfiles[0]
	}
	return f.Profiles[rand.Intn(len(f.Profiles))]
}

// backoff 指数退避：base * 2^(attempt-1)，封顶 30s；取消信号立即返回
func (f *FetchContext) backoff(ctx context.Context, attempt int) error {
	base := f.BaseDelay
	if base <= 0 {
		base = defaultBaseDelay
	}
	delay := base << (attempt - 1)
	if delay > maxBackoffDelay {
		delay = maxBackoffDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
