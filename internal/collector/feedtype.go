package collector

import "errors"

// FeedType 上游内容分类，每个分类对应一个选择器参数和一种解析策略
type FeedType string

const (
	FeedHotNews           FeedType = "hot_news"
	FeedCommunityPost     FeedType = "community_post"
	FeedTodayHotspot      FeedType = "today_hotspot"
	FeedFinancialCalendar FeedType = "financial_calendar"
)

// ErrUnrecognizedLayout 片段非空但找不到任何预期结构，通常意味着上游改版。
// 调用方应当上报而不是重试。
var ErrUnrecognizedLayout = errors.New("collector: fragment layout unrecognized")

// Selector 上游 getHotNewsByType 接口的 type 参数
func (t FeedType) Selector() string {
	switch t {
	case FeedHotNews:
		return "ths"
	case FeedCommunityPost:
		return "jiuyan"
	case FeedTodayHotspot:
		return "chaosha"
	case FeedFinancialCalendar:
		return "timeline"
	}
	return ""
}

// Label 入库使用的中文类型名，与历史数据保持一致
func (t FeedType) Label() string {
	switch t {
	case FeedHotNews:
		return "热点资讯"
	case FeedCommunityPost:
		return "公社热帖"
	case FeedTodayHotspot:
		return "今日热点"
	case FeedFinancialCalendar:
		return "财经日历"
	}
	return string(t)
}

func (t FeedType) Valid() bool {
	return t.Selector() != ""
}

// AllFeedTypes 一轮采集默认覆盖的全部分类
func AllFeedTypes() []FeedType {
	return []FeedType{FeedHotNews, FeedCommunityPost, FeedTodayHotspot, FeedFinancialCalendar}
}

// ParseFeedType 同时接受枚举值和上游选择器，便于 API 层做参数校验
func ParseFeedType(s string) (FeedType, bool) {
	for _, t := range AllFeedTypes() {
		if s == string(t) || s == t.Selector() {
			return t, true
		}
	}
	return "", false
}

// Fragment 上游一次请求返回的原始标记片段。
// CDate 仅财经日历接口返回，作为解析时的辅助上下文。
type Fragment struct {
	HTML  string
	CDate string
}

// RawFields 解析器产出的未规整字段，全部保留原始文本形态
type RawFields struct {
	Rank     string
	Title    string
	Link     string
	TimeText string
	Date     string
	Keywords string
	Heat     string
}

// Extractor 把一个片段转换为有序的字段序列。
// skipped 为因缺少标题等原因被静默丢弃的条目数。
type Extractor interface {
	Extract(frag *Fragment) (items []RawFields, skipped int, err error)
}

var extractors = map[FeedType]Extractor{
	FeedHotNews:           &RankedListExtractor{},
	FeedCommunityPost:     &RankedListExtractor{},
	FeedTodayHotspot:      &TodayHotspotExtractor{},
	FeedFinancialCalendar: &CalendarExtractor{},
}

// ExtractorFor 按分类查找解析器
func ExtractorFor(t FeedType) (Extractor, bool) {
	e, ok := extractors[t]
	return e, ok
}
