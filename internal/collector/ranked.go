package collector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const heatLabel = "热度："

// RankedListExtractor 解析榜单式片段（热点资讯 / 公社热帖）：
// 平铺的 div.item.flex 条目，每条含排名、标题链接、时间和热度标记
type RankedListExtractor struct{}

func (e *RankedListExtractor) Extract(frag *Fragment) ([]RawFields, int, error) {
	doc, err := fragmentDoc(frag)
	if err != nil {
		return nil, 0, err
	}
	if doc == nil {
		return nil, 0, nil
	}

	blocks := doc.Find("div.item.flex")
	if blocks.Length() == 0 {
		// 片段有内容但一个条目块都找不到：上游改版，上报而非静默吞掉
		return nil, 0, ErrUnrecognizedLayout
	}

	items := make([]RawFields, 0, blocks.Length())
	skipped := 0

	blocks.Each(func(_ int, block *goquery.Selection) {
		link := block.Find("a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			skipped++
			return
		}

		href, _ := link.Attr("href")

		heat := ""
		block.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
			if t := strings.TrimSpace(span.Text()); strings.Contains(t, heatLabel) {
				heat = stripLabel(t, heatLabel)
				return false
			}
			return true
		})

		items = append(items, RawFields{
			Rank:     strings.TrimSpace(block.Find("div.no").First().Text()),
			Title:    title,
			Link:     absoluteLink(href),
			TimeText: strings.TrimSpace(block.Find("span.time").First().Text()),
			Heat:     heat,
		})
	})

	return items, skipped, nil
}
