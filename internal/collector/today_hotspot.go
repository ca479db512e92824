package collector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	panelSelector      = "div.panel.panel-danger"
	annotationSelector = "div[style='color:#999;']"
	heatValueLabel     = "热度值："
)

// TodayHotspotExtractor 解析今日热点片段：按日期分组的面板，
// 面板内是关键词块，标题块与其注释块（关键词 + 热度值）是相邻兄弟而非嵌套关系
type TodayHotspotExtractor struct{}

func (e *TodayHotspotExtractor) Extract(frag *Fragment) ([]RawFields, int, error) {
	doc, err := fragmentDoc(frag)
	if err != nil {
		return nil, 0, err
	}
	if doc == nil {
		return nil, 0, nil
	}

	panels := doc.Find(panelSelector)
	if panels.Length() == 0 {
		return nil, 0, ErrUnrecognizedLayout
	}

	var items []RawFields
	skipped := 0

	panels.Each(func(_ int, panel *goquery.Selection) {
		date := strings.TrimSpace(panel.Find("div.panel-heading").First().Text())

		panel.Find("div.keyword").Each(func(_ int, block *goquery.Selection) {
			title := strings.TrimSpace(block.Find("b").First().Text())
			if title == "" {
				title = strings.TrimSpace(block.Text())
			}
			if title == "" {
				skipped++
				return
			}

			// 注释块缺失时保留条目，关键词和热度留空
			keywords, heat := "", ""
			if sib := nextSiblingMatching(block, annotationSelector, "div.keyword"); sib != nil {
				keywords = strings.TrimSpace(sib.Find("i").First().Text())
				heat = stripLabel(sib.Find("span").First().Text(), heatValueLabel)
			}

			items = append(items, RawFields{
				Date:     date,
				Title:    title,
				Keywords: keywords,
				Heat:     heat,
			})
		})
	})

	return items, skipped, nil
}
