package collector

import (
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CalendarExtractor 解析财经日历片段：按日期分组的面板，
// 面板内是事件列表，同一面板的事件共享面板标题里的日期
type CalendarExtractor struct{}

func (e *CalendarExtractor) Extract(frag *Fragment) ([]RawFields, int, error) {
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
		if date == "" {
			// 面板没有日期标题时退回接口附带的日期上下文
			date = strings.TrimSpace(frag.CDate)
		}

		list := panel.Find("ul.list-group").First()
		if list.Length() == 0 {
			log.Printf("calendar: panel %q has no event list, skipped", date)
			return
		}

		list.Find("li.list-group-item").Each(func(_ int, li *goquery.Selection) {
			event := strings.TrimSpace(li.Text())
			if event == "" {
				skipped++
				return
			}
			items = append(items, RawFields{
				Date:  date,
				Title: event,
			})
		})
	})

	return items, skipped, nil
}
