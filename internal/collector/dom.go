package collector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fragmentDoc 把片段解析为文档。空白片段返回 nil 文档（上层产出空序列）。
func fragmentDoc(frag *Fragment) (*goquery.Document, error) {
	if frag == nil || strings.TrimSpace(frag.HTML) == "" {
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(frag.HTML))
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// nextSiblingMatching 沿兄弟链向后查找第一个匹配 match 的元素。
// 途中先遇到匹配 stop 的元素则视为配对缺失，返回 nil；stop 可为空。
// 显式的树游走，避免用下标算术表达“标题块与其注释块相邻”这一关系。
func nextSiblingMatching(sel *goquery.Selection, match, stop string) *goquery.Selection {
	for next := sel.Next(); next.Length() > 0; next = next.Next() {
		if next.Is(match) {
			return next
		}
		if stop != "" && next.Is(stop) {
			return nil
		}
	}
	return nil
}

// absoluteLink 把协议相对链接（//host/path）补全为 https，完整链接原样返回
func absoluteLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

// stripLabel 去掉固定前缀标签（如“热度：”），保留其后的原始文本
func stripLabel(s, label string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, label); i >= 0 {
		return strings.TrimSpace(s[i+len(label):])
	}
	return s
}
