// Package news 提供新闻检索能力
// 通过 DuckDuckGo 的 HTML 端点做关键词检索并解析结果页面，
// 不依赖任何需要 API Key 的搜索服务
package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const searchEndpoint = "https://html.duckduckgo.com/html/"

// Item 一条检索结果
type Item struct {
	Title  string `json:"title"`  // 标题
	Body   string `json:"body"`   // 摘要
	Source string `json:"source"` // 来源链接
}

// Searcher DuckDuckGo HTML 检索客户端
type Searcher struct {
	client *resty.Client
}

// NewSearcher 创建检索客户端
func NewSearcher() *Searcher {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; Shion/1.0)")
	return &Searcher{client: client}
}

// Search 检索关键词并返回最多 limit 条结果
// limit <= 0 时返回全部解析出的结果
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]Item, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"q": query}).
		Post(searchEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search results: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("HTTP error %d when fetching search results", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	items := parseResults(doc)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// parseResults 从结果页面提取检索条目
// 页面结构以 .result 为容器，标题在 .result__a，摘要在 .result__snippet
func parseResults(doc *goquery.Document) []Item {
	var items []Item

	doc.Find("div.result").Each(func(i int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find("a.result__a").First().Text())
		if title == "" {
			return
		}

		body := strings.TrimSpace(sel.Find(".result__snippet").First().Text())
		source := strings.TrimSpace(sel.Find(".result__url").First().Text())
		if source == "" {
			if href, ok := sel.Find("a.result__a").First().Attr("href"); ok {
				source = href
			}
		}

		items = append(items, Item{
			Title:  title,
			Body:   body,
			Source: source,
		})
	})

	return items
}
