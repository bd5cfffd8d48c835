package analyst

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/shionlabs/shion/internal/jsonutil"
	"github.com/shionlabs/shion/internal/news"
	"github.com/shionlabs/shion/internal/providers"
)

// defaultQueries 默认的财经新闻检索词
var defaultQueries = []string{
	"株式市場 日経平均 最新",
	"米国株 S&P500 ニュース",
	"為替 ドル円 最新",
	"金融政策 日銀 FRB",
}

const defaultResultsPerQuery = 3

// validSentiments 市场情绪的封闭枚举
var validSentiments = map[string]bool{
	"bullish": true,
	"bearish": true,
	"neutral": true,
}

// Searcher 新闻检索的抽象，news.Searcher 是生产实现
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]news.Item, error)
}

// Analyst 金融市场分析器
type Analyst struct {
	provider        providers.ModelProvider
	searcher        Searcher
	store           *Store
	queries         []string
	resultsPerQuery int
	modelTimeout    time.Duration
}

// New 创建分析器
// queries 为空时使用默认检索词，resultsPerQuery <= 0 时使用默认条数
func New(provider providers.ModelProvider, searcher Searcher, store *Store, queries []string, resultsPerQuery int) *Analyst {
	if len(queries) == 0 {
		queries = defaultQueries
	}
	if resultsPerQuery <= 0 {
		resultsPerQuery = defaultResultsPerQuery
	}
	return &Analyst{
		provider:        provider,
		searcher:        searcher,
		store:           store,
		queries:         queries,
		resultsPerQuery: resultsPerQuery,
		modelTimeout:    120 * time.Second,
	}
}

// Store 返回底层存储，HTTP 查询接口直接读取
func (a *Analyst) Store() *Store {
	return a.store
}

// RunCycle 执行一个完整的分析周期
// 顺序固定：先做 PDCA 复盘，再抓取新鲜新闻做分析。
// 复盘在前能保证评估用的新闻和被评估的预测之间有真实的时间差
func (a *Analyst) RunCycle(ctx context.Context) (*Record, error) {
	log.Printf("Analyst: === starting analysis cycle at %s ===", time.Now().Format(time.RFC3339))

	a.evaluate(ctx)

	items := a.fetchNews(ctx)
	rec := a.analyze(ctx, items)

	if err := a.store.SaveRecord(time.Now(), rec); err != nil {
		return rec, fmt.Errorf("failed to save analysis: %w", err)
	}

	log.Printf("Analyst: === cycle complete. Sentiment: %s ===", rec.MarketSentiment)
	return rec, nil
}

// fetchNews 按检索词逐个抓取新闻并汇总
// 单个检索词失败只记日志，不影响其余检索词
func (a *Analyst) fetchNews(ctx context.Context) []news.Item {
	var all []news.Item
	for _, query := range a.queries {
		items, err := a.searcher.Search(ctx, query, a.resultsPerQuery)
		if err != nil {
			log.Printf("Analyst: error fetching news for %q: %v", query, err)
			continue
		}
		all = append(all, items...)
	}
	log.Printf("Analyst: fetched %d news items total", len(all))
	return all
}

// analyze 把新闻和学习笔记交给模型生成结构化分析
// 模型调用或解析失败时返回携带错误信息的中性记录，周期照常落盘
func (a *Analyst) analyze(ctx context.Context, items []news.Item) *Record {
	prompt := fmt.Sprintf(analysisPrompt, formatNews(items), a.learningContext())

	raw, err := a.generate(ctx, prompt)
	if err != nil {
		log.Printf("Analyst: error analyzing news: %v", err)
		return errorRecord(err)
	}

	var rec Record
	if err := jsonutil.DecodeLenient(raw, &rec); err != nil {
		log.Printf("Analyst: error parsing analysis: %v", err)
		return errorRecord(err)
	}

	rec.Timestamp = time.Now().Format(time.RFC3339)
	rec.NewsCount = len(items)

	// 情绪是封闭枚举，未知值在解析边界回退到 neutral；
	// 置信度只告警不改写，保留模型的原始输出供复盘
	if !validSentiments[rec.MarketSentiment] {
		log.Printf("Analyst: unexpected market sentiment %q, falling back to neutral", rec.MarketSentiment)
		rec.MarketSentiment = "neutral"
	}
	for _, p := range rec.Predictions {
		if p.Confidence < 0 || p.Confidence > 1 {
			log.Printf("Analyst: confidence %.2f out of range for target %q", p.Confidence, p.Target)
		}
	}

	return &rec
}

// generate 发起一次不带工具的单轮模型调用
func (a *Analyst) generate(ctx context.Context, prompt string) (string, error) {
	mctx, cancel := context.WithTimeout(ctx, a.modelTimeout)
	defer cancel()

	resp, err := a.provider.Generate(mctx, &providers.GenerateRequest{
		Turns: []providers.Turn{providers.TextTurn(providers.RoleUser, prompt)},
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// learningContext 把最近的学习笔记整理成提示词上下文
func (a *Analyst) learningContext() string {
	notes, err := a.store.RecentNotes(5)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return noNotesText
	case err != nil:
		log.Printf("Analyst: error reading learning notes: %v", err)
		return notesUnreadableText
	case len(notes) == 0:
		return emptyNotesText
	}

	var b strings.Builder
	for _, note := range notes {
		date := note.EvaluationDate
		if date == "" {
			date = "不明"
		}
		fmt.Fprintf(&b, "- [%s] %s\n", date, note.AccuracyNotes)
		for _, lesson := range note.LessonsLearned {
			fmt.Fprintf(&b, "  → %s\n", lesson)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatNews 把新闻条目整理成带编号的提示词文本
func formatNews(items []news.Item) string {
	if len(items) == 0 {
		return emptyNewsText
	}

	var b strings.Builder
	for i, item := range items {
		title := item.Title
		if title == "" {
			title = "タイトルなし"
		}
		source := item.Source
		if source == "" {
			source = "不明"
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n   %s\n\n", i+1, source, title, item.Body)
	}
	return b.String()
}

// errorRecord 构造分析失败时的中性兜底记录
func errorRecord(err error) *Record {
	return &Record{
		Timestamp:       time.Now().Format(time.RFC3339),
		SpeechSummary:   "ニュース分析でエラーが発生しました。次のサイクルで再試行します。",
		MarketSentiment: "neutral",
		Predictions:     []Prediction{},
		RiskFactors:     []string{"分析エラー"},
		Error:           err.Error(),
	}
}
