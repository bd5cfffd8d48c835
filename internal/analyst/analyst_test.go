package analyst

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shionlabs/shion/internal/news"
	"github.com/shionlabs/shion/internal/providers"
)

// scriptedProvider 按顺序返回预设文本，并记录收到的提示词
type scriptedProvider struct {
	mu      sync.Mutex
	outputs []string
	err     error
	prompts []string
}

func (p *scriptedProvider) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var prompt string
	if len(req.Turns) > 0 && len(req.Turns[0].Parts) > 0 {
		prompt = req.Turns[0].Parts[0].Text
	}
	p.prompts = append(p.prompts, prompt)

	if p.err != nil {
		return nil, p.err
	}
	out := ""
	if len(p.outputs) > 0 {
		out = p.outputs[0]
		p.outputs = p.outputs[1:]
	}
	return &providers.GenerateResponse{Text: out}, nil
}

// stubSearcher 固定返回同一批新闻
type stubSearcher struct {
	items []news.Item
	err   error
}

func (s *stubSearcher) Search(ctx context.Context, query string, limit int) ([]news.Item, error) {
	return s.items, s.err
}

const analysisJSON = `{
  "speech_summary": "本日の市場は落ち着いています。",
  "market_sentiment": "neutral",
  "predictions": [
    {"target": "日経平均", "direction": "横ばい", "confidence": 0.6, "reasoning": "材料不足"}
  ],
  "risk_factors": ["地政学リスク"]
}`

func newsItems() []news.Item {
	return []news.Item{
		{Title: "日経平均が小幅続伸", Body: "東京株式市場で...", Source: "example.com"},
	}
}

func TestRunCycleFirstTime(t *testing.T) {
	provider := &scriptedProvider{outputs: []string{analysisJSON}}
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	a := New(provider, &stubSearcher{items: newsItems()}, store, nil, 0)
	rec, err := a.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "neutral", rec.MarketSentiment)
	assert.Equal(t, "本日の市場は落ち着いています。", rec.SpeechSummary)
	assert.Equal(t, 4, rec.NewsCount) // 4 条检索词 × 每条 1 件
	assert.NotEmpty(t, rec.Timestamp)
	assert.Empty(t, rec.Error)

	// 历史不足，PDCA 跳过，只有一次模型调用
	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "日経平均が小幅続伸")
	assert.Contains(t, provider.prompts[0], noNotesText)

	// 记录已落盘
	latest, err := store.Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, rec.SpeechSummary, latest.SpeechSummary)
}

func TestRunCycleParseFailure(t *testing.T) {
	provider := &scriptedProvider{outputs: []string{"これはJSONではありません"}}
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	a := New(provider, &stubSearcher{items: newsItems()}, store, nil, 0)
	rec, err := a.RunCycle(context.Background())
	require.NoError(t, err)

	// 解析失败时落盘带错误信息的中性记录，周期不中断
	assert.Equal(t, "neutral", rec.MarketSentiment)
	assert.NotEmpty(t, rec.Error)
	assert.Equal(t, []string{"分析エラー"}, rec.RiskFactors)

	latest, err := store.Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.NotEmpty(t, latest.Error)
}

func TestRunCycleSearchFailure(t *testing.T) {
	provider := &scriptedProvider{outputs: []string{analysisJSON}}
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	a := New(provider, &stubSearcher{err: fmt.Errorf("network down")}, store, nil, 0)
	rec, err := a.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, rec.NewsCount)
	// 新闻为空时提示词换用占位文案
	assert.Contains(t, provider.prompts[0], emptyNewsText)
}

func TestPDCAEvaluatesOldestInWindow(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	// 既存の学習メモが 1 件ある状態から始める
	require.NoError(t, store.AppendNote(LearningNote{AccuracyNotes: "以前のメモ"}))

	// 预置 5 条历史，最旧的一条预测日経平均上昇
	base := time.Now().Add(-5 * time.Hour)
	targets := []string{"日経平均", "T2", "T3", "T4", "T5"}
	for i, target := range targets {
		rec := &Record{
			Timestamp:   base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
			Predictions: []Prediction{{Target: target, Direction: "上昇", Confidence: 0.7}},
		}
		require.NoError(t, store.SaveRecord(base.Add(time.Duration(i)*time.Hour), rec))
	}

	noteJSON := `{
  "evaluation_date": "2026-08-30 10:00",
  "accuracy_notes": "概ね的中しました。",
  "lessons_learned": ["短期の地合いを重視する"],
  "bias_warnings": ["強気バイアス"]
}`
	provider := &scriptedProvider{outputs: []string{noteJSON, analysisJSON}}

	a := New(provider, &stubSearcher{items: newsItems()}, store, nil, 0)
	_, err = a.RunCycle(context.Background())
	require.NoError(t, err)

	// 第一次调用是复盘：评估对象是窗口里最旧的预测
	require.Len(t, provider.prompts, 2)
	assert.Contains(t, provider.prompts[0], `"日経平均"`)
	assert.NotContains(t, provider.prompts[0], `"T5"`)

	// 新笔记追加在既有笔记之后，并进入第二次调用的分析上下文
	notes, err := store.RecentNotes(5)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "以前のメモ", notes[0].AccuracyNotes)
	assert.Equal(t, "概ね的中しました。", notes[1].AccuracyNotes)
	assert.NotEmpty(t, notes[1].LessonsLearned)
	assert.Contains(t, provider.prompts[1], "→ 短期の地合いを重視する")
}

func TestAnalyzeUnknownSentimentFallsBack(t *testing.T) {
	out := `{"speech_summary": "様子見です。", "market_sentiment": "euphoric", "predictions": [], "risk_factors": []}`
	provider := &scriptedProvider{outputs: []string{out}}
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	a := New(provider, &stubSearcher{items: newsItems()}, store, nil, 0)
	rec, err := a.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "neutral", rec.MarketSentiment)
	assert.Empty(t, rec.Error)
}

func TestPDCASkippedWithoutHistory(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	rec := &Record{Timestamp: time.Now().Format(time.RFC3339)}
	require.NoError(t, store.SaveRecord(time.Now().Add(-time.Hour), rec))

	provider := &scriptedProvider{outputs: []string{analysisJSON}}
	a := New(provider, &stubSearcher{items: newsItems()}, store, nil, 0)
	_, err = a.RunCycle(context.Background())
	require.NoError(t, err)

	// 只有 1 条历史，复盘被跳过
	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "専門アナリスト")
}

func TestPDCANoteDiscardedOnParseFailure(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	base := time.Now().Add(-2 * time.Hour)
	for i := 0; i < 2; i++ {
		rec := &Record{Timestamp: base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339)}
		require.NoError(t, store.SaveRecord(base.Add(time.Duration(i)*time.Hour), rec))
	}

	provider := &scriptedProvider{outputs: []string{"壊れた出力", analysisJSON}}
	a := New(provider, &stubSearcher{items: newsItems()}, store, nil, 0)
	_, err = a.RunCycle(context.Background())
	require.NoError(t, err)

	// 解析失败的笔记被丢弃，笔记文件依然不存在
	_, err = store.RecentNotes(5)
	assert.Error(t, err)
}

func TestFormatNews(t *testing.T) {
	text := formatNews([]news.Item{
		{Title: "タイトル", Body: "本文", Source: "src"},
		{Title: "", Body: "", Source: ""},
	})

	assert.True(t, strings.HasPrefix(text, "1. [src] タイトル\n   本文"))
	assert.Contains(t, text, "2. [不明] タイトルなし")
}
