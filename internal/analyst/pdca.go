package analyst

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/shionlabs/shion/internal/jsonutil"
)

// pdca.go - 预测复盘
// 把最近历史窗口里最旧的预测和此刻的新闻动向一起交给模型，
// 让它评估预测的当たり外れ并生成学习笔记。
// 复盘是尽力而为的改进环节，任何一步失败都只记日志，绝不中断分析周期

// evaluate 执行一次 PDCA 复盘
func (a *Analyst) evaluate(ctx context.Context) {
	history, err := a.store.History(5)
	if err != nil {
		log.Printf("Analyst: PDCA check error: %v", err)
		return
	}
	if len(history) < 2 {
		log.Printf("Analyst: not enough history for PDCA check yet")
		return
	}

	// 窗口里最旧的记录作为被评估的「过去预测」，
	// 它和此刻之间的时间差最大，评估最有意义
	past := history[len(history)-1]
	pastPredictions, err := json.MarshalIndent(past.Predictions, "", "  ")
	if err != nil {
		log.Printf("Analyst: PDCA check error: %v", err)
		return
	}
	pastTime := past.Timestamp
	if pastTime == "" {
		pastTime = "不明"
	}

	items := a.fetchNews(ctx)
	if len(items) > 10 {
		items = items[:10]
	}
	var recentNews string
	for _, item := range items {
		recentNews += fmt.Sprintf("- %s\n", item.Title)
	}

	prompt := fmt.Sprintf(pdcaPrompt,
		pastTime,
		string(pastPredictions),
		recentNews,
		time.Now().Format("2006-01-02 15:04"),
	)

	raw, err := a.generate(ctx, prompt)
	if err != nil {
		log.Printf("Analyst: PDCA check error: %v", err)
		return
	}

	var note LearningNote
	if err := jsonutil.DecodeLenient(raw, &note); err != nil {
		// 解析失败的笔记直接丢弃，坏数据不进学习笔记
		log.Printf("Analyst: PDCA note discarded, parse error: %v", err)
		return
	}

	if err := a.store.AppendNote(note); err != nil {
		log.Printf("Analyst: PDCA check error: %v", err)
		return
	}
	log.Printf("Analyst: PDCA check complete, learning note added")
}
