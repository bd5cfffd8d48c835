package analyst

// prompts.go - 分析和复盘使用的提示词模板
// 输出格式在提示词中固定为 JSON，解析端（analyst.go / pdca.go）
// 使用宽容解码，模型偶尔包上 Markdown 代码块也能处理

// analysisPrompt 市场分析提示词
// 占位符依次为：新闻列表、学习笔记上下文
const analysisPrompt = `
あなたは金融市場の専門アナリストです。以下のニュースを分析し、JSON形式で結果を出力してください。

【ニュース一覧】
%s

【過去の学習メモ（予測精度向上のための振り返り）】
%s

以下のJSONフォーマットで出力してください（バッククォートは不要）：
{
  "speech_summary": "ユーザーに読み上げる1〜3文の簡潔な市場サマリー（日本語・敬語）",
  "market_sentiment": "bullish / bearish / neutral",
  "key_sectors": ["注目セクター1", "セクター2"],
  "predictions": [
    {"target": "日経平均", "direction": "上昇/下落/横ばい", "confidence": 0.7, "reasoning": "理由"},
    {"target": "USD/JPY", "direction": "円安/円高/横ばい", "confidence": 0.6, "reasoning": "理由"},
    {"target": "S&P500", "direction": "上昇/下落/横ばい", "confidence": 0.5, "reasoning": "理由"}
  ],
  "risk_factors": ["リスク1", "リスク2"],
  "action_advice": "短期的な投資アドバイス1文"
}
`

// pdcaPrompt 预测复盘提示词
// 占位符依次为：过去预测的时间点、过去预测内容、其后的新闻动向、评估日期
const pdcaPrompt = `
あなたは金融アナリストの自己評価AIです。
過去の予測と、その後の実際のニュース動向を比較し、学習メモを生成してください。

【過去の予測（%s時点）】
%s

【その後のニュース動向】
%s

以下のJSON形式で学習メモを出力してください（バッククォートは不要）：
{
  "evaluation_date": "%s",
  "accuracy_notes": "予測の当たり外れについての分析（1〜2文）",
  "lessons_learned": ["学んだこと1", "学んだこと2"],
  "bias_warnings": ["注意すべきバイアスや傾向"]
}
`

// 新闻抓取失败时替代新闻列表的提示文案
const emptyNewsText = "ニュースの取得に失敗しました。一般的な市場分析を行ってください。"

// 学习笔记上下文的三种占位文案
const (
	noNotesText         = "まだ学習メモはありません。初回分析です。"
	emptyNotesText      = "学習メモは空です。"
	notesUnreadableText = "学習メモの読み込みに失敗しました。"
)
