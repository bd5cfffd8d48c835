// Package jsonutil 提供对模型输出的宽容 JSON 解码
// 模型经常把 JSON 包在 Markdown 代码块里返回，这里统一做剥离和解析，
// 聊天回复、市场分析结果、学习メモ三处共用同一套逻辑
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFence 去掉文本两端的 Markdown 代码块标记
// 支持 ``` 和 ```json 两种开头，结尾的 ``` 一并去掉
// 没有代码块标记的文本原样返回（只做 TrimSpace）
func StripFence(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// 丢弃第一行（``` 或 ```json 等语言标记）
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}

	if strings.HasSuffix(strings.TrimSpace(s), "```") {
		s = strings.TrimSpace(s)
		s = s[:len(s)-3]
	}

	return strings.TrimSpace(s)
}

// DecodeLenient 剥离代码块标记后把文本解析到 v
// 解析失败时返回错误，由调用方决定回退策略（回退回复/回退记录/丢弃）
func DecodeLenient(raw string, v interface{}) error {
	cleaned := StripFence(raw)
	if cleaned == "" {
		return fmt.Errorf("empty model output")
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("failed to parse model output: %w", err)
	}
	return nil
}
