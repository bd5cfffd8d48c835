package agent

import (
	"github.com/shionlabs/shion/internal/providers"
)

// context.go - 会话上下文构建
// 把客户端提交的历史记录转换成规范的回合序列，再追加本次的用户发言。
// 客户端格式宽松：role 可能缺失（默认 user），parts 可能是单个对象
// 也可能是对象数组，text 可能缺失（按空文本处理），都不报错

// HistoryEntry 客户端提交的一条历史记录
// parts 字段保持原始形态，由 BuildTurns 做宽容解析
type HistoryEntry struct {
	Role  string      `json:"role"`
	Parts interface{} `json:"parts"`
}

// BuildTurns 把历史记录和新的用户消息组装成回合序列
// image 不为 nil 时作为内嵌图片附加在用户发言回合里
func BuildTurns(history []HistoryEntry, message string, image *providers.Blob) []providers.Turn {
	turns := make([]providers.Turn, 0, len(history)+1)

	for _, entry := range history {
		role := entry.Role
		if role == "" {
			role = providers.RoleUser
		}

		var parts []providers.Part
		for _, text := range extractTexts(entry.Parts) {
			parts = append(parts, providers.Part{Text: text})
		}
		if len(parts) == 0 {
			parts = []providers.Part{{Text: ""}}
		}

		turns = append(turns, providers.Turn{Role: role, Parts: parts})
	}

	userParts := []providers.Part{{Text: message}}
	if image != nil {
		userParts = append(userParts, providers.Part{InlineData: image})
	}
	turns = append(turns, providers.Turn{Role: providers.RoleUser, Parts: userParts})

	return turns
}

// extractTexts 从宽松格式的 parts 字段里提取文本片段
// 支持单个对象 {"text": ...} 和对象数组 [{"text": ...}, ...] 两种形态
func extractTexts(parts interface{}) []string {
	switch v := parts.(type) {
	case map[string]interface{}:
		if text, ok := v["text"].(string); ok {
			return []string{text}
		}
	case []interface{}:
		var texts []string
		for _, item := range v {
			if m, ok := item.(map[string]interface{}); ok {
				if text, ok := m["text"].(string); ok {
					texts = append(texts, text)
				}
			}
		}
		return texts
	}
	return nil
}
