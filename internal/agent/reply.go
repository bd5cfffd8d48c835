package agent

import (
	"github.com/shionlabs/shion/internal/jsonutil"
)

// reply.go - 结构化回复的提取
// 模型被要求输出 {text, emotion, action} 形式的 JSON，
// 但实际输出可能带 Markdown 代码块，也可能根本不是 JSON。
// 解析失败时把原始文本整个作为回复内容回退，绝不把解析错误抛给用户

// 情感和动作的封闭枚举
// 模型输出的是自由文本，未知值在解析边界统一回退到默认值
var (
	validEmotions = map[string]bool{
		"joy":      true,
		"anger":    true,
		"surprise": true,
		"thought":  true,
		"default":  true,
	}
	validActions = map[string]bool{
		"nod":   true,
		"tilt":  true,
		"shake": true,
		"none":  true,
	}
)

// StructuredReply 规范化后的聊天回复
type StructuredReply struct {
	Text    string `json:"text"`    // 朗读给用户的文本
	Emotion string `json:"emotion"` // 情感状态：joy / anger / surprise / thought / default
	Action  string `json:"action"`  // 动作指示：nod / tilt / shake / none
}

// NormalizeReply 从模型的最终输出中提取结构化回复
// 解析成功时校验枚举字段，失败时把原始输出作为 text 回退
func NormalizeReply(raw string) *StructuredReply {
	var reply StructuredReply
	if err := jsonutil.DecodeLenient(raw, &reply); err != nil {
		return &StructuredReply{Text: raw, Emotion: "default", Action: "none"}
	}

	if !validEmotions[reply.Emotion] {
		reply.Emotion = "default"
	}
	if !validActions[reply.Action] {
		reply.Action = "none"
	}
	return &reply
}

// fallbackReply 构造固定文案的回退回复
func fallbackReply(text string) *StructuredReply {
	return &StructuredReply{Text: text, Emotion: "default", Action: "none"}
}
