package agent

import "strings"

// schema.go - 工具参数 schema 桥接
// MCP 工具声明使用小写的 JSON Schema 类型标记（object、string……），
// Gemini API 要求大写形式（OBJECT、STRING……），这里做递归转换

// ConvertSchema 把工具参数 schema 转换成模型 API 要求的格式
// 规则：
//   - "type" 键的字符串值转为大写
//   - map 值递归处理（包括 properties 下的各参数 schema）
//   - 其余值原样保留。properties 偶尔会被不规范的服务器写成数组，
//     此时原样透传，让模型 API 返回更明确的下游错误
//
// 纯函数，不修改输入；对同一输入重复应用结果不变
func ConvertSchema(schema map[string]interface{}) map[string]interface{} {
	converted := make(map[string]interface{}, len(schema))
	for k, v := range schema {
		switch val := v.(type) {
		case string:
			if k == "type" {
				converted[k] = strings.ToUpper(val)
			} else {
				converted[k] = val
			}
		case map[string]interface{}:
			converted[k] = ConvertSchema(val)
		default:
			converted[k] = v
		}
	}
	return converted
}
