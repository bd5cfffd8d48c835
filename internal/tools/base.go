package tools

import (
	"context"
	"fmt"
)

// base.go - 工具接口定义和基础实现
// 工具是数据化的能力声明（名称 + 描述 + 参数 schema），不是多态类型，
// 可用工具集由工具提供方在运行期决定

// Tool 是可被模型调用的工具接口
type Tool interface {
	// Name 返回工具的名称标识符
	Name() string
	// Description 返回工具的功能描述
	Description() string
	// Parameters 返回工具的参数定义（JSON Schema 格式的 map）
	Parameters() map[string]interface{}
	// ValidateParams 验证传入的参数是否满足必需项，返回错误列表
	ValidateParams(params map[string]interface{}) []string
	// Execute 执行工具，返回文本结果或错误
	Execute(ctx context.Context, params map[string]interface{}) (string, error)
}

// BaseTool 提供工具的通用实现
// 具体工具通过嵌入此结构体复用名称、描述和参数校验
type BaseTool struct {
	name        string
	description string
	parameters  map[string]interface{}
}

// NewBaseTool 创建一个基础工具实例
func NewBaseTool(name, description string, parameters map[string]interface{}) BaseTool {
	return BaseTool{
		name:        name,
		description: description,
		parameters:  parameters,
	}
}

// Name 返回工具名称
func (t *BaseTool) Name() string {
	return t.name
}

// Description 返回工具描述
func (t *BaseTool) Description() string {
	return t.description
}

// Parameters 返回工具参数定义
func (t *BaseTool) Parameters() map[string]interface{} {
	return t.parameters
}

// ValidateParams 检查所有必需参数是否存在
// schema 的 required 字段缺失或格式异常时视为无必需参数
func (t *BaseTool) ValidateParams(params map[string]interface{}) []string {
	var errors []string
	if t.parameters == nil {
		return errors
	}

	required, ok := t.parameters["required"].([]interface{})
	if !ok {
		return errors
	}

	for _, req := range required {
		reqStr, ok := req.(string)
		if !ok {
			continue
		}
		if _, exists := params[reqStr]; !exists {
			errors = append(errors, fmt.Sprintf("missing required parameter: %s", reqStr))
		}
	}

	return errors
}
