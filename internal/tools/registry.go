package tools

import (
	"context"
	"fmt"
	"sync"
)

// registry.go - 工具注册表
// 每次聊天请求从工具提供方实时拉取工具列表并构建一个请求范围的注册表，
// 注册表本身仍然是并发安全的，供同一请求内的并发工具调用使用

// Registry 管理工具的注册、查询和执行
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry 创建一个空的工具注册表
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register 注册一个工具，同名工具会被覆盖
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Get 根据名称获取工具，不存在时返回 nil
func (r *Registry) Get(name string) Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// All 返回所有已注册的工具
func (r *Registry) All() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		all = append(all, tool)
	}
	return all
}

// Execute 根据名称执行工具
// 工具不存在、参数校验失败和执行失败都以 error 返回，
// 由调用方转换为失败结果，绝不会让单个工具的失败中断整轮调用
func (r *Registry) Execute(ctx context.Context, name string, params map[string]interface{}) (string, error) {
	tool := r.Get(name)
	if tool == nil {
		return "", fmt.Errorf("tool %q not found", name)
	}

	if errs := tool.ValidateParams(params); len(errs) > 0 {
		return "", fmt.Errorf("invalid parameters for tool %q: %v", name, errs)
	}

	return tool.Execute(ctx, params)
}

// Len 返回已注册工具的数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
