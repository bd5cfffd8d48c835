// Package mcp 提供了 MCP (Model Context Protocol) 客户端实现
// 基于 mark3labs/mcp-go 库实现
// 支持两种 MCP 服务器类型：命令启动型（stdio）和 URL 连接型（SSE）
//
// MCP 服务器是长驻的工具提供方进程，核心只通过
// list tools / call tool 两个操作与它交互。
// 工具列表在每次请求时实时查询，不跨会话缓存——可用工具集由提供方决定
package mcp

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/shionlabs/shion/internal/tools"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// ServerConfig MCP 服务器连接配置
type ServerConfig struct {
	// Command 启动 MCP 服务器的命令（命令型）
	Command string `yaml:"command"`

	// Args 命令行参数列表
	Args []string `yaml:"args"`

	// Env 启动命令时附加的环境变量
	Env map[string]string `yaml:"env"`

	// URL MCP 服务器的 HTTP URL（URL 型），与 Command 二选一
	URL string `yaml:"url"`

	// Headers 访问 URL 型服务器时使用的自定义请求头
	Headers map[string]string `yaml:"headers"`
}

// Client 单个 MCP 服务器的客户端
type Client struct {
	name      string
	config    *ServerConfig
	mcpClient *client.Client
	mu        sync.RWMutex
	running   bool
}

// NewClient 创建新的 MCP 客户端
func NewClient(name string, config *ServerConfig) *Client {
	return &Client{
		name:   name,
		config: config,
	}
}

// Start 根据配置类型连接到 MCP 服务器并完成初始化握手
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	var mcpClient *client.Client
	switch {
	case c.config.URL != "":
		log.Printf("MCP client %s: connecting to SSE server %s", c.name, c.config.URL)
		var opts []transport.ClientOption
		if len(c.config.Headers) > 0 {
			opts = append(opts, transport.WithHeaders(c.config.Headers))
		}
		sseClient, err := client.NewSSEMCPClient(c.config.URL, opts...)
		if err != nil {
			return fmt.Errorf("failed to create SSE client: %w", err)
		}
		mcpClient = sseClient
	case c.config.Command != "":
		log.Printf("MCP client %s: starting command %s %v", c.name, c.config.Command, c.config.Args)
		var env []string
		for k, v := range c.config.Env {
			env = append(env, k+"="+v)
		}
		mcpClient = client.NewClient(transport.NewStdio(c.config.Command, env, c.config.Args...))
	default:
		return fmt.Errorf("MCP client %s: neither URL nor Command configured", c.name)
	}

	if err := mcpClient.Start(ctx); err != nil {
		return fmt.Errorf("failed to start client: %w", err)
	}

	_, err := mcpClient.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "shion",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		mcpClient.Close()
		return fmt.Errorf("initialize failed: %w", err)
	}

	c.mcpClient = mcpClient
	c.running = true
	log.Printf("MCP client %s: started", c.name)
	return nil
}

// ListTools 从 MCP 服务器实时查询工具列表
// 每次调用都发起 ListTools 请求，结果不缓存
func (c *Client) ListTools(ctx context.Context) ([]tools.Tool, error) {
	c.mu.RLock()
	mcpClient := c.mcpClient
	running := c.running
	c.mu.RUnlock()

	if !running {
		return nil, fmt.Errorf("MCP client %s is not running", c.name)
	}

	result, err := mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("ListTools failed: %w", err)
	}

	listed := make([]tools.Tool, len(result.Tools))
	for i, t := range result.Tools {
		listed[i] = c.newTool(t)
	}
	return listed, nil
}

// newTool 将 MCP 工具声明包装成 tools.Tool
func (c *Client) newTool(mcpTool mcp.Tool) tools.Tool {
	inputSchema := mcpTool.InputSchema
	params := map[string]interface{}{
		"type": inputSchema.Type,
	}
	if len(inputSchema.Properties) > 0 {
		params["properties"] = inputSchema.Properties
	}
	if len(inputSchema.Required) > 0 {
		params["required"] = inputSchema.Required
	}

	return &toolWrapper{
		name:        mcpTool.Name,
		description: mcpTool.Description,
		parameters:  params,
		client:      c,
	}
}

// Stop 关闭与 MCP 服务器的连接
func (c *Client) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	if c.mcpClient != nil {
		c.mcpClient.Close()
	}
	c.running = false
	log.Printf("MCP client %s: stopped", c.name)
}

// toolWrapper 把 MCP 工具适配为 tools.Tool 接口
type toolWrapper struct {
	name        string
	description string
	parameters  map[string]interface{}
	client      *Client
}

func (t *toolWrapper) Name() string                       { return t.name }
func (t *toolWrapper) Description() string                { return t.description }
func (t *toolWrapper) Parameters() map[string]interface{} { return t.parameters }

// ValidateParams MCP 工具的参数由服务器侧校验，这里只检查必需参数
func (t *toolWrapper) ValidateParams(params map[string]interface{}) []string {
	var errors []string
	required, ok := t.parameters["required"].([]string)
	if !ok {
		// 来自 JSON 反序列化时是 []interface{}
		rawRequired, ok := t.parameters["required"].([]interface{})
		if !ok {
			return errors
		}
		for _, req := range rawRequired {
			if reqStr, ok := req.(string); ok {
				required = append(required, reqStr)
			}
		}
	}
	for _, req := range required {
		if _, exists := params[req]; !exists {
			errors = append(errors, fmt.Sprintf("missing required parameter: %s", req))
		}
	}
	return errors
}

// Execute 通过 MCP 协议执行工具调用
func (t *toolWrapper) Execute(ctx context.Context, params map[string]interface{}) (string, error) {
	result, err := t.client.mcpClient.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      t.name,
			Arguments: params,
		},
	})
	if err != nil {
		return "", fmt.Errorf("call tool failed: %w", err)
	}

	var output string
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			output += textContent.Text
		}
	}
	if output == "" {
		output = "Success"
	}

	return output, nil
}

// Manager 管理所有 MCP 客户端连接
type Manager struct {
	clients map[string]*Client
	mu      sync.RWMutex
}

// NewManager 创建新的 MCP 管理器
func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]*Client),
	}
}

// StartAll 启动所有配置的 MCP 服务器
// 单个服务器启动失败只记日志，不影响其他服务器
func (m *Manager) StartAll(ctx context.Context, configs map[string]ServerConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, config := range configs {
		cfg := config
		mcpClient := NewClient(name, &cfg)
		if err := mcpClient.Start(ctx); err != nil {
			log.Printf("MCP server %s: failed to start: %v", name, err)
			continue
		}
		m.clients[name] = mcpClient
	}
}

// StopAll 停止所有 MCP 客户端
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, mcpClient := range m.clients {
		mcpClient.Stop()
	}
	m.clients = make(map[string]*Client)
}

// ListTools 聚合所有 MCP 服务器的实时工具列表
// 单个服务器查询失败只记日志，其余服务器的工具照常返回
func (m *Manager) ListTools(ctx context.Context) ([]tools.Tool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []tools.Tool
	for name, mcpClient := range m.clients {
		listed, err := mcpClient.ListTools(ctx)
		if err != nil {
			log.Printf("MCP server %s: list tools failed: %v", name, err)
			continue
		}
		all = append(all, listed...)
	}
	return all, nil
}
