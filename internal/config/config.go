// Package config 提供 YAML 配置文件的加载
// 未设置的字段在加载时填充默认值，配置文件整体缺失时使用全默认配置，
// API Key 等敏感信息不进配置文件，由环境变量提供
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/shionlabs/shion/internal/mcp"
)

// Config 根配置结构体
type Config struct {
	// Gateway HTTP 网关配置
	Gateway GatewayConfig `yaml:"gateway"`

	// Agent 聊天代理配置
	Agent AgentConfig `yaml:"agent"`

	// Analyst 金融分析器配置
	Analyst AnalystConfig `yaml:"analyst"`

	// MCPServers MCP 工具服务器配置，键是服务器名称
	MCPServers map[string]mcp.ServerConfig `yaml:"mcpServers"`
}

// GatewayConfig HTTP 网关配置
type GatewayConfig struct {
	// Host 监听地址，默认 0.0.0.0
	Host string `yaml:"host"`

	// Port 监听端口，默认 8000
	Port int `yaml:"port"`
}

// AgentConfig 聊天代理配置
type AgentConfig struct {
	// Model 使用的模型标识符，默认 gemini-2.5-flash
	Model string `yaml:"model"`

	// Temperature 温度参数
	Temperature float64 `yaml:"temperature"`

	// MaxToolRounds 单次对话的工具调用轮数上限，默认 10
	MaxToolRounds int `yaml:"maxToolRounds"`

	// ModelTimeoutSec 单次模型调用的超时秒数，默认 120
	ModelTimeoutSec int `yaml:"modelTimeoutSec"`

	// ToolTimeoutSec 单次工具调用的超时秒数，默认 30
	ToolTimeoutSec int `yaml:"toolTimeoutSec"`
}

// AnalystConfig 金融分析器配置
type AnalystConfig struct {
	// Enabled 是否启用周期性分析，默认启用
	Enabled *bool `yaml:"enabled"`

	// IntervalMinutes 分析周期间隔分钟数，默认 10
	IntervalMinutes int `yaml:"intervalMinutes"`

	// DataDir 分析数据的存放目录，默认 ./data
	DataDir string `yaml:"dataDir"`

	// Queries 新闻检索词，默认使用内置的四条财经检索词
	Queries []string `yaml:"queries"`

	// ResultsPerQuery 每条检索词抓取的新闻条数，默认 3
	ResultsPerQuery int `yaml:"resultsPerQuery"`
}

// AnalystEnabled 返回是否启用周期性分析
func (c *Config) AnalystEnabled() bool {
	if c.Analyst.Enabled == nil {
		return true
	}
	return *c.Analyst.Enabled
}

// Addr 返回网关的监听地址
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Gateway.Host, c.Gateway.Port)
}

// Load 加载配置文件并填充默认值
// 文件不存在时返回全默认配置，路径支持 "~/" 前缀
func Load(path string) (*Config, error) {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, path[2:])
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// 没有配置文件也能跑，全部走默认值
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if cfg.Gateway.Host == "" {
		cfg.Gateway.Host = "0.0.0.0"
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 8000
	}
	if cfg.Agent.Model == "" {
		cfg.Agent.Model = "gemini-2.5-flash"
	}
	if cfg.Agent.Temperature == 0 {
		cfg.Agent.Temperature = 0.7
	}
	if cfg.Agent.MaxToolRounds == 0 {
		cfg.Agent.MaxToolRounds = 10
	}
	if cfg.Agent.ModelTimeoutSec == 0 {
		cfg.Agent.ModelTimeoutSec = 120
	}
	if cfg.Agent.ToolTimeoutSec == 0 {
		cfg.Agent.ToolTimeoutSec = 30
	}
	if cfg.Analyst.IntervalMinutes == 0 {
		cfg.Analyst.IntervalMinutes = 10
	}
	if cfg.Analyst.DataDir == "" {
		cfg.Analyst.DataDir = "./data"
	}
	if cfg.Analyst.ResultsPerQuery == 0 {
		cfg.Analyst.ResultsPerQuery = 3
	}

	return &cfg, nil
}
