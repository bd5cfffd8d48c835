package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// 配置文件不存在时使用全默认配置
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, "gemini-2.5-flash", cfg.Agent.Model)
	assert.Equal(t, 0.7, cfg.Agent.Temperature)
	assert.Equal(t, 10, cfg.Agent.MaxToolRounds)
	assert.Equal(t, 120, cfg.Agent.ModelTimeoutSec)
	assert.Equal(t, 30, cfg.Agent.ToolTimeoutSec)
	assert.True(t, cfg.AnalystEnabled())
	assert.Equal(t, 10, cfg.Analyst.IntervalMinutes)
	assert.Equal(t, "./data", cfg.Analyst.DataDir)
	assert.Equal(t, 3, cfg.Analyst.ResultsPerQuery)
	assert.Empty(t, cfg.MCPServers)
}

func TestLoadFile(t *testing.T) {
	content := `
gateway:
  host: 127.0.0.1
  port: 9000
agent:
  model: gemini-2.5-pro
  maxToolRounds: 5
analyst:
  enabled: false
  intervalMinutes: 30
  queries:
    - "株式市場 最新"
mcpServers:
  skills:
    command: ./shion-skills
    args: ["-v"]
  remote:
    url: http://localhost:3001/sse
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, "gemini-2.5-pro", cfg.Agent.Model)
	assert.Equal(t, 5, cfg.Agent.MaxToolRounds)
	assert.False(t, cfg.AnalystEnabled())
	assert.Equal(t, 30, cfg.Analyst.IntervalMinutes)
	assert.Equal(t, []string{"株式市場 最新"}, cfg.Analyst.Queries)

	require.Len(t, cfg.MCPServers, 2)
	assert.Equal(t, "./shion-skills", cfg.MCPServers["skills"].Command)
	assert.Equal(t, []string{"-v"}, cfg.MCPServers["skills"].Args)
	assert.Equal(t, "http://localhost:3001/sse", cfg.MCPServers["remote"].URL)

	// 未设置的字段仍然取默认值
	assert.Equal(t, 120, cfg.Agent.ModelTimeoutSec)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gateway: [broken"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
