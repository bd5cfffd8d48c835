// Package main 是 Shion 后端网关的主程序入口
// 启动流程：
// 1. 加载 .env 和 YAML 配置
// 2. 创建 Gemini 提供商
// 3. 启动配置的 MCP 工具服务器
// 4. 组装聊天代理和金融分析器
// 5. 启动分析调度器和 HTTP 网关
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shionlabs/shion/internal/agent"
	"github.com/shionlabs/shion/internal/analyst"
	"github.com/shionlabs/shion/internal/api"
	"github.com/shionlabs/shion/internal/config"
	"github.com/shionlabs/shion/internal/mcp"
	"github.com/shionlabs/shion/internal/news"
	"github.com/shionlabs/shion/internal/providers"
	"github.com/shionlabs/shion/internal/scheduler"
)

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	flag.Parse()

	// .env 是可选的，API Key 也可以直接来自进程环境
	if err := godotenv.Load(); err != nil {
		log.Printf("main: no .env file loaded: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("main: failed to load config: %v", err)
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatalf("main: GEMINI_API_KEY is not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, err := providers.NewGeminiProvider(ctx, apiKey, cfg.Agent.Model)
	if err != nil {
		log.Fatalf("main: failed to create model provider: %v", err)
	}

	manager := mcp.NewManager()
	manager.StartAll(ctx, cfg.MCPServers)
	defer manager.StopAll()

	chatAgent := agent.New(provider, manager, agent.Options{
		Temperature:  cfg.Agent.Temperature,
		MaxRounds:    cfg.Agent.MaxToolRounds,
		ModelTimeout: time.Duration(cfg.Agent.ModelTimeoutSec) * time.Second,
		ToolTimeout:  time.Duration(cfg.Agent.ToolTimeoutSec) * time.Second,
		EnableSearch: true,
	})

	store, err := analyst.NewStore(cfg.Analyst.DataDir)
	if err != nil {
		log.Fatalf("main: failed to create analysis store: %v", err)
	}

	if cfg.AnalystEnabled() {
		marketAnalyst := analyst.New(provider, news.NewSearcher(), store,
			cfg.Analyst.Queries, cfg.Analyst.ResultsPerQuery)
		sched := scheduler.New(cycleRunner{marketAnalyst},
			time.Duration(cfg.Analyst.IntervalMinutes)*time.Minute)

		// 首个周期同步执行，放到独立 goroutine 里避免拖慢网关启动
		go func() {
			if err := sched.Start(ctx); err != nil {
				log.Printf("main: failed to start scheduler: %v", err)
			}
		}()
		defer sched.Stop()
	} else {
		log.Printf("main: analyst disabled by config")
	}

	router := api.NewRouter(chatAgent, store)
	errCh := make(chan error, 1)
	go func() {
		log.Printf("main: gateway listening on %s", cfg.Addr())
		errCh <- router.Run(cfg.Addr())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("main: received signal %s, shutting down", sig)
	case err := <-errCh:
		log.Printf("main: gateway stopped: %v", err)
	}
}

// cycleRunner 把分析器适配成调度器需要的 Runner
type cycleRunner struct {
	analyst *analyst.Analyst
}

func (r cycleRunner) RunCycle(ctx context.Context) error {
	_, err := r.analyst.RunCycle(ctx)
	return err
}
