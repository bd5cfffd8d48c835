// Package main 是 Shion 技能服务器的主程序入口
// 以 stdio MCP 服务器的形式对外提供本地技能：
//   - get_current_time: 当前日期时间
//   - get_weather: 指定地域的当前天气（Open-Meteo）
//
// 网关通过 mcpServers 配置以命令方式启动本进程
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/shionlabs/shion/internal/weather"
)

func main() {
	s := server.NewMCPServer("shion-skills-server", "1.0.0")

	s.AddTool(
		mcp.NewTool("get_current_time",
			mcp.WithDescription("現在の日付と時刻を取得します。"),
		),
		handleCurrentTime,
	)

	weatherClient := weather.NewClient()
	s.AddTool(
		mcp.NewTool("get_weather",
			mcp.WithDescription("指定した地域の天気を取得します。"),
			mcp.WithString("location",
				mcp.Required(),
				mcp.Description("天気を知りたい地域（例：東京、大阪）"),
			),
		),
		handleWeather(weatherClient),
	)

	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("skills: server stopped: %v", err)
	}
}

func handleCurrentTime(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := time.Now().Format("2006-01-02 15:04:05")
	return mcp.NewToolResultText(fmt.Sprintf("現在の日付と時刻は %s です。", now)), nil
}

func handleWeather(client *weather.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		location, err := request.RequireString("location")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		report, err := client.Current(ctx, location)
		if err != nil {
			log.Printf("skills: weather lookup failed for %q: %v", location, err)
			return mcp.NewToolResultError(fmt.Sprintf("%sの天気を取得できませんでした。", location)), nil
		}

		text := fmt.Sprintf("%sの今日の天気は%s、気温は%.0f度です。",
			report.Location, report.Condition, report.Temperature)
		return mcp.NewToolResultText(text), nil
	}
}
