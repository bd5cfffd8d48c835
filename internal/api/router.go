// Package api 提供 HTTP 网关
// 对外暴露聊天入口和分析结果查询接口，供语音客户端调用
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/shionlabs/shion/internal/agent"
	"github.com/shionlabs/shion/internal/analyst"
)

// NewRouter 组装路由
func NewRouter(chatAgent *agent.Agent, store *analyst.Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), corsMiddleware())

	h := &handlers{agent: chatAgent, store: store}

	r.GET("/", h.health)
	r.POST("/chat", h.chat)

	finance := r.Group("/finance")
	{
		finance.GET("/latest", h.financeLatest)
		finance.GET("/history", h.financeHistory)
	}

	return r
}

// corsMiddleware 允许任意来源的跨域访问
// 客户端是移动端 App 的 WebView 和开发期的本地页面，来源不固定
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
