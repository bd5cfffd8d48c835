package api

import (
	"encoding/base64"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shionlabs/shion/internal/agent"
	"github.com/shionlabs/shion/internal/analyst"
	"github.com/shionlabs/shion/internal/providers"
)

type handlers struct {
	agent *agent.Agent
	store *analyst.Store
}

// ChatRequest 聊天请求体
// history 由客户端原样回传上一次响应里的 history 字段；
// image 是可选的 Base64 编码图片，用于拍照提问场景
type ChatRequest struct {
	Message       string               `json:"message" binding:"required"`
	History       []agent.HistoryEntry `json:"history"`
	Image         string               `json:"image"`
	ImageMIMEType string               `json:"image_mime_type"`
}

// health 健康检查
func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Shion AI Gateway is running.",
	})
}

// chat 处理一轮对话
// 响应里的 history 已追加本轮的用户发言和模型回复，
// 客户端下一轮原样回传即可维持多轮上下文
func (h *handlers) chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var image *providers.Blob
	if req.Image != "" {
		data, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image encoding"})
			return
		}
		mimeType := req.ImageMIMEType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		image = &providers.Blob{MIMEType: mimeType, Data: data}
	}

	reply := h.agent.Chat(c.Request.Context(), req.Message, req.History, image)

	history := append(req.History,
		agent.HistoryEntry{
			Role:  providers.RoleUser,
			Parts: []map[string]interface{}{{"text": req.Message}},
		},
		agent.HistoryEntry{
			Role:  providers.RoleModel,
			Parts: []map[string]interface{}{{"text": reply.Text}},
		},
	)

	c.JSON(http.StatusOK, gin.H{
		"reply":   reply,
		"history": history,
	})
}

// financeLatest 返回最新的分析结果
func (h *handlers) financeLatest(c *gin.Context) {
	rec, err := h.store.Latest()
	if err != nil {
		log.Printf("API: error reading latest analysis: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusOK, gin.H{"status": "no_data", "analysis": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "analysis": rec})
}

// financeHistory 返回最近 n 条分析结果，n 默认 10
func (h *handlers) financeHistory(c *gin.Context) {
	n := 10
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a positive integer"})
			return
		}
		n = parsed
	}

	records, err := h.store.History(n)
	if err != nil {
		log.Printf("API: error reading analysis history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"count":    len(records),
		"analyses": records,
	})
}
