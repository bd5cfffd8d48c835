// gemini.go - 基于 google.golang.org/genai 的 Gemini 模型提供商
// 自定义工具声明和内置的 Google 搜索能力可以合并在同一个 Tool 对象里一起声明
package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider 通过 Gemini API 实现 ModelProvider 接口
type GeminiProvider struct {
	client *genai.Client // genai 客户端
	model  string        // 模型名称，如 gemini-2.5-flash
}

// NewGeminiProvider 创建 Gemini 提供商
// apiKey 来自 GEMINI_API_KEY 环境变量，model 为空时使用默认模型
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// Generate 实现 ModelProvider 接口
func (p *GeminiProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	contents := make([]*genai.Content, 0, len(req.Turns))
	for i := range req.Turns {
		contents = append(contents, toContent(&req.Turns[i]))
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.SystemInstruction)},
		}
	}

	// 工具声明：一个 Tool 对象同时承载 google_search 和 function_declarations
	if tool := buildTool(req); tool != nil {
		cfg.Tools = []*genai.Tool{tool}
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content failed: %w", err)
	}

	out := &GenerateResponse{Text: resp.Text()}
	for _, fc := range resp.FunctionCalls() {
		out.FunctionCalls = append(out.FunctionCalls, FunctionCall{
			ID:   fc.ID,
			Name: fc.Name,
			Args: fc.Args,
		})
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		out.Content = fromContent(resp.Candidates[0].Content)
	}

	return out, nil
}

// buildTool 把请求中的工具声明组装成 genai.Tool
// 没有任何能力需要声明时返回 nil
func buildTool(req *GenerateRequest) *genai.Tool {
	tool := &genai.Tool{}
	if req.EnableSearch {
		tool.GoogleSearch = &genai.GoogleSearch{}
	}
	for _, decl := range req.Tools {
		tool.FunctionDeclarations = append(tool.FunctionDeclarations, &genai.FunctionDeclaration{
			Name:        decl.Name,
			Description: decl.Description,
			Parameters:  schemaFromMap(decl.Parameters),
		})
	}
	if !req.EnableSearch && len(tool.FunctionDeclarations) == 0 {
		return nil
	}
	return tool
}

// schemaFromMap 把通用的 map 形式 schema 转换成 genai.Schema
// 输入已由 schema 桥接层转换成大写类型标记，这里只做结构映射
func schemaFromMap(params map[string]interface{}) *genai.Schema {
	if len(params) == 0 {
		// Gemini 要求 object 类型的 schema，空参数工具声明一个空对象
		return &genai.Schema{Type: genai.TypeObject}
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return &genai.Schema{Type: genai.TypeObject}
	}
	var schema genai.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return &genai.Schema{Type: genai.TypeObject}
	}
	return &schema
}

// toContent 把内部回合转换为 genai.Content
func toContent(t *Turn) *genai.Content {
	parts := make([]*genai.Part, 0, len(t.Parts))
	for _, p := range t.Parts {
		switch {
		case p.FunctionCall != nil:
			parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
				Name: p.FunctionCall.Name,
				Args: p.FunctionCall.Args,
			}})
		case p.FunctionResponse != nil:
			parts = append(parts, genai.NewPartFromFunctionResponse(p.FunctionResponse.Name, p.FunctionResponse.Response))
		case p.InlineData != nil:
			parts = append(parts, genai.NewPartFromBytes(p.InlineData.Data, p.InlineData.MIMEType))
		default:
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
	}
	return &genai.Content{Role: t.Role, Parts: parts}
}

// fromContent 把 genai.Content 转换回内部回合
// 只保留循环关心的片段类型，其余内容（如思考过程）忽略
func fromContent(c *genai.Content) *Turn {
	t := &Turn{Role: c.Role}
	if t.Role == "" {
		t.Role = RoleModel
	}
	for _, p := range c.Parts {
		switch {
		case p.FunctionCall != nil:
			t.Parts = append(t.Parts, Part{FunctionCall: &FunctionCall{
				ID:   p.FunctionCall.ID,
				Name: p.FunctionCall.Name,
				Args: p.FunctionCall.Args,
			}})
		case p.Text != "":
			t.Parts = append(t.Parts, Part{Text: p.Text})
		}
	}
	return t
}
