// Package providers 定义了与大语言模型交互的核心类型和接口
// 对话以回合（Turn）为单位组织，每个回合由若干内容片段（Part）构成，
// 片段可以是纯文本、内嵌图片、模型发出的工具调用请求或工具执行结果
package providers

import "context"

// 回合角色常量
// 与模型 API 的对话角色一一对应
const (
	RoleUser  = "user"  // 用户发言
	RoleModel = "model" // 模型回复
	RoleTool  = "tool"  // 工具执行结果
)

// FunctionCall 表示模型发出的一次工具调用请求
type FunctionCall struct {
	ID   string                 // 调用的唯一标识符，模型未提供时由循环补齐
	Name string                 // 要调用的工具名称
	Args map[string]interface{} // 调用参数
}

// FunctionResponse 表示一次工具调用的结果
// 无论工具执行成功还是失败都会产生一个结果，失败时 Response 携带 error 键
type FunctionResponse struct {
	Name     string                 // 对应的工具名称
	Response map[string]interface{} // 结果内容，成功为 {"result": ...}，失败为 {"error": ...}
}

// Blob 表示内嵌的二进制内容（如用户上传的图片）
type Blob struct {
	MIMEType string // MIME 类型，如 image/jpeg
	Data     []byte // 原始字节
}

// Part 表示回合中的一个内容片段
// 四个字段互斥，只应设置其中一个
type Part struct {
	Text             string            // 文本内容
	InlineData       *Blob             // 内嵌二进制内容
	FunctionCall     *FunctionCall     // 模型发出的工具调用请求
	FunctionResponse *FunctionResponse // 工具执行结果
}

// Turn 表示对话中的一个回合
// 一旦追加到历史中就不再修改，循环只追加新回合
type Turn struct {
	Role  string // 回合角色：user、model、tool
	Parts []Part // 内容片段序列
}

// TextTurn 构造一个只含单段文本的回合
func TextTurn(role, text string) Turn {
	return Turn{Role: role, Parts: []Part{{Text: text}}}
}

// ToolDecl 表示向模型声明的一个可用工具
// 每次会话都从工具提供方实时查询得到，不跨会话缓存
type ToolDecl struct {
	Name        string                 // 工具名称，会话内唯一
	Description string                 // 工具功能描述
	Parameters  map[string]interface{} // 参数 schema（已转换为模型 API 要求的格式）
}

// GenerateRequest 表示一次模型调用请求
type GenerateRequest struct {
	SystemInstruction string     // 系统指令
	Turns             []Turn     // 完整的回合历史
	Tools             []ToolDecl // 自定义工具声明
	EnableSearch      bool       // 是否同时启用模型内置的网络搜索能力
	Temperature       float64    // 温度参数
}

// GenerateResponse 表示模型的一次响应
// 文本和工具调用请求并不互斥：只要存在工具调用请求就走工具执行路径
type GenerateResponse struct {
	Text          string         // 模型生成的文本，可能为空
	FunctionCalls []FunctionCall // 模型请求的工具调用，可能为空
	Content       *Turn          // 模型本回合的原始内容，用于原样追加到历史
}

// HasFunctionCalls 判断响应中是否包含工具调用请求
func (r *GenerateResponse) HasFunctionCalls() bool {
	return len(r.FunctionCalls) > 0
}

// ModelProvider 是模型端点的抽象接口
// 系统假定只有一个模型端点，接口存在的意义是让循环和分析管线可以用桩实现测试
type ModelProvider interface {
	// Generate 发起一次模型调用
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}
