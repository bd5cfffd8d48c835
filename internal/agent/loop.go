// loop.go - 工具调用循环
//
// 这是聊天处理的核心状态机：
// 1. 把回合历史、工具声明和系统指令提交给模型
// 2. 模型响应中带工具调用请求时，逐个执行并把结果批量反馈给模型
// 3. 重复以上过程，直到模型给出不含工具调用的最终回复
// 4. 用响应规范化器从最终输出中提取结构化回复
//
// 同一轮内的工具调用相互独立，可以并发执行；
// 轮与轮之间严格串行——上一轮的结果收齐之前不会发起下一次模型调用
package agent

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/shionlabs/shion/internal/providers"
	"github.com/shionlabs/shion/internal/tools"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// システムインストラクション
// 音声で読み上げるため短い日本語で、返答は必ず JSON フォーマットで出力させる
const systemInstruction = `あなたは「シオン」という名前のAIロボットです。
短く、親しみやすい日本語で返答してください。音声で読み上げるため、1〜2文程度の簡潔な文章でお願いします。
また、利用可能なツール（検索やMCP機能）を積極的に使ってユーザーの質問に答えてください。

【重要】
ユーザーへの返答時は、以下のJSONフォーマットのみを絶対に出力してください（バッククォートなどのマークダウンは不要です）：
{
  "text": "ユーザーに話しかける言葉",
  "emotion": "joy, anger, surprise, thought, default 等の感情ステータス",
  "action": "nod, tilt, shake, none などのアクション動作"
}`

// 固定文案的回退回复
const (
	emptyReplyText   = "返答がありませんでした。"
	modelErrorText   = "通信エラーが発生しました。"
	loopExceededText = "ツールの呼び出しが多すぎて、処理を打ち切りました。もう一度聞いてください。"
)

// ErrToolLoopExceeded 表示模型在达到轮数上限后仍在请求工具调用
// 这是针对"模型永远不停止要求工具"的防御性边界
var ErrToolLoopExceeded = errors.New("tool loop exceeded maximum rounds")

// ToolSource 工具提供方的抽象
// 每次请求实时查询可用工具，mcp.Manager 是生产实现
type ToolSource interface {
	ListTools(ctx context.Context) ([]tools.Tool, error)
}

// Options 循环的行为参数
type Options struct {
	Temperature  float64       // 模型温度
	MaxRounds    int           // 工具调用轮数上限
	ModelTimeout time.Duration // 单次模型调用超时
	ToolTimeout  time.Duration // 单次工具调用超时
	EnableSearch bool          // 是否启用模型内置搜索
}

// Agent 聊天代理
// 每个聊天请求是独立的请求范围执行，Agent 本身无请求级状态，可并发使用
type Agent struct {
	provider providers.ModelProvider
	skills   ToolSource
	opts     Options
}

// New 创建聊天代理
func New(provider providers.ModelProvider, skills ToolSource, opts Options) *Agent {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = 10
	}
	if opts.ModelTimeout <= 0 {
		opts.ModelTimeout = 120 * time.Second
	}
	if opts.ToolTimeout <= 0 {
		opts.ToolTimeout = 30 * time.Second
	}
	return &Agent{provider: provider, skills: skills, opts: opts}
}

// Chat 处理一条用户消息并返回结构化回复
// 模型调用失败和轮数超限都被转换成固定文案的回复，不向调用方抛出错误
func (a *Agent) Chat(ctx context.Context, message string, history []HistoryEntry, image *providers.Blob) *StructuredReply {
	turns := BuildTurns(history, message, image)

	// 每次会话实时查询工具列表
	// 工具提供方不可用时降级为纯对话（内置搜索仍然可用），不中断请求
	registry := tools.NewRegistry()
	if a.skills != nil {
		listed, err := a.skills.ListTools(ctx)
		if err != nil {
			log.Printf("Agent: list tools failed, continuing without custom tools: %v", err)
		}
		for _, t := range listed {
			registry.Register(t)
		}
	}

	raw, err := a.run(ctx, turns, registry)
	if err != nil {
		if errors.Is(err, ErrToolLoopExceeded) {
			log.Printf("Agent: %v", err)
			return fallbackReply(loopExceededText)
		}
		log.Printf("Agent: model call failed: %v", err)
		return fallbackReply(modelErrorText)
	}
	if raw == "" {
		return fallbackReply(emptyReplyText)
	}

	return NormalizeReply(raw)
}

// run 执行工具调用循环，返回模型的最终文本输出
// 返回 ErrToolLoopExceeded 表示达到轮数上限，其他错误来自模型调用
func (a *Agent) run(ctx context.Context, turns []providers.Turn, registry *tools.Registry) (string, error) {
	decls := declarations(registry)

	for round := 0; round < a.opts.MaxRounds; round++ {
		resp, err := a.generate(ctx, turns, decls)
		if err != nil {
			return "", err
		}

		// 不含工具调用请求的响应就是最终回复
		// 文本和工具调用并不互斥：只要有工具调用就继续执行工具
		if !resp.HasFunctionCalls() {
			return resp.Text, nil
		}

		// 先把模型的工具调用回合原样追加到历史，再执行工具
		if resp.Content != nil {
			turns = append(turns, *resp.Content)
		} else {
			turns = append(turns, callTurn(resp.FunctionCalls))
		}

		turns = append(turns, a.executeRound(ctx, registry, resp.FunctionCalls))
	}

	return "", ErrToolLoopExceeded
}

// generate 发起一次带超时的模型调用
func (a *Agent) generate(ctx context.Context, turns []providers.Turn, decls []providers.ToolDecl) (*providers.GenerateResponse, error) {
	mctx, cancel := context.WithTimeout(ctx, a.opts.ModelTimeout)
	defer cancel()

	return a.provider.Generate(mctx, &providers.GenerateRequest{
		SystemInstruction: systemInstruction,
		Turns:             turns,
		Tools:             decls,
		EnableSearch:      a.opts.EnableSearch,
		Temperature:       a.opts.Temperature,
	})
}

// executeRound 并发执行一轮内的所有工具调用，把结果打包成一个 tool 回合
// 结果数量恒等于请求数量，顺序与请求一致；
// 单个工具的失败转换成携带错误文本的失败结果，不中断其他调用
func (a *Agent) executeRound(ctx context.Context, registry *tools.Registry, calls []providers.FunctionCall) providers.Turn {
	results := make([]providers.Part, len(calls))

	g := new(errgroup.Group)
	for i, call := range calls {
		i, call := i, call
		if call.ID == "" {
			call.ID = uuid.NewString()
		}
		g.Go(func() error {
			log.Printf("Agent: executing tool %s (call %s)", call.Name, call.ID)

			tctx, cancel := context.WithTimeout(ctx, a.opts.ToolTimeout)
			defer cancel()

			output, err := registry.Execute(tctx, call.Name, call.Args)
			if err != nil {
				log.Printf("Agent: tool %s failed: %v", call.Name, err)
				results[i] = providers.Part{FunctionResponse: &providers.FunctionResponse{
					Name:     call.Name,
					Response: map[string]interface{}{"error": err.Error()},
				}}
				return nil
			}

			results[i] = providers.Part{FunctionResponse: &providers.FunctionResponse{
				Name:     call.Name,
				Response: map[string]interface{}{"result": output},
			}}
			return nil
		})
	}
	// 工具错误已在各自的 goroutine 内转换为失败结果，这里不会返回错误
	_ = g.Wait()

	return providers.Turn{Role: providers.RoleTool, Parts: results}
}

// declarations 把注册表中的工具转换成模型 API 的工具声明
// 参数 schema 在这里经过桥接转换
func declarations(registry *tools.Registry) []providers.ToolDecl {
	all := registry.All()
	decls := make([]providers.ToolDecl, 0, len(all))
	for _, t := range all {
		decls = append(decls, providers.ToolDecl{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  ConvertSchema(t.Parameters()),
		})
	}
	return decls
}

// callTurn 在模型未返回原始内容时，从工具调用请求合成模型回合
func callTurn(calls []providers.FunctionCall) providers.Turn {
	parts := make([]providers.Part, len(calls))
	for i := range calls {
		call := calls[i]
		parts[i] = providers.Part{FunctionCall: &call}
	}
	return providers.Turn{Role: providers.RoleModel, Parts: parts}
}
