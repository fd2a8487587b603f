package planning

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	openaiopt "github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	wfmodel "github.com/VenkataAditya897/vizzy-conversational/internal/workflow/model"
	"github.com/VenkataAditya897/vizzy-conversational/internal/workflow/node"
	"github.com/VenkataAditya897/vizzy-conversational/internal/workflow/prompt"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/logger"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/metrics"
)

// 规划路径
const (
	variantText   = "text"
	variantVision = "vision"
)

// Planner 规划器服务
//
// 每轮对话要么提出恰好一个澄清问题，要么给出最终生成提示词。
// 带参考图的消息走视觉路径，两条路径各编译一次并缓存。
type Planner struct {
	factory ChatModelFactory

	textOnce  sync.Once
	textChain compose.Runnable[map[string]any, *schema.Message]
	textErr   error

	visionOnce  sync.Once
	visionChain compose.Runnable[map[string]any, *schema.Message]
	visionErr   error
}

// NewPlanner 创建规划器服务
func NewPlanner(factory ChatModelFactory) *Planner {
	return &Planner{factory: factory}
}

// Plan 执行一轮规划
func (p *Planner) Plan(ctx context.Context, input *wfmodel.PlannerInput) (*wfmodel.PlannerResult, error) {
	variant := variantText
	if len(input.ImageURLs) > 0 {
		variant = variantVision
	}

	start := time.Now()
	result, err := p.plan(ctx, variant, input)
	metrics.PlannerTurnDuration.WithLabelValues(variant).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.PlannerTurnsTotal.WithLabelValues(variant, "error").Inc()
		return nil, err
	case result.IsFinal():
		metrics.PlannerTurnsTotal.WithLabelValues(variant, "final").Inc()
	default:
		metrics.PlannerTurnsTotal.WithLabelValues(variant, "question").Inc()
	}
	return result, nil
}

func (p *Planner) plan(ctx context.Context, variant string, input *wfmodel.PlannerInput) (*wfmodel.PlannerResult, error) {
	chain, err := p.chainFor(ctx, variant)
	if err != nil {
		return nil, err
	}

	vars := map[string]any{
		"preferences":      input.PreferencesBlock,
		"draft_prompt":     input.DraftPrompt,
		"pending_question": input.PendingQuestion,
		"history":          toSchemaMessages(input.History),
	}
	if variant == variantVision {
		vars["user_turn"] = []*schema.Message{visionMessage(input)}
	} else {
		vars["user_turn"] = []*schema.Message{schema.UserMessage(input.UserMessage)}
	}

	out, err := invokeWithSchema(ctx, chain, vars, wfmodel.PlannerResponseSchema)
	if err != nil {
		return nil, node.ClassifyProviderError(err)
	}

	raw, err := node.ExtractJSON(out.Content)
	if err != nil {
		return nil, err
	}

	var result wfmodel.PlannerResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeProtocol, "规划结果不是合法 JSON")
	}
	if err := result.Normalize(); err != nil {
		return nil, err
	}
	return &result, nil
}

func (p *Planner) chainFor(ctx context.Context, variant string) (compose.Runnable[map[string]any, *schema.Message], error) {
	if variant == variantVision {
		p.visionOnce.Do(func() {
			p.visionChain, p.visionErr = p.buildChain(ctx, variant)
		})
		return p.visionChain, p.visionErr
	}
	p.textOnce.Do(func() {
		p.textChain, p.textErr = p.buildChain(ctx, variant)
	})
	return p.textChain, p.textErr
}

// buildChain 编译规划链：提示词模板 -> ChatModel
func (p *Planner) buildChain(ctx context.Context, variant string) (compose.Runnable[map[string]any, *schema.Message], error) {
	tplName := prompt.PlannerV1
	if variant == variantVision {
		tplName = prompt.VisionPlannerV1
	}
	system, err := prompt.Get(tplName)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfiguration, "加载规划提示词失败")
	}

	tpl := einoprompt.FromMessages(schema.FString,
		schema.SystemMessage(system),
		schema.MessagesPlaceholder("history", true),
		schema.MessagesPlaceholder("user_turn", false),
	)

	var cm einomodel.ToolCallingChatModel
	if variant == variantVision {
		cm, err = p.factory.VisionModel(ctx)
	} else {
		cm, err = p.factory.PlannerModel(ctx)
	}
	if err != nil {
		return nil, err
	}

	return compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(tpl, compose.WithNodeName("planner_prompt")).
		AppendChatModel(cm, compose.WithNodeName("planner_"+variant)).
		Compile(ctx, compose.WithGraphName("planner_"+variant))
}

// visionMessage 构造带参考图的多模态用户消息
func visionMessage(input *wfmodel.PlannerInput) *schema.Message {
	parts := make([]schema.ChatMessagePart, 0, len(input.ImageURLs)+1)
	if input.UserMessage != "" {
		parts = append(parts, schema.ChatMessagePart{
			Type: schema.ChatMessagePartTypeText,
			Text: input.UserMessage,
		})
	}
	for _, url := range input.ImageURLs {
		parts = append(parts, schema.ChatMessagePart{
			Type: schema.ChatMessagePartTypeImageURL,
			ImageURL: &schema.ChatMessageImageURL{
				URL:    url,
				Detail: schema.ImageURLDetailAuto,
			},
		})
	}
	return &schema.Message{Role: schema.User, MultiContent: parts}
}

// toSchemaMessages 把历史消息转换为模型消息
func toSchemaMessages(history []wfmodel.HistoryMessage) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(history))
	for _, h := range history {
		switch h.Role {
		case "assistant":
			msgs = append(msgs, schema.AssistantMessage(h.Content, nil))
		default:
			msgs = append(msgs, schema.UserMessage(h.Content))
		}
	}
	return msgs
}

// invokeWithSchema 先带 response_format 约束调用，端点不支持时降级重试
func invokeWithSchema(ctx context.Context, chain compose.Runnable[map[string]any, *schema.Message], vars map[string]any, responseSchema map[string]any) (*schema.Message, error) {
	out, err := chain.Invoke(ctx, vars,
		compose.WithChatModelOption(openaiopt.WithExtraFields(map[string]any{
			"response_format": responseSchema,
		})),
	)
	if err == nil {
		return out, nil
	}
	if !node.IsResponseFormatUnsupported(err) {
		return nil, err
	}

	logger.Debug(ctx, "端点不支持 response_format，降级为普通 JSON 模式")
	return chain.Invoke(ctx, vars)
}
