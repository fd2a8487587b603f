// Package eino 提供 eino 工作流的全局可观测性回调
package eino

import (
	"context"
	"time"

	"github.com/cloudwego/eino/callbacks"
	cbmodel "github.com/cloudwego/eino/components/model"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"

	"github.com/VenkataAditya897/vizzy-conversational/pkg/logger"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/metrics"
)

type startTimeKey struct{}

// newChatModelHandler 构建 ChatModel 节点的回调处理器
//
// 记录每次模型调用的耗时、调用结果和 token 用量。
func newChatModelHandler() callbacks.Handler {
	modelHandler := &cbtemplate.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *callbacks.RunInfo, _ *cbmodel.CallbackInput) context.Context {
			return context.WithValue(ctx, startTimeKey{}, time.Now())
		},
		OnEnd: func(ctx context.Context, info *callbacks.RunInfo, output *cbmodel.CallbackOutput) context.Context {
			workflow := runName(info)
			provider, model := modelLabels(output)

			metrics.LLMCallTotal.WithLabelValues(workflow, provider, model, "success").Inc()
			if start, ok := ctx.Value(startTimeKey{}).(time.Time); ok {
				metrics.LLMCallDuration.WithLabelValues(workflow, provider, model).
					Observe(time.Since(start).Seconds())
			}

			if output != nil && output.TokenUsage != nil {
				usage := output.TokenUsage
				metrics.LLMTokensUsed.WithLabelValues(workflow, provider, model, "prompt").
					Add(float64(usage.PromptTokens))
				metrics.LLMTokensUsed.WithLabelValues(workflow, provider, model, "completion").
					Add(float64(usage.CompletionTokens))
				logger.Debug(ctx, "模型调用完成",
					"workflow", workflow,
					"model", model,
					"prompt_tokens", usage.PromptTokens,
					"completion_tokens", usage.CompletionTokens,
				)
			}
			return ctx
		},
		OnError: func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			workflow := runName(info)
			metrics.LLMCallTotal.WithLabelValues(workflow, "", "", "error").Inc()
			logger.Warn(ctx, "模型调用失败", "workflow", workflow, "error", err)
			return ctx
		},
	}

	return cbtemplate.NewHandlerHelper().ChatModel(modelHandler).Handler()
}

func runName(info *callbacks.RunInfo) string {
	if info == nil {
		return "unknown"
	}
	if info.Name != "" {
		return info.Name
	}
	return string(info.Component)
}

func modelLabels(output *cbmodel.CallbackOutput) (provider, model string) {
	if output == nil || output.Config == nil {
		return "", ""
	}
	return "", output.Config.Model
}
