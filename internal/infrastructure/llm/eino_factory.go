// Package llm 提供 LLM 提供商接入
package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/VenkataAditya897/vizzy-conversational/internal/config"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// Factory 按提供商名称创建并缓存 ChatModel
type Factory struct {
	cfg    *config.LLMConfig
	mu     sync.RWMutex
	models map[string]model.ToolCallingChatModel
}

// NewFactory 创建 ChatModel 工厂
func NewFactory(cfg *config.LLMConfig) *Factory {
	return &Factory{
		cfg:    cfg,
		models: make(map[string]model.ToolCallingChatModel),
	}
}

// GetChatModel 获取指定提供商的 ChatModel，已创建过则复用
func (f *Factory) GetChatModel(ctx context.Context, provider string) (model.ToolCallingChatModel, error) {
	f.mu.RLock()
	if m, ok := f.models[provider]; ok {
		f.mu.RUnlock()
		return m, nil
	}
	f.mu.RUnlock()

	pc, ok := f.cfg.Providers[provider]
	if !ok {
		return nil, apperrors.Configuration(fmt.Sprintf("未知的 LLM 提供商: %s", provider))
	}
	if pc.APIKey == "" {
		return nil, apperrors.Configuration(fmt.Sprintf("提供商 %s 缺少 API Key", provider))
	}

	temperature := float32(pc.Temperature)
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      pc.APIKey,
		BaseURL:     pc.BaseURL,
		Model:       pc.Model,
		Temperature: &temperature,
		Timeout:     pc.Timeout,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfiguration, "创建 ChatModel 失败")
	}

	f.mu.Lock()
	f.models[provider] = chatModel
	f.mu.Unlock()
	return chatModel, nil
}

// PlannerModel 文本规划模型
func (f *Factory) PlannerModel(ctx context.Context) (model.ToolCallingChatModel, error) {
	return f.GetChatModel(ctx, f.cfg.PlannerProvider)
}

// VisionModel 视觉规划模型，未配置时回落到文本规划提供商
func (f *Factory) VisionModel(ctx context.Context) (model.ToolCallingChatModel, error) {
	provider := f.cfg.VisionProvider
	if provider == "" {
		provider = f.cfg.PlannerProvider
	}
	return f.GetChatModel(ctx, provider)
}

// IntentModel 意图分类模型，未配置时回落到文本规划提供商
func (f *Factory) IntentModel(ctx context.Context) (model.ToolCallingChatModel, error) {
	provider := f.cfg.IntentProvider
	if provider == "" {
		provider = f.cfg.PlannerProvider
	}
	return f.GetChatModel(ctx, provider)
}

// ProviderConfig 返回指定角色的提供商配置，用于日志和指标打点
func (f *Factory) ProviderConfig(provider string) (config.ProviderConfig, bool) {
	pc, ok := f.cfg.Providers[provider]
	return pc, ok
}
