package planning

import (
	"context"
	"encoding/json"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	wfmodel "github.com/VenkataAditya897/vizzy-conversational/internal/workflow/model"
	"github.com/VenkataAditya897/vizzy-conversational/internal/workflow/node"
	"github.com/VenkataAditya897/vizzy-conversational/internal/workflow/prompt"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/logger"
)

// IntentClassifier 意图分类服务
//
// 判定用户最终想要的媒体类型。分类器是弱依赖：
// 任何失败都折叠为 invalid 结果，不阻塞主流程。
type IntentClassifier struct {
	factory ChatModelFactory

	once     sync.Once
	chain    compose.Runnable[map[string]any, *schema.Message]
	chainErr error
}

// NewIntentClassifier 创建意图分类服务
func NewIntentClassifier(factory ChatModelFactory) *IntentClassifier {
	return &IntentClassifier{factory: factory}
}

// Classify 对用户消息做媒体类型分类
func (c *IntentClassifier) Classify(ctx context.Context, input *wfmodel.IntentInput) *wfmodel.IntentResult {
	result, err := c.classify(ctx, input)
	if err != nil {
		logger.Warn(ctx, "意图分类失败，回落为 invalid", "error", err)
		return &wfmodel.IntentResult{
			OutputType:   wfmodel.IntentOutputInvalid,
			Mode:         wfmodel.IntentModeGenerate,
			ErrorMessage: "classifier unavailable",
		}
	}
	return result
}

func (c *IntentClassifier) classify(ctx context.Context, input *wfmodel.IntentInput) (*wfmodel.IntentResult, error) {
	c.once.Do(func() {
		c.chain, c.chainErr = c.buildChain(ctx)
	})
	if c.chainErr != nil {
		return nil, c.chainErr
	}

	hasImage := "no"
	if input.HasImage {
		hasImage = "yes"
	}
	vars := map[string]any{
		"has_image": hasImage,
		"history":   toSchemaMessages(input.History),
		"user_turn": []*schema.Message{schema.UserMessage(input.UserMessage)},
	}

	out, err := invokeWithSchema(ctx, c.chain, vars, wfmodel.IntentResponseSchema)
	if err != nil {
		return nil, node.ClassifyProviderError(err)
	}

	raw, err := node.ExtractJSON(out.Content)
	if err != nil {
		return nil, err
	}

	var result wfmodel.IntentResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeProtocol, "分类结果不是合法 JSON")
	}
	result.Normalize()
	return &result, nil
}

func (c *IntentClassifier) buildChain(ctx context.Context) (compose.Runnable[map[string]any, *schema.Message], error) {
	system, err := prompt.Get(prompt.IntentV1)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfiguration, "加载分类提示词失败")
	}

	cm, err := c.factory.IntentModel(ctx)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(schema.FString,
		schema.SystemMessage(system),
		schema.MessagesPlaceholder("history", true),
		schema.MessagesPlaceholder("user_turn", false),
	)

	return compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(tpl, compose.WithNodeName("intent_prompt")).
		AppendChatModel(cm, compose.WithNodeName("intent_classifier")).
		Compile(ctx, compose.WithGraphName("intent"))
}
