// Package planning 实现规划器与意图分类工作流
package planning

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 按角色提供 ChatModel
type ChatModelFactory interface {
	PlannerModel(ctx context.Context) (model.ToolCallingChatModel, error)
	VisionModel(ctx context.Context) (model.ToolCallingChatModel, error)
	IntentModel(ctx context.Context) (model.ToolCallingChatModel, error)
}
