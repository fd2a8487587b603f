// Package model 定义工作流输入输出结构
package model

import (
	"strings"

	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// 规划结果类型
const (
	PlannerTypeQuestion = "question"
	PlannerTypeFinal    = "final"
)

// 生成参数默认值
const (
	DefaultNumOutputs  = 4
	DefaultAspectRatio = "1:1"
)

// DefaultQuestion 规划器声明提问却没给出问题时的兜底问题
const DefaultQuestion = "Could you tell me a bit more about what you'd like to create?"

// PlannerInput 规划器输入
type PlannerInput struct {
	UserMessage string
	// ImageURLs 非空时走视觉规划路径
	ImageURLs []string
	// DraftPrompt 此前各轮积累的草稿提示词，新会话为空
	DraftPrompt string
	// PendingQuestion 上一轮尚未得到回答的澄清问题
	PendingQuestion string
	// PreferencesBlock 渲染后的用户偏好文本块，可为空
	PreferencesBlock string
	History          []HistoryMessage
}

// HistoryMessage 注入规划器的历史消息
type HistoryMessage struct {
	Role    string
	Content string
}

// PlannerResult 规划器单轮输出
//
// 两种形态互斥：question 形态恰好携带一个澄清问题和可选的草稿，
// final 形态携带非空的最终生成提示词。
type PlannerResult struct {
	Type      string   `json:"type"`
	Questions []string `json:"questions,omitempty"`
	// DraftPrompt 本轮更新后的草稿提示词，question 形态随状态持久化
	DraftPrompt string `json:"draft_prompt,omitempty"`
	FinalPrompt string `json:"final_prompt,omitempty"`
	NumOutputs  int    `json:"num_outputs,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

// Normalize 校验并规范化规划结果
//
// 规则:
//   - type 缺失或非法视为协议错误
//   - question 形态: 问题列表截断到一条，空列表兜底为默认问题，final_prompt 强制清空
//   - final 形态: final_prompt 必须非空白，否则协议错误；问题列表强制清空
//   - num_outputs 非正数回落到默认值，aspect_ratio 空白回落到默认值
func (r *PlannerResult) Normalize() error {
	r.DraftPrompt = strings.TrimSpace(r.DraftPrompt)

	switch r.Type {
	case PlannerTypeQuestion:
		questions := make([]string, 0, 1)
		for _, q := range r.Questions {
			if strings.TrimSpace(q) != "" {
				questions = append(questions, strings.TrimSpace(q))
			}
		}
		if len(questions) == 0 {
			questions = append(questions, DefaultQuestion)
		}
		r.Questions = questions[:1]
		r.FinalPrompt = ""
	case PlannerTypeFinal:
		r.FinalPrompt = strings.TrimSpace(r.FinalPrompt)
		if r.FinalPrompt == "" {
			return apperrors.Protocol("final 结果缺少 final_prompt")
		}
		r.Questions = nil
	case "":
		return apperrors.Protocol("规划结果缺少 type 字段")
	default:
		return apperrors.Protocol("规划结果 type 非法: " + r.Type)
	}

	if r.NumOutputs <= 0 {
		r.NumOutputs = DefaultNumOutputs
	}
	if r.NumOutputs > DefaultNumOutputs {
		r.NumOutputs = DefaultNumOutputs
	}
	if strings.TrimSpace(r.AspectRatio) == "" {
		r.AspectRatio = DefaultAspectRatio
	}
	return nil
}

// IsFinal 是否为最终提示词形态
func (r *PlannerResult) IsFinal() bool {
	return r.Type == PlannerTypeFinal
}

// Question 返回本轮的澄清问题，final 形态返回空串
func (r *PlannerResult) Question() string {
	if len(r.Questions) == 0 {
		return ""
	}
	return r.Questions[0]
}

// PlannerResponseSchema 规划结果的 JSON Schema，用于 response_format 约束
var PlannerResponseSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "planner_result",
		"strict": false,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type": map[string]any{
					"type": "string",
					"enum": []string{PlannerTypeQuestion, PlannerTypeFinal},
				},
				"questions": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"draft_prompt": map[string]any{"type": "string"},
				"final_prompt": map[string]any{"type": "string"},
				"num_outputs":  map[string]any{"type": "integer"},
				"aspect_ratio": map[string]any{"type": "string"},
			},
			"required": []string{"type"},
		},
	},
}
