package model

import (
	"strings"
)

// 意图分类输出类型
const (
	IntentOutputImage = "image"
	IntentOutputVideo = "video"
	// IntentOutputInvalid 无法判定或分类器临时不可用
	IntentOutputInvalid = "invalid"
)

// 意图分类生成模式
const (
	IntentModeGenerate  = "generate"
	IntentModeTransform = "transform"
)

// 视频时长边界（秒）
const (
	MinVideoSeconds = 5
	MaxVideoSeconds = 10
)

// validAspectRatios 意图分类允许的宽高比
var validAspectRatios = map[string]bool{
	"1:1":  true,
	"16:9": true,
	"9:16": true,
	"4:5":  true,
}

// IntentInput 意图分类输入
type IntentInput struct {
	UserMessage string
	// HasImage 本轮是否携带参考图，影响 generate/transform 判定
	HasImage bool
	History  []HistoryMessage
}

// IntentResult 意图分类结果
//
// 分类器的瞬时故障不向上抛错，统一折叠为 invalid 结果并在
// ErrorMessage 里携带可展示的说明，由调用方决定回落行为。
type IntentResult struct {
	OutputType string `json:"output_type"`
	// Mode 生成模式: generate 从提示词生成，transform 基于参考图改写
	Mode string `json:"mode,omitempty"`
	// Task 分类器对任务的一句话概括
	Task        string `json:"task,omitempty"`
	NumOutputs  int    `json:"num_outputs,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	// VideoSeconds 视频时长，仅 output_type=video 时有意义
	VideoSeconds *int   `json:"video_seconds,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Normalize 规范化分类结果
//
// 未知输出类型折叠为 invalid；mode 缺省为 generate；
// num_outputs 收敛到 [1,4]；aspect_ratio 只接受白名单取值；
// video_seconds 收敛到 [5,10]，非视频结果清空。
func (r *IntentResult) Normalize() {
	r.OutputType = strings.ToLower(strings.TrimSpace(r.OutputType))
	switch r.OutputType {
	case IntentOutputImage, IntentOutputVideo:
	default:
		r.OutputType = IntentOutputInvalid
	}

	r.Mode = strings.ToLower(strings.TrimSpace(r.Mode))
	if r.Mode != IntentModeTransform {
		r.Mode = IntentModeGenerate
	}

	if r.NumOutputs < 1 {
		r.NumOutputs = 1
	}
	if r.NumOutputs > DefaultNumOutputs {
		r.NumOutputs = DefaultNumOutputs
	}

	r.AspectRatio = strings.TrimSpace(r.AspectRatio)
	if !validAspectRatios[r.AspectRatio] {
		r.AspectRatio = DefaultAspectRatio
	}

	if r.OutputType != IntentOutputVideo {
		r.VideoSeconds = nil
	} else if r.VideoSeconds != nil {
		if *r.VideoSeconds < MinVideoSeconds {
			*r.VideoSeconds = MinVideoSeconds
		}
		if *r.VideoSeconds > MaxVideoSeconds {
			*r.VideoSeconds = MaxVideoSeconds
		}
	}
}

// Invalid 是否为无法判定结果
func (r *IntentResult) Invalid() bool {
	return r.OutputType == IntentOutputInvalid
}

// IntentResponseSchema 意图分类结果的 JSON Schema
var IntentResponseSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "intent_result",
		"strict": false,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"output_type": map[string]any{
					"type": "string",
					"enum": []string{IntentOutputImage, IntentOutputVideo, IntentOutputInvalid},
				},
				"mode": map[string]any{
					"type": "string",
					"enum": []string{IntentModeGenerate, IntentModeTransform},
				},
				"task":        map[string]any{"type": "string"},
				"num_outputs": map[string]any{"type": "integer"},
				"aspect_ratio": map[string]any{
					"type": "string",
					"enum": []string{"1:1", "16:9", "9:16", "4:5"},
				},
				"video_seconds": map[string]any{"type": "integer"},
				"error_message": map[string]any{"type": "string"},
			},
			"required": []string{"output_type"},
		},
	},
}
