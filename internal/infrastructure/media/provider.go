// Package media 提供图片/视频生成提供商接入
package media

import (
	"context"
)

// GenerateRequest 媒体生成请求
//
// SourceImageURL 非空时表示基于该图的改写或动画化。
// Seconds 仅视频生成有效，0 表示使用提供商默认时长。
type GenerateRequest struct {
	Prompt         string
	SourceImageURL string
	NumOutputs     int
	AspectRatio    string
	Seconds        int
}

// GenerateResult 媒体生成结果
type GenerateResult struct {
	// URLs 每个产出一条可访问地址，长度等于实际产出数
	URLs []string
}

// Generator 媒体生成提供商接口
type Generator interface {
	// Name 提供商标识，用于日志与指标
	Name() string
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)
}
