package media

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// MockupGenerator 占位生成器
//
// 不调用任何外部服务，返回占位图地址。
// 用于本地开发和没有媒体提供商凭据的环境。
type MockupGenerator struct {
	mediaType string
}

// NewMockupImageGenerator 创建图片占位生成器
func NewMockupImageGenerator() *MockupGenerator {
	return &MockupGenerator{mediaType: "image"}
}

// NewMockupVideoGenerator 创建视频占位生成器
func NewMockupVideoGenerator() *MockupGenerator {
	return &MockupGenerator{mediaType: "video"}
}

func (g *MockupGenerator) Name() string {
	return "mockup"
}

func (g *MockupGenerator) Generate(_ context.Context, req *GenerateRequest) (*GenerateResult, error) {
	n := req.NumOutputs
	if n < 1 {
		n = 1
	}
	urls := make([]string, 0, n)
	for i := 0; i < n; i++ {
		urls = append(urls, fmt.Sprintf("https://placehold.co/1024x1024?type=%s&seed=%s",
			g.mediaType, uuid.NewString()))
	}
	return &GenerateResult{URLs: urls}, nil
}
