package node

import (
	"context"
	"errors"
	"net"
	"strings"

	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// transientMarkers 提供商瞬时故障的错误信息特征
//
// OpenAI 兼容端点的错误只能从 message 文本里认，SDK 不暴露结构化错误码。
var transientMarkers = []string{
	"rate limit",
	"rate_limit",
	"429",
	"quota",
	"401",
	"unauthorized",
	"invalid api key",
	"incorrect api key",
	"connection refused",
	"connection reset",
	"timeout",
	"timed out",
	"temporarily unavailable",
	"service unavailable",
	"502",
	"503",
	"504",
}

// IsTransientProviderError 判断是否为提供商瞬时故障
//
// 认证失败、限流、连接类故障都归入瞬时一类：对调用方而言
// 它们都不代表请求本身有问题，重试或换配置即可恢复。
func IsTransientProviderError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// ClassifyProviderError 将提供商错误归一为应用错误
func ClassifyProviderError(err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	if IsTransientProviderError(err) {
		return apperrors.Wrap(err, apperrors.CodeProviderTransient, "推理提供商暂时不可用")
	}
	return apperrors.Wrap(err, apperrors.CodeProtocol, "推理提供商调用失败")
}

// IsResponseFormatUnsupported 判断端点是否不支持 response_format 约束
//
// 不支持时降级为普通 JSON 提示模式重试。
func IsResponseFormatUnsupported(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "response_format") ||
		strings.Contains(msg, "json_schema") ||
		strings.Contains(msg, "unknown parameter") ||
		strings.Contains(msg, "unsupported parameter")
}
