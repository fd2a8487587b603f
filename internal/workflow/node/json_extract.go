// Package node 提供工作流节点的通用工具
package node

import (
	"strings"

	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// ExtractJSON 从模型输出中提取 JSON 文本
//
// 模型经常把 JSON 包在 markdown 代码块里，或在前后追加解释文字。
// 先剥掉代码块围栏，再截取首个 '{' 到末个 '}' 之间的内容。
func ExtractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", apperrors.Protocol("模型输出为空")
	}

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", apperrors.Protocol("模型输出不含 JSON 对象")
	}
	return s[start : end+1], nil
}
