// Package prompt 管理提示词模板
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"
)

//go:embed templates/*.md
var templateFS embed.FS

// 模板名称
const (
	PlannerV1       = "planner_v1"
	VisionPlannerV1 = "vision_planner_v1"
	IntentV1        = "intent_v1"
)

var (
	loadOnce  sync.Once
	templates map[string]string
	loadErr   error
)

func load() {
	templates = make(map[string]string)
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		loadErr = fmt.Errorf("读取模板目录失败: %w", err)
		return
	}
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".md")
		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			loadErr = fmt.Errorf("读取模板 %s 失败: %w", name, err)
			return
		}
		templates[name] = string(data)
	}
}

// Get 按名称获取模板内容
func Get(name string) (string, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return "", loadErr
	}
	tpl, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("模板不存在: %s", name)
	}
	return tpl, nil
}

// MustGet 按名称获取模板，不存在时 panic，仅用于启动期加载
func MustGet(name string) string {
	tpl, err := Get(name)
	if err != nil {
		panic(err)
	}
	return tpl
}
