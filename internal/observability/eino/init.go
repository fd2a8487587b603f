package eino

import (
	"sync"

	einocallbacks "github.com/cloudwego/eino/callbacks"
)

var initOnce sync.Once

// Init 注册全局回调处理器
//
// 全局回调对进程内所有 eino 工作流生效，只注册一次。
func Init() {
	initOnce.Do(func() {
		einocallbacks.AppendGlobalHandlers(newChatModelHandler())
	})
}
