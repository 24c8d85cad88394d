package interact

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
)

// Adapter 把某一类资源接入状态机
type Adapter[T any] interface {
	// Title 界面标题
	Title() string

	// Fetch 获取完整列表，每次刷新都整体替换
	Fetch(ctx context.Context) ([]T, error)

	// Key 资源的唯一标识，用于匹配异步结果
	Key(item T) string

	// Actions 该类资源支持的操作
	Actions() []Action[T]
}

// Describer 可选接口，为详情页提供补充信息
// 获取失败时详情页照常显示，只是没有补充信息
type Describer[T any] interface {
	Describe(ctx context.Context, item T) (any, error)
}

// Action 对单个资源执行的操作
type Action[T any] struct {
	// Name 操作名称，例如 start/stop/reboot
	Name string

	// Label 展示用名称
	Label string

	// Key 列表中的快捷键
	Key key.Binding

	// Destructive 为 true 时必须先确认
	Destructive bool

	// Enabled 为 nil 时总是可用
	Enabled func(item T) bool

	// Run 执行操作，返回任务 UPID
	Run func(ctx context.Context, item T) (string, error)
}

// Available 操作对该资源是否可用
func (a Action[T]) Available(item T) bool {
	return a.Enabled == nil || a.Enabled(item)
}

// availableActions 返回对资源可用的操作
func availableActions[T any](actions []Action[T], item T) []Action[T] {
	out := make([]Action[T], 0, len(actions))
	for _, a := range actions {
		if a.Available(item) {
			out = append(out, a)
		}
	}
	return out
}
