package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// view 一个可切换的页面
// 切换离开时会被 Close，之后到达的异步结果都被丢弃
type view interface {
	Init() tea.Cmd
	Refresh() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(spin string, width, height int) string

	// Capturing 为 true 时页面自己处理所有按键，全局快捷键不生效
	Capturing() bool

	Help() []key.Binding
	Close()
}
