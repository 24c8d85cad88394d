package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jimyag/proxmux/internal/proxmux/entity"
)

// formatBytes 以二进制单位显示字节数
func formatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(n))
}

// formatUsage 显示 已用/总量
func formatUsage(used, total int64) string {
	if total <= 0 {
		return "-"
	}
	return formatBytes(used) + "/" + formatBytes(total)
}

// formatPercent cpu 字段是 0-1 的比例
func formatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// formatUptime 显示为 1d 2h 3m
func formatUptime(seconds int64) string {
	if seconds <= 0 {
		return "-"
	}
	days := seconds / 86400
	hours := seconds % 86400 / 3600
	minutes := seconds % 3600 / 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// truncate 超过 n 个字符时截断并加省略号
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// pad 按显示宽度补齐或截断
func pad(s string, width int) string {
	s = truncate(s, width)
	if w := lipgloss.Width(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

// statusStyle 根据状态选择颜色
func statusStyle(status string) lipgloss.Style {
	switch status {
	case string(entity.GuestStatusRunning), string(entity.NodeStatusOnline), "available":
		return styleRunning
	case string(entity.GuestStatusPaused):
		return stylePaused
	case string(entity.GuestStatusStopped), string(entity.NodeStatusOffline):
		return styleStopped
	default:
		return styleDim
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
