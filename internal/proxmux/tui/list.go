package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jimyag/proxmux/internal/proxmux/interact"
)

var runKey = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run"))

// column 列表的一列
type column[T any] struct {
	title string
	width int
	value func(T) string
	style func(T) lipgloss.Style
}

// listView 基于 interact.Machine 的列表页面
type listView[T any] struct {
	machine *interact.Machine[T]
	columns []column[T]

	// name 确认框和详情页标题中的资源名称
	name func(T) string

	// info 详情页的字段，details 为 Describer 返回的补充信息
	info func(item T, details any) [][2]string
}

func (v *listView[T]) Init() tea.Cmd { return v.machine.Init() }

func (v *listView[T]) Refresh() tea.Cmd { return v.machine.Refresh() }

func (v *listView[T]) Update(msg tea.Msg) tea.Cmd { return v.machine.Update(msg) }

func (v *listView[T]) Capturing() bool { return v.machine.Capturing() }

func (v *listView[T]) Close() { v.machine.Close() }

func (v *listView[T]) Help() []key.Binding {
	keys := v.machine.Keys()
	snap := v.machine.Snapshot()
	switch snap.Mode {
	case interact.ModePendingConfirm:
		return []key.Binding{keys.Confirm, keys.Cancel}
	case interact.ModeActionLoading:
		return nil
	case interact.ModeDetail:
		if snap.Detail != nil && snap.Detail.Confirming {
			return []key.Binding{keys.Confirm, keys.Cancel}
		}
		return []key.Binding{keys.Up, keys.Down, runKey, keys.Back}
	}

	bindings := keys.ShortHelp()
	if item, ok := v.machine.Selected(); ok {
		for _, a := range v.machine.Actions() {
			if a.Available(item) {
				bindings = append(bindings, a.Key)
			}
		}
	}
	return bindings
}

func (v *listView[T]) View(spin string, width, height int) string {
	snap := v.machine.Snapshot()
	if snap.Detail != nil {
		return v.detailView(snap, spin)
	}

	var b strings.Builder
	title := styleTitle.Render(snap.Title) + styleDim.Render(fmt.Sprintf(" (%d)", len(snap.Items)))
	if snap.Loading {
		title += " " + spin
	}
	b.WriteString(title + "\n\n")

	if len(snap.Items) == 0 {
		if snap.Loading {
			b.WriteString(styleDim.Render("Loading...") + "\n")
		} else {
			b.WriteString(styleDim.Render("Nothing here.") + "\n")
		}
	} else {
		rows := len(snap.Items)
		if height > 0 {
			rows = max(height-8, 1)
		}
		b.WriteString(v.table(snap, rows))
	}

	b.WriteString("\n")
	switch snap.Mode {
	case interact.ModePendingConfirm:
		b.WriteString(styleConfirm.Render(fmt.Sprintf("%s %s? (y/N)", snap.Pending.Label, v.name(snap.TargetItem))) + "\n")
	case interact.ModeActionLoading:
		b.WriteString(spin + " " + styleWarning.Render(fmt.Sprintf("Running %s on %s...", snap.InFlight, snap.Target)) + "\n")
	}
	if snap.Err != nil {
		b.WriteString(styleError.Render(snap.Err.Error()) + "\n")
	}
	return b.String()
}

// table 渲染表头和可见行，选中行始终在窗口内
func (v *listView[T]) table(snap interact.Snapshot[T], rows int) string {
	var b strings.Builder
	header := make([]string, 0, len(v.columns))
	for _, c := range v.columns {
		header = append(header, pad(c.title, c.width))
	}
	b.WriteString("  " + styleHeader.Render(strings.Join(header, " ")) + "\n")

	start := 0
	if snap.Selected >= rows {
		start = snap.Selected - rows + 1
	}
	end := min(start+rows, len(snap.Items))

	for i := start; i < end; i++ {
		item := snap.Items[i]
		cells := make([]string, 0, len(v.columns))
		for _, c := range v.columns {
			cell := pad(c.value(item), c.width)
			if c.style != nil && i != snap.Selected {
				cell = c.style(item).Render(cell)
			}
			cells = append(cells, cell)
		}
		row := strings.Join(cells, " ")
		if i == snap.Selected {
			b.WriteString(styleSelected.Render("> "+row) + "\n")
		} else {
			b.WriteString("  " + row + "\n")
		}
	}
	if end < len(snap.Items) {
		b.WriteString(styleDim.Render(fmt.Sprintf("  ... %d more", len(snap.Items)-end)) + "\n")
	}
	return b.String()
}

func (v *listView[T]) detailView(snap interact.Snapshot[T], spin string) string {
	d := snap.Detail
	var b strings.Builder
	b.WriteString(styleTitle.Render(v.name(d.Item)) + "\n\n")

	var fields [][2]string
	if v.info != nil {
		fields = v.info(d.Item, d.Details)
	}
	labelWidth := 0
	for _, f := range fields {
		labelWidth = max(labelWidth, len(f[0]))
	}
	var lines []string
	for _, f := range fields {
		lines = append(lines, styleHeader.Render(pad(f[0], labelWidth))+"  "+f[1])
	}
	if !d.DetailsLoaded {
		lines = append(lines, styleDim.Render("Loading configuration..."))
	}
	b.WriteString(styleBox.Render(strings.Join(lines, "\n")) + "\n\n")

	b.WriteString(styleHeader.Render("Actions") + "\n")
	if len(d.Actions) == 0 {
		b.WriteString(styleDim.Render("No actions available") + "\n")
	}
	for i, a := range d.Actions {
		if i == d.Cursor {
			b.WriteString(styleSelected.Render("> "+a.Label) + "\n")
		} else {
			b.WriteString("  " + a.Label + "\n")
		}
	}

	switch {
	case d.Loading:
		b.WriteString("\n" + spin + " " + styleWarning.Render(fmt.Sprintf("Running %s...", snap.InFlight)) + "\n")
	case d.Confirming:
		a := d.Actions[d.Cursor]
		b.WriteString("\n" + styleConfirm.Render(fmt.Sprintf("%s %s? (y/N)", a.Label, v.name(d.Item))) + "\n")
	}
	if snap.Err != nil {
		b.WriteString("\n" + styleError.Render(snap.Err.Error()) + "\n")
	}
	return b.String()
}
