package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jimyag/proxmux/internal/proxmux/entity"
	"github.com/jimyag/proxmux/internal/proxmux/wizard"
	"github.com/rs/zerolog"
)

// Tab 顶部的页面
type Tab int

const (
	TabDashboard Tab = iota
	TabVMs
	TabContainers
	TabStorage
)

var tabTitles = [...]string{"Dashboard", "VMs", "Containers", "Storage"}

func (t Tab) String() string { return tabTitles[t] }

type appKeys struct {
	Quit       key.Binding
	ForceQuit  key.Binding
	Dashboard  key.Binding
	VMs        key.Binding
	Containers key.Binding
	Storage    key.Binding
	Create     key.Binding

	// views 只用于帮助行
	views key.Binding
}

func defaultAppKeys() appKeys {
	return appKeys{
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c")),
		Dashboard:  key.NewBinding(key.WithKeys("1")),
		VMs:        key.NewBinding(key.WithKeys("2")),
		Containers: key.NewBinding(key.WithKeys("3")),
		Storage:    key.NewBinding(key.WithKeys("4")),
		Create:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "create")),
		views:      key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "views")),
	}
}

// connectionMsg 连通性检查结果
type connectionMsg struct {
	OK bool
}

// App 根模型，负责页面切换和向导的打开关闭
type App struct {
	ctx      context.Context
	cluster  Cluster
	tracker  wizard.TaskStatuser
	interval time.Duration
	keys     appKeys

	tab    Tab
	active view
	wizard *wizard.Wizard

	// connected 为 nil 表示还在检查
	connected *bool

	spinner spinner.Model
	help    help.Model
	width   int
	height  int
}

// NewApp 创建根模型，interval 为向导跟踪创建任务的轮询间隔
func NewApp(ctx context.Context, cluster Cluster, tracker wizard.TaskStatuser, interval time.Duration) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleWarning

	return &App{
		ctx:      ctx,
		cluster:  cluster,
		tracker:  tracker,
		interval: interval,
		keys:     defaultAppKeys(),
		tab:      -1,
		spinner:  s,
		help:     help.New(),
	}
}

// Init 实现 tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.testConnection(), a.SwitchTo(TabDashboard), a.spinner.Tick)
}

// Tab 当前页面
func (a *App) Tab() Tab { return a.tab }

// WizardOpen 向导是否打开
func (a *App) WizardOpen() bool { return a.wizard != nil }

// Connected 连通性，检查完成前 ok 为 false
func (a *App) Connected() (connected, ok bool) {
	if a.connected == nil {
		return false, false
	}
	return *a.connected, true
}

func (a *App) testConnection() tea.Cmd {
	ctx, cluster := a.ctx, a.cluster
	return func() tea.Msg {
		return connectionMsg{OK: cluster.TestConnection(ctx)}
	}
}

// SwitchTo 切换页面，旧页面被销毁，新页面重新加载
func (a *App) SwitchTo(t Tab) tea.Cmd {
	if t == a.tab {
		return nil
	}
	if a.active != nil {
		a.active.Close()
	}
	a.tab = t

	switch t {
	case TabVMs:
		a.active = newGuestView(a.ctx, a.cluster, entity.GuestKindVM)
	case TabContainers:
		a.active = newGuestView(a.ctx, a.cluster, entity.GuestKindContainer)
	case TabStorage:
		a.active = newStorageView(a.ctx, a.cluster)
	default:
		a.active = newDashboardView(a.ctx, a.cluster)
	}
	zerolog.Ctx(a.ctx).Debug().Stringer("tab", t).Msg("Switched view")
	return a.active.Init()
}

// Update 实现 tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		return a, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	case connectionMsg:
		ok := msg.OK
		a.connected = &ok
		if !ok {
			zerolog.Ctx(a.ctx).Warn().Msg("Proxmox API is unreachable")
		}
		return a, nil
	case wizard.ClosedMsg:
		return a, a.closeWizard(msg)
	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}

	// 异步结果广播给所有子模型，各自按 owner 过滤
	var cmds []tea.Cmd
	if a.wizard != nil {
		cmds = append(cmds, a.wizard.Update(msg))
	}
	if a.active != nil {
		cmds = append(cmds, a.active.Update(msg))
	}
	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, a.keys.ForceQuit) {
		return a.quit()
	}
	if a.wizard != nil {
		return a.wizard.Update(msg)
	}
	if a.active.Capturing() {
		return a.active.Update(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a.quit()
	case key.Matches(msg, a.keys.Dashboard):
		return a.SwitchTo(TabDashboard)
	case key.Matches(msg, a.keys.VMs):
		return a.SwitchTo(TabVMs)
	case key.Matches(msg, a.keys.Containers):
		return a.SwitchTo(TabContainers)
	case key.Matches(msg, a.keys.Storage):
		return a.SwitchTo(TabStorage)
	case key.Matches(msg, a.keys.Create) && a.tab == TabContainers:
		return a.openWizard()
	}
	return a.active.Update(msg)
}

func (a *App) openWizard() tea.Cmd {
	zerolog.Ctx(a.ctx).Debug().Msg("Opening create container wizard")
	a.wizard = wizard.New(a.ctx, a.cluster, a.tracker, "", a.interval)
	return a.wizard.Init()
}

func (a *App) closeWizard(msg wizard.ClosedMsg) tea.Cmd {
	if a.wizard == nil {
		return nil
	}
	a.wizard.Close()
	a.wizard = nil
	if msg.Created && a.tab == TabContainers {
		return a.active.Refresh()
	}
	return nil
}

func (a *App) quit() tea.Cmd {
	if a.wizard != nil {
		a.wizard.Close()
	}
	if a.active != nil {
		a.active.Close()
	}
	return tea.Quit
}

// View 实现 tea.Model
func (a *App) View() string {
	var b strings.Builder
	b.WriteString(a.headerView() + "\n\n")

	body := ""
	switch {
	case a.wizard != nil:
		body = a.wizard.View()
	case a.active != nil:
		body = a.active.View(a.spinner.View(), a.width, a.height)
	}
	b.WriteString(body)

	b.WriteString("\n" + a.help.ShortHelpView(a.helpBindings()))
	return styleFrame.Render(b.String())
}

func (a *App) headerView() string {
	tabs := make([]string, 0, len(tabTitles))
	for i, title := range tabTitles {
		label := string(rune('1'+i)) + " " + title
		if Tab(i) == a.tab {
			tabs = append(tabs, styleTabOn.Render(label))
		} else {
			tabs = append(tabs, styleTabOff.Render(label))
		}
	}

	status := styleDim.Render("○ connecting")
	if connected, ok := a.Connected(); ok {
		if connected {
			status = styleRunning.Render("● connected")
		} else {
			status = styleStopped.Render("● disconnected")
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, styleTitle.Render("proxmux")+"  ", strings.Join(tabs, ""), "  "+status)
}

func (a *App) helpBindings() []key.Binding {
	if a.wizard != nil {
		return a.wizard.Keys().ShortHelp()
	}
	if a.active == nil {
		return nil
	}
	bindings := a.active.Help()
	if a.active.Capturing() {
		return bindings
	}
	if a.tab == TabContainers {
		bindings = append(bindings, a.keys.Create)
	}
	return append(bindings, a.keys.views, a.keys.Quit)
}
