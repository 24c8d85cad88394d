package wizard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jimyag/proxmux/internal/proxmux/entity"
	"github.com/jimyag/proxmux/pkg/apierror"
	"github.com/jimyag/proxmux/pkg/idgen"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog"
)

// Phase 向导所处阶段
type Phase int

const (
	PhaseLoading    Phase = iota // 加载可选项
	PhaseEditing                 // 填写步骤
	PhaseSubmitting              // 已提交，等待创建请求返回
	PhaseTracking                // 轮询创建任务
	PhaseDone                    // 创建成功
	PhaseFailed                  // 加载、提交或任务失败
	PhaseCancelled               // 已取消
)

// KeyMap 向导按键
type KeyMap struct {
	Next   key.Binding
	Back   key.Binding
	Cancel key.Binding
}

// DefaultKeyMap 默认按键
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next")),
		Back:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "back")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp 实现 help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Back, k.Cancel}
}

// FullHelp 实现 help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// ClosedMsg 向导结束，外层收到后关闭向导并刷新列表
type ClosedMsg struct {
	Created bool
	VMID    int
}

type optionsLoadedMsg struct {
	owner   uint64
	options *Options
	err     error
}

// SubmittedMsg 创建请求返回
type SubmittedMsg struct {
	Owner uint64
	Node  string
	VMID  int
	UPID  string
	Err   error
}

type pollTickMsg struct {
	owner uint64
}

type taskPolledMsg struct {
	owner uint64
	task  *entity.Task
	err   error
}

// Wizard 创建容器向导
//
// 打开时创建空的草稿，逐步填写；取消时整个草稿被丢弃。
// 只有最后一步确认后才会调用一次 CreateContainer，之前的步骤不会发起网络请求。
type Wizard struct {
	ctx      context.Context
	svc      Provisioner
	tracker  TaskStatuser
	interval time.Duration
	keys     KeyMap
	owner    uint64
	node     string

	phase   Phase
	options *Options
	steps   []Step
	current int
	draft   *entity.ProvisioningConfig
	err     error

	submitted bool
	vmid      int
	upid      string
	task      *entity.Task
	closed    bool
}

// New 创建向导，node 为空时使用第一个在线节点
// interval 为创建任务的轮询间隔
func New(ctx context.Context, svc Provisioner, tracker TaskStatuser, node string, interval time.Duration) *Wizard {
	return &Wizard{
		ctx:      ctx,
		svc:      svc,
		tracker:  tracker,
		interval: interval,
		keys:     DefaultKeyMap(),
		owner:    idgen.GenerateOwnerID(),
		node:     node,
		phase:    PhaseLoading,
		draft:    &entity.ProvisioningConfig{},
	}
}

// Init 加载可选项
func (w *Wizard) Init() tea.Cmd {
	ctx, svc, node, owner := w.ctx, w.svc, w.node, w.owner
	return func() tea.Msg {
		opts, err := LoadOptions(ctx, svc, node)
		return optionsLoadedMsg{owner: owner, options: opts, err: err}
	}
}

// Phase 当前阶段
func (w *Wizard) Phase() Phase { return w.phase }

// Busy 是否在等待网络请求
func (w *Wizard) Busy() bool {
	return w.phase == PhaseLoading || w.phase == PhaseSubmitting || w.phase == PhaseTracking
}

// Keys 返回按键定义
func (w *Wizard) Keys() KeyMap { return w.keys }

// Draft 当前草稿，提交或取消后为 nil
func (w *Wizard) Draft() *entity.ProvisioningConfig { return w.draft }

// Err 最近一次错误
func (w *Wizard) Err() error { return w.err }

// Task 最近一次轮询到的任务状态
func (w *Wizard) Task() *entity.Task { return w.task }

// Close 标记向导已销毁，之后到达的异步结果都会被丢弃
func (w *Wizard) Close() {
	w.closed = true
}

// Update 处理按键和异步结果
func (w *Wizard) Update(msg tea.Msg) tea.Cmd {
	if w.closed {
		return nil
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return w.handleKey(msg)
	case optionsLoadedMsg:
		return w.applyOptions(msg)
	case SubmittedMsg:
		return w.applySubmitted(msg)
	case pollTickMsg:
		if msg.owner != w.owner || w.phase != PhaseTracking {
			return nil
		}
		return w.poll()
	case taskPolledMsg:
		return w.applyPolled(msg)
	}
	return nil
}

func (w *Wizard) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch w.phase {
	case PhaseLoading:
		if key.Matches(msg, w.keys.Cancel) {
			return w.cancel()
		}
		return nil
	case PhaseEditing:
		return w.handleEditingKey(msg)
	case PhaseDone, PhaseFailed:
		return w.finish()
	default:
		return nil
	}
}

func (w *Wizard) handleEditingKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, w.keys.Cancel):
		return w.cancel()
	case key.Matches(msg, w.keys.Back):
		if w.current == 0 {
			return nil
		}
		w.err = nil
		w.current--
		return w.steps[w.current].Enter(w.draft)
	case key.Matches(msg, w.keys.Next):
		step := w.steps[w.current]
		if err := step.Commit(w.draft); err != nil {
			w.err = err
			return nil
		}
		w.err = nil
		if w.current == len(w.steps)-1 {
			return w.submit()
		}
		w.current++
		return w.steps[w.current].Enter(w.draft)
	}
	return w.steps[w.current].Update(msg)
}

func (w *Wizard) applyOptions(msg optionsLoadedMsg) tea.Cmd {
	if msg.owner != w.owner || w.phase != PhaseLoading {
		return nil
	}
	if msg.err != nil {
		zerolog.Ctx(w.ctx).Warn().Err(msg.err).Str("node", w.node).Msg("Failed to load wizard options")
		w.phase = PhaseFailed
		w.err = msg.err
		return nil
	}

	w.options = msg.options
	w.node = msg.options.Node
	w.steps = newSteps(msg.options)
	w.phase = PhaseEditing
	return w.steps[0].Enter(w.draft)
}

// submit 提交草稿，只会执行一次
func (w *Wizard) submit() tea.Cmd {
	if w.submitted {
		return nil
	}

	// 请求在事件循环之外执行，交给它一份独立的副本
	var cfg entity.ProvisioningConfig
	if err := copier.CopyWithOption(&cfg, w.draft, copier.Option{DeepCopy: true}); err != nil {
		w.err = fmt.Errorf("copy provisioning config: %w", err)
		return nil
	}

	w.submitted = true
	w.phase = PhaseSubmitting
	w.draft = nil
	w.vmid = cfg.VMID

	zerolog.Ctx(w.ctx).Info().
		Str("node", w.node).
		Int("vmid", cfg.VMID).
		Str("hostname", cfg.Hostname).
		Msg("Submitting container")

	ctx, svc, node, owner := w.ctx, w.svc, w.node, w.owner
	return func() tea.Msg {
		upid, err := svc.CreateContainer(ctx, node, &cfg)
		return SubmittedMsg{Owner: owner, Node: node, VMID: cfg.VMID, UPID: upid, Err: err}
	}
}

func (w *Wizard) applySubmitted(msg SubmittedMsg) tea.Cmd {
	if msg.Owner != w.owner || w.phase != PhaseSubmitting {
		return nil
	}
	if msg.Err != nil {
		w.phase = PhaseFailed
		w.err = apierror.ActionFailed("create container", msg.Err)
		return nil
	}
	w.upid = msg.UPID
	w.phase = PhaseTracking
	return w.tick()
}

func (w *Wizard) tick() tea.Cmd {
	owner := w.owner
	return tea.Tick(w.interval, func(time.Time) tea.Msg {
		return pollTickMsg{owner: owner}
	})
}

func (w *Wizard) poll() tea.Cmd {
	ctx, tracker, node, upid, owner := w.ctx, w.tracker, w.node, w.upid, w.owner
	return func() tea.Msg {
		task, err := tracker.Status(ctx, node, upid)
		return taskPolledMsg{owner: owner, task: task, err: err}
	}
}

// applyPolled 观察到结束状态或查询失败时停止轮询
func (w *Wizard) applyPolled(msg taskPolledMsg) tea.Cmd {
	if msg.owner != w.owner || w.phase != PhaseTracking {
		return nil
	}
	logger := zerolog.Ctx(w.ctx)

	if msg.err != nil {
		logger.Warn().Err(msg.err).Str("upid", w.upid).Msg("Failed to poll task status")
		w.phase = PhaseFailed
		w.err = fmt.Errorf("track task %s: %w", w.upid, msg.err)
		return nil
	}

	w.task = msg.task
	if !msg.task.Done() {
		return w.tick()
	}

	if msg.task.Succeeded() {
		logger.Info().Str("upid", w.upid).Int("vmid", w.vmid).Msg("Container created")
		w.phase = PhaseDone
		return nil
	}

	logger.Warn().Str("upid", w.upid).Str("result", msg.task.Result()).Msg("Container creation failed")
	w.phase = PhaseFailed
	w.err = apierror.ActionFailed("create container", fmt.Errorf("task finished with status: %s", msg.task.Result()))
	return nil
}

func (w *Wizard) cancel() tea.Cmd {
	zerolog.Ctx(w.ctx).Debug().Int("step", w.current).Msg("Wizard cancelled")
	w.phase = PhaseCancelled
	w.draft = nil
	return closeCmd(ClosedMsg{})
}

func (w *Wizard) finish() tea.Cmd {
	return closeCmd(ClosedMsg{Created: w.phase == PhaseDone, VMID: w.vmid})
}

func closeCmd(msg ClosedMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// View 渲染向导
func (w *Wizard) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Create Container"))
	if w.node != "" {
		b.WriteString(dimStyle.Render(" on " + w.node))
	}
	b.WriteString("\n\n")

	switch w.phase {
	case PhaseLoading:
		b.WriteString(dimStyle.Render("Loading templates, storages and bridges...") + "\n")
	case PhaseEditing:
		b.WriteString(w.progressView() + "\n\n")
		b.WriteString(w.steps[w.current].View())
	case PhaseSubmitting:
		b.WriteString(dimStyle.Render(fmt.Sprintf("Creating container %d...", w.vmid)) + "\n")
	case PhaseTracking:
		status := "running"
		if w.task != nil && w.task.Status != "" {
			status = w.task.Status
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("Task %s: %s", w.upid, status)) + "\n")
	case PhaseDone:
		b.WriteString(successStyle.Render(fmt.Sprintf("Container %d created.", w.vmid)) + "\n")
		b.WriteString(dimStyle.Render("Press any key to continue.") + "\n")
	case PhaseFailed:
		b.WriteString(dimStyle.Render("Press any key to continue.") + "\n")
	}

	if w.err != nil {
		b.WriteString("\n" + errorStyle.Render(w.err.Error()) + "\n")
	}
	return b.String()
}

func (w *Wizard) progressView() string {
	parts := make([]string, 0, len(w.steps))
	for i, s := range w.steps {
		title := fmt.Sprintf("%d. %s", i+1, s.Title())
		switch {
		case i == w.current:
			parts = append(parts, focusedStyle.Render(title))
		case i < w.current:
			parts = append(parts, labelStyle.Render(title))
		default:
			parts = append(parts, dimStyle.Render(title))
		}
	}
	return strings.Join(parts, dimStyle.Render(" › "))
}
