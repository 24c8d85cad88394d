package interact

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jimyag/proxmux/pkg/apierror"
	"github.com/jimyag/proxmux/pkg/idgen"
	"github.com/rs/zerolog"
)

// Mode 状态机所处的状态
type Mode int

const (
	ModeIdle           Mode = iota // 浏览列表
	ModeActionLoading              // 操作执行中
	ModePendingConfirm             // 等待确认破坏性操作
	ModeDetail                     // 详情页
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeActionLoading:
		return "action-loading"
	case ModePendingConfirm:
		return "pending-confirm"
	case ModeDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// Machine 列表界面的交互状态机
//
// 只在事件循环中通过 Update/HandleKey 修改，不需要加锁。
type Machine[T any] struct {
	ctx     context.Context
	adapter Adapter[T]
	keys    KeyMap
	owner   uint64

	items    []T
	selected int
	loading  bool
	fetchSeq uint64
	err      error

	mode       Mode
	pending    *Action[T]
	target     string
	targetItem T
	inFlight   string

	detail *detailState[T]
	closed bool
}

// New 创建状态机，ctx 用于日志和网络调用
func New[T any](ctx context.Context, adapter Adapter[T]) *Machine[T] {
	return &Machine[T]{
		ctx:     ctx,
		adapter: adapter,
		keys:    DefaultKeyMap(),
		owner:   idgen.GenerateOwnerID(),
	}
}

// Init 首次加载列表
func (m *Machine[T]) Init() tea.Cmd {
	return m.Refresh()
}

// Title 界面标题
func (m *Machine[T]) Title() string {
	return m.adapter.Title()
}

// Keys 返回按键定义，用于渲染帮助
func (m *Machine[T]) Keys() KeyMap {
	return m.keys
}

// Actions 返回所有操作，用于渲染帮助
func (m *Machine[T]) Actions() []Action[T] {
	return m.adapter.Actions()
}

// Mode 当前状态
func (m *Machine[T]) Mode() Mode {
	return m.mode
}

// Capturing 是否处于需要独占按键的状态，此时外层不应把 q 当作退出
func (m *Machine[T]) Capturing() bool {
	return m.mode != ModeIdle
}

// Selected 返回当前选中的资源
func (m *Machine[T]) Selected() (T, bool) {
	var zero T
	if len(m.items) == 0 {
		return zero, false
	}
	return m.items[m.selected], true
}

// Close 标记状态机已销毁，之后到达的异步结果都会被丢弃
func (m *Machine[T]) Close() {
	m.closed = true
}

// Refresh 重新获取列表，不改变选中位置
// 较早发出的获取请求结果会被丢弃
func (m *Machine[T]) Refresh() tea.Cmd {
	if m.closed {
		return nil
	}
	m.fetchSeq++
	m.loading = true

	ctx, owner, seq, adapter := m.ctx, m.owner, m.fetchSeq, m.adapter
	return func() tea.Msg {
		items, err := adapter.Fetch(ctx)
		return FetchedMsg[T]{Owner: owner, Seq: seq, Items: items, Err: err}
	}
}

// Update 处理按键和异步结果
func (m *Machine[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.HandleKey(msg)
	case FetchedMsg[T]:
		m.applyFetched(msg)
	case ActionDoneMsg:
		return m.applyActionDone(msg)
	case DescribedMsg:
		m.applyDescribed(msg)
	}
	return nil
}

// HandleKey 处理一次按键
// 有错误显示时，任意按键先清除错误再按正常逻辑处理
func (m *Machine[T]) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if m.closed {
		return nil
	}
	m.err = nil

	switch m.mode {
	case ModeActionLoading:
		return nil
	case ModePendingConfirm:
		return m.handleConfirm(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	default:
		return m.handleIdle(msg)
	}
}

func (m *Machine[T]) handleIdle(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
		return nil
	case key.Matches(msg, m.keys.Down):
		m.move(1)
		return nil
	case key.Matches(msg, m.keys.Refresh):
		return m.Refresh()
	case key.Matches(msg, m.keys.Open):
		return m.openDetail()
	}

	item, ok := m.Selected()
	if !ok {
		return nil
	}
	for _, a := range m.adapter.Actions() {
		if !key.Matches(msg, a.Key) || !a.Available(item) {
			continue
		}
		if a.Destructive {
			a := a
			m.mode = ModePendingConfirm
			m.pending = &a
			m.target = m.adapter.Key(item)
			m.targetItem = item
			return nil
		}
		return m.dispatch(a, item)
	}
	return nil
}

// move 按模移动选中位置，空列表时不做任何事
func (m *Machine[T]) move(delta int) {
	n := len(m.items)
	if n == 0 {
		return
	}
	m.selected = ((m.selected+delta)%n + n) % n
}

func (m *Machine[T]) handleConfirm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		a, item := *m.pending, m.targetItem
		m.pending = nil
		return m.dispatch(a, item)
	case key.Matches(msg, m.keys.Cancel):
		zerolog.Ctx(m.ctx).Debug().
			Str("view", m.adapter.Title()).
			Str("action", m.pending.Name).
			Str("target", m.target).
			Msg("Action cancelled")
		m.resetAction()
	}
	return nil
}

// dispatch 进入 ActionLoading 并返回执行操作的命令
func (m *Machine[T]) dispatch(a Action[T], item T) tea.Cmd {
	target := m.adapter.Key(item)
	if m.mode != ModeDetail {
		m.mode = ModeActionLoading
	}
	m.target = target
	m.targetItem = item
	m.inFlight = a.Name
	m.err = nil

	zerolog.Ctx(m.ctx).Info().
		Str("view", m.adapter.Title()).
		Str("action", a.Name).
		Str("target", target).
		Msg("Dispatching action")

	ctx, owner := m.ctx, m.owner
	return func() tea.Msg {
		upid, err := a.Run(ctx, item)
		return ActionDoneMsg{Owner: owner, Target: target, Action: a.Name, UPID: upid, Err: err}
	}
}

func (m *Machine[T]) resetAction() {
	var zero T
	if m.mode != ModeDetail {
		m.mode = ModeIdle
	}
	m.pending = nil
	m.target = ""
	m.targetItem = zero
	m.inFlight = ""
}

func (m *Machine[T]) applyFetched(msg FetchedMsg[T]) {
	if m.closed || msg.Owner != m.owner || msg.Seq != m.fetchSeq {
		return
	}
	m.loading = false

	if msg.Err != nil {
		// 保留上一次成功获取的列表
		zerolog.Ctx(m.ctx).Warn().Err(msg.Err).Str("view", m.adapter.Title()).Msg("Failed to fetch list")
		m.err = msg.Err
		return
	}

	m.items = msg.Items
	switch {
	case len(m.items) == 0:
		m.selected = 0
	case m.selected >= len(m.items):
		m.selected = len(m.items) - 1
	}
}

func (m *Machine[T]) applyActionDone(msg ActionDoneMsg) tea.Cmd {
	if m.closed || msg.Owner != m.owner || m.inFlight == "" || msg.Target != m.target {
		return nil
	}
	logger := zerolog.Ctx(m.ctx)
	fromDetail := m.mode == ModeDetail

	if msg.Err != nil {
		logger.Error().Err(msg.Err).
			Str("view", m.adapter.Title()).
			Str("action", msg.Action).
			Str("target", msg.Target).
			Msg("Action failed")
		m.resetAction()
		m.err = apierror.ActionFailed(msg.Action, msg.Err)
		return nil
	}

	logger.Info().
		Str("view", m.adapter.Title()).
		Str("action", msg.Action).
		Str("target", msg.Target).
		Str("upid", msg.UPID).
		Msg("Action succeeded")
	m.resetAction()
	m.err = nil
	if fromDetail {
		m.closeDetail()
	}
	return m.Refresh()
}

// Snapshot 渲染使用的只读快照
type Snapshot[T any] struct {
	Title    string
	Items    []T
	Selected int // 空列表时为 -1
	Loading  bool
	Err      error
	Mode     Mode
	Target   string
	// TargetItem 待确认或执行中操作的对象
	TargetItem T
	Pending    *Action[T]
	InFlight   string
	Detail     *DetailSnapshot[T]
}

// Snapshot 返回当前状态
func (m *Machine[T]) Snapshot() Snapshot[T] {
	s := Snapshot[T]{
		Title:      m.adapter.Title(),
		Items:      m.items,
		Selected:   m.selected,
		Loading:    m.loading,
		Err:        m.err,
		Mode:       m.mode,
		Target:     m.target,
		TargetItem: m.targetItem,
		Pending:    m.pending,
		InFlight:   m.inFlight,
	}
	if len(m.items) == 0 {
		s.Selected = -1
	}
	if m.detail != nil {
		s.Detail = m.detail.snapshot()
		s.Detail.Loading = m.inFlight != ""
	}
	return s
}
