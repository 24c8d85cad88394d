package interact

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// detailState 详情页子状态机
// 可选操作只包含对该资源可用的操作，光标循环移动
type detailState[T any] struct {
	item          T
	key           string
	actions       []Action[T]
	cursor        int
	confirming    bool
	details       any
	detailsLoaded bool
}

// DetailSnapshot 详情页快照
type DetailSnapshot[T any] struct {
	Item          T
	Actions       []Action[T]
	Cursor        int
	Confirming    bool
	Loading       bool
	Details       any
	DetailsLoaded bool
}

func (d *detailState[T]) snapshot() *DetailSnapshot[T] {
	return &DetailSnapshot[T]{
		Item:          d.item,
		Actions:       d.actions,
		Cursor:        d.cursor,
		Confirming:    d.confirming,
		Details:       d.details,
		DetailsLoaded: d.detailsLoaded,
	}
}

// openDetail 打开选中资源的详情页
func (m *Machine[T]) openDetail() tea.Cmd {
	item, ok := m.Selected()
	if !ok {
		return nil
	}

	target := m.adapter.Key(item)
	m.mode = ModeDetail
	m.detail = &detailState[T]{
		item:    item,
		key:     target,
		actions: availableActions(m.adapter.Actions(), item),
	}

	describer, ok := m.adapter.(Describer[T])
	if !ok {
		m.detail.detailsLoaded = true
		return nil
	}

	ctx, owner := m.ctx, m.owner
	return func() tea.Msg {
		details, err := describer.Describe(ctx, item)
		return DescribedMsg{Owner: owner, Target: target, Details: details, Err: err}
	}
}

// closeDetail 回到列表
func (m *Machine[T]) closeDetail() {
	m.mode = ModeIdle
	m.detail = nil
}

func (m *Machine[T]) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	d := m.detail
	if m.inFlight != "" {
		return nil
	}

	if d.confirming {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			d.confirming = false
			return m.dispatch(d.actions[d.cursor], d.item)
		case key.Matches(msg, m.keys.Cancel):
			d.confirming = false
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.closeDetail()
		return m.Refresh()
	case key.Matches(msg, m.keys.Up):
		if n := len(d.actions); n > 0 {
			d.cursor = (d.cursor - 1 + n) % n
		}
	case key.Matches(msg, m.keys.Down):
		if n := len(d.actions); n > 0 {
			d.cursor = (d.cursor + 1) % n
		}
	case key.Matches(msg, m.keys.Open):
		if len(d.actions) == 0 {
			return nil
		}
		a := d.actions[d.cursor]
		if a.Destructive {
			d.confirming = true
			return nil
		}
		return m.dispatch(a, d.item)
	}
	return nil
}

// applyDescribed 补充信息获取失败时按没有补充信息处理
func (m *Machine[T]) applyDescribed(msg DescribedMsg) {
	if m.closed || msg.Owner != m.owner || m.detail == nil || msg.Target != m.detail.key {
		return
	}
	if msg.Err != nil {
		zerolog.Ctx(m.ctx).Debug().Err(msg.Err).
			Str("view", m.adapter.Title()).
			Str("target", msg.Target).
			Msg("Details unavailable")
		msg.Details = nil
	}
	m.detail.details = msg.Details
	m.detail.detailsLoaded = true
}
