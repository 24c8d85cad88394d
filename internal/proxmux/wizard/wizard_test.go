package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jimyag/proxmux/internal/proxmux/entity"
	"github.com/jimyag/proxmux/pkg/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvisioner 记录所有网络调用
type fakeProvisioner struct {
	mu        sync.Mutex
	calls     int
	nodes     []entity.Node
	templates []entity.StorageContent
	storages  []entity.Storage
	bridges   []entity.Bridge
	nextID    int
	loadErr   error
	createErr error
	created   []entity.ProvisioningConfig
	createdOn []string
}

func newFakeProvisioner() *fakeProvisioner {
	return &fakeProvisioner{
		nodes: []entity.Node{
			{Node: "pve0", Status: entity.NodeStatusOffline},
			{Node: "pve1", Status: entity.NodeStatusOnline},
		},
		templates: []entity.StorageContent{
			{Volid: "local:vztmpl/debian-12-standard_12.2-1_amd64.tar.zst", Content: "vztmpl", Size: 126 << 20},
			{Volid: "local:vztmpl/alpine-3.19-default_20240207_amd64.tar.xz", Content: "vztmpl", Size: 3 << 20},
		},
		storages: []entity.Storage{{Storage: "local-lvm"}, {Storage: "local-zfs"}},
		bridges:  []entity.Bridge{{Iface: "vmbr0", Type: "bridge", Active: true}},
		nextID:   105,
	}
}

func (p *fakeProvisioner) record() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
}

func (p *fakeProvisioner) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *fakeProvisioner) ListNodes(context.Context) ([]entity.Node, error) {
	p.record()
	return p.nodes, nil
}

func (p *fakeProvisioner) ListTemplates(_ context.Context, _ string) ([]entity.StorageContent, error) {
	p.record()
	return p.templates, p.loadErr
}

func (p *fakeProvisioner) RootfsStorages(_ context.Context, _ string) ([]entity.Storage, error) {
	p.record()
	return p.storages, nil
}

func (p *fakeProvisioner) NetworkBridges(_ context.Context, _ string) ([]entity.Bridge, error) {
	p.record()
	return p.bridges, nil
}

func (p *fakeProvisioner) NextVMID(context.Context) (int, error) {
	p.record()
	return p.nextID, nil
}

func (p *fakeProvisioner) CreateContainer(_ context.Context, node string, cfg *entity.ProvisioningConfig) (string, error) {
	p.record()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, *cfg)
	p.createdOn = append(p.createdOn, node)
	if p.createErr != nil {
		return "", p.createErr
	}
	return "UPID:" + node + ":vzcreate", nil
}

// fakeTracker 按顺序返回任务状态
type fakeTracker struct {
	statuses []entity.Task
	errAt    int
	err      error
	calls    int
}

func (t *fakeTracker) Status(_ context.Context, node, upid string) (*entity.Task, error) {
	i := t.calls
	t.calls++
	if t.err != nil && i == t.errAt {
		return nil, t.err
	}
	if i >= len(t.statuses) {
		i = len(t.statuses) - 1
	}
	task := t.statuses[i]
	task.Node, task.UPID = node, upid
	return &task, nil
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// press 依次发送按键，返回最后一个按键产生的命令
func press(w *Wizard, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		cmd = w.Update(keyMsg(k))
	}
	return cmd
}

// drain 同步执行命令并把结果交回向导
func drain(w *Wizard, cmd tea.Cmd) tea.Msg {
	var last tea.Msg
	for cmd != nil {
		last = cmd()
		cmd = w.Update(last)
	}
	return last
}

func opened(t *testing.T, p *fakeProvisioner, tracker *fakeTracker) *Wizard {
	t.Helper()
	w := New(context.Background(), p, tracker, "", time.Millisecond)
	drain(w, w.Init())
	require.Equal(t, PhaseEditing, w.Phase(), "load error: %v", w.Err())
	return w
}

// fillIdentity 在身份步骤填写主机名
func fillIdentity(w *Wizard, hostname string) {
	press(w, "tab", hostname)
}

func TestWizard_LoadOptions(t *testing.T) {
	t.Parallel()

	p := newFakeProvisioner()
	w := opened(t, p, &fakeTracker{})

	assert.Equal(t, "pve1", w.options.Node)
	assert.Equal(t, 105, w.options.NextVMID)
	assert.Len(t, w.options.Templates, 2)
	assert.Equal(t, 5, p.callCount())
	assert.NotNil(t, w.Draft())
	assert.Contains(t, w.View(), "on pve1")
}

func TestWizard_LoadOptionsExplicitNode(t *testing.T) {
	t.Parallel()

	p := newFakeProvisioner()
	w := New(context.Background(), p, &fakeTracker{}, "pve7", time.Millisecond)
	drain(w, w.Init())

	assert.Equal(t, PhaseEditing, w.Phase())
	assert.Equal(t, "pve7", w.options.Node)
	assert.Equal(t, 4, p.callCount())
}

func TestWizard_LoadFailure(t *testing.T) {
	t.Parallel()

	p := newFakeProvisioner()
	p.loadErr = apierror.FromStatus(500, "storage error")
	w := New(context.Background(), p, &fakeTracker{}, "", time.Millisecond)
	drain(w, w.Init())

	assert.Equal(t, PhaseFailed, w.Phase())
	assert.ErrorIs(t, w.Err(), apierror.ErrAPI)

	msg := drain(w, press(w, "x"))
	assert.Equal(t, ClosedMsg{}, msg)
}

func TestWizard_NoOnlineNode(t *testing.T) {
	t.Parallel()

	p := newFakeProvisioner()
	p.nodes = []entity.Node{{Node: "pve0", Status: entity.NodeStatusOffline}}
	w := New(context.Background(), p, &fakeTracker{}, "", time.Millisecond)
	drain(w, w.Init())

	assert.Equal(t, PhaseFailed, w.Phase())
	assert.ErrorContains(t, w.Err(), "no online node")
}

func TestWizard_CreateContainer(t *testing.T) {
	t.Parallel()

	p := newFakeProvisioner()
	tracker := &fakeTracker{statuses: []entity.Task{
		{Status: entity.TaskStatusRunning},
		{Status: entity.TaskStatusRunning},
		{Status: entity.TaskStatusStopped, ExitStatus: entity.TaskExitOK},
	}}
	w := opened(t, p, tracker)
	loadCalls := p.callCount()

	// 选择第二个模板
	press(w, "j", "enter")
	assert.Equal(t, 1, w.current)

	fillIdentity(w, "web01")
	press(w, "tab", "secret1", "tab", testSSHKey, "enter")
	require.NoError(t, w.Err())
	assert.Equal(t, 2, w.current)

	// 开启 nesting
	press(w, "tab", "tab", "tab", "tab", "tab", "tab", "space", "enter")
	require.NoError(t, w.Err())
	assert.Equal(t, 3, w.current)

	// 静态 IP
	press(w, "tab", "right", "tab", "10.0.0.5/24", "tab", "10.0.0.1", "enter")
	require.NoError(t, w.Err())
	assert.Equal(t, 4, w.current)
	assert.Contains(t, w.View(), "web01")
	assert.NotContains(t, w.View(), "secret1")

	// 非最后一步不会发起网络请求
	assert.Equal(t, loadCalls, p.callCount())

	submit := press(w, "enter")
	require.NotNil(t, submit)
	assert.Equal(t, PhaseSubmitting, w.Phase())
	assert.Nil(t, w.Draft())

	// 重复确认不会再次提交
	assert.Nil(t, press(w, "enter"))

	drain(w, submit)
	assert.Equal(t, PhaseDone, w.Phase())
	assert.Equal(t, 3, tracker.calls)
	assert.True(t, w.Task().Succeeded())

	require.Len(t, p.created, 1)
	assert.Equal(t, []string{"pve1"}, p.createdOn)
	cfg := p.created[0]
	assert.Equal(t, 105, cfg.VMID)
	assert.Equal(t, "web01", cfg.Hostname)
	assert.Equal(t, "local:vztmpl/alpine-3.19-default_20240207_amd64.tar.xz", cfg.OSTemplate)
	assert.Equal(t, "local-lvm:8", cfg.RootFS)
	assert.Equal(t, "secret1", cfg.Password)
	assert.Equal(t, testSSHKey, cfg.SSHPublicKeys)
	assert.Equal(t, 1, *cfg.Cores)
	assert.Equal(t, 512, *cfg.Memory)
	assert.Equal(t, 512, *cfg.Swap)
	assert.Equal(t, "nesting=1", cfg.Features)
	assert.True(t, *cfg.Unprivileged)
	assert.False(t, *cfg.OnBoot)
	assert.True(t, *cfg.Start)
	assert.Equal(t, "name=eth0,bridge=vmbr0,ip=10.0.0.5/24,gw=10.0.0.1", cfg.Net0)
	assert.Empty(t, cfg.Nameserver)

	msg := drain(w, press(w, "q"))
	assert.Equal(t, ClosedMsg{Created: true, VMID: 105}, msg)
}

func TestWizard_StepValidationBlocksAdvance(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name      string
		keys      []string
		expectErr string
	}{
		{name: "missing hostname", keys: nil, expectErr: "hostname is required"},
		{name: "invalid hostname", keys: []string{"tab", "web_01"}, expectErr: "invalid hostname"},
		{name: "short password", keys: []string{"tab", "web01", "tab", "abc"}, expectErr: "at least 5 characters"},
		{name: "invalid ssh key", keys: []string{"tab", "web01", "tab", "tab", "ssh-ed25519 nope"}, expectErr: "invalid SSH public key"},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := newFakeProvisioner()
			w := opened(t, p, &fakeTracker{})
			press(w, "enter")
			require.Equal(t, 1, w.current)

			press(w, tc.keys...)
			assert.Nil(t, press(w, "enter"))
			assert.Equal(t, 1, w.current)
			assert.ErrorContains(t, w.Err(), tc.expectErr)
			assert.Contains(t, w.View(), tc.expectErr)
			assert.Empty(t, p.created)
		})
	}
}

func TestWizard_NoTemplates(t *testing.T) {
	t.Parallel()

	p := newFakeProvisioner()
	p.templates = nil
	w := opened(t, p, &fakeTracker{})

	press(w, "enter")
	assert.Equal(t, 0, w.current)
	assert.ErrorContains(t, w.Err(), "no container templates")
}

func TestWizard_BackPreservesValues(t *testing.T) {
	t.Parallel()

	p := newFakeProvisioner()
	w := opened(t, p, &fakeTracker{})

	press(w, "j", "enter")
	fillIdentity(w, "db01")
	press(w, "enter")
	require.Equal(t, 2, w.current)

	press(w, "shift+tab")
	assert.Equal(t, 1, w.current)
	press(w, "shift+tab")
	assert.Equal(t, 0, w.current)
	// 第一步再后退没有效果
	press(w, "shift+tab")
	assert.Equal(t, 0, w.current)

	press(w, "enter", "enter")
	require.Equal(t, 2, w.current)
	assert.Equal(t, "db01", w.Draft().Hostname)
	assert.Equal(t, "local:vztmpl/alpine-3.19-default_20240207_amd64.tar.xz", w.Draft().OSTemplate)

	step := w.steps[1].(*identityStep)
	assert.Equal(t, "db01", step.hostname.Value())
}

func TestWizard_Cancel(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name string
		keys []string
	}{
		{name: "first step", keys: nil},
		{name: "identity step", keys: []string{"enter", "tab", "web01"}},
		{name: "review step", keys: []string{"enter", "tab", "web01", "enter", "enter", "enter"}},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := newFakeProvisioner()
			w := opened(t, p, &fakeTracker{})
			loadCalls := p.callCount()
			press(w, tc.keys...)

			msg := drain(w, press(w, "esc"))
			assert.Equal(t, ClosedMsg{}, msg)
			assert.Equal(t, PhaseCancelled, w.Phase())
			assert.Nil(t, w.Draft())
			assert.Empty(t, p.created)
			assert.Equal(t, loadCalls, p.callCount())
		})
	}
}

func TestWizard_CancelWhileLoading(t *testing.T) {
	t.Parallel()

	p := newFakeProvisioner()
	w := New(context.Background(), p, &fakeTracker{}, "", time.Millisecond)
	load := w.Init()

	msg := drain(w, press(w, "esc"))
	assert.Equal(t, ClosedMsg{}, msg)

	// 加载结果在取消之后到达
	assert.Nil(t, w.Update(load()))
	assert.Equal(t, PhaseCancelled, w.Phase())
}

// submitDraft 填写最少的字段并走到最后一步
func submitDraft(t *testing.T, w *Wizard) tea.Cmd {
	t.Helper()
	press(w, "enter")
	fillIdentity(w, "web01")
	press(w, "enter", "enter", "enter")
	require.Equal(t, 4, w.current)
	cmd := press(w, "enter")
	require.NotNil(t, cmd)
	return cmd
}

func TestWizard_SubmitFailure(t *testing.T) {
	t.Parallel()

	p := newFakeProvisioner()
	p.createErr = apierror.FromStatus(500, "CT 105 already exists")
	tracker := &fakeTracker{}
	w := opened(t, p, tracker)

	drain(w, submitDraft(t, w))
	assert.Equal(t, PhaseFailed, w.Phase())
	assert.ErrorIs(t, w.Err(), apierror.ErrActionFailed)
	assert.ErrorIs(t, w.Err(), apierror.ErrAPI)
	assert.Equal(t, 0, tracker.calls)
	assert.Len(t, p.created, 1)

	msg := drain(w, press(w, "enter"))
	assert.Equal(t, ClosedMsg{Created: false, VMID: 105}, msg)
}

func TestWizard_PollingStopsOnError(t *testing.T) {
	t.Parallel()

	p := newFakeProvisioner()
	tracker := &fakeTracker{
		statuses: []entity.Task{{Status: entity.TaskStatusRunning}},
		errAt:    1,
		err:      errors.New("connection refused"),
	}
	w := opened(t, p, tracker)

	drain(w, submitDraft(t, w))
	assert.Equal(t, PhaseFailed, w.Phase())
	assert.Equal(t, 2, tracker.calls)
	assert.ErrorContains(t, w.Err(), "connection refused")
}

func TestWizard_TaskFailure(t *testing.T) {
	t.Parallel()

	p := newFakeProvisioner()
	tracker := &fakeTracker{statuses: []entity.Task{
		{Status: entity.TaskStatusStopped, ExitStatus: "unable to create CT 105 - already exists"},
	}}
	w := opened(t, p, tracker)

	drain(w, submitDraft(t, w))
	assert.Equal(t, PhaseFailed, w.Phase())
	assert.Equal(t, 1, tracker.calls)
	assert.ErrorIs(t, w.Err(), apierror.ErrActionFailed)
	assert.ErrorContains(t, w.Err(), "already exists")
}

func TestWizard_ClosedDropsResults(t *testing.T) {
	t.Parallel()

	p := newFakeProvisioner()
	tracker := &fakeTracker{statuses: []entity.Task{{Status: entity.TaskStatusRunning}}}
	w := opened(t, p, tracker)

	submit := submitDraft(t, w)
	w.Close()

	assert.Nil(t, w.Update(submit()))
	assert.Equal(t, PhaseSubmitting, w.Phase())
	assert.Equal(t, 0, tracker.calls)
}
