package tui

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jimyag/proxmux/internal/proxmux/entity"
)

type actionCall struct {
	Kind   entity.GuestKind
	Node   string
	VMID   int
	Action entity.GuestAction
}

// fakeCluster 线程安全的集群替身，errgroup 会并发调用
type fakeCluster struct {
	mu        sync.Mutex
	connected bool
	guests    map[entity.GuestKind][]entity.Guest
	storages  []entity.Storage
	configErr error
	listCalls map[entity.GuestKind]int
	actions   []actionCall
}

func newFakeCluster() *fakeCluster {
	return &fakeCluster{
		connected: true,
		guests: map[entity.GuestKind][]entity.Guest{
			entity.GuestKindVM: {
				{VMID: 103, Name: "db", Node: "pve1", Status: entity.GuestStatusStopped, Kind: entity.GuestKindVM},
				{VMID: 101, Name: "web", Node: "pve2", Status: entity.GuestStatusRunning, Kind: entity.GuestKindVM, CPU: 0.25, CPUs: 2},
			},
			entity.GuestKindContainer: {
				{VMID: 200, Name: "dns", Node: "pve1", Status: entity.GuestStatusRunning, Kind: entity.GuestKindContainer},
			},
		},
		storages: []entity.Storage{
			{Storage: "local-lvm", Type: "lvmthin", Content: "rootdir,images", Active: true, Enabled: true},
			{Storage: "local", Type: "dir", Content: "vztmpl,iso", Active: true, Enabled: true},
		},
		listCalls: map[entity.GuestKind]int{},
	}
}

func (c *fakeCluster) TestConnection(context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeCluster) ListNodes(context.Context) ([]entity.Node, error) {
	return []entity.Node{
		{Node: "pve2", Status: entity.NodeStatusOffline},
		{Node: "pve1", Status: entity.NodeStatusOnline, CPU: 0.1, MaxCPU: 8, Mem: 4 << 30, MaxMem: 16 << 30, Uptime: 90061},
	}, nil
}

func (c *fakeCluster) Resources(context.Context) ([]entity.ResourceSummary, error) {
	return []entity.ResourceSummary{
		{Type: entity.ResourceTypeNode, Node: "pve1", Status: "online"},
		{Type: entity.ResourceTypeNode, Node: "pve2", Status: "offline"},
		{Type: entity.ResourceTypeVM, VMID: 101, Status: "running"},
		{Type: entity.ResourceTypeVM, VMID: 103, Status: "stopped"},
		{Type: entity.ResourceTypeLXC, VMID: 200, Status: "running"},
	}, nil
}

func (c *fakeCluster) ListGuests(_ context.Context, kind entity.GuestKind, _ string) ([]entity.Guest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listCalls[kind]++
	return append([]entity.Guest(nil), c.guests[kind]...), nil
}

func (c *fakeCluster) listCount(kind entity.GuestKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listCalls[kind]
}

func (c *fakeCluster) GuestAction(_ context.Context, kind entity.GuestKind, node string, vmid int, action entity.GuestAction) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actions = append(c.actions, actionCall{Kind: kind, Node: node, VMID: vmid, Action: action})
	return fmt.Sprintf("UPID:%s:%s:%d", node, action, vmid), nil
}

func (c *fakeCluster) actionCalls() []actionCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]actionCall(nil), c.actions...)
}

func (c *fakeCluster) GuestConfig(_ context.Context, kind entity.GuestKind, _ string, _ int) (entity.GuestConfig, error) {
	if c.configErr != nil {
		return nil, c.configErr
	}
	onBoot := entity.Flag(true)
	common := entity.CommonConfig{
		Net0:   "name=eth0,bridge=vmbr0,hwaddr=BC:24:11:00:00:02,ip=10.0.0.5/24",
		Tags:   "prod;web",
		OnBoot: &onBoot,
	}
	if kind == entity.GuestKindContainer {
		return &entity.ContainerConfig{CommonConfig: common}, nil
	}
	return &entity.VMConfig{CommonConfig: common}, nil
}

func (c *fakeCluster) ListStorage(context.Context, string) ([]entity.Storage, error) {
	return c.storages, nil
}

func (c *fakeCluster) ListTemplates(context.Context, string) ([]entity.StorageContent, error) {
	return []entity.StorageContent{{Volid: "local:vztmpl/debian-12-standard_12.2-1_amd64.tar.zst", Content: "vztmpl"}}, nil
}

func (c *fakeCluster) RootfsStorages(context.Context, string) ([]entity.Storage, error) {
	return c.storages[:1], nil
}

func (c *fakeCluster) NetworkBridges(context.Context, string) ([]entity.Bridge, error) {
	return []entity.Bridge{{Iface: "vmbr0", Type: "bridge", Active: true}}, nil
}

func (c *fakeCluster) NextVMID(context.Context) (int, error) { return 105, nil }

func (c *fakeCluster) CreateContainer(context.Context, string, *entity.ProvisioningConfig) (string, error) {
	return "UPID:pve1:vzcreate:105", nil
}

func (c *fakeCluster) Status(_ context.Context, node, upid string) (*entity.Task, error) {
	return &entity.Task{UPID: upid, Node: node, Status: entity.TaskStatusStopped, ExitStatus: entity.TaskExitOK}, nil
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// run 同步执行命令，把结果交回 App，直到没有后续命令
// 返回是否收到了退出消息
func run(a *App, cmd tea.Cmd) bool {
	queue := []tea.Cmd{cmd}
	quit := false
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
			quit = true
		default:
			_, c := a.Update(msg)
			queue = append(queue, c)
		}
	}
	return quit
}

// press 依次发送按键并执行产生的命令
func press(a *App, keys ...string) bool {
	quit := false
	for _, k := range keys {
		_, cmd := a.Update(keyMsg(k))
		if run(a, cmd) {
			quit = true
		}
	}
	return quit
}

func newTestApp(t *testing.T, cluster *fakeCluster) *App {
	t.Helper()
	a := NewApp(context.Background(), cluster, cluster, time.Millisecond)
	run(a, a.Init())
	return a
}
