package tui

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/key"
	"github.com/jimyag/proxmux/internal/proxmux/entity"
	"github.com/jimyag/proxmux/internal/proxmux/interact"
)

// guestAdapter 虚拟机和容器列表
type guestAdapter struct {
	cluster Cluster
	kind    entity.GuestKind
}

// guestDetails 详情页的补充信息
type guestDetails struct {
	Config entity.CommonConfig
	Net    entity.NetInfo
}

func newGuestAdapter(cluster Cluster, kind entity.GuestKind) *guestAdapter {
	return &guestAdapter{cluster: cluster, kind: kind}
}

func (a *guestAdapter) Title() string {
	if a.kind == entity.GuestKindContainer {
		return "Containers"
	}
	return "Virtual Machines"
}

func (a *guestAdapter) Fetch(ctx context.Context) ([]entity.Guest, error) {
	guests, err := a.cluster.ListGuests(ctx, a.kind, "")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(guests, func(i, j int) bool { return guests[i].VMID < guests[j].VMID })
	return guests, nil
}

// Key 不同节点上的 vmid 可能重复，所以带上节点名
func (a *guestAdapter) Key(g entity.Guest) string {
	return fmt.Sprintf("%s/%d", g.Node, g.VMID)
}

func (a *guestAdapter) Actions() []interact.Action[entity.Guest] {
	notRunning := func(g entity.Guest) bool { return !g.Running() }
	running := func(g entity.Guest) bool { return g.Running() }

	return []interact.Action[entity.Guest]{
		a.action(entity.GuestActionStart, "Start", "s", false, notRunning),
		a.action(entity.GuestActionShutdown, "Shutdown", "S", true, running),
		a.action(entity.GuestActionStop, "Stop", "x", true, running),
		a.action(entity.GuestActionReboot, "Reboot", "R", true, running),
	}
}

func (a *guestAdapter) action(name entity.GuestAction, label, k string, destructive bool, enabled func(entity.Guest) bool) interact.Action[entity.Guest] {
	return interact.Action[entity.Guest]{
		Name:        string(name),
		Label:       label,
		Key:         key.NewBinding(key.WithKeys(k), key.WithHelp(k, string(name))),
		Destructive: destructive,
		Enabled:     enabled,
		Run: func(ctx context.Context, g entity.Guest) (string, error) {
			return a.cluster.GuestAction(ctx, a.kind, g.Node, int(g.VMID), name)
		},
	}
}

// Describe 读取配置，用于详情页展示网络、标签等信息
func (a *guestAdapter) Describe(ctx context.Context, g entity.Guest) (any, error) {
	cfg, err := a.cluster.GuestConfig(ctx, a.kind, g.Node, int(g.VMID))
	if err != nil {
		return nil, err
	}
	common := cfg.Common()
	return guestDetails{Config: common, Net: entity.ParseNetInfo(common.Net0)}, nil
}

// storageAdapter 存储列表，只读
type storageAdapter struct {
	cluster Cluster
}

func (a *storageAdapter) Title() string { return "Storage" }

func (a *storageAdapter) Fetch(ctx context.Context) ([]entity.Storage, error) {
	storages, err := a.cluster.ListStorage(ctx, "")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(storages, func(i, j int) bool { return storages[i].Storage < storages[j].Storage })
	return storages, nil
}

func (a *storageAdapter) Key(s entity.Storage) string { return s.Storage }

func (a *storageAdapter) Actions() []interact.Action[entity.Storage] { return nil }
