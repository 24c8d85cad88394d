package tui

import (
	"context"

	"github.com/jimyag/proxmux/internal/proxmux/entity"
	"github.com/jimyag/proxmux/internal/proxmux/wizard"
)

// Cluster 界面使用的聚合客户端能力，由 service.ClusterService 实现
type Cluster interface {
	wizard.Provisioner

	TestConnection(ctx context.Context) bool
	Resources(ctx context.Context) ([]entity.ResourceSummary, error)
	ListGuests(ctx context.Context, kind entity.GuestKind, node string) ([]entity.Guest, error)
	GuestAction(ctx context.Context, kind entity.GuestKind, node string, vmid int, action entity.GuestAction) (string, error)
	GuestConfig(ctx context.Context, kind entity.GuestKind, node string, vmid int) (entity.GuestConfig, error)
	ListStorage(ctx context.Context, node string) ([]entity.Storage, error)
}
