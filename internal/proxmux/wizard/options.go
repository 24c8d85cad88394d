package wizard

import (
	"context"
	"fmt"

	"github.com/jimyag/proxmux/internal/proxmux/entity"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Provisioner 向导需要的聚合客户端能力
type Provisioner interface {
	ListNodes(ctx context.Context) ([]entity.Node, error)
	ListTemplates(ctx context.Context, node string) ([]entity.StorageContent, error)
	RootfsStorages(ctx context.Context, node string) ([]entity.Storage, error)
	NetworkBridges(ctx context.Context, node string) ([]entity.Bridge, error)
	NextVMID(ctx context.Context) (int, error)
	CreateContainer(ctx context.Context, node string, cfg *entity.ProvisioningConfig) (string, error)
}

// TaskStatuser 查询任务状态
type TaskStatuser interface {
	Status(ctx context.Context, node, upid string) (*entity.Task, error)
}

// Options 向导各步骤的可选项
// 在向导打开时一次性加载，之后各步骤不再发起网络请求
type Options struct {
	Node           string
	Templates      []entity.StorageContent
	RootfsStorages []entity.Storage
	Bridges        []entity.Bridge
	NextVMID       int
}

// LoadOptions 加载可选项，node 为空时使用第一个在线节点
func LoadOptions(ctx context.Context, p Provisioner, node string) (*Options, error) {
	if node == "" {
		nodes, err := p.ListNodes(ctx)
		if err != nil {
			return nil, err
		}
		for _, n := range nodes {
			if n.Online() {
				node = n.Node
				break
			}
		}
		if node == "" {
			return nil, fmt.Errorf("no online node available")
		}
	}

	opts := &Options{Node: node}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		templates, err := p.ListTemplates(gctx, node)
		if err != nil {
			return fmt.Errorf("list templates: %w", err)
		}
		opts.Templates = templates
		return nil
	})
	g.Go(func() error {
		storages, err := p.RootfsStorages(gctx, node)
		if err != nil {
			return fmt.Errorf("list storages: %w", err)
		}
		opts.RootfsStorages = storages
		return nil
	})
	g.Go(func() error {
		bridges, err := p.NetworkBridges(gctx, node)
		if err != nil {
			return fmt.Errorf("list bridges: %w", err)
		}
		opts.Bridges = bridges
		return nil
	})
	g.Go(func() error {
		id, err := p.NextVMID(gctx)
		if err != nil {
			return fmt.Errorf("next vmid: %w", err)
		}
		opts.NextVMID = id
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("node", node).
		Int("templates", len(opts.Templates)).
		Int("storages", len(opts.RootfsStorages)).
		Int("bridges", len(opts.Bridges)).
		Int("next_vmid", opts.NextVMID).
		Msg("Wizard options loaded")
	return opts, nil
}
