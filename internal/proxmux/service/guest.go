package service

import (
	"context"
	"fmt"

	"github.com/jimyag/proxmux/internal/proxmux/entity"
	"github.com/jimyag/proxmux/pkg/apierror"
	"github.com/jimyag/proxmux/pkg/pveapi"
	"github.com/rs/zerolog"
)

// ListVMs 列举虚拟机，node 为空时列举所有节点
func (s *ClusterService) ListVMs(ctx context.Context, node string) ([]entity.Guest, error) {
	return s.ListGuests(ctx, entity.GuestKindVM, node)
}

// ListContainers 列举容器，node 为空时列举所有节点
func (s *ClusterService) ListContainers(ctx context.Context, node string) ([]entity.Guest, error) {
	return s.ListGuests(ctx, entity.GuestKindContainer, node)
}

// ListGuests 列举指定类型的计算资源
//
// 单节点接口不返回 node 字段，每个节点的结果在拼接前就写入来源节点，
// 即使不同节点上出现相同的 VMID 也不会归属错误。
func (s *ClusterService) ListGuests(ctx context.Context, kind entity.GuestKind, node string) ([]entity.Guest, error) {
	nodes, err := s.targetNodes(ctx, node)
	if err != nil {
		return nil, err
	}

	guests, err := fanOut(ctx, nodes, func(ctx context.Context, node string) ([]entity.Guest, error) {
		return s.listNodeGuests(ctx, kind, node)
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("kind", string(kind)).
		Int("nodes", len(nodes)).
		Int("count", len(guests)).
		Msg("Listed guests")
	return guests, nil
}

func (s *ClusterService) listNodeGuests(ctx context.Context, kind entity.GuestKind, node string) ([]entity.Guest, error) {
	guests, err := pveapi.Get[[]entity.Guest](ctx, s.api, fmt.Sprintf("/nodes/%s/%s", node, kind))
	if err != nil {
		return nil, err
	}
	for i := range guests {
		guests[i].Node = node
		guests[i].Kind = kind
	}
	return guests, nil
}

// GetVM 获取单个虚拟机
func (s *ClusterService) GetVM(ctx context.Context, node string, vmid int) (*entity.Guest, error) {
	return s.GetGuest(ctx, entity.GuestKindVM, node, vmid)
}

// GetContainer 获取单个容器
func (s *ClusterService) GetContainer(ctx context.Context, node string, vmid int) (*entity.Guest, error) {
	return s.GetGuest(ctx, entity.GuestKindContainer, node, vmid)
}

// GetGuest 在节点的资源列表中查找指定 VMID
// 没有单条查询接口，只能线性扫描
func (s *ClusterService) GetGuest(ctx context.Context, kind entity.GuestKind, node string, vmid int) (*entity.Guest, error) {
	guests, err := s.listNodeGuests(ctx, kind, node)
	if err != nil {
		return nil, err
	}
	for i := range guests {
		if int(guests[i].VMID) == vmid {
			return &guests[i], nil
		}
	}
	return nil, apierror.NotFound("%s %d not found on node %s", kind.Label(), vmid, node)
}

// GuestAction 对虚拟机或容器执行电源操作，返回任务 UPID
// 是否轮询任务由调用方决定
func (s *ClusterService) GuestAction(ctx context.Context, kind entity.GuestKind, node string, vmid int, action entity.GuestAction) (string, error) {
	logger := zerolog.Ctx(ctx)
	path := fmt.Sprintf("/nodes/%s/%s/%d/status/%s", node, kind, vmid, action)

	upid, err := pveapi.Post[string](ctx, s.api, path, nil)
	if err != nil {
		logger.Error().Err(err).
			Str("node", node).
			Str("kind", string(kind)).
			Int("vmid", vmid).
			Str("action", string(action)).
			Msg("Guest action failed")
		return "", err
	}

	logger.Info().
		Str("node", node).
		Str("kind", string(kind)).
		Int("vmid", vmid).
		Str("action", string(action)).
		Str("upid", upid).
		Msg("Guest action dispatched")
	return upid, nil
}

// StartVM 启动虚拟机
func (s *ClusterService) StartVM(ctx context.Context, node string, vmid int) (string, error) {
	return s.GuestAction(ctx, entity.GuestKindVM, node, vmid, entity.GuestActionStart)
}

// StopVM 强制停止虚拟机
func (s *ClusterService) StopVM(ctx context.Context, node string, vmid int) (string, error) {
	return s.GuestAction(ctx, entity.GuestKindVM, node, vmid, entity.GuestActionStop)
}

// ShutdownVM 正常关闭虚拟机
func (s *ClusterService) ShutdownVM(ctx context.Context, node string, vmid int) (string, error) {
	return s.GuestAction(ctx, entity.GuestKindVM, node, vmid, entity.GuestActionShutdown)
}

// RebootVM 重启虚拟机
func (s *ClusterService) RebootVM(ctx context.Context, node string, vmid int) (string, error) {
	return s.GuestAction(ctx, entity.GuestKindVM, node, vmid, entity.GuestActionReboot)
}

// StartContainer 启动容器
func (s *ClusterService) StartContainer(ctx context.Context, node string, vmid int) (string, error) {
	return s.GuestAction(ctx, entity.GuestKindContainer, node, vmid, entity.GuestActionStart)
}

// StopContainer 强制停止容器
func (s *ClusterService) StopContainer(ctx context.Context, node string, vmid int) (string, error) {
	return s.GuestAction(ctx, entity.GuestKindContainer, node, vmid, entity.GuestActionStop)
}

// ShutdownContainer 正常关闭容器
func (s *ClusterService) ShutdownContainer(ctx context.Context, node string, vmid int) (string, error) {
	return s.GuestAction(ctx, entity.GuestKindContainer, node, vmid, entity.GuestActionShutdown)
}

// RebootContainer 重启容器
func (s *ClusterService) RebootContainer(ctx context.Context, node string, vmid int) (string, error) {
	return s.GuestAction(ctx, entity.GuestKindContainer, node, vmid, entity.GuestActionReboot)
}

// VMConfig 获取虚拟机配置
func (s *ClusterService) VMConfig(ctx context.Context, node string, vmid int) (*entity.VMConfig, error) {
	cfg, err := pveapi.Get[entity.VMConfig](ctx, s.api, fmt.Sprintf("/nodes/%s/qemu/%d/config", node, vmid))
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ContainerConfig 获取容器配置
func (s *ClusterService) ContainerConfig(ctx context.Context, node string, vmid int) (*entity.ContainerConfig, error) {
	cfg, err := pveapi.Get[entity.ContainerConfig](ctx, s.api, fmt.Sprintf("/nodes/%s/lxc/%d/config", node, vmid))
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GuestConfig 按类型获取配置
func (s *ClusterService) GuestConfig(ctx context.Context, kind entity.GuestKind, node string, vmid int) (entity.GuestConfig, error) {
	if kind == entity.GuestKindContainer {
		cfg, err := s.ContainerConfig(ctx, node, vmid)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
	cfg, err := s.VMConfig(ctx, node, vmid)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ContainerInterfaces 获取运行中容器的网络接口
func (s *ClusterService) ContainerInterfaces(ctx context.Context, node string, vmid int) ([]entity.NetworkInterface, error) {
	return pveapi.Get[[]entity.NetworkInterface](ctx, s.api, fmt.Sprintf("/nodes/%s/lxc/%d/interfaces", node, vmid))
}
