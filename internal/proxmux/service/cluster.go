package service

import (
	"context"
	"fmt"

	"github.com/jimyag/proxmux/internal/proxmux/entity"
	"github.com/jimyag/proxmux/pkg/apierror"
	"github.com/jimyag/proxmux/pkg/pveapi"
	"github.com/rs/zerolog"
)

// ClusterService 集群聚合客户端
//
// 把按节点划分的 REST 接口聚合为集群视图。只依赖传输层，
// 调用之间不保存任何可变状态，可以被多个界面组件同时使用。
type ClusterService struct {
	api pveapi.Requester
}

// NewClusterService 创建聚合客户端
func NewClusterService(api pveapi.Requester) (*ClusterService, error) {
	if api == nil {
		return nil, apierror.ErrNotInitialized
	}
	return &ClusterService{api: api}, nil
}

// TestConnection 检查 API 是否可达且凭据有效
func (s *ClusterService) TestConnection(ctx context.Context) bool {
	if _, err := s.Version(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Connection test failed")
		return false
	}
	return true
}

// Version 获取 Proxmox 版本
func (s *ClusterService) Version(ctx context.Context) (*entity.Version, error) {
	v, err := pveapi.Get[entity.Version](ctx, s.api, "/version")
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Resources 获取集群资源汇总
// 接口返回已经按类型标记的扁平列表，不需要按节点展开
func (s *ClusterService) Resources(ctx context.Context) ([]entity.ResourceSummary, error) {
	resources, err := pveapi.Get[[]entity.ResourceSummary](ctx, s.api, "/cluster/resources")
	if err != nil {
		return nil, err
	}
	for i := range resources {
		resources[i].Type = resources[i].Type.Normalize()
	}
	return resources, nil
}

// NextVMID 获取下一个空闲的 VMID
//
// 这不是分配操作：在调用方创建容器之前，其他客户端可能拿到同一个编号，
// 此时创建请求会被服务端拒绝。
func (s *ClusterService) NextVMID(ctx context.Context) (int, error) {
	id, err := pveapi.Get[entity.VMID](ctx, s.api, "/cluster/nextid")
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid next vmid: %d", id)
	}
	return int(id), nil
}
