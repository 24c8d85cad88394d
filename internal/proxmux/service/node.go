package service

import (
	"context"
	"fmt"

	"github.com/jimyag/proxmux/internal/proxmux/entity"
	"github.com/jimyag/proxmux/pkg/pveapi"
)

// ListNodes 列举集群节点
func (s *ClusterService) ListNodes(ctx context.Context) ([]entity.Node, error) {
	return pveapi.Get[[]entity.Node](ctx, s.api, "/nodes")
}

// NodeStatus 获取节点详情
func (s *ClusterService) NodeStatus(ctx context.Context, node string) (*entity.NodeStatusDetail, error) {
	status, err := pveapi.Get[entity.NodeStatusDetail](ctx, s.api, fmt.Sprintf("/nodes/%s/status", node))
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// ListTasks 列举节点最近的任务
func (s *ClusterService) ListTasks(ctx context.Context, node string) ([]entity.Task, error) {
	tasks, err := pveapi.Get[[]entity.Task](ctx, s.api, fmt.Sprintf("/nodes/%s/tasks", node))
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].Node == "" {
			tasks[i].Node = node
		}
	}
	return tasks, nil
}
