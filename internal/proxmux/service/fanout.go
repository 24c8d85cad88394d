package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// fanOut 对每个节点并发调用 fetch，等待全部返回后按节点顺序拼接
//
// 任一节点失败则整体失败，返回第一个错误。已经发出的请求不会被取消，
// 所以这里使用不带 context 的 errgroup。
func fanOut[T any](ctx context.Context, nodes []string, fetch func(ctx context.Context, node string) ([]T, error)) ([]T, error) {
	results := make([][]T, len(nodes))

	var g errgroup.Group
	for i, node := range nodes {
		g.Go(func() error {
			items, err := fetch(ctx, node)
			if err != nil {
				return fmt.Errorf("node %s: %w", node, err)
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, items := range results {
		total += len(items)
	}
	merged := make([]T, 0, total)
	for _, items := range results {
		merged = append(merged, items...)
	}
	return merged, nil
}

// targetNodes 指定节点时只查询该节点，否则查询集群中所有节点
func (s *ClusterService) targetNodes(ctx context.Context, node string) ([]string, error) {
	if node != "" {
		return []string{node}, nil
	}
	nodes, err := s.ListNodes(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Node)
	}
	return names, nil
}
