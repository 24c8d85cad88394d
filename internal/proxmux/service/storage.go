package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jimyag/proxmux/internal/proxmux/entity"
	"github.com/jimyag/proxmux/pkg/pveapi"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ListStorage 列举存储，node 为空时列举所有节点并按存储 ID 去重
//
// 共享存储会被多个节点同时报告，只保留按节点顺序第一次出现的那一条，
// 因此展示的用量来自第一个报告它的节点，不一定是最新或最准确的。
func (s *ClusterService) ListStorage(ctx context.Context, node string) ([]entity.Storage, error) {
	if node != "" {
		return s.nodeStorage(ctx, node)
	}

	nodes, err := s.targetNodes(ctx, "")
	if err != nil {
		return nil, err
	}
	storages, err := fanOut(ctx, nodes, s.nodeStorage)
	if err != nil {
		return nil, err
	}
	return dedupStorage(storages), nil
}

// dedupStorage 按存储 ID 去重，保留第一次出现的条目
func dedupStorage(storages []entity.Storage) []entity.Storage {
	seen := make(map[string]struct{}, len(storages))
	out := make([]entity.Storage, 0, len(storages))
	for _, st := range storages {
		if _, ok := seen[st.Storage]; ok {
			continue
		}
		seen[st.Storage] = struct{}{}
		out = append(out, st)
	}
	return out
}

func (s *ClusterService) nodeStorage(ctx context.Context, node string) ([]entity.Storage, error) {
	return pveapi.Get[[]entity.Storage](ctx, s.api, fmt.Sprintf("/nodes/%s/storage", node))
}

// Templates 列举某个存储上的容器模板
func (s *ClusterService) Templates(ctx context.Context, node, storage string) ([]entity.StorageContent, error) {
	query := url.Values{"content": {entity.ContentTemplate}}
	contents, err := pveapi.Get[[]entity.StorageContent](ctx, s.api,
		fmt.Sprintf("/nodes/%s/storage/%s/content?%s", node, storage, query.Encode()))
	if err != nil {
		return nil, err
	}

	templates := make([]entity.StorageContent, 0, len(contents))
	for _, c := range contents {
		if c.Content == entity.ContentTemplate {
			templates = append(templates, c)
		}
	}
	return templates, nil
}

// ListTemplates 列举节点上所有可用存储中的容器模板
//
// 单个存储查询失败时按没有模板处理，不影响其他存储的结果。
func (s *ClusterService) ListTemplates(ctx context.Context, node string) ([]entity.StorageContent, error) {
	logger := zerolog.Ctx(ctx)

	storages, err := s.nodeStorage(ctx, node)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, st := range storages {
		if st.HasContent(entity.ContentTemplate) && bool(st.Active) {
			candidates = append(candidates, st.Storage)
		}
	}

	results := make([][]entity.StorageContent, len(candidates))
	var g errgroup.Group
	for i, storage := range candidates {
		g.Go(func() error {
			templates, err := s.Templates(ctx, node, storage)
			if err != nil {
				logger.Warn().Err(err).
					Str("node", node).
					Str("storage", storage).
					Msg("Failed to list templates, skipping storage")
				return nil
			}
			results[i] = templates
			return nil
		})
	}
	_ = g.Wait()

	var templates []entity.StorageContent
	for _, r := range results {
		templates = append(templates, r...)
	}
	return templates, nil
}

// TemplateStorages 可以存放容器模板的存储
func (s *ClusterService) TemplateStorages(ctx context.Context, node string) ([]entity.Storage, error) {
	return s.filterStorage(ctx, node, entity.ContentTemplate)
}

// RootfsStorages 可以存放容器根文件系统的存储
func (s *ClusterService) RootfsStorages(ctx context.Context, node string) ([]entity.Storage, error) {
	return s.filterStorage(ctx, node, entity.ContentRootDir)
}

func (s *ClusterService) filterStorage(ctx context.Context, node, content string) ([]entity.Storage, error) {
	storages, err := s.nodeStorage(ctx, node)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Storage, 0, len(storages))
	for _, st := range storages {
		if st.HasContent(content) && bool(st.Active) && bool(st.Enabled) {
			out = append(out, st)
		}
	}
	return out, nil
}

// NetworkBridges 节点上处于活动状态的网桥
func (s *ClusterService) NetworkBridges(ctx context.Context, node string) ([]entity.Bridge, error) {
	networks, err := pveapi.Get[[]entity.Bridge](ctx, s.api, fmt.Sprintf("/nodes/%s/network", node))
	if err != nil {
		return nil, err
	}
	bridges := make([]entity.Bridge, 0, len(networks))
	for _, n := range networks {
		if n.Type == "bridge" && bool(n.Active) {
			bridges = append(bridges, n)
		}
	}
	return bridges, nil
}

// AvailableTemplates 模板仓库中可下载的模板
func (s *ClusterService) AvailableTemplates(ctx context.Context, node string) ([]entity.AvailableTemplate, error) {
	return pveapi.Get[[]entity.AvailableTemplate](ctx, s.api, fmt.Sprintf("/nodes/%s/aplinfo", node))
}

// DownloadTemplate 从模板仓库下载模板到指定存储，返回任务 UPID
func (s *ClusterService) DownloadTemplate(ctx context.Context, node, storage, template string) (string, error) {
	upid, err := pveapi.Post[string](ctx, s.api, fmt.Sprintf("/nodes/%s/aplinfo", node), pveapi.Form{
		"storage":  storage,
		"template": template,
	})
	if err != nil {
		return "", err
	}
	zerolog.Ctx(ctx).Info().
		Str("node", node).
		Str("storage", storage).
		Str("template", template).
		Str("upid", upid).
		Msg("Template download started")
	return upid, nil
}
