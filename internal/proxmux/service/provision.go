package service

import (
	"context"
	"fmt"

	"github.com/jimyag/proxmux/internal/proxmux/entity"
	"github.com/jimyag/proxmux/pkg/pveapi"
	"github.com/rs/zerolog"
)

// CreateContainer 创建容器，返回任务 UPID
func (s *ClusterService) CreateContainer(ctx context.Context, node string, cfg *entity.ProvisioningConfig) (string, error) {
	logger := zerolog.Ctx(ctx)
	if cfg == nil {
		return "", fmt.Errorf("create container on %s: nil config", node)
	}

	upid, err := pveapi.Post[string](ctx, s.api, fmt.Sprintf("/nodes/%s/lxc", node), ProvisionForm(cfg))
	if err != nil {
		logger.Error().Err(err).
			Str("node", node).
			Int("vmid", cfg.VMID).
			Str("hostname", cfg.Hostname).
			Msg("Failed to create container")
		return "", err
	}

	logger.Info().
		Str("node", node).
		Int("vmid", cfg.VMID).
		Str("hostname", cfg.Hostname).
		Str("upid", upid).
		Msg("Container creation started")
	return upid, nil
}

// ProvisionForm 把创建配置编码为请求表单
//
// 只包含用户设置过的字段，未设置的可选字段完全省略；
// 服务端对缺失字段和空值的处理不同。布尔值在这里才编码为 0/1。
func ProvisionForm(cfg *entity.ProvisioningConfig) pveapi.Form {
	form := pveapi.Form{
		"vmid":       cfg.VMID,
		"hostname":   cfg.Hostname,
		"ostemplate": cfg.OSTemplate,
		"rootfs":     cfg.RootFS,
	}

	setString := func(key, value string) {
		if value != "" {
			form[key] = value
		}
	}
	setInt := func(key string, value *int) {
		if value != nil {
			form[key] = *value
		}
	}
	setBool := func(key string, value *bool) {
		if value != nil {
			form[key] = boolInt(*value)
		}
	}

	setString("password", cfg.Password)
	setString("ssh-public-keys", cfg.SSHPublicKeys)
	setInt("cores", cfg.Cores)
	setInt("memory", cfg.Memory)
	setInt("swap", cfg.Swap)
	setString("net0", cfg.Net0)
	setString("nameserver", cfg.Nameserver)
	setString("searchdomain", cfg.SearchDomain)
	setBool("unprivileged", cfg.Unprivileged)
	setBool("start", cfg.Start)
	setString("features", cfg.Features)
	setBool("onboot", cfg.OnBoot)
	return form
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
