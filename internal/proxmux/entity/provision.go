package entity

import (
	"fmt"
	"strings"
)

// IP 地址分配方式
const (
	IPModeDHCP   = "dhcp"
	IPModeStatic = "static"
	IPModeAuto   = "auto" // 仅 IPv6，SLAAC
	IPModeNone   = "none"
)

// ProvisioningConfig 创建容器向导累积的配置
//
// 指针字段为 nil 表示用户没有设置，提交时会被完全省略而不是发送空值；
// 布尔值只在提交时才编码为 0/1
type ProvisioningConfig struct {
	VMID          int
	Hostname      string
	OSTemplate    string // 例如 local:vztmpl/debian-12-standard_12.2-1_amd64.tar.zst
	RootFS        string // 格式：storage:size，例如 local-lvm:8
	Password      string
	SSHPublicKeys string
	Cores         *int
	Memory        *int // MiB
	Swap          *int // MiB
	Net0          string
	Nameserver    string
	SearchDomain  string
	Features      string // 例如 nesting=1
	Unprivileged  *bool
	Start         *bool
	OnBoot        *bool
}

// RootFSSpec 构造 storage:size 形式的根文件系统描述，size 单位 GiB
func RootFSSpec(storage string, sizeGB int) string {
	return fmt.Sprintf("%s:%d", storage, sizeGB)
}

// NetworkSpec 向导中的网络配置
type NetworkSpec struct {
	Name     string // 容器内接口名，默认 eth0
	Bridge   string
	IPMode   string // dhcp/static
	IP       string // CIDR，IPMode 为 static 时使用
	Gateway  string
	IP6Mode  string // auto/dhcp/static/none
	IP6      string
	Gateway6 string
	Firewall bool
}

// String 编码为 net0 配置串
func (n NetworkSpec) String() string {
	name := n.Name
	if name == "" {
		name = "eth0"
	}
	parts := []string{"name=" + name, "bridge=" + n.Bridge}

	if n.IPMode == IPModeStatic && n.IP != "" {
		parts = append(parts, "ip="+n.IP)
		if n.Gateway != "" {
			parts = append(parts, "gw="+n.Gateway)
		}
	} else {
		parts = append(parts, "ip=dhcp")
	}

	switch n.IP6Mode {
	case IPModeAuto, IPModeDHCP:
		parts = append(parts, "ip6="+n.IP6Mode)
	case IPModeStatic:
		if n.IP6 != "" {
			parts = append(parts, "ip6="+n.IP6)
			if n.Gateway6 != "" {
				parts = append(parts, "gw6="+n.Gateway6)
			}
		}
	}

	if n.Firewall {
		parts = append(parts, "firewall=1")
	}
	return strings.Join(parts, ",")
}
