package entity

import (
	"regexp"
	"strings"
)

var macPattern = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)

// NetInfo 从 netX 配置串中解析出的网络信息
type NetInfo struct {
	IP     string
	MAC    string
	Bridge string
}

// Empty 是否没有解析出任何信息
func (n NetInfo) Empty() bool {
	return n.IP == "" && n.MAC == "" && n.Bridge == ""
}

// ParseNetInfo 解析 netX 配置串
// 虚拟机形如 "virtio=BC:24:11:00:00:01,bridge=vmbr0"，
// 容器形如 "name=eth0,bridge=vmbr0,hwaddr=BC:24:11:00:00:02,ip=10.0.0.5/24"
func ParseNetInfo(netConfig string) NetInfo {
	var info NetInfo
	if netConfig == "" {
		return info
	}
	for _, part := range strings.Split(netConfig, ",") {
		key, value, hasValue := strings.Cut(part, "=")
		if !hasValue {
			if macPattern.MatchString(part) {
				info.MAC = part
			}
			continue
		}
		switch {
		case key == "ip":
			info.IP, _, _ = strings.Cut(value, "/")
		case key == "bridge":
			info.Bridge = value
		case macPattern.MatchString(value):
			info.MAC = value
		}
	}
	return info
}

// NetworkInterface 容器内的网络接口
type NetworkInterface struct {
	Name   string `json:"name"`
	HWAddr string `json:"hwaddr,omitempty"`
	Inet   string `json:"inet,omitempty"`
	Inet6  string `json:"inet6,omitempty"`
}

// Bridge 节点网络配置中的一项，GET /nodes/{node}/network
type Bridge struct {
	Iface  string `json:"iface"`
	Type   string `json:"type"`
	Active Flag   `json:"active"`
}
