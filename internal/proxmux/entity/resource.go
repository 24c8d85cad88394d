package entity

// ResourceType 集群资源类型
type ResourceType string

const (
	ResourceTypeVM      ResourceType = "qemu"
	ResourceTypeLXC     ResourceType = "lxc"
	ResourceTypeStorage ResourceType = "storage"
	ResourceTypeNode    ResourceType = "node"
)

// Normalize 旧版本接口把虚拟机标记为 "vm"，统一为 "qemu"
func (t ResourceType) Normalize() ResourceType {
	if t == "vm" {
		return ResourceTypeVM
	}
	return t
}

// ResourceSummary GET /cluster/resources 的一行，已经按类型标记
type ResourceSummary struct {
	Type    ResourceType `json:"type"`
	ID      string       `json:"id"`
	Node    string       `json:"node"`
	Status  string       `json:"status"`
	Name    string       `json:"name,omitempty"`
	VMID    VMID         `json:"vmid,omitempty"`
	Storage string       `json:"storage,omitempty"`
	CPU     float64      `json:"cpu,omitempty"`
	MaxCPU  float64      `json:"maxcpu,omitempty"`
	Mem     int64        `json:"mem,omitempty"`
	MaxMem  int64        `json:"maxmem,omitempty"`
	Disk    int64        `json:"disk,omitempty"`
	MaxDisk int64        `json:"maxdisk,omitempty"`
	Uptime  int64        `json:"uptime,omitempty"`
}

// ResourceCounts 按类型统计的资源数量
type ResourceCounts struct {
	Nodes          int
	NodesOnline    int
	VMs            int
	VMsRunning     int
	Containers     int
	ContainersUp   int
	Storages       int
	StoragesActive int
}

// CountResources 统计集群资源
func CountResources(resources []ResourceSummary) ResourceCounts {
	var c ResourceCounts
	for _, r := range resources {
		switch r.Type.Normalize() {
		case ResourceTypeNode:
			c.Nodes++
			if r.Status == string(NodeStatusOnline) {
				c.NodesOnline++
			}
		case ResourceTypeVM:
			c.VMs++
			if r.Status == string(GuestStatusRunning) {
				c.VMsRunning++
			}
		case ResourceTypeLXC:
			c.Containers++
			if r.Status == string(GuestStatusRunning) {
				c.ContainersUp++
			}
		case ResourceTypeStorage:
			c.Storages++
			if r.Status == "available" {
				c.StoragesActive++
			}
		}
	}
	return c
}
