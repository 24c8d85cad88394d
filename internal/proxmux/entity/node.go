package entity

// NodeStatus 节点状态
type NodeStatus string

const (
	NodeStatusOnline  NodeStatus = "online"  // 在线
	NodeStatusOffline NodeStatus = "offline" // 离线
	NodeStatusUnknown NodeStatus = "unknown" // 未知
)

// Node 集群节点，GET /nodes 的一行
type Node struct {
	Node    string     `json:"node"`    // 节点名称
	Status  NodeStatus `json:"status"`  // 在线状态
	CPU     float64    `json:"cpu"`     // CPU 使用率 (0-1)
	MaxCPU  int        `json:"maxcpu"`  // CPU 数量
	Mem     int64      `json:"mem"`     // 已用内存 (bytes)
	MaxMem  int64      `json:"maxmem"`  // 总内存 (bytes)
	Disk    int64      `json:"disk"`    // 已用根磁盘 (bytes)
	MaxDisk int64      `json:"maxdisk"` // 根磁盘容量 (bytes)
	Uptime  int64      `json:"uptime"`  // 运行时间 (秒)
}

// Online 节点是否在线
func (n Node) Online() bool {
	return n.Status == NodeStatusOnline
}

// NodeStatusDetail GET /nodes/{node}/status 返回的节点详情
type NodeStatusDetail struct {
	CPU        float64  `json:"cpu"`
	Uptime     int64    `json:"uptime"`
	LoadAvg    []string `json:"loadavg"`
	KVersion   string   `json:"kversion"`
	PVEVersion string   `json:"pveversion"`
	Memory     struct {
		Total int64 `json:"total"`
		Used  int64 `json:"used"`
		Free  int64 `json:"free"`
	} `json:"memory"`
	RootFS struct {
		Total int64 `json:"total"`
		Used  int64 `json:"used"`
		Avail int64 `json:"avail"`
	} `json:"rootfs"`
	CPUInfo struct {
		Model   string `json:"model"`
		CPUs    int    `json:"cpus"`
		Cores   int    `json:"cores"`
		Sockets int    `json:"sockets"`
	} `json:"cpuinfo"`
}

// Version GET /version 的返回
type Version struct {
	Version string `json:"version"`
	Release string `json:"release"`
	RepoID  string `json:"repoid"`
}
