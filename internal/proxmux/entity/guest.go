package entity

// GuestKind 计算资源类型，同时也是 API 路径中的资源段
type GuestKind string

const (
	GuestKindVM        GuestKind = "qemu" // 虚拟机
	GuestKindContainer GuestKind = "lxc"  // 容器
)

// Label 返回面向用户的名称
func (k GuestKind) Label() string {
	if k == GuestKindContainer {
		return "Container"
	}
	return "VM"
}

// Short 返回简写
func (k GuestKind) Short() string {
	if k == GuestKindContainer {
		return "CT"
	}
	return "VM"
}

// GuestStatus 计算资源生命周期状态
type GuestStatus string

const (
	GuestStatusRunning GuestStatus = "running"
	GuestStatusStopped GuestStatus = "stopped"
	GuestStatusPaused  GuestStatus = "paused"
)

// GuestAction 电源操作，同时也是 /status/{action} 的路径段
type GuestAction string

const (
	GuestActionStart    GuestAction = "start"
	GuestActionStop     GuestAction = "stop"
	GuestActionShutdown GuestAction = "shutdown"
	GuestActionReboot   GuestAction = "reboot"
)

// Guest 虚拟机或容器
// Node 不由单节点列表接口返回，由聚合客户端按查询的节点写入
type Guest struct {
	VMID     VMID        `json:"vmid"`
	Name     string      `json:"name"`
	Status   GuestStatus `json:"status"`
	Node     string      `json:"node"`
	Kind     GuestKind   `json:"-"`
	CPU      float64     `json:"cpu"`  // CPU 使用率 (0-1)
	CPUs     int         `json:"cpus"` // 分配的 CPU 数
	Mem      int64       `json:"mem"`
	MaxMem   int64       `json:"maxmem"`
	Swap     int64       `json:"swap"`
	MaxSwap  int64       `json:"maxswap"`
	Disk     int64       `json:"disk"`
	MaxDisk  int64       `json:"maxdisk"`
	Uptime   int64       `json:"uptime"`
	Template Flag        `json:"template"`
	Tags     string      `json:"tags"`
}

// Running 是否处于运行状态
func (g Guest) Running() bool {
	return g.Status == GuestStatusRunning
}

// DisplayName 返回名称，没有名称时使用 "VM 100" 形式
func (g Guest) DisplayName() string {
	if g.Name != "" {
		return g.Name
	}
	return g.Kind.Short() + " " + g.VMID.String()
}

// CommonConfig 虚拟机和容器配置的公共部分
type CommonConfig struct {
	Description string `json:"description"`
	Memory      Int    `json:"memory"`
	Cores       Int    `json:"cores"`
	OSType      string `json:"ostype"`
	Net0        string `json:"net0"`
	Net1        string `json:"net1"`
	Tags        string `json:"tags"`
	OnBoot      *Flag  `json:"onboot"`
	Lock        string `json:"lock"`
}

// VMConfig GET /nodes/{node}/qemu/{vmid}/config
type VMConfig struct {
	CommonConfig
	Name    string `json:"name"`
	Sockets Int    `json:"sockets"`
	Boot    string `json:"boot"`
	IDE0    string `json:"ide0"`
	IDE2    string `json:"ide2"`
	SCSI0   string `json:"scsi0"`
	Agent   string `json:"agent"`
}

// ContainerConfig GET /nodes/{node}/lxc/{vmid}/config
type ContainerConfig struct {
	CommonConfig
	Hostname     string `json:"hostname"`
	Swap         Int    `json:"swap"`
	CPULimit     Int    `json:"cpulimit"`
	CPUUnits     Int    `json:"cpuunits"`
	Arch         string `json:"arch"`
	Net2         string `json:"net2"`
	Net3         string `json:"net3"`
	RootFS       string `json:"rootfs"`
	Startup      string `json:"startup"`
	Unprivileged Flag   `json:"unprivileged"`
	Protection   Flag   `json:"protection"`
	Features     string `json:"features"`
	CMode        string `json:"cmode"`
	Template     Flag   `json:"template"`
}

// GuestConfig 详情页使用的配置视图
type GuestConfig interface {
	Common() CommonConfig
}

// Common 实现 GuestConfig
func (c *VMConfig) Common() CommonConfig { return c.CommonConfig }

// Common 实现 GuestConfig
func (c *ContainerConfig) Common() CommonConfig { return c.CommonConfig }
