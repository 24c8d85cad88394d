package entity

import "strings"

// 存储内容类型
const (
	ContentTemplate = "vztmpl"  // 容器模板
	ContentRootDir  = "rootdir" // 容器根文件系统
	ContentImages   = "images"  // 虚拟机磁盘
	ContentISO      = "iso"     // ISO 镜像
	ContentBackup   = "backup"  // 备份
)

// Storage 存储，GET /nodes/{node}/storage 的一行
// 共享存储会被多个节点同时报告，聚合时按 Storage 去重
type Storage struct {
	Storage string `json:"storage"` // 存储 ID
	Type    string `json:"type"`    // 后端类型 (dir/lvmthin/zfspool/nfs/...)
	Content string `json:"content"` // 逗号分隔的内容类型
	Active  Flag   `json:"active"`
	Enabled Flag   `json:"enabled"`
	Shared  Flag   `json:"shared"`
	Used    int64  `json:"used"`
	Avail   int64  `json:"avail"`
	Total   int64  `json:"total"`
}

// ContentKinds 返回内容类型集合
func (s Storage) ContentKinds() []string {
	if s.Content == "" {
		return nil
	}
	parts := strings.Split(s.Content, ",")
	kinds := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kinds = append(kinds, p)
		}
	}
	return kinds
}

// HasContent 是否可以存放指定类型的内容
func (s Storage) HasContent(kind string) bool {
	for _, k := range s.ContentKinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// UsagePercent 已用百分比
func (s Storage) UsagePercent() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Used) / float64(s.Total) * 100
}

// StorageContent 存储中的一个卷
type StorageContent struct {
	Volid   string `json:"volid"` // 例如 local:vztmpl/debian-12-standard_12.2-1_amd64.tar.zst
	Format  string `json:"format"`
	Size    int64  `json:"size"`
	CTime   int64  `json:"ctime"`
	Content string `json:"content"`
}

// FileName 返回 volid 中 "/" 之后的文件名
func (c StorageContent) FileName() string {
	if i := strings.LastIndex(c.Volid, "/"); i >= 0 {
		return c.Volid[i+1:]
	}
	return c.Volid
}

// AvailableTemplate 模板仓库中可下载的模板 (aplinfo)
type AvailableTemplate struct {
	Template    string `json:"template"`
	Type        string `json:"type"`
	Package     string `json:"package"`
	Version     string `json:"version"`
	OS          string `json:"os"`
	Section     string `json:"section"`
	Headline    string `json:"headline"`
	Description string `json:"description,omitempty"`
	Maintainer  string `json:"maintainer,omitempty"`
	Location    string `json:"location,omitempty"`
	MD5Sum      string `json:"md5sum,omitempty"`
	SHA512Sum   string `json:"sha512sum,omitempty"`
	InfoPage    string `json:"infopage,omitempty"`
}
