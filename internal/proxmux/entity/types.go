// Package entity 定义从 Proxmox API 读取的数据模型
//
// 这些模型都是临时读模型：每次聚合调用都会重新构造，只在一次渲染周期内有效，
// 刷新时整体替换，不做合并或修补。
package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Flag Proxmox 的布尔字段，接口可能返回 0/1、"0"/"1"、true/false 或空串
type Flag bool

// UnmarshalJSON 兼容 Proxmox 的多种布尔编码
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", `""`, "0", `"0"`, "false", `"false"`:
		*f = false
		return nil
	case "1", `"1"`, "true", `"true"`:
		*f = true
		return nil
	}
	return fmt.Errorf("invalid flag value: %s", data)
}

// Int Proxmox 的整数字段，接口可能返回数字或数字字符串
type Int int64

// UnmarshalJSON 兼容数字和数字字符串
func (i *Int) UnmarshalJSON(data []byte) error {
	n, err := parseFlexibleInt(data)
	if err != nil {
		return err
	}
	*i = Int(n)
	return nil
}

// VMID 集群内唯一的虚拟机/容器编号
// LXC 列表接口会把 vmid 作为字符串返回，QEMU 列表接口返回数字
type VMID int

// UnmarshalJSON 兼容数字和数字字符串
func (v *VMID) UnmarshalJSON(data []byte) error {
	n, err := parseFlexibleInt(data)
	if err != nil {
		return err
	}
	*v = VMID(n)
	return nil
}

// String 返回十进制表示
func (v VMID) String() string {
	return strconv.Itoa(int(v))
}

func parseFlexibleInt(data []byte) (int64, error) {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return 0, nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, err
		}
		if s == "" {
			return 0, nil
		}
		return strconv.ParseInt(s, 10, 64)
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return 0, err
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
