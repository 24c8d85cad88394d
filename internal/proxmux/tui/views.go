package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jimyag/proxmux/internal/proxmux/entity"
	"github.com/jimyag/proxmux/internal/proxmux/interact"
)

// maxDescription 详情页描述的最大显示长度
const maxDescription = 100

func newGuestView(ctx context.Context, cluster Cluster, kind entity.GuestKind) *listView[entity.Guest] {
	return &listView[entity.Guest]{
		machine: interact.New[entity.Guest](ctx, newGuestAdapter(cluster, kind)),
		columns: []column[entity.Guest]{
			{title: "VMID", width: 6, value: func(g entity.Guest) string { return g.VMID.String() }},
			{title: "NAME", width: 22, value: func(g entity.Guest) string { return g.DisplayName() }},
			{title: "NODE", width: 10, value: func(g entity.Guest) string { return g.Node }},
			{
				title: "STATUS", width: 8,
				value: func(g entity.Guest) string { return string(g.Status) },
				style: func(g entity.Guest) lipgloss.Style { return statusStyle(string(g.Status)) },
			},
			{title: "CPU", width: 6, value: func(g entity.Guest) string { return guestCPU(g) }},
			{title: "MEMORY", width: 21, value: func(g entity.Guest) string { return formatUsage(g.Mem, g.MaxMem) }},
			{title: "UPTIME", width: 11, value: func(g entity.Guest) string { return formatUptime(g.Uptime) }},
		},
		name: func(g entity.Guest) string {
			return fmt.Sprintf("%s (%s %d)", g.DisplayName(), g.Kind.Short(), g.VMID)
		},
		info: guestInfo,
	}
}

func guestCPU(g entity.Guest) string {
	if !g.Running() {
		return "-"
	}
	return formatPercent(g.CPU)
}

func guestInfo(g entity.Guest, details any) [][2]string {
	fields := [][2]string{
		{"Node", g.Node},
		{"Status", statusStyle(string(g.Status)).Render(string(g.Status))},
		{"CPU", fmt.Sprintf("%s of %d cores", guestCPU(g), g.CPUs)},
		{"Memory", formatUsage(g.Mem, g.MaxMem)},
		{"Disk", formatUsage(g.Disk, g.MaxDisk)},
		{"Uptime", formatUptime(g.Uptime)},
	}

	d, ok := details.(guestDetails)
	if !ok {
		if g.Tags != "" {
			fields = append(fields, [2]string{"Tags", g.Tags})
		}
		return fields
	}

	cfg := d.Config
	if cfg.OSType != "" {
		fields = append(fields, [2]string{"OS Type", cfg.OSType})
	}
	if tags := firstNonEmpty(cfg.Tags, g.Tags); tags != "" {
		fields = append(fields, [2]string{"Tags", strings.ReplaceAll(tags, ";", ", ")})
	}
	if cfg.OnBoot != nil {
		fields = append(fields, [2]string{"Start at boot", yesNo(bool(*cfg.OnBoot))})
	}
	if cfg.Lock != "" {
		fields = append(fields, [2]string{"Lock", styleWarning.Render(cfg.Lock)})
	}
	if d.Net.IP != "" {
		fields = append(fields, [2]string{"IP", d.Net.IP})
	}
	if d.Net.MAC != "" {
		fields = append(fields, [2]string{"MAC", d.Net.MAC})
	}
	if d.Net.Bridge != "" {
		fields = append(fields, [2]string{"Bridge", d.Net.Bridge})
	}
	if desc := strings.TrimSpace(cfg.Description); desc != "" {
		desc = strings.Join(strings.Fields(desc), " ")
		fields = append(fields, [2]string{"Description", truncate(desc, maxDescription)})
	}
	return fields
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func newStorageView(ctx context.Context, cluster Cluster) *listView[entity.Storage] {
	return &listView[entity.Storage]{
		machine: interact.New[entity.Storage](ctx, &storageAdapter{cluster: cluster}),
		columns: []column[entity.Storage]{
			{title: "ID", width: 14, value: func(s entity.Storage) string { return s.Storage }},
			{title: "TYPE", width: 9, value: func(s entity.Storage) string { return s.Type }},
			{title: "CONTENT", width: 26, value: func(s entity.Storage) string { return s.Content }},
			{
				title: "STATUS", width: 9,
				value: storageStatus,
				style: func(s entity.Storage) lipgloss.Style { return statusStyle(storageStatus(s)) },
			},
			{title: "USAGE", width: 21, value: func(s entity.Storage) string { return formatUsage(s.Used, s.Total) }},
			{title: "USED", width: 6, value: func(s entity.Storage) string {
				return strconv.FormatFloat(s.UsagePercent(), 'f', 1, 64) + "%"
			}},
			{title: "SHARED", width: 6, value: func(s entity.Storage) string { return yesNo(bool(s.Shared)) }},
		},
		name: func(s entity.Storage) string { return s.Storage },
		info: func(s entity.Storage, _ any) [][2]string {
			return [][2]string{
				{"Type", s.Type},
				{"Content", strings.Join(s.ContentKinds(), ", ")},
				{"Status", storageStatus(s)},
				{"Enabled", yesNo(bool(s.Enabled))},
				{"Shared", yesNo(bool(s.Shared))},
				{"Used", formatBytes(s.Used)},
				{"Available", formatBytes(s.Avail)},
				{"Total", formatBytes(s.Total)},
			}
		},
	}
}

// storageStatus 与 /cluster/resources 中的取值保持一致
func storageStatus(s entity.Storage) string {
	if s.Active {
		return "available"
	}
	return "inactive"
}
