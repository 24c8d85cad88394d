package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jimyag/proxmux/internal/proxmux/entity"
	"github.com/jimyag/proxmux/internal/proxmux/interact"
	"github.com/jimyag/proxmux/pkg/idgen"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// dashboardMsg 概览数据
type dashboardMsg struct {
	Owner  uint64
	Seq    uint64
	Nodes  []entity.Node
	Counts entity.ResourceCounts
	Err    error
}

// dashboardView 集群概览：节点状态和资源统计
type dashboardView struct {
	ctx     context.Context
	cluster Cluster
	keys    interact.KeyMap
	owner   uint64

	seq     uint64
	loading bool
	loaded  bool
	nodes   []entity.Node
	counts  entity.ResourceCounts
	err     error
	closed  bool
}

func newDashboardView(ctx context.Context, cluster Cluster) *dashboardView {
	return &dashboardView{
		ctx:     ctx,
		cluster: cluster,
		keys:    interact.DefaultKeyMap(),
		owner:   idgen.GenerateOwnerID(),
	}
}

func (v *dashboardView) Init() tea.Cmd { return v.Refresh() }

func (v *dashboardView) Capturing() bool { return false }

func (v *dashboardView) Close() { v.closed = true }

func (v *dashboardView) Help() []key.Binding { return []key.Binding{v.keys.Refresh} }

// Refresh 重新加载概览
func (v *dashboardView) Refresh() tea.Cmd {
	if v.closed {
		return nil
	}
	v.seq++
	v.loading = true

	ctx, cluster, owner, seq := v.ctx, v.cluster, v.owner, v.seq
	return func() tea.Msg {
		msg := dashboardMsg{Owner: owner, Seq: seq}
		var resources []entity.ResourceSummary
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			nodes, err := cluster.ListNodes(gctx)
			if err != nil {
				return fmt.Errorf("list nodes: %w", err)
			}
			msg.Nodes = nodes
			return nil
		})
		g.Go(func() error {
			res, err := cluster.Resources(gctx)
			if err != nil {
				return fmt.Errorf("list cluster resources: %w", err)
			}
			resources = res
			return nil
		})
		if err := g.Wait(); err != nil {
			msg.Err = err
			return msg
		}
		sort.SliceStable(msg.Nodes, func(i, j int) bool { return msg.Nodes[i].Node < msg.Nodes[j].Node })
		msg.Counts = entity.CountResources(resources)
		return msg
	}
}

func (v *dashboardView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		v.err = nil
		if key.Matches(msg, v.keys.Refresh) {
			return v.Refresh()
		}
	case dashboardMsg:
		if v.closed || msg.Owner != v.owner || msg.Seq != v.seq {
			return nil
		}
		v.loading = false
		if msg.Err != nil {
			zerolog.Ctx(v.ctx).Warn().Err(msg.Err).Msg("Failed to load dashboard")
			v.err = msg.Err
			return nil
		}
		v.loaded = true
		v.nodes = msg.Nodes
		v.counts = msg.Counts
	}
	return nil
}

func (v *dashboardView) View(spin string, _, _ int) string {
	var b strings.Builder
	title := styleTitle.Render("Cluster Overview")
	if v.loading {
		title += " " + spin
	}
	b.WriteString(title + "\n\n")

	if !v.loaded {
		if v.err != nil {
			b.WriteString(styleError.Render(v.err.Error()) + "\n")
		} else {
			b.WriteString(styleDim.Render("Loading...") + "\n")
		}
		return b.String()
	}

	c := v.counts
	summary := []string{
		fmt.Sprintf("Nodes       %d/%d online", c.NodesOnline, c.Nodes),
		fmt.Sprintf("VMs         %d/%d running", c.VMsRunning, c.VMs),
		fmt.Sprintf("Containers  %d/%d running", c.ContainersUp, c.Containers),
		fmt.Sprintf("Storage     %d/%d available", c.StoragesActive, c.Storages),
	}
	b.WriteString(styleBox.Render(strings.Join(summary, "\n")) + "\n\n")

	header := []string{pad("NODE", 12), pad("STATUS", 8), pad("CPU", 14), pad("MEMORY", 21), pad("DISK", 21), pad("UPTIME", 11)}
	b.WriteString(styleHeader.Render(strings.Join(header, " ")) + "\n")
	for _, n := range v.nodes {
		cpu := "-"
		if n.Online() {
			cpu = fmt.Sprintf("%s of %d", formatPercent(n.CPU), n.MaxCPU)
		}
		row := []string{
			pad(n.Node, 12),
			statusStyle(string(n.Status)).Render(pad(string(n.Status), 8)),
			pad(cpu, 14),
			pad(formatUsage(n.Mem, n.MaxMem), 21),
			pad(formatUsage(n.Disk, n.MaxDisk), 21),
			pad(formatUptime(n.Uptime), 11),
		}
		b.WriteString(strings.Join(row, " ") + "\n")
	}

	if v.err != nil {
		b.WriteString("\n" + styleError.Render(v.err.Error()) + "\n")
	}
	return b.String()
}
