package service

import (
	"context"
	"testing"

	"github.com/jimyag/proxmux/internal/proxmux/entity"
	"github.com/jimyag/proxmux/pkg/apierror"
	"github.com/jimyag/proxmux/pkg/pveapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestClusterService_TestConnection(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name   string
		err    error
		expect bool
	}{
		{name: "reachable", expect: true},
		{name: "bad token", err: apierror.FromStatus(401, ""), expect: false},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, api := newTestService(t)
			api.OnGet("/version", map[string]any{"version": "8.2.4", "release": "8.2"}, tc.err)

			assert.Equal(t, tc.expect, svc.TestConnection(context.Background()))
			api.AssertExpectations(t)
		})
	}
}

func TestClusterService_Version(t *testing.T) {
	t.Parallel()

	svc, api := newTestService(t)
	api.OnGet("/version", map[string]any{"version": "8.2.4", "release": "8.2", "repoid": "faa83925"}, nil)

	v, err := svc.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &entity.Version{Version: "8.2.4", Release: "8.2", RepoID: "faa83925"}, v)
}

func TestClusterService_Resources(t *testing.T) {
	t.Parallel()

	svc, api := newTestService(t)
	api.OnGet("/cluster/resources", []map[string]any{
		{"type": "node", "id": "node/pve1", "node": "pve1", "status": "online"},
		{"type": "vm", "id": "qemu/100", "node": "pve1", "status": "running", "vmid": 100},
		{"type": "lxc", "id": "lxc/200", "node": "pve1", "status": "stopped", "vmid": "200"},
		{"type": "storage", "id": "storage/pve1/local", "node": "pve1", "status": "available", "storage": "local"},
	}, nil)

	resources, err := svc.Resources(context.Background())
	require.NoError(t, err)
	require.Len(t, resources, 4)
	assert.Equal(t, entity.ResourceTypeVM, resources[1].Type)
	assert.Equal(t, entity.VMID(200), resources[2].VMID)

	counts := entity.CountResources(resources)
	assert.Equal(t, 1, counts.NodesOnline)
	assert.Equal(t, 1, counts.VMsRunning)
	assert.Equal(t, 1, counts.Containers)
	assert.Equal(t, 0, counts.ContainersUp)
	assert.Equal(t, 1, counts.StoragesActive)

	// 只有一次集群级调用，不按节点展开
	api.AssertNumberOfCalls(t, "Do", 1)
}

func TestClusterService_NextVMID(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name      string
		data      any
		err       error
		expect    int
		expectErr bool
	}{
		{name: "string payload", data: `"105"`, expect: 105},
		{name: "numeric payload", data: 106, expect: 106},
		{name: "not a number", data: `"abc"`, expectErr: true},
		{name: "zero", data: `"0"`, expectErr: true},
		{name: "api error", err: apierror.FromStatus(500, "boom"), expectErr: true},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, api := newTestService(t)
			api.OnGet("/cluster/nextid", tc.data, tc.err)

			id, err := svc.NextVMID(context.Background())
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, id)
		})
	}
}

// 获取空闲 VMID 和创建容器之间没有原子性：两个调用方可能拿到同一个编号，
// 后提交的一方由服务端拒绝，错误原样返回
func TestClusterService_NextVMIDRace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, api := newTestService(t)
	api.OnGet("/cluster/nextid", `"105"`, nil).Twice()

	first, err := svc.NextVMID(ctx)
	require.NoError(t, err)
	second, err := svc.NextVMID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	conflict := apierror.FromStatus(500, "CT 105 already exists on node 'pve1'")
	api.OnPost("/nodes/pve1/lxc", mock.MatchedBy(func(f pveapi.Form) bool {
		return f["vmid"] == 105 && f["hostname"] == "a"
	}), `"UPID:pve1:1:vzcreate:105"`, nil).Once()
	api.OnPost("/nodes/pve1/lxc", mock.MatchedBy(func(f pveapi.Form) bool {
		return f["vmid"] == 105 && f["hostname"] == "b"
	}), nil, conflict).Once()

	upid, err := svc.CreateContainer(ctx, "pve1", &entity.ProvisioningConfig{VMID: first, Hostname: "a"})
	require.NoError(t, err)
	assert.NotEmpty(t, upid)

	_, err = svc.CreateContainer(ctx, "pve1", &entity.ProvisioningConfig{VMID: second, Hostname: "b"})
	assert.ErrorIs(t, err, apierror.ErrAPI)
	api.AssertExpectations(t)
}

func TestClusterService_Nodes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, api := newTestService(t)
	api.OnGet("/nodes", []map[string]any{
		{"node": "pve1", "status": "online", "cpu": 0.25, "maxcpu": 8, "mem": 1024, "maxmem": 4096},
		{"node": "pve2", "status": "offline"},
	}, nil)
	api.OnGet("/nodes/pve1/status", map[string]any{
		"cpu": 0.1, "pveversion": "pve-manager/8.2.4", "memory": map[string]any{"total": 4096, "used": 1024},
	}, nil)
	api.OnGet("/nodes/pve1/tasks", []map[string]any{
		{"upid": "UPID:pve1:1", "type": "vzstart", "user": "root@pam", "status": "OK"},
		{"upid": "UPID:pve1:2", "type": "vzcreate", "user": "root@pam"},
	}, nil)

	nodes, err := svc.ListNodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.True(t, nodes[0].Online())
	assert.False(t, nodes[1].Online())

	status, err := svc.NodeStatus(ctx, "pve1")
	require.NoError(t, err)
	assert.Equal(t, int64(4096), status.Memory.Total)

	tasks, err := svc.ListTasks(ctx, "pve1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "pve1", tasks[0].Node)
	assert.True(t, tasks[0].Done())
	assert.False(t, tasks[1].Done())
}
