package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jimyag/proxmux/internal/proxmux/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestAdapter_Fetch(t *testing.T) {
	t.Parallel()

	a := newGuestAdapter(newFakeCluster(), entity.GuestKindVM)
	guests, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, guests, 2)
	assert.Equal(t, entity.VMID(101), guests[0].VMID)
	assert.Equal(t, entity.VMID(103), guests[1].VMID)
	assert.Equal(t, "pve2/101", a.Key(guests[0]))
}

func TestGuestAdapter_Actions(t *testing.T) {
	t.Parallel()

	running := entity.Guest{VMID: 101, Node: "pve2", Status: entity.GuestStatusRunning}
	stopped := entity.Guest{VMID: 103, Node: "pve1", Status: entity.GuestStatusStopped}

	tests := []struct {
		name            string
		wantDestructive bool
		wantRunning     bool
		wantStopped     bool
	}{
		{name: "start", wantDestructive: false, wantRunning: false, wantStopped: true},
		{name: "shutdown", wantDestructive: true, wantRunning: true, wantStopped: false},
		{name: "stop", wantDestructive: true, wantRunning: true, wantStopped: false},
		{name: "reboot", wantDestructive: true, wantRunning: true, wantStopped: false},
	}

	actions := newGuestAdapter(newFakeCluster(), entity.GuestKindVM).Actions()
	require.Len(t, actions, len(tests))

	for i, tc := range tests {
		i, tc := i, tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := actions[i]
			assert.Equal(t, tc.name, a.Name)
			assert.Equal(t, tc.wantDestructive, a.Destructive)
			assert.Equal(t, tc.wantRunning, a.Available(running))
			assert.Equal(t, tc.wantStopped, a.Available(stopped))
		})
	}
}

func TestGuestAdapter_RunAction(t *testing.T) {
	t.Parallel()

	cluster := newFakeCluster()
	a := newGuestAdapter(cluster, entity.GuestKindContainer)
	g := entity.Guest{VMID: 200, Node: "pve1", Status: entity.GuestStatusStopped}

	upid, err := a.Actions()[0].Run(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, "UPID:pve1:start:200", upid)
	assert.Equal(t, []actionCall{{Kind: entity.GuestKindContainer, Node: "pve1", VMID: 200, Action: entity.GuestActionStart}}, cluster.actionCalls())
}

func TestGuestAdapter_Describe(t *testing.T) {
	t.Parallel()

	a := newGuestAdapter(newFakeCluster(), entity.GuestKindVM)
	details, err := a.Describe(context.Background(), entity.Guest{VMID: 101, Node: "pve2"})
	require.NoError(t, err)

	d, ok := details.(guestDetails)
	require.True(t, ok)
	assert.Equal(t, entity.NetInfo{IP: "10.0.0.5", MAC: "BC:24:11:00:00:02", Bridge: "vmbr0"}, d.Net)
	assert.Equal(t, "prod;web", d.Config.Tags)

	cluster := newFakeCluster()
	cluster.configErr = errors.New("boom")
	_, err = newGuestAdapter(cluster, entity.GuestKindVM).Describe(context.Background(), entity.Guest{VMID: 101})
	assert.Error(t, err)
}

func TestStorageAdapter(t *testing.T) {
	t.Parallel()

	a := &storageAdapter{cluster: newFakeCluster()}
	storages, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, storages, 2)
	assert.Equal(t, "local", a.Key(storages[0]))
	assert.Equal(t, "local-lvm", a.Key(storages[1]))
	assert.Empty(t, a.Actions())
}

func TestGuestInfo(t *testing.T) {
	t.Parallel()

	g := entity.Guest{VMID: 101, Node: "pve2", Status: entity.GuestStatusRunning, Tags: "fallback"}
	onBoot := entity.Flag(false)

	tests := []struct {
		name    string
		details any
		want    map[string]string
		missing []string
	}{
		{
			name:    "without details",
			details: nil,
			want:    map[string]string{"Node": "pve2", "Tags": "fallback"},
			missing: []string{"IP", "Start at boot"},
		},
		{
			name: "with details",
			details: guestDetails{
				Config: entity.CommonConfig{Tags: "a;b", OnBoot: &onBoot, Description: strings.Repeat("x", 150)},
				Net:    entity.NetInfo{IP: "10.0.0.5"},
			},
			want: map[string]string{
				"Tags":          "a, b",
				"Start at boot": "no",
				"IP":            "10.0.0.5",
				"Description":   strings.Repeat("x", maxDescription-1) + "…",
			},
			missing: []string{"MAC", "Bridge", "Lock"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := map[string]string{}
			for _, f := range guestInfo(g, tc.details) {
				got[f[0]] = f[1]
			}
			for k, v := range tc.want {
				assert.Equal(t, v, got[k], k)
			}
			for _, k := range tc.missing {
				assert.NotContains(t, got, k)
			}
		})
	}
}
