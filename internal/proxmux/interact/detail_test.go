package interact

import (
	"context"
	"errors"
	"testing"

	"github.com/jimyag/proxmux/pkg/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// describingAdapter 额外提供详情补充信息
type describingAdapter struct {
	*fakeAdapter
	details     map[string]string
	describeErr error
	describes   int
}

func (a *describingAdapter) Describe(_ context.Context, g fakeGuest) (any, error) {
	a.describes++
	if a.describeErr != nil {
		return nil, a.describeErr
	}
	return a.details, nil
}

func TestMachine_DetailNavigation(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{lists: [][]fakeGuest{{{ID: 100, Status: "running"}, {ID: 101, Status: "stopped"}}}}
	m := loaded(t, adapter)

	assert.Nil(t, press(m, "enter"))
	snap := m.Snapshot()
	assert.Equal(t, ModeDetail, snap.Mode)
	assert.True(t, m.Capturing())
	require.NotNil(t, snap.Detail)
	assert.Equal(t, 100, snap.Detail.Item.ID)
	assert.True(t, snap.Detail.DetailsLoaded)

	// 运行中只能 stop/reboot
	names := make([]string, 0, len(snap.Detail.Actions))
	for _, a := range snap.Detail.Actions {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"stop", "reboot"}, names)

	press(m, "k")
	assert.Equal(t, 1, m.Snapshot().Detail.Cursor)
	press(m, "j")
	assert.Equal(t, 0, m.Snapshot().Detail.Cursor)

	// 列表快捷键在详情页中不生效
	assert.Nil(t, press(m, "x"))
	assert.Empty(t, adapter.calls)

	drain(m, press(m, "esc"))
	assert.Equal(t, ModeIdle, m.Mode())
	assert.Nil(t, m.Snapshot().Detail)
	assert.Equal(t, 2, adapter.fetches)
}

func TestMachine_DetailDestructiveConfirm(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name        string
		resolve     string
		expectCalls int
		expectMode  Mode
	}{
		{name: "confirm returns to list", resolve: "y", expectCalls: 1, expectMode: ModeIdle},
		{name: "cancel stays in detail", resolve: "n", expectCalls: 0, expectMode: ModeDetail},
		{name: "q cancels instead of leaving", resolve: "q", expectCalls: 0, expectMode: ModeDetail},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			adapter := &fakeAdapter{lists: [][]fakeGuest{{{ID: 100, Status: "running"}}}}
			m := loaded(t, adapter)

			press(m, "enter", "j")
			assert.Nil(t, press(m, "enter"))
			require.True(t, m.Snapshot().Detail.Confirming)
			assert.Empty(t, adapter.calls)

			drain(m, press(m, tc.resolve))
			assert.Equal(t, tc.expectCalls, adapter.count("reboot"))
			assert.Equal(t, tc.expectMode, m.Mode())
			if tc.expectCalls == 1 {
				assert.Equal(t, 2, adapter.fetches)
				return
			}
			assert.False(t, m.Snapshot().Detail.Confirming)
			assert.Equal(t, 1, adapter.fetches)
		})
	}
}

func TestMachine_DetailNonDestructive(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{lists: [][]fakeGuest{{{ID: 101, Status: "stopped"}}}}
	m := loaded(t, adapter)

	press(m, "enter")
	cmd := press(m, "enter")
	require.NotNil(t, cmd)
	assert.True(t, m.Snapshot().Detail.Loading)

	// 执行中的按键被丢弃
	assert.Nil(t, press(m, "enter"))
	assert.Nil(t, press(m, "esc"))
	assert.Equal(t, ModeDetail, m.Mode())

	drain(m, cmd)
	assert.Equal(t, []actionCall{{Action: "start", ID: 101}}, adapter.calls)
	assert.Equal(t, ModeIdle, m.Mode())
	assert.Equal(t, 2, adapter.fetches)
}

func TestMachine_DetailActionFailure(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{
		lists:     [][]fakeGuest{{{ID: 100, Status: "running"}}},
		actionErr: errors.New("connection reset"),
	}
	m := loaded(t, adapter)

	press(m, "enter", "enter")
	drain(m, press(m, "y"))

	snap := m.Snapshot()
	assert.Equal(t, ModeDetail, snap.Mode)
	assert.False(t, snap.Detail.Loading)
	assert.ErrorIs(t, snap.Err, apierror.ErrActionFailed)
	assert.Contains(t, snap.Err.Error(), "stop failed")
	assert.Equal(t, 1, adapter.fetches)
}

func TestMachine_DetailDescribe(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name          string
		describeErr   error
		expectDetails any
	}{
		{name: "details loaded", expectDetails: map[string]string{"onboot": "1"}},
		{name: "failure is swallowed", describeErr: apierror.FromStatus(403, "permission denied"), expectDetails: nil},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			adapter := &describingAdapter{
				fakeAdapter: &fakeAdapter{lists: [][]fakeGuest{{{ID: 100, Status: "running"}}}},
				details:     map[string]string{"onboot": "1"},
				describeErr: tc.describeErr,
			}
			m := New[fakeGuest](context.Background(), adapter)
			drain(m, m.Init())

			cmd := press(m, "enter")
			require.NotNil(t, cmd)
			assert.False(t, m.Snapshot().Detail.DetailsLoaded)

			drain(m, cmd)
			snap := m.Snapshot()
			assert.Equal(t, 1, adapter.describes)
			assert.True(t, snap.Detail.DetailsLoaded)
			assert.Equal(t, tc.expectDetails, snap.Detail.Details)
			assert.NoError(t, snap.Err)
			assert.Equal(t, ModeDetail, snap.Mode)
		})
	}
}

func TestMachine_DescribeAfterLeavingIsDiscarded(t *testing.T) {
	t.Parallel()

	adapter := &describingAdapter{
		fakeAdapter: &fakeAdapter{lists: [][]fakeGuest{{{ID: 100, Status: "running"}}}},
		details:     map[string]string{"onboot": "1"},
	}
	m := New[fakeGuest](context.Background(), adapter)
	drain(m, m.Init())

	describe := press(m, "enter")
	require.NotNil(t, describe)
	drain(m, press(m, "esc"))
	require.Equal(t, ModeIdle, m.Mode())

	assert.Nil(t, m.Update(describe()))
	assert.Nil(t, m.Snapshot().Detail)
}
