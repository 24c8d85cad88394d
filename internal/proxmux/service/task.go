package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jimyag/proxmux/internal/proxmux/entity"
	"github.com/jimyag/proxmux/pkg/apierror"
	"github.com/jimyag/proxmux/pkg/pveapi"
)

// TaskTracker 查询异步任务状态
//
// 不持有定时器，也不做重试：轮询节奏由调用方决定，
// 查询失败直接返回给调用方，由调用方决定是否继续。
type TaskTracker struct {
	api pveapi.Requester
}

// NewTaskTracker 创建任务状态查询器
func NewTaskTracker(api pveapi.Requester) (*TaskTracker, error) {
	if api == nil {
		return nil, apierror.ErrNotInitialized
	}
	return &TaskTracker{api: api}, nil
}

// Status 获取任务当前状态，task.Done() 为 true 时应停止轮询
func (t *TaskTracker) Status(ctx context.Context, node, upid string) (*entity.Task, error) {
	task, err := pveapi.Get[entity.Task](ctx, t.api,
		fmt.Sprintf("/nodes/%s/tasks/%s/status", node, escapeTaskID(upid)))
	if err != nil {
		return nil, err
	}
	if task.UPID == "" {
		task.UPID = upid
	}
	if task.Node == "" {
		task.Node = node
	}
	return &task, nil
}

// escapeTaskID 按 URI 组件完整转义 UPID，冒号和 @ 也编码
func escapeTaskID(upid string) string {
	return strings.ReplaceAll(url.QueryEscape(upid), "+", "%20")
}
