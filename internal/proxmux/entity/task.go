package entity

// 任务状态接口中 status 字段的取值
const (
	TaskStatusRunning = "running"
	TaskStatusStopped = "stopped"
	TaskExitOK        = "OK"
)

// Task 异步操作，由 UPID 标识
//
// 任务列表接口中 status 是结束状态（缺失表示仍在运行）；
// 任务状态接口中 status 为 running/stopped，结束状态在 exitstatus 中
type Task struct {
	UPID       string `json:"upid"`
	Node       string `json:"node"`
	PID        int    `json:"pid"`
	StartTime  int64  `json:"starttime"`
	EndTime    int64  `json:"endtime,omitempty"`
	Type       string `json:"type"`
	ID         string `json:"id,omitempty"`
	User       string `json:"user"`
	Status     string `json:"status,omitempty"`
	ExitStatus string `json:"exitstatus,omitempty"`
}

// Done 任务是否已经结束
// 一旦观察到结束状态就应停止轮询
func (t Task) Done() bool {
	switch t.Status {
	case "", TaskStatusRunning:
		return false
	default:
		return true
	}
}

// Result 返回结束状态，运行中返回空串
func (t Task) Result() string {
	if !t.Done() {
		return ""
	}
	if t.ExitStatus != "" {
		return t.ExitStatus
	}
	if t.Status == TaskStatusStopped {
		return ""
	}
	return t.Status
}

// Succeeded 任务是否成功结束
func (t Task) Succeeded() bool {
	return t.Done() && t.Result() == TaskExitOK
}
