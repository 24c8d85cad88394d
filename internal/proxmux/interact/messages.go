package interact

// FetchedMsg 列表获取结果
type FetchedMsg[T any] struct {
	Owner uint64
	Seq   uint64
	Items []T
	Err   error
}

// ActionDoneMsg 操作执行结果
type ActionDoneMsg struct {
	Owner  uint64
	Target string
	Action string
	UPID   string
	Err    error
}

// DescribedMsg 详情补充信息
type DescribedMsg struct {
	Owner   uint64
	Target  string
	Details any
	Err     error
}
