package pveapi

import (
	"context"
	"encoding/json"
)

// Requester 定义 Proxmox API 传输层接口
// 用于抽象 HTTP 调用，便于测试和 mock
type Requester interface {
	// Do 发送请求并返回解开响应信封后的 data 字段
	// body 为 nil 时不发送请求体
	Do(ctx context.Context, method, path string, body Form) (json.RawMessage, error)
}
