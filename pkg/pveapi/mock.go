package pveapi

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// MockClient 是 Requester 的 mock 实现
// 用于测试，不需要真实的 Proxmox 集群
type MockClient struct {
	mock.Mock
}

var _ Requester = (*MockClient)(nil)

// NewMockClient 创建 mock 客户端
func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Do(ctx context.Context, method, path string, body Form) (json.RawMessage, error) {
	args := m.Called(ctx, method, path, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	switch v := args.Get(0).(type) {
	case json.RawMessage:
		return v, args.Error(1)
	case string:
		return json.RawMessage(v), args.Error(1)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return data, args.Error(1)
	}
}

// OnGet 设置 GET 请求的期望
func (m *MockClient) OnGet(path string, data any, err error) *mock.Call {
	return m.On("Do", mock.Anything, "GET", path, Form(nil)).Return(data, err)
}

// OnPost 设置 POST 请求的期望，body 可以是 Form 或 mock.Anything 等 matcher
func (m *MockClient) OnPost(path string, body any, data any, err error) *mock.Call {
	return m.On("Do", mock.Anything, "POST", path, body).Return(data, err)
}
