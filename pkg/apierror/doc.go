// Package apierror 提供 Proxmox API 调用的错误类型，用于所有组件的统一错误处理
//
// 错误分类：
//
//   - ErrAuthentication: 401，API token 无效，消息中包含排查建议
//   - ErrUnsupportedOperation: 501，服务端拒绝该操作
//   - ErrAPI: 其他非 2xx 响应，携带状态码和原始响应体
//   - ErrNotFound: 资源不在节点的列表中
//   - ErrActionFailed: 变更类操作失败，在交互状态机边界被捕获
//   - ErrNotInitialized: 客户端尚未初始化
//
// 使用示例：
//
//	// 根据 HTTP 状态码构造错误
//	err := apierror.FromStatus(resp.StatusCode, string(body))
//
//	// 判断错误类型
//	if errors.Is(err, apierror.ErrAuthentication) {
//	    // 提示用户检查 token
//	}
//
//	// 获取状态码和响应体
//	var apiErr *apierror.Error
//	if errors.As(err, &apiErr) {
//	    fmt.Println(apiErr.HTTPStatus, apiErr.Body)
//	}
package apierror
