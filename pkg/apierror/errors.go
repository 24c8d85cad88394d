package apierror

import (
	"fmt"
	"net/http"
)

// 错误代码
const (
	CodeAuthentication       = "AuthenticationFailed"
	CodeUnsupportedOperation = "UnsupportedOperation"
	CodeAPI                  = "APIError"
	CodeNotFound             = "NotFound"
	CodeActionFailed         = "ActionFailed"
	CodeNotInitialized       = "NotInitialized"
)

// authenticationHint 401 时提示用户检查的 token 配置项
const authenticationHint = "Authentication failed (401). Check your API token:\n" +
	"  - User format: user@realm (e.g., root@pam)\n" +
	"  - Token ID: just the name (e.g., proxmux), without the user prefix\n" +
	"  - Ensure \"Privilege Separation\" is unchecked for the token in Proxmox, " +
	"or grant the token its own permissions"

var (
	// ErrAuthentication API token 无效或权限不足
	ErrAuthentication = &Error{
		Code:       CodeAuthentication,
		Message:    authenticationHint,
		HTTPStatus: http.StatusUnauthorized,
	}

	// ErrUnsupportedOperation 服务端不支持该操作
	ErrUnsupportedOperation = &Error{
		Code:       CodeUnsupportedOperation,
		Message:    "Operation not supported (501)",
		HTTPStatus: http.StatusNotImplemented,
	}

	// ErrAPI 其他非 2xx 响应
	ErrAPI = &Error{
		Code:    CodeAPI,
		Message: "Proxmox API error",
	}

	// ErrNotFound 资源不在节点列表中
	ErrNotFound = &Error{
		Code:       CodeNotFound,
		Message:    "The requested resource was not found",
		HTTPStatus: http.StatusNotFound,
	}

	// ErrActionFailed 变更类操作失败，由交互状态机捕获并展示
	ErrActionFailed = &Error{
		Code:    CodeActionFailed,
		Message: "Action failed",
	}

	// ErrNotInitialized 客户端尚未初始化
	ErrNotInitialized = &Error{
		Code:    CodeNotInitialized,
		Message: "Proxmox client not initialized",
	}
)

// FromStatus 根据 HTTP 状态码构造对应的错误
// 401 -> ErrAuthentication，501 -> ErrUnsupportedOperation，其他 -> ErrAPI
func FromStatus(status int, body string) *Error {
	switch status {
	case http.StatusUnauthorized:
		return NewErrorWithStatus(CodeAuthentication, authenticationHint, status, body)
	case http.StatusNotImplemented:
		return NewErrorWithStatus(CodeUnsupportedOperation, ErrUnsupportedOperation.Message, status, body)
	default:
		return NewErrorWithStatus(CodeAPI, fmt.Sprintf("Proxmox API error: %d - %s", status, body), status, body)
	}
}

// NotFound 构造资源不存在错误
func NotFound(format string, args ...any) *Error {
	return WrapError(ErrNotFound, fmt.Sprintf(format, args...), nil)
}

// ActionFailed 包装变更类操作的失败
func ActionFailed(action string, rawError error) *Error {
	return WrapError(ErrActionFailed, fmt.Sprintf("%s failed", action), rawError)
}
