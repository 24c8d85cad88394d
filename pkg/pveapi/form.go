package pveapi

import (
	"fmt"
	"net/url"
)

// Form 以 application/x-www-form-urlencoded 发送的请求体
// 所有值都会通过 fmt.Sprint 转成字符串
type Form map[string]any

// Encode 编码为 URL 查询串，键按字母序排列
func (f Form) Encode() string {
	values := make(url.Values, len(f))
	for k, v := range f {
		values.Set(k, fmt.Sprint(v))
	}
	return values.Encode()
}
