// Package pveapi 提供 Proxmox VE JSON API 的传输层
//
// 传输层只关心：
//   - 构造 /api2/json 下的完整 URL 和 PVEAPIToken 认证头
//   - 有请求体时以表单编码发送，所有值转为字符串
//   - 容忍自签名证书
//   - 把非 2xx 响应归一化为 apierror（401/501/其他）
//   - 解开 {"data": ...} 信封
//
// 使用示例：
//
//	client := pveapi.New(pveapi.Config{
//	    Host:               "https://pve.example.com:8006",
//	    User:               "root@pam",
//	    TokenID:            "proxmux",
//	    TokenSecret:        "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx",
//	    InsecureSkipVerify: true,
//	})
//
//	nodes, err := pveapi.Get[[]entity.Node](ctx, client, "/nodes")
//	upid, err := pveapi.Post[string](ctx, client, "/nodes/pve1/qemu/100/status/start", nil)
package pveapi
