// Package idgen 提供递增 ID 生成器
//
// 使用 Sonyflake 算法生成全局唯一且递增的 ID。
// 生成的 ID 具有以下特性：
//   - 全局唯一
//   - 时间有序（递增）
//   - 64 位整数
//
// 用途：
//   - 请求 ID: req-{递增数字}，写入日志用于关联一次 API 调用
//   - 归属 ID: 每个界面状态机实例持有一个，异步结果据此判断是否过期
//
// 使用方式：
//
//	// 使用包级别的便捷函数（默认生成器）
//	requestID, err := idgen.GenerateRequestID()
//	// requestID: "req-1234567890"
//
//	owner := idgen.GenerateOwnerID()
//
//	// 或创建自定义生成器
//	gen := idgen.New()
//	requestID, err := gen.GenerateRequestID()
package idgen
