// Package wizard 实现创建容器的多步向导
//
// 向导打开时一次性加载模板、存储、网桥和下一个空闲 VMID，
// 之后每一步只校验自己的输入并写入草稿。最后一步确认后调用一次 CreateContainer，
// 然后按配置的间隔轮询任务状态，直到任务结束或查询失败。
package wizard
