// Package interact 提供列表界面通用的交互状态机
//
// 每个列表界面（虚拟机、容器、存储）都由同一个 Machine 驱动，
// 只通过 Adapter 提供数据获取和可执行的操作：
//
//	Idle -> PendingConfirm -> ActionLoading -> Idle (刷新)
//	Idle -> ActionLoading -> Idle (刷新)
//	Idle -> Detail -> Idle (刷新)
//
// 破坏性操作必须经过 PendingConfirm 才会执行；同一时间只允许一个操作在执行，
// 执行期间的按键会被丢弃。所有网络调用都以 tea.Cmd 的形式返回给事件循环，
// 结果带有所有者和序号，过期或已销毁的状态机会丢弃这些结果。
package interact
