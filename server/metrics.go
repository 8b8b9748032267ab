package server

import (
	"sync/atomic"
)

// Metrics 记录会话运行期的关键指标（用于监控与调试）
type Metrics struct {
	TickCount      int64 // 广播 Tick 次数
	TotalTickNs    int64 // Tick 累计耗时（纳秒）
	InputsAccepted int64 // 被应用的上行消息数
	Ignored        int64 // 格式错误或未知类型而被忽略的消息数
	CoinsSpawned   int64
	CoinsCollected int64
	FramesDropped  int64 // 发送队列满而丢弃的帧
	SendFailures   int64 // 连接已关闭导致的发送失败
	Joins          int64
	Leaves         int64
}

func (m *Metrics) IncAccepted() { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *Metrics) IncIgnored() { atomic.AddInt64(&m.Ignored, 1) }
func (m *Metrics) IncSpawned() { atomic.AddInt64(&m.CoinsSpawned, 1) }
func (m *Metrics) AddCollected(n int) { atomic.AddInt64(&m.CoinsCollected, int64(n)) }
func (m *Metrics) IncDropped() { atomic.AddInt64(&m.FramesDropped, 1) }
func (m *Metrics) IncSendFailure() { atomic.AddInt64(&m.SendFailures, 1) }
func (m *Metrics) IncJoin() { atomic.AddInt64(&m.Joins, 1) }
func (m *Metrics) IncLeave() { atomic.AddInt64(&m.Leaves, 1) }
func (m *Metrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":      tick,
		"avg_tick_ms":     avgMs,
		"inputs_accepted": atomic.LoadInt64(&m.InputsAccepted),
		"ignored":         atomic.LoadInt64(&m.Ignored),
		"coins_spawned":   atomic.LoadInt64(&m.CoinsSpawned),
		"coins_collected": atomic.LoadInt64(&m.CoinsCollected),
		"frames_dropped":  atomic.LoadInt64(&m.FramesDropped),
		"send_failures":   atomic.LoadInt64(&m.SendFailures),
		"joins":           atomic.LoadInt64(&m.Joins),
		"leaves":          atomic.LoadInt64(&m.Leaves),
	}
}
