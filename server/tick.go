package server

import (
	"context"
	"errors"
	"time"
)

// runBroadcast 广播循环：按固定周期读取世界快照并推送给所有连接，与输入处理互不同步
func (g *Game) runBroadcast(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			g.broadcastState()
			g.metrics.AddTick(time.Since(start).Nanoseconds())
		}
	}
}

// broadcastState 取快照 → 编码 state_update → 扇出
func (g *Game) broadcastState() {
	g.tickSeq.Add(1)
	b, err := EncodeStateUpdate(g.world.Snapshot())
	if err != nil {
		Log.Errorw("encode state update failed", "err", err)
		return
	}
	g.broadcast(b)
}

// broadcast 将同一份字节发给当前所有连接。
// 单个连接发送失败不影响其他连接；已关闭的连接在扇出结束后统一移除。
func (g *Game) broadcast(b []byte) {
	var failed []PlayerID
	for _, c := range g.registry.Connections() {
		err := c.Sink.Send(b)
		switch {
		case err == nil:
		case errors.Is(err, ErrQueueFull):
			// 丢帧即可，下一个 Tick 会重发完整状态
			g.metrics.IncDropped()
		default:
			g.metrics.IncSendFailure()
			Log.Warnw("send failed", "player", c.ID, "trace", c.TraceID, "err", err)
			failed = append(failed, c.ID)
		}
	}
	for _, id := range failed {
		g.Leave(id)
	}
}
