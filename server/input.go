package server

// HandleMessage 处理某个连接的一条上行消息。
// 非法或未知消息直接忽略，连接保持打开；结果只在下一次广播中可见。
func (g *Game) HandleMessage(id PlayerID, payload []byte) {
	m, err := DecodeInput(payload)
	if err != nil {
		g.metrics.IncIgnored()
		Log.Debugw("message ignored", "player", id, "err", err)
		return
	}

	switch m.Type {
	case MsgInput:
		dir := ParseDirection(m.Input)
		if dir == DirNone {
			g.metrics.IncIgnored()
			Log.Debugw("unknown input ignored", "player", id, "input", m.Input)
			return
		}
		n, ok := g.world.MoveAndCollect(id, dir)
		if !ok {
			g.metrics.IncIgnored()
			return
		}
		g.metrics.IncAccepted()
		if n > 0 {
			g.metrics.AddCollected(n)
			Log.Infow("coins collected", "player", id, "count", n)
		}
	case MsgChooseShape:
		shape := ParseShape(m.Shape)
		if !g.world.SetShape(id, shape) {
			g.metrics.IncIgnored()
			return
		}
		g.metrics.IncAccepted()
		Log.Infow("player chose shape", "player", id, "shape", shape.String())
	}
}
