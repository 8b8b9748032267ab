package server

import (
	"context"
	"time"
)

// runSpawner 按 CoinSpawnInterval 周期投放金币，独立于广播 Tick；金币数量不设上限
func (g *Game) runSpawner(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.CoinSpawnInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.SpawnCoin()
		}
	}
}

// SpawnCoin 在 [-MapSize, MapSize] 内均匀随机投放一枚金币
func (g *Game) SpawnCoin() Coin {
	g.rngMu.Lock()
	c := Coin{
		X: (g.rng.Float64()*2 - 1) * g.cfg.MapSize,
		Y: (g.rng.Float64()*2 - 1) * g.cfg.MapSize,
	}
	g.rngMu.Unlock()

	g.world.AddCoin(c)
	g.metrics.IncSpawned()
	Log.Debugw("coin spawned", "x", c.X, "y", c.Y)
	return c
}
