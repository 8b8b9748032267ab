package server

import (
	"encoding/json"
	"net/http"
)

// HandleAdminConfig 返回当前生效的配置（只读，启动后不可修改）
// GET /admin/config
func (g *Game) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, g.cfg)
}

// HandleMetrics 输出会话运行指标
// GET /metrics
func (g *Game) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	payload := map[string]any{
		"session": g.SessionID,
		"state":   g.State().String(),
		"players": g.PlayerCount(),
		"coins":   len(g.world.SnapshotCoins()),
		"tick":    g.tickSeq.Load(),
		"metrics": g.metrics.Snapshot(),
	}
	writeJSON(w, payload)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Log.Warnw("write response failed", "err", err)
	}
}
