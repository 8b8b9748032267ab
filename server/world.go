package server

import (
	"math"
	"sync"
)

// World 唯一的共享世界状态；所有修改都在 mu 内完成，持锁期间不做任何网络或计时等待
type World struct {
	mu      sync.RWMutex
	players map[PlayerID]*PlayerState
	coins   []Coin

	speed        float64
	pickupRadius float64
}

// Snapshot 某一时刻的世界副本，可在锁外直接序列化
type Snapshot struct {
	Players map[PlayerID]Position
	Scores  map[PlayerID]int
	Coins   []Coin
	Shapes  map[PlayerID]Shape
}

// Position 玩家坐标
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewWorld(speed, pickupRadius float64) *World {
	return &World{
		players:      make(map[PlayerID]*PlayerState),
		speed:        speed,
		pickupRadius: pickupRadius,
	}
}

// AddPlayer 以默认状态（原点、0 分、square）登记玩家
func (w *World) AddPlayer(id PlayerID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.players[id] = &PlayerState{Shape: ShapeSquare}
}

// RemovePlayer 删除玩家的位置、分数与外观；不存在时返回 false
func (w *World) RemovePlayer(id PlayerID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.players[id]; !ok {
		return false
	}
	delete(w.players, id)
	return true
}

// Player 返回玩家状态副本
func (w *World) Player(id PlayerID) (PlayerState, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.players[id]
	if !ok {
		return PlayerState{}, false
	}
	return *p, true
}

// ApplyMove 按方向位移一步，不做边界裁剪
func (w *World) ApplyMove(id PlayerID, dir Direction) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return false
	}
	w.applyMove(p, dir)
	return true
}

func (w *World) applyMove(p *PlayerState, dir Direction) {
	switch dir {
	case DirUp:
		p.Y += w.speed
	case DirDown:
		p.Y -= w.speed
	case DirLeft:
		p.X -= w.speed
	case DirRight:
		p.X += w.speed
	}
}

// MoveAndCollect 位移并结算金币拾取，二者在同一临界区内完成。
// 先遍历全部金币得到命中下标，再按下标降序删除；每枚金币加 1 分。
func (w *World) MoveAndCollect(id PlayerID, dir Direction) (int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return 0, false
	}
	w.applyMove(p, dir)

	var hit []int
	for i, c := range w.coins {
		if math.Abs(c.X-p.X) < w.pickupRadius && math.Abs(c.Y-p.Y) < w.pickupRadius {
			hit = append(hit, i)
		}
	}
	for i := len(hit) - 1; i >= 0; i-- {
		w.removeCoin(hit[i])
	}
	p.Score += len(hit)
	return len(hit), true
}

// SetShape 覆盖玩家外观
func (w *World) SetShape(id PlayerID, shape Shape) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.players[id]
	if !ok {
		return false
	}
	switch shape {
	case ShapeSquare, ShapeCircle, ShapeTriangle:
		p.Shape = shape
	default:
		p.Shape = ShapeSquare
	}
	return true
}

func (w *World) AddCoin(c Coin) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.coins = append(w.coins, c)
}

func (w *World) RemoveCoin(index int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if index < 0 || index >= len(w.coins) {
		return false
	}
	w.removeCoin(index)
	return true
}

func (w *World) removeCoin(index int) {
	w.coins = append(w.coins[:index], w.coins[index+1:]...)
}

func (w *World) SnapshotCoins() []Coin {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Coin, len(w.coins))
	copy(out, w.coins)
	return out
}

// Snapshot 一致的时点副本，返回后与 World 不再共享任何内存
func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s := Snapshot{
		Players: make(map[PlayerID]Position, len(w.players)),
		Scores:  make(map[PlayerID]int, len(w.players)),
		Coins:   make([]Coin, len(w.coins)),
		Shapes:  make(map[PlayerID]Shape, len(w.players)),
	}
	for id, p := range w.players {
		s.Players[id] = Position{X: p.X, Y: p.Y}
		s.Scores[id] = p.Score
		s.Shapes[id] = p.Shape
	}
	copy(s.Coins, w.coins)
	return s
}
