package server

import (
	"sync"

	"github.com/google/uuid"
)

// Sink 连接的发送端；Send 不得阻塞调用方
type Sink interface {
	Send([]byte) error
	Close() error
}

// ConnState 连接生命周期
type ConnState int

const (
	ConnJoining ConnState = iota
	ConnActive
	ConnDisconnected
)

// Connection 每个已加入的对端一条
type Connection struct {
	ID      PlayerID
	TraceID string // 日志关联用
	Sink    Sink

	state ConnState
}

// Registry 跟踪活跃连接并分配玩家 ID。
// 加入与移除会同步更新 World，保证两边的玩家集合一致。
type Registry struct {
	mu     sync.Mutex
	conns  map[PlayerID]*Connection
	nextID PlayerID
	world  *World
}

func NewRegistry(world *World) *Registry {
	return &Registry{
		conns:  make(map[PlayerID]*Connection),
		nextID: 1,
		world:  world,
	}
}

// Join 分配下一个 ID、登记发送端并写入默认玩家状态；
// 返回的 count 是本次加入后立即观察到的活跃连接数
func (r *Registry) Join(sink Sink) (id PlayerID, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id = r.nextID
	r.nextID++
	c := &Connection{ID: id, TraceID: uuid.NewString(), Sink: sink, state: ConnJoining}
	r.conns[id] = c
	r.world.AddPlayer(id)
	c.state = ConnActive

	Log.Infow("player joined", "player", id, "trace", c.TraceID, "active", len(r.conns))
	return id, len(r.conns)
}

// Remove 撤销发送端并删除玩家状态；重复调用或未知 ID 为 no-op
func (r *Registry) Remove(id PlayerID) bool {
	r.mu.Lock()
	c, ok := r.conns[id]
	if !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.conns, id)
	c.state = ConnDisconnected
	r.world.RemovePlayer(id)
	active := len(r.conns)
	r.mu.Unlock()

	if c.Sink != nil {
		_ = c.Sink.Close()
	}
	Log.Infow("player left", "player", id, "trace", c.TraceID, "active", active)
	return true
}

// Connections 返回当前活跃连接的副本，供广播在锁外使用
func (r *Registry) Connections() []*Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Connection, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

// State 返回连接的生命周期状态；已移除的连接返回 ConnDisconnected
func (r *Registry) State(id PlayerID) ConnState {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if !ok {
		return ConnDisconnected
	}
	return c.state
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
