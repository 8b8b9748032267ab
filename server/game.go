package server

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Game 唯一的对局：持有世界状态、连接表与大厅，并负责后台任务的生命周期
type Game struct {
	cfg       Config
	SessionID string

	world    *World
	registry *Registry
	lobby    *Lobby
	metrics  *Metrics

	rngMu sync.Mutex
	rng   *rand.Rand

	tickSeq atomic.Int64

	mu     sync.Mutex // 保护 closed 与 wg.Add
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewGame 创建对局；后台任务在人数达到 LobbySize 时才启动
func NewGame(cfg Config) *Game {
	ctx, cancel := context.WithCancel(context.Background())
	world := NewWorld(cfg.PlayerSpeed, cfg.PickupRadius)
	g := &Game{
		cfg:       cfg,
		SessionID: uuid.NewString(),
		world:     world,
		registry:  NewRegistry(world),
		metrics:   &Metrics{},
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		ctx:       ctx,
		cancel:    cancel,
	}
	g.lobby = NewLobby(cfg.LobbySize, g.start)
	return g
}

func (g *Game) Config() Config { return g.cfg }
func (g *Game) World() *World { return g.world }
func (g *Game) Metrics() *Metrics { return g.metrics }
func (g *Game) State() SessionState { return g.lobby.State() }
func (g *Game) PlayerCount() int { return g.registry.Count() }

// Join 登记新连接：先发 welcome，再检查是否凑齐人数
func (g *Game) Join(sink Sink) PlayerID {
	id, count := g.registry.Join(sink)
	g.metrics.IncJoin()
	if b, err := EncodeWelcome(id); err == nil {
		if err := sink.Send(b); err != nil {
			Log.Debugw("welcome not delivered", "player", id, "err", err)
		}
	}
	g.lobby.OnJoin(count)
	return id
}

// Leave 断线清理，可重复调用
func (g *Game) Leave(id PlayerID) {
	if g.registry.Remove(id) {
		g.metrics.IncLeave()
	}
}

// start 由 Lobby 调用且只调用一次：广播 game_start 并启动广播与刷金币任务
func (g *Game) start() {
	Log.Infow("game started", "session", g.SessionID, "players", g.registry.Count())
	if b, err := EncodeGameStart(); err == nil {
		g.broadcast(b)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.wg.Add(2)
	go func() {
		defer g.wg.Done()
		g.runBroadcast(g.ctx)
	}()
	go func() {
		defer g.wg.Done()
		g.runSpawner(g.ctx)
	}()
}

// Close 停止后台任务并断开所有连接
func (g *Game) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.cancel()
	g.wg.Wait()
	for _, c := range g.registry.Connections() {
		g.Leave(c.ID)
	}
}

// Done 对局关闭后返回的 channel 会被关闭
func (g *Game) Done() <-chan struct{} { return g.ctx.Done() }
