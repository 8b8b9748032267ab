package server

import "sync"

// SessionState 会话状态：只会从等待变为进行中，不会回退
type SessionState int

const (
	WaitingForPlayers SessionState = iota
	InProgress
)

func (s SessionState) String() string {
	if s == InProgress {
		return "in_progress"
	}
	return "waiting_for_players"
}

// Lobby 在活跃连接数首次达到 size 时触发一次 onStart
type Lobby struct {
	mu      sync.Mutex
	size    int
	state   SessionState
	onStart func()
}

func NewLobby(size int, onStart func()) *Lobby {
	return &Lobby{size: size, onStart: onStart}
}

// OnJoin 传入加入后观察到的连接数；本次调用触发了开局时返回 true
func (l *Lobby) OnJoin(count int) bool {
	l.mu.Lock()
	if l.state != WaitingForPlayers || count != l.size {
		l.mu.Unlock()
		return false
	}
	l.state = InProgress
	l.mu.Unlock()

	if l.onStart != nil {
		l.onStart()
	}
	return true
}

func (l *Lobby) State() SessionState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}
