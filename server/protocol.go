package server

import (
	"encoding/json"
	"errors"
	"fmt"
)

// 消息类型（JSON 中的 "type" 字段）
const (
	MsgChooseShape = "choose_shape"
	MsgInput       = "input"

	MsgWelcome     = "welcome"
	MsgGameStart   = "game_start"
	MsgStateUpdate = "state_update"
)

var ErrUnknownMessage = errors.New("unknown message type")

// InputMessage 客户端上行消息（WebSocket 文本帧）
// 示例：{"type":"input","input":"move_left"} / {"type":"choose_shape","shape":"circle"}
type InputMessage struct {
	Type  string `json:"type"`
	Input string `json:"input,omitempty"`
	Shape string `json:"shape,omitempty"`
}

type WelcomeMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type GameStartMessage struct {
	Type string `json:"type"`
}

// StateUpdateMessage 每个 Tick 广播的完整世界状态，map 的键为十进制玩家 ID
type StateUpdateMessage struct {
	Type    string              `json:"type"`
	Players map[string]Position `json:"players"`
	Scores  map[string]int      `json:"scores"`
	Coins   []Coin              `json:"coins"`
	Shapes  map[string]string   `json:"shapes"`
}

// DecodeInput 解析上行消息；JSON 错误或未知类型返回 error
func DecodeInput(b []byte) (InputMessage, error) {
	var m InputMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return InputMessage{}, fmt.Errorf("decode input: %w", err)
	}
	switch m.Type {
	case MsgInput, MsgChooseShape:
		return m, nil
	default:
		return InputMessage{}, fmt.Errorf("%w: %q", ErrUnknownMessage, m.Type)
	}
}

func EncodeWelcome(id PlayerID) ([]byte, error) {
	return json.Marshal(WelcomeMessage{Type: MsgWelcome, ID: id.String()})
}

func EncodeGameStart() ([]byte, error) {
	return json.Marshal(GameStartMessage{Type: MsgGameStart})
}

func EncodeStateUpdate(s Snapshot) ([]byte, error) {
	msg := StateUpdateMessage{
		Type:    MsgStateUpdate,
		Players: make(map[string]Position, len(s.Players)),
		Scores:  make(map[string]int, len(s.Scores)),
		Coins:   s.Coins,
		Shapes:  make(map[string]string, len(s.Shapes)),
	}
	if msg.Coins == nil {
		msg.Coins = []Coin{}
	}
	for id, p := range s.Players {
		msg.Players[id.String()] = p
	}
	for id, sc := range s.Scores {
		msg.Scores[id.String()] = sc
	}
	for id, sh := range s.Shapes {
		msg.Shapes[id.String()] = sh.String()
	}
	return json.Marshal(msg)
}
