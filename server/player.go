package server

import (
	"strconv"
	"strings"
)

// PlayerID 玩家唯一标识，按加入顺序单调递增分配，进程内不复用
type PlayerID uint64

func (id PlayerID) String() string { return strconv.FormatUint(uint64(id), 10) }

// Direction 移动方向（客户端的离散输入）
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// ParseDirection 解析 "move_left" 之类的输入，未知值返回 DirNone
func ParseDirection(s string) Direction {
	switch strings.ToLower(s) {
	case "move_up":
		return DirUp
	case "move_down":
		return DirDown
	case "move_left":
		return DirLeft
	case "move_right":
		return DirRight
	default:
		return DirNone
	}
}

// Shape 玩家外观，仅影响客户端渲染
type Shape int

const (
	ShapeSquare Shape = iota
	ShapeCircle
	ShapeTriangle
)

// ParseShape 未知形状一律回退为 square
func ParseShape(s string) Shape {
	switch strings.ToLower(s) {
	case "circle":
		return ShapeCircle
	case "triangle":
		return ShapeTriangle
	default:
		return ShapeSquare
	}
}

func (s Shape) String() string {
	switch s {
	case ShapeCircle:
		return "circle"
	case ShapeTriangle:
		return "triangle"
	default:
		return "square"
	}
}

// PlayerState 服务端权威的玩家状态
type PlayerState struct {
	X     float64
	Y     float64
	Score int
	Shape Shape
}

// Coin 可拾取的金币
type Coin struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
