package dto

import (
	"time"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/progression"
)

// 客户端消息类型
const (
	MsgBegin     = "begin"
	MsgExtend    = "extend"
	MsgCommit    = "commit"
	MsgErase     = "erase"
	MsgTool      = "tool"
	MsgStyle     = "style"
	MsgClear     = "clear"
	MsgSave      = "save"
	MsgDotsStart = "dots_start"
	MsgDotsReset = "dots_reset"
)

// 服务端消息类型
const (
	MsgState         = "state"
	MsgStrokeAdded   = "stroke_added"
	MsgStrokeRemoved = "stroke_removed"
	MsgCleared       = "cleared"
	MsgSaved         = "saved"
	MsgDotsPuzzle    = "dots_puzzle"
	MsgDotsProgress  = "dots_progress"
	MsgGameWon       = "game_won"
	MsgError         = "error"
)

// ClientMessage 是 WebSocket 上收到的一条客户端消息，字段按 Type 取用
type ClientMessage struct {
	Type  string        `json:"type"`
	Point *domain.Point `json:"point,omitempty"` // begin / extend / erase
	Tool  string        `json:"tool,omitempty"`  // tool
	Color string        `json:"color,omitempty"` // style
	Width float64       `json:"width,omitempty"` // style
	Name  *string       `json:"name,omitempty"`  // save

	CanvasWidth  float64 `json:"canvas_width,omitempty"` // dots_start
	CanvasHeight float64 `json:"canvas_height,omitempty"`
}

// StateMessage 是会话的完整快照，连接时和进度变化后发送
type StateMessage struct {
	Type         string                   `json:"type"`
	Version      uint                     `json:"version"`
	ProjectID    string                   `json:"project_id,omitempty"`
	Drawing      domain.Drawing           `json:"drawing"`
	Tool         domain.Tool              `json:"tool"`
	StrokeColor  string                   `json:"stroke_color"`
	StrokeWidth  float64                  `json:"stroke_width"`
	Progress     domain.UserProgress      `json:"progress"`
	Capabilities progression.Capabilities `json:"capabilities"`
	Palette      []domain.ColorItem       `json:"palette"`
}

type StrokeAddedMessage struct {
	Type    string        `json:"type"`
	Version uint          `json:"version"`
	Stroke  domain.Stroke `json:"stroke"`
}

type StrokeRemovedMessage struct {
	Type    string `json:"type"`
	Version uint   `json:"version"`
	Index   int    `json:"index"`
}

type ClearedMessage struct {
	Type    string `json:"type"`
	Version uint   `json:"version"`
}

// ToolMessage 回报当前工具，tool 和 style 消息都会触发
type ToolMessage struct {
	Type        string      `json:"type"`
	Tool        domain.Tool `json:"tool"`
	StrokeColor string      `json:"stroke_color"`
	StrokeWidth float64     `json:"stroke_width"`
}

type SavedMessage struct {
	Type         string    `json:"type"`
	ProjectID    string    `json:"project_id"`
	StrokeCount  int       `json:"stroke_count"`
	LastModified time.Time `json:"last_modified"`
}

type DotsPuzzleMessage struct {
	Type string         `json:"type"`
	Name string         `json:"name"`
	Dots []domain.Point `json:"dots"`
	Next int            `json:"next"`
}

type DotsProgressMessage struct {
	Type  string `json:"type"`
	Next  int    `json:"next"`
	State string `json:"state"`
}

type GameWonMessage struct {
	Type string `json:"type"`
	Game string `json:"game"`
	XP   int    `json:"xp"`
}

// ErrorDTO 表示发送给客户端的错误消息
type ErrorDTO struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(message string) ErrorDTO {
	return ErrorDTO{Type: MsgError, Message: message}
}
