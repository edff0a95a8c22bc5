package hub

import (
	"doodle-academy/internal/canvas"
	"doodle-academy/internal/domain"
	"doodle-academy/internal/dto"
	"doodle-academy/internal/minigame"
	"doodle-academy/internal/progression"
)

// SessionSeed 是建立会话所需的初始数据，由 WebSocket handler 在升级前加载。
// ProjectID 为空表示草稿会话。
type SessionSeed struct {
	ProjectID string
	Drawing   domain.Drawing
	Version   uint
	Progress  domain.UserProgress
	Colors    []domain.ColorItem
}

// SessionSnapshot 是草稿会话在某一时刻的副本，供定时保存使用
type SessionSnapshot struct {
	UserID  uint
	Drawing domain.Drawing
	Version uint
}

// session 是一个用户的在线编辑会话，只在 Hub 的 Run 协程中访问。
type session struct {
	userID    uint
	projectID string
	engine    *canvas.Engine
	version   uint
	// generation 每次载入画作都会变化，用来识别过期的保存结果
	generation uint64
	// flushedVersion 是已交给草稿保存的版本
	flushedVersion uint

	progress domain.UserProgress
	caps     progression.Capabilities
	palette  *progression.Palette

	dots   *minigame.DotsGame
	saving bool

	clients map[*Client]bool
}

func newSession(userID uint, seed SessionSeed, generation uint64) *session {
	s := &session{
		userID:  userID,
		engine:  canvas.NewEngine(),
		clients: make(map[*Client]bool),
	}
	s.load(seed, generation)
	s.applyProgress(seed.Progress, seed.Colors)
	return s
}

// load 替换画作和绑定的作品，进行中的小游戏一并结束。
// 之前发起的保存不再属于当前画作。
func (s *session) load(seed SessionSeed, generation uint64) {
	s.projectID = seed.ProjectID
	s.engine.Load(seed.Drawing)
	s.version = seed.Version
	s.flushedVersion = seed.Version
	s.generation = generation
	s.saving = false
	s.dots = nil
}

func (s *session) applyProgress(p domain.UserProgress, colors []domain.ColorItem) {
	s.progress = p
	s.caps = progression.CapabilityForLevel(p.Level)
	s.palette = progression.NewPalette(colors)
}

func (s *session) isDraft() bool { return s.projectID == "" }

// needsFlush 报告草稿会话是否有尚未写入草稿的修改
func (s *session) needsFlush() bool { return s.isDraft() && s.version > s.flushedVersion }

func (s *session) snapshot() SessionSnapshot {
	return SessionSnapshot{UserID: s.userID, Drawing: s.engine.Drawing(), Version: s.version}
}

func (s *session) stateMessage() dto.StateMessage {
	return dto.StateMessage{
		Type:         dto.MsgState,
		Version:      s.version,
		ProjectID:    s.projectID,
		Drawing:      s.engine.Drawing(),
		Tool:         s.engine.Tool(),
		StrokeColor:  s.engine.StrokeColor(),
		StrokeWidth:  s.engine.StrokeWidth(),
		Progress:     s.progress,
		Capabilities: s.caps,
		Palette:      s.palette.Items(),
	}
}

func (s *session) toolMessage() dto.ToolMessage {
	return dto.ToolMessage{
		Type:        dto.MsgTool,
		Tool:        s.engine.Tool(),
		StrokeColor: s.engine.StrokeColor(),
		StrokeWidth: s.engine.StrokeWidth(),
	}
}

func (s *session) dotsPuzzleMessage() dto.DotsPuzzleMessage {
	return dto.DotsPuzzleMessage{
		Type: dto.MsgDotsPuzzle,
		Name: s.dots.Puzzle().Name,
		Dots: s.dots.ScaledDots(),
		Next: s.dots.Next(),
	}
}
