package progression

import (
	"doodle-academy/internal/domain"
)

// Engine 持有一个用户的进度三元组和调色板。不是并发安全的。
type Engine struct {
	progress domain.UserProgress
	palette  *Palette
	seeded   bool
}

// NewEngine 用会话开始时的进度和颜色构建引擎，颜色为空时写入初始调色板。
func NewEngine(progress domain.UserProgress, colors []domain.ColorItem) *Engine {
	if progress.MaxXP <= 0 {
		progress.MaxXP = domain.DefaultMaxXP
	}
	e := &Engine{progress: progress}
	if len(colors) == 0 {
		e.palette = SeedPalette()
		e.seeded = true
	} else {
		e.palette = NewPalette(colors)
	}
	return e
}

// Seeded 报告调色板是否在构建时被初始化，调用方据此持久化初始颜色。
func (e *Engine) Seeded() bool { return e.seeded }

func (e *Engine) Progress() domain.UserProgress { return e.progress }

func (e *Engine) Palette() *Palette { return e.palette }

// GrantXP 见包级 GrantXP
func (e *Engine) GrantXP(amount int) (domain.UserProgress, int) {
	var gained int
	e.progress, gained = GrantXP(e.progress, amount)
	return e.progress, gained
}

func (e *Engine) Capabilities() Capabilities {
	return CapabilityForLevel(e.progress.Level)
}

func (e *Engine) MinigameUnlocked(id domain.MinigameID) bool {
	return MinigameUnlockedForLevel(e.progress.Level, id)
}

func (e *Engine) TryUnlockColor(hex, name string) (domain.ColorItem, UnlockResult) {
	return e.palette.TryUnlock(hex, name)
}

// MixResult 是一次混色的结果
type MixResult struct {
	Hex          string              `json:"hex"`
	Item         domain.ColorItem    `json:"item"`
	Result       UnlockResult        `json:"-"`
	XPAwarded    int                 `json:"xp_awarded"`
	LevelsGained int                 `json:"levels_gained"`
	Progress     domain.UserProgress `json:"progress"`
}

// MixAndUnlock 混合两种颜色并尝试解锁结果，新颜色奖励 ColorMixBonusXP。
func (e *Engine) MixAndUnlock(hexA, hexB, name string) MixResult {
	if name == "" {
		name = DefaultMixedColorName
	}
	mixed := domain.MixColors(hexA, hexB)
	item, res := e.palette.TryUnlock(mixed, name)
	out := MixResult{Hex: mixed, Item: item, Result: res, Progress: e.progress}
	if res == NewlyUnlocked {
		out.Progress, out.LevelsGained = e.GrantXP(ColorMixBonusXP)
		out.XPAwarded = ColorMixBonusXP
	}
	return out
}
