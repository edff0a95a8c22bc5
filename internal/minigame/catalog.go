package minigame

import (
	"doodle-academy/internal/domain"
	"doodle-academy/internal/progression"
)

// Entry 是小游戏列表中的一项
type Entry struct {
	ID          domain.MinigameID `json:"id"`
	Title       string            `json:"title"`
	UnlockLevel int               `json:"unlock_level"`
	Unlocked    bool              `json:"unlocked"`
}

var titles = map[domain.MinigameID]string{
	domain.MinigameTrace:       "Tracing Fun",
	domain.MinigameConnectDots: "Connect the Dots",
	domain.MinigameArtClass:    "Art Class",
	domain.MinigameMemoryDraw:  "Memory Draw",
}

// Catalog 按等级列出全部小游戏及其可用状态
func Catalog(level int) []Entry {
	out := make([]Entry, 0, len(domain.Minigames))
	for _, id := range domain.Minigames {
		out = append(out, Entry{
			ID:          id,
			Title:       titles[id],
			UnlockLevel: progression.MinigameUnlockLevel(id),
			Unlocked:    progression.MinigameUnlockedForLevel(level, id),
		})
	}
	return out
}
