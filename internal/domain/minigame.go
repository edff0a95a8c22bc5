package domain

// MinigameID 标识一个小游戏
type MinigameID string

const (
	MinigameTrace       MinigameID = "trace"
	MinigameConnectDots MinigameID = "connect_dots"
	MinigameArtClass    MinigameID = "art_class"
	MinigameMemoryDraw  MinigameID = "memory_draw"
)

// Minigames 按展示顺序列出全部小游戏
var Minigames = []MinigameID{
	MinigameTrace,
	MinigameConnectDots,
	MinigameArtClass,
	MinigameMemoryDraw,
}

func (id MinigameID) Known() bool {
	for _, m := range Minigames {
		if m == id {
			return true
		}
	}
	return false
}
