// Package progression 管理经验值、等级门槛和已解锁调色板。
package progression

import (
	"doodle-academy/internal/domain"
)

// 工具解锁等级
const (
	PencilUnlockLevel = 2
	MarkerUnlockLevel = 4
	CrayonUnlockLevel = 6
)

// 经验值上限，保证累加和 maxXP*11 都不会溢出
const (
	MaxGrantXP = 1 << 40
	MaxMaxXP   = 1 << 40
)

// 混色奖励
const (
	ColorMixBonusXP       = 10
	DefaultMixedColorName = "Mixed"
)

var minigameUnlockLevels = map[domain.MinigameID]int{
	domain.MinigameArtClass:   8,
	domain.MinigameMemoryDraw: 10,
}

// GrantXP 累加经验值并循环处理升级，每升一级 maxXP 变为 floor(maxXP*1.1)。
// 返回新进度和本次升级数。非正数的 amount 不做任何修改，
// 超过 MaxGrantXP 的部分被截掉，maxXP 增长到 MaxMaxXP 为止。
func GrantXP(p domain.UserProgress, amount int) (domain.UserProgress, int) {
	if p.MaxXP <= 0 {
		p.MaxXP = domain.DefaultMaxXP
	}
	if p.MaxXP > MaxMaxXP {
		p.MaxXP = MaxMaxXP
	}
	if p.CurrentXP < 0 {
		p.CurrentXP = 0
	}
	if p.CurrentXP > MaxGrantXP {
		p.CurrentXP = MaxGrantXP
	}
	if amount <= 0 {
		return p, 0
	}
	if amount > MaxGrantXP {
		amount = MaxGrantXP
	}
	gained := 0
	p.CurrentXP += amount
	for p.CurrentXP >= p.MaxXP {
		p.Level++
		p.CurrentXP -= p.MaxXP
		// 整数运算等价于 floor(maxXP * 1.1)
		p.MaxXP = p.MaxXP * 11 / 10
		if p.MaxXP > MaxMaxXP {
			p.MaxXP = MaxMaxXP
		}
		gained++
	}
	return p, gained
}

// Capabilities 是按等级解锁的工具
type Capabilities struct {
	Pencil bool `json:"pencil"`
	Marker bool `json:"marker"`
	Crayon bool `json:"crayon"`
}

// CapabilityForLevel 返回 level 对应的工具解锁情况
func CapabilityForLevel(level int) Capabilities {
	return Capabilities{
		Pencil: level >= PencilUnlockLevel,
		Marker: level >= MarkerUnlockLevel,
		Crayon: level >= CrayonUnlockLevel,
	}
}

// Allows 报告工具是否可用。钢笔和两种橡皮始终可用。
func (c Capabilities) Allows(kind domain.ToolKind) bool {
	switch kind {
	case domain.ToolPen, domain.ToolSoftEraser, domain.ToolStrokeEraser:
		return true
	case domain.ToolPencil:
		return c.Pencil
	case domain.ToolMarker:
		return c.Marker
	case domain.ToolCrayon:
		return c.Crayon
	default:
		return false
	}
}

// MinigameUnlockLevel 返回小游戏的解锁等级，不设门槛的返回 0。
func MinigameUnlockLevel(id domain.MinigameID) int {
	return minigameUnlockLevels[id]
}

// MinigameUnlockedForLevel 报告小游戏在该等级是否可玩。未知 id 返回 false。
func MinigameUnlockedForLevel(level int, id domain.MinigameID) bool {
	if !id.Known() {
		return false
	}
	return level >= minigameUnlockLevels[id]
}
