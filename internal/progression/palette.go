package progression

import (
	"github.com/google/uuid"

	"doodle-academy/internal/domain"
)

// UnlockResult 是 TryUnlock 的结果
type UnlockResult int

const (
	AlreadyUnlocked UnlockResult = iota
	NewlyUnlocked
)

func (r UnlockResult) String() string {
	if r == NewlyUnlocked {
		return "newly_unlocked"
	}
	return "already_unlocked"
}

// Palette 是按 hex 去重的已解锁颜色集合，保留插入顺序，只增不减。
type Palette struct {
	items []domain.ColorItem
	newID func() string
}

// NewPalette 用已有条目构建调色板，重复的 hex 只保留第一次出现。
func NewPalette(items []domain.ColorItem) *Palette {
	p := &Palette{newID: uuid.NewString}
	for _, it := range items {
		if _, ok := p.Find(it.Hex); ok {
			continue
		}
		p.items = append(p.items, it)
	}
	return p
}

// SeedPalette 返回 8 个初始颜色组成的调色板
func SeedPalette() *Palette {
	p := NewPalette(nil)
	for _, c := range domain.PrimaryColors {
		p.TryUnlock(c.Hex, c.Name)
	}
	return p
}

// SetIDGenerator 替换 id 生成函数，测试使用
func (p *Palette) SetIDGenerator(fn func() string) {
	if fn != nil {
		p.newID = fn
	}
}

// Find 按 hex 查找，不区分大小写
func (p *Palette) Find(hex string) (domain.ColorItem, bool) {
	for _, it := range p.items {
		if domain.SameHex(it.Hex, hex) {
			return it, true
		}
	}
	return domain.ColorItem{}, false
}

func (p *Palette) Contains(hex string) bool {
	_, ok := p.Find(hex)
	return ok
}

// TryUnlock 不存在时追加新条目并返回 NewlyUnlocked，已存在时不做修改。
func (p *Palette) TryUnlock(hex, name string) (domain.ColorItem, UnlockResult) {
	if existing, ok := p.Find(hex); ok {
		return existing, AlreadyUnlocked
	}
	item := domain.ColorItem{
		ID:       p.newID(),
		Name:     name,
		Hex:      hex,
		Position: len(p.items),
	}
	p.items = append(p.items, item)
	return item, NewlyUnlocked
}

// Items 返回条目副本
func (p *Palette) Items() []domain.ColorItem {
	out := make([]domain.ColorItem, len(p.items))
	copy(out, p.items)
	return out
}

func (p *Palette) Len() int { return len(p.items) }
