package progression_test

import (
	"testing"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/progression"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedPalette(t *testing.T) {
	p := progression.SeedPalette()
	require.Equal(t, 8, p.Len())
	items := p.Items()
	for i, c := range domain.PrimaryColors {
		assert.Equal(t, c.Hex, items[i].Hex)
		assert.Equal(t, c.Name, items[i].Name)
		assert.Equal(t, i, items[i].Position)
		assert.NotEmpty(t, items[i].ID)
	}
}

func TestPalette_TryUnlockIdempotentOnHex(t *testing.T) {
	p := progression.SeedPalette()
	ids := []string{"id-1", "id-2"}
	p.SetIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	})

	item, res := p.TryUnlock("#800080", "Purple")
	assert.Equal(t, progression.NewlyUnlocked, res)
	assert.Equal(t, "id-1", item.ID)
	assert.Equal(t, 9, p.Len())

	again, res := p.TryUnlock("#800080", "Another name")
	assert.Equal(t, progression.AlreadyUnlocked, res)
	assert.Equal(t, item, again)
	assert.Equal(t, 9, p.Len(), "重复的 hex 不改变集合大小")

	_, res = p.TryUnlock("#ff00ff", "magenta again")
	assert.Equal(t, progression.AlreadyUnlocked, res, "hex 比较不区分大小写")
	assert.Equal(t, 9, p.Len())
}

func TestNewPalette_DedupsPreservingOrder(t *testing.T) {
	p := progression.NewPalette([]domain.ColorItem{
		{ID: "a", Name: "One", Hex: "#111111"},
		{ID: "b", Name: "Two", Hex: "#222222"},
		{ID: "c", Name: "One again", Hex: "#111111"},
	})
	items := p.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
}

func TestEngine_SeedsEmptyPalette(t *testing.T) {
	e := progression.NewEngine(domain.NewUserProgress(), nil)
	assert.True(t, e.Seeded())
	assert.Equal(t, 8, e.Palette().Len())

	e = progression.NewEngine(domain.NewUserProgress(), []domain.ColorItem{{ID: "x", Name: "Black", Hex: "#000000"}})
	assert.False(t, e.Seeded())
	assert.Equal(t, 1, e.Palette().Len())
}

func TestEngine_MixAndUnlockAwardsXPOnce(t *testing.T) {
	e := progression.NewEngine(domain.UserProgress{Level: 2, CurrentXP: 95, MaxXP: 100}, nil)

	first := e.MixAndUnlock("#FF0000", "#0000FF", "")
	assert.Equal(t, "#800080", first.Hex)
	assert.Equal(t, progression.NewlyUnlocked, first.Result)
	assert.Equal(t, progression.DefaultMixedColorName, first.Item.Name)
	assert.Equal(t, progression.ColorMixBonusXP, first.XPAwarded)
	assert.Equal(t, 1, first.LevelsGained)
	assert.Equal(t, domain.UserProgress{Level: 3, CurrentXP: 5, MaxXP: 110}, e.Progress())

	second := e.MixAndUnlock("#0000FF", "#FF0000", "Purple")
	assert.Equal(t, progression.AlreadyUnlocked, second.Result)
	assert.Zero(t, second.XPAwarded)
	assert.Equal(t, domain.UserProgress{Level: 3, CurrentXP: 5, MaxXP: 110}, e.Progress())
	assert.Equal(t, 9, e.Palette().Len())
}

func TestEngine_Gates(t *testing.T) {
	e := progression.NewEngine(domain.UserProgress{Level: 8, CurrentXP: 0, MaxXP: 200}, nil)
	assert.True(t, e.Capabilities().Crayon)
	assert.True(t, e.MinigameUnlocked(domain.MinigameArtClass))
	assert.False(t, e.MinigameUnlocked(domain.MinigameMemoryDraw))
}
