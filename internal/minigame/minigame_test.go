package minigame_test

import (
	"math/rand"
	"strings"
	"testing"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/minigame"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strokeBetween(a, b domain.Point) domain.Stroke {
	mid := domain.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	return domain.Stroke{Path: domain.StrokePath{Points: []domain.Point{a, mid, b}}}
}

func TestDotsGame_WinsAfterLastPair(t *testing.T) {
	puzzle := minigame.Puzzles[len(minigame.Puzzles)-1] // house, 8 dots
	g := minigame.NewDotsGameWithPuzzle(puzzle, 400, 400)
	dots := g.ScaledDots()
	n := len(dots)

	for i := 0; i < n-1; i++ {
		require.False(t, g.Won(), "第 %d 笔之前不应获胜", i+1)
		// 端点稍有偏移但仍在阈值内
		start := domain.Point{X: dots[i].X + 20, Y: dots[i].Y}
		end := domain.Point{X: dots[i+1].X, Y: dots[i+1].Y - 39}
		advanced, won := g.OnStroke(strokeBetween(start, end))
		require.True(t, advanced)
		assert.Equal(t, i == n-2, won)
	}
	assert.True(t, g.Won())
	assert.Equal(t, minigame.DotsWon, g.State())

	// Won 是终态
	advanced, won := g.OnStroke(strokeBetween(dots[0], dots[1]))
	assert.False(t, advanced)
	assert.True(t, won)
}

func TestDotsGame_MissDoesNotAdvance(t *testing.T) {
	g := minigame.NewDotsGameWithPuzzle(minigame.Puzzles[0], 400, 400)
	dots := g.ScaledDots()

	// 方向反了
	advanced, _ := g.OnStroke(strokeBetween(dots[1], dots[0]))
	assert.False(t, advanced)
	// 距离恰好等于阈值
	advanced, _ = g.OnStroke(strokeBetween(domain.Point{X: dots[0].X + 40, Y: dots[0].Y}, dots[1]))
	assert.False(t, advanced)
	// 空笔画
	advanced, _ = g.OnStroke(domain.Stroke{})
	assert.False(t, advanced)

	assert.Equal(t, 0, g.Next())
	assert.Equal(t, minigame.DotsInProgress, g.State())
}

func TestDotsGame_Reset(t *testing.T) {
	g := minigame.NewDotsGame(300, 300, rand.New(rand.NewSource(7)))
	dots := g.ScaledDots()
	g.OnStroke(strokeBetween(dots[0], dots[1]))
	require.Equal(t, 1, g.Next())

	g.Reset()
	assert.Equal(t, 0, g.Next())
	assert.False(t, g.Won())
	assert.NotEmpty(t, g.Puzzle().Dots)
}

func TestPuzzles(t *testing.T) {
	require.Len(t, minigame.Puzzles, 8)
	for _, p := range minigame.Puzzles {
		assert.GreaterOrEqual(t, len(p.Dots), 2, p.Name)
		for _, d := range p.Dots {
			assert.True(t, d.X >= 0 && d.X <= 1 && d.Y >= 0 && d.Y <= 1, p.Name)
		}
	}
}

func TestNewPrompt(t *testing.T) {
	p := minigame.NewPrompt(rand.New(rand.NewSource(1)))
	assert.True(t, strings.HasSuffix(p.Text, "."))
	assert.Equal(t, strings.ToUpper(p.Adjective[:1]), p.Text[:1])
	assert.Contains(t, p.Text, p.Noun+" "+p.Verb+" "+p.Preposition+" "+p.Setting)
}

func TestNewMemoryRound(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		r := minigame.NewMemoryRound(rnd)
		require.Len(t, r.Options, 2)
		assert.Contains(t, r.Options, r.Target)
		assert.NotEqual(t, r.Options[0], r.Options[1])
		assert.Contains(t, minigame.MemoryImages(), r.Target)
		assert.Equal(t, minigame.MemorizeSeconds, r.MemorizeSeconds)
	}
}

func TestCatalog(t *testing.T) {
	entries := minigame.Catalog(8)
	require.Len(t, entries, 4)
	byID := map[domain.MinigameID]minigame.Entry{}
	for _, e := range entries {
		byID[e.ID] = e
	}
	assert.True(t, byID[domain.MinigameTrace].Unlocked)
	assert.True(t, byID[domain.MinigameArtClass].Unlocked)
	assert.False(t, byID[domain.MinigameMemoryDraw].Unlocked)
	assert.Equal(t, 10, byID[domain.MinigameMemoryDraw].UnlockLevel)
}
