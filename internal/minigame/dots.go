// Package minigame 实现连点成画的胜负判定以及提示词、记忆画题目生成。
package minigame

import (
	"math/rand"

	"doodle-academy/internal/domain"
)

const (
	// DotHitThreshold 是笔画端点命中圆点的距离上限（严格小于）
	DotHitThreshold = 40.0
	// ConnectDotsWinXP 是完成一幅连点画的奖励
	ConnectDotsWinXP = 100
)

// Dot 是 [0,1]x[0,1] 内的归一化坐标
type Dot struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Puzzle 是一组按顺序连接的圆点
type Puzzle struct {
	Name string `json:"name"`
	Dots []Dot  `json:"dots"`
}

// Scaled 把圆点换算为画布像素坐标
func (p Puzzle) Scaled(width, height float64) []domain.Point {
	out := make([]domain.Point, len(p.Dots))
	for i, d := range p.Dots {
		out[i] = domain.Point{X: d.X * width, Y: d.Y * height}
	}
	return out
}

// Puzzles 是内置题库
var Puzzles = []Puzzle{
	{Name: "lantern", Dots: []Dot{
		{0.5, 0.1}, {0.3, 0.2}, {0.3, 0.4}, {0.4, 0.5}, {0.2, 0.6}, {0.2, 0.9},
		{0.8, 0.9}, {0.8, 0.6}, {0.6, 0.5}, {0.7, 0.4}, {0.7, 0.2}, {0.5, 0.1},
	}},
	{Name: "dinosaur", Dots: []Dot{
		{0.2, 0.4}, {0.1, 0.5}, {0.2, 0.6}, {0.4, 0.55}, {0.35, 0.3}, {0.5, 0.2},
		{0.6, 0.3}, {0.55, 0.5}, {0.7, 0.45}, {0.9, 0.5}, {0.85, 0.8}, {0.75, 0.8},
		{0.5, 0.75}, {0.4, 0.8}, {0.3, 0.8}, {0.2, 0.6},
	}},
	{Name: "bird", Dots: []Dot{
		{0.1, 0.5}, {0.3, 0.3}, {0.7, 0.4}, {0.9, 0.2}, {0.8, 0.5}, {0.9, 0.8},
		{0.7, 0.6}, {0.3, 0.7}, {0.1, 0.5},
	}},
	{Name: "dog", Dots: []Dot{
		{0.3, 0.5}, {0.4, 0.4}, {0.6, 0.3}, {0.7, 0.5}, {0.5, 0.7}, {0.3, 0.5},
		{0.35, 0.55}, {0.4, 0.6}, {0.5, 0.4}, {0.6, 0.35},
	}},
	{Name: "butterfly", Dots: []Dot{
		{0.5, 0.5}, {0.3, 0.4}, {0.2, 0.6}, {0.5, 0.5}, {0.7, 0.4}, {0.8, 0.6},
		{0.5, 0.5}, {0.5, 0.3}, {0.5, 0.2}, {0.5, 0.3}, {0.5, 0.4},
	}},
	{Name: "fish", Dots: []Dot{
		{0.3, 0.5}, {0.2, 0.4}, {0.2, 0.6}, {0.3, 0.5}, {0.5, 0.4}, {0.7, 0.5},
		{0.5, 0.6}, {0.3, 0.5}, {0.6, 0.45}, {0.8, 0.5},
	}},
	{Name: "cat", Dots: []Dot{
		{0.5, 0.3}, {0.3, 0.4}, {0.4, 0.6}, {0.3, 0.7}, {0.7, 0.7}, {0.6, 0.6},
		{0.7, 0.4}, {0.5, 0.3}, {0.4, 0.5}, {0.6, 0.5}, {0.5, 0.6}, {0.5, 0.7},
	}},
	{Name: "house", Dots: []Dot{
		{0.4, 0.7}, {0.6, 0.7}, {0.6, 0.4}, {0.5, 0.2}, {0.4, 0.4}, {0.4, 0.7},
		{0.5, 0.5}, {0.5, 0.7},
	}},
}

// DotsState 是连点游戏的状态
type DotsState string

const (
	DotsInProgress DotsState = "in_progress"
	DotsWon        DotsState = "won"
)

// DotsGame 是 InProgress(next) -> Won 状态机。Won 只能通过 Reset 离开。
type DotsGame struct {
	puzzle Puzzle
	width  float64
	height float64
	next   int
	won    bool
	rnd    *rand.Rand
}

// NewDotsGame 随机选一道题
func NewDotsGame(width, height float64, rnd *rand.Rand) *DotsGame {
	g := &DotsGame{width: width, height: height, rnd: rnd}
	g.puzzle = g.pick()
	return g
}

// NewDotsGameWithPuzzle 使用指定题目，测试和回放使用
func NewDotsGameWithPuzzle(p Puzzle, width, height float64) *DotsGame {
	return &DotsGame{puzzle: p, width: width, height: height}
}

func (g *DotsGame) pick() Puzzle {
	if g.rnd == nil {
		return Puzzles[rand.Intn(len(Puzzles))]
	}
	return Puzzles[g.rnd.Intn(len(Puzzles))]
}

func (g *DotsGame) Puzzle() Puzzle { return g.puzzle }
func (g *DotsGame) Next() int { return g.next }
func (g *DotsGame) Won() bool { return g.won }

func (g *DotsGame) State() DotsState {
	if g.won {
		return DotsWon
	}
	return DotsInProgress
}

// ScaledDots 返回按画布尺寸换算后的圆点
func (g *DotsGame) ScaledDots() []domain.Point {
	return g.puzzle.Scaled(g.width, g.height)
}

// OnStroke 检查刚提交的笔画是否从 dot[next] 连到 dot[next+1]。
// 命中时推进 next，next 到达最后一个点时进入 Won。
func (g *DotsGame) OnStroke(s domain.Stroke) (advanced bool, won bool) {
	if g.won || g.next >= len(g.puzzle.Dots)-1 {
		return false, g.won
	}
	pts := s.Path.Points
	if len(pts) == 0 {
		return false, false
	}
	dots := g.ScaledDots()
	start, end := pts[0], pts[len(pts)-1]
	if domain.Distance(start, dots[g.next]) >= DotHitThreshold ||
		domain.Distance(end, dots[g.next+1]) >= DotHitThreshold {
		return false, false
	}
	g.next++
	if g.next >= len(g.puzzle.Dots)-1 {
		g.won = true
	}
	return true, g.won
}

// Reset 回到 InProgress(0) 并换一道新题。清空画布由调用方负责。
func (g *DotsGame) Reset() {
	g.puzzle = g.pick()
	g.next = 0
	g.won = false
}
