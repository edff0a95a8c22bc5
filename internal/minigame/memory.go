package minigame

import (
	"math/rand"
	"strconv"
)

const (
	memoryFirstImage = 2
	memoryLastImage  = 25
	// MemorizeSeconds 是展示目标图片的倒计时
	MemorizeSeconds = 3
)

// MemoryRound 是记忆画的一轮：先记住 Target，画完后从 Options 里选出它。
type MemoryRound struct {
	Target          string   `json:"target"`
	Options         []string `json:"options"`
	MemorizeSeconds int      `json:"memorize_seconds"`
}

// MemoryImages 返回全部图片资源名
func MemoryImages() []string {
	out := make([]string, 0, memoryLastImage-memoryFirstImage+1)
	for i := memoryFirstImage; i <= memoryLastImage; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return out
}

// NewMemoryRound 选出目标图片和一张干扰图，两者顺序随机。
func NewMemoryRound(rnd *rand.Rand) MemoryRound {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	images := MemoryImages()
	target := images[rnd.Intn(len(images))]
	decoy := target
	for decoy == target {
		decoy = images[rnd.Intn(len(images))]
	}
	options := []string{target, decoy}
	rnd.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	return MemoryRound{Target: target, Options: options, MemorizeSeconds: MemorizeSeconds}
}
