package minigame

import (
	"fmt"
	"math/rand"
	"strings"
)

var (
	promptAdjectives   = []string{"fluffy", "glowing", "ancient", "futuristic", "tiny", "giant", "invisible", "singing", "melting", "whispering"}
	promptNouns        = []string{"robot", "cat", "spaceship", "treehouse", "mountain", "teacup", "dragon", "cloud", "bicycle", "book"}
	promptVerbs        = []string{"dancing", "flying", "exploring", "dreaming", "building", "chasing", "discovering", "hiding", "giggling", "floating"}
	promptPrepositions = []string{"on", "under", "in", "near", "behind", "through", "with", "around"}
	promptSettings     = []string{"the moon", "a magical forest", "a bustling city", "an underwater cave", "a desert island", "a cloud kingdom", "a forgotten attic", "a giant teacup"}
)

// Prompt 是美术课的随机绘画题目
type Prompt struct {
	Text        string `json:"text"`
	Adjective   string `json:"adjective"`
	Noun        string `json:"noun"`
	Verb        string `json:"verb"`
	Preposition string `json:"preposition"`
	Setting     string `json:"setting"`
}

// NewPrompt 生成形如 "Fluffy robot dancing on the moon." 的题目
func NewPrompt(rnd *rand.Rand) Prompt {
	p := Prompt{
		Adjective:   pickWord(rnd, promptAdjectives),
		Noun:        pickWord(rnd, promptNouns),
		Verb:        pickWord(rnd, promptVerbs),
		Preposition: pickWord(rnd, promptPrepositions),
		Setting:     pickWord(rnd, promptSettings),
	}
	p.Text = fmt.Sprintf("%s %s %s %s %s.", capitalize(p.Adjective), p.Noun, p.Verb, p.Preposition, p.Setting)
	return p
}

func pickWord(rnd *rand.Rand, words []string) string {
	if rnd == nil {
		return words[rand.Intn(len(words))]
	}
	return words[rnd.Intn(len(words))]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
