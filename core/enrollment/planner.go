package enrollment

import (
	"fmt"
	"strings"

	"github.com/mehy12/edumate/core"
)

const (
	bonusWordsThreshold = 2000 // topics strictly longer than this get bonus classes
	minChunkLen         = 20
)

var wordsPerClass = map[LearningSpeed]int{
	SpeedSlow:   250,
	SpeedNormal: 400,
	SpeedFast:   800,
}

// ParseLearningSpeed normalizes `s`; anything unknown falls back to SpeedNormal.
func ParseLearningSpeed(s string) LearningSpeed {
	speed := LearningSpeed(core.CleanString(s, true /* lower */))
	if _, ok := wordsPerClass[speed]; ok {
		return speed
	}
	return SpeedNormal
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// EstimateClasses returns how many classes are needed to cover `topic` at `speed`. Always >= 1.
func EstimateClasses(topic string, speed LearningSpeed) int {
	words := len(strings.Fields(topic))

	rate, ok := wordsPerClass[speed]
	if !ok {
		rate = wordsPerClass[SpeedNormal]
	}

	base := ceilDiv(words, rate)
	if base < 1 {
		base = 1
	}
	var extra int
	if words > bonusWordsThreshold {
		extra = ceilDiv(words, bonusWordsThreshold)
	}
	return base + extra
}

// GenerateSessionPlan returns `classCount` session stubs for `topic`, in session index order.
//
// Every title previews the same leading slice of the topic; the parts are not disjoint chunks.
// TODO: split on sentence boundaries so each part previews its own portion of the topic.
func GenerateSessionPlan(topic string, classCount int) []SessionStub {
	if classCount <= 0 {
		return []SessionStub{}
	}

	runes := []rune(topic)
	chunkLen := len(runes) / classCount
	if chunkLen < minChunkLen {
		chunkLen = minChunkLen
	}
	if chunkLen > len(runes) {
		chunkLen = len(runes)
	}
	preview := string(runes[:chunkLen])

	plan := make([]SessionStub, 0, classCount)
	for i := 0; i < classCount; i++ {
		plan = append(plan, SessionStub{Title: fmt.Sprintf("Part %d: %s", i+1, preview)})
	}
	return plan
}
