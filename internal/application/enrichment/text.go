package enrichment

import (
	"strings"

	"z-reader-session-api/internal/domain/entity"
)

// 各功能的输入上限（按 rune 计）。这些上限是为控制下游模型
// 成本与时延的固定设计值，按功能各自独立、确定可复现。
const (
	maxSummaryInputRunes = 5000
	maxThemeInputRunes   = 5000
	maxVocabularyRunes   = 3000
	maxSettingsRunes     = 1000
	maxBookmarkHintRunes = 10000
	maxChapterScanRunes  = 10000
)

// ConcatText 按顺序拼接片段文本，累计到 maxRunes 即截断。
// 超长片段在 rune 边界截断，保证不会把多字节字符劈开。
func ConcatText(headings []*entity.Heading, maxRunes int) string {
	var b strings.Builder
	remaining := maxRunes
	for _, h := range headings {
		if remaining <= 0 {
			break
		}
		text := h.Text()
		if text == "" {
			continue
		}
		runes := []rune(text)
		if len(runes) > remaining {
			runes = runes[:remaining]
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(string(runes))
		remaining -= len(runes)
	}
	return b.String()
}
