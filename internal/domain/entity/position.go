// Package entity 定义领域实体
package entity

// ReadingPosition 阅读位置。ChapterIndex 始终被钳制在 [0, chapterCount-1]，
// ScrollRatio 取值范围 [0,1]。
type ReadingPosition struct {
	ChapterIndex int     `json:"chapter_index"`
	ScrollRatio  float64 `json:"scroll_ratio"`
}

// DefaultReadingPosition 返回默认阅读位置（卷首）
func DefaultReadingPosition() ReadingPosition {
	return ReadingPosition{ChapterIndex: 0, ScrollRatio: 0.0}
}

// Normalize 将滚动比例收敛到 [0,1]
func (p ReadingPosition) Normalize() ReadingPosition {
	if p.ScrollRatio < 0 {
		p.ScrollRatio = 0
	}
	if p.ScrollRatio > 1 {
		p.ScrollRatio = 1
	}
	if p.ChapterIndex < 0 {
		p.ChapterIndex = 0
	}
	return p
}
