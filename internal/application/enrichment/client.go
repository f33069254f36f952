// Package enrichment 实现内容增强任务管理：
// 每个具名功能一套状态机、并发幂等保护与类型化结果缓存。
package enrichment

import (
	"context"
)

// ExtractedChapter AI 抽取的章节条目
type ExtractedChapter struct {
	Title     string `json:"title"`
	PageStart int    `json:"page_start"`
	Subtitle  string `json:"subtitle,omitempty"`
}

// Summary 摘要结果
type Summary struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points,omitempty"`
}

// ThemeAnalysis 主题分析结果
type ThemeAnalysis struct {
	Themes      []string `json:"themes"`
	Mood        string   `json:"mood,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// SettingsRecommendation 阅读设置推荐结果
type SettingsRecommendation struct {
	FontSize    int     `json:"font_size"`
	FontType    string  `json:"font_type"`
	LineSpacing float64 `json:"line_spacing"`
	Explanation string  `json:"explanation,omitempty"`
}

// SuggestedBookmark 推荐书签条目
type SuggestedBookmark struct {
	HeadingID string `json:"heading_id"`
	Title     string `json:"title,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Translation 翻译结果
type Translation struct {
	Translated     string `json:"translated"`
	SourceLanguage string `json:"source_language,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
}

// SpeechMarker 朗读标记条目
type SpeechMarker struct {
	Offset   int    `json:"offset"`
	Duration int    `json:"duration_ms,omitempty"`
	Kind     string `json:"kind,omitempty"` // sentence/paragraph/emphasis
	Text     string `json:"text,omitempty"`
}

// Client AI 增强客户端接口，每个功能一个方法。
// 所有方法均可失败，失败只上升为对应功能的 error 状态。
type Client interface {
	ExtractChapters(ctx context.Context, text string) ([]ExtractedChapter, error)
	ExplainVocabulary(ctx context.Context, text, language string) (map[string]string, error)
	Summarize(ctx context.Context, text string) (*Summary, error)
	AnalyzeThemes(ctx context.Context, text string) (*ThemeAnalysis, error)
	RecommendSettings(ctx context.Context, sample string) (*SettingsRecommendation, error)
	SuggestBookmarks(ctx context.Context, text string) ([]SuggestedBookmark, error)
	Translate(ctx context.Context, text, targetLanguage string) (*Translation, error)
	GenerateSpeechMarkers(ctx context.Context, text string) ([]SpeechMarker, error)
}
