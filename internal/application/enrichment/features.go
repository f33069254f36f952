package enrichment

import (
	"context"
	"sync"

	"z-reader-session-api/internal/domain/entity"
)

// Results 各功能的类型化结果槽位。结果在功能迁移到 ready 的同时可见。
type Results struct {
	ExtractedChapters  []ExtractedChapter      `json:"extracted_chapters,omitempty"`
	Vocabulary         map[string]string       `json:"vocabulary,omitempty"`
	Summary            *Summary                `json:"summary,omitempty"`
	ThemeAnalysis      *ThemeAnalysis          `json:"theme_analysis,omitempty"`
	Settings           *SettingsRecommendation `json:"settings,omitempty"`
	SuggestedBookmarks []SuggestedBookmark     `json:"suggested_bookmarks,omitempty"`
	Translation        *Translation            `json:"translation,omitempty"`
	SpeechMarkers      []SpeechMarker          `json:"speech_markers,omitempty"`
}

// Features 面向一次阅读会话的增强功能集。
// 持有会话的不可变内容快照，运行结果写入类型化槽位；
// 会话重建时整个对象连同未完成任务一起被丢弃。
type Features struct {
	manager *Manager
	client  Client
	book    *entity.Book

	mu       sync.RWMutex
	headings []*entity.Heading
	results  Results
}

// NewFeatures 创建功能集
func NewFeatures(client Client, book *entity.Book, headings []*entity.Heading) *Features {
	return &Features{
		manager:  NewManager(),
		client:   client,
		book:     book,
		headings: headings,
	}
}

// Manager 返回底层任务管理器（状态查询用）
func (f *Features) Manager() *Manager {
	return f.manager
}

// Snapshot 返回当前结果槽位的副本
func (f *Features) Snapshot() Results {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.results
}

// RunChapterExtraction 章节抽取；force 为 true 时绕过 ready 短路强制重算
func (f *Features) RunChapterExtraction(ctx context.Context, force bool) (bool, error) {
	return f.manager.Run(ctx, entity.FeatureChapterExtraction, force, func(ctx context.Context) error {
		chapters, err := f.client.ExtractChapters(ctx, ConcatText(f.headings, maxChapterScanRunes))
		if err != nil {
			return err
		}
		f.mu.Lock()
		f.results.ExtractedChapters = chapters
		f.mu.Unlock()
		return nil
	})
}

// RunVocabulary 难词解释
func (f *Features) RunVocabulary(ctx context.Context) (bool, error) {
	return f.manager.Run(ctx, entity.FeatureVocabulary, false, func(ctx context.Context) error {
		words, err := f.client.ExplainVocabulary(ctx, ConcatText(f.headings, maxVocabularyRunes), f.book.Language)
		if err != nil {
			return err
		}
		f.mu.Lock()
		f.results.Vocabulary = words
		f.mu.Unlock()
		return nil
	})
}

// RunSummary 全文摘要
func (f *Features) RunSummary(ctx context.Context) (bool, error) {
	return f.manager.Run(ctx, entity.FeatureSummary, false, func(ctx context.Context) error {
		summary, err := f.client.Summarize(ctx, ConcatText(f.headings, maxSummaryInputRunes))
		if err != nil {
			return err
		}
		f.mu.Lock()
		f.results.Summary = summary
		f.mu.Unlock()
		return nil
	})
}

// RunThemeAnalysis 主题分析
func (f *Features) RunThemeAnalysis(ctx context.Context) (bool, error) {
	return f.manager.Run(ctx, entity.FeatureThemeAnalysis, false, func(ctx context.Context) error {
		themes, err := f.client.AnalyzeThemes(ctx, ConcatText(f.headings, maxThemeInputRunes))
		if err != nil {
			return err
		}
		f.mu.Lock()
		f.results.ThemeAnalysis = themes
		f.mu.Unlock()
		return nil
	})
}

// RunSettings 阅读设置推荐。正文为空时退化为只用书名采样。
func (f *Features) RunSettings(ctx context.Context) (bool, error) {
	return f.manager.Run(ctx, entity.FeatureSettings, false, func(ctx context.Context) error {
		sample := ConcatText(f.headings, maxSettingsRunes)
		if sample == "" {
			sample = f.book.Title
		}
		settings, err := f.client.RecommendSettings(ctx, sample)
		if err != nil {
			return err
		}
		f.mu.Lock()
		f.results.Settings = settings
		f.mu.Unlock()
		return nil
	})
}

// RunBookmarkSuggestion 书签推荐
func (f *Features) RunBookmarkSuggestion(ctx context.Context) (bool, error) {
	return f.manager.Run(ctx, entity.FeatureBookmarkSuggestion, false, func(ctx context.Context) error {
		suggestions, err := f.client.SuggestBookmarks(ctx, ConcatText(f.headings, maxBookmarkHintRunes))
		if err != nil {
			return err
		}
		f.mu.Lock()
		f.results.SuggestedBookmarks = suggestions
		f.mu.Unlock()
		return nil
	})
}

// RunTranslation 翻译当前章节文本
func (f *Features) RunTranslation(ctx context.Context, chapterHeadings []*entity.Heading, targetLanguage string) (bool, error) {
	return f.manager.Run(ctx, entity.FeatureTranslation, true, func(ctx context.Context) error {
		translation, err := f.client.Translate(ctx, concatAll(chapterHeadings), targetLanguage)
		if err != nil {
			return err
		}
		f.mu.Lock()
		f.results.Translation = translation
		f.mu.Unlock()
		return nil
	})
}

// RunSpeechMarkers 为当前章节生成朗读标记
func (f *Features) RunSpeechMarkers(ctx context.Context, chapterHeadings []*entity.Heading) (bool, error) {
	return f.manager.Run(ctx, entity.FeatureSpeechMarkers, true, func(ctx context.Context) error {
		markers, err := f.client.GenerateSpeechMarkers(ctx, concatAll(chapterHeadings))
		if err != nil {
			return err
		}
		f.mu.Lock()
		f.results.SpeechMarkers = markers
		f.mu.Unlock()
		return nil
	})
}

// concatAll 拼接章节内全部片段文本（章节范围天然有界，无需上限）
func concatAll(headings []*entity.Heading) string {
	var total int
	for _, h := range headings {
		total += len(h.Text())
	}
	return ConcatText(headings, total)
}
