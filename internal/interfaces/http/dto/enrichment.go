package dto

import (
	"z-reader-session-api/internal/application/enrichment"
	"z-reader-session-api/internal/domain/entity"
)

// EnrichRequest 增强任务运行请求
type EnrichRequest struct {
	// Force 强制重算（仅 chapter_extraction 支持）
	Force bool `json:"force"`
	// TargetLanguage 翻译目标语言（仅 translation 需要）
	TargetLanguage string `json:"target_language"`
}

// EnrichmentStatusView 单个功能状态视图
type EnrichmentStatusView struct {
	Feature string `json:"feature"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// EnrichmentRunResult 一次运行的结果视图
type EnrichmentRunResult struct {
	Feature string              `json:"feature"`
	Status  string              `json:"status"`
	Started bool                `json:"started"`
	Results *enrichment.Results `json:"results,omitempty"`
}

// EnrichmentFeatureView 单个功能的状态与类型化结果视图
type EnrichmentFeatureView struct {
	Feature string `json:"feature"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// NewEnrichmentStatusViews 转换全部功能状态
func NewEnrichmentStatusViews(m *enrichment.Manager) []EnrichmentStatusView {
	all := m.All()
	views := make([]EnrichmentStatusView, 0, len(entity.AllEnrichmentFeatures))
	for _, f := range entity.AllEnrichmentFeatures {
		view := EnrichmentStatusView{
			Feature: string(f),
			Status:  string(all[f]),
		}
		if err := m.Err(f); err != nil {
			view.Error = err.Error()
		}
		views = append(views, view)
	}
	return views
}

// NewEnrichmentFeatureView 转换单个功能的状态，ready 时附带其类型化结果槽位
func NewEnrichmentFeatureView(m *enrichment.Manager, feature entity.EnrichmentFeature, results enrichment.Results) EnrichmentFeatureView {
	view := EnrichmentFeatureView{
		Feature: string(feature),
		Status:  string(m.Status(feature)),
	}
	if err := m.Err(feature); err != nil {
		view.Error = err.Error()
	}
	if m.Status(feature) != entity.EnrichmentReady {
		return view
	}
	switch feature {
	case entity.FeatureChapterExtraction:
		view.Result = results.ExtractedChapters
	case entity.FeatureVocabulary:
		view.Result = results.Vocabulary
	case entity.FeatureSummary:
		view.Result = results.Summary
	case entity.FeatureThemeAnalysis:
		view.Result = results.ThemeAnalysis
	case entity.FeatureSettings:
		view.Result = results.Settings
	case entity.FeatureBookmarkSuggestion:
		view.Result = results.SuggestedBookmarks
	case entity.FeatureTranslation:
		view.Result = results.Translation
	case entity.FeatureSpeechMarkers:
		view.Result = results.SpeechMarkers
	}
	return view
}
