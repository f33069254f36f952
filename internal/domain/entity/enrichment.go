// Package entity 定义领域实体
package entity

// EnrichmentStatus 单个增强功能的状态。
// 状态单调迁移：initial -> loading -> {ready|error}；loading -> loading 为幂等空操作。
type EnrichmentStatus string

const (
	EnrichmentInitial EnrichmentStatus = "initial"
	EnrichmentLoading EnrichmentStatus = "loading"
	EnrichmentReady   EnrichmentStatus = "ready"
	EnrichmentError   EnrichmentStatus = "error"
)

// EnrichmentFeature 增强功能名称
type EnrichmentFeature string

const (
	FeatureChapterExtraction  EnrichmentFeature = "chapter_extraction"
	FeatureVocabulary         EnrichmentFeature = "vocabulary"
	FeatureSummary            EnrichmentFeature = "summary"
	FeatureThemeAnalysis      EnrichmentFeature = "theme_analysis"
	FeatureSettings           EnrichmentFeature = "settings_recommendation"
	FeatureBookmarkSuggestion EnrichmentFeature = "bookmark_suggestion"
	FeatureTranslation        EnrichmentFeature = "translation"
	FeatureSpeechMarkers      EnrichmentFeature = "speech_markers"
)

// AllEnrichmentFeatures 全部增强功能，用于初始化状态表
var AllEnrichmentFeatures = []EnrichmentFeature{
	FeatureChapterExtraction,
	FeatureVocabulary,
	FeatureSummary,
	FeatureThemeAnalysis,
	FeatureSettings,
	FeatureBookmarkSuggestion,
	FeatureTranslation,
	FeatureSpeechMarkers,
}

// Valid 判断功能名称是否合法
func (f EnrichmentFeature) Valid() bool {
	for _, known := range AllEnrichmentFeatures {
		if f == known {
			return true
		}
	}
	return false
}
