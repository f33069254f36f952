package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"z-reader-session-api/internal/application/session"
	"z-reader-session-api/internal/domain/entity"
	"z-reader-session-api/internal/interfaces/http/dto"
	"z-reader-session-api/pkg/errors"
)

// EnrichmentHandler 内容增强处理器
type EnrichmentHandler struct {
	registry *session.Registry
}

// NewEnrichmentHandler 创建增强处理器
func NewEnrichmentHandler(registry *session.Registry) *EnrichmentHandler {
	return &EnrichmentHandler{registry: registry}
}

// Run 运行一个增强功能
// POST /v1/books/:bid/enrich/:feature
func (h *EnrichmentHandler) Run(c *gin.Context) {
	var req dto.EnrichRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			dto.BadRequest(c, "invalid enrich request: "+err.Error())
			return
		}
	}
	if c.Query("force") == "true" {
		req.Force = true
	}

	s, err := h.registry.Get(c.Param("bid"))
	if err != nil {
		respondError(c, err)
		return
	}
	features, err := s.Features(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	feature := entity.EnrichmentFeature(c.Param("feature"))

	var started bool
	switch feature {
	case entity.FeatureChapterExtraction:
		started, err = features.RunChapterExtraction(ctx, req.Force)
	case entity.FeatureVocabulary:
		started, err = features.RunVocabulary(ctx)
	case entity.FeatureSummary:
		started, err = features.RunSummary(ctx)
	case entity.FeatureThemeAnalysis:
		started, err = features.RunThemeAnalysis(ctx)
	case entity.FeatureSettings:
		started, err = features.RunSettings(ctx)
	case entity.FeatureBookmarkSuggestion:
		started, err = features.RunBookmarkSuggestion(ctx)
	case entity.FeatureTranslation:
		if req.TargetLanguage == "" {
			dto.BadRequest(c, "target_language is required for translation")
			return
		}
		started, err = runOnCurrentChapter(ctx, s, func(headings []*entity.Heading) (bool, error) {
			return features.RunTranslation(ctx, headings, req.TargetLanguage)
		})
	case entity.FeatureSpeechMarkers:
		started, err = runOnCurrentChapter(ctx, s, func(headings []*entity.Heading) (bool, error) {
			return features.RunSpeechMarkers(ctx, headings)
		})
	default:
		dto.BadRequest(c, "unknown enrichment feature: "+string(feature))
		return
	}

	if err != nil {
		if errors.IsAppError(err) {
			respondError(c, err)
		} else {
			respondError(c, errors.ErrEnrichmentFailed.WithError(err))
		}
		return
	}

	status := features.Manager().Status(feature)
	result := dto.EnrichmentRunResult{
		Feature: string(feature),
		Status:  string(status),
		Started: started,
	}

	// 运行中被拒绝：返回 202，结果待查询
	if !started && status == entity.EnrichmentLoading {
		dto.Accepted(c, result)
		return
	}

	snapshot := features.Snapshot()
	result.Results = &snapshot
	dto.Success(c, result)
}

// Status 查询全部增强功能状态
// GET /v1/books/:bid/enrich
func (h *EnrichmentHandler) Status(c *gin.Context) {
	s, err := h.registry.Get(c.Param("bid"))
	if err != nil {
		respondError(c, err)
		return
	}
	features, err := s.Features(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.NewEnrichmentStatusViews(features.Manager()))
}

// FeatureStatus 查询单个功能的状态与结果
// GET /v1/books/:bid/enrich/:feature
func (h *EnrichmentHandler) FeatureStatus(c *gin.Context) {
	feature := entity.EnrichmentFeature(c.Param("feature"))
	if !feature.Valid() {
		dto.BadRequest(c, "unknown enrichment feature: "+string(feature))
		return
	}

	s, err := h.registry.Get(c.Param("bid"))
	if err != nil {
		respondError(c, err)
		return
	}
	features, err := s.Features(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.NewEnrichmentFeatureView(features.Manager(), feature, features.Snapshot()))
}

// runOnCurrentChapter 以当前章节片段为输入运行功能
func runOnCurrentChapter(ctx context.Context, s *session.Session, run func([]*entity.Heading) (bool, error)) (bool, error) {
	headings, err := s.CurrentChapterHeadings(ctx)
	if err != nil {
		return false, err
	}
	return run(headings)
}
