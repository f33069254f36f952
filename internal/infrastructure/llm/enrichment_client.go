package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	"z-reader-session-api/internal/application/enrichment"
	"z-reader-session-api/internal/config"
	"z-reader-session-api/pkg/errors"
	"z-reader-session-api/pkg/logger"
	"z-reader-session-api/pkg/metrics"
)

// EnrichmentClient enrichment.Client 的 Eino 实现。
// 每个功能一条固定提示词，要求模型输出纯 JSON，
// 解析前先剥掉可能的围栏与前后缀噪音。
type EnrichmentClient struct {
	factory  *EinoFactory
	provider string
	model    string
}

// NewEnrichmentClient 创建增强客户端
func NewEnrichmentClient(factory *EinoFactory, cfg *config.LLMConfig) *EnrichmentClient {
	provider := cfg.DefaultProvider
	modelName := ""
	if p, ok := cfg.Providers[provider]; ok {
		modelName = p.Model
	}
	return &EnrichmentClient{
		factory:  factory,
		provider: provider,
		model:    modelName,
	}
}

// generate 调用默认 ChatModel 并返回文本输出
func (c *EnrichmentClient) generate(ctx context.Context, system, user string) (string, error) {
	chatModel, err := c.factory.Default(ctx)
	if err != nil {
		return "", errors.ErrLLMCallFailed.WithError(err)
	}

	start := time.Now()
	out, err := chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	})
	metrics.LLMCallDuration.WithLabelValues(c.provider, c.model).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		logger.Error(ctx, "llm generate failed", err, "provider", c.provider)
		return "", errors.ErrLLMCallFailed.WithError(err)
	}
	metrics.LLMCallTotal.WithLabelValues(c.provider, c.model, "ok").Inc()

	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		metrics.LLMTokensUsed.WithLabelValues(c.provider, c.model, "prompt").
			Add(float64(out.ResponseMeta.Usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(c.provider, c.model, "completion").
			Add(float64(out.ResponseMeta.Usage.CompletionTokens))
	}
	return out.Content, nil
}

// generateJSON 调用模型并把输出解析到 v
func (c *EnrichmentClient) generateJSON(ctx context.Context, system, user string, v any) error {
	content, err := c.generate(ctx, system, user)
	if err != nil {
		return err
	}
	raw := ExtractJSONObject(content)
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return errors.ErrLLMCallFailed.WithError(fmt.Errorf("unparseable model output: %w", err))
	}
	return nil
}

// ExtractChapters 从正文样本中抽取章节结构
func (c *EnrichmentClient) ExtractChapters(ctx context.Context, text string) ([]enrichment.ExtractedChapter, error) {
	system := "你是图书结构分析助手。从给定正文中识别章节结构，" +
		`以 JSON 数组输出，元素形如 {"title": "...", "page_start": 1, "subtitle": "..."}，不要输出其他内容。`
	var chapters []enrichment.ExtractedChapter
	if err := c.generateJSON(ctx, system, text, &chapters); err != nil {
		return nil, err
	}
	return chapters, nil
}

// ExplainVocabulary 解释正文中的疑难词汇
func (c *EnrichmentClient) ExplainVocabulary(ctx context.Context, text, language string) (map[string]string, error) {
	system := fmt.Sprintf("你是语言学习助手。找出给定文本（语言：%s）中的疑难词汇并给出简明解释，"+
		`以 JSON 对象输出，键为词汇、值为解释，不要输出其他内容。`, language)
	var words map[string]string
	if err := c.generateJSON(ctx, system, text, &words); err != nil {
		return nil, err
	}
	return words, nil
}

// Summarize 生成全文摘要
func (c *EnrichmentClient) Summarize(ctx context.Context, text string) (*enrichment.Summary, error) {
	system := "你是阅读助手。为给定正文生成摘要，" +
		`以 JSON 对象输出，形如 {"summary": "...", "key_points": ["..."]}，不要输出其他内容。`
	var summary enrichment.Summary
	if err := c.generateJSON(ctx, system, text, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// AnalyzeThemes 分析正文主题
func (c *EnrichmentClient) AnalyzeThemes(ctx context.Context, text string) (*enrichment.ThemeAnalysis, error) {
	system := "你是文学分析助手。分析给定正文的主题与基调，" +
		`以 JSON 对象输出，形如 {"themes": ["..."], "mood": "...", "explanation": "..."}，不要输出其他内容。`
	var themes enrichment.ThemeAnalysis
	if err := c.generateJSON(ctx, system, text, &themes); err != nil {
		return nil, err
	}
	return &themes, nil
}

// RecommendSettings 根据正文样本推荐阅读排版设置
func (c *EnrichmentClient) RecommendSettings(ctx context.Context, sample string) (*enrichment.SettingsRecommendation, error) {
	system := "你是阅读体验顾问。根据正文样本推荐适合的排版设置，" +
		`以 JSON 对象输出，形如 {"font_size": 16, "font_type": "serif", "line_spacing": 1.5, "explanation": "..."}，不要输出其他内容。`
	var settings enrichment.SettingsRecommendation
	if err := c.generateJSON(ctx, system, sample, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// SuggestBookmarks 推荐值得收藏的片段
func (c *EnrichmentClient) SuggestBookmarks(ctx context.Context, text string) ([]enrichment.SuggestedBookmark, error) {
	system := "你是阅读助手。从给定正文中挑选值得收藏的片段，" +
		`以 JSON 数组输出，元素形如 {"heading_id": "...", "title": "...", "reason": "..."}，不要输出其他内容。`
	var suggestions []enrichment.SuggestedBookmark
	if err := c.generateJSON(ctx, system, text, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

// Translate 翻译正文到目标语言
func (c *EnrichmentClient) Translate(ctx context.Context, text, targetLanguage string) (*enrichment.Translation, error) {
	system := fmt.Sprintf("你是专业译者。将给定正文翻译为 %s，"+
		`以 JSON 对象输出，形如 {"translated": "...", "source_language": "...", "target_language": "..."}，不要输出其他内容。`, targetLanguage)
	var translation enrichment.Translation
	if err := c.generateJSON(ctx, system, text, &translation); err != nil {
		return nil, err
	}
	return &translation, nil
}

// GenerateSpeechMarkers 为正文生成朗读标记
func (c *EnrichmentClient) GenerateSpeechMarkers(ctx context.Context, text string) ([]enrichment.SpeechMarker, error) {
	system := "你是朗读引擎的预处理器。为给定正文划分朗读单元并标注停顿，" +
		`以 JSON 数组输出，元素形如 {"offset": 0, "duration_ms": 800, "kind": "sentence", "text": "..."}，不要输出其他内容。`
	var markers []enrichment.SpeechMarker
	if err := c.generateJSON(ctx, system, text, &markers); err != nil {
		return nil, err
	}
	return markers, nil
}
