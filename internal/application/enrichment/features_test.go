package enrichment

import (
	"context"
	"strings"
	"testing"

	"z-reader-session-api/internal/domain/entity"
)

// fakeClient 返回固定结果并记录收到的输入
type fakeClient struct {
	lastText     string
	lastLanguage string
	summaryCalls int
}

func (f *fakeClient) ExtractChapters(ctx context.Context, text string) ([]ExtractedChapter, error) {
	f.lastText = text
	return []ExtractedChapter{{Title: "第一章", PageStart: 1}}, nil
}

func (f *fakeClient) ExplainVocabulary(ctx context.Context, text, language string) (map[string]string, error) {
	f.lastText = text
	f.lastLanguage = language
	return map[string]string{"晦涩": "难以理解"}, nil
}

func (f *fakeClient) Summarize(ctx context.Context, text string) (*Summary, error) {
	f.lastText = text
	f.summaryCalls++
	return &Summary{Summary: "概要"}, nil
}

func (f *fakeClient) AnalyzeThemes(ctx context.Context, text string) (*ThemeAnalysis, error) {
	f.lastText = text
	return &ThemeAnalysis{Themes: []string{"成长"}}, nil
}

func (f *fakeClient) RecommendSettings(ctx context.Context, sample string) (*SettingsRecommendation, error) {
	f.lastText = sample
	return &SettingsRecommendation{FontSize: 16, FontType: "serif", LineSpacing: 1.5}, nil
}

func (f *fakeClient) SuggestBookmarks(ctx context.Context, text string) ([]SuggestedBookmark, error) {
	f.lastText = text
	return []SuggestedBookmark{{HeadingID: "h1"}}, nil
}

func (f *fakeClient) Translate(ctx context.Context, text, targetLanguage string) (*Translation, error) {
	f.lastText = text
	f.lastLanguage = targetLanguage
	return &Translation{Translated: "translated", TargetLanguage: targetLanguage}, nil
}

func (f *fakeClient) GenerateSpeechMarkers(ctx context.Context, text string) ([]SpeechMarker, error) {
	f.lastText = text
	return []SpeechMarker{{Offset: 0, Kind: "sentence"}}, nil
}

func testHeadings() []*entity.Heading {
	return []*entity.Heading{
		{ID: "h1", ChapterID: "chap1", Title: "第一章", Content: []string{"第一段", "第二段"}},
		{ID: "h2", ChapterID: "chap2", Title: "第二章", Content: []string{"第三段"}},
	}
}

func TestFeaturesSummaryWritesTypedSlot(t *testing.T) {
	client := &fakeClient{}
	book := &entity.Book{ID: "book-1", Title: "书", Language: "zh"}
	f := NewFeatures(client, book, testHeadings())
	ctx := context.Background()

	started, err := f.RunSummary(ctx)
	if err != nil {
		t.Fatalf("RunSummary() error = %v", err)
	}
	if !started {
		t.Fatal("RunSummary() started = false, want true")
	}

	got := f.Snapshot()
	if got.Summary == nil || got.Summary.Summary != "概要" {
		t.Fatalf("Snapshot().Summary = %+v, want 概要", got.Summary)
	}
	if got.Vocabulary != nil {
		t.Fatal("unrelated slot mutated by summary run")
	}
	if !strings.Contains(client.lastText, "第一段") || !strings.Contains(client.lastText, "第三段") {
		t.Fatalf("summary input = %q, want concatenated headings", client.lastText)
	}

	// ready 短路：第二次不再调用客户端
	started, err = f.RunSummary(ctx)
	if err != nil {
		t.Fatalf("second RunSummary() error = %v", err)
	}
	if started || client.summaryCalls != 1 {
		t.Fatalf("second RunSummary(): started = %v, calls = %d, want cached", started, client.summaryCalls)
	}
}

func TestFeaturesVocabularyPassesBookLanguage(t *testing.T) {
	client := &fakeClient{}
	book := &entity.Book{ID: "book-1", Language: "zh"}
	f := NewFeatures(client, book, testHeadings())

	if _, err := f.RunVocabulary(context.Background()); err != nil {
		t.Fatalf("RunVocabulary() error = %v", err)
	}
	if client.lastLanguage != "zh" {
		t.Fatalf("language = %q, want zh", client.lastLanguage)
	}
	if got := f.Snapshot().Vocabulary["晦涩"]; got != "难以理解" {
		t.Fatalf("vocabulary slot = %q, want explanation", got)
	}
}

func TestFeaturesSettingsFallsBackToTitle(t *testing.T) {
	client := &fakeClient{}
	book := &entity.Book{ID: "book-1", Title: "空书"}
	f := NewFeatures(client, book, nil)

	if _, err := f.RunSettings(context.Background()); err != nil {
		t.Fatalf("RunSettings() error = %v", err)
	}
	if client.lastText != "空书" {
		t.Fatalf("settings sample = %q, want book title fallback", client.lastText)
	}
}

func TestFeaturesTranslationRecomputesPerChapter(t *testing.T) {
	client := &fakeClient{}
	book := &entity.Book{ID: "book-1", Language: "zh"}
	f := NewFeatures(client, book, testHeadings())
	ctx := context.Background()
	chapter := testHeadings()[:1]

	if _, err := f.RunTranslation(ctx, chapter, "en"); err != nil {
		t.Fatalf("RunTranslation() error = %v", err)
	}
	if client.lastLanguage != "en" {
		t.Fatalf("target language = %q, want en", client.lastLanguage)
	}

	// 章节切换后重译：force 语义下第二次仍然执行
	started, err := f.RunTranslation(ctx, testHeadings()[1:], "en")
	if err != nil {
		t.Fatalf("second RunTranslation() error = %v", err)
	}
	if !started {
		t.Fatal("second RunTranslation() started = false, want recompute")
	}
	if !strings.Contains(client.lastText, "第三段") {
		t.Fatalf("translation input = %q, want second chapter text", client.lastText)
	}
}

func TestConcatTextTruncatesAtRuneBoundary(t *testing.T) {
	headings := []*entity.Heading{
		{ID: "h1", Content: []string{"一二三四五"}},
		{ID: "h2", Content: []string{"六七八九十"}},
	}

	got := ConcatText(headings, 7)
	want := "一二三四五\n\n六七"
	if got != want {
		t.Fatalf("ConcatText() = %q, want %q", got, want)
	}

	if got := ConcatText(headings, 0); got != "" {
		t.Fatalf("ConcatText(0) = %q, want empty", got)
	}
	if got := ConcatText(nil, 100); got != "" {
		t.Fatalf("ConcatText(nil) = %q, want empty", got)
	}
}
