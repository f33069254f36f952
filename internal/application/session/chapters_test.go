package session

import (
	"errors"
	"testing"

	"z-reader-session-api/internal/domain/entity"
	apperrors "z-reader-session-api/pkg/errors"
)

func TestDeriveChaptersFirstSeenOrder(t *testing.T) {
	// 交错出现的章节键按首次出现排序，后续重现不改变次序
	m := DeriveChapters([]*entity.Heading{
		heading("h1", "chapA", "", "A1"),
		heading("h2", "chapB", "", "B1"),
		heading("h3", "chapA", "", "A2"),
	})

	if got := m.Count(); got != 2 {
		t.Fatalf("Count() = %d, want 2", got)
	}
	if m.KeyAt(0) != "chapA" || m.KeyAt(1) != "chapB" {
		t.Fatalf("keys = [%s, %s], want [chapA, chapB]", m.KeyAt(0), m.KeyAt(1))
	}
	if got := len(m.HeadingsAt(0)); got != 2 {
		t.Fatalf("chapA headings = %d, want 2", got)
	}
	if got := len(m.HeadingsAt(1)); got != 1 {
		t.Fatalf("chapB headings = %d, want 1", got)
	}
}

func TestChapterKeyPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		heading *entity.Heading
		want    string
	}{
		{"chapter id wins", heading("h1", "chap1", "vol1", ""), "chap1"},
		{"volume id fallback", heading("h2", "", "vol1", ""), "vol1"},
		{"default fallback", heading("h3", "", "", ""), DefaultChapterKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChapterKeyOf(tt.heading); got != tt.want {
				t.Errorf("ChapterKeyOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveIndex(t *testing.T) {
	m := DeriveChapters([]*entity.Heading{
		heading("h1", "chap1", "", ""),
		heading("h2", "chap2", "", ""),
		heading("h3", "chap3", "", ""),
	})

	tests := []struct {
		name    string
		ref     string
		want    int
		wantErr bool
	}{
		{"exact key", "chap2", 1, false},
		{"zero based numeral", "1", 1, false},
		{"zero index", "0", 0, false},
		{"one based fallback", "3", 2, false},
		{"out of range numeral", "5", 0, true},
		{"negative numeral", "-2", 0, true},
		{"unknown key", "chapX", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.ResolveIndex(tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ResolveIndex(%q) error = nil, want ErrChapterNotFound", tt.ref)
				}
				if !errors.Is(err, apperrors.ErrChapterNotFound) {
					t.Fatalf("ResolveIndex(%q) error = %v, want ErrChapterNotFound", tt.ref, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveIndex(%q) error = %v", tt.ref, err)
			}
			if got != tt.want {
				t.Errorf("ResolveIndex(%q) = %d, want %d", tt.ref, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	m := DeriveChapters([]*entity.Heading{
		heading("h1", "chap1", "", ""),
		heading("h2", "chap2", "", ""),
	})

	tests := []struct {
		idx  int
		want int
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{7, 1},
	}
	for _, tt := range tests {
		if got := m.Clamp(tt.idx); got != tt.want {
			t.Errorf("Clamp(%d) = %d, want %d", tt.idx, got, tt.want)
		}
	}

	empty := DeriveChapters(nil)
	if got := empty.Clamp(3); got != 0 {
		t.Errorf("empty Clamp(3) = %d, want 0", got)
	}
}

func TestTitleAtSkipsUntitled(t *testing.T) {
	m := DeriveChapters([]*entity.Heading{
		heading("h1", "chap1", "", ""),
		heading("h2", "chap1", "", "第一章"),
	})
	if got := m.TitleAt(0); got != "第一章" {
		t.Errorf("TitleAt(0) = %q, want %q", got, "第一章")
	}
}
