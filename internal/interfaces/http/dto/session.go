package dto

import (
	"z-reader-session-api/internal/application/session"
	"z-reader-session-api/internal/domain/entity"
)

// BookView 书籍元数据视图
type BookView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Language    string `json:"language,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
}

// PositionView 阅读位置视图
type PositionView struct {
	ChapterIndex int     `json:"chapter_index"`
	ScrollRatio  float64 `json:"scroll_ratio"`
}

// ChapterView 章节视图
type ChapterView struct {
	Index        int    `json:"index"`
	Key          string `json:"key"`
	Title        string `json:"title,omitempty"`
	HeadingCount int    `json:"heading_count"`
}

// HeadingView 片段视图
type HeadingView struct {
	ID      string   `json:"id"`
	Title   string   `json:"title,omitempty"`
	Content []string `json:"content"`
}

// SessionView 阅读会话视图
type SessionView struct {
	SessionID string        `json:"session_id"`
	BookID    string        `json:"book_id"`
	State     string        `json:"state"`
	Book      *BookView     `json:"book,omitempty"`
	Chapters  []ChapterView `json:"chapters,omitempty"`
	Position  *PositionView `json:"position,omitempty"`
}

// NavigateRequest 章节导航请求
type NavigateRequest struct {
	Chapter string `json:"chapter" binding:"required"`
}

// ScrollRequest 滚动位置更新请求
type ScrollRequest struct {
	ScrollRatio float64 `json:"scroll_ratio" binding:"min=0,max=1"`
}

// NewBookView 转换书籍实体
func NewBookView(b *entity.Book) *BookView {
	if b == nil {
		return nil
	}
	return &BookView{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Language:    b.Language,
		ContentType: b.ContentType,
		CoverURL:    b.CoverURL,
	}
}

// NewChapterViews 转换章节模型
func NewChapterViews(m *session.ChapterMap) []ChapterView {
	if m == nil {
		return nil
	}
	views := make([]ChapterView, 0, m.Count())
	for i := 0; i < m.Count(); i++ {
		views = append(views, ChapterView{
			Index:        i,
			Key:          m.KeyAt(i),
			Title:        m.TitleAt(i),
			HeadingCount: len(m.HeadingsAt(i)),
		})
	}
	return views
}

// NewHeadingViews 转换片段列表
func NewHeadingViews(headings []*entity.Heading) []HeadingView {
	views := make([]HeadingView, 0, len(headings))
	for _, h := range headings {
		views = append(views, HeadingView{
			ID:      h.ID,
			Title:   h.Title,
			Content: h.Content,
		})
	}
	return views
}

// NewSessionView 转换会话
func NewSessionView(s *session.Session) SessionView {
	view := SessionView{
		SessionID: s.ID,
		BookID:    s.BookID,
		State:     string(s.State()),
	}
	if s.State() == session.StateDisplaying {
		pos := s.Position()
		view.Book = NewBookView(s.Book())
		view.Chapters = NewChapterViews(s.Chapters())
		view.Position = &PositionView{
			ChapterIndex: pos.ChapterIndex,
			ScrollRatio:  pos.ScrollRatio,
		}
	}
	return view
}

// RecentBookView 最近阅读条目视图
type RecentBookView struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Author    string  `json:"author,omitempty"`
	CoverURL  string  `json:"cover_url,omitempty"`
	Progress  float64 `json:"progress"`
	FirstRead string  `json:"first_read"`
	LastRead  string  `json:"last_read"`
}
