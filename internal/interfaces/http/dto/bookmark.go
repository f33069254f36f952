package dto

import (
	"time"

	"z-reader-session-api/internal/domain/entity"
)

// BookmarkView 书签视图
type BookmarkView struct {
	ID           string `json:"id"`
	HeadingID    string `json:"heading_id"`
	ChapterID    string `json:"chapter_id,omitempty"`
	ChapterTitle string `json:"chapter_title,omitempty"`
	HeadingTitle string `json:"heading_title,omitempty"`
	Snippet      string `json:"snippet,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// ToggleBookmarkRequest 书签切换请求
type ToggleBookmarkRequest struct {
	HeadingID string `json:"heading_id" binding:"required"`
}

// ToggleBookmarkResult 书签切换结果
type ToggleBookmarkResult struct {
	HeadingID  string `json:"heading_id"`
	Bookmarked bool   `json:"bookmarked"`
}

// NewBookmarkViews 转换书签列表
func NewBookmarkViews(bookmarks []*entity.Bookmark) []BookmarkView {
	views := make([]BookmarkView, 0, len(bookmarks))
	for _, b := range bookmarks {
		views = append(views, BookmarkView{
			ID:           b.ID,
			HeadingID:    b.HeadingID,
			ChapterID:    b.ChapterID,
			ChapterTitle: b.ChapterTitle,
			HeadingTitle: b.HeadingTitle,
			Snippet:      b.TextContentSnippet,
			CreatedAt:    b.CreatedAt.Format(time.RFC3339),
		})
	}
	return views
}
