// Package entity 定义领域实体
package entity

import (
	"time"
	"unicode/utf8"
)

// SnippetMaxRunes 书签摘录的最大长度（按 rune 计）
const SnippetMaxRunes = 100

// Bookmark 书签实体。书签 ID 即片段 ID，一个片段同一时刻至多一个书签。
type Bookmark struct {
	ID                 string    `json:"id" gorm:"type:varchar(128);primaryKey"`
	BookID             string    `json:"book_id" gorm:"type:uuid;uniqueIndex:idx_bookmarks_book_heading,priority:1;not null"`
	ChapterID          string    `json:"chapter_id,omitempty" gorm:"type:varchar(128)"`
	ChapterTitle       string    `json:"chapter_title,omitempty" gorm:"type:varchar(255)"`
	HeadingID          string    `json:"heading_id" gorm:"type:varchar(128);uniqueIndex:idx_bookmarks_book_heading,priority:2;not null"`
	HeadingTitle       string    `json:"heading_title,omitempty" gorm:"type:varchar(255)"`
	TextContentSnippet string    `json:"text_content_snippet,omitempty" gorm:"type:varchar(255)"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Bookmark) TableName() string {
	return "bookmarks"
}

// NewBookmark 从片段构建书签，摘录取首个段落的前 100 个字符
func NewBookmark(bookID string, heading *Heading, chapterID, chapterTitle string) *Bookmark {
	return &Bookmark{
		ID:                 heading.ID,
		BookID:             bookID,
		ChapterID:          chapterID,
		ChapterTitle:       chapterTitle,
		HeadingID:          heading.ID,
		HeadingTitle:       heading.Title,
		TextContentSnippet: Snippet(heading.FirstParagraph()),
		CreatedAt:          time.Now(),
	}
}

// Snippet 截取书签摘录：前 100 个 rune，截断时追加省略标记
func Snippet(text string) string {
	if utf8.RuneCountInString(text) <= SnippetMaxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:SnippetMaxRunes]) + "..."
}
