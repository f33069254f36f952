// Package entity 定义领域实体
package entity

import (
	"strings"
	"time"
)

// Heading 内容片段实体。书籍内容以有序片段列表的形式从文档库取出，
// 顺序由存储层保证，加载后不再重排。
type Heading struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookID    string    `json:"book_id" gorm:"type:uuid;index;not null"`
	ChapterID string    `json:"chapter_id,omitempty" gorm:"type:varchar(128);index"`
	VolumeID  string    `json:"volume_id,omitempty" gorm:"type:varchar(128);index"`
	SeqNum    int       `json:"seq_num" gorm:"not null"`
	Title     string    `json:"title,omitempty" gorm:"type:varchar(255)"`
	Content   []string  `json:"content,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Heading) TableName() string {
	return "headings"
}

// Text 返回片段段落拼接后的文本
func (h *Heading) Text() string {
	return strings.Join(h.Content, "\n")
}

// FirstParagraph 返回第一个非空段落
func (h *Heading) FirstParagraph() string {
	for _, p := range h.Content {
		if strings.TrimSpace(p) != "" {
			return p
		}
	}
	return ""
}
