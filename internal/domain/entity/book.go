// Package entity 定义领域实体
package entity

import (
	"time"
)

// Book 书籍实体。会话期间元数据不可变，由会话编排器持有。
type Book struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Author      string    `json:"author,omitempty" gorm:"type:varchar(255)"`
	Language    string    `json:"language,omitempty" gorm:"type:varchar(16)"`
	ContentType string    `json:"content_type,omitempty" gorm:"type:varchar(50)"`
	CoverURL    string    `json:"cover_url,omitempty" gorm:"type:varchar(512)"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Book) TableName() string {
	return "books"
}
