// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"z-reader-session-api/internal/domain/entity"
)

// BookmarkRepository 书签仓储接口（书签存储即事实来源，
// 会话内缓存永远从这里回读，不做乐观更新）
type BookmarkRepository interface {
	// ListByBook 获取书籍的全部书签
	ListByBook(ctx context.Context, bookID string) ([]*entity.Bookmark, error)

	// Add 新增书签
	Add(ctx context.Context, bookmark *entity.Bookmark) error

	// Remove 删除书签
	Remove(ctx context.Context, bookID, bookmarkID string) error
}
