package postgres

import (
	"context"
	"fmt"

	"z-reader-session-api/internal/domain/entity"
)

// BookmarkRepository 书签仓储实现，扮演远端事实来源
type BookmarkRepository struct {
	client *Client
}

// NewBookmarkRepository 创建书签仓储
func NewBookmarkRepository(client *Client) *BookmarkRepository {
	return &BookmarkRepository{client: client}
}

// ListByBook 获取一本书的全部书签，按创建时间倒序
func (r *BookmarkRepository) ListByBook(ctx context.Context, bookID string) ([]*entity.Bookmark, error) {
	ctx, span := tracer.Start(ctx, "postgres.BookmarkRepository.ListByBook")
	defer span.End()

	var bookmarks []*entity.Bookmark
	if err := r.client.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Find(&bookmarks).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	return bookmarks, nil
}

// Add 创建书签
func (r *BookmarkRepository) Add(ctx context.Context, bookmark *entity.Bookmark) error {
	ctx, span := tracer.Start(ctx, "postgres.BookmarkRepository.Add")
	defer span.End()

	if err := r.client.db.WithContext(ctx).Create(bookmark).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to add bookmark: %w", err)
	}
	return nil
}

// Remove 删除书签。删除不存在的书签是空操作。
func (r *BookmarkRepository) Remove(ctx context.Context, bookID, bookmarkID string) error {
	ctx, span := tracer.Start(ctx, "postgres.BookmarkRepository.Remove")
	defer span.End()

	if err := r.client.db.WithContext(ctx).
		Where("book_id = ? AND id = ?", bookID, bookmarkID).
		Delete(&entity.Bookmark{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to remove bookmark: %w", err)
	}
	return nil
}
