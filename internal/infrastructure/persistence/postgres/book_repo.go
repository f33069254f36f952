package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"z-reader-session-api/internal/domain/entity"
)

// BookRepository 书籍文档库实现
type BookRepository struct {
	client *Client
}

// NewBookRepository 创建书籍仓储
func NewBookRepository(client *Client) *BookRepository {
	return &BookRepository{client: client}
}

// GetByID 根据 ID 获取书籍，不存在返回 (nil, nil)
func (r *BookRepository) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.GetByID")
	defer span.End()

	var book entity.Book
	if err := r.client.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &book, nil
}

// ListHeadings 获取书籍的有序片段列表。
// 顺序由 seq_num 决定，是章节推导的权威输入。
func (r *BookRepository) ListHeadings(ctx context.Context, bookID string) ([]*entity.Heading, error) {
	ctx, span := tracer.Start(ctx, "postgres.BookRepository.ListHeadings")
	defer span.End()

	var headings []*entity.Heading
	if err := r.client.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("seq_num ASC").
		Find(&headings).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list headings: %w", err)
	}
	return headings, nil
}
