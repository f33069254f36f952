// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"z-reader-session-api/internal/domain/entity"
)

// BookRepository 书籍仓储接口（文档库协作方）
type BookRepository interface {
	// GetByID 根据 ID 获取书籍，未找到返回 errors.ErrBookNotFound
	GetByID(ctx context.Context, id string) (*entity.Book, error)

	// ListHeadings 获取书籍的全部内容片段（按 seq_num 升序，存储层保证顺序）
	ListHeadings(ctx context.Context, bookID string) ([]*entity.Heading, error)
}
