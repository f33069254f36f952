package session

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"z-reader-session-api/internal/domain/entity"
	"z-reader-session-api/internal/domain/repository"
	"z-reader-session-api/pkg/errors"
	"z-reader-session-api/pkg/logger"
)

// Snapshot 一次会话的内容快照：书籍元数据 + 有序片段列表。
// 加载成功后在会话生命周期内不可变。
type Snapshot struct {
	Book     *entity.Book
	Headings []*entity.Heading
}

// ContentLoader 内容加载器。幂等：重复调用返回同一快照，直到显式 Reset。
// 加载失败不自动重试，由用户通过 reload 发起。
type ContentLoader struct {
	books repository.BookRepository

	mu       sync.Mutex
	snapshot *Snapshot
}

// NewContentLoader 创建内容加载器
func NewContentLoader(books repository.BookRepository) *ContentLoader {
	return &ContentLoader{books: books}
}

// LoadBook 获取书籍元数据（会话管线的 loading_metadata 阶段）
func (l *ContentLoader) LoadBook(ctx context.Context, bookID string) (*entity.Book, error) {
	l.mu.Lock()
	if l.snapshot != nil && l.snapshot.Book != nil {
		book := l.snapshot.Book
		l.mu.Unlock()
		return book, nil
	}
	l.mu.Unlock()

	book, err := l.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, errors.ErrBookNotFound.WithDetail(bookID)
	}

	l.mu.Lock()
	l.snapshot = &Snapshot{Book: book}
	l.mu.Unlock()
	return book, nil
}

// LoadHeadings 获取有序片段列表（loading_content 阶段）。
// 同时并发预取书签缓存加载函数 warmup（可为 nil）；
// 书签拉取失败只记日志，不影响内容加载。
func (l *ContentLoader) LoadHeadings(ctx context.Context, bookID string, warmup func(context.Context) error) ([]*entity.Heading, error) {
	l.mu.Lock()
	if l.snapshot != nil && l.snapshot.Headings != nil {
		headings := l.snapshot.Headings
		l.mu.Unlock()
		return headings, nil
	}
	l.mu.Unlock()

	var headings []*entity.Heading
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		headings, err = l.books.ListHeadings(gctx, bookID)
		return err
	})
	if warmup != nil {
		g.Go(func() error {
			if err := warmup(gctx); err != nil {
				logger.Warn(gctx, "bookmark warmup failed", "book_id", bookID, "error", err.Error())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.snapshot == nil {
		l.snapshot = &Snapshot{}
	}
	l.snapshot.Headings = headings
	l.mu.Unlock()
	return headings, nil
}

// Snapshot 返回当前快照（可能不完整）
func (l *ContentLoader) Snapshot() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot
}

// Reset 丢弃快照，下一次加载重新访问文档库
func (l *ContentLoader) Reset() {
	l.mu.Lock()
	l.snapshot = nil
	l.mu.Unlock()
}
