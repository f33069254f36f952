package session

import (
	"context"
	"sync"

	"z-reader-session-api/internal/domain/entity"
	"z-reader-session-api/internal/domain/repository"
	"z-reader-session-api/pkg/errors"
	"z-reader-session-api/pkg/metrics"
)

// BookmarkManager 书签管理器。列表每会话只拉取一次后缓存，
// 任何写操作之后都从远端回读，缓存永远不做乐观更新，
// 远端写失败不会让可见集合与事实来源脱钩。
type BookmarkManager struct {
	repo   repository.BookmarkRepository
	bookID string

	mu     sync.Mutex
	cached []*entity.Bookmark
	loaded bool
}

// NewBookmarkManager 创建书签管理器
func NewBookmarkManager(repo repository.BookmarkRepository, bookID string) *BookmarkManager {
	return &BookmarkManager{repo: repo, bookID: bookID}
}

// List 返回书签列表，首次调用时从远端拉取
func (m *BookmarkManager) List(ctx context.Context) ([]*entity.Bookmark, error) {
	m.mu.Lock()
	if m.loaded {
		out := m.cached
		m.mu.Unlock()
		return out, nil
	}
	m.mu.Unlock()
	return m.Refresh(ctx)
}

// Refresh 强制从远端重新拉取书签列表
func (m *BookmarkManager) Refresh(ctx context.Context) ([]*entity.Bookmark, error) {
	list, err := m.repo.ListByBook(ctx, m.bookID)
	if err != nil {
		metrics.BookmarkSyncTotal.WithLabelValues("refresh", "error").Inc()
		return nil, errors.ErrBookmarkSync.WithError(err)
	}
	metrics.BookmarkSyncTotal.WithLabelValues("refresh", "ok").Inc()

	m.mu.Lock()
	m.cached = list
	m.loaded = true
	m.mu.Unlock()
	return list, nil
}

// find 在缓存中按片段 ID 查找书签
func (m *BookmarkManager) find(headingID string) *entity.Bookmark {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.cached {
		if b.HeadingID == headingID {
			return b
		}
	}
	return nil
}

// Toggle 切换片段书签：已存在则删除，否则新建。
// 任一分支成功后都从远端回读列表。返回操作后该片段是否有书签。
func (m *BookmarkManager) Toggle(ctx context.Context, heading *entity.Heading, chapterID, chapterTitle string) (bool, error) {
	if _, err := m.List(ctx); err != nil {
		return false, err
	}

	existing := m.find(heading.ID)
	added := false
	if existing != nil {
		if err := m.repo.Remove(ctx, m.bookID, existing.ID); err != nil {
			metrics.BookmarkSyncTotal.WithLabelValues("remove", "error").Inc()
			return true, errors.ErrBookmarkSync.WithError(err)
		}
		metrics.BookmarkSyncTotal.WithLabelValues("remove", "ok").Inc()
	} else {
		bookmark := entity.NewBookmark(m.bookID, heading, chapterID, chapterTitle)
		if err := m.repo.Add(ctx, bookmark); err != nil {
			metrics.BookmarkSyncTotal.WithLabelValues("add", "error").Inc()
			return false, errors.ErrBookmarkSync.WithError(err)
		}
		metrics.BookmarkSyncTotal.WithLabelValues("add", "ok").Inc()
		added = true
	}

	if _, err := m.Refresh(ctx); err != nil {
		return added, err
	}
	return added, nil
}
