package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"z-reader-session-api/internal/domain/entity"
	"z-reader-session-api/internal/domain/repository"
	"z-reader-session-api/pkg/logger"
)

// recentBooksKey 最近阅读列表在键值存储中的键
const recentBooksKey = "recent_books"

// DefaultRecentBooksCap 最近阅读列表默认容量
const DefaultRecentBooksCap = 20

// RecentBooks 最近阅读列表：按 id 去重、最近优先、容量封顶。
type RecentBooks struct {
	kv  repository.KeyValueStore
	cap int
	now func() time.Time
}

// NewRecentBooks 创建最近阅读列表；cap <= 0 时使用默认容量 20
func NewRecentBooks(kv repository.KeyValueStore, cap int) *RecentBooks {
	if cap <= 0 {
		cap = DefaultRecentBooksCap
	}
	return &RecentBooks{kv: kv, cap: cap, now: time.Now}
}

// List 读取最近阅读列表。记录损坏时自愈为空列表。
func (r *RecentBooks) List(ctx context.Context) ([]entity.RecentBook, error) {
	raw, ok, err := r.kv.GetString(ctx, recentBooksKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent books: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var list []entity.RecentBook
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		logger.Warn(ctx, "corrupted recent books record, resetting", "error", err.Error())
		if delErr := r.kv.Delete(ctx, recentBooksKey); delErr != nil {
			logger.Error(ctx, "failed to delete corrupted recent books record", delErr)
		}
		return nil, nil
	}
	return list, nil
}

// Touch 记录一次阅读：已有条目前移并更新进度，否则头插新条目，超出容量截断。
func (r *RecentBooks) Touch(ctx context.Context, book *entity.Book, progress float64) error {
	list, err := r.List(ctx)
	if err != nil {
		return err
	}

	now := r.now()
	entry := entity.RecentBook{
		ID:        book.ID,
		Title:     book.Title,
		Author:    book.Author,
		CoverURL:  book.CoverURL,
		Progress:  progress,
		FirstRead: now,
		LastRead:  now,
	}

	out := make([]entity.RecentBook, 0, len(list)+1)
	for _, e := range list {
		if e.ID == book.ID {
			entry.FirstRead = e.FirstRead
			continue
		}
		out = append(out, e)
	}
	out = append([]entity.RecentBook{entry}, out...)
	if len(out) > r.cap {
		out = out[:r.cap]
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal recent books: %w", err)
	}
	if err := r.kv.SetString(ctx, recentBooksKey, string(raw)); err != nil {
		return fmt.Errorf("failed to save recent books: %w", err)
	}
	return nil
}
