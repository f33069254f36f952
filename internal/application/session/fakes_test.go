package session

import (
	"context"
	"fmt"
	"sync"

	"z-reader-session-api/internal/domain/entity"
)

// fakeKV 进程内键值存储，记录写入与删除次数
type fakeKV struct {
	mu      sync.Mutex
	data    map[string]string
	sets    int
	deletes int
	failAll bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) GetString(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return "", false, fmt.Errorf("kv unavailable")
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) SetString(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return fmt.Errorf("kv unavailable")
	}
	f.data[key] = value
	f.sets++
	return nil
}

func (f *fakeKV) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	f.deletes++
	return nil
}

func (f *fakeKV) setCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}

// fakeBookRepo 固定返回预置的书籍与片段
type fakeBookRepo struct {
	books    map[string]*entity.Book
	headings map[string][]*entity.Heading
	loads    int
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{
		books:    make(map[string]*entity.Book),
		headings: make(map[string][]*entity.Heading),
	}
}

func (f *fakeBookRepo) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	return f.books[id], nil
}

func (f *fakeBookRepo) ListHeadings(ctx context.Context, bookID string) ([]*entity.Heading, error) {
	f.loads++
	return f.headings[bookID], nil
}

// fakeBookmarkRepo 进程内书签仓库
type fakeBookmarkRepo struct {
	mu        sync.Mutex
	bookmarks map[string][]*entity.Bookmark
	addErr    error
	removeErr error
}

func newFakeBookmarkRepo() *fakeBookmarkRepo {
	return &fakeBookmarkRepo{bookmarks: make(map[string][]*entity.Bookmark)}
}

func (f *fakeBookmarkRepo) ListByBook(ctx context.Context, bookID string) ([]*entity.Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.Bookmark, len(f.bookmarks[bookID]))
	copy(out, f.bookmarks[bookID])
	return out, nil
}

func (f *fakeBookmarkRepo) Add(ctx context.Context, b *entity.Bookmark) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookmarks[b.BookID] = append(f.bookmarks[b.BookID], b)
	return nil
}

func (f *fakeBookmarkRepo) Remove(ctx context.Context, bookID, bookmarkID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.bookmarks[bookID]
	for i, b := range list {
		if b.ID == bookmarkID {
			f.bookmarks[bookID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

func heading(id, chapterID, volumeID, title string, content ...string) *entity.Heading {
	return &entity.Heading{
		ID:        id,
		ChapterID: chapterID,
		VolumeID:  volumeID,
		Title:     title,
		Content:   content,
	}
}
