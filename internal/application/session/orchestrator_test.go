package session

import (
	"context"
	"errors"
	"testing"

	"z-reader-session-api/internal/domain/entity"
	apperrors "z-reader-session-api/pkg/errors"
)

func testDeps(books *fakeBookRepo, marks *fakeBookmarkRepo, kv *fakeKV) Deps {
	return Deps{
		Books:           books,
		Bookmarks:       marks,
		KV:              kv,
		ScrollSaveDelta: 0.05,
		RecentBooksCap:  20,
	}
}

func seedBook(books *fakeBookRepo) {
	books.books["book-1"] = &entity.Book{ID: "book-1", Title: "测试之书", Language: "zh"}
	books.headings["book-1"] = []*entity.Heading{
		heading("h1", "chap1", "", "第一章", "开头"),
		heading("h2", "chap1", "", "", "中段"),
		heading("h3", "chap2", "", "第二章", "结尾"),
	}
}

func TestSessionLifecycle(t *testing.T) {
	books := newFakeBookRepo()
	seedBook(books)
	kv := newFakeKV()
	ctx := context.Background()

	s := New("book-1", testDeps(books, newFakeBookmarkRepo(), kv))
	if got := s.State(); got != StateInitial {
		t.Fatalf("State() = %s, want initial", got)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := s.State(); got != StateDisplaying {
		t.Fatalf("State() = %s, want displaying", got)
	}

	chapters := s.Chapters()
	if chapters.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", chapters.Count())
	}
	if chapters.KeyAt(0) != "chap1" || chapters.KeyAt(1) != "chap2" {
		t.Fatalf("keys = [%s, %s], want [chap1, chap2]", chapters.KeyAt(0), chapters.KeyAt(1))
	}

	pos, err := s.GoToChapter(ctx, "chap2")
	if err != nil {
		t.Fatalf("GoToChapter() error = %v", err)
	}
	if pos.ChapterIndex != 1 || pos.ScrollRatio != 0 {
		t.Fatalf("position = %+v, want {1 0}", pos)
	}
}

func TestSessionRestoresPositionAcrossRestart(t *testing.T) {
	books := newFakeBookRepo()
	seedBook(books)
	kv := newFakeKV()
	deps := testDeps(books, newFakeBookmarkRepo(), kv)
	ctx := context.Background()

	s := New("book-1", deps)
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := s.GoToChapter(ctx, "chap2"); err != nil {
		t.Fatalf("GoToChapter() error = %v", err)
	}
	if _, err := s.UpdateScroll(ctx, 0.6); err != nil {
		t.Fatalf("UpdateScroll() error = %v", err)
	}

	// 模拟重启：同一键值存储上的全新会话
	s2 := New("book-1", deps)
	if err := s2.Start(ctx); err != nil {
		t.Fatalf("restart Start() error = %v", err)
	}
	pos := s2.Position()
	if pos.ChapterIndex != 1 {
		t.Fatalf("restored chapter = %d, want 1", pos.ChapterIndex)
	}
	if pos.ScrollRatio != 0.6 {
		t.Fatalf("restored scroll = %v, want 0.6", pos.ScrollRatio)
	}
	if s.ID == s2.ID {
		t.Fatal("restarted session reused the old session id")
	}
}

func TestGoToChapterIdempotentNavigationSkipsSave(t *testing.T) {
	books := newFakeBookRepo()
	seedBook(books)
	kv := newFakeKV()
	ctx := context.Background()

	s := New("book-1", testDeps(books, newFakeBookmarkRepo(), kv))
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, err := s.GoToChapter(ctx, "chap2"); err != nil {
		t.Fatalf("GoToChapter() error = %v", err)
	}
	before := kv.setCount()

	// 同章节重复导航：零写入
	if _, err := s.GoToChapter(ctx, "chap2"); err != nil {
		t.Fatalf("repeat GoToChapter() error = %v", err)
	}
	if _, err := s.GoToChapter(ctx, "1"); err != nil {
		t.Fatalf("numeric GoToChapter() error = %v", err)
	}
	if got := kv.setCount(); got != before {
		t.Fatalf("sets = %d, want %d (idempotent navigation must not write)", got, before)
	}
}

func TestGoToChapterUnknownRefRejectsWithoutStateChange(t *testing.T) {
	books := newFakeBookRepo()
	seedBook(books)
	ctx := context.Background()

	s := New("book-1", testDeps(books, newFakeBookmarkRepo(), newFakeKV()))
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	_, err := s.GoToChapter(ctx, "chapX")
	if !errors.Is(err, apperrors.ErrChapterNotFound) {
		t.Fatalf("GoToChapter(chapX) error = %v, want ErrChapterNotFound", err)
	}
	if got := s.State(); got != StateDisplaying {
		t.Fatalf("State() = %s, want displaying after rejected navigation", got)
	}
	if got := s.Position().ChapterIndex; got != 0 {
		t.Fatalf("position moved to %d on rejected navigation", got)
	}
}

func TestSessionBookNotFound(t *testing.T) {
	ctx := context.Background()
	s := New("missing", testDeps(newFakeBookRepo(), newFakeBookmarkRepo(), newFakeKV()))

	err := s.Start(ctx)
	if err == nil {
		t.Fatal("Start() error = nil, want content load failure")
	}
	if got := s.State(); got != StateError {
		t.Fatalf("State() = %s, want error", got)
	}

	// error 状态下操作是带错误的空操作
	if _, err := s.GoToChapter(ctx, "chap1"); !errors.Is(err, apperrors.ErrSessionNotReady) {
		t.Fatalf("GoToChapter() error = %v, want ErrSessionNotReady", err)
	}
	if _, err := s.UpdateScroll(ctx, 0.5); !errors.Is(err, apperrors.ErrSessionNotReady) {
		t.Fatalf("UpdateScroll() error = %v, want ErrSessionNotReady", err)
	}
	if _, err := s.ToggleBookmark(ctx, "h1"); !errors.Is(err, apperrors.ErrSessionNotReady) {
		t.Fatalf("ToggleBookmark() error = %v, want ErrSessionNotReady", err)
	}
}

func TestSessionEmptyContent(t *testing.T) {
	books := newFakeBookRepo()
	books.books["book-1"] = &entity.Book{ID: "book-1", Title: "空书"}
	ctx := context.Background()

	s := New("book-1", testDeps(books, newFakeBookmarkRepo(), newFakeKV()))
	err := s.Start(ctx)
	if !errors.Is(err, apperrors.ErrNoContent) {
		t.Fatalf("Start() error = %v, want ErrNoContent", err)
	}
	if got := s.State(); got != StateError {
		t.Fatalf("State() = %s, want error", got)
	}
}

func TestSessionClampsRestoredPosition(t *testing.T) {
	books := newFakeBookRepo()
	seedBook(books)
	kv := newFakeKV()
	kv.data[positionKey("book-1")] = `{"chapter_index": 99, "scroll_ratio": 0.5}`
	ctx := context.Background()

	s := New("book-1", testDeps(books, newFakeBookmarkRepo(), kv))
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := s.Position().ChapterIndex; got != 1 {
		t.Fatalf("clamped chapter = %d, want 1 (last chapter)", got)
	}
}

func TestToggleBookmarkThroughSession(t *testing.T) {
	books := newFakeBookRepo()
	seedBook(books)
	marks := newFakeBookmarkRepo()
	ctx := context.Background()

	s := New("book-1", testDeps(books, marks, newFakeKV()))
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	added, err := s.ToggleBookmark(ctx, "h2")
	if err != nil {
		t.Fatalf("ToggleBookmark() error = %v", err)
	}
	if !added {
		t.Fatal("ToggleBookmark() added = false, want true")
	}

	mgr, err := s.Bookmarks(ctx)
	if err != nil {
		t.Fatalf("Bookmarks() error = %v", err)
	}
	list, err := mgr.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("List() = %d bookmarks, want 1", len(list))
	}
	if list[0].ChapterID != "chap1" || list[0].ChapterTitle != "第一章" {
		t.Fatalf("bookmark chapter = %s/%s, want chap1/第一章", list[0].ChapterID, list[0].ChapterTitle)
	}

	if _, err := s.ToggleBookmark(ctx, "unknown"); !errors.Is(err, apperrors.ErrHeadingNotFound) {
		t.Fatalf("ToggleBookmark(unknown) error = %v, want ErrHeadingNotFound", err)
	}
}

func TestRegistryReloadReplacesSession(t *testing.T) {
	books := newFakeBookRepo()
	seedBook(books)
	kv := newFakeKV()
	reg := NewRegistry(testDeps(books, newFakeBookmarkRepo(), kv))
	ctx := context.Background()

	s1, err := reg.Open(ctx, "book-1")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := s1.GoToChapter(ctx, "chap2"); err != nil {
		t.Fatalf("GoToChapter() error = %v", err)
	}

	// 复用：重复 Open 返回同一会话
	again, err := reg.Open(ctx, "book-1")
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	if again != s1 {
		t.Fatal("second Open() returned a different session")
	}

	s2, err := reg.Reload(ctx, "book-1")
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if s2 == s1 || s2.ID == s1.ID {
		t.Fatal("Reload() did not replace the session object")
	}
	// 新会话从持久化位置恢复
	if got := s2.Position().ChapterIndex; got != 1 {
		t.Fatalf("reloaded position chapter = %d, want 1", got)
	}

	got, err := reg.Get("book-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != s2 {
		t.Fatal("Get() returned the stale session")
	}

	reg.Close(ctx, "book-1")
	if _, err := reg.Get("book-1"); !errors.Is(err, apperrors.ErrSessionNotReady) {
		t.Fatalf("Get() after Close error = %v, want ErrSessionNotReady", err)
	}
}

func TestRegistryReloadRecoversFromError(t *testing.T) {
	books := newFakeBookRepo()
	reg := NewRegistry(testDeps(books, newFakeBookmarkRepo(), newFakeKV()))
	ctx := context.Background()

	s1, err := reg.Open(ctx, "book-1")
	if err == nil {
		t.Fatal("Open() error = nil, want failure for missing book")
	}
	if got := s1.State(); got != StateError {
		t.Fatalf("State() = %s, want error", got)
	}

	seedBook(books)
	s2, err := reg.Reload(ctx, "book-1")
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got := s2.State(); got != StateDisplaying {
		t.Fatalf("State() after reload = %s, want displaying", got)
	}
}
