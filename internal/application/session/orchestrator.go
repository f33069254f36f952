package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"z-reader-session-api/internal/application/enrichment"
	"z-reader-session-api/internal/domain/entity"
	"z-reader-session-api/internal/domain/repository"
	"z-reader-session-api/pkg/errors"
	"z-reader-session-api/pkg/logger"
	"z-reader-session-api/pkg/metrics"
)

// State 会话状态
type State string

const (
	StateInitial         State = "initial"
	StateLoadingMetadata State = "loading_metadata"
	StateLoadingContent  State = "loading_content"
	StateDisplaying      State = "displaying"
	StateError           State = "error"
)

// Deps 会话依赖，显式构造注入，不经任何全局注册表
type Deps struct {
	Books     repository.BookRepository
	Bookmarks repository.BookmarkRepository
	KV        repository.KeyValueStore
	AI        enrichment.Client

	ScrollSaveDelta float64
	RecentBooksCap  int
}

// Session 一本书的阅读会话。书籍与片段在加载成功后不可变；
// 阅读位置与增强状态持续变化；会话结束时整体销毁。
type Session struct {
	ID     string
	BookID string

	deps      Deps
	loader    *ContentLoader
	positions *PositionStore
	bookmarks *BookmarkManager
	recent    *RecentBooks
	features  *enrichment.Features

	mu       sync.Mutex
	state    State
	lastErr  error
	book     *entity.Book
	headings []*entity.Heading
	chapters *ChapterMap
	position entity.ReadingPosition
}

// New 创建未启动的会话
func New(bookID string, deps Deps) *Session {
	return &Session{
		ID:        uuid.New().String(),
		BookID:    bookID,
		deps:      deps,
		loader:    NewContentLoader(deps.Books),
		positions: NewPositionStore(deps.KV, deps.ScrollSaveDelta),
		bookmarks: NewBookmarkManager(deps.Bookmarks, bookID),
		recent:    NewRecentBooks(deps.KV, deps.RecentBooksCap),
		state:     StateInitial,
	}
}

// Start 执行加载管线：
// initial -> loading_metadata -> loading_content -> displaying，
// 任一加载阶段失败进入 error。位置恢复在内容分组之前完成，
// 章节钳制使用的初始下标来自恢复的位置。
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateInitial {
		s.mu.Unlock()
		logger.Warn(ctx, "start ignored: session already started", "state", s.state)
		return nil
	}
	s.state = StateLoadingMetadata
	s.mu.Unlock()

	started := time.Now()
	ctx = logger.WithContext(ctx, logger.BookIDKey, s.BookID)
	ctx = logger.WithContext(ctx, logger.SessionIDKey, s.ID)

	// 元数据阶段：书籍 + 位置恢复
	book, err := s.loader.LoadBook(ctx, s.BookID)
	if err != nil {
		s.fail(ctx, errors.Wrap(err, errors.CodeContentLoadFailed, "failed to load book"))
		metrics.SessionOpenedTotal.WithLabelValues("error").Inc()
		return s.Err()
	}

	restored, err := s.positions.Load(ctx, s.BookID)
	if err != nil {
		// 键值存储不可达按内容加载失败处理，交由用户重试
		s.fail(ctx, errors.Wrap(err, errors.CodeContentLoadFailed, "failed to restore position"))
		metrics.SessionOpenedTotal.WithLabelValues("error").Inc()
		return s.Err()
	}
	position := entity.DefaultReadingPosition()
	if restored != nil {
		position = *restored
	}

	s.mu.Lock()
	s.book = book
	s.position = position
	s.state = StateLoadingContent
	s.mu.Unlock()

	// 内容阶段：片段 + 书签预热并发进行
	headings, err := s.loader.LoadHeadings(ctx, s.BookID, func(ctx context.Context) error {
		_, err := s.bookmarks.List(ctx)
		return err
	})
	if err != nil {
		s.fail(ctx, errors.Wrap(err, errors.CodeContentLoadFailed, "failed to load content"))
		metrics.SessionOpenedTotal.WithLabelValues("error").Inc()
		return s.Err()
	}

	chapters := DeriveChapters(headings)
	if chapters.Count() == 0 {
		s.fail(ctx, errors.ErrNoContent)
		metrics.SessionOpenedTotal.WithLabelValues("empty").Inc()
		return s.Err()
	}

	s.mu.Lock()
	s.headings = headings
	s.chapters = chapters
	s.position.ChapterIndex = chapters.Clamp(s.position.ChapterIndex)
	s.features = enrichment.NewFeatures(s.deps.AI, book, headings)
	s.state = StateDisplaying
	s.mu.Unlock()

	if err := s.recent.Touch(ctx, book, s.progress()); err != nil {
		// 最近阅读列表是辅助能力，失败不影响会话
		logger.Warn(ctx, "failed to touch recent books", "error", err.Error())
	}

	metrics.SessionOpenedTotal.WithLabelValues("ok").Inc()
	metrics.SessionLoadDuration.Observe(time.Since(started).Seconds())
	logger.Info(ctx, "reading session ready",
		"chapters", chapters.Count(), "headings", len(headings),
		"restored_chapter", position.ChapterIndex)
	return nil
}

// fail 进入 error 终态
func (s *Session) fail(ctx context.Context, err error) {
	s.mu.Lock()
	s.state = StateError
	s.lastErr = err
	s.mu.Unlock()
	logger.Error(ctx, "reading session failed", err)
}

// State 返回当前状态
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err 返回导致 error 状态的错误
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Book 返回书籍元数据（displaying 之前可能为 nil）
func (s *Session) Book() *entity.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book
}

// Chapters 返回章节模型（displaying 之前可能为 nil）
func (s *Session) Chapters() *ChapterMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chapters
}

// Position 返回当前阅读位置
func (s *Session) Position() entity.ReadingPosition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// progress 粗粒度阅读进度：当前章节下标 / 章节数
func (s *Session) progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chapters == nil || s.chapters.Count() == 0 {
		return 0
	}
	return float64(s.position.ChapterIndex) / float64(s.chapters.Count())
}

// requireDisplaying 非 displaying 状态下的操作一律记日志后拒绝
func (s *Session) requireDisplaying(ctx context.Context, op string) error {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state != StateDisplaying {
		logger.Warn(ctx, "operation rejected: session not displaying", "op", op, "state", state)
		return errors.ErrSessionNotReady.WithDetail(op)
	}
	return nil
}

// GoToChapter 导航到章节（键或数字引用）。解析失败只拒绝本次请求，
// 不改变任何状态；解析出的下标与当前相同时是幂等空操作，不触发保存。
func (s *Session) GoToChapter(ctx context.Context, ref string) (entity.ReadingPosition, error) {
	if err := s.requireDisplaying(ctx, "goToChapter"); err != nil {
		return s.Position(), err
	}

	s.mu.Lock()
	idx, err := s.chapters.ResolveIndex(ref)
	if err != nil {
		s.mu.Unlock()
		return s.Position(), err
	}
	idx = s.chapters.Clamp(idx)
	if idx == s.position.ChapterIndex {
		pos := s.position
		s.mu.Unlock()
		return pos, nil
	}
	s.position = entity.ReadingPosition{ChapterIndex: idx, ScrollRatio: 0}
	pos := s.position
	book := s.book
	s.mu.Unlock()

	if err := s.positions.Save(ctx, s.BookID, pos); err != nil {
		// 持久化失败不回滚内存位置，下一次确认的章节切换会整体覆盖
		logger.Error(ctx, "failed to persist position", err, "chapter_index", pos.ChapterIndex)
	}
	if err := s.recent.Touch(ctx, book, s.progress()); err != nil {
		logger.Warn(ctx, "failed to touch recent books", "error", err.Error())
	}
	return pos, nil
}

// UpdateScroll 更新当前章节内滚动比例，经 5% 变化量节流后持久化
func (s *Session) UpdateScroll(ctx context.Context, ratio float64) (entity.ReadingPosition, error) {
	if err := s.requireDisplaying(ctx, "updateScroll"); err != nil {
		return s.Position(), err
	}

	s.mu.Lock()
	s.position.ScrollRatio = ratio
	s.position = s.position.Normalize()
	pos := s.position
	s.mu.Unlock()

	if _, err := s.positions.SaveScroll(ctx, s.BookID, pos); err != nil {
		logger.Error(ctx, "failed to persist scroll position", err)
	}
	return pos, nil
}

// Bookmarks 返回书签管理器；非 displaying 状态返回 ErrSessionNotReady
func (s *Session) Bookmarks(ctx context.Context) (*BookmarkManager, error) {
	if err := s.requireDisplaying(ctx, "bookmarks"); err != nil {
		return nil, err
	}
	return s.bookmarks, nil
}

// ToggleBookmark 切换片段书签，章节键与标题由当前章节模型补全
func (s *Session) ToggleBookmark(ctx context.Context, headingID string) (bool, error) {
	if err := s.requireDisplaying(ctx, "toggleBookmark"); err != nil {
		return false, err
	}

	s.mu.Lock()
	var heading *entity.Heading
	for _, h := range s.headings {
		if h.ID == headingID {
			heading = h
			break
		}
	}
	if heading == nil {
		s.mu.Unlock()
		return false, errors.ErrHeadingNotFound.WithDetail(headingID)
	}
	chapterKey := ChapterKeyOf(heading)
	chapterIdx, _ := s.chapters.ResolveIndex(chapterKey)
	chapterTitle := s.chapters.TitleAt(chapterIdx)
	s.mu.Unlock()

	return s.bookmarks.Toggle(ctx, heading, chapterKey, chapterTitle)
}

// Features 返回增强功能集；非 displaying 状态返回 ErrSessionNotReady
func (s *Session) Features(ctx context.Context) (*enrichment.Features, error) {
	if err := s.requireDisplaying(ctx, "enrichment"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.features, nil
}

// CurrentChapterHeadings 返回当前章节的片段（翻译/朗读标记的输入）
func (s *Session) CurrentChapterHeadings(ctx context.Context) ([]*entity.Heading, error) {
	if err := s.requireDisplaying(ctx, "currentChapter"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chapters.HeadingsAt(s.position.ChapterIndex), nil
}
