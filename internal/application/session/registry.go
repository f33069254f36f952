package session

import (
	"context"
	"sync"

	"z-reader-session-api/pkg/errors"
	"z-reader-session-api/pkg/logger"
	"z-reader-session-api/pkg/metrics"
)

// Registry 按书维护会话：一本书同一时刻至多一个活动会话。
// 重建（reload）用全新会话对象整体替换旧会话，旧会话中仍在
// 运行的增强任务只会把结果写进被替换掉的对象，不影响新会话。
type Registry struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry 创建会话注册表
func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:     deps,
		sessions: make(map[string]*Session),
	}
}

// Open 打开（或复用）一本书的会话并等待其加载完成。
// 已有 displaying 会话时直接复用；已有 error 会话时原样返回，
// 由调用方决定是否 reload。
func (r *Registry) Open(ctx context.Context, bookID string) (*Session, error) {
	r.mu.Lock()
	if existing, ok := r.sessions[bookID]; ok {
		r.mu.Unlock()
		logger.Debug(ctx, "reusing existing session", "book_id", bookID, "state", existing.State())
		return existing, existing.Err()
	}
	s := New(bookID, r.deps)
	r.sessions[bookID] = s
	metrics.ActiveSessions.Inc()
	r.mu.Unlock()

	if err := s.Start(ctx); err != nil {
		return s, err
	}
	return s, nil
}

// Get 返回一本书的当前会话，不存在时返回 ErrSessionNotReady
func (r *Registry) Get(bookID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[bookID]
	if !ok {
		return nil, errors.ErrSessionNotReady.WithDetail("no open session for book " + bookID)
	}
	return s, nil
}

// Reload 丢弃一本书的会话并重新加载。error 状态的会话也接受 reload，
// 这是从加载失败恢复的唯一途径。
func (r *Registry) Reload(ctx context.Context, bookID string) (*Session, error) {
	r.mu.Lock()
	old, existed := r.sessions[bookID]
	s := New(bookID, r.deps)
	r.sessions[bookID] = s
	if !existed {
		metrics.ActiveSessions.Inc()
	}
	r.mu.Unlock()

	if existed {
		logger.Info(ctx, "reloading session", "book_id", bookID, "old_session_id", old.ID, "new_session_id", s.ID)
	}
	if err := s.Start(ctx); err != nil {
		return s, err
	}
	return s, nil
}

// Close 关闭一本书的会话。关闭不存在的会话是空操作。
func (r *Registry) Close(ctx context.Context, bookID string) {
	r.mu.Lock()
	s, ok := r.sessions[bookID]
	if ok {
		delete(r.sessions, bookID)
		metrics.ActiveSessions.Dec()
	}
	r.mu.Unlock()

	if ok {
		logger.Info(ctx, "session closed", "book_id", bookID, "session_id", s.ID)
	}
}
