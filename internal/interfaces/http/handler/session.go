package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"z-reader-session-api/internal/application/session"
	"z-reader-session-api/internal/interfaces/http/dto"
	"z-reader-session-api/pkg/errors"
	"z-reader-session-api/pkg/logger"
)

// SessionHandler 阅读会话处理器
type SessionHandler struct {
	registry *session.Registry
	recent   *session.RecentBooks
}

// NewSessionHandler 创建会话处理器
func NewSessionHandler(registry *session.Registry, recent *session.RecentBooks) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		recent:   recent,
	}
}

// Open 打开阅读会话
// POST /v1/books/:bid/session
func (h *SessionHandler) Open(c *gin.Context) {
	bookID := c.Param("bid")
	ctx := logger.WithContext(c.Request.Context(), logger.BookIDKey, bookID)

	s, err := h.registry.Open(ctx, bookID)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Created(c, dto.NewSessionView(s))
}

// Get 查询当前会话
// GET /v1/books/:bid/session
func (h *SessionHandler) Get(c *gin.Context) {
	s, err := h.registry.Get(c.Param("bid"))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.NewSessionView(s))
}

// Reload 重建会话
// POST /v1/books/:bid/session/reload
func (h *SessionHandler) Reload(c *gin.Context) {
	bookID := c.Param("bid")
	ctx := logger.WithContext(c.Request.Context(), logger.BookIDKey, bookID)

	s, err := h.registry.Reload(ctx, bookID)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.NewSessionView(s))
}

// Close 关闭会话
// DELETE /v1/books/:bid/session
func (h *SessionHandler) Close(c *gin.Context) {
	h.registry.Close(c.Request.Context(), c.Param("bid"))
	dto.NoContent(c)
}

// Navigate 章节导航
// POST /v1/books/:bid/session/navigate
func (h *SessionHandler) Navigate(c *gin.Context) {
	var req dto.NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid navigate request: "+err.Error())
		return
	}

	s, err := h.registry.Get(c.Param("bid"))
	if err != nil {
		respondError(c, err)
		return
	}

	pos, err := s.GoToChapter(c.Request.Context(), req.Chapter)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.PositionView{
		ChapterIndex: pos.ChapterIndex,
		ScrollRatio:  pos.ScrollRatio,
	})
}

// UpdateScroll 滚动位置更新
// PUT /v1/books/:bid/session/scroll
func (h *SessionHandler) UpdateScroll(c *gin.Context) {
	var req dto.ScrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid scroll request: "+err.Error())
		return
	}

	s, err := h.registry.Get(c.Param("bid"))
	if err != nil {
		respondError(c, err)
		return
	}

	pos, err := s.UpdateScroll(c.Request.Context(), req.ScrollRatio)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.PositionView{
		ChapterIndex: pos.ChapterIndex,
		ScrollRatio:  pos.ScrollRatio,
	})
}

// ListChapters 章节列表
// GET /v1/books/:bid/chapters
func (h *SessionHandler) ListChapters(c *gin.Context) {
	s, err := h.registry.Get(c.Param("bid"))
	if err != nil {
		respondError(c, err)
		return
	}
	if s.State() != session.StateDisplaying {
		respondError(c, errors.ErrSessionNotReady.WithDetail(string(s.State())))
		return
	}
	dto.Success(c, dto.NewChapterViews(s.Chapters()))
}

// ChapterHeadings 章节片段列表
// GET /v1/books/:bid/chapters/:ref/headings
func (h *SessionHandler) ChapterHeadings(c *gin.Context) {
	s, err := h.registry.Get(c.Param("bid"))
	if err != nil {
		respondError(c, err)
		return
	}
	chapters := s.Chapters()
	if chapters == nil {
		respondError(c, errors.ErrSessionNotReady.WithDetail(string(s.State())))
		return
	}

	idx, err := chapters.ResolveIndex(c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.NewHeadingViews(chapters.HeadingsAt(idx)))
}

// Recent 最近阅读列表
// GET /v1/recent
func (h *SessionHandler) Recent(c *gin.Context) {
	list, err := h.recent.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]dto.RecentBookView, 0, len(list))
	for _, b := range list {
		views = append(views, dto.RecentBookView{
			ID:        b.ID,
			Title:     b.Title,
			Author:    b.Author,
			CoverURL:  b.CoverURL,
			Progress:  b.Progress,
			FirstRead: b.FirstRead.Format(time.RFC3339),
			LastRead:  b.LastRead.Format(time.RFC3339),
		})
	}
	dto.Success(c, views)
}
