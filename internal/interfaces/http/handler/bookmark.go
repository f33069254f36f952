package handler

import (
	"github.com/gin-gonic/gin"

	"z-reader-session-api/internal/application/session"
	"z-reader-session-api/internal/interfaces/http/dto"
)

// BookmarkHandler 书签处理器
type BookmarkHandler struct {
	registry *session.Registry
}

// NewBookmarkHandler 创建书签处理器
func NewBookmarkHandler(registry *session.Registry) *BookmarkHandler {
	return &BookmarkHandler{registry: registry}
}

// List 书签列表（会话缓存）
// GET /v1/books/:bid/bookmarks
func (h *BookmarkHandler) List(c *gin.Context) {
	s, err := h.registry.Get(c.Param("bid"))
	if err != nil {
		respondError(c, err)
		return
	}

	mgr, err := s.Bookmarks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	list, err := mgr.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.NewBookmarkViews(list))
}

// Refresh 强制从远端回读书签列表
// POST /v1/books/:bid/bookmarks/refresh
func (h *BookmarkHandler) Refresh(c *gin.Context) {
	s, err := h.registry.Get(c.Param("bid"))
	if err != nil {
		respondError(c, err)
		return
	}

	mgr, err := s.Bookmarks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	list, err := mgr.Refresh(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.NewBookmarkViews(list))
}

// Toggle 切换书签
// POST /v1/books/:bid/bookmarks/toggle
func (h *BookmarkHandler) Toggle(c *gin.Context) {
	var req dto.ToggleBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid toggle request: "+err.Error())
		return
	}

	s, err := h.registry.Get(c.Param("bid"))
	if err != nil {
		respondError(c, err)
		return
	}

	bookmarked, err := s.ToggleBookmark(c.Request.Context(), req.HeadingID)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.ToggleBookmarkResult{
		HeadingID:  req.HeadingID,
		Bookmarked: bookmarked,
	})
}
